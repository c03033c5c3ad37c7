//go:build linux && amd64

// Package cpu provides x86-64 timer and barrier primitives: a raw cycle
// counter read, a partially-serializing variant, memory fences, pipeline
// drain, cache-line flush/access, and the two probe pairs used throughout
// the side-channel packages to time a single memory access.
package cpu

// RDTSC returns a raw, non-serializing read of the Time Stamp Counter.
func RDTSC() uint64

// RDTSCP returns the Time Stamp Counter, partially serializing: it waits
// for all prior instructions to execute before reading.
func RDTSCP() uint64

// MFence issues a full memory fence: prior loads and stores are globally
// visible before any instruction that follows.
func MFence()

// LFence issues a load fence, serializing loads and preventing speculative
// execution of subsequent instructions.
func LFence()

// SFence issues a store fence: prior stores are globally visible before any
// subsequent store.
func SFence()

// CPUID issues a serializing CPUID instruction, draining the pipeline;
// used as the strong barrier for side-channel timing.
func CPUID()

// Maccess forces a load from p, pulling its cache line into the hierarchy.
func Maccess(p *byte)

// Clflush evicts the cache line containing p from all cache levels.
func Clflush(p *byte)

// ProbeStart drains the pipeline and returns the starting cycle count. The
// strong pair (ProbeStart/ProbeEnd) is preferred for calibration: both
// endpoints serialize against surrounding instructions.
func ProbeStart() uint64 {
	CPUID()
	return RDTSC()
}

// ProbeEnd captures the ending cycle count, then drains the pipeline so
// that subsequent instructions cannot leak into the timed interval.
func ProbeEnd() uint64 {
	t := RDTSCP()
	CPUID()
	return t
}

// ProbeStartLFence is the lighter probe pair's start: only orders memory
// instructions, suited to inner-loop measurement.
func ProbeStartLFence() uint64 {
	LFence()
	return RDTSC()
}

// ProbeEndLFence is the lighter probe pair's end.
func ProbeEndLFence() uint64 {
	t := RDTSCP()
	LFence()
	return t
}

// Spin busy-waits for approximately n cycles using the spin-hint
// instruction (PAUSE on x86-64), used by the Flush+Reload watcher's
// flush-to-reload delay and the Spectre engine's sync/post delays.
func Spin(n int) {
	for i := 0; i < n; i++ {
		pauseHint()
	}
}

// pauseHint issues a single PAUSE instruction.
func pauseHint()
