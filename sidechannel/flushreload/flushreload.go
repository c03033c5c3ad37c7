//go:build linux && amd64

// Package flushreload implements a continuously-running Flush+Reload
// watcher over a set of cache lines, reporting accesses made by another
// thread or process sharing the same physical memory.
package flushreload

import (
	"fmt"
	"unsafe"

	"github.com/CuB3y0nd/axium/sidechannel/cpu"
	"github.com/CuB3y0nd/axium/sidechannel/telemetry"
)

// mixIndex permutes i over [0, n) so the reload pass does not walk lines in
// address order, defeating hardware stream prefetchers. 167 is odd and thus
// coprime to any power of two, so this is a full cycle over n elements.
func mixIndex(i, n int) int {
	return (i*167 + 13) & (n - 1)
}

// Config parameterizes a watcher loop started with Run.
type Config struct {
	Base       unsafe.Pointer // address of line 0
	Lines      int            // N, must be a power of two
	Stride     uintptr        // byte distance between consecutive lines, typically 4096
	Threshold  int            // cycle count below which a reload counts as a hit
	WaitCycles int            // spin-hint iterations between flush and reload
}

// HitFunc is invoked for each line found hot during a reload pass, with the
// line's logical index and observed access latency.
type HitFunc func(index int, cycles int)

// Validate reports a descriptive error if cfg cannot be run, in particular
// that Lines is a power of two.
func (cfg Config) Validate() error {
	if cfg.Base == nil {
		return fmt.Errorf("flushreload: Base must not be nil")
	}
	if cfg.Lines <= 0 || cfg.Lines&(cfg.Lines-1) != 0 {
		return fmt.Errorf("flushreload: Lines (%d) must be a positive power of two", cfg.Lines)
	}
	if cfg.Stride == 0 {
		return fmt.Errorf("flushreload: Stride must not be 0")
	}
	return nil
}

func (cfg Config) lineAddr(idx int) *byte {
	return (*byte)(unsafe.Pointer(uintptr(cfg.Base) + uintptr(idx)*cfg.Stride))
}

// Run executes the watcher loop until stop is closed: each outer iteration
// flushes every line, waits, then reloads lines in permuted order, invoking
// on for each reload that lands below cfg.Threshold.
func Run(cfg Config, on HitFunc, stop <-chan struct{}) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if on == nil {
		on = func(int, int) {}
	}

	for {
		select {
		case <-stop:
			return nil
		default:
		}

		for i := 0; i < cfg.Lines; i++ {
			cpu.Clflush(cfg.lineAddr(i))
		}
		cpu.MFence()

		cpu.Spin(cfg.WaitCycles)

		for i := 0; i < cfg.Lines; i++ {
			idx := mixIndex(i, cfg.Lines)
			p := cfg.lineAddr(idx)

			t0 := cpu.ProbeStartLFence()
			cpu.Maccess(p)
			t1 := cpu.ProbeEndLFence()
			cycles := int(t1 - t0)
			hit := cycles < cfg.Threshold
			telemetry.ObserveFlushReloadProbe(hit)

			if hit {
				on(idx, cycles)
				cpu.Clflush(p)
			}
		}
	}
}
