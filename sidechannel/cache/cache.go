//go:build linux && amd64

// Package cache implements cache-timing calibration and analysis: measuring
// the hit/miss threshold for a given machine and reducing a round of raw
// timing samples into a winner index with a confidence report.
package cache

import (
	"unsafe"

	"github.com/CuB3y0nd/axium/sidechannel/cpu"
	"github.com/CuB3y0nd/axium/sidechannel/telemetry"
)

const pageSize = 4096

// mixOffset permutes round r over [0, n) the same way
// sidechannel/flushreload.mixIndex does, so the scratch offset walked by
// calibration is deterministic and reproducible across runs rather than
// seeded from a global RNG. n must be a power of two.
func mixOffset(r, n int) int {
	return (r*167 + 13) & (n - 1)
}

// CalibrateThreshold measures a representative hit/miss boundary for the
// local machine by repeatedly flushing and reloading pseudo-random offsets
// within a dedicated scratch page. It returns the midpoint between the
// observed minimum hit and minimum miss latency, established over 1000
// rounds.
func CalibrateThreshold() int {
	page := make([]byte, pageSize)
	return CalibrateThresholdOn(page)
}

// CalibrateThresholdOn is CalibrateThreshold against a caller-supplied,
// page-sized scratch region (for example the page backing a known target),
// instead of a freshly allocated one.
func CalibrateThresholdOn(page []byte) int {
	const rounds = 1000
	minHit := int(^uint(0) >> 1)
	minMiss := int(^uint(0) >> 1)

	for r := 0; r < rounds; r++ {
		off := mixOffset(r, len(page))
		p := &page[off]

		cpu.Clflush(p)
		cpu.MFence()
		t0 := cpu.ProbeStart()
		cpu.Maccess(p)
		t1 := cpu.ProbeEnd()
		if miss := int(t1 - t0); miss < minMiss {
			minMiss = miss
		}

		t2 := cpu.ProbeStart()
		cpu.Maccess(p)
		t3 := cpu.ProbeEnd()
		if hit := int(t3 - t2); hit < minHit {
			minHit = hit
		}
	}

	if minMiss < minHit+50 {
		minMiss = minHit + 200
	}
	return (minHit + minMiss) / 2
}

// Report is the outcome of Analyze: the calibration inputs alongside the
// derived winner, gap, and refined hit count.
type Report struct {
	Threshold          int   // original threshold passed to Analyze
	EffectiveThreshold int   // refined threshold used for the hit count
	Timings            []int // raw per-index timing vector, retained for serialization
	WinnerIndex        int   // index of the fastest access, or -1 if rejected
	WinnerValue        int   // timing value at WinnerIndex, or 0 if rejected
	Gap                int   // runner-up minus winner
	HitsCount          int   // number of elements at or below EffectiveThreshold
}

// TargetAddress returns the address backing element i of a byte slice, for
// callers that need a raw pointer to feed into sidechannel/flushreload or
// sidechannel/spectre alongside a cache.Report produced from the same slice.
func TargetAddress(buf []byte, i int) unsafe.Pointer {
	return unsafe.Pointer(&buf[i])
}

// Analyze reduces a round of raw per-candidate timings into a Report,
// following the single-pass winner/runner-up/gap/effective-threshold
// procedure.
func Analyze(timings []int, threshold int) Report {
	rep := Report{Threshold: threshold, Timings: timings}

	winnerIdx, winnerVal := -1, int(^uint(0)>>1)
	runnerUp := int(^uint(0) >> 1)
	for i, v := range timings {
		switch {
		case v < winnerVal:
			runnerUp = winnerVal
			winnerVal = v
			winnerIdx = i
		case v < runnerUp:
			runnerUp = v
		}
	}
	if winnerIdx == -1 {
		rep.WinnerIndex = -1
		return rep
	}

	gap := runnerUp - winnerVal
	if gap < 0 || runnerUp == int(^uint(0)>>1) {
		gap = 0
	}

	effective := threshold
	if gap >= 50 {
		effective = winnerVal + gap/2
	}

	hits := 0
	for _, v := range timings {
		if v <= effective {
			hits++
		}
	}

	if hits == 0 && gap >= 50 {
		hits = 1
	}
	if winnerVal > effective {
		winnerIdx = -1
		winnerVal = 0
		hits = 0
	}

	rep.WinnerIndex = winnerIdx
	rep.WinnerValue = winnerVal
	rep.Gap = gap
	rep.EffectiveThreshold = effective
	rep.HitsCount = hits
	telemetry.ObserveCalibrationGap(gap)
	return rep
}
