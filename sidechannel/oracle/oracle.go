//go:build linux && amd64

// Package oracle specializes the generic query abstraction to
// microarchitectural side channels: trigger a measurable event, optionally
// wait for it to be ready, then reduce the resulting measurement vector to
// a single candidate index.
package oracle

import axoracle "github.com/CuB3y0nd/axium/oracle"

// Analyzer reduces a measurement vector (one entry per candidate) to a
// winning index, or -1 if no candidate stands out.
type Analyzer func(measurements []int) int

// SideChannel adapts a trigger/wait/analyze capability set into the
// generic oracle.Oracle interface. Trigger is required; Wait and Analyze
// are optional, defaulting to "always ready" and FindBestHit respectively.
type SideChannel struct {
	// Trigger performs the measurable action for input and fills
	// Measurements with one entry per candidate (for example per cache
	// line or per byte value).
	Trigger func(input int, measurements []int)

	// Wait, if non-nil, is polled after Trigger; a false return aborts the
	// query with -1 before Analyze runs.
	Wait func(input int) bool

	// Analyze reduces Measurements to a winning index. Defaults to
	// FindBestHit.
	Analyze Analyzer

	// Measurements is reused across queries; its length is the candidate
	// count (n_candidates).
	Measurements []int
}

// Query implements oracle.Oracle.
func (s *SideChannel) Query(input int) int {
	if s.Trigger == nil || len(s.Measurements) == 0 {
		return -1
	}
	s.Trigger(input, s.Measurements)

	if s.Wait != nil && !s.Wait(input) {
		return -1
	}

	analyze := s.Analyze
	if analyze == nil {
		analyze = FindBestHit
	}
	return analyze(s.Measurements)
}

var _ axoracle.Oracle = (*SideChannel)(nil)

// FindBestHit is the default Analyzer: the index of the smallest
// strictly-positive element, or -1 if every element is zero (no signal).
func FindBestHit(measurements []int) int {
	best := -1
	bestVal := 0
	for i, v := range measurements {
		if v <= 0 {
			continue
		}
		if best == -1 || v < bestVal {
			best = i
			bestVal = v
		}
	}
	return best
}
