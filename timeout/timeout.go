// Package timeout provides the monotonic clock and timeout sentinel values
// shared by the tube and side-channel packages.
package timeout

import "time"

// Timeout is a duration expressed in seconds, with two negative sentinel
// values carrying special meaning.
type Timeout float64

const (
	// Forever means "wait with no timeout at all".
	Forever Timeout = -1
	// Default means "use the caller's configured default timeout".
	Default Timeout = -2
	// Maximum is a soft cap applied to any finite, user-supplied timeout.
	Maximum Timeout = 1 << 20
)

// processStart anchors Now's monotonic reading; time.Since against it keeps
// Go's embedded monotonic clock reading instead of collapsing to wall time.
var processStart = time.Now()

// Now returns the current monotonic time in seconds, matching
// CLOCK_MONOTONIC semantics: stable, always increasing, not tied to wall
// clock adjustments.
func Now() float64 {
	return time.Since(processStart).Seconds()
}

// Clamp applies the soft Maximum cap to a finite timeout. Forever and
// Default pass through unchanged.
func (t Timeout) Clamp() Timeout {
	if t == Forever || t == Default {
		return t
	}
	if t > Maximum {
		return Maximum
	}
	return t
}

// Resolve picks the effective timeout to use given a caller-supplied value
// and a tube's configured default. Default resolves to def; everything else
// (including Forever) passes through, clamped.
func (t Timeout) Resolve(def Timeout) Timeout {
	if t == Default {
		t = def
	}
	return t.Clamp()
}

// Deadline converts a resolved timeout into an absolute monotonic deadline.
// Forever yields ok=false, meaning "no deadline".
func (t Timeout) Deadline() (deadline float64, ok bool) {
	if t == Forever || t < 0 {
		return 0, false
	}
	return Now() + float64(t), true
}

// Remaining returns the time left until deadline (deadline minus Now). It
// has no notion of "no deadline": when Deadline reported ok=false the result
// is meaningless, so callers branch on ok instead of calling Remaining.
func Remaining(deadline float64) float64 {
	return deadline - Now()
}

// Millis converts a finite timeout into its millisecond equivalent for
// poll(2)-style APis. Forever maps to -1 (infinite); Default is not
// meaningful here and must be resolved by the caller first.
func (t Timeout) Millis() int {
	if t == Forever || t < 0 {
		return -1
	}
	return int(float64(t) * 1000.0)
}
