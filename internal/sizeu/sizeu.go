// Package sizeu renders byte counts as human-readable sizes, for CLI and
// report output describing scratch region and payload sizes.
package sizeu

import "fmt"

// Size is a uint64 wrapper representing a count of bytes.
type Size uint64

// Humanized returns a human-readable string with automatic unit (B, KB, MB,
// GB, TB), using 1024 as the unit base.
func (s Size) Humanized() string {
	v := float64(s)
	switch {
	case s >= 1<<40:
		return fmt.Sprintf("%.2f TB", v/(1<<40))
	case s >= 1<<30:
		return fmt.Sprintf("%.2f GB", v/(1<<30))
	case s >= 1<<20:
		return fmt.Sprintf("%.2f MB", v/(1<<20))
	case s >= 1<<10:
		return fmt.Sprintf("%.2f KB", v/(1<<10))
	default:
		return fmt.Sprintf("%d B", s)
	}
}

// KB returns the size in kilobytes (1024 base).
func (s Size) KB() float64 { return float64(s) / 1024 }

// MB returns the size in megabytes (1024 base).
func (s Size) MB() float64 { return float64(s) / (1024 * 1024) }

// GB returns the size in gigabytes (1024 base).
func (s Size) GB() float64 { return float64(s) / (1024 * 1024 * 1024) }

// String implements fmt.Stringer, so a Size logs or formats as its
// human-readable form without an explicit Humanized() call.
func (s Size) String() string { return s.Humanized() }

// pageSize mirrors the scratch-page size the cache and Flush+Reload packages
// allocate against.
const pageSize = 4096

// Pages returns the number of pageSize pages s spans, rounding up, for
// reporting how many pages a scratch region allocation touches.
func (s Size) Pages() int {
	return int((uint64(s) + pageSize - 1) / pageSize)
}
