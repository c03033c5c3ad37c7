//go:build linux && amd64

package cpu

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// Pin binds pid (0 for the calling thread) to a single logical core,
// reducing cross-core migration noise during timing measurements.
func Pin(pid, core int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(core)
	if err := unix.SchedSetaffinity(pid, &set); err != nil {
		return fmt.Errorf("cpu: pin pid %d to core %d: %w", pid, core, err)
	}
	return nil
}

// LineSize reports the L1 data cache line size in bytes, read from sysfs.
// It falls back to 64 (the universal x86-64 value) if sysfs is unavailable.
func LineSize() int {
	const path = "/sys/devices/system/cpu/cpu0/cache/index0/coherency_line_size"
	data, err := os.ReadFile(path)
	if err != nil {
		return 64
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || n <= 0 {
		return 64
	}
	return n
}
