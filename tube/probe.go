//go:build linux

package tube

import (
	"time"

	"github.com/CuB3y0nd/axium/timeout"
	"golang.org/x/sys/unix"
)

// Exists reports whether pid currently exists, by sending signal 0: a
// successful delivery or EPERM (owned by another user) both count as
// existence; anything else (typically ESRCH) does not. pid <= 0 is always
// false.
func Exists(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	return err == nil || err == unix.EPERM
}

// WaitForPID polls Exists with a 1ms sleep between checks until pid exits
// or timeoutMs elapses. timeoutMs == 0 waits indefinitely. It returns true
// if the process exited before the timeout.
func WaitForPID(pid int, timeoutMs int) bool {
	if !Exists(pid) {
		return true
	}

	var deadline float64
	hasDeadline := timeoutMs != 0
	if hasDeadline {
		deadline = timeout.Now() + float64(timeoutMs)/1000.0
	}

	for Exists(pid) {
		if hasDeadline && timeout.Now() >= deadline {
			return false
		}
		time.Sleep(time.Millisecond)
	}
	return true
}
