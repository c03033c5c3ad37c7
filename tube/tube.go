//go:build linux

// Package tube drives a bidirectional byte channel to a subprocess or any
// other pair of read/write streams, with timeout-bounded, delimiter-based
// receive operations built for exploit-development interaction loops.
package tube

import (
	"bytes"
	"io"

	"github.com/CuB3y0nd/axium/timeout"
	"golang.org/x/sys/unix"
)

// streamState tracks the half-closed state of one direction.
type streamState int

const (
	stateOpen streamState = iota
	stateClosed
)

// Tube is a bidirectional byte channel with a configurable default
// timeout. The zero value is not usable; construct with New or via
// Spawn/SpawnExt.
type Tube struct {
	r   io.Reader
	w   io.Writer
	pid int

	rState streamState
	wState streamState

	// Default is the timeout substituted for timeout.Default by every
	// operation on this Tube.
	Default timeout.Timeout
}

// New wraps an existing reader/writer pair (for example a net.Conn, or a
// pair of os.File descriptors) as a Tube. pid is 0 when there is no
// associated child process.
func New(r io.Reader, w io.Writer, pid int) *Tube {
	return newTube(r, w, pid)
}

func newTube(r io.Reader, w io.Writer, pid int) *Tube {
	t := &Tube{r: r, w: w, pid: pid, Default: timeout.Forever}
	if r == nil {
		t.rState = stateClosed
	}
	if w == nil {
		t.wState = stateClosed
	}
	return t
}

// PID returns the associated child process ID, or 0 if none.
func (t *Tube) PID() int { return t.pid }

// Close closes both directions (and, if this Tube has an associated child,
// reaping is the caller's responsibility via Process.Close).
func (t *Tube) Close() {
	t.closeRead()
	t.closeWrite()
}

func (t *Tube) closeRead() {
	if t.rState == stateClosed {
		return
	}
	t.rState = stateClosed
	if c, ok := t.r.(io.Closer); ok {
		_ = c.Close()
	}
}

func (t *Tube) closeWrite() {
	if t.wState == stateClosed {
		return
	}
	t.wState = stateClosed
	if c, ok := t.w.(io.Closer); ok {
		_ = c.Close()
	}
}

// Send writes all of data, retrying on short writes, and returns the bytes
// written (len(data) on success, -1 on error).
func (t *Tube) Send(data []byte) int {
	if t.wState == stateClosed {
		return -1
	}
	n, err := writeAll(t.w, data)
	if err != nil {
		return -1
	}
	return n
}

// SendLine is Send followed by a single '\n'.
func (t *Tube) SendLine(data []byte) int {
	n := t.Send(data)
	if n < 0 {
		return n
	}
	m := t.Send([]byte{'\n'})
	if m < 0 {
		return m
	}
	return n + m
}

func writeAll(w io.Writer, data []byte) (int, error) {
	total := 0
	for total < len(data) {
		n, err := w.Write(data[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// pollReadable waits up to to (resolved against def) for the read side to
// become readable. It reports whether the wait ended because data is
// ready, as opposed to timing out.
func pollReadable(fd int, to timeout.Timeout, def timeout.Timeout) bool {
	to = to.Resolve(def)
	ms := to.Millis()

	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, ms)
	if err != nil || n <= 0 {
		return false
	}
	return fds[0].Revents&(unix.POLLIN|unix.POLLHUP) != 0
}

// fder is satisfied by *os.File and similar descriptor-backed readers.
type fder interface {
	Fd() uintptr
}

// Recv waits for readability (honoring to, resolved against Default), then
// performs a single read into buf. It returns 0 on timeout or EOF, -1 on
// error, or the number of bytes read. The timeout applies only to readers
// with an Fd method (such as *os.File); for any other reader the read
// blocks until the reader returns.
func (t *Tube) Recv(buf []byte, to timeout.Timeout) int {
	if t.rState == stateClosed {
		return 0
	}
	if f, ok := t.r.(fder); ok {
		if !pollReadable(int(f.Fd()), to, t.Default) {
			return 0
		}
	}
	n, err := t.r.Read(buf)
	if n == 0 {
		if err != nil {
			t.closeRead()
			if err != io.EOF {
				return -1
			}
		}
		return 0
	}
	if err != nil && err != io.EOF {
		return -1
	}
	return n
}

// RecvUntil reads one byte at a time until the trailing bytes equal delim,
// the remaining time runs out, or EOF. The delimiter, when found, is
// included in the returned slice.
func (t *Tube) RecvUntil(delim []byte, to timeout.Timeout) []byte {
	to = to.Resolve(t.Default)
	deadline, hasDeadline := to.Deadline()

	var buf bytes.Buffer
	one := make([]byte, 1)

	for {
		remaining := timeout.Forever
		if hasDeadline {
			r := timeout.Remaining(deadline)
			if r <= 0 {
				break
			}
			remaining = timeout.Timeout(r)
		}

		n := t.Recv(one, remaining)
		if n <= 0 {
			break
		}
		buf.WriteByte(one[0])

		if len(delim) > 0 && buf.Len() >= len(delim) {
			tail := buf.Bytes()[buf.Len()-len(delim):]
			if tail[len(tail)-1] == delim[len(delim)-1] && bytes.Equal(tail, delim) {
				return buf.Bytes()
			}
		}
	}
	return buf.Bytes()
}

// RecvLine is RecvUntil("\n", to).
func (t *Tube) RecvLine(to timeout.Timeout) []byte {
	return t.RecvUntil([]byte("\n"), to)
}

// RecvLines calls RecvLine up to n times under a shared deadline.
func (t *Tube) RecvLines(n int, to timeout.Timeout) [][]byte {
	to = to.Resolve(t.Default)
	deadline, hasDeadline := to.Deadline()

	lines := make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		remaining := timeout.Forever
		if hasDeadline {
			r := timeout.Remaining(deadline)
			if r <= 0 {
				break
			}
			remaining = timeout.Timeout(r)
		}
		line := t.RecvLine(remaining)
		if len(line) == 0 {
			break
		}
		lines = append(lines, line)
	}
	return lines
}

// RecvAll reads chunks until EOF or to elapses, then closes the tube,
// returning everything accumulated.
func (t *Tube) RecvAll(to timeout.Timeout) []byte {
	to = to.Resolve(t.Default)
	deadline, hasDeadline := to.Deadline()

	var out bytes.Buffer
	chunk := make([]byte, 4096)

	for {
		remaining := timeout.Forever
		if hasDeadline {
			r := timeout.Remaining(deadline)
			if r <= 0 {
				break
			}
			remaining = timeout.Timeout(r)
		}
		n := t.Recv(chunk, remaining)
		if n <= 0 {
			break
		}
		out.Write(chunk[:n])
	}
	t.Close()
	return out.Bytes()
}

// SendAfter receives up to delim, then sends data, returning what was
// received.
func (t *Tube) SendAfter(delim, data []byte, to timeout.Timeout) []byte {
	got := t.RecvUntil(delim, to)
	t.Send(data)
	return got
}

// SendLineAfter is SendAfter with SendLine for the send side.
func (t *Tube) SendLineAfter(delim, data []byte, to timeout.Timeout) []byte {
	got := t.RecvUntil(delim, to)
	t.SendLine(data)
	return got
}

// SendThen sends data, then receives up to delim.
func (t *Tube) SendThen(data, delim []byte, to timeout.Timeout) []byte {
	t.Send(data)
	return t.RecvUntil(delim, to)
}

// SendLineThen is SendThen with SendLine for the send side.
func (t *Tube) SendLineThen(data, delim []byte, to timeout.Timeout) []byte {
	t.SendLine(data)
	return t.RecvUntil(delim, to)
}
