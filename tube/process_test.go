//go:build linux

package tube

import (
	"testing"

	"github.com/CuB3y0nd/axium/timeout"
)

func TestSpawn_CatEchoesStdin(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping real process spawn in short mode")
	}

	proc, err := Spawn([]string{"/bin/cat"})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	defer proc.Close()

	if proc.PID() <= 0 {
		t.Fatalf("PID() = %d, want positive", proc.PID())
	}

	tb := proc.Tube()
	tb.Send([]byte("hello\n"))

	got := tb.RecvLine(timeout.Timeout(2))
	if string(got) != "hello\n" {
		t.Fatalf("RecvLine = %q, want %q", got, "hello\n")
	}
}

func TestSpawn_ShInteractsOverPipes(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping real process spawn in short mode")
	}

	proc, err := Spawn([]string{"/bin/sh", "-c", "read line; echo \"got: $line\""})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	defer proc.Close()

	tb := proc.Tube()
	tb.Send([]byte("ping\n"))

	got := tb.RecvLine(timeout.Timeout(2))
	if string(got) != "got: ping\n" {
		t.Fatalf("RecvLine = %q, want %q", got, "got: ping\n")
	}
}

func TestSpawn_StreamSubsetLeavesOthersUnpiped(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping real process spawn in short mode")
	}

	proc, err := SpawnExt([]string{"/bin/cat"}, nil, StreamStdin|StreamStdout)
	if err != nil {
		t.Fatalf("SpawnExt: %v", err)
	}
	defer proc.Close()

	if proc.Stderr() != nil {
		t.Fatalf("Stderr() = %v, want nil when StreamStderr not requested", proc.Stderr())
	}
}

func TestSpawn_NonexistentProgramFails(t *testing.T) {
	proc, err := Spawn([]string{"/nonexistent/program/does-not-exist"})
	if err == nil {
		proc.Close()
		t.Fatalf("Spawn succeeded for a nonexistent program")
	}
	if proc != nil {
		t.Fatalf("Spawn returned a non-nil Process alongside an error")
	}
}

func TestSpawn_EmptyArgvFails(t *testing.T) {
	proc, err := Spawn(nil)
	if err == nil {
		proc.Close()
		t.Fatalf("Spawn succeeded for an empty argv")
	}
}
