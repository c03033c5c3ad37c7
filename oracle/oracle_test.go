package oracle

import "testing"

func TestFunc_QueryDelegates(t *testing.T) {
	f := Func(func(input int) int { return input * 2 })
	if got := f.Query(5); got != 10 {
		t.Fatalf("Query(5) = %d, want 10", got)
	}
}

func TestFunc_NilIsNoSignal(t *testing.T) {
	var f Func
	if got := f.Query(1); got != -1 {
		t.Fatalf("nil Func.Query = %d, want -1", got)
	}
}

func TestScan_StopsOnNegativeResult(t *testing.T) {
	o := Func(func(input int) int {
		if input == 3 {
			return -1
		}
		return input
	})
	buf := make([]byte, 10)
	n := Scan(o, buf, -1)
	if n != 3 {
		t.Fatalf("Scan stopped at %d, want 3", n)
	}
}

func TestScan_StopsAtTerminatorInclusive(t *testing.T) {
	o := Func(func(input int) int { return input })
	buf := make([]byte, 10)
	n := Scan(o, buf, 4)
	if n != 5 {
		t.Fatalf("Scan length %d, want 5 (terminator included)", n)
	}
	if buf[4] != 4 {
		t.Fatalf("buf[4] = %d, want 4", buf[4])
	}
}

func TestScan_NilOracleOrBuf(t *testing.T) {
	if n := Scan(nil, make([]byte, 4), -1); n != 0 {
		t.Fatalf("Scan(nil oracle) = %d, want 0", n)
	}
	if n := Scan(Func(func(int) int { return 0 }), nil, -1); n != 0 {
		t.Fatalf("Scan(nil buf) = %d, want 0", n)
	}
}
