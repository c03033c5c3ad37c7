//go:build linux && amd64

package oracle

import "testing"

func TestFindBestHit_SmallestPositiveWins(t *testing.T) {
	if got := FindBestHit([]int{50, 10, 30, 0}); got != 1 {
		t.Fatalf("FindBestHit = %d, want 1", got)
	}
}

func TestFindBestHit_AllZeroIsNoSignal(t *testing.T) {
	if got := FindBestHit([]int{0, 0, 0}); got != -1 {
		t.Fatalf("FindBestHit = %d, want -1", got)
	}
}

func TestSideChannel_QueryRunsTriggerThenDefaultAnalyzer(t *testing.T) {
	sc := &SideChannel{
		Measurements: make([]int, 4),
		Trigger: func(input int, m []int) {
			for i := range m {
				m[i] = 100
			}
			m[input%len(m)] = 5
		},
	}
	if got := sc.Query(2); got != 2 {
		t.Fatalf("Query = %d, want 2", got)
	}
}

func TestSideChannel_WaitFalseAbortsQuery(t *testing.T) {
	sc := &SideChannel{
		Measurements: make([]int, 2),
		Trigger:      func(int, []int) {},
		Wait:         func(int) bool { return false },
	}
	if got := sc.Query(0); got != -1 {
		t.Fatalf("Query = %d, want -1", got)
	}
}

func TestSideChannel_NilTriggerIsNoSignal(t *testing.T) {
	sc := &SideChannel{Measurements: make([]int, 2)}
	if got := sc.Query(0); got != -1 {
		t.Fatalf("Query = %d, want -1", got)
	}
}
