//go:build linux && amd64

package spectre

import (
	"testing"
	"unsafe"
)

func pointerOf(p *uint32) unsafe.Pointer { return unsafe.Pointer(p) }

func TestRun_InvokesVictimRatioPlusOneTimesPerTrial(t *testing.T) {
	var idx uint32
	calls := 0
	cfg := Config{
		Variant:     VariantPHT,
		IndexAddr:   pointerOf(&idx),
		Width:       Width32,
		TrainingVal: 1,
		AttackVal:   999,
		Ratio:       4,
		Trials:      3,
		SyncDelay:   1,
		PostDelay:   1,
	}
	Run(cfg, func() { calls++ })

	want := cfg.Trials * (cfg.Ratio + 1)
	if calls != want {
		t.Fatalf("victim invoked %d times, want %d", calls, want)
	}
}

func TestRun_NonPHTVariantIsNoop(t *testing.T) {
	calls := 0
	cfg := Config{Variant: VariantBTB, Trials: 5, Ratio: 5}
	Run(cfg, func() { calls++ })
	if calls != 0 {
		t.Fatalf("expected no-op for non-PHT variant, got %d calls", calls)
	}
}

func TestRun_LastIterationUsesAttackValue(t *testing.T) {
	var idx uint32
	var lastSeen uint32
	cfg := Config{
		Variant:     VariantPHT,
		IndexAddr:   pointerOf(&idx),
		Width:       Width32,
		TrainingVal: 1,
		AttackVal:   0xFFFF,
		Ratio:       3,
		Trials:      1,
	}
	Run(cfg, func() { lastSeen = idx })
	if lastSeen != 0xFFFF {
		t.Fatalf("last victim call saw index %d, want attack value %d", lastSeen, uint32(0xFFFF))
	}
}

func TestRun_SetupOverridesDirectWrite(t *testing.T) {
	var seen []uint64
	cfg := Config{
		Variant: VariantPHT,
		Setup: func(x uint64) {
			seen = append(seen, x)
		},
		TrainingVal: 1,
		AttackVal:   2,
		Ratio:       1,
		Trials:      1,
	}
	Run(cfg, func() {})
	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Fatalf("Setup saw %v, want [1 2]", seen)
	}
}
