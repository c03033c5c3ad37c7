// Package config loads tunable side-channel parameters (calibration
// overrides, Spectre synchronization delays, Flush+Reload thresholds) from a
// YAML profile, so a research run can be reproduced without recompiling.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Profile bundles the tuning knobs for one research run.
type Profile struct {
	Calibration CalibrationProfile `yaml:"calibration"`
	FlushReload FlushReloadProfile `yaml:"flush_reload"`
	Spectre     SpectreProfile     `yaml:"spectre"`
	Tube        TubeProfile        `yaml:"tube"`
}

// CalibrationProfile overrides automatic threshold calibration.
type CalibrationProfile struct {
	// ThresholdOverride, if non-zero, skips CalibrateThreshold and uses this
	// cycle count directly.
	ThresholdOverride int `yaml:"threshold_override"`
}

// FlushReloadProfile tunes a flushreload.Config built from a profile.
type FlushReloadProfile struct {
	Lines      int   `yaml:"lines"`
	Stride     int64 `yaml:"stride"`
	Threshold  int   `yaml:"threshold"`
	WaitCycles int   `yaml:"wait_cycles"`
}

// SpectreProfile tunes a spectre.Config built from a profile.
type SpectreProfile struct {
	Ratio     int `yaml:"ratio"`
	Trials    int `yaml:"trials"`
	SyncDelay int `yaml:"sync_delay"`
	PostDelay int `yaml:"post_delay"`
}

// TubeProfile sets default timeouts for process-driving commands.
type TubeProfile struct {
	DefaultTimeout time.Duration `yaml:"default_timeout"`
}

// Default returns a Profile with conservative, documented defaults.
func Default() Profile {
	return Profile{
		FlushReload: FlushReloadProfile{
			Lines:      16,
			Stride:     4096,
			Threshold:  120,
			WaitCycles: 200,
		},
		Spectre: SpectreProfile{
			Ratio:     30,
			Trials:    1000,
			SyncDelay: 50,
			PostDelay: 50,
		},
		Tube: TubeProfile{
			DefaultTimeout: time.Second,
		},
	}
}

// Load reads and parses a YAML profile from path, starting from Default()
// so an incomplete file only overrides the fields it sets.
func Load(path string) (Profile, error) {
	p := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return p, nil
}
