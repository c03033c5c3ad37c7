//go:build linux

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"
	"unsafe"

	"github.com/spf13/cobra"

	"github.com/CuB3y0nd/axium/internal/axlog"
	"github.com/CuB3y0nd/axium/internal/sizeu"
	"github.com/CuB3y0nd/axium/sidechannel/cache"
	"github.com/CuB3y0nd/axium/sidechannel/config"
	"github.com/CuB3y0nd/axium/sidechannel/flushreload"
	"github.com/CuB3y0nd/axium/sidechannel/report"
	"github.com/CuB3y0nd/axium/sidechannel/spectre"
	"github.com/CuB3y0nd/axium/sidechannel/telemetry"
	"github.com/CuB3y0nd/axium/timeout"
	"github.com/CuB3y0nd/axium/tube"
)

const banner = `axium — side-channel and exploit-primitive toolkit
profile: %s
time:    %s
`

func main() {
	root := &cobra.Command{
		Use:   "axium",
		Short: "Side-channel and exploit-primitive research toolkit",
		Long: `axium drives cache-timing side channels, Spectre-v1 training loops, and
tube-based process interaction from one binary, the way a research harness
would wire its primitives together for a live target.

Examples:
  axium calibrate
  axium watch --lines 16 --stride 4096 --json out.json
  axium spectre --ratio 30 --trials 1000
  axium tube -- ./victim`,
	}

	var profilePath string
	var metricsAddr string
	root.PersistentFlags().StringVar(&profilePath, "profile", "", "YAML profile overriding default tuning knobs")
	root.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "if set, serve Prometheus metrics on this address")

	loadProfile := func() config.Profile {
		if profilePath == "" {
			return config.Default()
		}
		p, err := config.Load(profilePath)
		if err != nil {
			axlog.Warning("falling back to default profile", "err", err)
			return config.Default()
		}
		return p
	}

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if metricsAddr != "" {
			telemetry.Enable(metricsAddr)
		}
		return nil
	}

	root.AddCommand(
		newCalibrateCmd(&loadProfile),
		newWatchCmd(&loadProfile),
		newSpectreCmd(&loadProfile),
		newTubeCmd(&loadProfile),
	)

	if err := root.Execute(); err != nil {
		axlog.Error(err.Error())
		os.Exit(1)
	}
}

func printBanner(profile string) {
	fmt.Printf(banner, profile, time.Now().Format("2006-01-02 15:04:05"))
}

type calibrateOpts struct {
	jsonPath string
}

func newCalibrateCmd(loadProfile *func() config.Profile) *cobra.Command {
	var o calibrateOpts
	cmd := &cobra.Command{
		Use:   "calibrate",
		Short: "Measure the local cache hit/miss threshold",
		RunE: func(cmd *cobra.Command, args []string) error {
			profile := (*loadProfile)()
			printBanner("calibrate")
			threshold := profile.Calibration.ThresholdOverride
			if threshold == 0 {
				threshold = cache.CalibrateThreshold()
			}
			fmt.Printf("threshold: %d cycles\n", threshold)

			if o.jsonPath != "" {
				rep := report.FromCacheReport(cache.Report{Threshold: threshold})
				if err := report.WriteJSON(o.jsonPath, rep); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&o.jsonPath, "json", "", "write the threshold as a JSON report")
	return cmd
}

type watchOpts struct {
	lines     int
	stride    int64
	threshold int
	waitCycle int
	samples   int
	jsonPath  string
	htmlPath  string
}

func newWatchCmd(loadProfile *func() config.Profile) *cobra.Command {
	var o watchOpts
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run a Flush+Reload watcher over a dedicated scratch region",
		RunE: func(cmd *cobra.Command, args []string) error {
			profile := (*loadProfile)()
			if o.lines == 0 {
				o.lines = profile.FlushReload.Lines
			}
			if o.stride == 0 {
				o.stride = profile.FlushReload.Stride
			}
			if o.threshold == 0 {
				o.threshold = profile.FlushReload.Threshold
			}
			if o.waitCycle == 0 {
				o.waitCycle = profile.FlushReload.WaitCycles
			}

			printBanner("watch")

			region := make([]byte, int64(o.lines)*o.stride)
			regionSize := sizeu.Size(len(region))
			axlog.Info("allocated scratch region", "size", regionSize.Humanized(), "pages", regionSize.Pages())
			cfg := flushreload.Config{
				Base:       unsafe.Pointer(&region[0]),
				Lines:      o.lines,
				Stride:     uintptr(o.stride),
				Threshold:  o.threshold,
				WaitCycles: o.waitCycle,
			}

			hitCounts := make([]int, o.lines)
			tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "LINE\tCYCLES")
			fmt.Fprintln(tw, "----\t------")
			tw.Flush()

			on := func(index, cycles int) {
				hitCounts[index]++
				fmt.Fprintf(tw, "%d\t%d\n", index, cycles)
				tw.Flush()
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			stopCh := make(chan struct{})
			go func() {
				<-ctx.Done()
				close(stopCh)
			}()

			if o.samples > 0 {
				time.AfterFunc(time.Duration(o.samples)*time.Second, func() {
					select {
					case <-stopCh:
					default:
						close(stopCh)
					}
				})
			}

			if err := flushreload.Run(cfg, on, stopCh); err != nil {
				return err
			}

			axlog.Info("watch finished")
			rep := report.NewWatchReport(o.threshold, hitCounts)
			if o.jsonPath != "" {
				if err := report.WriteJSON(o.jsonPath, rep); err != nil {
					return err
				}
			}
			if o.htmlPath != "" {
				if err := report.OpenVisualizer(o.htmlPath, rep); err != nil {
					axlog.Warning("could not open visualizer", "err", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&o.lines, "lines", 0, "number of watched cache lines, power of two (default from profile)")
	cmd.Flags().Int64Var(&o.stride, "stride", 0, "byte stride between lines (default from profile)")
	cmd.Flags().IntVar(&o.threshold, "threshold", 0, "hit/miss threshold in cycles (default from profile)")
	cmd.Flags().IntVar(&o.waitCycle, "wait-cycles", 0, "spin-hint cycles between flush and reload (default from profile)")
	cmd.Flags().IntVar(&o.samples, "duration", 0, "seconds to run before stopping (0 = run until Ctrl-C)")
	cmd.Flags().StringVar(&o.jsonPath, "json", "", "write per-line hit counts as a JSON report")
	cmd.Flags().StringVar(&o.htmlPath, "html", "", "open the bundled HTML visualizer against this report")
	return cmd
}

type spectreOpts struct {
	ratio     int
	trials    int
	syncDelay int
	postDelay int
	bound     uint64
	attackIdx uint64
}

func newSpectreCmd(loadProfile *func() config.Profile) *cobra.Command {
	var o spectreOpts
	cmd := &cobra.Command{
		Use:   "spectre",
		Short: "Run a Spectre-v1 PHT training/attack loop against an in-process bounds check",
		Long: `spectre trains a conditional branch toward an in-bounds decision, then
steers it out of bounds once biased, invoking a user-supplied victim closure
compiled into this command for demonstration: a bounds-checked array read
guarded by "if (idx < bound) array[idx]".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			profile := (*loadProfile)()
			if o.ratio == 0 {
				o.ratio = profile.Spectre.Ratio
			}
			if o.trials == 0 {
				o.trials = profile.Spectre.Trials
			}
			if o.syncDelay == 0 {
				o.syncDelay = profile.Spectre.SyncDelay
			}
			if o.postDelay == 0 {
				o.postDelay = profile.Spectre.PostDelay
			}

			printBanner("spectre")

			array := make([]byte, o.bound)
			var index uint64

			cfg := spectre.Config{
				Variant:     spectre.VariantPHT,
				IndexAddr:   unsafe.Pointer(&index),
				Width:       spectre.Width64,
				TrainingVal: 0,
				AttackVal:   o.attackIdx,
				Ratio:       o.ratio,
				Trials:      o.trials,
				SyncDelay:   o.syncDelay,
				PostDelay:   o.postDelay,
			}

			var leaked byte
			victim := func() {
				i := index
				if i < o.bound {
					leaked ^= array[i]
				}
			}

			spectre.Run(cfg, victim)
			fmt.Printf("trained %d trials, final sink byte: %#02x\n", o.trials, leaked)
			return nil
		},
	}
	cmd.Flags().IntVar(&o.ratio, "ratio", 0, "training-to-attack ratio per trial (default from profile)")
	cmd.Flags().IntVar(&o.trials, "trials", 0, "total outer trials (default from profile)")
	cmd.Flags().IntVar(&o.syncDelay, "sync-delay", 0, "cycles between flush and victim trigger (default from profile)")
	cmd.Flags().IntVar(&o.postDelay, "post-delay", 0, "cycles after the victim trigger (default from profile)")
	cmd.Flags().Uint64Var(&o.bound, "bound", 16, "in-bounds array length used by the demonstration victim")
	cmd.Flags().Uint64Var(&o.attackIdx, "attack-index", 64, "out-of-bounds index trained into the branch on the last ratio step")
	return cmd
}

type tubeOpts struct {
	timeoutSec float64
}

func newTubeCmd(loadProfile *func() config.Profile) *cobra.Command {
	var o tubeOpts
	cmd := &cobra.Command{
		Use:   "tube -- <argv...>",
		Short: "Spawn a process and interact with it line by line over stdin/stdout",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile := (*loadProfile)()
			def := timeout.Timeout(profile.Tube.DefaultTimeout.Seconds())
			if o.timeoutSec > 0 {
				def = timeout.Timeout(o.timeoutSec)
			}

			printBanner("tube")

			proc, err := tube.Spawn(args)
			if err != nil {
				return fmt.Errorf("spawn: %w", err)
			}
			defer proc.Close()

			t := proc.Tube()
			t.Default = def

			axlog.Info("spawned child", "pid", strconv.Itoa(proc.PID()))

			for {
				line := t.RecvLine(timeout.Default)
				if len(line) == 0 {
					break
				}
				os.Stdout.Write(line)
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&o.timeoutSec, "timeout", 0, "default per-operation timeout in seconds (default from profile)")
	return cmd
}
