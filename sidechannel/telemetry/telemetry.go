// Package telemetry provides opt-in Prometheus instrumentation for the
// side-channel components: Flush+Reload hit rate, calibration gap, and
// statistical-scanner retry counts. All exported functions are no-ops until
// Enable is called, so callers on the hot measurement path pay no cost by
// default.
package telemetry

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var enabled atomic.Bool

var (
	flushReloadHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "axium_flushreload_hits_total",
		Help: "Total reload accesses that landed below the watcher threshold",
	})
	flushReloadProbes = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "axium_flushreload_probes_total",
		Help: "Total reload probes issued by the watcher",
	})
	calibrationGap = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "axium_calibration_gap_cycles",
		Help: "Most recent cache analysis gap between winner and runner-up",
	})
	scanRetries = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "axium_scanner_retries",
		Help:    "Retries consumed per byte by the statistical scanner",
		Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 128},
	})
	scanLostSignal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "axium_scanner_lost_signal_total",
		Help: "Total byte positions where the statistical scanner exhausted max_retries",
	})
)

func init() {
	prometheus.MustRegister(flushReloadHits, flushReloadProbes, calibrationGap, scanRetries, scanLostSignal)
}

// Enable turns on telemetry collection. If addr is non-empty, it also
// starts a background HTTP server exposing /metrics at addr.
func Enable(addr string) {
	enabled.Store(true)
	if addr != "" {
		serveMetrics(addr)
	}
}

// Enabled reports whether telemetry is active.
func Enabled() bool { return enabled.Load() }

// ObserveFlushReloadProbe records one reload probe, and whether it counted
// as a hit.
func ObserveFlushReloadProbe(hit bool) {
	if !enabled.Load() {
		return
	}
	flushReloadProbes.Inc()
	if hit {
		flushReloadHits.Inc()
	}
}

// ObserveCalibrationGap records the gap from the most recent cache.Analyze
// call.
func ObserveCalibrationGap(gap int) {
	if !enabled.Load() {
		return
	}
	calibrationGap.Set(float64(gap))
}

// ObserveScanRetries records the number of retries a scanner consumed to
// resolve one byte.
func ObserveScanRetries(retries int) {
	if !enabled.Load() {
		return
	}
	scanRetries.Observe(float64(retries))
}

// ObserveLostSignal records that the scanner exhausted max_retries at a
// byte position without reaching confidence.
func ObserveLostSignal() {
	if !enabled.Load() {
		return
	}
	scanLostSignal.Inc()
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		_ = server.ListenAndServe()
	}()
}
