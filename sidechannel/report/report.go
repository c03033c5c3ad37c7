// Package report serializes cache and watcher results to JSON for external
// tooling, and can open a bundled HTML visualizer against a serialized
// report.
package report

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"runtime"

	"github.com/CuB3y0nd/axium/sidechannel/cache"
)

// CacheReport is the JSON wire form of a cache.Report.
type CacheReport struct {
	Threshold          int   `json:"threshold"`
	EffectiveThreshold int   `json:"effective_threshold"`
	WinnerIndex        int   `json:"winner_idx"`
	WinnerValue        int   `json:"winner_val"`
	Gap                int   `json:"gap"`
	HitsCount          int   `json:"hits_count"`
	Count              int   `json:"count"`
	Timings            []int `json:"timings"`
}

// FromCacheReport converts a cache.Report into its JSON wire form.
func FromCacheReport(r cache.Report) CacheReport {
	return CacheReport{
		Threshold:          r.Threshold,
		EffectiveThreshold: r.EffectiveThreshold,
		WinnerIndex:        r.WinnerIndex,
		WinnerValue:        r.WinnerValue,
		Gap:                r.Gap,
		HitsCount:          r.HitsCount,
		Count:              len(r.Timings),
		Timings:            r.Timings,
	}
}

// WatchReport is the JSON wire form of a Flush+Reload watch session
// summary.
type WatchReport struct {
	Type       string `json:"type"`
	Count      int    `json:"count"`
	Threshold  int    `json:"threshold"`
	TotalHits  int    `json:"total_hits"`
	HitCounts  []int  `json:"hit_counts"`
}

// NewWatchReport builds a WatchReport from a set of per-line hit counts.
func NewWatchReport(threshold int, hitCounts []int) WatchReport {
	total := 0
	for _, h := range hitCounts {
		total += h
	}
	return WatchReport{
		Type:      "watch",
		Count:     len(hitCounts),
		Threshold: threshold,
		TotalHits: total,
		HitCounts: hitCounts,
	}
}

// WriteJSON marshals v (a CacheReport or WatchReport) to path as indented
// JSON.
func WriteJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("report: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("report: write %s: %w", path, err)
	}
	return nil
}

// OpenVisualizer opens the bundled HTML visualizer in the system's default
// browser, passing the serialized report as a URL query parameter.
func OpenVisualizer(htmlPath string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("report: marshal: %w", err)
	}
	target := fmt.Sprintf("file://%s?report=%s", htmlPath, url.QueryEscape(string(data)))

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", target)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	default:
		cmd = exec.Command("xdg-open", target)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("report: open visualizer: %w", err)
	}
	return nil
}
