package report

import (
	"fmt"
	"io"
	"strings"

	"perf-analyzer/internal/compare"
	"perf-analyzer/internal/snapshot"
)

const (
	colorGreen  = "\033[92m"
	colorRed    = "\033[91m"
	colorYellow = "\033[93m"
	colorBlue   = "\033[94m"
	colorReset  = "\033[0m"
)

var displayNames = map[string]string{
	"overall_cache_hit_rate":     "Cache Hit Rate",
	"overall_cache_miss_rate":    "Cache Miss Rate",
	"l1d_hit_rate":               "L1D Hit Rate",
	"llc_hit_rate":               "LLC Hit Rate",
	"dtlb_hit_rate":              "dTLB Hit Rate",
	"ipc":                        "Instructions Per Cycle",
	"cpi":                        "Cycles Per Instruction",
	"branch_prediction_accuracy": "Branch Prediction Accuracy",
	"branch_miss_rate":           "Branch Miss Rate",
	"frontend_stall_ratio":       "Frontend Stall Ratio",
	"backend_stall_ratio":        "Backend Stall Ratio",
}

func displayName(metric string) string {
	if name, ok := displayNames[metric]; ok {
		return name
	}
	return metric
}

// Summary prints the key metrics and top hotspots of a single snapshot.
func Summary(w io.Writer, snap *snapshot.Snapshot) {
	rule := strings.Repeat("=", 60)
	fmt.Fprintf(w, "\n%s\n", rule)
	fmt.Fprintln(w, "PERFORMANCE ANALYSIS SUMMARY")
	fmt.Fprintln(w, rule)

	cache := snap.Domain("cache")
	pipeline := snap.Domain("pipeline")

	if rate, ok := cache["overall_cache_hit_rate"]; ok {
		fmt.Fprintf(w, "Overall Cache Hit Rate: %v%%\n", rate)
	}
	if ipc, ok := pipeline["ipc"]; ok {
		fmt.Fprintf(w, "Instructions Per Cycle: %v\n", ipc)
	}
	if accuracy, ok := pipeline["branch_prediction_accuracy"]; ok {
		fmt.Fprintf(w, "Branch Prediction Accuracy: %v%%\n", accuracy)
	}

	if len(snap.Hotspots) > 0 {
		fmt.Fprintln(w, "\nTop 3 Hotspots:")
		top := snap.Hotspots
		if len(top) > 3 {
			top = top[:3]
		}
		for i, h := range top {
			function := h.Function
			if len(function) > 50 {
				function = function[:50]
			}
			fmt.Fprintf(w, "  %d. %s%% - %s\n", i+1, h.Percentage, function)
		}
	}

	fmt.Fprintf(w, "%s\n\n", rule)
}

// formatChange renders a percent change with its direction arrow; green for
// improvements, red for regressions.
func formatChange(change float64, classification compare.Classification) string {
	if change == 0 {
		return "→ 0%"
	}

	symbol := "↑"
	if change < 0 {
		symbol = "↓"
	}

	color := colorRed
	if classification == compare.Improvement {
		color = colorGreen
	}

	return fmt.Sprintf("%s%s %.2f%%%s", color, symbol, abs(change), colorReset)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// Comparison prints the full comparison report: per-metric rows grouped by
// domain, the hotspot ranking diff and the overall assessment.
func Comparison(w io.Writer, result *compare.Result) {
	rule := strings.Repeat("=", 60)
	subRule := strings.Repeat("-", 40)

	fmt.Fprintf(w, "\n%s\n", rule)
	fmt.Fprintln(w, "Performance Comparison Report")
	fmt.Fprintln(w, rule)

	lastDomain := ""
	for _, delta := range result.Metrics {
		if delta.Domain != lastDomain {
			fmt.Fprintf(w, "\n### %s Metrics\n%s\n", strings.ToUpper(delta.Domain), subRule)
			lastDomain = delta.Domain
		}
		fmt.Fprintf(w, "%-30s %8.2f → %8.2f  %s\n",
			displayName(delta.Name), delta.Baseline, delta.Current,
			formatChange(delta.PercentChange, delta.Classification))
	}

	fmt.Fprintf(w, "\n### TOP HOTSPOTS Comparison\n%s\n", subRule)
	for _, h := range result.Hotspots {
		fmt.Fprintf(w, "%-45s %6.1f%% → %6.1f%%  %s\n",
			shorten(h.Function, 40), h.Baseline, h.Current, hotspotMarker(h))
	}

	fmt.Fprintf(w, "\n%s\n", rule)
	fmt.Fprintln(w, "OVERALL ASSESSMENT")
	fmt.Fprintln(w, rule)

	if len(result.Improvements) > 0 {
		fmt.Fprintln(w, "\nImprovements:")
		for _, statement := range result.Improvements {
			fmt.Fprintf(w, "  %s• %s%s\n", colorGreen, statement, colorReset)
		}
	}

	if len(result.Regressions) > 0 {
		fmt.Fprintln(w, "\nRegressions:")
		for _, statement := range result.Regressions {
			fmt.Fprintf(w, "  %s• %s%s\n", colorRed, statement, colorReset)
		}
	}

	if result.Stable() {
		fmt.Fprintln(w, "\n→ Performance is relatively stable (no significant changes)")
	}

	fmt.Fprintln(w)
}

// hotspotMarker renders the status column of a hotspot diff row. More CPU
// share is a regression (red), less is an improvement (green).
func hotspotMarker(h compare.HotspotDelta) string {
	switch h.Status {
	case compare.HotspotNew:
		return colorYellow + "(NEW)" + colorReset
	case compare.HotspotRemoved:
		return colorBlue + "(REMOVED)" + colorReset
	case compare.HotspotIncreased:
		return fmt.Sprintf("%s↑ %.1f%%%s", colorRed, h.Delta, colorReset)
	case compare.HotspotDecreased:
		return fmt.Sprintf("%s↓ %.1f%%%s", colorGreen, -h.Delta, colorReset)
	default:
		return "→"
	}
}

func shorten(s string, limit int) string {
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
