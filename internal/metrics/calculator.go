// Package metrics derives efficiency ratios from raw hardware counters.
//
// A derived metric is emitted only when both of its raw inputs are present
// and the denominator is strictly positive; partial inputs never produce a
// value. Percentages are rounded to 2 decimal places and ipc/cpi to 3, once,
// at production time.
package metrics

import (
	"math"

	"perf-analyzer/internal/counters"
)

// DerivedMetrics maps derived metric names to their rounded values.
type DerivedMetrics map[string]float64

func round(value float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(value*factor) / factor
}

// ratio returns numerator/denominator, gated on both counters being present
// and the denominator being strictly positive.
func ratio(raw counters.RawCounters, numerator, denominator string) (float64, bool) {
	n, ok := raw[numerator]
	if !ok {
		return 0, false
	}
	d, ok := raw[denominator]
	if !ok || d == 0 {
		return 0, false
	}
	return float64(n) / float64(d), true
}

// Cache derives hit and miss rates from cache-domain counters.
func Cache(raw counters.RawCounters) DerivedMetrics {
	derived := make(DerivedMetrics)

	if r, ok := ratio(raw, "cache_misses", "cache_references"); ok {
		derived["overall_cache_hit_rate"] = round((1-r)*100, 2)
		derived["overall_cache_miss_rate"] = round(r*100, 2)
	}

	if r, ok := ratio(raw, "l1d_load_misses", "l1d_loads"); ok {
		derived["l1d_hit_rate"] = round((1-r)*100, 2)
	}

	if r, ok := ratio(raw, "llc_load_misses", "llc_loads"); ok {
		derived["llc_hit_rate"] = round((1-r)*100, 2)
	}

	if r, ok := ratio(raw, "dtlb_load_misses", "dtlb_loads"); ok {
		derived["dtlb_hit_rate"] = round((1-r)*100, 2)
	}

	return derived
}

// Pipeline derives IPC, branch and stall metrics from pipeline-domain counters.
func Pipeline(raw counters.RawCounters) DerivedMetrics {
	derived := make(DerivedMetrics)

	if r, ok := ratio(raw, "instructions", "cycles"); ok {
		derived["ipc"] = round(r, 3)
	}

	if r, ok := ratio(raw, "cycles", "instructions"); ok {
		derived["cpi"] = round(r, 3)
	}

	if r, ok := ratio(raw, "branch_misses", "branches"); ok {
		derived["branch_prediction_accuracy"] = round((1-r)*100, 2)
		derived["branch_miss_rate"] = round(r*100, 2)
	}

	if r, ok := ratio(raw, "stalled_cycles_frontend", "cycles"); ok {
		derived["frontend_stall_ratio"] = round(r*100, 2)
	}

	if r, ok := ratio(raw, "stalled_cycles_backend", "cycles"); ok {
		derived["backend_stall_ratio"] = round(r*100, 2)
	}

	return derived
}
