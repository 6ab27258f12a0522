package compare

import (
	"math"
	"strings"
	"testing"
	"time"

	"perf-analyzer/internal/hotspots"
	"perf-analyzer/internal/metrics"
	"perf-analyzer/internal/snapshot"
	"perf-analyzer/internal/sysinfo"
)

func snapWith(cache, pipeline metrics.DerivedMetrics, entries []hotspots.Entry) *snapshot.Snapshot {
	return snapshot.New(time.Unix(1700000000, 0), sysinfo.SystemInfo{}, cache, pipeline, entries)
}

func findMetric(t *testing.T, deltas []MetricDelta, name string) MetricDelta {
	t.Helper()
	for _, d := range deltas {
		if d.Name == name {
			return d
		}
	}
	t.Fatalf("metric %s not found in %v", name, deltas)
	return MetricDelta{}
}

func TestPercentChangeZeroBaseline(t *testing.T) {
	if got := PercentChange(0, 42); got != 0 {
		t.Fatalf("expected 0 for zero baseline, got %v", got)
	}
	if got := PercentChange(0, 0); got != 0 {
		t.Fatalf("expected 0 for zero baseline and current, got %v", got)
	}
}

func TestPercentChange(t *testing.T) {
	got := PercentChange(85.0, 92.0)
	if math.Abs(got-8.235294) > 0.0001 {
		t.Fatalf("expected ~8.24, got %v", got)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		change         float64
		higherIsBetter bool
		want           Classification
	}{
		{8.24, true, Improvement},
		{-3.0, true, Regression},
		{8.24, false, Regression},
		{-3.0, false, Improvement},
		{0, true, Neutral},
		{0, false, Neutral},
	}
	for _, tc := range cases {
		if got := Classify(tc.change, tc.higherIsBetter); got != tc.want {
			t.Fatalf("Classify(%v, %v) = %v, want %v", tc.change, tc.higherIsBetter, got, tc.want)
		}
	}
}

func TestCompareHitRateImprovement(t *testing.T) {
	baseline := snapWith(metrics.DerivedMetrics{"overall_cache_hit_rate": 85.0}, nil, nil)
	current := snapWith(metrics.DerivedMetrics{"overall_cache_hit_rate": 92.0}, nil, nil)

	result := Compare(baseline, current, Options{})

	delta := findMetric(t, result.Metrics, "overall_cache_hit_rate")
	if math.Abs(delta.PercentChange-8.235294) > 0.0001 {
		t.Fatalf("expected change ~8.24%%, got %v", delta.PercentChange)
	}
	if delta.Classification != Improvement {
		t.Fatalf("expected improvement, got %v", delta.Classification)
	}

	if len(result.Improvements) != 1 || !strings.Contains(result.Improvements[0], "Cache performance improved by 8.2%") {
		t.Fatalf("unexpected assessment: %v", result.Improvements)
	}
}

func TestCompareMissRatePolarity(t *testing.T) {
	baseline := snapWith(metrics.DerivedMetrics{"overall_cache_miss_rate": 15.0}, nil, nil)
	current := snapWith(metrics.DerivedMetrics{"overall_cache_miss_rate": 8.0}, nil, nil)

	result := Compare(baseline, current, Options{})

	delta := findMetric(t, result.Metrics, "overall_cache_miss_rate")
	if delta.Classification != Improvement {
		t.Fatalf("lower miss rate should classify as improvement, got %v", delta.Classification)
	}
}

func TestCompareSnapshotAgainstItself(t *testing.T) {
	snap := snapWith(
		metrics.DerivedMetrics{"overall_cache_hit_rate": 92.5, "overall_cache_miss_rate": 7.5},
		metrics.DerivedMetrics{"ipc": 1.85, "cpi": 0.541},
		[]hotspots.Entry{{Percentage: 35.2, Function: "matrix_multiply"}},
	)

	result := Compare(snap, snap, Options{})

	for _, delta := range result.Metrics {
		if delta.PercentChange != 0 {
			t.Fatalf("metric %s: expected 0%% change, got %v", delta.Name, delta.PercentChange)
		}
		if delta.Classification != Neutral {
			t.Fatalf("metric %s: expected neutral, got %v", delta.Name, delta.Classification)
		}
	}
	if !result.Stable() {
		t.Fatalf("self comparison must be stable, got %v / %v", result.Improvements, result.Regressions)
	}
	for _, h := range result.Hotspots {
		if h.Status != HotspotUnchanged {
			t.Fatalf("hotspot %s: expected unchanged, got %v", h.Function, h.Status)
		}
	}
}

func TestCompareSkipsMetricsAbsentFromBoth(t *testing.T) {
	baseline := snapWith(metrics.DerivedMetrics{"overall_cache_hit_rate": 85.0}, nil, nil)
	current := snapWith(metrics.DerivedMetrics{"overall_cache_hit_rate": 85.0}, nil, nil)

	result := Compare(baseline, current, Options{})

	for _, delta := range result.Metrics {
		if delta.Name == "llc_hit_rate" {
			t.Fatalf("metric absent from both snapshots should not appear")
		}
	}
}

func TestCompareIPCRegressionRollUp(t *testing.T) {
	baseline := snapWith(nil, metrics.DerivedMetrics{"ipc": 2.0}, nil)
	current := snapWith(nil, metrics.DerivedMetrics{"ipc": 1.8}, nil)

	result := Compare(baseline, current, Options{})

	delta := findMetric(t, result.Metrics, "ipc")
	if delta.Classification != Regression {
		t.Fatalf("expected regression, got %v", delta.Classification)
	}
	if len(result.Regressions) != 1 || !strings.Contains(result.Regressions[0], "IPC degraded by 10.0%") {
		t.Fatalf("unexpected assessment: %v", result.Regressions)
	}
}

func TestCompareInsignificantChangeIsStable(t *testing.T) {
	baseline := snapWith(metrics.DerivedMetrics{"overall_cache_hit_rate": 90.0}, nil, nil)
	current := snapWith(metrics.DerivedMetrics{"overall_cache_hit_rate": 90.5}, nil, nil)

	result := Compare(baseline, current, Options{})

	if !result.Stable() {
		t.Fatalf("change below the significance threshold must be stable: %v %v",
			result.Improvements, result.Regressions)
	}

	// per-metric display still classifies by sign
	delta := findMetric(t, result.Metrics, "overall_cache_hit_rate")
	if delta.Classification != Improvement {
		t.Fatalf("per-metric classification should stay sign-based, got %v", delta.Classification)
	}
}

func TestCompareCustomThreshold(t *testing.T) {
	baseline := snapWith(metrics.DerivedMetrics{"overall_cache_hit_rate": 90.0}, nil, nil)
	current := snapWith(metrics.DerivedMetrics{"overall_cache_hit_rate": 93.0}, nil, nil)

	strict := Compare(baseline, current, Options{Threshold: 5.0})
	if !strict.Stable() {
		t.Fatalf("3.3%% change should be stable under a 5%% threshold")
	}

	lax := Compare(baseline, current, Options{Threshold: 1.0})
	if lax.Stable() {
		t.Fatalf("3.3%% change should be significant under a 1%% threshold")
	}
}

func TestCompareUnknownPolarityIsNeutral(t *testing.T) {
	baseline := snapWith(metrics.DerivedMetrics{"mystery_rate": 10.0}, nil, nil)
	current := snapWith(metrics.DerivedMetrics{"mystery_rate": 20.0}, nil, nil)

	result := Compare(baseline, current, Options{})

	delta := findMetric(t, result.Metrics, "mystery_rate")
	if delta.Classification != Neutral {
		t.Fatalf("metric without polarity should classify neutral, got %v", delta.Classification)
	}
}

func TestCompareHotspotDiff(t *testing.T) {
	baseline := snapWith(nil, nil, []hotspots.Entry{
		{Percentage: 30.0, Function: "alpha"},
		{Percentage: 20.0, Function: "beta"},
		{Percentage: 10.0, Function: "gone"},
	})
	current := snapWith(nil, nil, []hotspots.Entry{
		{Percentage: 33.0, Function: "alpha"},
		{Percentage: 20.2, Function: "beta"},
		{Percentage: 5.0, Function: "fresh"},
	})

	result := Compare(baseline, current, Options{})

	byFunction := make(map[string]HotspotDelta)
	for _, h := range result.Hotspots {
		byFunction[h.Function] = h
	}

	alpha := byFunction["alpha"]
	if alpha.Status != HotspotIncreased || math.Abs(alpha.Delta-3.0) > 0.0001 {
		t.Fatalf("unexpected alpha diff: %+v", alpha)
	}
	if byFunction["beta"].Status != HotspotUnchanged {
		t.Fatalf("0.2pp shift should collapse to unchanged: %+v", byFunction["beta"])
	}
	if byFunction["fresh"].Status != HotspotNew {
		t.Fatalf("expected fresh to be new: %+v", byFunction["fresh"])
	}
	if byFunction["gone"].Status != HotspotRemoved {
		t.Fatalf("expected gone to be removed: %+v", byFunction["gone"])
	}
}

func TestCompareHotspotDiffUsesTopFiveOnly(t *testing.T) {
	var baseEntries []hotspots.Entry
	for _, fn := range []string{"a", "b", "c", "d", "e", "sixth"} {
		baseEntries = append(baseEntries, hotspots.Entry{Percentage: 10.0, Function: fn})
	}

	baseline := snapWith(nil, nil, baseEntries)
	current := snapWith(nil, nil, baseEntries[:5])

	result := Compare(baseline, current, Options{})

	for _, h := range result.Hotspots {
		if h.Function == "sixth" {
			t.Fatalf("entry outside the top 5 must not participate in the diff")
		}
	}
}

func TestCompareHotspotDisplayRankedByCurrent(t *testing.T) {
	baseline := snapWith(nil, nil, []hotspots.Entry{
		{Percentage: 40.0, Function: "removed_big"},
	})
	current := snapWith(nil, nil, []hotspots.Entry{
		{Percentage: 10.0, Function: "small"},
		{Percentage: 30.0, Function: "big"},
	})

	result := Compare(baseline, current, Options{})

	if len(result.Hotspots) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(result.Hotspots))
	}
	if result.Hotspots[0].Function != "big" || result.Hotspots[1].Function != "small" {
		t.Fatalf("expected ranking by current percentage, got %v", result.Hotspots)
	}
	// labels gone from current rank at zero, after everything still present
	if result.Hotspots[2].Function != "removed_big" {
		t.Fatalf("expected removed label last, got %v", result.Hotspots)
	}
}
