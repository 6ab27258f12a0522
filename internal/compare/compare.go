// Package compare classifies the differences between two performance
// snapshots as improvements, regressions or neutral changes.
//
// Percent change against a zero baseline is defined as 0, so a metric
// appearing from nothing reads as "no change". This conflation of "no prior
// data" with "no change" is carried over from the established report
// semantics on purpose; downstream reports depend on it.
package compare

import (
	"fmt"
	"sort"

	"perf-analyzer/internal/snapshot"
)

// DefaultThreshold is the significance threshold (in percent) applied to the
// overall assessment roll-up.
const DefaultThreshold = 1.0

const (
	topHotspots     = 5
	hotspotDeadZone = 0.5
	displayLimit    = 10
)

// Classification labels the direction of a metric delta.
type Classification string

const (
	Improvement Classification = "improvement"
	Regression  Classification = "regression"
	Neutral     Classification = "neutral"
)

// Polarity maps a metric name to whether a higher value is better.
type Polarity map[string]bool

// DefaultPolarity covers every metric the calculator produces.
func DefaultPolarity() Polarity {
	return Polarity{
		"overall_cache_hit_rate":     true,
		"overall_cache_miss_rate":    false,
		"l1d_hit_rate":               true,
		"llc_hit_rate":               true,
		"dtlb_hit_rate":              true,
		"ipc":                        true,
		"cpi":                        false,
		"branch_prediction_accuracy": true,
		"branch_miss_rate":           false,
		"frontend_stall_ratio":       false,
		"backend_stall_ratio":        false,
	}
}

// MetricDelta is the per-metric comparison row.
type MetricDelta struct {
	Domain         string
	Name           string
	Baseline       float64
	Current        float64
	PercentChange  float64
	Classification Classification
}

// HotspotStatus labels how a function moved between the two rankings.
type HotspotStatus string

const (
	HotspotNew       HotspotStatus = "new"
	HotspotRemoved   HotspotStatus = "removed"
	HotspotIncreased HotspotStatus = "increased"
	HotspotDecreased HotspotStatus = "decreased"
	HotspotUnchanged HotspotStatus = "unchanged"
)

// HotspotDelta is one row of the hotspot ranking diff.
type HotspotDelta struct {
	Function string
	Baseline float64
	Current  float64
	Delta    float64
	Status   HotspotStatus
}

// Result is the read-only comparison of two snapshots.
type Result struct {
	Metrics      []MetricDelta
	Hotspots     []HotspotDelta
	Improvements []string
	Regressions  []string
}

// Stable reports whether the overall assessment found no significant change.
func (r *Result) Stable() bool {
	return len(r.Improvements) == 0 && len(r.Regressions) == 0
}

// Options configures a comparison.
type Options struct {
	// Polarity resolves the improvement direction per metric; nil uses
	// DefaultPolarity. Metrics absent from the table classify as neutral.
	Polarity Polarity
	// Threshold is the significance threshold in percent for the overall
	// roll-up; zero or negative uses DefaultThreshold.
	Threshold float64
}

// PercentChange computes ((current-baseline)/baseline)*100. A zero baseline
// yields 0 regardless of current; this is a deliberate floor, not a true
// percentage.
func PercentChange(baseline, current float64) float64 {
	if baseline == 0 {
		return 0
	}
	return (current - baseline) / baseline * 100
}

// Classify labels a percent change given the metric's polarity.
func Classify(change float64, higherIsBetter bool) Classification {
	if change == 0 {
		return Neutral
	}
	if (change > 0) == higherIsBetter {
		return Improvement
	}
	return Regression
}

// Compare diffs two snapshots metric by metric and hotspot by hotspot, and
// rolls the key deltas up into an overall assessment.
func Compare(baseline, current *snapshot.Snapshot, opts Options) *Result {
	polarity := opts.Polarity
	if polarity == nil {
		polarity = DefaultPolarity()
	}
	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	result := &Result{
		Metrics:  compareMetrics(baseline, current, polarity),
		Hotspots: compareHotspots(baseline, current),
	}
	result.Improvements, result.Regressions = assess(baseline, current, threshold)
	return result
}

func compareMetrics(baseline, current *snapshot.Snapshot, polarity Polarity) []MetricDelta {
	var deltas []MetricDelta

	for _, domain := range []string{"cache", "pipeline"} {
		baseMetrics := baseline.Domain(domain)
		curMetrics := current.Domain(domain)

		names := make(map[string]bool)
		for name := range baseMetrics {
			names[name] = true
		}
		for name := range curMetrics {
			names[name] = true
		}

		sorted := make([]string, 0, len(names))
		for name := range names {
			sorted = append(sorted, name)
		}
		sort.Strings(sorted)

		for _, name := range sorted {
			baseVal := baseMetrics[name]
			curVal := curMetrics[name]
			if baseVal == 0 && curVal == 0 {
				continue
			}

			change := PercentChange(baseVal, curVal)
			classification := Neutral
			if higherIsBetter, known := polarity[name]; known {
				classification = Classify(change, higherIsBetter)
			}

			deltas = append(deltas, MetricDelta{
				Domain:         domain,
				Name:           name,
				Baseline:       baseVal,
				Current:        curVal,
				PercentChange:  change,
				Classification: classification,
			})
		}
	}

	return deltas
}

// topHotspotMap builds label -> percentage for the top entries of a snapshot.
// Entries whose wire percentage fails to parse are skipped.
func topHotspotMap(snap *snapshot.Snapshot) map[string]float64 {
	top := snap.Hotspots
	if len(top) > topHotspots {
		top = top[:topHotspots]
	}

	m := make(map[string]float64, len(top))
	for _, h := range top {
		value, err := h.Value()
		if err != nil {
			continue
		}
		if _, seen := m[h.Function]; !seen {
			m[h.Function] = value
		}
	}
	return m
}

func compareHotspots(baseline, current *snapshot.Snapshot) []HotspotDelta {
	baseMap := topHotspotMap(baseline)
	curMap := topHotspotMap(current)

	functions := make([]string, 0, len(baseMap)+len(curMap))
	seen := make(map[string]bool)
	for fn := range baseMap {
		seen[fn] = true
		functions = append(functions, fn)
	}
	for fn := range curMap {
		if !seen[fn] {
			functions = append(functions, fn)
		}
	}

	// Ranked by current share; labels gone from the current snapshot sort
	// at zero. Name breaks ties to keep the output deterministic.
	sort.Slice(functions, func(i, j int) bool {
		a, b := curMap[functions[i]], curMap[functions[j]]
		if a != b {
			return a > b
		}
		return functions[i] < functions[j]
	})
	if len(functions) > displayLimit {
		functions = functions[:displayLimit]
	}

	deltas := make([]HotspotDelta, 0, len(functions))
	for _, fn := range functions {
		basePct, inBase := baseMap[fn]
		curPct, inCur := curMap[fn]

		row := HotspotDelta{Function: fn, Baseline: basePct, Current: curPct}
		switch {
		case !inBase:
			row.Status = HotspotNew
		case !inCur:
			row.Status = HotspotRemoved
		default:
			row.Delta = curPct - basePct
			switch {
			case row.Delta >= hotspotDeadZone:
				row.Status = HotspotIncreased
			case row.Delta <= -hotspotDeadZone:
				row.Status = HotspotDecreased
			default:
				row.Status = HotspotUnchanged
			}
		}
		deltas = append(deltas, row)
	}

	return deltas
}

// assess rolls cache hit rate and IPC deltas up into human-readable
// statements, gated on the significance threshold.
func assess(baseline, current *snapshot.Snapshot, threshold float64) (improvements, regressions []string) {
	if _, ok := current.Metrics["cache"]; ok {
		change := PercentChange(
			baseline.Domain("cache")["overall_cache_hit_rate"],
			current.Domain("cache")["overall_cache_hit_rate"],
		)
		if change > threshold {
			improvements = append(improvements, fmt.Sprintf("Cache performance improved by %.1f%%", change))
		} else if change < -threshold {
			regressions = append(regressions, fmt.Sprintf("Cache performance degraded by %.1f%%", -change))
		}
	}

	if _, ok := current.Metrics["pipeline"]; ok {
		change := PercentChange(
			baseline.Domain("pipeline")["ipc"],
			current.Domain("pipeline")["ipc"],
		)
		if change > threshold {
			improvements = append(improvements, fmt.Sprintf("IPC improved by %.1f%%", change))
		} else if change < -threshold {
			regressions = append(regressions, fmt.Sprintf("IPC degraded by %.1f%%", -change))
		}
	}

	return improvements, regressions
}
