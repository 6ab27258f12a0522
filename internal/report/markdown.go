package report

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"perf-analyzer/internal/metrics"
	"perf-analyzer/internal/snapshot"
)

// Canonical section order for the metric listings; extra metrics are
// appended alphabetically so nothing is silently dropped.
var cacheOrder = []string{
	"overall_cache_hit_rate",
	"overall_cache_miss_rate",
	"l1d_hit_rate",
	"llc_hit_rate",
	"dtlb_hit_rate",
}

var pipelineOrder = []string{
	"ipc",
	"cpi",
	"branch_prediction_accuracy",
	"branch_miss_rate",
	"frontend_stall_ratio",
	"backend_stall_ratio",
}

func orderedNames(m metrics.DerivedMetrics, canonical []string) []string {
	names := make([]string, 0, len(m))
	seen := make(map[string]bool)
	for _, name := range canonical {
		if _, ok := m[name]; ok {
			names = append(names, name)
			seen[name] = true
		}
	}
	var extra []string
	for name := range m {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return append(names, extra...)
}

// isPercentage reports whether a pipeline metric is expressed in percent;
// ipc and cpi are plain ratios.
func isPercentage(name string) bool {
	return strings.Contains(name, "ratio") || strings.Contains(name, "rate") || strings.Contains(name, "accuracy")
}

// WriteMarkdown renders the snapshot as a human-readable Markdown report.
func WriteMarkdown(snap *snapshot.Snapshot, path string) error {
	var b strings.Builder

	b.WriteString("# Performance Analysis Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", snap.Timestamp)

	writeSystemSection(&b, snap)

	b.WriteString("## Performance Metrics\n\n")

	if cache := snap.Domain("cache"); len(cache) > 0 {
		b.WriteString("### Cache Performance\n\n")
		for _, name := range orderedNames(cache, cacheOrder) {
			fmt.Fprintf(&b, "- **%s**: %v%%\n", name, cache[name])
		}
		b.WriteString("\n")
	}

	if pipeline := snap.Domain("pipeline"); len(pipeline) > 0 {
		b.WriteString("### Pipeline Efficiency\n\n")
		for _, name := range orderedNames(pipeline, pipelineOrder) {
			if isPercentage(name) {
				fmt.Fprintf(&b, "- **%s**: %v%%\n", name, pipeline[name])
			} else {
				fmt.Fprintf(&b, "- **%s**: %v\n", name, pipeline[name])
			}
		}
		b.WriteString("\n")
	}

	if len(snap.Hotspots) > 0 {
		b.WriteString("## Performance Hotspots\n\n")
		b.WriteString("Top CPU consuming functions:\n\n")
		top := snap.Hotspots
		if len(top) > 10 {
			top = top[:10]
		}
		for i, h := range top {
			fmt.Fprintf(&b, "%d. **%s%%** - `%s`\n", i+1, h.Percentage, h.Function)
		}
		b.WriteString("\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write markdown report %s: %w", path, err)
	}
	return nil
}

func writeSystemSection(b *strings.Builder, snap *snapshot.Snapshot) {
	system := snap.System

	pairs := []struct {
		key   string
		value string
	}{
		{"cpu_model", system.CPUModel},
		{"cpu_count", countString(system.CPUCount)},
		{"architecture", system.Architecture},
		{"l1d_cache", system.L1DCache},
		{"l1i_cache", system.L1ICache},
		{"l2_cache", system.L2Cache},
		{"l3_cache", system.L3Cache},
	}

	any := false
	for _, pair := range pairs {
		if pair.value != "" {
			any = true
			break
		}
	}
	if !any {
		return
	}

	b.WriteString("## System Information\n\n")
	for _, pair := range pairs {
		if pair.value != "" {
			fmt.Fprintf(b, "- **%s**: %s\n", pair.key, pair.value)
		}
	}
	b.WriteString("\n")
}

func countString(n int) string {
	if n == 0 {
		return ""
	}
	return fmt.Sprintf("%d", n)
}
