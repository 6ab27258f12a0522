package counters

import (
	"regexp"
	"strconv"
	"strings"
)

// RawCounters maps counter names to the counts scraped from a perf stat dump.
// Counters whose line never appeared are absent keys, never zero-filled.
type RawCounters map[string]uint64

// Rule binds a counter name to the line pattern that captures its count.
// Counter dump lines have the form "<integer-with-commas> <whitespace> <label>".
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
}

// CacheRules covers the cache-domain counters emitted by perf stat.
var CacheRules = []Rule{
	{"cache_references", regexp.MustCompile(`([\d,]+)\s+cache-references`)},
	{"cache_misses", regexp.MustCompile(`([\d,]+)\s+cache-misses`)},
	{"l1d_loads", regexp.MustCompile(`([\d,]+)\s+L1-dcache-loads`)},
	{"l1d_load_misses", regexp.MustCompile(`([\d,]+)\s+L1-dcache-load-misses`)},
	{"l1d_stores", regexp.MustCompile(`([\d,]+)\s+L1-dcache-stores`)},
	{"l1d_store_misses", regexp.MustCompile(`([\d,]+)\s+L1-dcache-store-misses`)},
	{"llc_loads", regexp.MustCompile(`([\d,]+)\s+LLC-loads`)},
	{"llc_load_misses", regexp.MustCompile(`([\d,]+)\s+LLC-load-misses`)},
	{"dtlb_loads", regexp.MustCompile(`([\d,]+)\s+dTLB-loads`)},
	{"dtlb_load_misses", regexp.MustCompile(`([\d,]+)\s+dTLB-load-misses`)},
}

// PipelineRules covers the pipeline-domain counters emitted by perf stat.
var PipelineRules = []Rule{
	{"cycles", regexp.MustCompile(`([\d,]+)\s+cycles`)},
	{"instructions", regexp.MustCompile(`([\d,]+)\s+instructions`)},
	{"branches", regexp.MustCompile(`([\d,]+)\s+branches`)},
	{"branch_misses", regexp.MustCompile(`([\d,]+)\s+branch-misses`)},
	{"stalled_cycles_frontend", regexp.MustCompile(`([\d,]+)\s+stalled-cycles-frontend`)},
	{"stalled_cycles_backend", regexp.MustCompile(`([\d,]+)\s+stalled-cycles-backend`)},
}

// Extract applies every rule to the raw counter text. The first match per
// pattern wins; a rule that does not match contributes no entry. Thousands
// separators are stripped before parsing.
func Extract(text string, rules []Rule) RawCounters {
	raw := make(RawCounters)
	for _, rule := range rules {
		match := rule.Pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		value, err := strconv.ParseUint(strings.ReplaceAll(match[1], ",", ""), 10, 64)
		if err != nil {
			continue
		}
		raw[rule.Name] = value
	}
	return raw
}
