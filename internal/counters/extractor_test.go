package counters

import "testing"

func TestExtractCacheCounters(t *testing.T) {
	text := `
 Performance counter stats for './benchmark':

         1,000      cache-references
           100      cache-misses
    12,345,678      L1-dcache-loads
       234,567      L1-dcache-load-misses
`
	raw := Extract(text, CacheRules)

	if got := raw["cache_references"]; got != 1000 {
		t.Fatalf("expected cache_references 1000, got %d", got)
	}
	if got := raw["cache_misses"]; got != 100 {
		t.Fatalf("expected cache_misses 100, got %d", got)
	}
	if got := raw["l1d_loads"]; got != 12345678 {
		t.Fatalf("expected l1d_loads 12345678, got %d", got)
	}
	if got := raw["l1d_load_misses"]; got != 234567 {
		t.Fatalf("expected l1d_load_misses 234567, got %d", got)
	}
}

func TestExtractMissingLabelIsAbsent(t *testing.T) {
	raw := Extract("1,000 cache-references\n", CacheRules)

	if _, ok := raw["cache_misses"]; ok {
		t.Fatalf("expected cache_misses to be absent, got %d", raw["cache_misses"])
	}
	if len(raw) != 1 {
		t.Fatalf("expected exactly one counter, got %d", len(raw))
	}
}

func TestExtractFirstMatchWins(t *testing.T) {
	text := "500 cache-misses\n900 cache-misses\n"
	raw := Extract(text, CacheRules)

	if got := raw["cache_misses"]; got != 500 {
		t.Fatalf("expected first match 500 to win, got %d", got)
	}
}

func TestExtractPipelineCounters(t *testing.T) {
	text := `
     2,000,000      cycles
     4,000,000      instructions
       300,000      branches
         3,000      branch-misses
       120,000      stalled-cycles-frontend
        80,000      stalled-cycles-backend
`
	raw := Extract(text, PipelineRules)

	want := map[string]uint64{
		"cycles":                  2000000,
		"instructions":            4000000,
		"branches":                300000,
		"branch_misses":           3000,
		"stalled_cycles_frontend": 120000,
		"stalled_cycles_backend":  80000,
	}
	for name, value := range want {
		if got := raw[name]; got != value {
			t.Fatalf("counter %s: expected %d, got %d", name, value, got)
		}
	}
}

func TestExtractStalledCyclesDoNotLeakIntoCycles(t *testing.T) {
	raw := Extract("120,000 stalled-cycles-frontend\n", PipelineRules)

	if _, ok := raw["cycles"]; ok {
		t.Fatalf("cycles should not match a stalled-cycles line, got %d", raw["cycles"])
	}
	if got := raw["stalled_cycles_frontend"]; got != 120000 {
		t.Fatalf("expected stalled_cycles_frontend 120000, got %d", got)
	}
}

func TestExtractSeparatorOnlyValueSkipped(t *testing.T) {
	raw := Extract(",,, cache-references\n", CacheRules)

	if _, ok := raw["cache_references"]; ok {
		t.Fatalf("expected separator-only value to be skipped")
	}
}
