package snapshot

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"perf-analyzer/internal/hotspots"
	"perf-analyzer/internal/metrics"
	"perf-analyzer/internal/sysinfo"
)

func sampleSnapshot() *Snapshot {
	taken := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	return New(taken,
		sysinfo.SystemInfo{CPUModel: "test-cpu", CPUCount: 8, Architecture: "x86_64"},
		metrics.DerivedMetrics{"overall_cache_hit_rate": 92.5, "overall_cache_miss_rate": 7.5},
		metrics.DerivedMetrics{"ipc": 1.85, "cpi": 0.541},
		[]hotspots.Entry{
			{Percentage: 35.2, Function: "matrix_multiply"},
			{Percentage: 18.75, Function: "hash_lookup"},
		},
	)
}

func TestNewSnapshotWireForm(t *testing.T) {
	snap := sampleSnapshot()

	if snap.Timestamp != "2025-06-01T12:30:00Z" {
		t.Fatalf("unexpected timestamp: %q", snap.Timestamp)
	}
	if len(snap.Metrics) != 2 {
		t.Fatalf("expected cache and pipeline domains, got %v", snap.Metrics)
	}
	if got := snap.Hotspots[0].Percentage; got != "35.2" {
		t.Fatalf("expected string-typed percentage 35.2, got %q", got)
	}
	if got := snap.Hotspots[1].Percentage; got != "18.75" {
		t.Fatalf("expected string-typed percentage 18.75, got %q", got)
	}
}

func TestHotspotValue(t *testing.T) {
	h := Hotspot{Percentage: "18.75", Function: "hash_lookup"}
	value, err := h.Value()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != 18.75 {
		t.Fatalf("expected 18.75, got %v", value)
	}

	if _, err := (Hotspot{Percentage: "n/a"}).Value(); err == nil {
		t.Fatalf("expected error for non-numeric percentage")
	}
}

func TestWriteAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")

	snap := sampleSnapshot()
	if err := snap.Write(path); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if loaded.Timestamp != snap.Timestamp {
		t.Fatalf("timestamp mismatch: %q vs %q", loaded.Timestamp, snap.Timestamp)
	}
	if loaded.System.CPUModel != "test-cpu" {
		t.Fatalf("system info lost: %+v", loaded.System)
	}
	if got := loaded.Domain("cache")["overall_cache_hit_rate"]; got != 92.5 {
		t.Fatalf("cache metrics lost: got %v", got)
	}
	if got := loaded.Domain("pipeline")["cpi"]; got != 0.541 {
		t.Fatalf("pipeline metrics lost: got %v", got)
	}
	if len(loaded.Hotspots) != 2 || loaded.Hotspots[0].Function != "matrix_multiply" {
		t.Fatalf("hotspots lost: %v", loaded.Hotspots)
	}
}

func TestLoadInvalidDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	_, err := Load(path)
	if !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
	if errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("missing file must not read as invalid format: %v", err)
	}
}

func TestDomainMissingIsEmpty(t *testing.T) {
	snap := &Snapshot{}
	if got := snap.Domain("cache"); len(got) != 0 {
		t.Fatalf("expected empty metrics for missing domain, got %v", got)
	}
}
