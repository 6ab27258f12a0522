// Package snapshot defines the immutable capture of one analysis run and its
// JSON wire form. The JSON document is the contract between a producing run
// and a later comparison run: hotspot percentages are string-typed on the
// wire and metrics are grouped by domain.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"perf-analyzer/internal/hotspots"
	"perf-analyzer/internal/metrics"
	"perf-analyzer/internal/sysinfo"
)

// ErrInvalidFormat reports a snapshot document that is not parseable as
// valid structured data. Fatal to a comparison, never to an analysis.
var ErrInvalidFormat = errors.New("invalid snapshot format")

// Hotspot is the wire form of a profile entry.
type Hotspot struct {
	Percentage string `json:"percentage"`
	Function   string `json:"function"`
}

// Value parses the string-typed wire percentage.
func (h Hotspot) Value() (float64, error) {
	return strconv.ParseFloat(h.Percentage, 64)
}

// Snapshot is one complete capture of derived metrics, system info and
// hotspots from a single analysis run. Never mutated after construction.
type Snapshot struct {
	Timestamp string                            `json:"timestamp"`
	System    sysinfo.SystemInfo                `json:"system"`
	Metrics   map[string]metrics.DerivedMetrics `json:"metrics"`
	Hotspots  []Hotspot                         `json:"hotspots"`
}

// New assembles a snapshot from the outputs of the four extractors.
func New(taken time.Time, system sysinfo.SystemInfo, cache, pipeline metrics.DerivedMetrics, entries []hotspots.Entry) *Snapshot {
	snap := &Snapshot{
		Timestamp: taken.Format(time.RFC3339),
		System:    system,
		Metrics: map[string]metrics.DerivedMetrics{
			"cache":    cache,
			"pipeline": pipeline,
		},
		Hotspots: make([]Hotspot, 0, len(entries)),
	}
	for _, entry := range entries {
		snap.Hotspots = append(snap.Hotspots, Hotspot{
			Percentage: strconv.FormatFloat(entry.Percentage, 'f', -1, 64),
			Function:   entry.Function,
		})
	}
	return snap
}

// Domain returns the derived metrics for a domain, or an empty set when the
// domain was never populated.
func (s *Snapshot) Domain(name string) metrics.DerivedMetrics {
	if m, ok := s.Metrics[name]; ok && m != nil {
		return m
	}
	return metrics.DerivedMetrics{}
}

// Load reads and validates a snapshot document.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFormat, path, err)
	}
	return &snap, nil
}

// Write serializes the snapshot as indented JSON.
func (s *Snapshot) Write(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", path, err)
	}
	return nil
}
