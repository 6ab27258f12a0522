//go:build linux

package collectors

import (
	"fmt"

	"perf-analyzer/internal/logging"

	"github.com/elastic/go-perf"
)

// CounterEvent pairs a perf stat label with the event configuration that
// counts it.
type CounterEvent struct {
	Label   string
	Counter perf.Configurator
}

// CacheEvents covers the cache-domain counter vocabulary.
var CacheEvents = []CounterEvent{
	{"cache-references", perf.CacheReferences},
	{"cache-misses", perf.CacheMisses},
	{"L1-dcache-loads", perf.HardwareCacheCounter{Cache: perf.L1D, Op: perf.Read, Result: perf.Access}},
	{"L1-dcache-load-misses", perf.HardwareCacheCounter{Cache: perf.L1D, Op: perf.Read, Result: perf.Miss}},
	{"L1-dcache-stores", perf.HardwareCacheCounter{Cache: perf.L1D, Op: perf.Write, Result: perf.Access}},
	{"L1-dcache-store-misses", perf.HardwareCacheCounter{Cache: perf.L1D, Op: perf.Write, Result: perf.Miss}},
	{"LLC-loads", perf.HardwareCacheCounter{Cache: perf.LL, Op: perf.Read, Result: perf.Access}},
	{"LLC-load-misses", perf.HardwareCacheCounter{Cache: perf.LL, Op: perf.Read, Result: perf.Miss}},
	{"dTLB-loads", perf.HardwareCacheCounter{Cache: perf.DTLB, Op: perf.Read, Result: perf.Access}},
	{"dTLB-load-misses", perf.HardwareCacheCounter{Cache: perf.DTLB, Op: perf.Read, Result: perf.Miss}},
}

// PipelineEvents covers the pipeline-domain counter vocabulary.
var PipelineEvents = []CounterEvent{
	{"cycles", perf.CPUCycles},
	{"instructions", perf.Instructions},
	{"branches", perf.BranchInstructions},
	{"branch-misses", perf.BranchMisses},
	{"stalled-cycles-frontend", perf.StalledCyclesFrontend},
	{"stalled-cycles-backend", perf.StalledCyclesBackend},
}

type openEvent struct {
	label string
	event *perf.Event
}

// PerfCollector holds open perf events for one target process.
type PerfCollector struct {
	events []openEvent
}

// NewPerfCollector opens the given events against a PID on any CPU. Events
// the kernel or hardware refuse are skipped with a warning; at least one
// event must open.
func NewPerfCollector(pid int, events []CounterEvent) (*PerfCollector, error) {
	logger := logging.GetLogger()

	collector := &PerfCollector{}
	for _, ev := range events {
		attr := &perf.Attr{}
		ev.Counter.Configure(attr)
		// Enable time tracking for multiplexing correction
		attr.CountFormat.Enabled = true
		attr.CountFormat.Running = true
		attr.Options.Disabled = true

		event, err := perf.Open(attr, pid, perf.AnyCPU, nil)
		if err != nil {
			logger.WithField("event", ev.Label).WithError(err).Warn("Failed to open perf event, continuing without it")
			continue
		}
		collector.events = append(collector.events, openEvent{label: ev.Label, event: event})
	}

	if len(collector.events) == 0 {
		return nil, fmt.Errorf("no perf events could be opened for pid %d", pid)
	}
	return collector, nil
}

// Start enables counting on all open events.
func (pc *PerfCollector) Start() error {
	for _, ev := range pc.events {
		if err := ev.event.Enable(); err != nil {
			return fmt.Errorf("failed to enable perf event %s: %w", ev.label, err)
		}
	}
	return nil
}

// Read disables counting and returns the measured samples in event-table
// order. Counts are scaled by enabled/running time to correct for event
// multiplexing.
func (pc *PerfCollector) Read() ([]Sample, error) {
	samples := make([]Sample, 0, len(pc.events))

	for _, ev := range pc.events {
		if err := ev.event.Disable(); err != nil {
			return nil, fmt.Errorf("failed to disable perf event %s: %w", ev.label, err)
		}

		count, err := ev.event.ReadCount()
		if err != nil {
			return nil, fmt.Errorf("failed to read perf event %s: %w", ev.label, err)
		}

		value := uint64(count.Value)
		if count.Running > 0 && count.Running != count.Enabled {
			scaleFactor := float64(count.Enabled) / float64(count.Running)
			value = uint64(float64(value) * scaleFactor)
		}

		samples = append(samples, Sample{Label: ev.label, Value: value})
	}

	return samples, nil
}

func (pc *PerfCollector) Close() {
	for _, ev := range pc.events {
		if ev.event != nil {
			ev.event.Close()
		}
	}
	pc.events = nil
}
