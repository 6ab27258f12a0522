//go:build !linux

package collectors

import "errors"

var errUnsupported = errors.New("perf counter collection requires linux")

// CounterEvent pairs a perf stat label with the event that counts it.
// Collection itself is only available on linux.
type CounterEvent struct {
	Label string
}

var CacheEvents []CounterEvent

var PipelineEvents []CounterEvent

type PerfCollector struct{}

func NewPerfCollector(pid int, events []CounterEvent) (*PerfCollector, error) {
	return nil, errUnsupported
}

func (pc *PerfCollector) Start() error {
	return errUnsupported
}

func (pc *PerfCollector) Read() ([]Sample, error) {
	return nil, errUnsupported
}

func (pc *PerfCollector) Close() {}
