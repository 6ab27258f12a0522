// Package analyzer drives the per-snapshot analysis: it runs the four
// extractors over the artifacts of a results directory and assembles a fresh
// immutable snapshot. Missing artifacts are surfaced as warnings and leave
// empty partial results; they never abort the run.
package analyzer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"perf-analyzer/internal/counters"
	"perf-analyzer/internal/hotspots"
	"perf-analyzer/internal/logging"
	"perf-analyzer/internal/metrics"
	"perf-analyzer/internal/snapshot"
	"perf-analyzer/internal/sysinfo"

	"github.com/sirupsen/logrus"
)

// ErrMissingSource reports that an expected input artifact does not exist.
var ErrMissingSource = errors.New("expected input artifact not found")

// Analyzer locates the profiler artifacts of one run. Paths default to the
// layout the collection scripts produce under the results directory.
type Analyzer struct {
	ResultsDir     string
	CachePath      string
	PipelinePath   string
	HotspotsPath   string
	SystemInfoPath string

	logger *logrus.Logger
}

func New(resultsDir string) *Analyzer {
	return &Analyzer{
		ResultsDir:     resultsDir,
		CachePath:      filepath.Join(resultsDir, "metrics", "cache.txt"),
		PipelinePath:   filepath.Join(resultsDir, "metrics", "pipeline.txt"),
		HotspotsPath:   filepath.Join(resultsDir, "reports", "perf_report.txt"),
		SystemInfoPath: filepath.Join(resultsDir, "reports", "system_info.txt"),
		logger:         logging.GetLogger(),
	}
}

func (a *Analyzer) readSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrMissingSource, path)
		}
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// AnalyzeCache derives cache-domain metrics from the cache counter dump.
func (a *Analyzer) AnalyzeCache() (metrics.DerivedMetrics, error) {
	content, err := a.readSource(a.CachePath)
	if err != nil {
		return metrics.DerivedMetrics{}, err
	}
	return metrics.Cache(counters.Extract(content, counters.CacheRules)), nil
}

// AnalyzePipeline derives pipeline-domain metrics from the pipeline counter dump.
func (a *Analyzer) AnalyzePipeline() (metrics.DerivedMetrics, error) {
	content, err := a.readSource(a.PipelinePath)
	if err != nil {
		return metrics.DerivedMetrics{}, err
	}
	return metrics.Pipeline(counters.Extract(content, counters.PipelineRules)), nil
}

// AnalyzeHotspots extracts the ranked hotspot entries from the perf report.
func (a *Analyzer) AnalyzeHotspots() ([]hotspots.Entry, error) {
	content, err := a.readSource(a.HotspotsPath)
	if err != nil {
		return nil, err
	}
	return hotspots.ParseText(content), nil
}

// AnalyzeSystemInfo scrapes host attributes from the system info dump.
func (a *Analyzer) AnalyzeSystemInfo() (sysinfo.SystemInfo, error) {
	content, err := a.readSource(a.SystemInfoPath)
	if err != nil {
		return sysinfo.SystemInfo{}, err
	}
	return sysinfo.Extract(content), nil
}

// Run executes all analyses and assembles the snapshot. Partial results are
// always preferred over hard failure: a missing artifact logs a warning and
// leaves that portion empty.
func (a *Analyzer) Run() *snapshot.Snapshot {
	cache, err := a.AnalyzeCache()
	a.warnOnMissing(err, "cache metrics")

	pipeline, err := a.AnalyzePipeline()
	a.warnOnMissing(err, "pipeline metrics")

	entries, err := a.AnalyzeHotspots()
	a.warnOnMissing(err, "hotspots")

	system, err := a.AnalyzeSystemInfo()
	a.warnOnMissing(err, "system info")

	snap := snapshot.New(time.Now(), system, cache, pipeline, entries)

	a.logger.WithFields(logrus.Fields{
		"cache_metrics":    len(cache),
		"pipeline_metrics": len(pipeline),
		"hotspots":         len(entries),
	}).Info("Analysis completed")

	return snap
}

func (a *Analyzer) warnOnMissing(err error, what string) {
	if err == nil {
		return
	}
	if errors.Is(err, ErrMissingSource) {
		a.logger.WithError(err).Warnf("Skipping %s", what)
		return
	}
	a.logger.WithError(err).Warnf("Failed to analyze %s", what)
}
