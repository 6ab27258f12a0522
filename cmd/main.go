package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"perf-analyzer/internal/analyzer"
	"perf-analyzer/internal/collectors"
	"perf-analyzer/internal/compare"
	"perf-analyzer/internal/config"
	"perf-analyzer/internal/database"
	"perf-analyzer/internal/logging"
	"perf-analyzer/internal/report"
	"perf-analyzer/internal/snapshot"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const Version = "1.0.0"

func loadEnvironment() {
	logger := logging.GetLogger()

	// Try to load .env file from current directory
	envFile := ".env"
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			logger.WithField("file", envFile).WithError(err).Warn("Error loading .env file")
		} else {
			logger.WithField("file", envFile).Debug("Loaded environment variables")
		}
	} else {
		// Try to load from the application directory
		if execPath, err := os.Executable(); err == nil {
			appDir := filepath.Dir(execPath)
			envFile = filepath.Join(appDir, ".env")
			if _, err := os.Stat(envFile); err == nil {
				if err := godotenv.Load(envFile); err != nil {
					logger.WithField("file", envFile).WithError(err).Warn("Error loading .env file")
				} else {
					logger.WithField("file", envFile).Debug("Loaded environment variables")
				}
			}
		}
	}
}

// polarityTable merges configured polarity overrides over the defaults.
func polarityTable(cfg *config.AnalysisConfig) compare.Polarity {
	table := compare.DefaultPolarity()
	if cfg == nil {
		return table
	}
	for metric, direction := range cfg.Polarity {
		table[metric] = direction == "higher"
	}
	return table
}

func loadOptionalConfig(configFile string) (*config.AnalysisConfig, error) {
	if configFile == "" {
		return nil, nil
	}
	return config.LoadConfig(configFile)
}

func runAnalyze(configFile, resultsDir, outputFile, markdownFile string, publish bool) error {
	logger := logging.GetLogger()

	cfg, err := loadOptionalConfig(configFile)
	if err != nil {
		return err
	}

	if resultsDir == "" {
		resultsDir = "results"
		if cfg != nil && cfg.Analysis.ResultsDir != "" {
			resultsDir = cfg.Analysis.ResultsDir
		}
	}

	a := analyzer.New(resultsDir)
	if cfg != nil {
		if cfg.Artifacts.Cache != "" {
			a.CachePath = filepath.Join(resultsDir, cfg.Artifacts.Cache)
		}
		if cfg.Artifacts.Pipeline != "" {
			a.PipelinePath = filepath.Join(resultsDir, cfg.Artifacts.Pipeline)
		}
		if cfg.Artifacts.Hotspots != "" {
			a.HotspotsPath = filepath.Join(resultsDir, cfg.Artifacts.Hotspots)
		}
		if cfg.Artifacts.SystemInfo != "" {
			a.SystemInfoPath = filepath.Join(resultsDir, cfg.Artifacts.SystemInfo)
		}
	}

	snap := a.Run()

	if outputFile == "" {
		outputFile = filepath.Join(resultsDir, "performance_report.json")
	}
	if dir := filepath.Dir(outputFile); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := snap.Write(outputFile); err != nil {
		return err
	}
	logger.WithField("file", outputFile).Info("Snapshot written")

	if markdownFile != "" {
		if err := report.WriteMarkdown(snap, markdownFile); err != nil {
			return err
		}
		logger.WithField("file", markdownFile).Info("Markdown report written")
	}

	report.Summary(os.Stdout, snap)

	if publish {
		if cfg == nil || !cfg.Analysis.Data.DB.Configured() {
			return fmt.Errorf("publishing requires a database configuration")
		}
		client, err := database.NewInfluxDBClient(cfg.Analysis.Data.DB)
		if err != nil {
			return err
		}
		defer client.Close()
		if err := client.WriteSnapshot(cfg.Analysis.Name, snap); err != nil {
			return err
		}
		logger.Info("Snapshot published to InfluxDB")
	}

	return nil
}

func runCompare(configFile, baselineFile, currentFile string, threshold float64) error {
	cfg, err := loadOptionalConfig(configFile)
	if err != nil {
		return err
	}

	baseline, err := snapshot.Load(baselineFile)
	if err != nil {
		return err
	}
	current, err := snapshot.Load(currentFile)
	if err != nil {
		return err
	}

	if threshold <= 0 && cfg != nil {
		threshold = cfg.Analysis.SignificanceThreshold
	}

	result := compare.Compare(baseline, current, compare.Options{
		Polarity:  polarityTable(cfg),
		Threshold: threshold,
	})

	report.Comparison(os.Stdout, result)
	return nil
}

func runCollect(pid int, duration time.Duration, resultsDir string) error {
	logger := logging.GetLogger()

	metricsDir := filepath.Join(resultsDir, "metrics")
	if err := os.MkdirAll(metricsDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", metricsDir, err)
	}

	cacheCollector, err := collectors.NewPerfCollector(pid, collectors.CacheEvents)
	if err != nil {
		return err
	}
	defer cacheCollector.Close()

	pipelineCollector, err := collectors.NewPerfCollector(pid, collectors.PipelineEvents)
	if err != nil {
		return err
	}
	defer pipelineCollector.Close()

	if err := cacheCollector.Start(); err != nil {
		return err
	}
	if err := pipelineCollector.Start(); err != nil {
		return err
	}

	logger.WithField("pid", pid).WithField("duration", duration).Info("Collecting hardware counters")
	time.Sleep(duration)

	cacheSamples, err := cacheCollector.Read()
	if err != nil {
		return err
	}
	pipelineSamples, err := pipelineCollector.Read()
	if err != nil {
		return err
	}

	cacheDump := filepath.Join(metricsDir, "cache.txt")
	if err := collectors.WriteDump(cacheDump, cacheSamples); err != nil {
		return err
	}
	pipelineDump := filepath.Join(metricsDir, "pipeline.txt")
	if err := collectors.WriteDump(pipelineDump, pipelineSamples); err != nil {
		return err
	}

	logger.WithField("cache", cacheDump).WithField("pipeline", pipelineDump).Info("Counter dumps written")
	return nil
}

func Execute() error {
	loadEnvironment()

	var logLevel string
	var configFile string
	var resultsDir string
	var outputFile string
	var markdownFile string
	var publish bool
	var threshold float64
	var pid int
	var durationSeconds int

	rootCmd := &cobra.Command{
		Use:     "perf-analyzer",
		Short:   "Hardware performance counter analysis tool",
		Long:    "Derives efficiency metrics and hotspots from profiler output and compares runs for regression analysis",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if logLevel != "" {
				if err := logging.SetLogLevel(logLevel); err != nil {
					return fmt.Errorf("invalid log level: %w", err)
				}
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Set log level (trace, debug, info, warn, error)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze profiler artifacts into a performance snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(configFile, resultsDir, outputFile, markdownFile, publish)
		},
	}
	analyzeCmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to analysis configuration file")
	analyzeCmd.Flags().StringVar(&resultsDir, "results-dir", "", "Directory holding the profiler artifacts")
	analyzeCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Snapshot output path (default <results-dir>/performance_report.json)")
	analyzeCmd.Flags().StringVar(&markdownFile, "markdown", "", "Also write a Markdown report to this path")
	analyzeCmd.Flags().BoolVar(&publish, "publish", false, "Publish the snapshot metrics to InfluxDB")

	compareCmd := &cobra.Command{
		Use:   "compare <baseline.json> <current.json>",
		Short: "Compare two performance snapshots",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(configFile, args[0], args[1], threshold)
		},
	}
	compareCmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to analysis configuration file")
	compareCmd.Flags().Float64Var(&threshold, "threshold", 0, "Significance threshold in percent for the overall assessment (default 1)")

	collectCmd := &cobra.Command{
		Use:   "collect",
		Short: "Collect hardware counters for a running process",
		RunE: func(cmd *cobra.Command, args []string) error {
			if pid <= 0 {
				return fmt.Errorf("a target --pid is required")
			}
			if resultsDir == "" {
				resultsDir = "results"
			}
			return runCollect(pid, time.Duration(durationSeconds)*time.Second, resultsDir)
		},
	}
	collectCmd.Flags().IntVar(&pid, "pid", 0, "Target process ID")
	collectCmd.Flags().IntVar(&durationSeconds, "duration", 10, "Collection duration in seconds")
	collectCmd.Flags().StringVar(&resultsDir, "results-dir", "", "Directory to write the counter dumps into")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate an analysis configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configFile == "" {
				return fmt.Errorf("a --config file is required")
			}
			cfg, err := config.LoadConfig(configFile)
			if err != nil {
				return err
			}
			fmt.Printf("Configuration is valid: %s\n", cfg.Analysis.Name)
			return nil
		},
	}
	validateCmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to analysis configuration file")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(validateCmd)

	return rootCmd.Execute()
}
