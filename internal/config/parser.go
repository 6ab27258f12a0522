package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"perf-analyzer/internal/logging"

	"gopkg.in/yaml.v3"
)

func LoadConfig(filepath string) (*AnalysisConfig, error) {
	logger := logging.GetLogger()

	data, err := os.ReadFile(filepath)
	if err != nil {
		logger.WithField("filepath", filepath).WithError(err).Error("Failed to read config file")
		return nil, err
	}

	// Expand environment variables
	expanded := expandEnvVars(string(data))

	var config AnalysisConfig
	if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
		logger.WithField("filepath", filepath).WithError(err).Error("Failed to parse config file")
		return nil, err
	}

	applyDefaults(&config)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

func expandEnvVars(content string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(content, func(match string) string {
		envVar := strings.Trim(match, "${}")
		if value := os.Getenv(envVar); value != "" {
			return value
		}
		return match
	})
}

func applyDefaults(config *AnalysisConfig) {
	if config.Analysis.ResultsDir == "" {
		config.Analysis.ResultsDir = "results"
	}
	if config.Analysis.SignificanceThreshold == 0 {
		config.Analysis.SignificanceThreshold = 1.0
	}
}

func validateConfig(config *AnalysisConfig) error {
	if config.Analysis.Name == "" {
		return fmt.Errorf("analysis name is required")
	}

	if config.Analysis.SignificanceThreshold < 0 {
		return fmt.Errorf("significance_threshold must not be negative")
	}

	for metric, direction := range config.Polarity {
		if direction != "higher" && direction != "lower" {
			return fmt.Errorf("metric %s: polarity must be 'higher' or 'lower', got '%s'", metric, direction)
		}
	}

	// Validate database config only when publishing is configured
	db := config.Analysis.Data.DB
	if db.Configured() {
		if db.Name == "" || db.Password == "" || db.Org == "" {
			return fmt.Errorf("incomplete database configuration")
		}
	}

	return nil
}
