package config

// AnalysisConfig is the root of the YAML analysis configuration.
type AnalysisConfig struct {
	Analysis  AnalysisInfo      `yaml:"analysis"`
	Artifacts ArtifactConfig    `yaml:"artifacts"`
	Polarity  map[string]string `yaml:"polarity,omitempty"`
}

type AnalysisInfo struct {
	Name                  string     `yaml:"name"`
	Description           string     `yaml:"description"`
	ResultsDir            string     `yaml:"results_dir"`
	LogLevel              string     `yaml:"log_level"`
	SignificanceThreshold float64    `yaml:"significance_threshold"`
	Data                  DataConfig `yaml:"data"`
}

type DataConfig struct {
	DB DatabaseConfig `yaml:"db"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Org      string `yaml:"org"`
}

// Configured reports whether snapshot publishing is set up at all.
func (db DatabaseConfig) Configured() bool {
	return db.Host != ""
}

// ArtifactConfig overrides the artifact paths relative to the results
// directory. Empty fields keep the default layout.
type ArtifactConfig struct {
	Cache      string `yaml:"cache"`
	Pipeline   string `yaml:"pipeline"`
	Hotspots   string `yaml:"hotspots"`
	SystemInfo string `yaml:"system_info"`
}
