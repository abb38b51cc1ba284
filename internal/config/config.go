// Package config holds the pipeline configuration: analysis
// parameters, file locations and logging. Values come from defaults,
// then an optional YAML file, then HITPULSE_* environment variables,
// in increasing precedence.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"hitpulse/internal/classifier"
	"hitpulse/internal/dataset"
	"hitpulse/internal/distribution"
)

// envPrefix is the environment variable prefix, e.g.
// HITPULSE_ANALYSIS_SEED.
const envPrefix = "HITPULSE"

// Config is the complete application configuration.
type Config struct {
	Input    InputConfig    `yaml:"input" envconfig:"INPUT"`
	Output   OutputConfig   `yaml:"output" envconfig:"OUTPUT"`
	Analysis AnalysisConfig `yaml:"analysis" envconfig:"ANALYSIS"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
}

// InputConfig locates the song table.
type InputConfig struct {
	Path string `yaml:"path" envconfig:"PATH" validate:"required"`
}

// OutputConfig locates the report tables.
type OutputConfig struct {
	Dir      string `yaml:"dir" envconfig:"DIR" validate:"required"`
	Workbook string `yaml:"workbook" envconfig:"WORKBOOK"`
}

// AnalysisConfig carries every statistical knob. The Super-Hit
// threshold is deliberately configuration, not a constant, so that
// sensitivity analysis does not need a rebuild.
type AnalysisConfig struct {
	SuperHitThreshold float64  `yaml:"super_hit_threshold" envconfig:"SUPER_HIT_THRESHOLD" validate:"gt=0"`
	TrainProportion   float64  `yaml:"train_proportion" envconfig:"TRAIN_PROPORTION" validate:"gt=0,lt=1"`
	Seed              int64    `yaml:"seed" envconfig:"SEED"`
	SignificanceLevel float64  `yaml:"significance_level" envconfig:"SIGNIFICANCE_LEVEL" validate:"gt=0,lt=1"`
	ConfidenceLevel   float64  `yaml:"confidence_level" envconfig:"CONFIDENCE_LEVEL" validate:"gt=0,lt=1"`
	MaxIterations     int      `yaml:"max_iterations" envconfig:"MAX_ITERATIONS" validate:"gt=0"`
	Features          []string `yaml:"features" envconfig:"FEATURES" validate:"min=1"`
	Predictors        []string `yaml:"predictors" envconfig:"PREDICTORS" validate:"min=1"`
}

// LoggingConfig mirrors the slog setup in internal/infrastructure.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=stdout file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// Default returns the configuration the pipeline runs with when
// nothing is overridden.
func Default() *Config {
	return &Config{
		Input:  InputConfig{Path: "data/songs.csv"},
		Output: OutputConfig{Dir: "reports", Workbook: "hit_report.xlsx"},
		Analysis: AnalysisConfig{
			SuperHitThreshold: dataset.DefaultSuperHitThreshold,
			TrainProportion:   classifier.DefaultTrainProportion,
			Seed:              classifier.DefaultSeed,
			SignificanceLevel: distribution.DefaultSignificanceLevel,
			ConfidenceLevel:   classifier.DefaultConfidence,
			MaxIterations:     classifier.DefaultMaxIterations,
			Features:          dataset.FeatureColumns(),
			Predictors:        classifier.DefaultPredictors(),
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "stdout",
			FilePath: "logs/hitpulse.log",
		},
	}
}

// Load builds the effective configuration. filePath may be empty; a
// missing file is only an error when it was asked for explicitly.
func Load(filePath string) (*Config, error) {
	cfg := Default()

	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", filePath, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", filePath, err)
		}
	}

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("config: process environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration invariants.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: validation failed: %w", err)
	}
	if c.Logging.Output != "stdout" && c.Logging.FilePath == "" {
		return fmt.Errorf("config: logging output %q needs a file path", c.Logging.Output)
	}
	return nil
}
