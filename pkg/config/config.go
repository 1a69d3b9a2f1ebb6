// Package config loads the CLI configuration file.
//
// Configuration is optional: every field has a working default, and a
// missing config file is not an error unless the user pointed at one
// explicitly. Values cover the ambient concerns around the engine
// (logging, run history, metrics); the engine itself takes its options
// per call.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Check   CheckConfig   `yaml:"check"`
	History HistoryConfig `yaml:"history"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is the log output format: json or text.
	Format string `yaml:"format"`
}

// CheckConfig configures default evaluation behavior.
type CheckConfig struct {
	// Strict makes skipped rules fail the overall run status.
	Strict bool `yaml:"strict"`
	// Verbose includes passing and skipped clause detail in reports.
	Verbose bool `yaml:"verbose"`
}

// HistoryConfig configures the validation-run history store.
type HistoryConfig struct {
	// Enabled turns on run recording for the check and watch commands.
	Enabled bool `yaml:"enabled"`
	// Path is the SQLite database file path.
	Path string `yaml:"path"`
	// RetentionDays is how long run records are kept. Zero keeps forever.
	RetentionDays int `yaml:"retention_days"`
	// PruneSchedule is a cron expression for automatic pruning in watch
	// mode, e.g. "0 3 * * *" for daily at 3 AM. Empty disables it.
	PruneSchedule string `yaml:"prune_schedule"`
}

// MetricsConfig configures the prometheus endpoint served by watch mode.
type MetricsConfig struct {
	// Enabled turns on the /metrics endpoint in watch mode.
	Enabled bool `yaml:"enabled"`
	// Listen is the address the endpoint binds to.
	Listen string `yaml:"listen"`
	// Namespace prefixes all metric names.
	Namespace string `yaml:"namespace"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		History: HistoryConfig{
			Path:          "callisto-history.db",
			RetentionDays: 30,
		},
		Metrics: MetricsConfig{
			Listen:    "127.0.0.1:9105",
			Namespace: "callisto",
		},
	}
}

// Load reads configuration from path, applying defaults for absent
// fields. When required is false a missing file returns the defaults.
func Load(path string, required bool) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for inconsistent values.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unknown level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("logging.format: unknown format %q", c.Logging.Format)
	}
	if c.History.Enabled && c.History.Path == "" {
		return fmt.Errorf("history.path: required when history is enabled")
	}
	if c.History.RetentionDays < 0 {
		return fmt.Errorf("history.retention_days: must not be negative")
	}
	if c.Metrics.Enabled && c.Metrics.Listen == "" {
		return fmt.Errorf("metrics.listen: required when metrics are enabled")
	}
	return nil
}
