// Package config loads tool-level configuration from .modplan/config.json.
// Engagement-specific planning targets live in modplan.toml (see package
// project); this file holds defaults that rarely change per project.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the complete modplan configuration
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	Planning PlanningConfig `json:"planning" mapstructure:"planning"`
	History  HistoryConfig  `json:"history" mapstructure:"history"`
	Logging  LoggingConfig  `json:"logging" mapstructure:"logging"`
}

// PlanningConfig contains planning pipeline defaults
type PlanningConfig struct {
	Edition         string `json:"edition" mapstructure:"edition"`
	PlatformVersion string `json:"platformVersion" mapstructure:"platformVersion"`
	RegistryDir     string `json:"registryDir" mapstructure:"registryDir"`
	OutputDir       string `json:"outputDir" mapstructure:"outputDir"`
}

// HistoryConfig contains run-history settings
type HistoryConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Dir     string `json:"dir" mapstructure:"dir"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Planning: PlanningConfig{
			Edition:         "community",
			PlatformVersion: "17.0",
			RegistryDir:     "registry",
			OutputDir:       "outputs",
		},
		History: HistoryConfig{
			Enabled: true,
			Dir:     ".modplan",
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from .modplan/config.json under root.
// A missing config file yields the defaults.
func LoadConfig(root string) (*Config, error) {
	v := viper.New()

	v.SetDefault("version", 1)
	v.SetDefault("planning.edition", "community")
	v.SetDefault("planning.platformVersion", "17.0")
	v.SetDefault("planning.registryDir", "registry")
	v.SetDefault("planning.outputDir", "outputs")
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.dir", ".modplan")
	v.SetDefault("logging.format", "human")
	v.SetDefault("logging.level", "info")

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(root, ".modplan"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to .modplan/config.json under root
func (c *Config) Save(root string) error {
	dir := filepath.Join(root, ".modplan")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != 1 {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	switch c.Planning.Edition {
	case "community", "enterprise", "unknown":
	default:
		return &ConfigError{Field: "planning.edition", Message: "must be community, enterprise, or unknown"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
