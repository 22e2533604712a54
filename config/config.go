// Package config holds fxrisk's runtime configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rustyeddy/fxrisk/risk"
	"gopkg.in/yaml.v3"
)

// Config represents the complete fxrisk configuration
type Config struct {
	Risk     risk.Limits    `json:"risk" yaml:"risk" mapstructure:"risk"`
	Analysis AnalysisConfig `json:"analysis" yaml:"analysis" mapstructure:"analysis"`
	Stress   StressConfig   `json:"stress" yaml:"stress" mapstructure:"stress"`
	Store    StoreConfig    `json:"store" yaml:"store" mapstructure:"store"`
	Log      LogConfig      `json:"log" yaml:"log" mapstructure:"log"`
	Metrics  MetricsConfig  `json:"metrics" yaml:"metrics" mapstructure:"metrics"`
}

// AnalysisConfig tunes the synthetic return source and the analyzer
type AnalysisConfig struct {
	Samples         int     `json:"samples" yaml:"samples" mapstructure:"samples"`
	Seed            uint64  `json:"seed" yaml:"seed" mapstructure:"seed"` // 0 seeds from the clock
	Confidence      float64 `json:"confidence" yaml:"confidence" mapstructure:"confidence"`
	RiskFreeRate    float64 `json:"risk_free_rate" yaml:"risk_free_rate" mapstructure:"risk_free_rate"`
	HistoryCapacity int     `json:"history_capacity" yaml:"history_capacity" mapstructure:"history_capacity"`
}

// StressConfig adds to or overrides the built-in scenarios by name
type StressConfig struct {
	Scenarios   map[string]risk.Scenario `json:"scenarios,omitempty" yaml:"scenarios,omitempty" mapstructure:"scenarios"`
	Parallelism int                      `json:"parallelism" yaml:"parallelism" mapstructure:"parallelism"`
}

// StoreConfig selects the persistence backend
type StoreConfig struct {
	Type   string `json:"type" yaml:"type" mapstructure:"type"` // "sqlite" or "memory"
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty" mapstructure:"db_path"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level"`
	Format string `json:"format" yaml:"format" mapstructure:"format"` // "json" or "console"
}

type MetricsConfig struct {
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Risk: risk.DefaultLimits(),
		Analysis: AnalysisConfig{
			Samples:         risk.DefaultSamples,
			Confidence:      risk.DefaultConfidence,
			RiskFreeRate:    risk.DefaultRiskFreeRate,
			HistoryCapacity: risk.DefaultHistoryCapacity,
		},
		Stress: StressConfig{
			Parallelism: risk.DefaultParallelism,
		},
		Store: StoreConfig{
			Type:   "sqlite",
			DBPath: "./fxrisk.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Metrics: MetricsConfig{
			Addr: ":9090",
		},
	}
}

// LoadFromFile loads configuration from a file, YAML first with a JSON
// fallback. Fields missing from the file keep their defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		cfg = Default()
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile saves configuration as YAML for .yaml/.yml paths, else JSON
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.Risk.Validate(); err != nil {
		return fmt.Errorf("risk: %w", err)
	}

	a := c.Analysis
	if a.Samples < 2 || a.Samples > risk.MaxSamples {
		return fmt.Errorf("analysis.samples must be between 2 and %d", risk.MaxSamples)
	}
	if a.Confidence <= 0 || a.Confidence >= 1 {
		return fmt.Errorf("analysis.confidence must be between 0 and 1")
	}
	if a.HistoryCapacity < 1 {
		return fmt.Errorf("analysis.history_capacity must be positive")
	}

	if c.Stress.Parallelism < 1 {
		return fmt.Errorf("stress.parallelism must be positive")
	}
	for name, sc := range c.Stress.Scenarios {
		if err := sc.Validate(); err != nil {
			return fmt.Errorf("stress scenario %q: %w", name, err)
		}
	}

	switch c.Store.Type {
	case "memory":
	case "sqlite":
		if c.Store.DBPath == "" {
			return fmt.Errorf("store db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("store.type must be 'sqlite' or 'memory'")
	}

	if c.Log.Format != "json" && c.Log.Format != "console" {
		return fmt.Errorf("log.format must be 'json' or 'console'")
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}
