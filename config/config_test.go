package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rustyeddy/fxrisk/risk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Equal(t, risk.DefaultLimits(), cfg.Risk)
	assert.Equal(t, 100, cfg.Analysis.Samples)
	assert.Equal(t, 500, cfg.Analysis.HistoryCapacity)
	assert.Equal(t, "sqlite", cfg.Store.Type)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:   "memory store needs no path",
			mutate: func(c *Config) { c.Store = StoreConfig{Type: "memory"} },
		},
		{
			name:    "bad limits",
			mutate:  func(c *Config) { c.Risk.MaxLeverage = 0 },
			wantErr: true,
			errMsg:  "risk:",
		},
		{
			name:    "too few samples",
			mutate:  func(c *Config) { c.Analysis.Samples = 1 },
			wantErr: true,
			errMsg:  "analysis.samples",
		},
		{
			name:    "confidence of one",
			mutate:  func(c *Config) { c.Analysis.Confidence = 1 },
			wantErr: true,
			errMsg:  "analysis.confidence",
		},
		{
			name:    "zero history",
			mutate:  func(c *Config) { c.Analysis.HistoryCapacity = 0 },
			wantErr: true,
			errMsg:  "analysis.history_capacity",
		},
		{
			name:    "zero parallelism",
			mutate:  func(c *Config) { c.Stress.Parallelism = 0 },
			wantErr: true,
			errMsg:  "stress.parallelism",
		},
		{
			name: "bad scenario",
			mutate: func(c *Config) {
				c.Stress.Scenarios = map[string]risk.Scenario{"wipeout": {PriceChangePct: -1.5}}
			},
			wantErr: true,
			errMsg:  `stress scenario "wipeout"`,
		},
		{
			name:    "unknown store",
			mutate:  func(c *Config) { c.Store.Type = "postgres" },
			wantErr: true,
			errMsg:  "store.type must be 'sqlite' or 'memory'",
		},
		{
			name:    "sqlite without path",
			mutate:  func(c *Config) { c.Store.DBPath = "" },
			wantErr: true,
			errMsg:  "store db_path required",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: true,
			errMsg:  "log.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name string
		ext  string
	}{
		{"json format", ".json"},
		{"yaml format", ".yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Risk.MaxLeverage = 5
			cfg.Stress.Scenarios = map[string]risk.Scenario{"taperTantrum": {PriceChangePct: -0.03, Volatility: 0.1}}
			path := filepath.Join(tmpDir, "test"+tt.ext)

			require.NoError(t, cfg.SaveToFile(path))

			_, err := os.Stat(path)
			require.NoError(t, err)

			loaded, err := LoadFromFile(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
		})
	}
}

func TestLoadFromFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("risk:\n  max_leverage: 4\n"), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 4.0, cfg.Risk.MaxLeverage)
	assert.Equal(t, 0.05, cfg.Risk.MaxPositionSize)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoadFromFileErrors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read config file")

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("risk:\n  max_leverage: -1\n"), 0644))
	_, err = LoadFromFile(path)
	assert.ErrorIs(t, err, risk.ErrConfiguration)
}

func TestLoadLayersFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fxrisk.yaml")
	content := `
risk:
  max_leverage: 4
  min_margin: 0.2
analysis:
  seed: 42
stress:
  scenarios:
    marketCrash:
      price_change_pct: -0.3
      volatility: 0.2
    taperTantrum:
      price_change_pct: -0.03
      volatility: 0.1
store:
  type: memory
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	t.Setenv("FXRISK_RISK_MAX_LEVERAGE", "6")
	t.Setenv("FXRISK_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 6.0, cfg.Risk.MaxLeverage)
	assert.Equal(t, 0.2, cfg.Risk.MinMargin)
	assert.Equal(t, 0.05, cfg.Risk.MaxPositionSize)
	assert.Equal(t, uint64(42), cfg.Analysis.Seed)
	assert.Equal(t, "memory", cfg.Store.Type)
	assert.Equal(t, "debug", cfg.Log.Level)

	require.Contains(t, cfg.Stress.Scenarios, "marketCrash")
	assert.Equal(t, -0.3, cfg.Stress.Scenarios["marketCrash"].PriceChangePct)
	assert.Contains(t, cfg.Stress.Scenarios, "tapertantrum")
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Risk, cfg.Risk)
	assert.Equal(t, Default().Analysis, cfg.Analysis)
}
