package config

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/fxrisk/risk"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. FXRISK_RISK_MAX_LEVERAGE.
const EnvPrefix = "FXRISK"

// Load layers defaults, the optional file at path and FXRISK_* environment
// variables, in that order of precedence, and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, Default())

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Stress.Scenarios = canonicalScenarioNames(cfg.Stress.Scenarios)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// setDefaults registers every leaf key so AutomaticEnv can find it.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("risk.max_position_size", d.Risk.MaxPositionSize)
	v.SetDefault("risk.max_daily_loss", d.Risk.MaxDailyLoss)
	v.SetDefault("risk.max_drawdown_limit", d.Risk.MaxDrawdownLimit)
	v.SetDefault("risk.max_leverage", d.Risk.MaxLeverage)
	v.SetDefault("risk.max_correlation", d.Risk.MaxCorrelation)
	v.SetDefault("risk.max_concentration", d.Risk.MaxConcentration)
	v.SetDefault("risk.min_margin", d.Risk.MinMargin)

	v.SetDefault("analysis.samples", d.Analysis.Samples)
	v.SetDefault("analysis.seed", d.Analysis.Seed)
	v.SetDefault("analysis.confidence", d.Analysis.Confidence)
	v.SetDefault("analysis.risk_free_rate", d.Analysis.RiskFreeRate)
	v.SetDefault("analysis.history_capacity", d.Analysis.HistoryCapacity)

	v.SetDefault("stress.parallelism", d.Stress.Parallelism)

	v.SetDefault("store.type", d.Store.Type)
	v.SetDefault("store.db_path", d.Store.DBPath)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("metrics.addr", d.Metrics.Addr)
}

// canonicalScenarioNames restores the camel case of built-in scenario
// names, which viper lower-cases. Custom names stay as read.
func canonicalScenarioNames(in map[string]risk.Scenario) map[string]risk.Scenario {
	if len(in) == 0 {
		return in
	}
	canon := make(map[string]string)
	for name := range risk.DefaultScenarios() {
		canon[strings.ToLower(name)] = name
	}
	out := make(map[string]risk.Scenario, len(in))
	for name, sc := range in {
		if c, ok := canon[strings.ToLower(name)]; ok {
			name = c
		}
		out[name] = sc
	}
	return out
}
