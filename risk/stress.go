package risk

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rustyeddy/fxrisk/portfolio"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Scenario is a price shock: every position moves by PriceChangePct plus a
// jitter of Uniform(-0.5, 0.5)*Volatility drawn per position.
type Scenario struct {
	PriceChangePct float64 `json:"price_change_pct" yaml:"price_change_pct" mapstructure:"price_change_pct"`
	Volatility     float64 `json:"volatility" yaml:"volatility" mapstructure:"volatility"`
}

// Validate bounds a scenario so shocked prices stay meaningful.
func (s Scenario) Validate() error {
	if !finite(s.PriceChangePct) || s.PriceChangePct <= -1 {
		return fmt.Errorf("%w: price_change_pct must be greater than -1, got %v", ErrConfiguration, s.PriceChangePct)
	}
	if !finite(s.Volatility) || s.Volatility < 0 || s.Volatility > 2 {
		return fmt.Errorf("%w: volatility must be in [0, 2], got %v", ErrConfiguration, s.Volatility)
	}
	return nil
}

// Default scenario names.
const (
	ScenarioMarketCrash       = "marketCrash"
	ScenarioFlashCrash        = "flashCrash"
	ScenarioInterestRateShock = "interestRateShock"
	ScenarioCurrencyCrisis    = "currencyCrisis"
	ScenarioLiquidityCrisis   = "liquidityCrisis"
)

// DefaultScenarios returns a fresh copy of the five built-in scenarios.
func DefaultScenarios() map[string]Scenario {
	return map[string]Scenario{
		ScenarioMarketCrash:       {PriceChangePct: -0.20, Volatility: 0.30},
		ScenarioFlashCrash:        {PriceChangePct: -0.10, Volatility: 0.50},
		ScenarioInterestRateShock: {PriceChangePct: -0.05, Volatility: 0.15},
		ScenarioCurrencyCrisis:    {PriceChangePct: -0.15, Volatility: 0.40},
		ScenarioLiquidityCrisis:   {PriceChangePct: -0.08, Volatility: 0.25},
	}
}

// MergeScenarios overlays overrides onto base by name and returns a new map.
func MergeScenarios(base, overrides map[string]Scenario) map[string]Scenario {
	out := maps.Clone(base)
	if out == nil {
		out = make(map[string]Scenario, len(overrides))
	}
	maps.Copy(out, overrides)
	return out
}

// StressResult is the outcome of one scenario.
type StressResult struct {
	Name          string   `json:"name"`
	Scenario      Scenario `json:"scenario"`
	OriginalValue float64  `json:"original_value"`
	StressedValue float64  `json:"stressed_value"`
	ValueChange   float64  `json:"value_change"`
	RiskMetrics   Analysis `json:"risk_metrics"`
	Survivability Level    `json:"survivability"`
}

// ClassifySurvivability grades the margin cushion: utilization above 0.9 is
// CRITICAL, above 0.7 HIGH, above 0.5 MEDIUM, else LOW.
func ClassifySurvivability(p portfolio.Portfolio) Level {
	u := SafeDivide(p.MarginUsedFloat(), p.MarginAvailableFloat(), 0)
	switch {
	case u > 0.9:
		return LevelCritical
	case u > 0.7:
		return LevelHigh
	case u > 0.5:
		return LevelMedium
	default:
		return LevelLow
	}
}

// Shock returns a shocked clone of p; p itself is not modified. Factors are
// floored at zero so prices never turn negative.
func Shock(p portfolio.Portfolio, sc Scenario, jitter Sampler) portfolio.Portfolio {
	out := p.Clone()
	for i := range out.Positions {
		applied := sc.PriceChangePct + jitter.Uniform(-0.5, 0.5)*sc.Volatility
		factor := max(0, 1+applied)
		out.Positions[i].Rescale(decimal.NewFromFloat(factor))
	}
	return out
}

// DefaultParallelism bounds concurrently running scenarios.
const DefaultParallelism = 4

// StressEngine runs scenarios concurrently through an Analyzer.
type StressEngine struct {
	analyzer    *Analyzer
	scenarios   map[string]Scenario
	parallelism int
	log         zerolog.Logger
}

type StressOption func(*StressEngine)

// WithScenarios replaces the engine's base scenario set.
func WithScenarios(s map[string]Scenario) StressOption {
	return func(e *StressEngine) { e.scenarios = maps.Clone(s) }
}

// WithParallelism bounds concurrent scenarios; values below 1 are ignored.
func WithParallelism(n int) StressOption {
	return func(e *StressEngine) {
		if n > 0 {
			e.parallelism = n
		}
	}
}

func WithStressLogger(l zerolog.Logger) StressOption { return func(e *StressEngine) { e.log = l } }

func NewStressEngine(a *Analyzer, opts ...StressOption) *StressEngine {
	e := &StressEngine{
		analyzer:    a,
		scenarios:   DefaultScenarios(),
		parallelism: DefaultParallelism,
		log:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Scenarios returns a copy of the base scenario set.
func (e *StressEngine) Scenarios() map[string]Scenario {
	return maps.Clone(e.scenarios)
}

type deriver interface {
	Nonce() uint64
	Derive(name string, nonce uint64) *SyntheticSource
}

// runNonce draws the per-run nonce from a derivable source, or 0.
func (e *StressEngine) runNonce() uint64 {
	if d, ok := e.analyzer.source.(deriver); ok {
		return d.Nonce()
	}
	return 0
}

// sourcesFor picks the return source and jitter sampler for one scenario.
// Derivable sources give every scenario its own stream, seeded from the run
// nonce and the scenario name.
func (e *StressEngine) sourcesFor(name string, nonce uint64) (ReturnSource, Sampler) {
	src := e.analyzer.source
	if d, ok := src.(deriver); ok {
		child := d.Derive(name, nonce)
		return child, child
	}
	if s, ok := src.(Sampler); ok {
		return src, s
	}
	return src, NewSyntheticSource(0, DefaultSamples)
}

// Run applies the base scenarios, merged with overrides by name, to clones
// of p. The caller's portfolio is never modified.
func (e *StressEngine) Run(ctx context.Context, p portfolio.Portfolio, overrides map[string]Scenario) (map[string]StressResult, error) {
	scenarios := MergeScenarios(e.scenarios, overrides)
	for name, sc := range scenarios {
		if err := sc.Validate(); err != nil {
			return nil, fmt.Errorf("scenario %q: %w", name, err)
		}
	}

	original := p.Clone()
	originalValue := original.Value()
	nonce := e.runNonce()

	var mu sync.Mutex
	results := make(map[string]StressResult, len(scenarios))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallelism)
	for _, name := range slices.Sorted(maps.Keys(scenarios)) {
		sc := scenarios[name]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			src, jitter := e.sourcesFor(name, nonce)
			shocked := Shock(original, sc, jitter)
			analysis := e.analyzer.withSource(src).Analyze(shocked)

			stressedValue := shocked.Value()
			res := StressResult{
				Name:          name,
				Scenario:      sc,
				OriginalValue: originalValue,
				StressedValue: stressedValue,
				ValueChange:   SafeDivide(stressedValue-originalValue, originalValue, 0),
				RiskMetrics:   analysis,
				Survivability: ClassifySurvivability(shocked),
			}

			mu.Lock()
			results[name] = res
			mu.Unlock()

			e.log.Debug().
				Str("scenario", name).
				Float64("value_change", res.ValueChange).
				Str("survivability", string(res.Survivability)).
				Msg("stress scenario complete")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
