package risk

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"github.com/rustyeddy/fxrisk/pkg/id"
	"github.com/rustyeddy/fxrisk/portfolio"
)

// Level classifies an overall risk score, an alert, or stress survivability.
type Level string

const (
	LevelLow      Level = "LOW"
	LevelMedium   Level = "MEDIUM"
	LevelHigh     Level = "HIGH"
	LevelCritical Level = "CRITICAL"
)

// Score weights. They sum to 1.
const (
	WeightVaR           = 0.25
	WeightDrawdown      = 0.20
	WeightCorrelation   = 0.15
	WeightConcentration = 0.15
	WeightLeverage      = 0.15
	WeightMargin        = 0.10
)

// Recommendation thresholds, independent of the overall score.
const (
	VaRThreshold         = 0.05
	DrawdownThreshold    = 0.15
	CorrelationThreshold = 0.7
)

// Analysis is a point-in-time risk report. It is not modified after
// Analyze returns.
type Analysis struct {
	ID                string                        `json:"id"`
	Timestamp         time.Time                     `json:"timestamp"`
	VaR95             float64                       `json:"var95"`
	CVaR95            float64                       `json:"cvar95"`
	PortfolioRisk     float64                       `json:"portfolio_risk"`
	MaxDrawdown       float64                       `json:"max_drawdown"`
	SharpeRatio       float64                       `json:"sharpe_ratio"`
	CorrelationMatrix map[string]map[string]float64 `json:"correlation_matrix"`
	CorrelationRisk   float64                       `json:"correlation_risk"`
	ConcentrationRisk float64                       `json:"concentration_risk"`
	LeverageRisk      float64                       `json:"leverage_risk"`
	MarginRisk        float64                       `json:"margin_risk"`
	OverallRiskScore  float64                       `json:"overall_risk_score"`
	RiskLevel         Level                         `json:"risk_level"`
	Recommendations   []string                      `json:"recommendations"`

	// Degraded names the metrics that failed and were reported as 0.
	Degraded []string `json:"degraded,omitempty"`
}

// Clone returns a deep copy of a.
func (a Analysis) Clone() Analysis {
	out := a
	if a.CorrelationMatrix != nil {
		out.CorrelationMatrix = make(map[string]map[string]float64, len(a.CorrelationMatrix))
		for k, row := range a.CorrelationMatrix {
			out.CorrelationMatrix[k] = maps.Clone(row)
		}
	}
	out.Recommendations = slices.Clone(a.Recommendations)
	out.Degraded = slices.Clone(a.Degraded)
	return out
}

// OverallScore is the weighted sum of the six scored metrics.
func OverallScore(a Analysis) float64 {
	return WeightVaR*a.VaR95 +
		WeightDrawdown*a.MaxDrawdown +
		WeightCorrelation*a.CorrelationRisk +
		WeightConcentration*a.ConcentrationRisk +
		WeightLeverage*a.LeverageRisk +
		WeightMargin*a.MarginRisk
}

// ClassifyLevel maps a score onto [0,0.1) LOW, [0.1,0.3) MEDIUM,
// [0.3,0.5) HIGH and everything else CRITICAL.
func ClassifyLevel(score float64) Level {
	switch {
	case score < 0.1:
		return LevelLow
	case score < 0.3:
		return LevelMedium
	case score < 0.5:
		return LevelHigh
	default:
		return LevelCritical
	}
}

// Recommendations emits one fixed sentence per metric above its threshold.
func Recommendations(a Analysis) []string {
	recs := []string{}
	if a.VaR95 > VaRThreshold {
		recs = append(recs, "Consider reducing position sizes to lower Value at Risk")
	}
	if a.MaxDrawdown > DrawdownThreshold {
		recs = append(recs, "Implement tighter stop losses to limit maximum drawdown")
	}
	if a.CorrelationRisk > CorrelationThreshold {
		recs = append(recs, "Diversify across less correlated currency pairs")
	}
	if a.ConcentrationRisk > 0 {
		recs = append(recs, "Reduce concentration in individual positions")
	}
	if a.LeverageRisk > 0 {
		recs = append(recs, "Reduce leverage to stay within risk limits")
	}
	if a.MarginRisk > 0 {
		recs = append(recs, "Add margin or close positions to improve margin level")
	}
	return recs
}

// Analyzer runs every metric calculator over a portfolio and aggregates the
// results. It keeps no state between calls apart from its return source.
type Analyzer struct {
	source       ReturnSource
	limits       *LimitsStore
	confidence   float64
	riskFreeRate float64
	now          func() time.Time
	log          zerolog.Logger
}

type Option func(*Analyzer)

func WithSource(src ReturnSource) Option { return func(a *Analyzer) { a.source = src } }

// WithLimits shares a limits store with the analyzer; nil means defaults.
func WithLimits(l *LimitsStore) Option { return func(a *Analyzer) { a.limits = l } }

// WithConfidence sets the VaR/CVaR confidence; values outside (0,1) are ignored.
func WithConfidence(c float64) Option {
	return func(a *Analyzer) {
		if c > 0 && c < 1 {
			a.confidence = c
		}
	}
}

func WithRiskFreeRate(r float64) Option { return func(a *Analyzer) { a.riskFreeRate = r } }

func WithClock(now func() time.Time) Option { return func(a *Analyzer) { a.now = now } }

func WithLogger(l zerolog.Logger) Option { return func(a *Analyzer) { a.log = l } }

func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		confidence:   DefaultConfidence,
		riskFreeRate: DefaultRiskFreeRate,
		now:          time.Now,
		log:          zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.source == nil {
		a.source = NewSyntheticSource(0, DefaultSamples)
	}
	return a
}

// Source returns the analyzer's return source.
func (a *Analyzer) Source() ReturnSource { return a.source }

// Limits returns the current limits snapshot.
func (a *Analyzer) Limits() Limits { return a.limits.Get() }

// withSource returns a shallow copy that draws from src.
func (a *Analyzer) withSource(src ReturnSource) *Analyzer {
	cp := *a
	cp.source = src
	return &cp
}

// Analyze produces a complete report. A metric that panics or produces a
// non-finite value is reported as 0 and listed in Degraded; the rest of the
// report is unaffected. Portfolios without positions score 0 everywhere.
func (a *Analyzer) Analyze(p portfolio.Portfolio) Analysis {
	ts := a.now().UTC()
	out := Analysis{
		ID:                id.NewAt(ts),
		Timestamp:         ts,
		CorrelationMatrix: map[string]map[string]float64{},
	}

	if len(p.Positions) > 0 {
		l := a.limits.Get()
		returns := a.returns(p, &out)

		out.VaR95 = a.guard("var95", &out, func() float64 { return VaR(returns, a.confidence) })
		out.CVaR95 = a.guard("cvar95", &out, func() float64 { return CVaR(returns, a.confidence) })
		out.PortfolioRisk = a.guard("portfolio_risk", &out, func() float64 { return PortfolioRisk(p, a.source) })
		out.MaxDrawdown = a.guard("max_drawdown", &out, func() float64 {
			return MaxDrawdown(a.source.EquityCurve(p.BalanceFloat()))
		})
		out.SharpeRatio = a.guard("sharpe_ratio", &out, func() float64 { return SharpeRatio(returns, a.riskFreeRate) })
		out.CorrelationRisk = a.guard("correlation_risk", &out, func() float64 {
			out.CorrelationMatrix = CorrelationMatrix(p, a.source)
			return CorrelationRisk(out.CorrelationMatrix, l.MaxCorrelation)
		})
		out.ConcentrationRisk = a.guard("concentration_risk", &out, func() float64 { return ConcentrationRisk(p, l) })
		out.LeverageRisk = a.guard("leverage_risk", &out, func() float64 { return LeverageRisk(p, l) })
		out.MarginRisk = a.guard("margin_risk", &out, func() float64 { return MarginRisk(p, l) })
	}

	out.OverallRiskScore = OverallScore(out)
	out.RiskLevel = ClassifyLevel(out.OverallRiskScore)
	out.Recommendations = Recommendations(out)

	a.log.Debug().
		Str("id", out.ID).
		Int("positions", len(p.Positions)).
		Float64("score", out.OverallRiskScore).
		Str("level", string(out.RiskLevel)).
		Msg("portfolio analysed")

	return out
}

func (a *Analyzer) returns(p portfolio.Portfolio, out *Analysis) (r []float64) {
	defer func() {
		if rec := recover(); rec != nil {
			a.degrade("returns", out, fmt.Errorf("panic: %v", rec))
			r = nil
		}
	}()
	return a.source.PortfolioReturns(p)
}

func (a *Analyzer) guard(metric string, out *Analysis, fn func() float64) (v float64) {
	defer func() {
		if rec := recover(); rec != nil {
			a.degrade(metric, out, fmt.Errorf("panic: %v", rec))
			v = 0
		}
	}()

	v = fn()
	if math.IsNaN(v) || math.IsInf(v, 0) {
		a.degrade(metric, out, fmt.Errorf("%w: non-finite result %v", ErrDegenerateCalculation, v))
		return 0
	}
	return v
}

func (a *Analyzer) degrade(metric string, out *Analysis, err error) {
	out.Degraded = append(out.Degraded, metric)
	a.log.Warn().Err(err).Str("metric", metric).Msg("metric degraded to zero")
}
