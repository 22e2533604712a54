package risk

import (
	"math"
	"slices"

	"github.com/rustyeddy/fxrisk/portfolio"
	"gonum.org/v1/gonum/stat"
)

const (
	// DefaultConfidence is the VaR/CVaR confidence level.
	DefaultConfidence = 0.95
	// DefaultRiskFreeRate is subtracted from the mean return in SharpeRatio.
	DefaultRiskFreeRate = 0.02
)

// VaR is historical value at risk: the absolute value of the return at
// index floor((1-confidence)*n) of the ascending series.
func VaR(returns []float64, confidence float64) float64 {
	n := len(returns)
	if n == 0 {
		return 0
	}
	sorted := slices.Clone(returns)
	slices.Sort(sorted)

	idx := int(math.Floor((1 - confidence) * float64(n)))
	idx = max(0, min(idx, n-1))
	return math.Abs(sorted[idx])
}

// CVaR is the absolute mean of all returns at or below -VaR. An empty tail
// yields 0.
func CVaR(returns []float64, confidence float64) float64 {
	v := VaR(returns, confidence)

	var sum float64
	var count int
	for _, r := range returns {
		if r <= -v {
			sum += r
			count++
		}
	}
	return math.Abs(SafeDivide(sum, float64(count), 0))
}

// PortfolioRisk is the notional-weighted average of volatility times the
// per-position leverage proxy units/margin. Zero-margin positions
// contribute no risk.
func PortfolioRisk(p portfolio.Portfolio, src ReturnSource) float64 {
	var weighted, total float64
	for _, pos := range p.Positions {
		notional := pos.NotionalValue()
		leverage := SafeDivide(pos.Units(), pos.Margin.InexactFloat64(), 0)
		weighted += notional * src.Volatility(pos.Symbol) * leverage
		total += notional
	}
	return SafeDivide(weighted, total, 0)
}

// MaxDrawdown is the largest (peak-value)/peak observed along curve.
func MaxDrawdown(curve []float64) float64 {
	if len(curve) == 0 {
		return 0
	}
	peak := curve[0]
	var maxDD float64
	for _, v := range curve {
		if v > peak {
			peak = v
		}
		if dd := SafeDivide(peak-v, peak, 0); dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// minStdDev treats rounding noise on a flat series as zero deviation.
const minStdDev = 1e-12

// SharpeRatio is (mean - riskFree) / population standard deviation.
func SharpeRatio(returns []float64, riskFree float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	mean, variance := stat.PopMeanVariance(returns, nil)
	sd := math.Sqrt(variance)
	if !(sd > minStdDev) {
		return 0
	}
	return SafeDivide(mean-riskFree, sd, 0)
}

// CorrelationMatrix is the Pearson correlation of every pair of distinct
// held symbols over their SymbolReturns series. The diagonal is set to 1.
func CorrelationMatrix(p portfolio.Portfolio, src ReturnSource) map[string]map[string]float64 {
	symbols := p.Symbols()
	series := make(map[string][]float64, len(symbols))
	for _, s := range symbols {
		series[s] = src.SymbolReturns(s)
	}

	m := make(map[string]map[string]float64, len(symbols))
	for _, a := range symbols {
		m[a] = make(map[string]float64, len(symbols))
	}
	for i, a := range symbols {
		m[a][a] = 1
		for _, b := range symbols[i+1:] {
			c := pearson(series[a], series[b])
			m[a][b] = c
			m[b][a] = c
		}
	}
	return m
}

func pearson(x, y []float64) float64 {
	if len(x) < 2 || len(x) != len(y) {
		return 0
	}
	c := stat.Correlation(x, y, nil)
	if !finite(c) {
		return 0
	}
	return c
}

// CorrelationRisk is the fraction of off-diagonal entries strictly between
// threshold and 1.
func CorrelationRisk(m map[string]map[string]float64, threshold float64) float64 {
	var high, total int
	for a, row := range m {
		for b, v := range row {
			if a == b {
				continue
			}
			total++
			if v > threshold && v < 1.0 {
				high++
			}
		}
	}
	return SafeDivide(float64(high), float64(total), 0)
}

// ConcentrationRisk sums, over positions, the share of total notional in
// excess of MaxConcentration.
func ConcentrationRisk(p portfolio.Portfolio, l Limits) float64 {
	total := p.TotalNotional()
	var risk float64
	for _, pos := range p.Positions {
		risk += excess(SafeDivide(pos.NotionalValue(), total, 0), l.MaxConcentration)
	}
	return risk
}

// LeverageRisk is total notional over balance in excess of MaxLeverage.
func LeverageRisk(p portfolio.Portfolio, l Limits) float64 {
	return excess(SafeDivide(p.TotalNotional(), p.BalanceFloat(), 0), l.MaxLeverage)
}

// MarginRisk is margin utilization in excess of 1-MinMargin.
func MarginRisk(p portfolio.Portfolio, l Limits) float64 {
	utilization := SafeDivide(p.MarginUsedFloat(), p.MarginAvailableFloat(), 0)
	return excess(utilization, 1-l.MinMargin)
}
