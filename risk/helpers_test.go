package risk

import (
	"time"

	"github.com/rustyeddy/fxrisk/portfolio"
)

// fixedSource returns canned series so metric values are exact.
type fixedSource struct {
	returns []float64
	symbols map[string][]float64
	vol     float64
	curve   []float64
}

func (f *fixedSource) PortfolioReturns(p portfolio.Portfolio) []float64 {
	if len(p.Positions) == 0 {
		return nil
	}
	return f.returns
}

func (f *fixedSource) SymbolReturns(symbol string) []float64 { return f.symbols[symbol] }
func (f *fixedSource) Volatility(string) float64             { return f.vol }
func (f *fixedSource) EquityCurve(start float64) []float64 {
	out := make([]float64, len(f.curve))
	for i, v := range f.curve {
		out[i] = start * v
	}
	return out
}

// panicSource panics on Volatility only.
type panicSource struct{ fixedSource }

func (p *panicSource) Volatility(string) float64 { panic("volatility feed down") }

var fixedTime = time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

func fixedClock() time.Time { return fixedTime }

// linearReturns returns (i-50)/1000 for i in [0,100).
func linearReturns() []float64 {
	out := make([]float64, 100)
	for i := range out {
		out[i] = float64(i-50) / 1000
	}
	return out
}

// eurusd is the single-position snapshot used throughout the tests.
func eurusd() portfolio.Portfolio {
	return portfolio.Portfolio{
		Balance:         portfolio.Dec(10000),
		MarginAvailable: portfolio.Dec(8000),
		MarginUsed:      portfolio.Dec(2000),
		Positions: []portfolio.Position{
			{Symbol: "EURUSD", LotSize: portfolio.Dec(1.0), Price: portfolio.Dec(1.0850), Margin: portfolio.Dec(1085)},
		},
	}
}

func multi() portfolio.Portfolio {
	p := eurusd()
	p.Positions[0].StopLoss = portfolio.DecPtr(1.0800)
	p.Positions[0].TakeProfit = portfolio.DecPtr(1.0950)
	p.Positions = append(p.Positions,
		portfolio.Position{Symbol: "GBPUSD", LotSize: portfolio.Dec(0.5), Price: portfolio.Dec(1.2700), Margin: portfolio.Dec(635)},
		portfolio.Position{Symbol: "USDJPY", LotSize: portfolio.Dec(0.2), Price: portfolio.Dec(150.25), StopLoss: portfolio.DecPtr(149.50), Margin: portfolio.Dec(300)},
	)
	return p
}
