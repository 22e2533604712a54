package risk

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"github.com/rustyeddy/fxrisk/market"
	"github.com/rustyeddy/fxrisk/portfolio"
)

// DefaultRiskPerTrade is the fraction of balance put at risk by one trade.
const DefaultRiskPerTrade = 0.02

// SizingResult explains a lot-size recommendation.
type SizingResult struct {
	Symbol      string  `json:"symbol"`
	Lots        float64 `json:"lots"`
	// RiskPerTrade is the fraction actually risked after the daily loss
	// limit is applied.
	RiskPerTrade float64 `json:"risk_per_trade"`
	OptimalLots float64 `json:"optimal_lots"`
	MaxLots     float64 `json:"max_lots"`
	AccountRisk float64 `json:"account_risk"`
	PriceRisk   float64 `json:"price_risk"`
	StopPips    float64 `json:"stop_pips"`
	// Capped is set when MaxLots, not the risk budget, decided Lots.
	Capped bool `json:"capped"`
	// RiskLimited is set when riskPerTrade exceeded MaxDailyLoss.
	RiskLimited bool `json:"risk_limited"`
	// Fallback is set when the computation was not finite and Lots is
	// market.MinLotSize.
	Fallback bool `json:"fallback"`
}

// Sizer computes risk-constrained position sizes under the current limits.
type Sizer struct {
	limits *LimitsStore
	log    zerolog.Logger
}

func NewSizer(limits *LimitsStore, log zerolog.Logger) *Sizer {
	return &Sizer{limits: limits, log: log}
}

// OptimalPositionSize returns min(optimal, cap) lots where
//
//	optimal = balance*riskPerTrade / (|price-stop| * market.PipValuePerLot)
//	cap     = balance*MaxPositionSize / (price * market.ContractSize)
//
// A stop equal to the price is a caller error (ErrInvalidStopLoss) rather
// than an infinite size. Any other non-finite outcome falls back to
// market.MinLotSize. One trade never risks more than MaxDailyLoss of the
// balance, so riskPerTrade is lowered to that limit when it is larger.
func (s *Sizer) OptimalPositionSize(p portfolio.Portfolio, symbol string, price, stopLoss, riskPerTrade float64) (SizingResult, error) {
	res := SizingResult{Symbol: symbol}

	balance := p.BalanceFloat()
	switch {
	case !finite(price) || price <= 0:
		return res, fmt.Errorf("%w: price must be positive, got %v", ErrInvalidInput, price)
	case !finite(stopLoss) || stopLoss < 0:
		return res, fmt.Errorf("%w: stop loss must not be negative, got %v", ErrInvalidInput, stopLoss)
	case !finite(riskPerTrade) || riskPerTrade <= 0 || riskPerTrade > 1:
		return res, fmt.Errorf("%w: risk per trade must be in (0, 1], got %v", ErrInvalidInput, riskPerTrade)
	case balance <= 0:
		return res, fmt.Errorf("%w: balance must be positive, got %v", ErrInvalidInput, balance)
	}

	res.PriceRisk = math.Abs(price - stopLoss)
	if res.PriceRisk == 0 {
		return res, fmt.Errorf("%w: %s price %v", ErrInvalidStopLoss, symbol, price)
	}

	l := s.limits.Get()
	res.RiskPerTrade = riskPerTrade
	if l.MaxDailyLoss > 0 && riskPerTrade > l.MaxDailyLoss {
		res.RiskPerTrade = l.MaxDailyLoss
		res.RiskLimited = true
	}
	res.AccountRisk = balance * res.RiskPerTrade
	res.StopPips = res.PriceRisk / market.PipSize(market.PipLocation(symbol))
	res.OptimalLots = res.AccountRisk / (res.PriceRisk * market.PipValuePerLot)
	res.MaxLots = balance * l.MaxPositionSize / (price * market.ContractSize)

	res.Lots = math.Min(res.OptimalLots, res.MaxLots)
	res.Capped = res.MaxLots < res.OptimalLots

	if !finite(res.Lots) {
		s.log.Warn().
			Str("symbol", symbol).
			Float64("optimal", res.OptimalLots).
			Float64("max", res.MaxLots).
			Msg("position size not finite, using minimum lot size")
		res.Lots = market.MinLotSize
		res.Fallback = true
	}
	return res, nil
}
