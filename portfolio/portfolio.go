// Package portfolio holds the snapshot of tradable state that the risk core
// analyses. Values are supplied by the caller for every request and are never
// mutated by the risk core outside of a Clone.
package portfolio

import (
	"errors"
	"fmt"

	"github.com/rustyeddy/fxrisk/market"
	"github.com/shopspring/decimal"
)

// ErrInvalid is returned by Validate for malformed snapshots.
var ErrInvalid = errors.New("invalid portfolio")

// Position is one open exposure.
type Position struct {
	Symbol     string           `json:"symbol" yaml:"symbol"`
	LotSize    decimal.Decimal  `json:"lot_size" yaml:"lot_size"`
	Price      decimal.Decimal  `json:"price" yaml:"price"`
	StopLoss   *decimal.Decimal `json:"stop_loss,omitempty" yaml:"stop_loss,omitempty"`
	TakeProfit *decimal.Decimal `json:"take_profit,omitempty" yaml:"take_profit,omitempty"`
	Margin     decimal.Decimal  `json:"margin" yaml:"margin"`
}

// Portfolio is the account snapshot at analysis time. Position order is
// preserved for display only.
type Portfolio struct {
	Balance         decimal.Decimal `json:"balance" yaml:"balance"`
	MarginAvailable decimal.Decimal `json:"margin_available" yaml:"margin_available"`
	MarginUsed      decimal.Decimal `json:"margin_used" yaml:"margin_used"`
	Positions       []Position      `json:"positions" yaml:"positions"`
}

// NotionalValue is lots * price * market.ContractSize.
func (p Position) NotionalValue() float64 {
	return market.Notional(p.LotSize.InexactFloat64(), p.Price.InexactFloat64())
}

// Units is the position size in base-currency units.
func (p Position) Units() float64 {
	return p.LotSize.InexactFloat64() * market.ContractSize
}

// Rescale multiplies the price and, when present, the stop loss and take
// profit by factor.
func (p *Position) Rescale(factor decimal.Decimal) {
	p.Price = p.Price.Mul(factor)
	if p.StopLoss != nil {
		v := p.StopLoss.Mul(factor)
		p.StopLoss = &v
	}
	if p.TakeProfit != nil {
		v := p.TakeProfit.Mul(factor)
		p.TakeProfit = &v
	}
}

func (p Position) clone() Position {
	out := p
	if p.StopLoss != nil {
		v := *p.StopLoss
		out.StopLoss = &v
	}
	if p.TakeProfit != nil {
		v := *p.TakeProfit
		out.TakeProfit = &v
	}
	return out
}

// Clone returns a deep copy; mutating the copy never touches p.
func (p Portfolio) Clone() Portfolio {
	out := p
	if p.Positions != nil {
		out.Positions = make([]Position, len(p.Positions))
		for i, pos := range p.Positions {
			out.Positions[i] = pos.clone()
		}
	}
	return out
}

func (p Portfolio) BalanceFloat() float64         { return p.Balance.InexactFloat64() }
func (p Portfolio) MarginUsedFloat() float64      { return p.MarginUsed.InexactFloat64() }
func (p Portfolio) MarginAvailableFloat() float64 { return p.MarginAvailable.InexactFloat64() }

// TotalNotional sums NotionalValue over all positions.
func (p Portfolio) TotalNotional() float64 {
	var total float64
	for _, pos := range p.Positions {
		total += pos.NotionalValue()
	}
	return total
}

// Value is balance plus total notional exposure.
func (p Portfolio) Value() float64 {
	return p.BalanceFloat() + p.TotalNotional()
}

// Symbols returns the distinct symbols held, in first-seen order.
func (p Portfolio) Symbols() []string {
	seen := make(map[string]bool, len(p.Positions))
	var out []string
	for _, pos := range p.Positions {
		if seen[pos.Symbol] {
			continue
		}
		seen[pos.Symbol] = true
		out = append(out, pos.Symbol)
	}
	return out
}

// Validate checks the fields the risk core relies on. A positive balance is
// expected but not enforced.
func (p Portfolio) Validate() error {
	if p.MarginUsed.IsNegative() {
		return fmt.Errorf("%w: margin_used must not be negative", ErrInvalid)
	}
	if p.MarginAvailable.IsNegative() {
		return fmt.Errorf("%w: margin_available must not be negative", ErrInvalid)
	}
	for i, pos := range p.Positions {
		if pos.Symbol == "" {
			return fmt.Errorf("%w: positions[%d].symbol is required", ErrInvalid, i)
		}
		if pos.LotSize.IsNegative() {
			return fmt.Errorf("%w: positions[%d].lot_size must not be negative", ErrInvalid, i)
		}
		if !pos.Price.IsPositive() {
			return fmt.Errorf("%w: positions[%d].price must be positive", ErrInvalid, i)
		}
		if pos.Margin.IsNegative() {
			return fmt.Errorf("%w: positions[%d].margin must not be negative", ErrInvalid, i)
		}
	}
	return nil
}
