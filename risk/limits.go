package risk

import (
	"fmt"
	"sync"
)

// Limits are the named thresholds shared by the aggregator, the alert
// generator and position sizing. All values are fractions except MaxLeverage.
type Limits struct {
	MaxPositionSize  float64 `json:"max_position_size" yaml:"max_position_size" mapstructure:"max_position_size"`
	MaxDailyLoss     float64 `json:"max_daily_loss" yaml:"max_daily_loss" mapstructure:"max_daily_loss"`
	MaxDrawdownLimit float64 `json:"max_drawdown_limit" yaml:"max_drawdown_limit" mapstructure:"max_drawdown_limit"`
	MaxLeverage      float64 `json:"max_leverage" yaml:"max_leverage" mapstructure:"max_leverage"`
	MaxCorrelation   float64 `json:"max_correlation" yaml:"max_correlation" mapstructure:"max_correlation"`
	MaxConcentration float64 `json:"max_concentration" yaml:"max_concentration" mapstructure:"max_concentration"`
	MinMargin        float64 `json:"min_margin" yaml:"min_margin" mapstructure:"min_margin"`
}

// DefaultLimits returns the documented defaults.
func DefaultLimits() Limits {
	return Limits{
		MaxPositionSize:  0.05,
		MaxDailyLoss:     0.02,
		MaxDrawdownLimit: 0.15,
		MaxLeverage:      3.0,
		MaxCorrelation:   0.7,
		MaxConcentration: 0.25,
		MinMargin:        0.3,
	}
}

func checkFraction(name string, v float64) error {
	if !finite(v) || v <= 0 || v > 1 {
		return fmt.Errorf("%w: %s must be in (0, 1], got %v", ErrConfiguration, name, v)
	}
	return nil
}

// Validate reports the first out-of-range limit.
func (l Limits) Validate() error {
	fractions := []struct {
		name string
		v    float64
	}{
		{"max_position_size", l.MaxPositionSize},
		{"max_daily_loss", l.MaxDailyLoss},
		{"max_drawdown_limit", l.MaxDrawdownLimit},
		{"max_correlation", l.MaxCorrelation},
		{"max_concentration", l.MaxConcentration},
	}
	for _, f := range fractions {
		if err := checkFraction(f.name, f.v); err != nil {
			return err
		}
	}
	if !finite(l.MaxLeverage) || l.MaxLeverage <= 0 {
		return fmt.Errorf("%w: max_leverage must be positive, got %v", ErrConfiguration, l.MaxLeverage)
	}
	if !finite(l.MinMargin) || l.MinMargin < 0 || l.MinMargin >= 1 {
		return fmt.Errorf("%w: min_margin must be in [0, 1), got %v", ErrConfiguration, l.MinMargin)
	}
	return nil
}

// LimitsUpdate is a partial update; nil fields are left unchanged.
type LimitsUpdate struct {
	MaxPositionSize  *float64 `json:"max_position_size,omitempty"`
	MaxDailyLoss     *float64 `json:"max_daily_loss,omitempty"`
	MaxDrawdownLimit *float64 `json:"max_drawdown_limit,omitempty"`
	MaxLeverage      *float64 `json:"max_leverage,omitempty"`
	MaxCorrelation   *float64 `json:"max_correlation,omitempty"`
	MaxConcentration *float64 `json:"max_concentration,omitempty"`
	MinMargin        *float64 `json:"min_margin,omitempty"`
}

// Apply shallow-overwrites the named fields of l.
func (u LimitsUpdate) Apply(l Limits) Limits {
	set := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	set(&l.MaxPositionSize, u.MaxPositionSize)
	set(&l.MaxDailyLoss, u.MaxDailyLoss)
	set(&l.MaxDrawdownLimit, u.MaxDrawdownLimit)
	set(&l.MaxLeverage, u.MaxLeverage)
	set(&l.MaxCorrelation, u.MaxCorrelation)
	set(&l.MaxConcentration, u.MaxConcentration)
	set(&l.MinMargin, u.MinMargin)
	return l
}

// IsEmpty reports whether the update names no fields.
func (u LimitsUpdate) IsEmpty() bool {
	return u == LimitsUpdate{}
}

// LimitsStore holds the runtime limits. Readers always get a whole snapshot.
type LimitsStore struct {
	mu     sync.RWMutex
	limits Limits
}

// NewLimitsStore validates l and wraps it.
func NewLimitsStore(l Limits) (*LimitsStore, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &LimitsStore{limits: l}, nil
}

// Get returns a snapshot. A nil store yields DefaultLimits.
func (s *LimitsStore) Get() Limits {
	if s == nil {
		return DefaultLimits()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.limits
}

// Set replaces all limits after validation.
func (s *LimitsStore) Set(l Limits) error {
	if err := l.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.limits = l
	s.mu.Unlock()
	return nil
}

// Update merges u into the current limits. The merged result is validated
// as a whole and nothing changes on error.
func (s *LimitsStore) Update(u LimitsUpdate) (Limits, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := u.Apply(s.limits)
	if err := next.Validate(); err != nil {
		return s.limits, err
	}
	s.limits = next
	return next, nil
}
