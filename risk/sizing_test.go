package risk

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/rustyeddy/fxrisk/market"
	"github.com/rustyeddy/fxrisk/portfolio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func balanceOnly(b float64) portfolio.Portfolio {
	return portfolio.Portfolio{Balance: portfolio.Dec(b)}
}

func TestOptimalPositionSizeCapDominates(t *testing.T) {
	t.Parallel()

	s := NewSizer(nil, zerolog.Nop())
	got, err := s.OptimalPositionSize(balanceOnly(10000), "EURUSD", 1.0850, 1.0800, 0.02)
	require.NoError(t, err)

	assert.InDelta(t, 200.0, got.AccountRisk, 1e-9)
	assert.InDelta(t, 0.0050, got.PriceRisk, 1e-12)
	assert.InDelta(t, 50.0, got.StopPips, 1e-6)
	assert.InDelta(t, 4000.0, got.OptimalLots, 1e-6)
	assert.InDelta(t, 10000*0.05/(1.0850*100000), got.MaxLots, 1e-12)

	// the cap, not the uncapped 4000 lots, is returned
	assert.InDelta(t, 0.0046, got.Lots, 0.0001)
	assert.Equal(t, got.MaxLots, got.Lots)
	assert.True(t, got.Capped)
	assert.False(t, got.Fallback)
}

func TestOptimalPositionSizeNeverExceedsCap(t *testing.T) {
	t.Parallel()

	s := NewSizer(nil, zerolog.Nop())
	cases := []struct {
		balance, price, stop, risk float64
		symbol                     string
	}{
		{10000, 1.0850, 1.0800, 0.02, "EURUSD"},
		{500, 1.2700, 1.2000, 0.01, "GBPUSD"},
		{250000, 150.25, 149.00, 0.005, "USDJPY"},
		{10000, 1.0850, 1.2850, 1, "EURUSD"},
		{1e9, 0.6500, 0.0001, 0.5, "AUDUSD"},
	}

	for _, c := range cases {
		got, err := s.OptimalPositionSize(balanceOnly(c.balance), c.symbol, c.price, c.stop, c.risk)
		require.NoError(t, err)
		limit := c.balance * DefaultLimits().MaxPositionSize / (c.price * market.ContractSize)
		assert.LessOrEqual(t, got.Lots, limit+1e-15)
		assert.Greater(t, got.Lots, 0.0)
	}
}

func TestOptimalPositionSizeUsesLimits(t *testing.T) {
	t.Parallel()

	l := DefaultLimits()
	l.MaxPositionSize = 0.5
	store, err := NewLimitsStore(l)
	require.NoError(t, err)

	got, err := NewSizer(store, zerolog.Nop()).OptimalPositionSize(balanceOnly(10000), "EURUSD", 1.0850, 1.0800, 0.02)
	require.NoError(t, err)
	assert.InDelta(t, 10000*0.5/(1.0850*100000), got.Lots, 1e-12)
}

func TestOptimalPositionSizeRespectsDailyLoss(t *testing.T) {
	t.Parallel()

	l := DefaultLimits()
	l.MaxDailyLoss = 0.01
	store, err := NewLimitsStore(l)
	require.NoError(t, err)
	s := NewSizer(store, zerolog.Nop())

	got, err := s.OptimalPositionSize(balanceOnly(10000), "EURUSD", 1.0850, 1.0800, 0.5)
	require.NoError(t, err)
	assert.True(t, got.RiskLimited)
	assert.Equal(t, 0.01, got.RiskPerTrade)
	assert.InDelta(t, 100.0, got.AccountRisk, 1e-9)
	assert.InDelta(t, 100/(0.005*market.PipValuePerLot), got.OptimalLots, 1e-6)
	assert.LessOrEqual(t, got.Lots, got.MaxLots)

	got, err = s.OptimalPositionSize(balanceOnly(10000), "EURUSD", 1.0850, 1.0800, 0.005)
	require.NoError(t, err)
	assert.False(t, got.RiskLimited)
	assert.Equal(t, 0.005, got.RiskPerTrade)
	assert.InDelta(t, 50.0, got.AccountRisk, 1e-9)
}

func TestOptimalPositionSizeStopEqualsPrice(t *testing.T) {
	t.Parallel()

	_, err := NewSizer(nil, zerolog.Nop()).OptimalPositionSize(balanceOnly(10000), "EURUSD", 1.0850, 1.0850, 0.02)
	require.ErrorIs(t, err, ErrInvalidStopLoss)
	assert.ErrorIs(t, err, ErrDegenerateCalculation)
}

func TestOptimalPositionSizeInvalidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                       string
		balance, price, stop, risk float64
	}{
		{"zero price", 10000, 0, 1, 0.02},
		{"negative stop", 10000, 1.1, -1, 0.02},
		{"zero risk", 10000, 1.1, 1, 0},
		{"risk above one", 10000, 1.1, 1, 1.5},
		{"zero balance", 0, 1.1, 1, 0.02},
	}

	s := NewSizer(nil, zerolog.Nop())
	for _, tt := range tests {
		_, err := s.OptimalPositionSize(balanceOnly(tt.balance), "EURUSD", tt.price, tt.stop, tt.risk)
		assert.ErrorIs(t, err, ErrInvalidInput, tt.name)
	}
}
