package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPipSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		loc  int
		want float64
	}{
		{"zero", 0, 1},
		{"negative2", -2, 0.01},
		{"positive1", 1, 10},
		{"negative4", -4, 0.0001},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, PipSize(tt.loc), 1e-12)
		})
	}
}

func TestNotional(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 108500.0, Notional(1.0, 1.0850), 1e-6)
	assert.InDelta(t, 15000.0, Notional(0.1, 1.5), 1e-6)
	assert.Zero(t, Notional(0, 1.2))
}

func TestLookupAcceptsSpellings(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"EURUSD", "EUR_USD", "EUR/USD", " eurusd "} {
		meta, ok := Lookup(s)
		assert.True(t, ok, s)
		assert.Equal(t, "EURUSD", meta.Name)
	}

	_, ok := Lookup("XAUUSD")
	assert.False(t, ok)
	assert.Equal(t, DefaultPipLocation, PipLocation("XAUUSD"))
	assert.Equal(t, -2, PipLocation("USD_JPY"))
}
