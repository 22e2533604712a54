package risk

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestDefaultLimitsAreValid(t *testing.T) {
	t.Parallel()

	l := DefaultLimits()
	require.NoError(t, l.Validate())
	assert.Equal(t, 0.05, l.MaxPositionSize)
	assert.Equal(t, 3.0, l.MaxLeverage)
	assert.Equal(t, 0.3, l.MinMargin)
}

func TestLimitsValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Limits)
	}{
		{"zero position size", func(l *Limits) { l.MaxPositionSize = 0 }},
		{"position size above one", func(l *Limits) { l.MaxPositionSize = 1.5 }},
		{"negative drawdown", func(l *Limits) { l.MaxDrawdownLimit = -0.1 }},
		{"zero leverage", func(l *Limits) { l.MaxLeverage = 0 }},
		{"min margin of one", func(l *Limits) { l.MinMargin = 1 }},
		{"negative min margin", func(l *Limits) { l.MinMargin = -0.1 }},
		{"correlation above one", func(l *Limits) { l.MaxCorrelation = 1.1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			l := DefaultLimits()
			tt.mutate(&l)
			assert.ErrorIs(t, l.Validate(), ErrConfiguration)
		})
	}
}

func TestLimitsStoreNilReturnsDefaults(t *testing.T) {
	t.Parallel()

	var s *LimitsStore
	assert.Equal(t, DefaultLimits(), s.Get())
}

func TestLimitsStorePartialUpdate(t *testing.T) {
	t.Parallel()

	s, err := NewLimitsStore(DefaultLimits())
	require.NoError(t, err)

	got, err := s.Update(LimitsUpdate{MaxLeverage: ptr(5), MinMargin: ptr(0.2)})
	require.NoError(t, err)

	want := DefaultLimits()
	want.MaxLeverage = 5
	want.MinMargin = 0.2
	assert.Equal(t, want, got)
	assert.Equal(t, want, s.Get())
}

func TestLimitsStoreRejectedUpdateChangesNothing(t *testing.T) {
	t.Parallel()

	s, err := NewLimitsStore(DefaultLimits())
	require.NoError(t, err)

	got, err := s.Update(LimitsUpdate{MaxLeverage: ptr(10), MaxPositionSize: ptr(2)})
	require.ErrorIs(t, err, ErrConfiguration)
	assert.Equal(t, DefaultLimits(), got)
	assert.Equal(t, DefaultLimits(), s.Get())
}

func TestLimitsUpdateIsEmpty(t *testing.T) {
	t.Parallel()

	assert.True(t, LimitsUpdate{}.IsEmpty())
	assert.False(t, LimitsUpdate{MaxDailyLoss: ptr(0.01)}.IsEmpty())
}

func TestNewLimitsStoreRejectsInvalid(t *testing.T) {
	t.Parallel()

	l := DefaultLimits()
	l.MaxLeverage = -1
	_, err := NewLimitsStore(l)
	assert.ErrorIs(t, err, ErrConfiguration)
}

// Writers alternate between two complete limit sets; every read must
// observe one of them, never a mix.
func TestLimitsStoreNoTornReads(t *testing.T) {
	t.Parallel()

	a := DefaultLimits()
	b := Limits{
		MaxPositionSize:  0.1,
		MaxDailyLoss:     0.05,
		MaxDrawdownLimit: 0.3,
		MaxLeverage:      10,
		MaxCorrelation:   0.9,
		MaxConcentration: 0.5,
		MinMargin:        0.1,
	}
	s, err := NewLimitsStore(a)
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := range 2000 {
			if i%2 == 0 {
				_ = s.Set(b)
			} else {
				_ = s.Set(a)
			}
		}
	}()

	torn := 0
	go func() {
		defer wg.Done()
		for range 2000 {
			if got := s.Get(); got != a && got != b {
				torn++
			}
		}
	}()
	wg.Wait()

	assert.Zero(t, torn)
}
