package journal

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/rustyeddy/fxrisk/risk"
	"github.com/sony/gobreaker"
)

// Breaker defaults.
const (
	BreakerFailures = 5
	BreakerTimeout  = 30 * time.Second
)

// BreakerSettings tune when a Breaker opens and how long it stays open.
type BreakerSettings struct {
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
}

// Breaker wraps a Store in a circuit breaker. After ConsecutiveFailures
// failed calls the store is skipped, and calls fail fast with
// gobreaker.ErrOpenState, until OpenTimeout passes and a probe succeeds.
type Breaker struct {
	store Store
	cb    *gobreaker.CircuitBreaker
}

var _ Store = (*Breaker)(nil)

func NewBreaker(store Store, st BreakerSettings, log zerolog.Logger) *Breaker {
	if st.ConsecutiveFailures == 0 {
		st.ConsecutiveFailures = BreakerFailures
	}
	if st.OpenTimeout <= 0 {
		st.OpenTimeout = BreakerTimeout
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "journal",
		MaxRequests: 1,
		Timeout:     st.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= st.ConsecutiveFailures
		},
		// a caller giving up is not a store failure
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("journal circuit breaker state change")
		},
	})
	return &Breaker{store: store, cb: cb}
}

// State returns "closed", "half-open" or "open".
func (b *Breaker) State() string { return b.cb.State().String() }

func (b *Breaker) exec(fn func() error) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	return err
}

func (b *Breaker) SaveLimits(ctx context.Context, l risk.Limits) error {
	return b.exec(func() error { return b.store.SaveLimits(ctx, l) })
}

func (b *Breaker) LoadLimits(ctx context.Context) (l risk.Limits, found bool, err error) {
	err = b.exec(func() error {
		var e error
		l, found, e = b.store.LoadLimits(ctx)
		return e
	})
	return l, found, err
}

func (b *Breaker) RecordAnalysis(ctx context.Context, a risk.Analysis) error {
	return b.exec(func() error { return b.store.RecordAnalysis(ctx, a) })
}

func (b *Breaker) ListAnalyses(ctx context.Context, limit int) (out []risk.Analysis, err error) {
	err = b.exec(func() error {
		var e error
		out, e = b.store.ListAnalyses(ctx, limit)
		return e
	})
	return out, err
}

func (b *Breaker) RecordAlerts(ctx context.Context, set AlertSet) error {
	return b.exec(func() error { return b.store.RecordAlerts(ctx, set) })
}

func (b *Breaker) ListAlerts(ctx context.Context) (set AlertSet, err error) {
	err = b.exec(func() error {
		var e error
		set, e = b.store.ListAlerts(ctx)
		return e
	})
	return set, err
}

func (b *Breaker) RecordStress(ctx context.Context, run StressRun) error {
	return b.exec(func() error { return b.store.RecordStress(ctx, run) })
}

func (b *Breaker) ListStress(ctx context.Context, limit int) (out []StressRun, err error) {
	err = b.exec(func() error {
		var e error
		out, e = b.store.ListStress(ctx, limit)
		return e
	})
	return out, err
}

// Close always reaches the underlying store.
func (b *Breaker) Close() error { return b.store.Close() }
