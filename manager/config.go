package manager

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rustyeddy/fxrisk/config"
	"github.com/rustyeddy/fxrisk/journal"
	"github.com/rustyeddy/fxrisk/metrics"
	"github.com/rustyeddy/fxrisk/risk"
)

// OpenStore opens the configured journal. A SQLite store is wrapped in a
// circuit breaker. When it cannot be opened the error is logged and an
// in-memory store is returned instead.
func OpenStore(cfg config.StoreConfig, log zerolog.Logger) journal.Store {
	if cfg.Type != "sqlite" {
		return journal.NewMemory()
	}
	db, err := journal.NewSQLite(cfg.DBPath)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.DBPath).Msg("cannot open journal, continuing in memory")
		return journal.NewMemory()
	}
	return journal.NewBreaker(db, journal.BreakerSettings{}, log)
}

// FromConfig builds a manager from a validated configuration. rec may be nil.
func FromConfig(ctx context.Context, cfg *config.Config, rec *metrics.Recorder, log zerolog.Logger) (*Manager, error) {
	src := risk.NewSyntheticSource(cfg.Analysis.Seed, cfg.Analysis.Samples)
	log.Debug().Uint64("seed", src.Seed()).Int("samples", src.Samples()).Msg("synthetic return source")

	return New(ctx,
		WithLimits(cfg.Risk),
		WithSource(src),
		WithConfidence(cfg.Analysis.Confidence),
		WithRiskFreeRate(cfg.Analysis.RiskFreeRate),
		WithHistoryCapacity(cfg.Analysis.HistoryCapacity),
		WithScenarios(cfg.Stress.Scenarios),
		WithParallelism(cfg.Stress.Parallelism),
		WithStore(OpenStore(cfg.Store, log)),
		WithMetrics(rec),
		WithLogger(log),
	)
}
