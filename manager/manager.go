// Package manager is the process-wide risk service. It owns the runtime
// limits, the bounded report history, the latest alert set and the journal,
// and exposes the analysis, stress, sizing and limits operations.
package manager

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rustyeddy/fxrisk/journal"
	"github.com/rustyeddy/fxrisk/metrics"
	"github.com/rustyeddy/fxrisk/pkg/id"
	"github.com/rustyeddy/fxrisk/portfolio"
	"github.com/rustyeddy/fxrisk/risk"
)

// Manager is safe for concurrent use.
type Manager struct {
	limits   *risk.LimitsStore
	history  *risk.History
	analyzer *risk.Analyzer
	stress   *risk.StressEngine
	sizer    *risk.Sizer
	store    journal.Store
	metrics  *metrics.Recorder
	log      zerolog.Logger
	now      func() time.Time

	mu     sync.RWMutex
	alerts journal.AlertSet
}

type settings struct {
	limits     risk.Limits
	source     risk.ReturnSource
	analyzer   []risk.Option
	stress     []risk.StressOption
	historyCap int
	store      journal.Store
	metrics    *metrics.Recorder
	log        zerolog.Logger
	now        func() time.Time
}

type Option func(*settings)

// WithLimits sets the limits used until persisted limits are restored.
func WithLimits(l risk.Limits) Option { return func(s *settings) { s.limits = l } }

func WithSource(src risk.ReturnSource) Option { return func(s *settings) { s.source = src } }

func WithConfidence(c float64) Option {
	return func(s *settings) { s.analyzer = append(s.analyzer, risk.WithConfidence(c)) }
}

func WithRiskFreeRate(r float64) Option {
	return func(s *settings) { s.analyzer = append(s.analyzer, risk.WithRiskFreeRate(r)) }
}

// WithScenarios overlays scenarios onto the built-in set by name.
func WithScenarios(sc map[string]risk.Scenario) Option {
	return func(s *settings) {
		s.stress = append(s.stress, risk.WithScenarios(risk.MergeScenarios(risk.DefaultScenarios(), sc)))
	}
}

func WithParallelism(n int) Option {
	return func(s *settings) { s.stress = append(s.stress, risk.WithParallelism(n)) }
}

func WithHistoryCapacity(n int) Option { return func(s *settings) { s.historyCap = n } }

// WithStore sets the journal. The manager closes it on Close.
func WithStore(st journal.Store) Option { return func(s *settings) { s.store = st } }

func WithMetrics(r *metrics.Recorder) Option { return func(s *settings) { s.metrics = r } }
func WithLogger(l zerolog.Logger) Option     { return func(s *settings) { s.log = l } }
func WithClock(now func() time.Time) Option  { return func(s *settings) { s.now = now } }

// New builds a manager and restores limits, reports and the latest alert
// set from the store. Restore failures are logged and the defaults are kept.
func New(ctx context.Context, opts ...Option) (*Manager, error) {
	s := settings{
		limits:     risk.DefaultLimits(),
		historyCap: risk.DefaultHistoryCapacity,
		log:        zerolog.Nop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.store == nil {
		s.store = journal.NewMemory()
	}

	limits, err := risk.NewLimitsStore(s.limits)
	if err != nil {
		return nil, fmt.Errorf("initial limits: %w", err)
	}

	analyzerOpts := append([]risk.Option{
		risk.WithLimits(limits),
		risk.WithClock(s.now),
		risk.WithLogger(s.log),
	}, s.analyzer...)
	if s.source != nil {
		analyzerOpts = append(analyzerOpts, risk.WithSource(s.source))
	}
	analyzer := risk.NewAnalyzer(analyzerOpts...)

	m := &Manager{
		limits:   limits,
		history:  risk.NewHistory(s.historyCap),
		analyzer: analyzer,
		stress:   risk.NewStressEngine(analyzer, append([]risk.StressOption{risk.WithStressLogger(s.log)}, s.stress...)...),
		sizer:    risk.NewSizer(limits, s.log),
		store:    s.store,
		metrics:  s.metrics,
		log:      s.log,
		now:      s.now,
		alerts:   journal.AlertSet{Alerts: []risk.Alert{}},
	}
	m.restore(ctx)
	return m, nil
}

func (m *Manager) restore(ctx context.Context) {
	l, found, err := m.store.LoadLimits(ctx)
	switch {
	case err != nil:
		m.storeFailed("load_limits", err)
	case found:
		if err := m.limits.Set(l); err != nil {
			m.log.Warn().Err(err).Msg("ignoring invalid persisted limits")
		}
	}

	reports, err := m.store.ListAnalyses(ctx, m.history.Cap())
	if err != nil {
		m.storeFailed("list_analyses", err)
	}
	for _, a := range reports {
		m.history.Add(a)
	}

	set, err := m.store.ListAlerts(ctx)
	if err != nil {
		m.storeFailed("list_alerts", err)
	} else if set.Alerts != nil {
		m.alerts = set
	}

	m.log.Info().
		Bool("limits_restored", found).
		Int("reports", m.history.Len()).
		Int("alerts", len(m.alerts.Alerts)).
		Msg("risk manager started")
}

func (m *Manager) storeFailed(op string, err error) {
	m.metrics.StoreFailure(op)
	m.log.Warn().Err(err).Str("op", op).Msg("journal operation failed")
}

func (m *Manager) persist(op string, fn func() error) {
	if err := fn(); err != nil {
		m.storeFailed(op, err)
	}
}

func validPortfolio(p portfolio.Portfolio) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %w", risk.ErrInvalidInput, err)
	}
	return nil
}

// AnalyzePortfolioRisk analyses p, retains the report in the bounded history,
// regenerates the latest alert set and journals both.
func (m *Manager) AnalyzePortfolioRisk(ctx context.Context, p portfolio.Portfolio) (risk.Analysis, error) {
	if err := validPortfolio(p); err != nil {
		return risk.Analysis{}, err
	}

	start := time.Now()
	a := m.analyzer.Analyze(p)
	took := time.Since(start)

	if m.history.Add(a) {
		m.log.Debug().Int("capacity", m.history.Cap()).Msg("oldest report evicted from history")
	}
	m.metrics.ObserveAnalysis(a, took)
	m.persist("record_analysis", func() error { return m.store.RecordAnalysis(ctx, a) })

	m.GenerateRiskAlerts(ctx, a)

	m.log.Info().
		Str("id", a.ID).
		Float64("score", a.OverallRiskScore).
		Str("level", string(a.RiskLevel)).
		Strs("degraded", a.Degraded).
		Msg("risk analysis complete")
	return a, nil
}

// GenerateRiskAlerts thresholds a against the current limits. The result
// replaces the latest alert set.
func (m *Manager) GenerateRiskAlerts(ctx context.Context, a risk.Analysis) []risk.Alert {
	alerts := risk.GenerateAlerts(a, m.limits.Get())
	set := journal.AlertSet{ReportID: a.ID, Time: a.Timestamp, Alerts: alerts}

	m.mu.Lock()
	m.alerts = set
	m.mu.Unlock()

	m.metrics.ObserveAlerts(alerts)
	m.persist("record_alerts", func() error { return m.store.RecordAlerts(ctx, set) })

	for _, al := range alerts {
		m.log.Warn().
			Str("type", string(al.Type)).
			Str("severity", string(al.Severity)).
			Str("report", a.ID).
			Msg(al.Message)
	}
	return alerts
}

// LatestAlerts returns a copy of the most recent alert set.
func (m *Manager) LatestAlerts() journal.AlertSet {
	m.mu.RLock()
	defer m.mu.RUnlock()
	set := m.alerts
	set.Alerts = append([]risk.Alert{}, set.Alerts...)
	return set
}

// PerformStressTest runs the configured scenarios, merged with overrides by
// name, against clones of p and journals the run.
func (m *Manager) PerformStressTest(ctx context.Context, p portfolio.Portfolio, overrides map[string]risk.Scenario) (journal.StressRun, error) {
	if err := validPortfolio(p); err != nil {
		return journal.StressRun{}, err
	}

	results, err := m.stress.Run(ctx, p, overrides)
	if err != nil {
		return journal.StressRun{}, fmt.Errorf("stress test: %w", err)
	}

	ts := m.now().UTC()
	run := journal.StressRun{ID: id.NewAt(ts), Time: ts, Results: results}

	m.metrics.ObserveStress(results)
	m.persist("record_stress", func() error { return m.store.RecordStress(ctx, run) })

	m.log.Info().Str("run", run.ID).Int("scenarios", len(results)).Msg("stress test complete")
	return run, nil
}

// StressHistory returns up to limit journaled stress runs, oldest first.
func (m *Manager) StressHistory(ctx context.Context, limit int) ([]journal.StressRun, error) {
	return m.store.ListStress(ctx, limit)
}

// Scenarios returns the base scenario set.
func (m *Manager) Scenarios() map[string]risk.Scenario { return m.stress.Scenarios() }

// CalculateOptimalPositionSize sizes a trade on symbol under the current
// limits. riskPerTrade of 0 uses risk.DefaultRiskPerTrade.
func (m *Manager) CalculateOptimalPositionSize(p portfolio.Portfolio, symbol string, price, stopLoss, riskPerTrade float64) (risk.SizingResult, error) {
	if riskPerTrade == 0 {
		riskPerTrade = risk.DefaultRiskPerTrade
	}
	return m.sizer.OptimalPositionSize(p, symbol, price, stopLoss, riskPerTrade)
}

func (m *Manager) RiskLimits() risk.Limits { return m.limits.Get() }

// UpdateRiskLimits merges u into the limits and journals the result. On a
// validation error nothing changes and the error wraps risk.ErrConfiguration.
func (m *Manager) UpdateRiskLimits(ctx context.Context, u risk.LimitsUpdate) (risk.Limits, error) {
	l, err := m.limits.Update(u)
	if err != nil {
		return l, err
	}
	if u.IsEmpty() {
		return l, nil
	}
	m.persist("save_limits", func() error { return m.store.SaveLimits(ctx, l) })
	m.log.Info().Interface("limits", l).Msg("risk limits updated")
	return l, nil
}

// History returns retained reports, oldest first.
func (m *Manager) History() []risk.Analysis { return m.history.List() }

// Report finds a retained report by id.
func (m *Manager) Report(id string) (risk.Analysis, bool) { return m.history.Get(id) }

// ReportAt finds a retained report by timestamp.
func (m *Manager) ReportAt(ts time.Time) (risk.Analysis, bool) { return m.history.At(ts) }

// ReportsSince returns retained reports at or after t.
func (m *Manager) ReportsSince(t time.Time) []risk.Analysis { return m.history.Since(t) }

func (m *Manager) Close() error { return m.store.Close() }
