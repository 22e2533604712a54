package journal

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/rustyeddy/fxrisk/risk"
)

// Memory is an in-process Store. Nothing survives a restart.
type Memory struct {
	mu      sync.RWMutex
	closed  bool
	limits  *risk.Limits
	reports []risk.Analysis
	alerts  AlertSet
	stress  []StressRun
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{alerts: AlertSet{Alerts: []risk.Alert{}}}
}

func (m *Memory) SaveLimits(_ context.Context, l risk.Limits) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.limits = &l
	return nil
}

func (m *Memory) LoadLimits(_ context.Context) (risk.Limits, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return risk.Limits{}, false, ErrClosed
	}
	if m.limits == nil {
		return risk.Limits{}, false, nil
	}
	return *m.limits, true, nil
}

func (m *Memory) RecordAnalysis(_ context.Context, a risk.Analysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.reports = append(m.reports, a)
	return nil
}

// tail returns the last limit elements of s, or all of them.
func tail[T any](s []T, limit int) []T {
	if limit > 0 && len(s) > limit {
		s = s[len(s)-limit:]
	}
	return slices.Clone(s)
}

func (m *Memory) ListAnalyses(_ context.Context, limit int) ([]risk.Analysis, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	return tail(m.reports, limit), nil
}

func (m *Memory) RecordAlerts(_ context.Context, set AlertSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	set.Alerts = slices.Clone(set.Alerts)
	if set.Alerts == nil {
		set.Alerts = []risk.Alert{}
	}
	m.alerts = set
	return nil
}

func (m *Memory) ListAlerts(_ context.Context) (AlertSet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return AlertSet{}, ErrClosed
	}
	set := m.alerts
	set.Alerts = slices.Clone(set.Alerts)
	return set, nil
}

func (m *Memory) RecordStress(_ context.Context, run StressRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	run.Results = maps.Clone(run.Results)
	m.stress = append(m.stress, run)
	return nil
}

func (m *Memory) ListStress(_ context.Context, limit int) ([]StressRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	return tail(m.stress, limit), nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}
