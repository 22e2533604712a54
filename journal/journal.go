// Package journal persists risk limits, reports, alerts and stress runs, and
// exports them for review.
package journal

import (
	"context"
	"errors"
	"time"

	"github.com/rustyeddy/fxrisk/risk"
)

// ErrClosed is returned by stores used after Close.
var ErrClosed = errors.New("journal: store closed")

// AlertSet is the set of alerts raised by one analysis. Stores keep only the
// latest set.
type AlertSet struct {
	ReportID string       `json:"report_id"`
	Time     time.Time    `json:"time"`
	Alerts   []risk.Alert `json:"alerts"`
}

// StressRun groups the per-scenario results of one stress test.
type StressRun struct {
	ID      string                       `json:"id"`
	Time    time.Time                    `json:"time"`
	Results map[string]risk.StressResult `json:"results"`
}

// Store is the persistence boundary. Implementations must be safe for
// concurrent use. List methods return records oldest first; a limit of 0 or
// less means no limit.
type Store interface {
	SaveLimits(ctx context.Context, l risk.Limits) error
	// LoadLimits reports found=false when no limits were ever saved.
	LoadLimits(ctx context.Context) (l risk.Limits, found bool, err error)

	RecordAnalysis(ctx context.Context, a risk.Analysis) error
	// ListAnalyses returns the newest limit reports.
	ListAnalyses(ctx context.Context, limit int) ([]risk.Analysis, error)

	// RecordAlerts replaces the stored alert set.
	RecordAlerts(ctx context.Context, set AlertSet) error
	ListAlerts(ctx context.Context) (AlertSet, error)

	RecordStress(ctx context.Context, run StressRun) error
	// ListStress returns the newest limit runs.
	ListStress(ctx context.Context, limit int) ([]StressRun, error)

	Close() error
}
