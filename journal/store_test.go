package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rustyeddy/fxrisk/risk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	j, err := NewSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	return j, path
}

// stores returns a fresh instance of every Store implementation.
func stores(t *testing.T) map[string]Store {
	t.Helper()

	sq, _ := newTestSQLite(t)
	return map[string]Store{
		"sqlite": sq,
		"memory": NewMemory(),
	}
}

func testReport(id string, i int) risk.Analysis {
	return risk.Analysis{
		ID:                id,
		Timestamp:         t0.Add(time.Duration(i) * time.Minute),
		VaR95:             0.08,
		CVaR95:            0.1,
		MaxDrawdown:       0.03,
		CorrelationMatrix: map[string]map[string]float64{"EURUSD": {"EURUSD": 1}},
		LeverageRisk:      float64(i),
		OverallRiskScore:  0.15 * float64(i),
		RiskLevel:         risk.ClassifyLevel(0.15 * float64(i)),
		Recommendations:   []string{"Consider reducing position sizes to lower Value at Risk"},
	}
}

func TestStoreLimits(t *testing.T) {
	t.Parallel()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, found, err := s.LoadLimits(ctx)
			require.NoError(t, err)
			assert.False(t, found)

			l := risk.DefaultLimits()
			l.MaxLeverage = 5
			require.NoError(t, s.SaveLimits(ctx, l))

			l.MinMargin = 0.2
			require.NoError(t, s.SaveLimits(ctx, l))

			got, found, err := s.LoadLimits(ctx)
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, l, got)
		})
	}
}

func TestStoreAnalyses(t *testing.T) {
	t.Parallel()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			ids := []string{"01A", "01B", "01C", "01D"}
			for i, id := range ids {
				require.NoError(t, s.RecordAnalysis(ctx, testReport(id, i)))
			}

			all, err := s.ListAnalyses(ctx, 0)
			require.NoError(t, err)
			require.Len(t, all, 4)
			assert.Equal(t, testReport("01A", 0), all[0])

			last, err := s.ListAnalyses(ctx, 2)
			require.NoError(t, err)
			require.Len(t, last, 2)
			assert.Equal(t, "01C", last[0].ID)
			assert.Equal(t, "01D", last[1].ID)
			assert.Equal(t, testReport("01D", 3), last[1])
		})
	}
}

func TestStoreAlertsKeepLatestSet(t *testing.T) {
	t.Parallel()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			empty, err := s.ListAlerts(ctx)
			require.NoError(t, err)
			assert.Empty(t, empty.Alerts)

			first := AlertSet{ReportID: "01A", Time: t0, Alerts: []risk.Alert{
				{Type: risk.AlertHighVaR, Severity: risk.LevelHigh, Message: "m1", Recommendation: "r1"},
				{Type: risk.AlertLowMargin, Severity: risk.LevelCritical, Message: "m2", Recommendation: "r2"},
			}}
			require.NoError(t, s.RecordAlerts(ctx, first))

			second := AlertSet{ReportID: "01B", Time: t0.Add(time.Minute), Alerts: []risk.Alert{
				{Type: risk.AlertHighLeverage, Severity: risk.LevelHigh, Message: "m3", Recommendation: "r3"},
			}}
			require.NoError(t, s.RecordAlerts(ctx, second))

			got, err := s.ListAlerts(ctx)
			require.NoError(t, err)
			assert.Equal(t, "01B", got.ReportID)
			assert.True(t, got.Time.Equal(second.Time))
			assert.Equal(t, second.Alerts, got.Alerts)

			require.NoError(t, s.RecordAlerts(ctx, AlertSet{ReportID: "01C", Time: t0}))
			got, err = s.ListAlerts(ctx)
			require.NoError(t, err)
			assert.Empty(t, got.Alerts)
		})
	}
}

func testRun(id string, i int) StressRun {
	crash := risk.StressResult{
		Name:          risk.ScenarioMarketCrash,
		Scenario:      risk.Scenario{PriceChangePct: -0.2, Volatility: 0.3},
		OriginalValue: 118500,
		StressedValue: 96800,
		ValueChange:   -0.18,
		RiskMetrics:   testReport(id+"-a", i),
		Survivability: risk.LevelLow,
	}
	flash := crash
	flash.Name = risk.ScenarioFlashCrash
	flash.ValueChange = -0.09
	return StressRun{
		ID:   id,
		Time: t0.Add(time.Duration(i) * time.Hour),
		Results: map[string]risk.StressResult{
			crash.Name: crash,
			flash.Name: flash,
		},
	}
}

func TestStoreStressRuns(t *testing.T) {
	t.Parallel()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			for i, id := range []string{"01R1", "01R2", "01R3"} {
				require.NoError(t, s.RecordStress(ctx, testRun(id, i)))
			}

			runs, err := s.ListStress(ctx, 2)
			require.NoError(t, err)
			require.Len(t, runs, 2)
			assert.Equal(t, "01R2", runs[0].ID)
			assert.Equal(t, "01R3", runs[1].ID)
			assert.True(t, runs[1].Time.Equal(t0.Add(2*time.Hour)))
			assert.Equal(t, testRun("01R3", 2).Results, runs[1].Results)

			all, err := s.ListStress(ctx, 0)
			require.NoError(t, err)
			assert.Len(t, all, 3)
		})
	}
}

func TestMemoryClosed(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	require.NoError(t, m.Close())

	assert.ErrorIs(t, m.SaveLimits(context.Background(), risk.DefaultLimits()), ErrClosed)
	_, err := m.ListAnalyses(context.Background(), 0)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	ctx := context.Background()
	require.NoError(t, j.RecordAnalysis(ctx, testReport("01A", 1)))
	require.NoError(t, j.SaveLimits(ctx, risk.DefaultLimits()))
	require.NoError(t, j.Close())

	reopened, err := NewSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	reports, err := reopened.ListAnalyses(ctx, 10)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "01A", reports[0].ID)

	l, found, err := reopened.LoadLimits(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, risk.DefaultLimits(), l)
}

func TestSQLiteBadPath(t *testing.T) {
	t.Parallel()

	_, err := NewSQLite(filepath.Join(t.TempDir(), "missing", "dir", "test.db"))
	assert.Error(t, err)
}
