package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rustyeddy/fxrisk/risk"
)

// SQLite is a Store backed by a single SQLite file.
type SQLite struct {
	db *sql.DB
}

var _ Store = (*SQLite)(nil)

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// one writer at a time; SQLite would otherwise report SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) SaveLimits(ctx context.Context, l risk.Limits) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO risk_limits
		(id, max_position_size, max_daily_loss, max_drawdown_limit, max_leverage, max_correlation, max_concentration, min_margin, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			max_position_size = excluded.max_position_size,
			max_daily_loss = excluded.max_daily_loss,
			max_drawdown_limit = excluded.max_drawdown_limit,
			max_leverage = excluded.max_leverage,
			max_correlation = excluded.max_correlation,
			max_concentration = excluded.max_concentration,
			min_margin = excluded.min_margin,
			updated_at = excluded.updated_at`,
		l.MaxPositionSize, l.MaxDailyLoss, l.MaxDrawdownLimit, l.MaxLeverage,
		l.MaxCorrelation, l.MaxConcentration, l.MinMargin, time.Now().UTC(),
	)
	return err
}

func (j *SQLite) LoadLimits(ctx context.Context) (risk.Limits, bool, error) {
	var l risk.Limits
	err := j.db.QueryRowContext(ctx, `
		SELECT max_position_size, max_daily_loss, max_drawdown_limit, max_leverage, max_correlation, max_concentration, min_margin
		FROM risk_limits
		WHERE id = 1`).Scan(
		&l.MaxPositionSize,
		&l.MaxDailyLoss,
		&l.MaxDrawdownLimit,
		&l.MaxLeverage,
		&l.MaxCorrelation,
		&l.MaxConcentration,
		&l.MinMargin,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return risk.Limits{}, false, nil
	}
	if err != nil {
		return risk.Limits{}, false, err
	}
	return l, true, nil
}

func (j *SQLite) RecordAnalysis(ctx context.Context, a risk.Analysis) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode report %s: %w", a.ID, err)
	}
	_, err = j.db.ExecContext(ctx, `
		INSERT INTO risk_reports (id, time, score, level, payload)
		VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.Timestamp, a.OverallRiskScore, string(a.RiskLevel), string(payload),
	)
	return err
}

// limitArg maps "no limit" onto SQLite's LIMIT -1.
func limitArg(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

func (j *SQLite) ListAnalyses(ctx context.Context, limit int) ([]risk.Analysis, error) {
	// ids are ULIDs, so id order is time order
	rows, err := j.db.QueryContext(ctx, `
		SELECT payload FROM (
			SELECT id, payload FROM risk_reports ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC`, limitArg(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []risk.Analysis
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var a risk.Analysis
		if err := json.Unmarshal([]byte(payload), &a); err != nil {
			return nil, fmt.Errorf("decode report: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (j *SQLite) RecordAlerts(ctx context.Context, set AlertSet) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM risk_alerts`); err != nil {
		return err
	}
	for _, a := range set.Alerts {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO risk_alerts (report_id, time, type, severity, message, recommendation)
			VALUES (?, ?, ?, ?, ?, ?)`,
			set.ReportID, set.Time, string(a.Type), string(a.Severity), a.Message, a.Recommendation,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (j *SQLite) ListAlerts(ctx context.Context) (AlertSet, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT report_id, time, type, severity, message, recommendation
		FROM risk_alerts
		ORDER BY rowid ASC`)
	if err != nil {
		return AlertSet{}, err
	}
	defer rows.Close()

	set := AlertSet{Alerts: []risk.Alert{}}
	for rows.Next() {
		var (
			a        risk.Alert
			typ, sev string
		)
		if err := rows.Scan(&set.ReportID, &set.Time, &typ, &sev, &a.Message, &a.Recommendation); err != nil {
			return AlertSet{}, err
		}
		a.Type = risk.AlertType(typ)
		a.Severity = risk.Level(sev)
		set.Alerts = append(set.Alerts, a)
	}
	if err := rows.Err(); err != nil {
		return AlertSet{}, err
	}
	return set, nil
}

func (j *SQLite) RecordStress(ctx context.Context, run StressRun) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for name, res := range run.Results {
		payload, err := json.Marshal(res)
		if err != nil {
			return fmt.Errorf("encode stress result %s: %w", name, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO stress_results (run_id, scenario, time, value_change, survivability, payload)
			VALUES (?, ?, ?, ?, ?, ?)`,
			run.ID, name, run.Time, res.ValueChange, string(res.Survivability), string(payload),
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (j *SQLite) ListStress(ctx context.Context, limit int) ([]StressRun, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT run_id, scenario, time, payload
		FROM stress_results
		WHERE run_id IN (
			SELECT DISTINCT run_id FROM stress_results ORDER BY run_id DESC LIMIT ?
		)
		ORDER BY run_id ASC, scenario ASC`, limitArg(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StressRun
	for rows.Next() {
		var (
			runID, scenario, payload string
			ts                       time.Time
		)
		if err := rows.Scan(&runID, &scenario, &ts, &payload); err != nil {
			return nil, err
		}
		var res risk.StressResult
		if err := json.Unmarshal([]byte(payload), &res); err != nil {
			return nil, fmt.Errorf("decode stress result: %w", err)
		}
		if n := len(out); n == 0 || out[n-1].ID != runID {
			out = append(out, StressRun{ID: runID, Time: ts, Results: map[string]risk.StressResult{}})
		}
		out[len(out)-1].Results[scenario] = res
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
