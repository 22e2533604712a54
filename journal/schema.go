package journal

const Schema = `
CREATE TABLE IF NOT EXISTS risk_limits (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	max_position_size REAL NOT NULL,
	max_daily_loss REAL NOT NULL,
	max_drawdown_limit REAL NOT NULL,
	max_leverage REAL NOT NULL,
	max_correlation REAL NOT NULL,
	max_concentration REAL NOT NULL,
	min_margin REAL NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS risk_reports (
	id TEXT PRIMARY KEY,
	time DATETIME NOT NULL,
	score REAL NOT NULL,
	level TEXT NOT NULL,
	payload TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS risk_alerts (
	report_id TEXT NOT NULL,
	time DATETIME NOT NULL,
	type TEXT NOT NULL,
	severity TEXT NOT NULL,
	message TEXT NOT NULL,
	recommendation TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS stress_results (
	run_id TEXT NOT NULL,
	scenario TEXT NOT NULL,
	time DATETIME NOT NULL,
	value_change REAL NOT NULL,
	survivability TEXT NOT NULL,
	payload TEXT NOT NULL,
	PRIMARY KEY (run_id, scenario)
);

CREATE INDEX IF NOT EXISTS idx_risk_reports_time ON risk_reports(time);
`
