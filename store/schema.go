package store

const schema = `
CREATE TABLE IF NOT EXISTS strategy_metrics (
	strategy_id TEXT PRIMARY KEY,
	account TEXT NOT NULL DEFAULT '',
	data_source TEXT NOT NULL DEFAULT '',
	portfolio_holdings TEXT NOT NULL DEFAULT '[]',
	series_all TEXT NOT NULL DEFAULT '[]',
	series_1d TEXT NOT NULL DEFAULT '[]',
	series_1m TEXT NOT NULL DEFAULT '[]',
	series_3m TEXT NOT NULL DEFAULT '[]',
	series_6m TEXT NOT NULL DEFAULT '[]',
	series_1y TEXT NOT NULL DEFAULT '[]',
	series_3y TEXT NOT NULL DEFAULT '[]',
	series_ytd TEXT NOT NULL DEFAULT '[]',
	perf_summary TEXT NOT NULL DEFAULT 'null',
	calendar_returns TEXT NOT NULL DEFAULT '[]',
	monthly_returns TEXT NOT NULL DEFAULT '[]',
	asof_date TEXT NOT NULL DEFAULT '',
	updated_at DATETIME
);

CREATE TABLE IF NOT EXISTS demo_allocations (
	id TEXT PRIMARY KEY,
	strategy_id TEXT NOT NULL,
	amount_invested REAL NOT NULL,
	start_date TEXT NOT NULL,
	series_all TEXT NOT NULL DEFAULT '[]',
	series_1d TEXT NOT NULL DEFAULT '[]',
	series_1m TEXT NOT NULL DEFAULT '[]',
	series_3m TEXT NOT NULL DEFAULT '[]',
	series_6m TEXT NOT NULL DEFAULT '[]',
	series_1y TEXT NOT NULL DEFAULT '[]',
	series_3y TEXT NOT NULL DEFAULT '[]',
	series_ytd TEXT NOT NULL DEFAULT '[]',
	latest_value REAL,
	latest_return_pct REAL,
	updated_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_demo_allocations_strategy ON demo_allocations(strategy_id);

CREATE TABLE IF NOT EXISTS engine_runs (
	run_id TEXT PRIMARY KEY,
	started_at DATETIME NOT NULL,
	finished_at DATETIME NOT NULL,
	strategies_updated INTEGER NOT NULL DEFAULT 0,
	allocations_updated INTEGER NOT NULL DEFAULT 0,
	errors INTEGER NOT NULL DEFAULT 0
);
`
