package journal

// Schema is valid for both SQLite and PostgreSQL.
const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	created TIMESTAMP NOT NULL,
	source TEXT NOT NULL,
	worth DOUBLE PRECISION NOT NULL,
	currency TEXT NOT NULL,
	confidence DOUBLE PRECISION NOT NULL,
	simulations INTEGER NOT NULL,
	horizon_days INTEGER NOT NULL,
	seed TEXT NOT NULL,
	assets INTEGER NOT NULL,
	skipped INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS allocations (
	run_id TEXT NOT NULL REFERENCES runs(run_id),
	position INTEGER NOT NULL,
	asset TEXT NOT NULL,
	average_price DOUBLE PRECISION NOT NULL,
	average_return DOUBLE PRECISION NOT NULL,
	volatility DOUBLE PRECISION NOT NULL,
	historical_var DOUBLE PRECISION NOT NULL,
	monte_carlo_var DOUBLE PRECISION NOT NULL,
	weight DOUBLE PRECISION NOT NULL,
	capital DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (run_id, position)
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created);
`
