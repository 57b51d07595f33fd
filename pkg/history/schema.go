package history

// SchemaVersion is the current history schema version.
const SchemaVersion = 1

// Schema creates the run history tables. Timestamps are stored as Unix
// nanoseconds.
const Schema = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY,
	applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS validation_runs (
	run_id TEXT PRIMARY KEY,
	recorded_at INTEGER NOT NULL,
	source TEXT NOT NULL DEFAULT '',

	clients INTEGER NOT NULL DEFAULT 0,
	workers INTEGER NOT NULL DEFAULT 0,
	tasks INTEGER NOT NULL DEFAULT 0,

	is_valid INTEGER NOT NULL DEFAULT 0,
	errors INTEGER NOT NULL DEFAULT 0,
	warnings INTEGER NOT NULL DEFAULT 0,
	critical_errors INTEGER NOT NULL DEFAULT 0,
	fixes INTEGER NOT NULL DEFAULT 0,

	rules_valid INTEGER NOT NULL DEFAULT 0,
	rule_errors INTEGER NOT NULL DEFAULT 0,
	rule_warnings INTEGER NOT NULL DEFAULT 0,
	conflicts INTEGER NOT NULL DEFAULT 0,

	duration_ns INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_validation_runs_recorded_at ON validation_runs(recorded_at);
`

const insertSchemaVersion = `INSERT OR IGNORE INTO schema_version (version) VALUES (?)`

const getSchemaVersion = `SELECT MAX(version) FROM schema_version`

const insertRun = `
INSERT INTO validation_runs (
	run_id, recorded_at, source, clients, workers, tasks,
	is_valid, errors, warnings, critical_errors, fixes,
	rules_valid, rule_errors, rule_warnings, conflicts, duration_ns
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const selectRuns = `
SELECT run_id, recorded_at, source, clients, workers, tasks,
	is_valid, errors, warnings, critical_errors, fixes,
	rules_valid, rule_errors, rule_warnings, conflicts, duration_ns
FROM validation_runs
ORDER BY recorded_at DESC, rowid DESC
`

const countRuns = `SELECT COUNT(*) FROM validation_runs`

const deleteRunsBefore = `DELETE FROM validation_runs WHERE recorded_at < ?`

const deleteOldestRuns = `
DELETE FROM validation_runs WHERE rowid IN (
	SELECT rowid FROM validation_runs ORDER BY recorded_at ASC, rowid ASC LIMIT ?
)
`
