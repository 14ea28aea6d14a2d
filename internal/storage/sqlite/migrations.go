package sqlite

const schema = `
-- One row per monitoring run
CREATE TABLE IF NOT EXISTS sessions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    host TEXT NOT NULL,
    interval_ns INTEGER NOT NULL,
    started_at TIMESTAMP NOT NULL,
    ended_at TIMESTAMP,
    sent INTEGER NOT NULL DEFAULT 0,
    received INTEGER NOT NULL DEFAULT 0,
    outcomes TEXT NOT NULL DEFAULT '',
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_sessions_host ON sessions(host);
CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at);

CREATE TRIGGER IF NOT EXISTS update_sessions_timestamp AFTER UPDATE ON sessions
BEGIN
    UPDATE sessions SET updated_at = CURRENT_TIMESTAMP WHERE id = NEW.id;
END;
`

// runMigrations creates the schema
func runMigrations(db *DB) error {
	if _, err := db.db.Exec(schema); err != nil {
		return err
	}
	return migrateIntervalNanos(db)
}

// migrateIntervalNanos upgrades histories that stored the interval in
// whole milliseconds.
func migrateIntervalNanos(db *DB) error {
	var legacy int
	err := db.db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('sessions') WHERE name = 'interval_ms'`).Scan(&legacy)
	if err != nil || legacy == 0 {
		return err
	}

	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`ALTER TABLE sessions RENAME COLUMN interval_ms TO interval_ns`); err != nil {
		return err
	}
	if _, err := tx.Exec(`UPDATE sessions SET interval_ns = interval_ns * 1000000`); err != nil {
		return err
	}
	return tx.Commit()
}
