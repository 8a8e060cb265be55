package storage

import "database/sql"

// migrateV001 creates the initial retrace schema: the four record tables and
// their indexes. Every statement uses IF NOT EXISTS for idempotency.
func migrateV001(tx *sql.Tx) error {
	stmts := []string{
		// ── Tables ──────────────────────────────────────────────

		`CREATE TABLE IF NOT EXISTS raw_samples (
			id             TEXT PRIMARY KEY,
			ts             DATETIME NOT NULL,
			app_name       TEXT NOT NULL DEFAULT '',
			app_id         TEXT NOT NULL DEFAULT '',
			window_title   TEXT NOT NULL DEFAULT '',
			page_url       TEXT NOT NULL DEFAULT '',
			image_path     TEXT NOT NULL DEFAULT '',
			ocr_text       TEXT NOT NULL DEFAULT '',
			ocr_confidence REAL NOT NULL DEFAULT 0,
			created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS activity_entries (
			id            TEXT PRIMARY KEY,
			ts            DATETIME NOT NULL,
			day           TEXT NOT NULL,
			app_name      TEXT NOT NULL DEFAULT '',
			icon          TEXT NOT NULL DEFAULT '',
			title         TEXT NOT NULL DEFAULT '',
			summary       TEXT NOT NULL DEFAULT '',
			category      TEXT NOT NULL DEFAULT 'Other',
			duration_secs INTEGER NOT NULL DEFAULT 0,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS daily_summaries (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			day            TEXT NOT NULL UNIQUE,
			total_secs     INTEGER NOT NULL DEFAULT 0,
			narrative      TEXT NOT NULL DEFAULT '',
			activity_count INTEGER NOT NULL DEFAULT 0,
			productivity   REAL NOT NULL DEFAULT 0,
			updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS app_usage (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			day           TEXT NOT NULL,
			app_name      TEXT NOT NULL,
			icon          TEXT NOT NULL DEFAULT '',
			category      TEXT NOT NULL DEFAULT 'Other',
			duration_secs INTEGER NOT NULL DEFAULT 0,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(day, app_name)
		)`,

		// ── Indexes ────────────────────────────────────────────

		`CREATE INDEX IF NOT EXISTS idx_samples_ts       ON raw_samples(ts)`,
		`CREATE INDEX IF NOT EXISTS idx_samples_app      ON raw_samples(app_name)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_ts       ON activity_entries(ts)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_day      ON activity_entries(day)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_category ON activity_entries(category)`,
		`CREATE INDEX IF NOT EXISTS idx_usage_day        ON app_usage(day)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
