package storage

import (
	"context"
	"fmt"
)

// PurgeAll deletes every record of every kind and rebuilds the empty FTS
// tables, so a search for any previously-indexed term returns nothing.
func (s *SQLiteStore) PurgeAll(ctx context.Context) error {
	stmts := []string{
		"DROP TABLE IF EXISTS samples_fts",
		"DROP TABLE IF EXISTS entries_fts",
		"DROP TABLE IF EXISTS summaries_fts",
		"DELETE FROM raw_samples",
		"DELETE FROM activity_entries",
		"DELETE FROM daily_summaries",
		"DELETE FROM app_usage",
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("purge (%s): %w", stmt, err)
		}
	}
	return s.initFTS()
}

// Vacuum rewrites the database file to reclaim space freed by bulk deletes.
// It can transiently use up to twice the file's prior size and blocks other
// writers while it runs, so it is only ever invoked from retention and purge
// callers, never the hot write path.
func (s *SQLiteStore) Vacuum(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "VACUUM"); err != nil {
		return fmt.Errorf("vacuum: %w", err)
	}
	return nil
}

// GetStats returns aggregate statistics about the database.
func (s *SQLiteStore) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM raw_samples").Scan(&stats.TotalSamples); err != nil {
		return nil, fmt.Errorf("count samples: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM activity_entries").Scan(&stats.TotalEntries); err != nil {
		return nil, fmt.Errorf("count entries: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM daily_summaries").Scan(&stats.TotalSummaries); err != nil {
		return nil, fmt.Errorf("count summaries: %w", err)
	}

	if stats.TotalSamples > 0 {
		var oldestStr, newestStr string
		err := s.db.QueryRowContext(ctx, "SELECT MIN(ts), MAX(ts) FROM raw_samples").Scan(&oldestStr, &newestStr)
		if err != nil {
			return nil, fmt.Errorf("sample time range: %w", err)
		}
		stats.OldestSample, _ = parseTimestamp(oldestStr)
		stats.NewestSample, _ = parseTimestamp(newestStr)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT app_name, SUM(duration_secs) AS total
		FROM app_usage GROUP BY app_name ORDER BY total DESC LIMIT 10`,
	)
	if err != nil {
		return nil, fmt.Errorf("top apps: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a AppDuration
		if err := rows.Scan(&a.AppName, &a.Seconds); err != nil {
			return nil, err
		}
		stats.TopApps = append(stats.TopApps, a)
	}

	return stats, rows.Err()
}

// DatabaseSize returns the database size in bytes via page_count*page_size,
// which works for both on-disk and in-memory databases.
func (s *SQLiteStore) DatabaseSize(ctx context.Context) (int64, error) {
	var pageCount, pageSize int64
	if err := s.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err != nil {
		return 0, fmt.Errorf("page count: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize); err != nil {
		return 0, fmt.Errorf("page size: %w", err)
	}
	return pageCount * pageSize, nil
}
