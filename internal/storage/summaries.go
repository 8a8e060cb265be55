package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// UpsertDailySummary inserts or replaces the summary row for its day. The
// FTS index row for that day is rewritten in the same transaction so a
// regenerated narrative never leaves a stale indexed copy behind.
func (s *SQLiteStore) UpsertDailySummary(ctx context.Context, summary *DailySummary) error {
	if summary.Day == "" {
		return fmt.Errorf("upsert summary: day is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO daily_summaries (day, total_secs, narrative, activity_count, productivity)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(day) DO UPDATE SET
			total_secs     = excluded.total_secs,
			narrative      = excluded.narrative,
			activity_count = excluded.activity_count,
			productivity   = excluded.productivity,
			updated_at     = CURRENT_TIMESTAMP`,
		summary.Day, summary.TotalSecs, summary.Narrative,
		summary.ActivityCount, summary.ProductivityScore,
	)
	if err != nil {
		return fmt.Errorf("upsert summary: %w", err)
	}

	if _, err = tx.ExecContext(ctx,
		"DELETE FROM summaries_fts WHERE day = ?", summary.Day,
	); err != nil {
		return fmt.Errorf("deindex summary: %w", err)
	}
	if _, err = tx.ExecContext(ctx,
		"INSERT INTO summaries_fts (day, narrative) VALUES (?, ?)",
		summary.Day, summary.Narrative,
	); err != nil {
		return fmt.Errorf("index summary: %w", err)
	}

	return tx.Commit()
}

// SummaryForDay returns the summary row for a day, or nil if none exists.
func (s *SQLiteStore) SummaryForDay(ctx context.Context, day string) (*DailySummary, error) {
	var d DailySummary
	err := s.db.QueryRowContext(ctx, `
		SELECT id, day, total_secs, narrative, activity_count, productivity
		FROM daily_summaries WHERE day = ?`, day,
	).Scan(&d.ID, &d.Day, &d.TotalSecs, &d.Narrative, &d.ActivityCount, &d.ProductivityScore)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get summary: %w", err)
	}
	return &d, nil
}
