package storage

import (
	"context"
	"fmt"
	"time"
)

// DeleteSamplesBefore removes samples strictly older than cutoff along with
// their FTS rows, in one transaction. It returns the number of rows deleted
// and the image paths those rows referenced, so the caller can remove the
// artifacts afterward.
func (s *SQLiteStore) DeleteSamplesBefore(ctx context.Context, cutoff time.Time) (int64, []string, error) {
	ts := cutoff.UTC().Format(time.RFC3339Nano)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	rows, err := tx.QueryContext(ctx,
		"SELECT image_path FROM raw_samples WHERE ts < ? AND image_path != ''", ts,
	)
	if err != nil {
		return 0, nil, fmt.Errorf("collect image paths: %w", err)
	}
	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			rows.Close()
			return 0, nil, fmt.Errorf("scan image path: %w", err)
		}
		paths = append(paths, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, nil, err
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM samples_fts WHERE sample_id IN (SELECT id FROM raw_samples WHERE ts < ?)", ts,
	); err != nil {
		return 0, nil, fmt.Errorf("deindex samples: %w", err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM raw_samples WHERE ts < ?", ts)
	if err != nil {
		return 0, nil, fmt.Errorf("delete samples: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil, err
	}

	return n, paths, tx.Commit()
}

// DeleteEntriesBefore removes entries strictly older than cutoff along with
// their FTS rows, returning the count deleted.
func (s *SQLiteStore) DeleteEntriesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	ts := cutoff.UTC().Format(time.RFC3339Nano)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM entries_fts WHERE entry_id IN (SELECT id FROM activity_entries WHERE ts < ?)", ts,
	); err != nil {
		return 0, fmt.Errorf("deindex entries: %w", err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM activity_entries WHERE ts < ?", ts)
	if err != nil {
		return 0, fmt.Errorf("delete entries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	return n, tx.Commit()
}

// DeleteSummariesBefore removes summaries for days strictly before the
// cutoff's local day.
func (s *SQLiteStore) DeleteSummariesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	day := DayKey(cutoff)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM summaries_fts WHERE day < ?", day,
	); err != nil {
		return 0, fmt.Errorf("deindex summaries: %w", err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM daily_summaries WHERE day < ?", day)
	if err != nil {
		return 0, fmt.Errorf("delete summaries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	return n, tx.Commit()
}

// DeleteUsageBefore removes usage rows for days strictly before the cutoff's
// local day.
func (s *SQLiteStore) DeleteUsageBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM app_usage WHERE day < ?", DayKey(cutoff),
	)
	if err != nil {
		return 0, fmt.Errorf("delete usage: %w", err)
	}
	return res.RowsAffected()
}

// CountSamplesBefore reports how many samples a DeleteSamplesBefore with the
// same cutoff would remove.
func (s *SQLiteStore) CountSamplesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM raw_samples WHERE ts < ?",
		cutoff.UTC().Format(time.RFC3339Nano),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count samples: %w", err)
	}
	return n, nil
}

// CountEntriesBefore reports how many entries a DeleteEntriesBefore with the
// same cutoff would remove.
func (s *SQLiteStore) CountEntriesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM activity_entries WHERE ts < ?",
		cutoff.UTC().Format(time.RFC3339Nano),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}
