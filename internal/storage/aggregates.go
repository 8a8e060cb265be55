package storage

import (
	"context"
	"fmt"
)

// TotalDurationForDay sums entry durations for one local calendar day.
func (s *SQLiteStore) TotalDurationForDay(ctx context.Context, day string) (int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(duration_secs), 0) FROM activity_entries WHERE day = ?", day,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("total duration: %w", err)
	}
	return total, nil
}

// TotalDurationBetween sums entry durations over an inclusive day range.
func (s *SQLiteStore) TotalDurationBetween(ctx context.Context, fromDay, toDay string) (int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(duration_secs), 0) FROM activity_entries WHERE day >= ? AND day <= ?",
		fromDay, toDay,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("total duration between: %w", err)
	}
	return total, nil
}

// CategoryBreakdown returns summed entry duration per category over an
// inclusive day range, largest first.
func (s *SQLiteStore) CategoryBreakdown(ctx context.Context, fromDay, toDay string) ([]CategoryDuration, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category, SUM(duration_secs) AS total
		FROM activity_entries
		WHERE day >= ? AND day <= ?
		GROUP BY category ORDER BY total DESC`,
		fromDay, toDay,
	)
	if err != nil {
		return nil, fmt.Errorf("category breakdown: %w", err)
	}
	defer rows.Close()

	breakdown := []CategoryDuration{}
	for rows.Next() {
		var c CategoryDuration
		if err := rows.Scan(&c.Category, &c.Seconds); err != nil {
			return nil, fmt.Errorf("scan breakdown: %w", err)
		}
		breakdown = append(breakdown, c)
	}

	return breakdown, rows.Err()
}

// DailyTotals returns the per-day total series over an inclusive day range,
// oldest first.
func (s *SQLiteStore) DailyTotals(ctx context.Context, fromDay, toDay string) ([]DayTotal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT day, SUM(duration_secs) AS total
		FROM activity_entries
		WHERE day >= ? AND day <= ?
		GROUP BY day ORDER BY day ASC`,
		fromDay, toDay,
	)
	if err != nil {
		return nil, fmt.Errorf("daily totals: %w", err)
	}
	defer rows.Close()

	totals := []DayTotal{}
	for rows.Next() {
		var d DayTotal
		if err := rows.Scan(&d.Day, &d.Seconds); err != nil {
			return nil, fmt.Errorf("scan totals: %w", err)
		}
		totals = append(totals, d)
	}

	return totals, rows.Err()
}

// TopApps returns the top-N apps by accumulated usage over an inclusive day
// range.
func (s *SQLiteStore) TopApps(ctx context.Context, fromDay, toDay string, limit int) ([]AppDuration, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT app_name, SUM(duration_secs) AS total
		FROM app_usage
		WHERE day >= ? AND day <= ?
		GROUP BY app_name ORDER BY total DESC LIMIT ?`,
		fromDay, toDay, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("top apps: %w", err)
	}
	defer rows.Close()

	apps := []AppDuration{}
	for rows.Next() {
		var a AppDuration
		if err := rows.Scan(&a.AppName, &a.Seconds); err != nil {
			return nil, fmt.Errorf("scan top apps: %w", err)
		}
		apps = append(apps, a)
	}

	return apps, rows.Err()
}
