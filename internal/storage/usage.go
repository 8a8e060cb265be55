package storage

import (
	"context"
	"fmt"
)

// AccumulateAppUsage adds deltaSecs to the (day, app) usage row, creating it
// if missing. The read-then-add happens inside a single upsert statement so
// concurrent accumulations cannot race past each other: the stored duration
// only ever grows.
func (s *SQLiteStore) AccumulateAppUsage(ctx context.Context, day, appName, icon, category string, deltaSecs int64) error {
	if day == "" || appName == "" {
		return fmt.Errorf("accumulate usage: day and app name are required")
	}
	if deltaSecs < 0 {
		return fmt.Errorf("accumulate usage: negative delta %d", deltaSecs)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_usage (day, app_name, icon, category, duration_secs)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(day, app_name) DO UPDATE SET
			duration_secs = duration_secs + excluded.duration_secs,
			icon          = excluded.icon,
			category      = excluded.category,
			updated_at    = CURRENT_TIMESTAMP`,
		day, appName, icon, category, deltaSecs,
	)
	if err != nil {
		return fmt.Errorf("accumulate usage: %w", err)
	}
	return nil
}

// UsageForDay returns the per-app usage rows for a day, longest first.
func (s *SQLiteStore) UsageForDay(ctx context.Context, day string) ([]AppUsage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, day, app_name, icon, category, duration_secs
		FROM app_usage WHERE day = ? ORDER BY duration_secs DESC`, day,
	)
	if err != nil {
		return nil, fmt.Errorf("query usage: %w", err)
	}
	defer rows.Close()

	usage := []AppUsage{}
	for rows.Next() {
		var u AppUsage
		if err := rows.Scan(&u.ID, &u.Day, &u.AppName, &u.Icon, &u.Category, &u.DurationSecs); err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		usage = append(usage, u)
	}

	return usage, rows.Err()
}
