package storage

import (
	"context"
	"fmt"
	"time"
)

// InsertEntry appends an activity entry and indexes it for search in one
// transaction. Entries are created only by the aggregation pipeline and are
// never updated afterward.
func (s *SQLiteStore) InsertEntry(ctx context.Context, entry *ActivityEntry) error {
	if entry.ID == "" {
		entry.ID = generateID()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if entry.Day == "" {
		entry.Day = DayKey(entry.Timestamp)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ts := entry.Timestamp.UTC().Format(time.RFC3339Nano)
	_, err = tx.StmtContext(ctx, s.insertEntry).ExecContext(ctx,
		entry.ID, ts, entry.Day, entry.AppName, entry.Icon,
		entry.Title, entry.Summary, entry.Category, entry.DurationSecs,
	)
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO entries_fts (entry_id, title, summary) VALUES (?, ?, ?)",
		entry.ID, entry.Title, entry.Summary,
	)
	if err != nil {
		return fmt.Errorf("index entry: %w", err)
	}

	return tx.Commit()
}

// EntriesForDay returns all entries for a local calendar day, oldest first.
func (s *SQLiteStore) EntriesForDay(ctx context.Context, day string) ([]ActivityEntry, error) {
	return s.scanEntries(ctx, `
		SELECT id, ts, day, app_name, icon, title, summary, category, duration_secs
		FROM activity_entries WHERE day = ? ORDER BY ts ASC`,
		day,
	)
}

// EntriesBetween returns entries with from <= ts <= to, newest first.
func (s *SQLiteStore) EntriesBetween(ctx context.Context, from, to time.Time) ([]ActivityEntry, error) {
	return s.scanEntries(ctx, `
		SELECT id, ts, day, app_name, icon, title, summary, category, duration_secs
		FROM activity_entries WHERE ts >= ? AND ts <= ? ORDER BY ts DESC`,
		from.UTC().Format(time.RFC3339Nano), to.UTC().Format(time.RFC3339Nano),
	)
}

func (s *SQLiteStore) scanEntries(ctx context.Context, query string, args ...interface{}) ([]ActivityEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	entries := []ActivityEntry{}
	for rows.Next() {
		var e ActivityEntry
		var tsStr string
		if err := rows.Scan(
			&e.ID, &tsStr, &e.Day, &e.AppName, &e.Icon,
			&e.Title, &e.Summary, &e.Category, &e.DurationSecs,
		); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.Timestamp, _ = parseTimestamp(tsStr)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
