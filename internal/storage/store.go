package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store defines the interface for retrace data operations. The write path is
// serialized by SQLite's single-writer discipline; every multi-step write
// runs inside one transaction so concurrent accumulations never lose an
// update.
type Store interface {
	InsertSample(ctx context.Context, sample *RawSample) error
	SamplesSince(ctx context.Context, since time.Time) ([]RawSample, error)
	SamplesBetween(ctx context.Context, from, to time.Time) ([]RawSample, error)

	InsertEntry(ctx context.Context, entry *ActivityEntry) error
	EntriesForDay(ctx context.Context, day string) ([]ActivityEntry, error)
	EntriesBetween(ctx context.Context, from, to time.Time) ([]ActivityEntry, error)

	UpsertDailySummary(ctx context.Context, summary *DailySummary) error
	SummaryForDay(ctx context.Context, day string) (*DailySummary, error)

	AccumulateAppUsage(ctx context.Context, day, appName, icon, category string, deltaSecs int64) error
	UsageForDay(ctx context.Context, day string) ([]AppUsage, error)

	SearchSamples(ctx context.Context, query SearchQuery) ([]RawSample, error)
	SearchEntries(ctx context.Context, query SearchQuery) ([]ActivityEntry, error)
	SearchSummaries(ctx context.Context, query SearchQuery) ([]DailySummary, error)

	TotalDurationForDay(ctx context.Context, day string) (int64, error)
	TotalDurationBetween(ctx context.Context, fromDay, toDay string) (int64, error)
	CategoryBreakdown(ctx context.Context, fromDay, toDay string) ([]CategoryDuration, error)
	DailyTotals(ctx context.Context, fromDay, toDay string) ([]DayTotal, error)
	TopApps(ctx context.Context, fromDay, toDay string, limit int) ([]AppDuration, error)

	DeleteSamplesBefore(ctx context.Context, cutoff time.Time) (int64, []string, error)
	DeleteEntriesBefore(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteSummariesBefore(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteUsageBefore(ctx context.Context, cutoff time.Time) (int64, error)
	CountSamplesBefore(ctx context.Context, cutoff time.Time) (int64, error)
	CountEntriesBefore(ctx context.Context, cutoff time.Time) (int64, error)

	PurgeAll(ctx context.Context) error
	Vacuum(ctx context.Context) error
	GetStats(ctx context.Context) (*Stats, error)
	DatabaseSize(ctx context.Context) (int64, error)
	Close() error
}

// SQLiteStore implements Store backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB

	// Prepared statements for the hot write path.
	insertSample *sql.Stmt
	insertEntry  *sql.Stmt
}

// NewSQLiteStore creates a new SQLiteStore from an already-opened and
// migrated database.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}

	if err := s.initFTS(); err != nil {
		return nil, fmt.Errorf("init FTS: %w", err)
	}

	if err := s.prepareStatements(); err != nil {
		return nil, fmt.Errorf("prepare statements: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.insertSample, err = s.db.Prepare(`
		INSERT INTO raw_samples (id, ts, app_name, app_id, window_title, page_url, image_path, ocr_text, ocr_confidence)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}

	s.insertEntry, err = s.db.Prepare(`
		INSERT INTO activity_entries (id, ts, day, app_name, icon, title, summary, category, duration_secs)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	return err
}

// initFTS creates the FTS5 virtual tables for full-text search if they don't
// exist. Each table with free-text columns gets its own index.
func (s *SQLiteStore) initFTS() error {
	stmts := []string{
		`CREATE VIRTUAL TABLE IF NOT EXISTS samples_fts USING fts5(
			sample_id UNINDEXED,
			app_name,
			window_title,
			ocr_text,
			tokenize='unicode61'
		)`,
		`CREATE VIRTUAL TABLE IF NOT EXISTS entries_fts USING fts5(
			entry_id UNINDEXED,
			title,
			summary,
			tokenize='unicode61'
		)`,
		`CREATE VIRTUAL TABLE IF NOT EXISTS summaries_fts USING fts5(
			day UNINDEXED,
			narrative,
			tokenize='unicode61'
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// generateID creates an opaque record ID.
func generateID() string {
	return uuid.NewString()
}

// ftsQuery converts a user search string into a valid FTS5 query. Each word
// is individually quoted so store-specific query-syntax characters in user
// input cannot break the query, with a prefix wildcard for partial matching.
// A blank input yields an empty query, which callers treat as "no results".
func ftsQuery(input string) string {
	words := strings.Fields(input)
	if len(words) == 0 {
		return ""
	}
	var parts []string
	for _, w := range words {
		parts = append(parts, `"`+strings.ReplaceAll(w, `"`, `""`)+`"*`)
	}
	return strings.Join(parts, " OR ")
}

// parseTimestamp tries several common SQLite timestamp formats.
func parseTimestamp(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse timestamp: %s", s)
}

// InsertSample appends a raw sample and indexes it for search in one
// transaction. The sample's ID is populated; the row is never updated again.
func (s *SQLiteStore) InsertSample(ctx context.Context, sample *RawSample) error {
	if sample.ID == "" {
		sample.ID = generateID()
	}
	if sample.Timestamp.IsZero() {
		sample.Timestamp = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ts := sample.Timestamp.UTC().Format(time.RFC3339Nano)
	_, err = tx.StmtContext(ctx, s.insertSample).ExecContext(ctx,
		sample.ID, ts, sample.AppName, sample.AppID, sample.WindowTitle,
		sample.PageURL, sample.ImagePath, sample.OCRText, sample.OCRConfidence,
	)
	if err != nil {
		return fmt.Errorf("insert sample: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO samples_fts (sample_id, app_name, window_title, ocr_text) VALUES (?, ?, ?, ?)",
		sample.ID, sample.AppName, sample.WindowTitle, sample.OCRText,
	)
	if err != nil {
		return fmt.Errorf("index sample: %w", err)
	}

	return tx.Commit()
}

// SamplesSince returns samples with ts >= since, newest first.
func (s *SQLiteStore) SamplesSince(ctx context.Context, since time.Time) ([]RawSample, error) {
	return s.scanSamples(ctx, `
		SELECT id, ts, app_name, app_id, window_title, page_url, image_path, ocr_text, ocr_confidence
		FROM raw_samples WHERE ts >= ? ORDER BY ts DESC`,
		since.UTC().Format(time.RFC3339Nano),
	)
}

// SamplesBetween returns samples with from <= ts <= to, newest first.
func (s *SQLiteStore) SamplesBetween(ctx context.Context, from, to time.Time) ([]RawSample, error) {
	return s.scanSamples(ctx, `
		SELECT id, ts, app_name, app_id, window_title, page_url, image_path, ocr_text, ocr_confidence
		FROM raw_samples WHERE ts >= ? AND ts <= ? ORDER BY ts DESC`,
		from.UTC().Format(time.RFC3339Nano), to.UTC().Format(time.RFC3339Nano),
	)
}

// scanSamples executes a query and scans the rows into RawSample slices.
func (s *SQLiteStore) scanSamples(ctx context.Context, query string, args ...interface{}) ([]RawSample, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	samples := []RawSample{}
	for rows.Next() {
		var r RawSample
		var tsStr string
		if err := rows.Scan(
			&r.ID, &tsStr, &r.AppName, &r.AppID, &r.WindowTitle,
			&r.PageURL, &r.ImagePath, &r.OCRText, &r.OCRConfidence,
		); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		r.Timestamp, _ = parseTimestamp(tsStr)
		samples = append(samples, r)
	}

	return samples, rows.Err()
}

// Close releases prepared statements. The underlying *sql.DB is NOT closed;
// that is the caller's responsibility.
func (s *SQLiteStore) Close() error {
	for _, stmt := range []*sql.Stmt{s.insertSample, s.insertEntry} {
		if stmt != nil {
			stmt.Close()
		}
	}
	return nil
}
