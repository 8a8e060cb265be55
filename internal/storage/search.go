package storage

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// SearchSamples runs full-text search over sample app names, window titles,
// and extracted text. An empty or whitespace-only query returns zero results
// rather than the full table.
func (s *SQLiteStore) SearchSamples(ctx context.Context, q SearchQuery) ([]RawSample, error) {
	match := ftsQuery(q.Query)
	if match == "" {
		return []RawSample{}, nil
	}
	if q.Limit <= 0 {
		q.Limit = 20
	}

	clauses := []string{"samples_fts MATCH ?"}
	args := []interface{}{match}

	if q.App != "" {
		clauses = append(clauses, "r.app_name = ?")
		args = append(args, q.App)
	}
	if !q.Since.IsZero() {
		clauses = append(clauses, "r.ts >= ?")
		args = append(args, q.Since.UTC().Format(time.RFC3339Nano))
	}
	if !q.Until.IsZero() {
		clauses = append(clauses, "r.ts <= ?")
		args = append(args, q.Until.UTC().Format(time.RFC3339Nano))
	}

	query := `
		SELECT r.id, r.ts, r.app_name, r.app_id, r.window_title, r.page_url,
		       r.image_path, r.ocr_text, r.ocr_confidence
		FROM samples_fts f
		JOIN raw_samples r ON r.id = f.sample_id
		WHERE ` + strings.Join(clauses, " AND ") + `
		ORDER BY rank LIMIT ? OFFSET ?`
	args = append(args, q.Limit, q.Offset)

	return s.scanSamples(ctx, query, args...)
}

// SearchEntries runs full-text search over entry titles and summaries.
func (s *SQLiteStore) SearchEntries(ctx context.Context, q SearchQuery) ([]ActivityEntry, error) {
	match := ftsQuery(q.Query)
	if match == "" {
		return []ActivityEntry{}, nil
	}
	if q.Limit <= 0 {
		q.Limit = 20
	}

	clauses := []string{"entries_fts MATCH ?"}
	args := []interface{}{match}

	if q.App != "" {
		clauses = append(clauses, "e.app_name = ?")
		args = append(args, q.App)
	}
	if !q.Since.IsZero() {
		clauses = append(clauses, "e.ts >= ?")
		args = append(args, q.Since.UTC().Format(time.RFC3339Nano))
	}
	if !q.Until.IsZero() {
		clauses = append(clauses, "e.ts <= ?")
		args = append(args, q.Until.UTC().Format(time.RFC3339Nano))
	}

	query := `
		SELECT e.id, e.ts, e.day, e.app_name, e.icon, e.title, e.summary,
		       e.category, e.duration_secs
		FROM entries_fts f
		JOIN activity_entries e ON e.id = f.entry_id
		WHERE ` + strings.Join(clauses, " AND ") + `
		ORDER BY rank LIMIT ? OFFSET ?`
	args = append(args, q.Limit, q.Offset)

	return s.scanEntries(ctx, query, args...)
}

// SearchSummaries runs full-text search over daily narratives.
func (s *SQLiteStore) SearchSummaries(ctx context.Context, q SearchQuery) ([]DailySummary, error) {
	match := ftsQuery(q.Query)
	if match == "" {
		return []DailySummary{}, nil
	}
	if q.Limit <= 0 {
		q.Limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id, d.day, d.total_secs, d.narrative, d.activity_count, d.productivity
		FROM summaries_fts f
		JOIN daily_summaries d ON d.day = f.day
		WHERE summaries_fts MATCH ?
		ORDER BY rank LIMIT ? OFFSET ?`,
		match, q.Limit, q.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("search summaries: %w", err)
	}
	defer rows.Close()

	summaries := []DailySummary{}
	for rows.Next() {
		var d DailySummary
		if err := rows.Scan(&d.ID, &d.Day, &d.TotalSecs, &d.Narrative, &d.ActivityCount, &d.ProductivityScore); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		summaries = append(summaries, d)
	}

	return summaries, rows.Err()
}
