package storage

import "time"

// RawSample is one point-in-time capture of the frontmost window. Rows are
// immutable once written: they are only ever deleted by retention, never
// updated.
type RawSample struct {
	ID            string
	Timestamp     time.Time
	AppName       string
	AppID         string
	WindowTitle   string
	PageURL       string
	ImagePath     string
	OCRText       string
	OCRConfidence float64
}

// ActivityEntry is a derived, narrated record covering a contiguous run of
// same-app raw samples.
type ActivityEntry struct {
	ID           string
	Timestamp    time.Time
	Day          string // YYYY-MM-DD, local time
	AppName      string
	Icon         string
	Title        string
	Summary      string
	Category     string
	DurationSecs int64
}

// DailySummary is the single aggregate narrative + metrics row for one
// calendar day. Uniqueness on Day is enforced by upsert.
type DailySummary struct {
	ID                int64
	Day               string // YYYY-MM-DD, local time
	TotalSecs         int64
	Narrative         string
	ActivityCount     int
	ProductivityScore float64
}

// AppUsage accumulates per-day, per-app screen time. Duration only ever
// grows via accumulation.
type AppUsage struct {
	ID           int64
	Day          string
	AppName      string
	Icon         string
	Category     string
	DurationSecs int64
}

// SearchQuery defines filters for full-text search.
type SearchQuery struct {
	Query  string
	App    string
	Since  time.Time
	Until  time.Time
	Limit  int
	Offset int
}

// Stats holds aggregate statistics about the database.
type Stats struct {
	TotalSamples   int64
	TotalEntries   int64
	TotalSummaries int64
	OldestSample   time.Time
	NewestSample   time.Time
	TopApps        []AppDuration
}

// AppDuration pairs an app name with summed screen time in seconds.
type AppDuration struct {
	AppName string
	Seconds int64
}

// CategoryDuration pairs a category with summed screen time in seconds.
type CategoryDuration struct {
	Category string
	Seconds  int64
}

// DayTotal pairs a day (YYYY-MM-DD) with its total screen time in seconds.
type DayTotal struct {
	Day     string
	Seconds int64
}

// DayKey formats a time as the local-time day string used by the day-keyed
// tables.
func DayKey(t time.Time) string {
	return t.Local().Format("2006-01-02")
}

// StartOfDay returns local midnight for t.
func StartOfDay(t time.Time) time.Time {
	lt := t.Local()
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, lt.Location())
}
