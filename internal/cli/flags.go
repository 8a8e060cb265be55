package cli

import "github.com/runnerr0/retrace/internal/storage"

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable verbose output"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// WatchCommand runs the capture scheduler and aggregation pipeline.
type WatchCommand struct {
	Interval string `long:"interval" description:"Override sampling interval (e.g., 30s, 1m)"`
	NoOCR    bool   `long:"no-ocr" description:"Disable text extraction for this run"`

	globals *GlobalFlags
	version string
}

// StatusCommand shows database statistics and retention configuration.
type StatusCommand struct {
	globals *GlobalFlags
	version string
}

// SearchCommand runs a full-text search over a record kind.
type SearchCommand struct {
	Kind   string `long:"kind" description:"Record kind: sample | entry | summary" default:"entry" choice:"sample" choice:"entry" choice:"summary"`
	Since  string `long:"since" description:"Only records newer than duration (e.g., 7d, 24h)" default:"30d"`
	Until  string `long:"until" description:"Only records older than duration"`
	App    string `long:"app" description:"Filter by app name"`
	Limit  int    `long:"limit" description:"Maximum results" default:"10"`
	Offset int    `long:"offset" description:"Skip first N results" default:"0"`

	globals *GlobalFlags
	version string
	store   storage.Store // injectable for testing; nil means open default store
}

// TodayCommand prints a day's narrative and breakdowns.
type TodayCommand struct {
	Day string `long:"day" description:"Day to print (YYYY-MM-DD, default today)"`

	globals *GlobalFlags
	version string
	store   storage.Store
}

// AggregateCommand runs one aggregation pass immediately.
type AggregateCommand struct {
	globals *GlobalFlags
	version string
}

// PruneCommand applies retention windows and the storage budget.
type PruneCommand struct {
	OlderThan string `long:"older-than" description:"Override the raw-sample retention window (e.g., 7d)"`
	DryRun    bool   `long:"dry-run" description:"Show what would be deleted without deleting"`

	globals *GlobalFlags
	version string
	store   storage.Store
}

// PurgeCommand deletes all stored data after a safety confirmation.
type PurgeCommand struct {
	All   bool `long:"all" description:"Required flag to confirm purge intent"`
	Force bool `long:"force" description:"Skip safety confirmation prompt"`

	globals *GlobalFlags
	version string
	store   storage.Store
}
