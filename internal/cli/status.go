package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/runnerr0/retrace/internal/artifacts"
	"github.com/runnerr0/retrace/internal/config"
	"github.com/runnerr0/retrace/internal/narrate"
	"github.com/runnerr0/retrace/internal/storage"
)

// statusJSON is the JSON output structure for the status command.
type statusJSON struct {
	Version            string            `json:"version"`
	DatabasePath       string            `json:"database_path"`
	DatabaseSizeBytes  int64             `json:"database_size_bytes"`
	ImageBytes         int64             `json:"image_bytes"`
	TotalSamples       int64             `json:"total_samples"`
	TotalEntries       int64             `json:"total_entries"`
	TotalSummaries     int64             `json:"total_summaries"`
	OldestSample       string            `json:"oldest_sample,omitempty"`
	NewestSample       string            `json:"newest_sample,omitempty"`
	SampleDays         int               `json:"sample_retention_days"`
	EntryDays          int               `json:"entry_retention_days"`
	SummaryDays        int               `json:"summary_retention_days"`
	StorageBudgetBytes int64             `json:"storage_budget_bytes"`
	TopApps            []appDurationJSON `json:"top_apps"`
}

type appDurationJSON struct {
	AppName string `json:"app_name"`
	Seconds int64  `json:"seconds"`
}

// Execute implements the go-flags Commander interface for StatusCommand.
func (c *StatusCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}

	store, db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	defer store.Close()

	return c.executeWithStore(store, cfg)
}

// executeWithStore runs status against a provided store (for testing).
func (c *StatusCommand) executeWithStore(store storage.Store, cfg *config.Config) error {
	ctx := context.Background()

	stats, err := store.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	dbPath, _ := cfg.DatabasePath()
	dbSize, err := store.DatabaseSize(ctx)
	if err != nil {
		return fmt.Errorf("database size: %w", err)
	}

	var imageBytes int64
	if imgDir, err := cfg.ImagePath(); err == nil {
		if imgStore, err := artifacts.NewStore(imgDir); err == nil {
			imageBytes, _ = imgStore.TotalBytes()
		}
	}

	if c.globals != nil && c.globals.JSON {
		return c.printJSON(stats, cfg, dbPath, dbSize, imageBytes)
	}
	return c.printHuman(stats, cfg, dbPath, dbSize, imageBytes)
}

func (c *StatusCommand) printHuman(stats *storage.Stats, cfg *config.Config, dbPath string, dbSize, imageBytes int64) error {
	fmt.Println("Retrace Status")
	fmt.Println("==============")
	fmt.Printf("Version:       %s\n", c.version)
	fmt.Printf("Database:      %s (%s)\n", dbPath, formatBytes(dbSize))
	fmt.Printf("Images:        %s\n", formatBytes(imageBytes))
	fmt.Printf("Samples:       %s\n", formatNumber(stats.TotalSamples))
	fmt.Printf("Entries:       %s\n", formatNumber(stats.TotalEntries))
	fmt.Printf("Summaries:     %s\n", formatNumber(stats.TotalSummaries))

	if stats.TotalSamples > 0 {
		fmt.Printf("Oldest:        %s\n", stats.OldestSample.Local().Format("2006-01-02"))
		fmt.Printf("Newest:        %s\n", stats.NewestSample.Local().Format("2006-01-02"))
	}

	fmt.Printf("Retention:     samples %dd, entries %dd, summaries %dd\n",
		cfg.Retention.SampleDays, cfg.Retention.EntryDays, cfg.Retention.SummaryDays)
	if cfg.Retention.StorageBudgetBytes > 0 {
		fmt.Printf("Budget:        %s\n", formatBytes(cfg.Retention.StorageBudgetBytes))
	} else {
		fmt.Println("Budget:        unlimited")
	}

	if len(stats.TopApps) > 0 {
		fmt.Println()
		fmt.Println("Top Apps:")
		for _, a := range stats.TopApps {
			fmt.Printf("  %-20s %s\n", a.AppName, narrate.FormatSeconds(a.Seconds))
		}
	}

	return nil
}

func (c *StatusCommand) printJSON(stats *storage.Stats, cfg *config.Config, dbPath string, dbSize, imageBytes int64) error {
	out := statusJSON{
		Version:            c.version,
		DatabasePath:       dbPath,
		DatabaseSizeBytes:  dbSize,
		ImageBytes:         imageBytes,
		TotalSamples:       stats.TotalSamples,
		TotalEntries:       stats.TotalEntries,
		TotalSummaries:     stats.TotalSummaries,
		SampleDays:         cfg.Retention.SampleDays,
		EntryDays:          cfg.Retention.EntryDays,
		SummaryDays:        cfg.Retention.SummaryDays,
		StorageBudgetBytes: cfg.Retention.StorageBudgetBytes,
		TopApps:            make([]appDurationJSON, len(stats.TopApps)),
	}

	if stats.TotalSamples > 0 {
		out.OldestSample = stats.OldestSample.UTC().Format(time.RFC3339)
		out.NewestSample = stats.NewestSample.UTC().Format(time.RFC3339)
	}
	for i, a := range stats.TopApps {
		out.TopApps[i] = appDurationJSON{AppName: a.AppName, Seconds: a.Seconds}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
