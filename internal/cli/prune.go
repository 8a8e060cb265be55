package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/runnerr0/retrace/internal/artifacts"
	"github.com/runnerr0/retrace/internal/config"
	"github.com/runnerr0/retrace/internal/retention"
	"github.com/runnerr0/retrace/internal/storage"
)

// Execute implements the go-flags Commander interface for PruneCommand.
func (c *PruneCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}

	store := c.store
	if store == nil {
		s, db, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		defer s.Close()
		store = s
	}

	imgDir, err := cfg.ImagePath()
	if err != nil {
		return err
	}
	images, err := artifacts.NewStore(imgDir)
	if err != nil {
		return fmt.Errorf("open image store: %w", err)
	}

	return c.executeWithStore(store, images, cfg)
}

func (c *PruneCommand) executeWithStore(store storage.Store, images *artifacts.Store, cfg *config.Config) error {
	ctx := context.Background()

	sampleDays := cfg.Retention.SampleDays
	if c.OlderThan != "" {
		d, err := parseDuration(c.OlderThan)
		if err != nil {
			return fmt.Errorf("invalid --older-than: %w", err)
		}
		sampleDays = int(d / (24 * time.Hour))
		if sampleDays < 1 {
			sampleDays = 1
		}
	}

	if c.DryRun {
		return c.dryRun(ctx, store, cfg, sampleDays)
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)
	if c.globals == nil || !c.globals.Verbose {
		logger.SetOutput(io.Discard)
	}

	svc := retention.New(store, images, retention.Options{
		Windows: retention.Windows{
			SampleDays:  sampleDays,
			EntryDays:   cfg.Retention.EntryDays,
			SummaryDays: cfg.Retention.SummaryDays,
			UsageDays:   cfg.Retention.UsageDays,
		},
		BudgetBytes:   cfg.Retention.StorageBudgetBytes,
		EvictStepDays: cfg.Retention.EvictStepDays,
		Logger:        logger,
	})

	report := svc.ApplyRetention(ctx)
	fmt.Printf("Deleted %s samples, %s entries, %s summaries, %s usage rows, %d images\n",
		formatNumber(report.SamplesDeleted), formatNumber(report.EntriesDeleted),
		formatNumber(report.SummariesDeleted), formatNumber(report.UsageDeleted),
		report.ImagesDeleted)

	if !report.Complete() {
		for _, f := range report.Failures {
			fmt.Fprintf(os.Stderr, "prune incomplete: %s\n", f)
		}
	}

	freed, err := svc.EnforceStorageLimit(ctx)
	if err != nil {
		return fmt.Errorf("enforce storage budget: %w", err)
	}
	if freed > 0 {
		fmt.Printf("Storage budget enforcement freed %s\n", formatBytes(freed))
	}

	if err := store.Vacuum(ctx); err != nil {
		return fmt.Errorf("vacuum: %w", err)
	}
	return nil
}

func (c *PruneCommand) dryRun(ctx context.Context, store storage.Store, cfg *config.Config, sampleDays int) error {
	now := time.Now()
	sampleCutoff := now.AddDate(0, 0, -sampleDays)
	entryCutoff := now.AddDate(0, 0, -cfg.Retention.EntryDays)

	samples, err := store.CountSamplesBefore(ctx, sampleCutoff)
	if err != nil {
		return fmt.Errorf("count samples: %w", err)
	}
	entries, err := store.CountEntriesBefore(ctx, entryCutoff)
	if err != nil {
		return fmt.Errorf("count entries: %w", err)
	}

	fmt.Printf("Would delete %s samples older than %s\n", formatNumber(samples), sampleCutoff.Format("2006-01-02"))
	fmt.Printf("Would delete %s entries older than %s\n", formatNumber(entries), entryCutoff.Format("2006-01-02"))
	return nil
}
