package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/runnerr0/retrace/internal/artifacts"
	"github.com/runnerr0/retrace/internal/pipeline"
	"github.com/runnerr0/retrace/internal/storage"
)

// Execute implements the go-flags Commander interface for AggregateCommand.
func (c *AggregateCommand) Execute(args []string) error {
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

	imgDir, err := cfg.ImagePath()
	if err != nil {
		return err
	}
	images, err := artifacts.NewStore(imgDir)
	if err != nil {
		return fmt.Errorf("open image store: %w", err)
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)
	if c.globals == nil || !c.globals.Verbose {
		logger.SetOutput(io.Discard)
	}

	agg := pipeline.New(store, images, pipeline.Options{
		Interval:     time.Duration(cfg.Aggregation.IntervalSeconds) * time.Second,
		Debounce:     time.Duration(cfg.Aggregation.DebounceSeconds) * time.Second,
		MinSamples:   cfg.Aggregation.MinSamples,
		NominalTick:  time.Duration(cfg.Capture.IntervalSeconds) * time.Second,
		DeleteImages: cfg.Aggregation.DeleteImagesAfter,
		Logger:       logger,
	})

	if err := agg.RunNow(context.Background()); err != nil {
		return fmt.Errorf("aggregate: %w", err)
	}

	day := storage.DayKey(time.Now())
	entries, err := store.EntriesForDay(context.Background(), day)
	if err != nil {
		return err
	}
	fmt.Printf("Aggregation complete: %d entries for %s\n", len(entries), day)
	return nil
}
