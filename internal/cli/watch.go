package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/runnerr0/retrace/internal/artifacts"
	"github.com/runnerr0/retrace/internal/capture"
	"github.com/runnerr0/retrace/internal/config"
	"github.com/runnerr0/retrace/internal/pipeline"
	"github.com/runnerr0/retrace/internal/retention"
	"github.com/runnerr0/retrace/internal/storage"
)

// retentionSweepInterval is how often the watch loop applies retention
// windows and the storage budget in the background.
const retentionSweepInterval = 6 * time.Hour

// Execute implements the go-flags Commander interface for WatchCommand.
func (c *WatchCommand) Execute(args []string) error {
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

	logger := log.New(os.Stderr, "retrace ", log.LstdFlags)
	if c.globals == nil || !c.globals.Verbose {
		logger.SetOutput(io.Discard)
	}

	interval, err := captureInterval(cfg, c.Interval)
	if err != nil {
		return err
	}

	ocrEnabled := cfg.Capture.OCREnabled && !c.NoOCR
	var recognizer capture.TextRecognizer
	if ocrEnabled && len(cfg.Capture.OCRCommand) > 0 {
		recognizer = capture.ExecTextRecognizer{Command: cfg.Capture.OCRCommand}
	}

	agg := pipeline.New(store, images, pipeline.Options{
		Interval:     time.Duration(cfg.Aggregation.IntervalSeconds) * time.Second,
		Debounce:     time.Duration(cfg.Aggregation.DebounceSeconds) * time.Second,
		MinSamples:   cfg.Aggregation.MinSamples,
		NominalTick:  interval,
		DeleteImages: cfg.Aggregation.DeleteImagesAfter,
		Logger:       logger,
	})

	sched := capture.NewScheduler(
		capture.SystemScreenSource{},
		capture.SystemWindowReader{},
		recognizer,
		&capture.SystemPermissionGate{},
		store,
		images,
		capture.Options{
			Interval:   interval,
			Excluded:   cfg.Capture.ExcludedApps,
			OCREnabled: recognizer != nil,
			Logger:     logger,
		},
	)
	sched.SetOnSample(func(sample *storage.RawSample, imagePath string) {
		agg.NotifySampleWritten()
	})

	retSvc := retention.New(store, images, retention.Options{
		Windows: retention.Windows{
			SampleDays:  cfg.Retention.SampleDays,
			EntryDays:   cfg.Retention.EntryDays,
			SummaryDays: cfg.Retention.SummaryDays,
			UsageDays:   cfg.Retention.UsageDays,
		},
		BudgetBytes:   cfg.Retention.StorageBudgetBytes,
		EvictStepDays: cfg.Retention.EvictStepDays,
		Logger:        logger,
	})

	if err := sched.Start(); err != nil {
		return fmt.Errorf("start capture: %w", err)
	}
	agg.Start()

	stop := make(chan struct{})
	go runRetentionSweeps(retSvc, logger, stop)

	fmt.Printf("Watching every %s. Press Ctrl-C to stop.\n", interval)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	fmt.Println("Stopping...")
	close(stop)
	sched.Stop()
	agg.Stop()

	// One final pass so the day's summary reflects everything captured.
	if err := agg.RunNow(context.Background()); err != nil {
		logger.Printf("final aggregation: %v", err)
	}

	return nil
}

// captureInterval resolves the sampling interval, applying the same bounds
// to a command-line override that config.Load applies to the file value.
func captureInterval(cfg *config.Config, override string) (time.Duration, error) {
	if override == "" {
		return time.Duration(cfg.Capture.IntervalSeconds) * time.Second, nil
	}
	d, err := parseDuration(override)
	if err != nil {
		return 0, fmt.Errorf("invalid --interval: %w", err)
	}
	if d < config.MinIntervalSeconds*time.Second {
		d = config.MinIntervalSeconds * time.Second
	}
	if d > config.MaxIntervalSeconds*time.Second {
		d = config.MaxIntervalSeconds * time.Second
	}
	return d, nil
}

func runRetentionSweeps(svc *retention.Service, logger *log.Logger, stop <-chan struct{}) {
	ticker := time.NewTicker(retentionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			report := svc.ApplyRetention(context.Background())
			if !report.Complete() {
				for _, f := range report.Failures {
					logger.Printf("retention: %s", f)
				}
			}
			if _, err := svc.EnforceStorageLimit(context.Background()); err != nil {
				logger.Printf("storage budget: %v", err)
			}
		}
	}
}
