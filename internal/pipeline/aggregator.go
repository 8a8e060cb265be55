// Package pipeline turns raw samples into activity entries, usage rows, and
// the day's summary. It runs on its own interval, decoupled in time from
// capture, plus a debounced trigger after sample writes.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/runnerr0/retrace/internal/classify"
	"github.com/runnerr0/retrace/internal/narrate"
	"github.com/runnerr0/retrace/internal/storage"
)

// ImageRemover deletes capture image files. *artifacts.Store satisfies it.
type ImageRemover interface {
	Remove(path string) error
}

// Options configures an Aggregator.
type Options struct {
	Interval     time.Duration // periodic pass interval
	Debounce     time.Duration // quiet window after a sample write
	MinSamples   int           // minimum fetched samples before entries are created
	NominalTick  time.Duration // configured sampling interval, floors run durations
	DeleteImages bool          // delete source images once a run's entry is committed
	Logger       *log.Logger
}

// Aggregator owns the second, lower-frequency timer of the pipeline. Passes
// are serialized; the watermark only advances after a pass fully commits its
// runs, so an abandoned pass retries the same samples.
type Aggregator struct {
	store  storage.Store
	images ImageRemover
	opts   Options
	logger *log.Logger

	runMu sync.Mutex // serializes passes
	mu    sync.Mutex // guards watermark, debounce timer, stop channel

	watermark time.Time
	debounce  *time.Timer
	stop      chan struct{}
	wg        sync.WaitGroup
}

// New creates an Aggregator. The zero watermark means the first pass starts
// from the beginning of today.
func New(store storage.Store, images ImageRemover, opts Options) *Aggregator {
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Minute
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 10 * time.Second
	}
	if opts.MinSamples <= 0 {
		opts.MinSamples = 3
	}
	if opts.NominalTick <= 0 {
		opts.NominalTick = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Aggregator{
		store:  store,
		images: images,
		opts:   opts,
		logger: opts.Logger,
	}
}

// Start launches the periodic pass loop.
func (a *Aggregator) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stop != nil {
		return
	}
	stop := make(chan struct{})
	a.stop = stop

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ticker := time.NewTicker(a.opts.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if err := a.RunNow(context.Background()); err != nil {
					a.logger.Printf("aggregation pass: %v", err)
				}
			}
		}
	}()
}

// Stop invalidates the timer and any pending debounce. An in-flight pass
// finishes on its own.
func (a *Aggregator) Stop() {
	a.mu.Lock()
	if a.stop != nil {
		close(a.stop)
		a.stop = nil
	}
	if a.debounce != nil {
		a.debounce.Stop()
		a.debounce = nil
	}
	a.mu.Unlock()

	a.wg.Wait()
}

// NotifySampleWritten schedules a debounced pass: a burst of writes
// coalesces into one pass, since each new write cancels and reschedules the
// pending timer.
func (a *Aggregator) NotifySampleWritten() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.debounce != nil {
		a.debounce.Stop()
	}
	a.debounce = time.AfterFunc(a.opts.Debounce, func() {
		if err := a.RunNow(context.Background()); err != nil {
			a.logger.Printf("debounced aggregation pass: %v", err)
		}
	})
}

// RunNow executes one aggregation pass: group unprocessed samples into
// same-app runs, write one entry plus a usage accumulation per run, then
// regenerate today's summary from the full entry set regardless of whether
// anything new was created.
func (a *Aggregator) RunNow(ctx context.Context) error {
	a.runMu.Lock()
	defer a.runMu.Unlock()

	now := time.Now()
	today := storage.DayKey(now)

	a.mu.Lock()
	since := a.watermark
	a.mu.Unlock()
	if sod := storage.StartOfDay(now); sod.After(since) {
		since = sod
	}

	samples, err := a.store.SamplesSince(ctx, since)
	if err != nil {
		// Abandon this pass; the watermark is untouched so the next pass
		// retries the same range.
		return fmt.Errorf("fetch samples: %w", err)
	}

	if len(samples) >= a.opts.MinSamples {
		sortByTimeAsc(samples)

		for _, run := range groupRuns(samples) {
			if err := a.commitRun(ctx, run, today); err != nil {
				return err
			}
		}

		a.mu.Lock()
		a.watermark = now
		a.mu.Unlock()
	}

	return a.regenerateSummary(ctx, today)
}

// commitRun writes the run's entry, accumulates its usage row, and then
// (optionally, best-effort) deletes the run's source images.
func (a *Aggregator) commitRun(ctx context.Context, run []storage.RawSample, today string) error {
	rep := representative(run)
	cat := classify.Classify(rep.AppName, rep.AppID, rep.WindowTitle, rep.OCRText)
	dur := runDuration(run, a.opts.NominalTick)
	secs := int64(dur.Seconds())

	title := rep.WindowTitle
	if title == "" {
		title = rep.AppName
	}

	entry := &storage.ActivityEntry{
		Timestamp:    run[0].Timestamp,
		Day:          today,
		AppName:      rep.AppName,
		Icon:         cat.Icon(),
		Title:        title,
		Summary:      narrate.Activity(rep.AppName, rep.WindowTitle, rep.OCRText, cat, dur),
		Category:     cat.String(),
		DurationSecs: secs,
	}
	if err := a.store.InsertEntry(ctx, entry); err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}

	if err := a.store.AccumulateAppUsage(ctx, today, rep.AppName, cat.Icon(), cat.String(), secs); err != nil {
		return fmt.Errorf("accumulate usage: %w", err)
	}

	if a.opts.DeleteImages && a.images != nil {
		for _, s := range run {
			if s.ImagePath == "" {
				continue
			}
			if err := a.images.Remove(s.ImagePath); err != nil {
				a.logger.Printf("delete source image %s: %v", s.ImagePath, err)
			}
		}
	}

	return nil
}

// regenerateSummary recomputes the day's summary from a full re-read of its
// entries and usage. Summaries are never patched incrementally.
func (a *Aggregator) regenerateSummary(ctx context.Context, day string) error {
	entries, err := a.store.EntriesForDay(ctx, day)
	if err != nil {
		return fmt.Errorf("read entries: %w", err)
	}

	total, err := a.store.TotalDurationForDay(ctx, day)
	if err != nil {
		return fmt.Errorf("total duration: %w", err)
	}

	breakdown, err := a.store.CategoryBreakdown(ctx, day, day)
	if err != nil {
		return fmt.Errorf("category breakdown: %w", err)
	}

	topApps, err := a.store.TopApps(ctx, day, day, 3)
	if err != nil {
		return fmt.Errorf("top apps: %w", err)
	}

	score := classify.ProductivityScore(breakdown)

	return a.store.UpsertDailySummary(ctx, &storage.DailySummary{
		Day:               day,
		TotalSecs:         total,
		Narrative:         narrate.Day(entries, total, topApps, score),
		ActivityCount:     len(entries),
		ProductivityScore: score,
	})
}

func sortByTimeAsc(samples []storage.RawSample) {
	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].Timestamp.Before(samples[j].Timestamp)
	})
}

// groupRuns partitions time-ordered samples into maximal runs of
// consecutive samples sharing an app name.
func groupRuns(samples []storage.RawSample) [][]storage.RawSample {
	var runs [][]storage.RawSample
	var current []storage.RawSample

	for _, s := range samples {
		if len(current) > 0 && current[len(current)-1].AppName != s.AppName {
			runs = append(runs, current)
			current = nil
		}
		current = append(current, s)
	}
	if len(current) > 0 {
		runs = append(runs, current)
	}
	return runs
}

// representative picks the sample that drives classification and narration:
// the one with the longest extracted text, first seen winning ties.
func representative(run []storage.RawSample) storage.RawSample {
	rep := run[0]
	for _, s := range run[1:] {
		if len(s.OCRText) > len(rep.OCRText) {
			rep = s
		}
	}
	return rep
}

// runDuration is the elapsed span of the run, floored at count x the
// nominal tick so single-sample runs don't report near-zero time. The floor
// uses the interval configured at aggregation time, which can overstate
// duration if the sampling interval changed since capture; accepted as an
// approximation.
func runDuration(run []storage.RawSample, nominal time.Duration) time.Duration {
	elapsed := run[len(run)-1].Timestamp.Sub(run[0].Timestamp)
	floor := time.Duration(len(run)) * nominal
	if elapsed > floor {
		return elapsed
	}
	return floor
}
