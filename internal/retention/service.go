// Package retention enforces data lifetime and the total storage budget.
// It owns no timer; callers trigger it.
package retention

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/runnerr0/retrace/internal/storage"
)

// ArtifactStore is the slice of the image store retention needs: removal
// plus the byte count that joins the database size under one budget.
type ArtifactStore interface {
	Remove(path string) error
	TotalBytes() (int64, error)
}

// Windows holds the per-kind retention windows in days. Raw samples carry
// the shortest window, entries a medium one, summaries and usage the
// longest.
type Windows struct {
	SampleDays  int
	EntryDays   int
	SummaryDays int
	UsageDays   int
}

// Options configures a Service.
type Options struct {
	Windows       Windows
	BudgetBytes   int64 // 0 disables storage-limit enforcement
	EvictStepDays int   // fixed decrement for progressive eviction
	Logger        *log.Logger
}

// Report is the partial-success result of a retention run. Failed
// sub-operations are collected, not escalated; sibling deletions still run.
type Report struct {
	SamplesDeleted   int64
	EntriesDeleted   int64
	SummariesDeleted int64
	UsageDeleted     int64
	ImagesDeleted    int
	Failures         []string
}

// Complete reports whether every sub-operation succeeded.
func (r *Report) Complete() bool { return len(r.Failures) == 0 }

// Service deletes expired records and progressively evicts the oldest data
// until total storage (database + image artifacts) fits the budget.
type Service struct {
	store  storage.Store
	images ArtifactStore
	opts   Options
	logger *log.Logger

	now func() time.Time
}

// New creates a retention Service.
func New(store storage.Store, images ArtifactStore, opts Options) *Service {
	if opts.EvictStepDays <= 0 {
		opts.EvictStepDays = 5
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Service{
		store:  store,
		images: images,
		opts:   opts,
		logger: opts.Logger,
		now:    time.Now,
	}
}

// ApplyRetention deletes rows strictly older than each kind's cutoff and
// best-effort deletes the image artifacts of deleted samples. Failures are
// collected into the report rather than aborting the run.
func (s *Service) ApplyRetention(ctx context.Context) *Report {
	report := &Report{}
	now := s.now()

	if d := s.opts.Windows.SampleDays; d > 0 {
		cutoff := now.AddDate(0, 0, -d)
		n, paths, err := s.store.DeleteSamplesBefore(ctx, cutoff)
		if err != nil {
			report.Failures = append(report.Failures, fmt.Sprintf("delete samples: %v", err))
		} else {
			report.SamplesDeleted += n
			report.ImagesDeleted += s.removeImages(paths, report)
		}
	}

	if d := s.opts.Windows.EntryDays; d > 0 {
		n, err := s.store.DeleteEntriesBefore(ctx, now.AddDate(0, 0, -d))
		if err != nil {
			report.Failures = append(report.Failures, fmt.Sprintf("delete entries: %v", err))
		} else {
			report.EntriesDeleted += n
		}
	}

	if d := s.opts.Windows.SummaryDays; d > 0 {
		n, err := s.store.DeleteSummariesBefore(ctx, now.AddDate(0, 0, -d))
		if err != nil {
			report.Failures = append(report.Failures, fmt.Sprintf("delete summaries: %v", err))
		} else {
			report.SummariesDeleted += n
		}
	}

	if d := s.opts.Windows.UsageDays; d > 0 {
		n, err := s.store.DeleteUsageBefore(ctx, now.AddDate(0, 0, -d))
		if err != nil {
			report.Failures = append(report.Failures, fmt.Sprintf("delete usage: %v", err))
		} else {
			report.UsageDeleted += n
		}
	}

	return report
}

// EnforceStorageLimit shrinks a days-back counter in fixed decrements,
// deleting raw samples (and their images) older than the shrinking cutoff
// and re-measuring after each step, until usage fits the budget or the
// one-day floor is reached. If still over, the same pattern runs against
// entries, then summaries and usage. Returns bytes freed.
func (s *Service) EnforceStorageLimit(ctx context.Context) (int64, error) {
	if s.opts.BudgetBytes <= 0 {
		return 0, nil
	}

	initial, err := s.totalUsage(ctx)
	if err != nil {
		return 0, err
	}
	if initial <= s.opts.BudgetBytes {
		return 0, nil
	}

	usage := initial
	now := s.now()
	report := &Report{}

	evict := func(days int, del func(cutoff time.Time) error) (int, error) {
		for usage > s.opts.BudgetBytes && days > 1 {
			days -= s.opts.EvictStepDays
			if days < 1 {
				days = 1
			}
			if err := del(now.AddDate(0, 0, -days)); err != nil {
				return days, err
			}
			usage, err = s.remeasure(ctx)
			if err != nil {
				return days, err
			}
		}
		return days, nil
	}

	// Raw samples first: shortest window, heaviest rows.
	if _, err := evict(s.daysOrDefault(s.opts.Windows.SampleDays), func(cutoff time.Time) error {
		_, paths, err := s.store.DeleteSamplesBefore(ctx, cutoff)
		if err != nil {
			return err
		}
		s.removeImages(paths, report)
		return nil
	}); err != nil {
		return initial - usage, err
	}

	if usage > s.opts.BudgetBytes {
		if _, err := evict(s.daysOrDefault(s.opts.Windows.EntryDays), func(cutoff time.Time) error {
			_, err := s.store.DeleteEntriesBefore(ctx, cutoff)
			return err
		}); err != nil {
			return initial - usage, err
		}
	}

	if usage > s.opts.BudgetBytes {
		if _, err := evict(s.daysOrDefault(s.opts.Windows.SummaryDays), func(cutoff time.Time) error {
			if _, err := s.store.DeleteSummariesBefore(ctx, cutoff); err != nil {
				return err
			}
			_, err := s.store.DeleteUsageBefore(ctx, cutoff)
			return err
		}); err != nil {
			return initial - usage, err
		}
	}

	for _, f := range report.Failures {
		s.logger.Printf("storage eviction: %s", f)
	}

	return initial - usage, nil
}

func (s *Service) daysOrDefault(days int) int {
	if days <= 0 {
		return 30
	}
	return days
}

// remeasure compacts the database file, then measures again. Deleted pages
// only come off the file size after a rewrite, and this path is an explicit
// purge caller, where compaction is allowed.
func (s *Service) remeasure(ctx context.Context) (int64, error) {
	if err := s.store.Vacuum(ctx); err != nil {
		return 0, err
	}
	return s.totalUsage(ctx)
}

// totalUsage is database size plus externally-held image bytes.
func (s *Service) totalUsage(ctx context.Context) (int64, error) {
	dbSize, err := s.store.DatabaseSize(ctx)
	if err != nil {
		return 0, fmt.Errorf("database size: %w", err)
	}

	var imageBytes int64
	if s.images != nil {
		imageBytes, err = s.images.TotalBytes()
		if err != nil {
			return 0, fmt.Errorf("artifact size: %w", err)
		}
	}

	return dbSize + imageBytes, nil
}

// removeImages best-effort deletes the given artifact paths, appending
// failures to the report. Returns the number removed.
func (s *Service) removeImages(paths []string, report *Report) int {
	if s.images == nil {
		return 0
	}
	removed := 0
	for _, p := range paths {
		if err := s.images.Remove(p); err != nil {
			report.Failures = append(report.Failures, fmt.Sprintf("delete image %s: %v", p, err))
			continue
		}
		removed++
	}
	return removed
}
