package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/runnerr0/retrace/internal/narrate"
	"github.com/runnerr0/retrace/internal/storage"
)

// todayJSON is the JSON output structure for the today command.
type todayJSON struct {
	Day               string             `json:"day"`
	Narrative         string             `json:"narrative"`
	TotalSecs         int64              `json:"total_secs"`
	ActivityCount     int                `json:"activity_count"`
	ProductivityScore float64            `json:"productivity_score"`
	Apps              []appUsageJSON     `json:"apps"`
	Categories        []categoryJSON     `json:"categories"`
	Entries           []activityItemJSON `json:"entries"`
}

type appUsageJSON struct {
	AppName  string `json:"app_name"`
	Icon     string `json:"icon"`
	Category string `json:"category"`
	Seconds  int64  `json:"seconds"`
}

type categoryJSON struct {
	Category string `json:"category"`
	Seconds  int64  `json:"seconds"`
}

type activityItemJSON struct {
	Timestamp string `json:"timestamp"`
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	Category  string `json:"category"`
	AppName   string `json:"app_name"`
	Seconds   int64  `json:"seconds"`
}

// Execute implements the go-flags Commander interface for TodayCommand.
func (c *TodayCommand) Execute(args []string) error {
	store := c.store
	if store == nil {
		cfg, err := loadConfig(c.globals)
		if err != nil {
			return err
		}
		s, db, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		defer s.Close()
		store = s
	}

	day := c.Day
	if day == "" {
		day = storage.DayKey(time.Now())
	} else if _, err := time.Parse("2006-01-02", day); err != nil {
		return fmt.Errorf("invalid --day %q: want YYYY-MM-DD", day)
	}

	return c.executeWithStore(store, day)
}

func (c *TodayCommand) executeWithStore(store storage.Store, day string) error {
	ctx := context.Background()

	summary, err := store.SummaryForDay(ctx, day)
	if err != nil {
		return fmt.Errorf("load summary: %w", err)
	}
	entries, err := store.EntriesForDay(ctx, day)
	if err != nil {
		return fmt.Errorf("load entries: %w", err)
	}
	usage, err := store.UsageForDay(ctx, day)
	if err != nil {
		return fmt.Errorf("load usage: %w", err)
	}
	categories, err := store.CategoryBreakdown(ctx, day, day)
	if err != nil {
		return fmt.Errorf("load categories: %w", err)
	}

	if c.globals != nil && c.globals.JSON {
		return c.printDayJSON(day, summary, entries, usage, categories)
	}
	return c.printDay(day, summary, entries, usage, categories)
}

func (c *TodayCommand) printDay(day string, summary *storage.DailySummary, entries []storage.ActivityEntry, usage []storage.AppUsage, categories []storage.CategoryDuration) error {
	fmt.Printf("Retrace for %s\n", day)
	fmt.Println()

	if summary == nil {
		fmt.Println("No activity recorded for this day.")
		return nil
	}

	fmt.Println(summary.Narrative)
	fmt.Println()

	if len(usage) > 0 {
		fmt.Println("Apps:")
		for _, u := range usage {
			fmt.Printf("  %-20s %-14s %s\n", u.AppName, u.Category, narrate.FormatSeconds(u.DurationSecs))
		}
		fmt.Println()
	}

	if len(categories) > 0 {
		fmt.Println("Categories:")
		for _, cat := range categories {
			fmt.Printf("  %-14s %s\n", cat.Category, narrate.FormatSeconds(cat.Seconds))
		}
		fmt.Println()
	}

	if len(entries) > 0 {
		fmt.Println("Timeline:")
		for _, e := range entries {
			fmt.Printf("  %s  %s (%s)\n", e.Timestamp.Local().Format("15:04"), e.Title, narrate.FormatSeconds(e.DurationSecs))
		}
	}

	return nil
}

func (c *TodayCommand) printDayJSON(day string, summary *storage.DailySummary, entries []storage.ActivityEntry, usage []storage.AppUsage, categories []storage.CategoryDuration) error {
	out := todayJSON{
		Day:        day,
		Apps:       make([]appUsageJSON, len(usage)),
		Categories: make([]categoryJSON, len(categories)),
		Entries:    make([]activityItemJSON, len(entries)),
	}

	if summary != nil {
		out.Narrative = summary.Narrative
		out.TotalSecs = summary.TotalSecs
		out.ActivityCount = summary.ActivityCount
		out.ProductivityScore = summary.ProductivityScore
	}
	for i, u := range usage {
		out.Apps[i] = appUsageJSON{AppName: u.AppName, Icon: u.Icon, Category: u.Category, Seconds: u.DurationSecs}
	}
	for i, cat := range categories {
		out.Categories[i] = categoryJSON{Category: cat.Category, Seconds: cat.Seconds}
	}
	for i, e := range entries {
		out.Entries[i] = activityItemJSON{
			Timestamp: e.Timestamp.UTC().Format(time.RFC3339),
			Title:     e.Title,
			Summary:   e.Summary,
			Category:  e.Category,
			AppName:   e.AppName,
			Seconds:   e.DurationSecs,
		}
	}

	return printJSON(out)
}
