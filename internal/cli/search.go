package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/runnerr0/retrace/internal/narrate"
	"github.com/runnerr0/retrace/internal/storage"
)

// Execute implements the go-flags Commander interface for SearchCommand.
// Positional args form the search query.
func (c *SearchCommand) Execute(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("search requires a query, e.g.: retrace search invoice")
	}

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

	return c.executeWithStore(store, strings.Join(args, " "))
}

func (c *SearchCommand) executeWithStore(store storage.Store, query string) error {
	ctx := context.Background()

	q := storage.SearchQuery{
		Query:  query,
		App:    c.App,
		Limit:  c.Limit,
		Offset: c.Offset,
	}

	now := time.Now()
	if c.Since != "" {
		d, err := parseDuration(c.Since)
		if err != nil {
			return fmt.Errorf("invalid --since: %w", err)
		}
		q.Since = now.Add(-d)
	}
	if c.Until != "" {
		d, err := parseDuration(c.Until)
		if err != nil {
			return fmt.Errorf("invalid --until: %w", err)
		}
		q.Until = now.Add(-d)
	}

	switch c.Kind {
	case "sample":
		results, err := store.SearchSamples(ctx, q)
		if err != nil {
			return fmt.Errorf("search samples: %w", err)
		}
		return c.printSamples(results)
	case "summary":
		results, err := store.SearchSummaries(ctx, q)
		if err != nil {
			return fmt.Errorf("search summaries: %w", err)
		}
		return c.printSummaries(results)
	default:
		results, err := store.SearchEntries(ctx, q)
		if err != nil {
			return fmt.Errorf("search entries: %w", err)
		}
		return c.printEntries(results)
	}
}

func (c *SearchCommand) printEntries(entries []storage.ActivityEntry) error {
	if c.globals != nil && c.globals.JSON {
		return printJSON(entries)
	}

	if len(entries) == 0 {
		fmt.Println("No matching entries.")
		return nil
	}

	for _, e := range entries {
		fmt.Printf("%s  [%s] %s (%s, %s)\n",
			e.Timestamp.Local().Format("2006-01-02 15:04"),
			e.Category, e.Title, e.AppName, narrate.FormatSeconds(e.DurationSecs))
		if e.Summary != "" {
			fmt.Printf("    %s\n", e.Summary)
		}
	}
	fmt.Printf("\n%d result(s)\n", len(entries))
	return nil
}

func (c *SearchCommand) printSamples(samples []storage.RawSample) error {
	if c.globals != nil && c.globals.JSON {
		return printJSON(samples)
	}

	if len(samples) == 0 {
		fmt.Println("No matching samples.")
		return nil
	}

	for _, s := range samples {
		fmt.Printf("%s  %s", s.Timestamp.Local().Format("2006-01-02 15:04:05"), s.AppName)
		if s.WindowTitle != "" {
			fmt.Printf("  %s", s.WindowTitle)
		}
		fmt.Println()
		if s.OCRText != "" {
			fmt.Printf("    %s\n", truncate(s.OCRText, 120))
		}
	}
	fmt.Printf("\n%d result(s)\n", len(samples))
	return nil
}

func (c *SearchCommand) printSummaries(summaries []storage.DailySummary) error {
	if c.globals != nil && c.globals.JSON {
		return printJSON(summaries)
	}

	if len(summaries) == 0 {
		fmt.Println("No matching summaries.")
		return nil
	}

	for _, s := range summaries {
		fmt.Printf("%s  (%s, %d activities, productivity %.2f)\n",
			s.Day, narrate.FormatSeconds(s.TotalSecs), s.ActivityCount, s.ProductivityScore)
		fmt.Printf("    %s\n", s.Narrative)
	}
	fmt.Printf("\n%d result(s)\n", len(summaries))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
