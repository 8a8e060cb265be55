package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Watch     *WatchCommand
	Status    *StatusCommand
	Search    *SearchCommand
	Today     *TodayCommand
	Aggregate *AggregateCommand
	Prune     *PruneCommand
	Purge     *PurgeCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "retrace"
	parser.LongDescription = "Privacy-first local screen-time journal: capture, narrate, search, and forget on schedule."

	cmds := &commands{
		Watch:     &WatchCommand{globals: &globals, version: version},
		Status:    &StatusCommand{globals: &globals, version: version},
		Search:    &SearchCommand{globals: &globals, version: version},
		Today:     &TodayCommand{globals: &globals, version: version},
		Aggregate: &AggregateCommand{globals: &globals, version: version},
		Prune:     &PruneCommand{globals: &globals, version: version},
		Purge:     &PurgeCommand{globals: &globals, version: version},
	}

	parser.AddCommand("watch", "Run the capture and aggregation loops", "Run the capture scheduler and aggregation pipeline until interrupted.", cmds.Watch)
	parser.AddCommand("status", "Show capture health and statistics", "Show database statistics, storage usage, and retention configuration.", cmds.Status)
	parser.AddCommand("search", "Search captured activity", "Full-text search over samples, entries, or daily narratives.", cmds.Search)
	parser.AddCommand("today", "Print today's narrative", "Print the daily narrative, top apps, and category breakdown for a day.", cmds.Today)
	parser.AddCommand("aggregate", "Run one aggregation pass now", "Turn pending raw samples into entries, usage, and the day's summary.", cmds.Aggregate)
	parser.AddCommand("prune", "Apply retention and the storage budget", "Delete records past their retention windows and enforce the storage budget.", cmds.Prune)
	parser.AddCommand("purge", "Delete ALL retrace data", "Delete ALL retrace data. Destructive operation with safety prompt.", cmds.Purge)

	return parser, &globals, cmds
}

// Run is the main entry point for the retrace CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the
// matched subcommand.
func RunWithArgs(version string, args []string) error {
	// Handle --version before parser (go-flags requires a subcommand, but
	// --version is valid without one).
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("retrace %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}
