package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/runnerr0/retrace/internal/storage"
)

// Execute implements the go-flags Commander interface for PurgeCommand.
func (c *PurgeCommand) Execute(args []string) error {
	if !c.All {
		return fmt.Errorf("purge requires --all to confirm you want to delete everything")
	}

	if !c.Force {
		fmt.Print("This will permanently delete ALL captured data. Type PURGE to continue: ")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read confirmation: %w", err)
		}
		if strings.TrimSpace(line) != "PURGE" {
			fmt.Println("Aborted.")
			return nil
		}
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

	return c.executeWithStore(store)
}

func (c *PurgeCommand) executeWithStore(store storage.Store) error {
	ctx := context.Background()

	if err := store.PurgeAll(ctx); err != nil {
		return fmt.Errorf("purge: %w", err)
	}
	if err := store.Vacuum(ctx); err != nil {
		return fmt.Errorf("vacuum after purge: %w", err)
	}

	fmt.Println("All data purged.")
	return nil
}
