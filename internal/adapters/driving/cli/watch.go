package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vaultika/vaultika-cli/internal/core/domain"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the index in sync with the vault",
	Long: `Watches the vault for changes and re-indexes modified notes as they
are saved. Runs until interrupted.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()

	cmd.Println("Updating index...")
	if err := reportUpdate(ctx, cmd, a); err != nil {
		return err
	}

	changes, err := a.vault.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}

	cmd.Printf("Watching %s for changes. Press Ctrl-C to stop.\n", a.vault.Root())
	for {
		select {
		case <-ctx.Done():
			cmd.Println("\nStopped.")
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			if err := reportUpdate(ctx, cmd, a); err != nil {
				if errors.Is(err, context.Canceled) {
					continue
				}
				cmd.PrintErrf("update failed: %v\n", err)
			}
		}
	}
}

// reportUpdate runs an incremental update and prints a one-line summary
// when anything changed.
func reportUpdate(ctx context.Context, cmd *cobra.Command, a *app) error {
	report, err := a.indexer.BuildOrUpdate(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrRebuildInProgress) {
			return nil
		}
		return err
	}
	if report.Indexed > 0 || report.Deleted > 0 {
		cmd.Printf("[%s] indexed %d, removed %d\n",
			time.Now().Format("15:04:05"), report.Indexed, report.Deleted)
	}
	for _, failure := range report.Failures {
		cmd.PrintErrf("  %s: %s\n", failure.Path, failure.Reason)
	}
	return nil
}
