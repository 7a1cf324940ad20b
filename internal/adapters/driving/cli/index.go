package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vaultika/vaultika-cli/internal/core/domain"
	"github.com/vaultika/vaultika-cli/internal/core/services"
)

var indexFull bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build or update the vault index",
	Long: `Reconciles the index against the vault. Only notes added or modified
since the last run are re-embedded; notes deleted from the vault are
removed from the index. Use --full to discard the index and rebuild
everything from scratch.`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&indexFull, "full", false, "discard the index and rebuild from scratch")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	progress := func(event domain.ProgressEvent) {
		cmd.Printf("\rEmbedding... %d/%d  %s\033[K", event.Completed, event.Total, event.Path)
	}

	a, err := newApp(services.WithProgress(progress))
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()

	var report *domain.IndexReport
	if indexFull {
		cmd.Println("Rebuilding index from scratch...")
		report, err = a.indexer.FullRebuild(ctx)
	} else {
		cmd.Println("Updating index...")
		report, err = a.indexer.BuildOrUpdate(ctx)
	}
	if err != nil {
		return fmt.Errorf("index failed: %w", err)
	}

	cmd.Print("\r\033[K")
	cmd.Printf("Indexed %d, unchanged %d, removed %d in %s\n",
		report.Indexed, report.Unchanged, report.Deleted, report.Duration.Round(time.Millisecond))

	if len(report.Failures) > 0 {
		cmd.Printf("\n%d notes failed:\n", len(report.Failures))
		for _, failure := range report.Failures {
			cmd.Printf("  %s: %s\n", failure.Path, failure.Reason)
		}
	}
	return nil
}
