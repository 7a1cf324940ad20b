package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index statistics",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output statistics as JSON")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	stats, err := a.indexer.Stats(ctx)
	if err != nil {
		return fmt.Errorf("stats failed: %w", err)
	}

	if statsJSON {
		return outputJSON(cmd, stats)
	}

	cmd.Printf("Vault:      %s\n", a.vault.Root())
	cmd.Printf("Notes:      %d\n", stats.Documents)
	cmd.Printf("Chunks:     %d\n", stats.Chunks)
	cmd.Printf("Words:      %d\n", stats.Words)
	if stats.ModelID != "" {
		cmd.Printf("Model:      %s (%d dimensions)\n", stats.ModelID, stats.Dimensions)
	}
	return nil
}
