package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	similarLimit int
	similarJSON  bool
)

var similarCmd = &cobra.Command{
	Use:   "similar [note]",
	Short: "Find notes similar to a note",
	Long: `Ranks other notes against the given note's aggregate embedding.
The note is identified by its path relative to the vault root.`,
	Args: cobra.ExactArgs(1),
	RunE: runSimilar,
}

func init() {
	similarCmd.Flags().IntVarP(&similarLimit, "limit", "n", 5, "maximum number of results")
	similarCmd.Flags().BoolVar(&similarJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(similarCmd)
}

func runSimilar(cmd *cobra.Command, args []string) error {
	path := args[0]

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	if err := a.open(ctx); err != nil {
		return err
	}

	matches, err := a.search.FindSimilar(ctx, path, similarLimit)
	if err != nil {
		return fmt.Errorf("similar failed: %w", err)
	}

	if similarJSON {
		return outputJSON(cmd, matches)
	}

	if len(matches) == 0 {
		cmd.Println("No similar notes found.")
		return nil
	}

	cmd.Printf("Notes similar to %s:\n\n", path)
	for i := range matches {
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, matches[i].Path, matches[i].Score)
		if matches[i].Preview != "" {
			cmd.Printf("      %s\n", snippetOf(matches[i].Preview, 160))
		}
		cmd.Println()
	}
	return nil
}
