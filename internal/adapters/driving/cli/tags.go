package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	tagsMax  int
	tagsJSON bool
)

var tagsCmd = &cobra.Command{
	Use:   "tags [note]",
	Short: "Suggest tags for a note",
	Long: `Ranks candidate tags for the given note, blending the vocabulary of
its nearest theme cluster with the note's own term frequencies.
The note is identified by its path relative to the vault root.`,
	Args: cobra.ExactArgs(1),
	RunE: runTags,
}

func init() {
	tagsCmd.Flags().IntVarP(&tagsMax, "max", "n", 5, "maximum number of suggestions")
	tagsCmd.Flags().BoolVar(&tagsJSON, "json", false, "output suggestions as JSON")
	rootCmd.AddCommand(tagsCmd)
}

func runTags(cmd *cobra.Command, args []string) error {
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

	suggestions, err := a.tags.SuggestTags(ctx, path, tagsMax)
	if err != nil {
		return fmt.Errorf("tags failed: %w", err)
	}

	if tagsJSON {
		return outputJSON(cmd, suggestions)
	}

	if len(suggestions) == 0 {
		cmd.Println("No tag suggestions.")
		return nil
	}

	cmd.Printf("Suggested tags for %s:\n\n", path)
	for _, suggestion := range suggestions {
		cmd.Printf("  #%s (%.2f)\n", suggestion.Tag, suggestion.Confidence)
	}
	return nil
}
