package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	themesClusters int
	themesJSON     bool
)

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "Group notes into themes",
	Long: `Clusters all indexed chunks by embedding similarity and prints the
resulting themes, largest first, each with its characteristic terms
and member notes.`,
	RunE: runThemes,
}

func init() {
	themesCmd.Flags().IntVarP(&themesClusters, "clusters", "k", 5, "maximum number of themes")
	themesCmd.Flags().BoolVar(&themesJSON, "json", false, "output themes as JSON")
	rootCmd.AddCommand(themesCmd)
}

func runThemes(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	if err := a.open(ctx); err != nil {
		return err
	}

	clusters, err := a.themes.ClusterThemes(ctx, themesClusters)
	if err != nil {
		return fmt.Errorf("themes failed: %w", err)
	}

	if themesJSON {
		return outputJSON(cmd, clusters)
	}

	if len(clusters) == 0 {
		cmd.Println("Nothing to cluster.")
		return nil
	}

	for i := range clusters {
		cmd.Printf("Theme %d (%d chunks, %d notes)\n",
			i+1, len(clusters[i].MemberChunkIDs), len(clusters[i].Paths))
		if len(clusters[i].TopTerms) > 0 {
			cmd.Printf("  Terms: %s\n", strings.Join(clusters[i].TopTerms, ", "))
		}
		if clusters[i].Preview != "" {
			cmd.Printf("  %s\n", snippetOf(clusters[i].Preview, 160))
		}
		for _, path := range clusters[i].Paths {
			cmd.Printf("  - %s\n", path)
		}
		cmd.Println()
	}
	return nil
}
