package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	connectionsMinScore float64
	connectionsMaxPer   int
	connectionsJSON     bool
)

var connectionsCmd = &cobra.Command{
	Use:   "connections",
	Short: "Suggest links between related notes",
	Long: `Compares every pair of indexed notes by aggregate embedding and
suggests pairs worth linking, strongest first. Shared vocabulary is
listed alongside each pair as a hint to why they relate.`,
	RunE: runConnections,
}

func init() {
	connectionsCmd.Flags().Float64Var(&connectionsMinScore, "min-score", 0.7, "minimum similarity score")
	connectionsCmd.Flags().IntVar(&connectionsMaxPer, "max-per-note", 3, "suggestion cap per note (0 for unlimited)")
	connectionsCmd.Flags().BoolVar(&connectionsJSON, "json", false, "output suggestions as JSON")
	rootCmd.AddCommand(connectionsCmd)
}

func runConnections(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	if err := a.open(ctx); err != nil {
		return err
	}

	connections, err := a.connections.SuggestConnections(ctx, connectionsMinScore, connectionsMaxPer)
	if err != nil {
		return fmt.Errorf("connections failed: %w", err)
	}

	if connectionsJSON {
		return outputJSON(cmd, connections)
	}

	if len(connections) == 0 {
		cmd.Println("No connections above the threshold.")
		return nil
	}

	cmd.Println("Suggested connections:")
	cmd.Println()
	for i := range connections {
		cmd.Printf("  [%d] %s <-> %s (%.2f)\n",
			i+1, connections[i].PathA, connections[i].PathB, connections[i].Score)
		if len(connections[i].SharedTerms) > 0 {
			cmd.Printf("      Shared: %s\n", strings.Join(connections[i].SharedTerms, ", "))
		}
		cmd.Println()
	}
	return nil
}
