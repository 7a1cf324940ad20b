package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vaultika/vaultika-cli/internal/adapters/driven/config/file"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage vaultika configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current configuration",
	RunE:  runConfigShow,
}

var configSetVaultCmd = &cobra.Command{
	Use:   "set-vault [path]",
	Short: "Set the vault root directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigSetVault,
}

var configSetProviderCmd = &cobra.Command{
	Use:   "set-provider [ollama|openai|none]",
	Short: "Set the embedding provider",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigSetProvider,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetVaultCmd)
	configCmd.AddCommand(configSetProviderCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return err
	}

	config := store.Config()
	cmd.Printf("Config file: %s\n", store.Path())
	cmd.Printf("Vault:       %s\n", config.VaultPath)
	cmd.Printf("Provider:    %s\n", config.Provider)
	switch config.Provider {
	case file.ProviderOllama:
		cmd.Printf("Model:       %s\n", config.Ollama.Model)
	case file.ProviderOpenAI:
		cmd.Printf("Model:       %s\n", config.OpenAI.Model)
	}
	return nil
}

func runConfigSetVault(cmd *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}

	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return err
	}

	store.SetVaultPath(path)
	if err := store.Save(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	cmd.Printf("Vault set to %s\n", path)
	return nil
}

func runConfigSetProvider(cmd *cobra.Command, args []string) error {
	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return err
	}

	if err := store.SetProvider(args[0]); err != nil {
		return err
	}
	if err := store.Save(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	cmd.Printf("Provider set to %s\n", args[0])
	return nil
}
