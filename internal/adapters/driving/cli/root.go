// Package cli implements the vaultika command-line interface.
package cli

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vaultika/vaultika-cli/internal/adapters/driven/config/file"
	"github.com/vaultika/vaultika-cli/internal/adapters/driven/embedding/ollama"
	"github.com/vaultika/vaultika-cli/internal/adapters/driven/embedding/openai"
	"github.com/vaultika/vaultika-cli/internal/adapters/driven/storage/sqlite"
	"github.com/vaultika/vaultika-cli/internal/connectors/filesystem"
	"github.com/vaultika/vaultika-cli/internal/core/ports/driven"
	"github.com/vaultika/vaultika-cli/internal/core/services"
	"github.com/vaultika/vaultika-cli/internal/logger"
	"github.com/vaultika/vaultika-cli/internal/normalisers/markdown"
	"github.com/vaultika/vaultika-cli/internal/postprocessors/chunker"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	verbose   bool
	vaultFlag string
	configDir string
)

var rootCmd = &cobra.Command{
	Use:   "vaultika",
	Short: "Semantic indexing and exploration for note vaults",
	Long: `Vaultika indexes a directory of plain-text notes with vector embeddings
and answers semantic queries over it: search, related notes, theme
clusters, connection suggestions and tag suggestions.

The index is persisted locally and updated incrementally, so only
notes that changed since the last run are re-embedded.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&vaultFlag, "vault", "", "vault root directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.vaultika)")
}

// Execute runs the root command with signal-aware cancellation.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// app bundles the wired services for a single command invocation.
type app struct {
	config      file.Config
	vault       *filesystem.Vault
	snapshots   *sqlite.Store
	embedder    driven.EmbeddingService
	indexer     *services.Indexer
	search      *services.SearchService
	themes      *services.ThemeService
	connections *services.ConnectionService
	tags        *services.TagService
}

// newApp wires the full service stack from configuration and flags.
func newApp(extra ...services.IndexerOption) (*app, error) {
	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	config := configStore.Config()

	vaultPath := vaultFlag
	if vaultPath == "" {
		vaultPath = config.VaultPath
	}
	if vaultPath == "" {
		return nil, errors.New(`no vault configured; run "vaultika config set-vault <path>" or pass --vault`)
	}

	vault, err := filesystem.New(vaultPath)
	if err != nil {
		return nil, fmt.Errorf("open vault: %w", err)
	}

	embedder, err := buildEmbedder(config)
	if err != nil {
		vault.Close()
		return nil, err
	}

	dataDir, err := dataDirFor(vault.Root())
	if err != nil {
		vault.Close()
		return nil, err
	}
	snapshots, err := sqlite.NewStore(dataDir)
	if err != nil {
		vault.Close()
		return nil, fmt.Errorf("open index store: %w", err)
	}

	opts := []services.IndexerOption{
		services.WithChunker(chunker.New(chunker.WithCleaner(markdown.Clean))),
		services.WithWorkers(config.Index.Workers),
		services.WithBatchSize(config.Index.BatchSize),
	}
	if config.Index.EmbedTimeoutSeconds > 0 {
		opts = append(opts, services.WithEmbedTimeout(time.Duration(config.Index.EmbedTimeoutSeconds)*time.Second))
	}
	opts = append(opts, extra...)

	indexer := services.NewIndexer(vault, embedder, snapshots, opts...)
	store := indexer.Store()
	themes := services.NewThemeService(store)

	return &app{
		config:      config,
		vault:       vault,
		snapshots:   snapshots,
		embedder:    embedder,
		indexer:     indexer,
		search:      services.NewSearchService(store, embedder),
		themes:      themes,
		connections: services.NewConnectionService(store),
		tags:        services.NewTagService(store, themes),
	}, nil
}

// open hydrates the in-memory index for query commands and rejects an
// empty index with a hint towards "vaultika index".
func (a *app) open(ctx context.Context) error {
	if err := a.indexer.Open(ctx); err != nil {
		return fmt.Errorf("load index: %w", err)
	}
	if a.indexer.Store().Len() == 0 {
		return errors.New(`index is empty; run "vaultika index" first`)
	}
	return nil
}

// Close releases all adapter resources.
func (a *app) Close() {
	if a.embedder != nil {
		_ = a.embedder.Close()
	}
	_ = a.snapshots.Close()
	_ = a.vault.Close()
}

// buildEmbedder constructs the configured embedding provider.
// Provider "none" yields a nil embedder; query commands that only read
// stored vectors still work, embedding-dependent ones fail cleanly.
func buildEmbedder(config file.Config) (driven.EmbeddingService, error) {
	switch config.Provider {
	case file.ProviderOllama, "":
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL:    config.Ollama.BaseURL,
			Model:      config.Ollama.Model,
			Dimensions: config.Ollama.Dimensions,
		}), nil
	case file.ProviderOpenAI:
		apiKey := config.OpenAI.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		return openai.NewEmbeddingService(openai.Config{
			APIKey:     apiKey,
			BaseURL:    config.OpenAI.BaseURL,
			Model:      config.OpenAI.Model,
			Dimensions: config.OpenAI.Dimensions,
		})
	case file.ProviderNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown provider %q in config", config.Provider)
	}
}

// dataDirFor returns a per-vault data directory, so indexes for
// different vaults never overwrite each other.
func dataDirFor(vaultRoot string) (string, error) {
	base := configDir
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".vaultika")
	}
	sum := sha256.Sum256([]byte(vaultRoot))
	return filepath.Join(base, "data", hex.EncodeToString(sum[:6])), nil
}
