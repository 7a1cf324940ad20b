// Package file provides TOML-backed configuration for the Vaultika CLI,
// stored in the vaultika config directory.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// Provider identifiers accepted in configuration.
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
	ProviderNone   = "none"
)

// Config is the full Vaultika configuration.
type Config struct {
	// VaultPath is the note vault root directory.
	VaultPath string `toml:"vault_path"`

	// Provider selects the embedding backend: "ollama", "openai" or
	// "none" to disable semantic features.
	Provider string `toml:"provider"`

	Ollama OllamaConfig `toml:"ollama"`
	OpenAI OpenAIConfig `toml:"openai"`
	Index  IndexConfig  `toml:"index"`
}

// OllamaConfig configures the Ollama embedding provider.
type OllamaConfig struct {
	BaseURL    string `toml:"base_url"`
	Model      string `toml:"model"`
	Dimensions int    `toml:"dimensions"`
}

// OpenAIConfig configures the OpenAI embedding provider.
type OpenAIConfig struct {
	APIKey     string `toml:"api_key"`
	BaseURL    string `toml:"base_url"`
	Model      string `toml:"model"`
	Dimensions int    `toml:"dimensions"`
}

// IndexConfig tunes index rebuilds.
type IndexConfig struct {
	// Workers is the rebuild worker pool size.
	Workers int `toml:"workers"`

	// BatchSize is the embedding batch size.
	BatchSize int `toml:"batch_size"`

	// EmbedTimeoutSeconds bounds each embedding call.
	EmbedTimeoutSeconds int `toml:"embed_timeout_seconds"`
}

// defaults returns the baseline configuration.
func defaults() Config {
	return Config{
		Provider: ProviderOllama,
		Index: IndexConfig{
			Workers:             4,
			BatchSize:           32,
			EmbedTimeoutSeconds: 60,
		},
	}
}

// ConfigStore loads and saves the TOML configuration file.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	config   Config
}

// NewConfigStore creates a TOML config store.
// If configDir is empty, defaults to ~/.vaultika.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".vaultika")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	s := &ConfigStore{
		filePath: filepath.Join(configDir, "config.toml"),
		config:   defaults(),
	}

	if err := s.Load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return s, nil
}

// Config returns a copy of the current configuration.
func (s *ConfigStore) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// SetVaultPath updates the vault path.
func (s *ConfigStore) SetVaultPath(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config.VaultPath = path
}

// SetProvider updates the embedding provider selection.
func (s *ConfigStore) SetProvider(provider string) error {
	switch provider {
	case ProviderOllama, ProviderOpenAI, ProviderNone:
	default:
		return fmt.Errorf("unknown provider %q", provider)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config.Provider = provider
	return nil
}

// Load reads the configuration from disk, layering it over defaults.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	config := defaults()
	if err := toml.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("parse %s: %w", s.filePath, err)
	}
	s.config = config
	return nil
}

// Save writes the configuration to disk.
func (s *ConfigStore) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := toml.Marshal(s.config)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(s.filePath, data, 0600)
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}
