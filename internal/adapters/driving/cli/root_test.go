package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaultika/vaultika-cli/internal/adapters/driven/config/file"
)

func TestRootCmd_HasAllCommands(t *testing.T) {
	expected := []string{
		"index", "search", "similar", "themes", "connections",
		"tags", "stats", "watch", "config", "version",
	}

	registered := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		registered[cmd.Name()] = true
	}

	for _, name := range expected {
		assert.True(t, registered[name], "command %s not registered", name)
	}
}

func TestNewApp_NoVaultConfigured(t *testing.T) {
	originalConfigDir := configDir
	configDir = t.TempDir()
	defer func() { configDir = originalConfigDir }()

	_, err := newApp()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no vault configured")
}

func TestNewApp_MissingVault(t *testing.T) {
	originalConfigDir := configDir
	originalVault := vaultFlag
	configDir = t.TempDir()
	vaultFlag = "/nonexistent/vault/path"
	defer func() {
		configDir = originalConfigDir
		vaultFlag = originalVault
	}()

	_, err := newApp()

	assert.Error(t, err)
}

func TestNewApp_WiresServices(t *testing.T) {
	originalConfigDir := configDir
	originalVault := vaultFlag
	configDir = t.TempDir()
	vaultFlag = t.TempDir()
	defer func() {
		configDir = originalConfigDir
		vaultFlag = originalVault
	}()

	a, err := newApp()
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.indexer)
	assert.NotNil(t, a.search)
	assert.NotNil(t, a.themes)
	assert.NotNil(t, a.connections)
	assert.NotNil(t, a.tags)
	assert.NotNil(t, a.embedder)
}

func TestBuildEmbedder_None(t *testing.T) {
	embedder, err := buildEmbedder(file.Config{Provider: file.ProviderNone})

	require.NoError(t, err)
	assert.Nil(t, embedder)
}

func TestBuildEmbedder_Unknown(t *testing.T) {
	_, err := buildEmbedder(file.Config{Provider: "mystery"})

	assert.Error(t, err)
}

func TestDataDirFor_DistinctPerVault(t *testing.T) {
	originalConfigDir := configDir
	configDir = t.TempDir()
	defer func() { configDir = originalConfigDir }()

	a, err := dataDirFor("/vault/one")
	require.NoError(t, err)
	b, err := dataDirFor("/vault/two")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestConfigCmd_Show(t *testing.T) {
	originalConfigDir := configDir
	configDir = t.TempDir()
	defer func() { configDir = originalConfigDir }()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"config", "show"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Provider:    ollama")
}
