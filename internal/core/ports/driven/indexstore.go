package driven

import (
	"context"

	"github.com/vaultika/vaultika-cli/internal/core/domain"
)

// IndexSnapshot is the persisted form of the embedding index: a header
// identifying the model plus the full entry set. The header guards
// against loading vectors that are incomparable with the configured
// provider.
type IndexSnapshot struct {
	// ModelID is the embedding model the index was built with.
	ModelID string

	// Dimensions is the embedding vector size.
	Dimensions int

	// Entries holds all index entries, ordered by path then chunk index.
	Entries []domain.IndexEntry
}

// IndexStore persists index snapshots across process runs.
// One store exists per vault identity. Snapshots are written whole on
// successful rebuild and replaced atomically; partial writes are never
// visible to a subsequent Load.
type IndexStore interface {
	// Save replaces the persisted snapshot.
	Save(ctx context.Context, snapshot IndexSnapshot) error

	// Load returns the persisted snapshot, or domain.ErrNotFound when
	// the store is empty. A store whose format cannot be understood
	// returns domain.ErrIndexIncompatible.
	Load(ctx context.Context) (*IndexSnapshot, error)

	// Close releases resources.
	Close() error
}
