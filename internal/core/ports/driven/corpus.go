package driven

import (
	"context"

	"github.com/vaultika/vaultika-cli/internal/core/domain"
)

// CorpusSource supplies the engine with documents to index.
// The engine tolerates paths disappearing or content changing between
// List and Fetch: a failed Fetch is a per-document error
// (domain.ErrCorpusRead), never fatal to a whole rebuild.
type CorpusSource interface {
	// List enumerates all documents currently in the corpus, with their
	// modification times, in ascending path order.
	List(ctx context.Context) ([]domain.DocumentInfo, error)

	// Fetch returns the full text of a document by path.
	// Returns domain.ErrCorpusRead if the document cannot be read.
	Fetch(ctx context.Context, path string) (string, error)

	// Watch emits a signal whenever the corpus changes on disk.
	// The channel closes when ctx is cancelled.
	Watch(ctx context.Context) (<-chan struct{}, error)

	// Close releases resources.
	Close() error
}
