package driven

import "context"

// EmbeddingService generates vector embeddings from text.
// This is an optional service - when nil, semantic features are disabled.
//
// Batching and non-batching must produce equivalent vectors for the same
// string; there is no cross-item leakage. All vectors from one service
// share the dimension reported by Dimensions.
//
// Implementations may include:
//   - Ollama (nomic-embed-text, all-minilm) - fast, local, lower dimension
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//
// Error contract: an unreachable or unconfigured backend surfaces
// domain.ErrProviderUnavailable; an exceeded deadline surfaces
// domain.ErrProviderTimeout. Both are distinguishable from per-item
// processing errors via errors.Is.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts, one vector per
	// input string, order-preserving.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 768, 1536).
	Dimensions() int

	// ModelID returns the identifier of the embedding model. Indexes
	// built with one model are incompatible with any other.
	ModelID() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
