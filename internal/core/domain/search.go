package domain

// SearchHit is a single chunk-level similarity result.
type SearchHit struct {
	// ChunkID is the matched chunk's identifier.
	ChunkID string

	// Path is the matched chunk's document path.
	Path string

	// ChunkIndex is the chunk's ordinal position within the document.
	ChunkIndex int

	// Text is the matched chunk's text.
	Text string

	// Score is the cosine similarity to the query, in [-1, 1].
	Score float64
}

// DocumentMatch is a document-level similarity result, used when ranking
// whole documents against a query document.
type DocumentMatch struct {
	// Path is the matched document's path.
	Path string

	// Score is the cosine similarity between the two documents'
	// aggregate vectors, in [-1, 1].
	Score float64

	// Preview is a snippet from the document's best-matching chunk.
	Preview string
}

// VaultStats summarises the indexed corpus.
type VaultStats struct {
	// Documents is the number of indexed documents.
	Documents int

	// Chunks is the number of indexed chunks.
	Chunks int

	// Words is the total word count across indexed chunks.
	Words int

	// ModelID is the embedding model the index was built with.
	ModelID string

	// Dimensions is the embedding vector size.
	Dimensions int
}
