package domain

import (
	"fmt"
	"time"
)

// DocumentInfo identifies a document in the corpus without its content.
// Corpus sources return these from enumeration; content is fetched lazily.
type DocumentInfo struct {
	// Path is the vault-relative path and unique key of the document.
	Path string

	// ModifiedAt is the document's last modification time.
	ModifiedAt time.Time
}

// Document is a note from the vault with its full text.
// The engine only ever reads documents; it never mutates them.
type Document struct {
	// Path is the vault-relative path and unique key of the document.
	Path string

	// Content is the full text content.
	Content string

	// ModifiedAt is the document's last modification time.
	ModifiedAt time.Time
}

// Chunk is a bounded span of a document's text, the unit of embedding.
// Chunk identity is (Path, Index); re-chunking unchanged content must
// reproduce identical IDs and ranges.
type Chunk struct {
	// ID is the deterministic chunk identifier, Path + "#" + Index.
	ID string

	// Path is the source document's path.
	Path string

	// Index is the ordinal position within the document.
	Index int

	// Text is the chunk's text after normalisation.
	Text string

	// Start and End delimit the chunk's byte range [Start, End)
	// within the original document content.
	Start int
	End   int
}

// ChunkID builds the deterministic identifier for a chunk.
func ChunkID(path string, index int) string {
	return fmt.Sprintf("%s#%d", path, index)
}

// IndexEntry aggregates a chunk with its embedding and the staleness
// metadata needed to decide when the source document must be re-embedded.
type IndexEntry struct {
	// Chunk is the embedded text unit.
	Chunk Chunk

	// Embedding is the chunk's vector representation.
	Embedding []float32

	// DocumentModifiedAt is the source document's modification time
	// at the moment the chunk was embedded.
	DocumentModifiedAt time.Time
}

// Preview returns a shortened form of the chunk text for display.
func (c Chunk) Preview(maxLen int) string {
	if maxLen <= 0 || len(c.Text) <= maxLen {
		return c.Text
	}
	return c.Text[:maxLen] + "..."
}
