// Package index provides the in-memory embedding index: a mapping from
// chunk ID to index entry, with a secondary index by document path for
// whole-document replacement and deletion.
//
// The store follows a single-writer/multiple-reader discipline: rebuild
// operations take the write lock, while search, clustering and
// recommendation operations take the read lock and may run concurrently
// with each other.
package index

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/vaultika/vaultika-cli/internal/core/domain"
)

// Store holds all index entries for one vault under one embedding model.
// All entries share the store's model ID and dimension; mixing models
// invalidates comparability and forces a full rebuild.
type Store struct {
	mu         sync.RWMutex
	modelID    string
	dimensions int
	entries    map[string]*domain.IndexEntry
	byPath     map[string][]string // path -> chunk IDs in chunk order
	modified   map[string]time.Time
}

// NewStore creates an empty store bound to the given model.
func NewStore(modelID string, dimensions int) *Store {
	return &Store{
		modelID:    modelID,
		dimensions: dimensions,
		entries:    make(map[string]*domain.IndexEntry),
		byPath:     make(map[string][]string),
		modified:   make(map[string]time.Time),
	}
}

// ModelID returns the embedding model the store was built with.
func (s *Store) ModelID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modelID
}

// Dimensions returns the embedding vector size.
func (s *Store) Dimensions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimensions
}

// Len returns the number of indexed chunks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// DocumentCount returns the number of indexed documents.
func (s *Store) DocumentCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byPath)
}

// Paths returns all indexed document paths in ascending order.
func (s *Store) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	paths := make([]string, 0, len(s.byPath))
	for p := range s.byPath {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Get returns the entry for a chunk ID, or ErrNotFound.
func (s *Store) Get(chunkID string) (*domain.IndexEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[chunkID]
	if !ok {
		return nil, fmt.Errorf("chunk %s: %w", chunkID, domain.ErrNotFound)
	}
	return entry, nil
}

// EntriesForPath returns a document's entries in chunk order.
// Returns ErrNotFound if the path is not indexed.
func (s *Store) EntriesForPath(path string) ([]*domain.IndexEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids, ok := s.byPath[path]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", path, domain.ErrNotFound)
	}
	entries := make([]*domain.IndexEntry, len(ids))
	for i, id := range ids {
		entries[i] = s.entries[id]
	}
	return entries, nil
}

// ModifiedAt returns the cached modification time for a path.
func (s *Store) ModifiedAt(path string) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.modified[path]
	return t, ok
}

// StaleDocuments compares a corpus listing against the cached state and
// partitions it into stale (new or modified), deleted and unchanged.
func (s *Store) StaleDocuments(listing []domain.DocumentInfo) domain.StalePlan {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var plan domain.StalePlan
	seen := make(map[string]bool, len(listing))

	for _, info := range listing {
		seen[info.Path] = true
		cached, ok := s.modified[info.Path]
		if !ok || info.ModifiedAt.After(cached) {
			plan.Stale = append(plan.Stale, info)
			continue
		}
		plan.Unchanged++
	}

	for path := range s.modified {
		if !seen[path] {
			plan.Deleted = append(plan.Deleted, path)
		}
	}

	sort.Slice(plan.Stale, func(i, j int) bool { return plan.Stale[i].Path < plan.Stale[j].Path })
	sort.Strings(plan.Deleted)
	return plan
}

// ReplaceDocument atomically swaps a document's entries: existing chunks
// for the path are removed and the new entries installed. Entries must
// already carry embeddings of the store's dimension.
func (s *Store) ReplaceDocument(path string, entries []domain.IndexEntry, modifiedAt time.Time) error {
	for i := range entries {
		if len(entries[i].Embedding) != s.dimensions {
			return fmt.Errorf("chunk %s has dimension %d, store has %d: %w",
				entries[i].Chunk.ID, len(entries[i].Embedding), s.dimensions, domain.ErrDimensionMismatch)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(path)

	ids := make([]string, len(entries))
	for i := range entries {
		e := entries[i]
		s.entries[e.Chunk.ID] = &e
		ids[i] = e.Chunk.ID
	}
	if len(ids) > 0 {
		s.byPath[path] = ids
	}
	s.modified[path] = modifiedAt
	return nil
}

// DeleteDocument removes all entries for a path. Removing an unindexed
// path is a no-op.
func (s *Store) DeleteDocument(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(path)
	delete(s.modified, path)
}

func (s *Store) removeLocked(path string) {
	for _, id := range s.byPath[path] {
		delete(s.entries, id)
	}
	delete(s.byPath, path)
}

// Reset discards all entries and rebinds the store to a model.
// Used when the configured provider's model changes.
func (s *Store) Reset(modelID string, dimensions int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modelID = modelID
	s.dimensions = dimensions
	s.entries = make(map[string]*domain.IndexEntry)
	s.byPath = make(map[string][]string)
	s.modified = make(map[string]time.Time)
}

// Snapshot returns all entries ordered by path then chunk index, for
// persistence. The same store contents always produce the same snapshot.
func (s *Store) Snapshot() []domain.IndexEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	paths := make([]string, 0, len(s.byPath))
	for p := range s.byPath {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	out := make([]domain.IndexEntry, 0, len(s.entries))
	for _, p := range paths {
		for _, id := range s.byPath[p] {
			out = append(out, *s.entries[id])
		}
	}
	return out
}

// Search ranks all chunks by cosine similarity to the query vector.
// Results are strictly descending by score; ties break by ascending
// path then chunk index. Truncated to k entries and to scores >= minScore.
// An empty store or k <= 0 yields an empty result, never an error.
func (s *Store) Search(query []float32, k int, minScore float64) ([]domain.SearchHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.entries) == 0 || k <= 0 {
		return []domain.SearchHit{}, nil
	}
	if len(query) != s.dimensions {
		return nil, fmt.Errorf("query has dimension %d, index has %d: %w",
			len(query), s.dimensions, domain.ErrDimensionMismatch)
	}

	hits := make([]domain.SearchHit, 0, len(s.entries))
	for _, entry := range s.entries {
		score := Cosine(query, entry.Embedding)
		if score < minScore {
			continue
		}
		hits = append(hits, domain.SearchHit{
			ChunkID:    entry.Chunk.ID,
			Path:       entry.Chunk.Path,
			ChunkIndex: entry.Chunk.Index,
			Text:       entry.Chunk.Text,
			Score:      score,
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		if hits[i].Path != hits[j].Path {
			return hits[i].Path < hits[j].Path
		}
		return hits[i].ChunkIndex < hits[j].ChunkIndex
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// DocumentVector returns a document's aggregate vector: the mean of its
// chunk embeddings. Mean pooling is the fixed aggregation; it is part of
// the ranking contract and must not vary between calls.
func (s *Store) DocumentVector(path string) ([]float32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids, ok := s.byPath[path]
	if !ok || len(ids) == 0 {
		return nil, fmt.Errorf("document %s: %w", path, domain.ErrNotFound)
	}
	vectors := make([][]float32, len(ids))
	for i, id := range ids {
		vectors[i] = s.entries[id].Embedding
	}
	return Mean(vectors), nil
}
