package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/vaultika/vaultika-cli/internal/core/domain"
	"github.com/vaultika/vaultika-cli/internal/core/index"
	"github.com/vaultika/vaultika-cli/internal/core/ports/driven"
	"github.com/vaultika/vaultika-cli/internal/core/ports/driving"
	"github.com/vaultika/vaultika-cli/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.Searcher = (*SearchService)(nil)

// previewLen bounds snippet length in document-level results.
const previewLen = 200

// SearchService answers semantic similarity queries over the index.
type SearchService struct {
	store    *index.Store
	embedder driven.EmbeddingService
}

// NewSearchService creates a search service.
// The embedder parameter is optional (can be nil); text queries then
// report domain.ErrProviderUnavailable while FindSimilar, which works
// from stored vectors, continues to function.
func NewSearchService(store *index.Store, embedder driven.EmbeddingService) *SearchService {
	return &SearchService{
		store:    store,
		embedder: embedder,
	}
}

// Search embeds the query text and ranks all chunks by cosine
// similarity. Results are strictly descending by score, truncated to k
// entries and to scores >= minScore. An empty index or k <= 0 yields an
// empty result, never an error.
func (s *SearchService) Search(ctx context.Context, query string, k int, minScore float64) ([]domain.SearchHit, error) {
	logger.Section("Semantic Search")
	logger.Debug("Query: %q, k=%d, minScore=%.2f", query, k, minScore)

	query = strings.TrimSpace(query)
	if query == "" || k <= 0 {
		return []domain.SearchHit{}, nil
	}

	if s.embedder == nil {
		return nil, domain.ErrProviderUnavailable
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	logger.Debug("Query embedding: %d dimensions", len(vector))

	hits, err := s.store.Search(vector, k, minScore)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	logger.Info("Search returned %d hits", len(hits))
	return hits, nil
}

// FindSimilar ranks other documents against the aggregate vector of the
// document at path. The source document's own chunks are excluded from
// candidates. Each candidate document is represented by its own
// aggregate vector; the preview comes from its chunk closest to the
// query document.
func (s *SearchService) FindSimilar(_ context.Context, path string, k int) ([]domain.DocumentMatch, error) {
	logger.Section("Similar Documents")
	logger.Debug("Source: %s, k=%d", path, k)

	if k <= 0 {
		return []domain.DocumentMatch{}, nil
	}

	target, err := s.store.DocumentVector(path)
	if err != nil {
		return nil, fmt.Errorf("document vector for %s: %w", path, err)
	}

	var matches []domain.DocumentMatch
	for _, candidate := range s.store.Paths() {
		if candidate == path {
			continue
		}
		vector, err := s.store.DocumentVector(candidate)
		if err != nil {
			continue
		}
		matches = append(matches, domain.DocumentMatch{
			Path:    candidate,
			Score:   index.Cosine(target, vector),
			Preview: s.bestPreview(candidate, target),
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Path < matches[j].Path
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	if matches == nil {
		matches = []domain.DocumentMatch{}
	}

	logger.Info("Found %d similar documents", len(matches))
	return matches, nil
}

// bestPreview returns a snippet from the candidate's chunk closest to
// the query vector.
func (s *SearchService) bestPreview(path string, query []float32) string {
	entries, err := s.store.EntriesForPath(path)
	if err != nil || len(entries) == 0 {
		return ""
	}
	best := entries[0]
	bestScore := index.Cosine(query, best.Embedding)
	for _, entry := range entries[1:] {
		if score := index.Cosine(query, entry.Embedding); score > bestScore {
			best, bestScore = entry, score
		}
	}
	return best.Chunk.Preview(previewLen)
}
