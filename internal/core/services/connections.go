package services

import (
	"context"
	"sort"

	"github.com/vaultika/vaultika-cli/internal/core/domain"
	"github.com/vaultika/vaultika-cli/internal/core/index"
	"github.com/vaultika/vaultika-cli/internal/core/ports/driving"
	"github.com/vaultika/vaultika-cli/internal/logger"
	"github.com/vaultika/vaultika-cli/internal/terms"
)

// Ensure ConnectionService implements the interface.
var _ driving.ConnectionAdvisor = (*ConnectionService)(nil)

// topTermsPerDocument bounds the term list used for shared-term rationale.
const topTermsPerDocument = 10

// ConnectionService discovers pairwise "this note relates to that note"
// suggestions from document-level similarity, each with a term-overlap
// rationale readable without understanding the similarity score.
type ConnectionService struct {
	store *index.Store
}

// NewConnectionService creates a connection service over the given index.
func NewConnectionService(store *index.Store) *ConnectionService {
	return &ConnectionService{store: store}
}

// SuggestConnections ranks all document pairs by aggregate-vector cosine
// similarity, keeping pairs scoring at least minScore. Pairs are
// undirected and deduplicated (a-b reported once with PathA < PathB) and
// capped at maxPerDocument suggestions per document so dense corpora do
// not overwhelm the output.
func (c *ConnectionService) SuggestConnections(_ context.Context, minScore float64, maxPerDocument int) ([]domain.Connection, error) {
	logger.Section("Connection Discovery")

	paths := c.store.Paths()
	if len(paths) < 2 {
		return []domain.Connection{}, nil
	}
	if maxPerDocument <= 0 {
		maxPerDocument = len(paths)
	}

	vectors := make(map[string][]float32, len(paths))
	docTerms := make(map[string][]string, len(paths))
	for _, path := range paths {
		vector, err := c.store.DocumentVector(path)
		if err != nil {
			continue
		}
		vectors[path] = vector
		docTerms[path] = c.topTerms(path)
	}

	var candidates []domain.Connection
	for i := 0; i < len(paths); i++ {
		for j := i + 1; j < len(paths); j++ {
			a, b := paths[i], paths[j]
			va, okA := vectors[a]
			vb, okB := vectors[b]
			if !okA || !okB {
				continue
			}
			score := index.Cosine(va, vb)
			if score < minScore {
				continue
			}
			candidates = append(candidates, domain.Connection{
				PathA:       a,
				PathB:       b,
				Score:       score,
				SharedTerms: terms.Shared(docTerms[a], docTerms[b]),
			})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		if candidates[i].PathA != candidates[j].PathA {
			return candidates[i].PathA < candidates[j].PathA
		}
		return candidates[i].PathB < candidates[j].PathB
	})

	// Per-document cap, applied in score order so the strongest
	// suggestions survive.
	counts := make(map[string]int)
	kept := make([]domain.Connection, 0, len(candidates))
	for _, conn := range candidates {
		if counts[conn.PathA] >= maxPerDocument || counts[conn.PathB] >= maxPerDocument {
			continue
		}
		counts[conn.PathA]++
		counts[conn.PathB]++
		kept = append(kept, conn)
	}

	logger.Info("Suggesting %d connections (from %d candidates)", len(kept), len(candidates))
	return kept, nil
}

// topTerms ranks a document's terms across all its chunks.
func (c *ConnectionService) topTerms(path string) []string {
	entries, err := c.store.EntriesForPath(path)
	if err != nil {
		return nil
	}
	texts := make([]string, len(entries))
	for i, entry := range entries {
		texts[i] = entry.Chunk.Text
	}
	return terms.Top(topTermsPerDocument, texts...)
}
