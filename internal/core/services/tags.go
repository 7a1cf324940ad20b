package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/vaultika/vaultika-cli/internal/core/domain"
	"github.com/vaultika/vaultika-cli/internal/core/index"
	"github.com/vaultika/vaultika-cli/internal/core/ports/driving"
	"github.com/vaultika/vaultika-cli/internal/logger"
	"github.com/vaultika/vaultika-cli/internal/terms"
)

// Ensure TagService implements the interface.
var _ driving.TagAdvisor = (*TagService)(nil)

// Tag blending parameters, held invariant for reproducible suggestions.
const (
	// defaultTagClusters is the theme count used to derive cluster-based
	// tag candidates.
	defaultTagClusters = 8

	// clusterWeight and frequencyWeight blend the two confidence signals.
	clusterWeight   = 0.6
	frequencyWeight = 0.4
)

// TagService ranks candidate vocabulary terms for a document by blending
// two signals: the document's cluster membership strength contributing
// the cluster's top terms, and raw term frequency within the document.
type TagService struct {
	store  *index.Store
	themes *ThemeService
}

// NewTagService creates a tag service over the given index.
func NewTagService(store *index.Store, themes *ThemeService) *TagService {
	return &TagService{store: store, themes: themes}
}

// SuggestTags returns up to maxTags ranked tag candidates for the
// document at path. Candidates from both signals are merged and
// deduplicated case-insensitively; confidence is normalised to [0, 1].
func (t *TagService) SuggestTags(ctx context.Context, path string, maxTags int) ([]domain.TagSuggestion, error) {
	logger.Section("Tag Suggestion")
	logger.Debug("Document: %s, maxTags=%d", path, maxTags)

	if maxTags <= 0 {
		return []domain.TagSuggestion{}, nil
	}

	entries, err := t.store.EntriesForPath(path)
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", path, err)
	}

	scores := make(map[string]float64)

	// Signal (a): cluster membership. The document's aggregate vector is
	// assigned to its nearest cluster; membership strength scales the
	// cluster's top terms, stronger for higher-ranked terms.
	docVector, err := t.store.DocumentVector(path)
	if err != nil {
		return nil, fmt.Errorf("document vector for %s: %w", path, err)
	}
	clusters, err := t.themes.ClusterThemes(ctx, defaultTagClusters)
	if err != nil {
		return nil, fmt.Errorf("cluster themes: %w", err)
	}
	if cluster := nearestCluster(docVector, clusters); cluster != nil {
		// Cosine in [-1, 1] inverted-distance-normalised to [0, 1].
		strength := (index.Cosine(docVector, cluster.Centroid) + 1) / 2
		logger.Debug("Assigned cluster %d, membership strength %.2f", cluster.ID, strength)

		for rank, term := range cluster.TopTerms {
			rankWeight := 1.0 - float64(rank)/float64(len(cluster.TopTerms))
			scores[strings.ToLower(term)] += clusterWeight * strength * rankWeight
		}
	}

	// Signal (b): raw term frequency within the document.
	texts := make([]string, len(entries))
	for i, entry := range entries {
		texts[i] = entry.Chunk.Text
	}
	freq := terms.Frequencies(texts...)
	maxFreq := 0
	for _, n := range freq {
		if n > maxFreq {
			maxFreq = n
		}
	}
	if maxFreq > 0 {
		for term, n := range freq {
			scores[strings.ToLower(term)] += frequencyWeight * float64(n) / float64(maxFreq)
		}
	}

	suggestions := make([]domain.TagSuggestion, 0, len(scores))
	for tag, score := range scores {
		if score > 1 {
			score = 1
		}
		suggestions = append(suggestions, domain.TagSuggestion{Tag: tag, Confidence: score})
	}
	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].Confidence != suggestions[j].Confidence {
			return suggestions[i].Confidence > suggestions[j].Confidence
		}
		return suggestions[i].Tag < suggestions[j].Tag
	})

	if len(suggestions) > maxTags {
		suggestions = suggestions[:maxTags]
	}

	logger.Info("Suggesting %d tags", len(suggestions))
	return suggestions, nil
}

// nearestCluster returns the cluster whose centroid is most similar to
// the vector, or nil when there are no clusters.
func nearestCluster(v []float32, clusters []domain.Cluster) *domain.Cluster {
	var best *domain.Cluster
	bestScore := -2.0
	for i := range clusters {
		if score := index.Cosine(v, clusters[i].Centroid); score > bestScore {
			best = &clusters[i]
			bestScore = score
		}
	}
	return best
}
