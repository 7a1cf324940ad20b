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

// Ensure ThemeService implements the interface.
var _ driving.ThemeExplorer = (*ThemeService)(nil)

// Clustering parameters, held invariant for reproducible output.
const (
	maxKMeansIterations = 20
	topTermsPerCluster  = 8
)

// ThemeService partitions the indexed corpus into topic clusters via
// k-means over chunk embeddings. Seeding is deterministic: initial
// centroids are taken at evenly spaced ranks of the entries sorted by
// path and chunk index, so identical index contents always produce
// identical clusters.
type ThemeService struct {
	store *index.Store
}

// NewThemeService creates a theme service over the given index.
func NewThemeService(store *index.Store) *ThemeService {
	return &ThemeService{store: store}
}

// ClusterThemes groups all indexed chunks into at most kClusters
// clusters, largest first. When the corpus has fewer chunks than
// kClusters, the cluster count is reduced to the chunk count; empty
// clusters are never produced. Top terms per cluster come from
// term-frequency ranking over the members' text, independent of the
// embedding model.
func (t *ThemeService) ClusterThemes(_ context.Context, kClusters int) ([]domain.Cluster, error) {
	if kClusters <= 0 {
		return nil, domain.ErrInvalidInput
	}

	entries := t.store.Snapshot()
	if len(entries) == 0 {
		return []domain.Cluster{}, nil
	}
	if kClusters > len(entries) {
		logger.Debug("Reducing cluster count from %d to %d chunks", kClusters, len(entries))
		kClusters = len(entries)
	}

	logger.Section("Theme Clustering")
	logger.Info("Clustering %d chunks into %d themes", len(entries), kClusters)

	assignments, centroids := kmeans(entries, kClusters)

	clusters := make([]domain.Cluster, kClusters)
	for c := 0; c < kClusters; c++ {
		clusters[c].Centroid = centroids[c]
	}
	for i, entry := range entries {
		c := assignments[i]
		clusters[c].MemberChunkIDs = append(clusters[c].MemberChunkIDs, entry.Chunk.ID)
	}

	for c := range clusters {
		t.describe(&clusters[c], entries, assignments, c)
	}

	// Largest themes first; ties break by first member for determinism.
	sort.SliceStable(clusters, func(i, j int) bool {
		if len(clusters[i].MemberChunkIDs) != len(clusters[j].MemberChunkIDs) {
			return len(clusters[i].MemberChunkIDs) > len(clusters[j].MemberChunkIDs)
		}
		return clusters[i].MemberChunkIDs[0] < clusters[j].MemberChunkIDs[0]
	})
	for i := range clusters {
		clusters[i].ID = i
	}

	return clusters, nil
}

// describe fills in the textual description of one cluster: contributing
// paths, top terms, and a preview from the member closest to the centroid.
func (t *ThemeService) describe(cluster *domain.Cluster, entries []domain.IndexEntry, assignments []int, c int) {
	var texts []string
	pathSet := make(map[string]bool)
	bestScore := -2.0
	var best *domain.IndexEntry

	for i := range entries {
		if assignments[i] != c {
			continue
		}
		entry := &entries[i]
		texts = append(texts, entry.Chunk.Text)
		pathSet[entry.Chunk.Path] = true

		if score := index.Cosine(cluster.Centroid, entry.Embedding); score > bestScore {
			bestScore = score
			best = entry
		}
	}

	cluster.TopTerms = terms.Top(topTermsPerCluster, texts...)
	for path := range pathSet {
		cluster.Paths = append(cluster.Paths, path)
	}
	sort.Strings(cluster.Paths)
	if best != nil {
		cluster.Preview = best.Chunk.Preview(previewLen)
	}
}

// kmeans runs iterative centroid refinement with a fixed iteration cap.
// Entries must be non-empty and k in [1, len(entries)].
func kmeans(entries []domain.IndexEntry, k int) (assignments []int, centroids [][]float32) {
	n := len(entries)

	// Deterministic seeding at evenly spaced ranks.
	centroids = make([][]float32, k)
	for c := 0; c < k; c++ {
		seed := entries[c*n/k].Embedding
		centroids[c] = append([]float32(nil), seed...)
	}

	assignments = make([]int, n)
	for iter := 0; iter < maxKMeansIterations; iter++ {
		changed := false
		for i := range entries {
			best := nearestCentroid(entries[i].Embedding, centroids)
			if best != assignments[i] {
				assignments[i] = best
				changed = true
			}
		}
		if iter > 0 && !changed {
			break
		}

		rebalanceEmpty(entries, assignments, k)

		for c := 0; c < k; c++ {
			var members [][]float32
			for i := range entries {
				if assignments[i] == c {
					members = append(members, entries[i].Embedding)
				}
			}
			if len(members) > 0 {
				centroids[c] = index.Mean(members)
			}
		}
	}

	rebalanceEmpty(entries, assignments, k)
	return assignments, centroids
}

// nearestCentroid picks the centroid with the highest cosine similarity.
// Ties break toward the lower cluster ordinal.
func nearestCentroid(v []float32, centroids [][]float32) int {
	best := 0
	bestScore := index.Cosine(v, centroids[0])
	for c := 1; c < len(centroids); c++ {
		if score := index.Cosine(v, centroids[c]); score > bestScore {
			best = c
			bestScore = score
		}
	}
	return best
}

// rebalanceEmpty moves one member from the largest cluster into each
// empty cluster so no cluster is ever empty. The donor member is the
// last (highest-ranked ID) to keep the move deterministic.
func rebalanceEmpty(entries []domain.IndexEntry, assignments []int, k int) {
	counts := make([]int, k)
	for _, a := range assignments {
		counts[a]++
	}

	for c := 0; c < k; c++ {
		if counts[c] > 0 {
			continue
		}
		largest := 0
		for d := 1; d < k; d++ {
			if counts[d] > counts[largest] {
				largest = d
			}
		}
		for i := len(entries) - 1; i >= 0; i-- {
			if assignments[i] == largest {
				assignments[i] = c
				counts[largest]--
				counts[c]++
				break
			}
		}
	}
}
