package driving

import (
	"context"

	"github.com/vaultika/vaultika-cli/internal/core/domain"
)

// Indexer builds and maintains the embedding index.
type Indexer interface {
	// BuildOrUpdate reconciles the index against the current corpus,
	// re-embedding only stale documents and removing orphans.
	// Per-document failures are collected in the report, not fatal.
	BuildOrUpdate(ctx context.Context) (*domain.IndexReport, error)

	// FullRebuild discards the index and rebuilds it from scratch.
	FullRebuild(ctx context.Context) (*domain.IndexReport, error)

	// Stats summarises the indexed corpus.
	Stats(ctx context.Context) (*domain.VaultStats, error)
}

// Searcher answers semantic similarity queries over the index.
type Searcher interface {
	// Search ranks chunks against a text query by cosine similarity.
	Search(ctx context.Context, query string, k int, minScore float64) ([]domain.SearchHit, error)

	// FindSimilar ranks other documents against a document's aggregate
	// vector, excluding the document itself.
	FindSimilar(ctx context.Context, path string, k int) ([]domain.DocumentMatch, error)
}

// ThemeExplorer partitions the corpus into topic clusters.
type ThemeExplorer interface {
	// ClusterThemes groups all indexed chunks into at most kClusters
	// clusters, largest first.
	ClusterThemes(ctx context.Context, kClusters int) ([]domain.Cluster, error)
}

// ConnectionAdvisor discovers pairwise document relationships.
type ConnectionAdvisor interface {
	// SuggestConnections returns document pairs whose aggregate vectors
	// score at least minScore, at most maxPerDocument per document.
	SuggestConnections(ctx context.Context, minScore float64, maxPerDocument int) ([]domain.Connection, error)
}

// TagAdvisor ranks candidate vocabulary terms for a document.
type TagAdvisor interface {
	// SuggestTags returns up to maxTags ranked tag candidates for the
	// document at path.
	SuggestTags(ctx context.Context, path string, maxTags int) ([]domain.TagSuggestion, error)
}
