package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaultika/vaultika-cli/internal/core/domain"
)

func TestSearchService_Search_RanksByMeaning(t *testing.T) {
	ctx := context.Background()
	corpus := newMockCorpus()
	seedVault(corpus)
	embedder := newMockEmbedder()

	ix, err := builtIndexer(ctx, corpus, embedder, &memorySnapshots{})
	require.NoError(t, err)
	service := NewSearchService(ix.Store(), embedder)

	hits, err := service.Search(ctx, "machine learning training", 10, -1)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	// Both machine-learning notes outrank the cooking note.
	rank := make(map[string]int)
	for i, hit := range hits {
		rank[hit.Path] = i
	}
	assert.Less(t, rank["ml/neural-networks.md"], rank["kitchen/pasta.md"])
	assert.Less(t, rank["ml/backpropagation.md"], rank["kitchen/pasta.md"])

	for i := 1; i < len(hits); i++ {
		assert.GreaterOrEqual(t, hits[i-1].Score, hits[i].Score)
	}
}

func TestSearchService_Search_EmptyQuery(t *testing.T) {
	ctx := context.Background()
	corpus := newMockCorpus()
	seedVault(corpus)
	embedder := newMockEmbedder()

	ix, err := builtIndexer(ctx, corpus, embedder, &memorySnapshots{})
	require.NoError(t, err)
	service := NewSearchService(ix.Store(), embedder)

	hits, err := service.Search(ctx, "   ", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, hits)

	hits, err = service.Search(ctx, "query", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearchService_Search_NilEmbedder(t *testing.T) {
	ctx := context.Background()
	corpus := newMockCorpus()
	seedVault(corpus)

	ix, err := builtIndexer(ctx, corpus, newMockEmbedder(), &memorySnapshots{})
	require.NoError(t, err)
	service := NewSearchService(ix.Store(), nil)

	_, err = service.Search(ctx, "query", 10, 0)

	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
}

func TestSearchService_Search_LimitAndMinScore(t *testing.T) {
	ctx := context.Background()
	corpus := newMockCorpus()
	seedVault(corpus)
	embedder := newMockEmbedder()

	ix, err := builtIndexer(ctx, corpus, embedder, &memorySnapshots{})
	require.NoError(t, err)
	service := NewSearchService(ix.Store(), embedder)

	hits, err := service.Search(ctx, "neural network learning", 1, -1)
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	hits, err = service.Search(ctx, "neural network learning", 10, 0.9)
	require.NoError(t, err)
	for _, hit := range hits {
		assert.GreaterOrEqual(t, hit.Score, 0.9)
		assert.NotEqual(t, "kitchen/pasta.md", hit.Path)
	}
}

func TestSearchService_FindSimilar_RelatedNoteFirst(t *testing.T) {
	ctx := context.Background()
	corpus := newMockCorpus()
	seedVault(corpus)
	embedder := newMockEmbedder()

	ix, err := builtIndexer(ctx, corpus, embedder, &memorySnapshots{})
	require.NoError(t, err)
	service := NewSearchService(ix.Store(), embedder)

	matches, err := service.FindSimilar(ctx, "ml/neural-networks.md", 10)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	// The other machine-learning note beats the cooking note, and the
	// source note itself never appears.
	assert.Equal(t, "ml/backpropagation.md", matches[0].Path)
	assert.Equal(t, "kitchen/pasta.md", matches[1].Path)
	assert.Greater(t, matches[0].Score, matches[1].Score)
	assert.NotEmpty(t, matches[0].Preview)
}

func TestSearchService_FindSimilar_TruncatesToK(t *testing.T) {
	ctx := context.Background()
	corpus := newMockCorpus()
	seedVault(corpus)
	embedder := newMockEmbedder()

	ix, err := builtIndexer(ctx, corpus, embedder, &memorySnapshots{})
	require.NoError(t, err)
	service := NewSearchService(ix.Store(), embedder)

	matches, err := service.FindSimilar(ctx, "ml/neural-networks.md", 1)
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	matches, err = service.FindSimilar(ctx, "ml/neural-networks.md", 0)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestSearchService_FindSimilar_UnknownPath(t *testing.T) {
	ctx := context.Background()
	corpus := newMockCorpus()
	seedVault(corpus)

	ix, err := builtIndexer(ctx, corpus, newMockEmbedder(), &memorySnapshots{})
	require.NoError(t, err)
	service := NewSearchService(ix.Store(), nil)

	_, err = service.FindSimilar(ctx, "missing.md", 5)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSearchService_FindSimilar_WorksWithoutEmbedder(t *testing.T) {
	ctx := context.Background()
	corpus := newMockCorpus()
	seedVault(corpus)

	ix, err := builtIndexer(ctx, corpus, newMockEmbedder(), &memorySnapshots{})
	require.NoError(t, err)

	// Document-level similarity reads stored vectors only.
	service := NewSearchService(ix.Store(), nil)
	matches, err := service.FindSimilar(ctx, "kitchen/pasta.md", 5)

	require.NoError(t, err)
	assert.Len(t, matches, 2)
}
