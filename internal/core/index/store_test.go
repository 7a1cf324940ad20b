package index

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaultika/vaultika-cli/internal/core/domain"
)

func entry(path string, idx int, embedding []float32) domain.IndexEntry {
	return domain.IndexEntry{
		Chunk: domain.Chunk{
			ID:    domain.ChunkID(path, idx),
			Path:  path,
			Index: idx,
			Text:  "chunk " + domain.ChunkID(path, idx),
		},
		Embedding: embedding,
	}
}

func TestStore_ReplaceAndGet(t *testing.T) {
	store := NewStore("test-model", 3)
	now := time.Now()

	err := store.ReplaceDocument("a.md", []domain.IndexEntry{
		entry("a.md", 0, []float32{1, 0, 0}),
		entry("a.md", 1, []float32{0, 1, 0}),
	}, now)
	require.NoError(t, err)

	assert.Equal(t, 2, store.Len())
	assert.Equal(t, 1, store.DocumentCount())

	got, err := store.Get("a.md#1")
	require.NoError(t, err)
	assert.Equal(t, "a.md", got.Chunk.Path)
	assert.Equal(t, 1, got.Chunk.Index)

	_, err = store.Get("missing#0")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_ReplaceDocument_SwapsOldChunks(t *testing.T) {
	store := NewStore("test-model", 3)
	now := time.Now()

	require.NoError(t, store.ReplaceDocument("a.md", []domain.IndexEntry{
		entry("a.md", 0, []float32{1, 0, 0}),
		entry("a.md", 1, []float32{0, 1, 0}),
		entry("a.md", 2, []float32{0, 0, 1}),
	}, now))

	// Shrinking replacement removes the stale trailing chunk.
	require.NoError(t, store.ReplaceDocument("a.md", []domain.IndexEntry{
		entry("a.md", 0, []float32{1, 1, 0}),
	}, now.Add(time.Minute)))

	assert.Equal(t, 1, store.Len())
	_, err := store.Get("a.md#2")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_ReplaceDocument_DimensionMismatch(t *testing.T) {
	store := NewStore("test-model", 3)

	err := store.ReplaceDocument("a.md", []domain.IndexEntry{
		entry("a.md", 0, []float32{1, 0}),
	}, time.Now())

	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	assert.Equal(t, 0, store.Len())
}

func TestStore_DeleteDocument(t *testing.T) {
	store := NewStore("test-model", 3)
	now := time.Now()

	require.NoError(t, store.ReplaceDocument("a.md", []domain.IndexEntry{
		entry("a.md", 0, []float32{1, 0, 0}),
	}, now))

	store.DeleteDocument("a.md")

	assert.Equal(t, 0, store.Len())
	assert.Equal(t, 0, store.DocumentCount())
	_, tracked := store.ModifiedAt("a.md")
	assert.False(t, tracked)

	// Deleting an unknown path is a no-op.
	store.DeleteDocument("missing.md")
}

func TestStore_StaleDocuments(t *testing.T) {
	store := NewStore("test-model", 3)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.ReplaceDocument("unchanged.md", []domain.IndexEntry{
		entry("unchanged.md", 0, []float32{1, 0, 0}),
	}, base))
	require.NoError(t, store.ReplaceDocument("modified.md", []domain.IndexEntry{
		entry("modified.md", 0, []float32{0, 1, 0}),
	}, base))
	require.NoError(t, store.ReplaceDocument("removed.md", []domain.IndexEntry{
		entry("removed.md", 0, []float32{0, 0, 1}),
	}, base))

	plan := store.StaleDocuments([]domain.DocumentInfo{
		{Path: "unchanged.md", ModifiedAt: base},
		{Path: "modified.md", ModifiedAt: base.Add(time.Hour)},
		{Path: "new.md", ModifiedAt: base},
	})

	require.Len(t, plan.Stale, 2)
	assert.Equal(t, "modified.md", plan.Stale[0].Path)
	assert.Equal(t, "new.md", plan.Stale[1].Path)
	assert.Equal(t, []string{"removed.md"}, plan.Deleted)
	assert.Equal(t, 1, plan.Unchanged)
}

func TestStore_Search_Ordering(t *testing.T) {
	store := NewStore("test-model", 2)
	now := time.Now()

	require.NoError(t, store.ReplaceDocument("a.md", []domain.IndexEntry{
		entry("a.md", 0, []float32{1, 0}),
		entry("a.md", 1, []float32{0, 1}),
	}, now))
	require.NoError(t, store.ReplaceDocument("b.md", []domain.IndexEntry{
		entry("b.md", 0, []float32{0.9, 0.1}),
	}, now))

	hits, err := store.Search([]float32{1, 0}, 10, -1)
	require.NoError(t, err)

	require.Len(t, hits, 3)
	assert.Equal(t, "a.md#0", hits[0].ChunkID)
	assert.Equal(t, "b.md#0", hits[1].ChunkID)
	assert.Equal(t, "a.md#1", hits[2].ChunkID)
	assert.GreaterOrEqual(t, hits[0].Score, hits[1].Score)
	assert.GreaterOrEqual(t, hits[1].Score, hits[2].Score)
}

func TestStore_Search_TieBreaksByPathThenIndex(t *testing.T) {
	store := NewStore("test-model", 2)
	now := time.Now()

	// All three chunks score identically against the query.
	require.NoError(t, store.ReplaceDocument("b.md", []domain.IndexEntry{
		entry("b.md", 0, []float32{1, 0}),
	}, now))
	require.NoError(t, store.ReplaceDocument("a.md", []domain.IndexEntry{
		entry("a.md", 0, []float32{2, 0}),
		entry("a.md", 1, []float32{3, 0}),
	}, now))

	hits, err := store.Search([]float32{1, 0}, 10, 0)
	require.NoError(t, err)

	require.Len(t, hits, 3)
	assert.Equal(t, "a.md#0", hits[0].ChunkID)
	assert.Equal(t, "a.md#1", hits[1].ChunkID)
	assert.Equal(t, "b.md#0", hits[2].ChunkID)
}

func TestStore_Search_Bounds(t *testing.T) {
	store := NewStore("test-model", 2)
	now := time.Now()

	require.NoError(t, store.ReplaceDocument("a.md", []domain.IndexEntry{
		entry("a.md", 0, []float32{1, 0}),
		entry("a.md", 1, []float32{0, 1}),
	}, now))

	hits, err := store.Search([]float32{1, 0}, 1, -1)
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	hits, err = store.Search([]float32{1, 0}, 0, -1)
	require.NoError(t, err)
	assert.Empty(t, hits)

	// Minimum score filters orthogonal chunks out.
	hits, err = store.Search([]float32{1, 0}, 10, 0.5)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestStore_Search_EmptyStore(t *testing.T) {
	store := NewStore("test-model", 2)

	hits, err := store.Search([]float32{1, 0}, 10, 0)

	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestStore_Search_DimensionMismatch(t *testing.T) {
	store := NewStore("test-model", 2)
	require.NoError(t, store.ReplaceDocument("a.md", []domain.IndexEntry{
		entry("a.md", 0, []float32{1, 0}),
	}, time.Now()))

	_, err := store.Search([]float32{1, 0, 0}, 10, 0)

	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestStore_DocumentVector_MeanOfChunks(t *testing.T) {
	store := NewStore("test-model", 2)

	require.NoError(t, store.ReplaceDocument("a.md", []domain.IndexEntry{
		entry("a.md", 0, []float32{1, 0}),
		entry("a.md", 1, []float32{0, 1}),
	}, time.Now()))

	vector, err := store.DocumentVector("a.md")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.5}, vector)

	_, err = store.DocumentVector("missing.md")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_Snapshot_Deterministic(t *testing.T) {
	store := NewStore("test-model", 2)
	now := time.Now()

	require.NoError(t, store.ReplaceDocument("b.md", []domain.IndexEntry{
		entry("b.md", 0, []float32{0, 1}),
	}, now))
	require.NoError(t, store.ReplaceDocument("a.md", []domain.IndexEntry{
		entry("a.md", 0, []float32{1, 0}),
		entry("a.md", 1, []float32{1, 1}),
	}, now))

	first := store.Snapshot()
	second := store.Snapshot()

	require.Len(t, first, 3)
	assert.Equal(t, "a.md#0", first[0].Chunk.ID)
	assert.Equal(t, "a.md#1", first[1].Chunk.ID)
	assert.Equal(t, "b.md#0", first[2].Chunk.ID)
	assert.Equal(t, first, second)
}

func TestStore_Reset(t *testing.T) {
	store := NewStore("old-model", 2)
	require.NoError(t, store.ReplaceDocument("a.md", []domain.IndexEntry{
		entry("a.md", 0, []float32{1, 0}),
	}, time.Now()))

	store.Reset("new-model", 4)

	assert.Equal(t, "new-model", store.ModelID())
	assert.Equal(t, 4, store.Dimensions())
	assert.Equal(t, 0, store.Len())
	assert.Empty(t, store.Paths())
}

func TestStore_EntriesForPath_ChunkOrder(t *testing.T) {
	store := NewStore("test-model", 2)

	require.NoError(t, store.ReplaceDocument("a.md", []domain.IndexEntry{
		entry("a.md", 0, []float32{1, 0}),
		entry("a.md", 1, []float32{0, 1}),
		entry("a.md", 2, []float32{1, 1}),
	}, time.Now()))

	entries, err := store.EntriesForPath("a.md")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i, e := range entries {
		assert.Equal(t, i, e.Chunk.Index)
	}

	_, err = store.EntriesForPath("missing.md")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
