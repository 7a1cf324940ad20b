package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vaultika/vaultika-cli/internal/core/domain"
	"github.com/vaultika/vaultika-cli/internal/core/index"
	"github.com/vaultika/vaultika-cli/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockCorpus implements driven.CorpusSource for testing.
type mockCorpus struct {
	mu       sync.Mutex
	docs     map[string]mockDoc
	listErr  error
	fetchErr map[string]error
}

type mockDoc struct {
	content    string
	modifiedAt time.Time
}

func newMockCorpus() *mockCorpus {
	return &mockCorpus{
		docs:     make(map[string]mockDoc),
		fetchErr: make(map[string]error),
	}
}

func (m *mockCorpus) put(path, content string, modifiedAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[path] = mockDoc{content: content, modifiedAt: modifiedAt}
}

func (m *mockCorpus) remove(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, path)
}

func (m *mockCorpus) List(_ context.Context) ([]domain.DocumentInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	listing := make([]domain.DocumentInfo, 0, len(m.docs))
	for path, doc := range m.docs {
		listing = append(listing, domain.DocumentInfo{Path: path, ModifiedAt: doc.modifiedAt})
	}
	sort.Slice(listing, func(i, j int) bool { return listing[i].Path < listing[j].Path })
	return listing, nil
}

func (m *mockCorpus) Fetch(_ context.Context, path string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fetchErr[path]; err != nil {
		return "", err
	}
	doc, ok := m.docs[path]
	if !ok {
		return "", domain.ErrCorpusRead
	}
	return doc.content, nil
}

func (m *mockCorpus) Watch(_ context.Context) (<-chan struct{}, error) {
	return make(chan struct{}), nil
}

func (m *mockCorpus) Close() error {
	return nil
}

// mockEmbedder implements driven.EmbeddingService for testing. The
// embedding function is a pure function of the text, so identical text
// always yields an identical vector.
type mockEmbedder struct {
	mu       sync.Mutex
	embedded []string
	batches  int

	model   string
	dims    int
	embedFn func(text string) []float32
	err     error

	// onBatch, when set, runs before each batch embeds.
	onBatch func()
}

func newMockEmbedder() *mockEmbedder {
	return &mockEmbedder{
		model:   "mock-embed",
		dims:    4,
		embedFn: topicEmbedding,
	}
}

// topicEmbedding maps text onto fixed topic axes by keyword counting.
// The constant last component keeps off-topic text from embedding to the
// zero vector.
func topicEmbedding(text string) []float32 {
	topics := [][]string{
		{"neural", "network", "learning", "gradient", "backpropagation", "training", "machine"},
		{"pasta", "sauce", "cooking", "recipe", "simmer", "tomato"},
		{"garden", "soil", "plant", "compost"},
	}
	lower := strings.ToLower(text)
	v := make([]float32, 4)
	for i, words := range topics {
		for _, w := range words {
			v[i] += float32(strings.Count(lower, w))
		}
	}
	v[3] = 0.1
	return v
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	m.embedded = append(m.embedded, text)
	m.mu.Unlock()
	return m.embedFn(text), nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	m.batches++
	onBatch := m.onBatch
	m.mu.Unlock()
	if onBatch != nil {
		onBatch()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		m.mu.Lock()
		m.embedded = append(m.embedded, text)
		m.mu.Unlock()
		vectors[i] = m.embedFn(text)
	}
	return vectors, nil
}

func (m *mockEmbedder) embeddedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.embedded)
}

func (m *mockEmbedder) Dimensions() int {
	return m.dims
}

func (m *mockEmbedder) ModelID() string {
	return m.model
}

func (m *mockEmbedder) Ping(_ context.Context) error {
	return nil
}

func (m *mockEmbedder) Close() error {
	return nil
}

// memorySnapshots implements driven.IndexStore in memory for testing.
type memorySnapshots struct {
	mu       sync.Mutex
	snapshot *driven.IndexSnapshot
	saves    int
	saveErr  error
	loadErr  error
}

func (m *memorySnapshots) Save(_ context.Context, snapshot driven.IndexSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	copied := snapshot
	copied.Entries = append([]domain.IndexEntry(nil), snapshot.Entries...)
	m.snapshot = &copied
	m.saves++
	return nil
}

func (m *memorySnapshots) Load(_ context.Context) (*driven.IndexSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.snapshot == nil {
		return nil, domain.ErrNotFound
	}
	copied := *m.snapshot
	copied.Entries = append([]domain.IndexEntry(nil), m.snapshot.Entries...)
	return &copied, nil
}

func (m *memorySnapshots) Close() error {
	return nil
}

func (m *memorySnapshots) saved() *driven.IndexSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot
}

// emptyStore returns an index store with no entries.
func emptyStore() *index.Store {
	return index.NewStore("mock-embed", 4)
}

// --- Test fixtures ---

var fixtureBase = time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC)

// seedVault fills the corpus with the three-note fixture: two related
// machine-learning notes and one cooking note.
func seedVault(corpus *mockCorpus) {
	corpus.put("ml/neural-networks.md",
		"Neural networks are machine learning models built from layers of units. "+
			"A network transforms inputs through weighted connections during learning.",
		fixtureBase)
	corpus.put("ml/backpropagation.md",
		"Backpropagation computes the gradient of the loss for network training. "+
			"Gradient descent drives the learning of every neural model.",
		fixtureBase.Add(time.Minute))
	corpus.put("kitchen/pasta.md",
		"Simmer the tomato sauce slowly and season well before serving. "+
			"A good pasta recipe needs patience in the cooking and tasting.",
		fixtureBase.Add(2*time.Minute))
}

// builtIndexer returns an indexer whose store is already populated from
// the seeded corpus.
func builtIndexer(ctx context.Context, corpus *mockCorpus, embedder *mockEmbedder, snapshots driven.IndexStore) (*Indexer, error) {
	ix := NewIndexer(corpus, embedder, snapshots)
	_, err := ix.BuildOrUpdate(ctx)
	return ix, err
}
