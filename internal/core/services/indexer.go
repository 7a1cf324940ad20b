package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vaultika/vaultika-cli/internal/core/domain"
	"github.com/vaultika/vaultika-cli/internal/core/index"
	"github.com/vaultika/vaultika-cli/internal/core/ports/driven"
	"github.com/vaultika/vaultika-cli/internal/core/ports/driving"
	"github.com/vaultika/vaultika-cli/internal/logger"
	"github.com/vaultika/vaultika-cli/internal/postprocessors/chunker"
)

// Ensure Indexer implements the interface.
var _ driving.Indexer = (*Indexer)(nil)

// Default indexer tuning.
const (
	DefaultWorkers      = 4
	DefaultBatchSize    = 32
	DefaultEmbedTimeout = 60 * time.Second
)

// Chunker splits a document into embedding units.
type Chunker interface {
	Chunk(doc domain.Document) []domain.Chunk
}

// Indexer builds and maintains the embedding index. Rebuild work runs on
// a bounded worker pool, one document per worker at a time; no two
// workers ever touch the same document.
type Indexer struct {
	corpus    driven.CorpusSource
	embedder  driven.EmbeddingService
	snapshots driven.IndexStore
	store     *index.Store
	chunker   Chunker

	workers      int
	batchSize    int
	embedTimeout time.Duration
	progress     func(domain.ProgressEvent)

	// runMu serialises rebuild runs; readers are never blocked by it,
	// only by the store's own write lock during document swaps.
	runMu  sync.Mutex
	loadMu sync.Mutex
	loaded bool

	// active guards against duplicate embedding work when two triggers
	// race on the same path.
	activeMu sync.Mutex
	active   map[string]struct{}
}

// IndexerOption configures the indexer.
type IndexerOption func(*Indexer)

// WithWorkers sets the rebuild worker pool size.
func WithWorkers(n int) IndexerOption {
	return func(ix *Indexer) {
		if n > 0 {
			ix.workers = n
		}
	}
}

// WithBatchSize sets the embedding batch size.
func WithBatchSize(n int) IndexerOption {
	return func(ix *Indexer) {
		if n > 0 {
			ix.batchSize = n
		}
	}
}

// WithEmbedTimeout sets the per-batch embedding call timeout.
func WithEmbedTimeout(d time.Duration) IndexerOption {
	return func(ix *Indexer) {
		if d > 0 {
			ix.embedTimeout = d
		}
	}
}

// WithProgress sets a callback invoked after each document completes.
func WithProgress(fn func(domain.ProgressEvent)) IndexerOption {
	return func(ix *Indexer) {
		ix.progress = fn
	}
}

// WithChunker overrides the default chunker.
func WithChunker(c Chunker) IndexerOption {
	return func(ix *Indexer) {
		if c != nil {
			ix.chunker = c
		}
	}
}

// NewIndexer creates an indexer over the given corpus and provider.
// The embedder may be nil, in which case all operations report
// domain.ErrProviderUnavailable. The snapshot store may be nil for a
// purely in-memory index.
func NewIndexer(
	corpus driven.CorpusSource,
	embedder driven.EmbeddingService,
	snapshots driven.IndexStore,
	opts ...IndexerOption,
) *Indexer {
	modelID := ""
	dimensions := 0
	if embedder != nil {
		modelID = embedder.ModelID()
		dimensions = embedder.Dimensions()
	}

	ix := &Indexer{
		corpus:       corpus,
		embedder:     embedder,
		snapshots:    snapshots,
		store:        index.NewStore(modelID, dimensions),
		chunker:      chunker.New(),
		workers:      DefaultWorkers,
		batchSize:    DefaultBatchSize,
		embedTimeout: DefaultEmbedTimeout,
		active:       make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Store exposes the in-memory index for the query services.
func (ix *Indexer) Store() *index.Store {
	return ix.store
}

// BuildOrUpdate reconciles the index against the current corpus.
// Only stale documents are re-embedded; documents that vanished from the
// corpus are removed. A persisted snapshot built with a different model
// forces a full rebuild instead of serving incomparable vectors.
func (ix *Indexer) BuildOrUpdate(ctx context.Context) (*domain.IndexReport, error) {
	if !ix.runMu.TryLock() {
		return nil, domain.ErrRebuildInProgress
	}
	defer ix.runMu.Unlock()

	if ix.embedder == nil {
		return nil, domain.ErrProviderUnavailable
	}

	full := false
	if err := ix.ensureLoaded(ctx); err != nil {
		if !errors.Is(err, domain.ErrIndexIncompatible) {
			return nil, err
		}
		logger.Warn("Persisted index incompatible with model %s; forcing full rebuild", ix.embedder.ModelID())
		ix.resetToProvider()
		full = true
	}

	return ix.run(ctx, full)
}

// FullRebuild discards the index and rebuilds it from scratch.
func (ix *Indexer) FullRebuild(ctx context.Context) (*domain.IndexReport, error) {
	if !ix.runMu.TryLock() {
		return nil, domain.ErrRebuildInProgress
	}
	defer ix.runMu.Unlock()

	if ix.embedder == nil {
		return nil, domain.ErrProviderUnavailable
	}

	ix.resetToProvider()
	return ix.run(ctx, true)
}

// Open hydrates the in-memory index from the persisted snapshot without
// rebuilding. Query services call this before serving from a fresh
// process. Returns domain.ErrIndexIncompatible when the snapshot was
// built with a different model than the configured provider.
func (ix *Indexer) Open(ctx context.Context) error {
	return ix.ensureLoaded(ctx)
}

// Stats summarises the indexed corpus.
func (ix *Indexer) Stats(ctx context.Context) (*domain.VaultStats, error) {
	if err := ix.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	stats := &domain.VaultStats{
		ModelID:    ix.store.ModelID(),
		Dimensions: ix.store.Dimensions(),
	}
	for _, entry := range ix.store.Snapshot() {
		stats.Chunks++
		stats.Words += len(strings.Fields(entry.Chunk.Text))
	}
	stats.Documents = ix.store.DocumentCount()
	return stats, nil
}

// resetToProvider rebinds the store to the configured provider's model.
func (ix *Indexer) resetToProvider() {
	ix.loadMu.Lock()
	defer ix.loadMu.Unlock()
	ix.store.Reset(ix.embedder.ModelID(), ix.embedder.Dimensions())
	ix.loaded = true
}

// ensureLoaded hydrates the in-memory store from the snapshot store once.
// A snapshot whose header does not match the configured provider returns
// domain.ErrIndexIncompatible rather than loading wrong-dimension vectors.
func (ix *Indexer) ensureLoaded(ctx context.Context) error {
	ix.loadMu.Lock()
	defer ix.loadMu.Unlock()

	if ix.loaded || ix.snapshots == nil {
		ix.loaded = true
		return nil
	}

	snapshot, err := ix.snapshots.Load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			ix.loaded = true
			return nil
		}
		return fmt.Errorf("load index snapshot: %w", err)
	}

	switch {
	case ix.embedder == nil:
		// Text-only mode: serve the snapshot as-is. Vector queries are
		// gated separately on provider availability.
		ix.store.Reset(snapshot.ModelID, snapshot.Dimensions)
	case snapshot.ModelID != ix.embedder.ModelID() || snapshot.Dimensions != ix.embedder.Dimensions():
		return fmt.Errorf("snapshot built with %s/%d, provider is %s/%d: %w",
			snapshot.ModelID, snapshot.Dimensions,
			ix.embedder.ModelID(), ix.embedder.Dimensions(),
			domain.ErrIndexIncompatible)
	}

	byPath := make(map[string][]domain.IndexEntry)
	for _, entry := range snapshot.Entries {
		byPath[entry.Chunk.Path] = append(byPath[entry.Chunk.Path], entry)
	}
	for path, entries := range byPath {
		if err := ix.store.ReplaceDocument(path, entries, entries[0].DocumentModifiedAt); err != nil {
			return fmt.Errorf("restore document %s: %w", path, err)
		}
	}

	logger.Info("Loaded index snapshot: %d chunks, %d documents", len(snapshot.Entries), len(byPath))
	ix.loaded = true
	return nil
}

// run executes one rebuild cycle: plan, delete orphans, re-embed stale
// documents on the worker pool, then flush the snapshot.
func (ix *Indexer) run(ctx context.Context, full bool) (*domain.IndexReport, error) {
	started := time.Now()
	report := &domain.IndexReport{
		RunID:       uuid.New().String(),
		FullRebuild: full,
	}

	logger.Section("Index Build")
	logger.Debug("Run %s (full=%t)", report.RunID, full)

	listing, err := ix.corpus.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list corpus: %w", err)
	}

	plan := ix.store.StaleDocuments(listing)
	if full {
		plan = domain.StalePlan{Stale: listing}
	}
	logger.Info("Plan: %d stale, %d deleted, %d unchanged",
		len(plan.Stale), len(plan.Deleted), plan.Unchanged)

	for _, path := range plan.Deleted {
		ix.store.DeleteDocument(path)
		report.Deleted++
	}
	report.Unchanged = plan.Unchanged

	runErr := ix.processStale(ctx, plan.Stale, report)

	// Flush even after cancellation: completed documents are retained,
	// not-yet-started documents remain stale for the next run. The save
	// runs on a detached context, otherwise a cancelled run could never
	// persist the work it finished.
	if ix.snapshots != nil {
		snapshot := driven.IndexSnapshot{
			ModelID:    ix.store.ModelID(),
			Dimensions: ix.store.Dimensions(),
			Entries:    ix.store.Snapshot(),
		}
		if err := ix.snapshots.Save(context.WithoutCancel(ctx), snapshot); err != nil {
			if runErr == nil {
				return nil, fmt.Errorf("persist index: %w", err)
			}
			logger.Warn("Failed to persist index after interrupted run: %v", err)
		}
	}

	report.Duration = time.Since(started)
	logger.Info("Indexed %d, deleted %d, failed %d in %s",
		report.Indexed, report.Deleted, len(report.Failures), report.Duration)

	if runErr != nil {
		return report, runErr
	}
	return report, nil
}

// processStale re-embeds the stale documents on a bounded worker pool.
// Cancellation is honoured between documents, never mid-document, so no
// document is left with partial entries.
func (ix *Indexer) processStale(ctx context.Context, stale []domain.DocumentInfo, report *domain.IndexReport) error {
	if len(stale) == 0 {
		return nil
	}

	jobs := make(chan domain.DocumentInfo)
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		completed int
	)

	for w := 0; w < ix.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for info := range jobs {
				err := ix.indexDocument(ctx, info)

				mu.Lock()
				completed++
				done := completed
				if err != nil {
					logger.Warn("Failed to index %s: %v", info.Path, err)
					report.Failures = append(report.Failures, domain.DocumentFailure{
						Path:   info.Path,
						Reason: err.Error(),
					})
				} else {
					report.Indexed++
				}
				mu.Unlock()

				if ix.progress != nil {
					ix.progress(domain.ProgressEvent{
						Path:      info.Path,
						Completed: done,
						Total:     len(stale),
					})
				}
			}
		}()
	}

dispatch:
	for _, info := range stale {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- info:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("rebuild cancelled: %w", err)
	}
	return nil
}

// indexDocument owns one document's chunk and embedding lifecycle:
// fetch, chunk, embed in batches, then atomically swap the document's
// entries in the store.
func (ix *Indexer) indexDocument(ctx context.Context, info domain.DocumentInfo) error {
	if !ix.reserve(info.Path) {
		logger.Debug("Skipping %s: rebuild already in flight", info.Path)
		return nil
	}
	defer ix.release(info.Path)

	content, err := ix.corpus.Fetch(ctx, info.Path)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}

	doc := domain.Document{Path: info.Path, Content: content, ModifiedAt: info.ModifiedAt}
	chunks := ix.chunker.Chunk(doc)
	logger.Debug("Chunked %s into %d chunks", info.Path, len(chunks))

	entries := make([]domain.IndexEntry, 0, len(chunks))
	for start := 0; start < len(chunks); start += ix.batchSize {
		end := start + ix.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}

		vectors, err := ix.embedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed batch: %w", err)
		}
		if len(vectors) != len(batch) {
			return fmt.Errorf("provider returned %d vectors for %d texts: %w",
				len(vectors), len(batch), domain.ErrInvalidInput)
		}

		for i, c := range batch {
			entries = append(entries, domain.IndexEntry{
				Chunk:              c,
				Embedding:          vectors[i],
				DocumentModifiedAt: info.ModifiedAt,
			})
		}
	}

	if err := ix.store.ReplaceDocument(info.Path, entries, info.ModifiedAt); err != nil {
		return fmt.Errorf("store document: %w", err)
	}
	return nil
}

// embedBatch calls the provider under the configured timeout.
func (ix *Indexer) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embedCtx, cancel := context.WithTimeout(ctx, ix.embedTimeout)
	defer cancel()

	vectors, err := ix.embedder.EmbedBatch(embedCtx, texts)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrProviderTimeout, err)
		}
		return nil, err
	}
	return vectors, nil
}

func (ix *Indexer) reserve(path string) bool {
	ix.activeMu.Lock()
	defer ix.activeMu.Unlock()
	if _, busy := ix.active[path]; busy {
		return false
	}
	ix.active[path] = struct{}{}
	return true
}

func (ix *Indexer) release(path string) {
	ix.activeMu.Lock()
	defer ix.activeMu.Unlock()
	delete(ix.active, path)
}
