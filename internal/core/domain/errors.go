package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrProviderUnavailable indicates the embedding backend is missing or
	// unconfigured. Semantic features are disabled; text-only features
	// continue working.
	ErrProviderUnavailable = errors.New("embedding provider unavailable")

	// ErrProviderTimeout indicates an embedding call exceeded its deadline.
	// Transient; the specific batch is safe to retry.
	ErrProviderTimeout = errors.New("embedding provider timeout")

	// ErrDimensionMismatch indicates a vector's dimension does not match the
	// index. Structural; vectors are never silently truncated or padded.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrIndexIncompatible indicates a persisted index was built with a
	// different model or dimension than the configured provider.
	// A full rebuild is required before any further query is served.
	ErrIndexIncompatible = errors.New("index incompatible with configured provider")

	// ErrCorpusRead indicates a specific document could not be read from the
	// corpus. Per-document; rebuilds skip the document and continue.
	ErrCorpusRead = errors.New("corpus read failed")

	// ErrRebuildInProgress indicates an index rebuild is already running.
	ErrRebuildInProgress = errors.New("rebuild in progress")
)
