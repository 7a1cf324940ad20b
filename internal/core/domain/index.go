package domain

import "time"

// DocumentFailure records one document that could not be indexed.
type DocumentFailure struct {
	// Path is the failed document.
	Path string

	// Reason describes why indexing failed.
	Reason string
}

// IndexReport summarises one index build or update run.
// Per-document failures are collected here rather than aborting the run.
type IndexReport struct {
	// RunID uniquely identifies this run.
	RunID string

	// Indexed is the number of documents re-embedded in this run.
	Indexed int

	// Deleted is the number of documents removed from the index because
	// they disappeared from the corpus.
	Deleted int

	// Unchanged is the number of documents left untouched.
	Unchanged int

	// FullRebuild reports whether the whole index was rebuilt from scratch.
	FullRebuild bool

	// Failures lists documents that could not be indexed, with reasons.
	Failures []DocumentFailure

	// Duration is the wall-clock time of the run.
	Duration time.Duration
}

// ProgressEvent reports rebuild progress to a caller-supplied callback.
type ProgressEvent struct {
	// Path is the document just completed.
	Path string

	// Completed is the number of stale documents processed so far.
	Completed int

	// Total is the number of stale documents in this run.
	Total int
}

// StalePlan partitions a corpus listing against the cached index state.
type StalePlan struct {
	// Stale lists documents that are new or whose ModifiedAt advanced
	// past the cached value, in path order.
	Stale []DocumentInfo

	// Deleted lists paths present in the index but absent from the
	// corpus listing, in path order.
	Deleted []string

	// Unchanged is the number of documents needing no work.
	Unchanged int
}
