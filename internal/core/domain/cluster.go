package domain

// Cluster is a topic grouping of indexed chunks produced by theme
// extraction. Clusters are recomputed wholesale on each run; stale
// clusters are replaced, never patched.
type Cluster struct {
	// ID is the cluster's ordinal, assigned after sorting by size.
	ID int

	// MemberChunkIDs lists the chunks assigned to this cluster,
	// ordered by chunk ID for determinism.
	MemberChunkIDs []string

	// Paths lists the distinct document paths contributing members.
	Paths []string

	// Centroid is the mean vector of the members.
	Centroid []float32

	// TopTerms are the highest-frequency non-stopword terms across the
	// members' text, most frequent first. A textual signal, independent
	// of the embedding model.
	TopTerms []string

	// Preview is text from the member chunk closest to the centroid.
	Preview string
}

// Connection is a suggested relationship between two documents.
// Pairs are undirected and reported once, with PathA < PathB.
type Connection struct {
	// PathA and PathB are the related documents.
	PathA string
	PathB string

	// Score is the cosine similarity between the two documents'
	// aggregate vectors.
	Score float64

	// SharedTerms are top terms common to both documents, giving a
	// human-readable rationale for the suggestion.
	SharedTerms []string
}

// TagSuggestion is a ranked vocabulary term proposed for a document.
type TagSuggestion struct {
	// Tag is the suggested term, lowercased.
	Tag string

	// Confidence blends cluster membership strength and in-document
	// term frequency, normalised to [0, 1].
	Confidence float64
}
