// Package domain defines the core business entities for Vaultika.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A note with its full text and modification time
//   - Chunk: A bounded span of a document used as the unit of embedding
//   - IndexEntry: A chunk plus its embedding vector and staleness metadata
//   - Cluster: A topic grouping produced by theme extraction
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
