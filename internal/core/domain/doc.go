// Package domain defines the core business entities for Wrench.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Page: A page of text extracted from a manual
//   - Chunk: An indexable window of page text
//   - RetrievedChunk: A chunk returned by similarity search
//   - Turn: One utterance in an assistant conversation
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
