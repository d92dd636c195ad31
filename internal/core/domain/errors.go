package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrIndexEmpty indicates the vector store holds no chunks. This is
	// the empty-workbench state, distinct from a query with no relevant
	// matches, and is rendered explicitly to the user.
	ErrIndexEmpty = errors.New("index is empty")

	// ErrQueryEmbedding indicates the query could not be embedded.
	// Retrieval must not proceed with a junk vector; the assistant
	// degrades to an explicit no-retrieval state instead.
	ErrQueryEmbedding = errors.New("query embedding failed")

	// ErrUnsupportedType indicates an unknown file extension, provider,
	// or store backend.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrStoreUnavailable indicates the vector store is not configured.
	ErrStoreUnavailable = errors.New("vector store unavailable")

	// ErrIngestInProgress indicates an ingest run is already active.
	ErrIngestInProgress = errors.New("ingest in progress")
)

// BatchError reports a failed batch upsert during indexing. Batches
// committed before the failure stay committed; the error names exactly
// which chunk ids were lost so the run can be retried per source.
type BatchError struct {
	// Source is the file whose indexing failed.
	Source string

	// Batch is the 1-based batch number within the source.
	Batch int

	// IDs are the chunk ids the failed batch carried.
	IDs []string

	// Err is the underlying store error.
	Err error
}

// Error implements the error interface.
func (e *BatchError) Error() string {
	return fmt.Sprintf("batch %d for %s failed (%d chunks, %s..%s): %v",
		e.Batch, e.Source, len(e.IDs), e.firstID(), e.lastID(), e.Err)
}

// Unwrap returns the underlying store error.
func (e *BatchError) Unwrap() error {
	return e.Err
}

func (e *BatchError) firstID() string {
	if len(e.IDs) == 0 {
		return ""
	}
	return e.IDs[0]
}

func (e *BatchError) lastID() string {
	if len(e.IDs) == 0 {
		return ""
	}
	return e.IDs[len(e.IDs)-1]
}
