package driven

import (
	"context"

	"github.com/torque-labs/wrench-cli/internal/core/domain"
)

// VectorIndex stores chunk vectors and serves similarity search.
// The index is treated as a black box: implementations may use SQLite,
// Postgres with pgvector, or plain memory, but all honour the same
// batch and query contract.
type VectorIndex interface {
	// Upsert atomically writes one batch of chunks. Existing ids are
	// overwritten. Implementations must reject misaligned batches.
	Upsert(ctx context.Context, batch Batch) error

	// Query returns the k nearest chunks to the query vector, ordered by
	// ascending distance. Fewer than k results are returned when the
	// index holds fewer chunks.
	Query(ctx context.Context, vector []float32, k int) ([]domain.RetrievedChunk, error)

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)

	// Sources returns the distinct source files with their chunk counts.
	Sources(ctx context.Context) ([]domain.SourceInfo, error)

	// Pages returns every stored chunk's text with its source and page,
	// for non-vector scanning. Order is unspecified.
	Pages(ctx context.Context) ([]domain.Chunk, error)

	// DeleteSource removes all chunks belonging to a source file.
	DeleteSource(ctx context.Context, source string) error

	// Reset drops every stored chunk, returning the index to the
	// empty-workbench state.
	Reset(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// Batch carries parallel slices for one atomic upsert. Index i of every
// slice describes the same chunk; zero vectors from embedding fallback
// keep the alignment intact.
type Batch struct {
	// IDs are the chunk identifiers.
	IDs []string

	// Vectors are the embeddings, all of equal dimension.
	Vectors [][]float32

	// Documents are the chunk texts.
	Documents []string

	// Metadatas carry per-chunk source and page labels.
	Metadatas []map[string]string
}

// Len returns the batch size.
func (b Batch) Len() int {
	return len(b.IDs)
}

// Aligned reports whether all four slices have equal length.
func (b Batch) Aligned() bool {
	n := len(b.IDs)
	return len(b.Vectors) == n && len(b.Documents) == n && len(b.Metadatas) == n
}
