package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"sync"

	"github.com/torque-labs/wrench-cli/internal/core/domain"
	"github.com/torque-labs/wrench-cli/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// maxCosineDistance is the distance assigned when either vector has zero
// norm. Zero vectors come from embedding fallback and must sort behind
// every real match.
const maxCosineDistance = 2.0

// record is one stored chunk with its embedding.
type record struct {
	vector   []float32
	document string
	metadata map[string]string
}

// Index is an in-memory implementation of driven.VectorIndex.
// Nothing survives a restart; it backs tests and throwaway sessions.
type Index struct {
	mu      sync.RWMutex
	records map[string]record
}

// NewIndex creates a new empty in-memory vector index.
func NewIndex() *Index {
	return &Index{
		records: make(map[string]record),
	}
}

// Upsert stores one batch of chunks, overwriting existing ids.
func (idx *Index) Upsert(_ context.Context, batch driven.Batch) error {
	if !batch.Aligned() {
		return fmt.Errorf("%w: batch slices are not aligned", domain.ErrInvalidInput)
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for i, id := range batch.IDs {
		idx.records[id] = record{
			vector:   batch.Vectors[i],
			document: batch.Documents[i],
			metadata: batch.Metadatas[i],
		}
	}
	return nil
}

// Query returns the k nearest chunks by ascending cosine distance.
func (idx *Index) Query(_ context.Context, vector []float32, k int) ([]domain.RetrievedChunk, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	results := make([]domain.RetrievedChunk, 0, len(idx.records))
	for id, rec := range idx.records {
		if len(rec.vector) != len(vector) {
			return nil, fmt.Errorf("query vector has %d dimensions, index has %d", len(vector), len(rec.vector))
		}
		results = append(results, retrievedChunk(id, rec, cosineDistance(vector, rec.vector)))
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].ID < results[j].ID
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Count returns the number of stored chunks.
func (idx *Index) Count(_ context.Context) (int, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.records), nil
}

// Sources returns the distinct source files with their chunk counts,
// sorted by name.
func (idx *Index) Sources(_ context.Context) ([]domain.SourceInfo, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	counts := make(map[string]int)
	for _, rec := range idx.records {
		counts[rec.metadata["source"]]++
	}

	sources := make([]domain.SourceInfo, 0, len(counts))
	for name, chunks := range counts {
		sources = append(sources, domain.SourceInfo{Name: name, Chunks: chunks})
	}
	sort.Slice(sources, func(i, j int) bool {
		return sources[i].Name < sources[j].Name
	})
	return sources, nil
}

// Pages returns every stored chunk for non-vector scanning.
func (idx *Index) Pages(_ context.Context) ([]domain.Chunk, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	chunks := make([]domain.Chunk, 0, len(idx.records))
	for id, rec := range idx.records {
		chunks = append(chunks, domain.Chunk{
			ID:        id,
			Source:    rec.metadata["source"],
			Page:      metadataInt(rec.metadata, "page"),
			CharStart: metadataInt(rec.metadata, "char_start"),
			Text:      rec.document,
		})
	}
	return chunks, nil
}

// DeleteSource removes all chunks belonging to a source file.
func (idx *Index) DeleteSource(_ context.Context, source string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for id, rec := range idx.records {
		if rec.metadata["source"] == source {
			delete(idx.records, id)
		}
	}
	return nil
}

// Reset drops every stored chunk.
func (idx *Index) Reset(_ context.Context) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.records = make(map[string]record)
	return nil
}

// Close releases resources (no-op for memory index).
func (idx *Index) Close() error {
	return nil
}

func retrievedChunk(id string, rec record, distance float64) domain.RetrievedChunk {
	return domain.RetrievedChunk{
		ID:       id,
		Source:   rec.metadata["source"],
		Page:     metadataInt(rec.metadata, "page"),
		Text:     rec.document,
		Distance: distance,
	}
}

func metadataInt(metadata map[string]string, key string) int {
	n, err := strconv.Atoi(metadata[key])
	if err != nil {
		return 0
	}
	return n
}

// cosineDistance is 1 minus the cosine similarity of a and b.
func cosineDistance(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return maxCosineDistance
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
