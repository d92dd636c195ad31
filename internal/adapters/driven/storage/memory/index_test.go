package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/torque-labs/wrench-cli/internal/core/domain"
	"github.com/torque-labs/wrench-cli/internal/core/ports/driven"
)

func chunkBatch(chunks []domain.Chunk, vectors [][]float32) driven.Batch {
	batch := driven.Batch{}
	for i, c := range chunks {
		batch.IDs = append(batch.IDs, c.ID)
		batch.Vectors = append(batch.Vectors, vectors[i])
		batch.Documents = append(batch.Documents, c.Text)
		batch.Metadatas = append(batch.Metadatas, c.Metadata())
	}
	return batch
}

func TestNewIndex(t *testing.T) {
	idx := NewIndex()
	require.NotNil(t, idx)
	assert.NotNil(t, idx.records)
}

func TestIndex_Upsert_Query(t *testing.T) {
	idx := NewIndex()
	ctx := context.Background()

	chunks := []domain.Chunk{
		{ID: "FS55.pdf_0", Source: "FS55.pdf", Page: 1, Text: "carburettor adjustment"},
		{ID: "FS55.pdf_1", Source: "FS55.pdf", Page: 2, Text: "spark plug gap"},
		{ID: "MS180.pdf_0", Source: "MS180.pdf", Page: 1, Text: "chain tension"},
	}
	vectors := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}

	err := idx.Upsert(ctx, chunkBatch(chunks, vectors))
	require.NoError(t, err)

	results, err := idx.Query(ctx, []float32{1, 0.1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Nearest first
	assert.Equal(t, "FS55.pdf_0", results[0].ID)
	assert.Equal(t, "FS55.pdf", results[0].Source)
	assert.Equal(t, 1, results[0].Page)
	assert.Equal(t, "carburettor adjustment", results[0].Text)
	assert.Less(t, results[0].Distance, results[1].Distance)
}

func TestIndex_Upsert_OverwritesExistingID(t *testing.T) {
	idx := NewIndex()
	ctx := context.Background()

	chunk := domain.Chunk{ID: "FS55.pdf_0", Source: "FS55.pdf", Page: 1, Text: "first"}
	require.NoError(t, idx.Upsert(ctx, chunkBatch([]domain.Chunk{chunk}, [][]float32{{1, 0}})))

	chunk.Text = "second"
	require.NoError(t, idx.Upsert(ctx, chunkBatch([]domain.Chunk{chunk}, [][]float32{{0, 1}})))

	count, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	results, err := idx.Query(ctx, []float32{0, 1}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "second", results[0].Text)
}

func TestIndex_Upsert_MisalignedBatch(t *testing.T) {
	idx := NewIndex()

	batch := driven.Batch{
		IDs:       []string{"a", "b"},
		Vectors:   [][]float32{{1}},
		Documents: []string{"one", "two"},
		Metadatas: []map[string]string{{}, {}},
	}

	err := idx.Upsert(context.Background(), batch)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIndex_Query_FewerThanK(t *testing.T) {
	idx := NewIndex()
	ctx := context.Background()

	chunk := domain.Chunk{ID: "FS55.pdf_0", Source: "FS55.pdf", Page: 1, Text: "only one"}
	require.NoError(t, idx.Upsert(ctx, chunkBatch([]domain.Chunk{chunk}, [][]float32{{1, 0}})))

	results, err := idx.Query(ctx, []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestIndex_Query_ZeroVectorSortsLast(t *testing.T) {
	idx := NewIndex()
	ctx := context.Background()

	chunks := []domain.Chunk{
		{ID: "a_0", Source: "a", Page: 1, Text: "real embedding"},
		{ID: "b_0", Source: "b", Page: 1, Text: "fallback zero vector"},
	}
	vectors := [][]float32{
		{-1, 0}, // Opposite direction, distance 2 minus epsilon at worst
		{0, 0},
	}
	require.NoError(t, idx.Upsert(ctx, chunkBatch(chunks, vectors)))

	results, err := idx.Query(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, maxCosineDistance, results[1].Distance)
}

func TestIndex_Query_DimensionMismatch(t *testing.T) {
	idx := NewIndex()
	ctx := context.Background()

	chunk := domain.Chunk{ID: "a_0", Source: "a", Page: 1, Text: "three dims"}
	require.NoError(t, idx.Upsert(ctx, chunkBatch([]domain.Chunk{chunk}, [][]float32{{1, 0, 0}})))

	_, err := idx.Query(ctx, []float32{1, 0}, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimensions")
}

func TestIndex_Query_InvalidK(t *testing.T) {
	idx := NewIndex()

	_, err := idx.Query(context.Background(), []float32{1}, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIndex_Sources(t *testing.T) {
	idx := NewIndex()
	ctx := context.Background()

	chunks := []domain.Chunk{
		{ID: "b.pdf_0", Source: "b.pdf", Page: 1, Text: "x"},
		{ID: "a.pdf_0", Source: "a.pdf", Page: 1, Text: "y"},
		{ID: "a.pdf_1", Source: "a.pdf", Page: 2, Text: "z"},
	}
	vectors := [][]float32{{1}, {1}, {1}}
	require.NoError(t, idx.Upsert(ctx, chunkBatch(chunks, vectors)))

	sources, err := idx.Sources(ctx)
	require.NoError(t, err)
	require.Len(t, sources, 2)

	// Sorted by name
	assert.Equal(t, "a.pdf", sources[0].Name)
	assert.Equal(t, 2, sources[0].Chunks)
	assert.Equal(t, "b.pdf", sources[1].Name)
	assert.Equal(t, 1, sources[1].Chunks)
}

func TestIndex_Pages_RoundTripsMetadata(t *testing.T) {
	idx := NewIndex()
	ctx := context.Background()

	chunk := domain.Chunk{ID: "FS55.pdf_3", Source: "FS55.pdf", Page: 7, CharStart: 2400, Text: "fuel mix ratio"}
	require.NoError(t, idx.Upsert(ctx, chunkBatch([]domain.Chunk{chunk}, [][]float32{{1}})))

	pages, err := idx.Pages(ctx)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, chunk, pages[0])
}

func TestIndex_DeleteSource(t *testing.T) {
	idx := NewIndex()
	ctx := context.Background()

	chunks := []domain.Chunk{
		{ID: "keep.pdf_0", Source: "keep.pdf", Page: 1, Text: "x"},
		{ID: "drop.pdf_0", Source: "drop.pdf", Page: 1, Text: "y"},
		{ID: "drop.pdf_1", Source: "drop.pdf", Page: 2, Text: "z"},
	}
	vectors := [][]float32{{1}, {1}, {1}}
	require.NoError(t, idx.Upsert(ctx, chunkBatch(chunks, vectors)))

	require.NoError(t, idx.DeleteSource(ctx, "drop.pdf"))

	sources, err := idx.Sources(ctx)
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "keep.pdf", sources[0].Name)
}

func TestIndex_Reset(t *testing.T) {
	idx := NewIndex()
	ctx := context.Background()

	chunk := domain.Chunk{ID: "a_0", Source: "a", Page: 1, Text: "x"}
	require.NoError(t, idx.Upsert(ctx, chunkBatch([]domain.Chunk{chunk}, [][]float32{{1}})))

	require.NoError(t, idx.Reset(ctx))

	count, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestIndex_ConcurrentAccess(t *testing.T) {
	idx := NewIndex()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			chunk := domain.Chunk{
				ID:     domain.ChunkID("concurrent.pdf", n),
				Source: "concurrent.pdf",
				Page:   1,
				Text:   "chunk",
			}
			_ = idx.Upsert(ctx, chunkBatch([]domain.Chunk{chunk}, [][]float32{{1, 0}}))
			_, _ = idx.Query(ctx, []float32{1, 0}, 3)
		}(i)
	}
	wg.Wait()

	count, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, count)
}

func TestCosineDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, 2},
		{"zero norm", []float32{1, 0}, []float32{0, 0}, maxCosineDistance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, cosineDistance(tt.a, tt.b), 1e-9)
		})
	}
}
