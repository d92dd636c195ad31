package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/torque-labs/wrench-cli/internal/core/domain"
)

// --- Mock implementations for embedder testing ---
// Note: These are prefixed with "embed" to avoid conflicts with other test files.

// embedMockService implements driven.EmbeddingService for testing.
type embedMockService struct {
	dims   int
	failOn map[string]error
	calls  []string
}

func (m *embedMockService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.calls = append(m.calls, text)
	if err, ok := m.failOn[text]; ok {
		return nil, err
	}
	vec := make([]float32, m.dims)
	if m.dims > 0 {
		vec[0] = 1
	}
	return vec, nil
}

func (m *embedMockService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vec, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, vec)
	}
	return vectors, nil
}

func (m *embedMockService) Dimensions() int { return m.dims }

func (m *embedMockService) ModelName() string { return "all-minilm" }

func (m *embedMockService) Ping(_ context.Context) error { return nil }

func (m *embedMockService) Close() error { return nil }

func TestNewFallbackEmbedder(t *testing.T) {
	embedder := NewFallbackEmbedder(&embedMockService{dims: 4})

	require.NotNil(t, embedder)
	assert.Nil(t, embedder.limiter)
	assert.Equal(t, 4, embedder.Dimensions())
	assert.Equal(t, "all-minilm", embedder.ModelName())
}

func TestNewFallbackEmbedder_WithRateLimit(t *testing.T) {
	embedder := NewFallbackEmbedder(&embedMockService{dims: 4}, WithRateLimit(100))
	assert.NotNil(t, embedder.limiter)

	// Non-positive rates disable pacing
	embedder = NewFallbackEmbedder(&embedMockService{dims: 4}, WithRateLimit(0))
	assert.Nil(t, embedder.limiter)
}

func TestFallbackEmbedder_EmbedDocuments(t *testing.T) {
	service := &embedMockService{dims: 3}
	embedder := NewFallbackEmbedder(service)

	vectors, fallbacks, err := embedder.EmbedDocuments(context.Background(), []string{"one", "two", "three"})

	require.NoError(t, err)
	assert.Equal(t, 0, fallbacks)
	require.Len(t, vectors, 3)
	assert.Equal(t, []string{"one", "two", "three"}, service.calls)
	for _, vec := range vectors {
		assert.Len(t, vec, 3)
	}
}

func TestFallbackEmbedder_EmbedDocuments_ZeroVectorOnFailure(t *testing.T) {
	service := &embedMockService{
		dims:   3,
		failOn: map[string]error{"two": errors.New("model not loaded")},
	}
	embedder := NewFallbackEmbedder(service)

	vectors, fallbacks, err := embedder.EmbedDocuments(context.Background(), []string{"one", "two", "three"})

	require.NoError(t, err)
	assert.Equal(t, 1, fallbacks)
	require.Len(t, vectors, 3)

	// The failed slot holds a zero vector of the model's dimension
	assert.Equal(t, []float32{0, 0, 0}, vectors[1])
	assert.NotEqual(t, []float32{0, 0, 0}, vectors[0])
	assert.NotEqual(t, []float32{0, 0, 0}, vectors[2])

	assert.Equal(t, int64(1), embedder.FallbackCount())
}

func TestFallbackEmbedder_EmbedDocuments_ContextCancelled(t *testing.T) {
	embedder := NewFallbackEmbedder(&embedMockService{dims: 3})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := embedder.EmbedDocuments(ctx, []string{"one"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFallbackEmbedder_EmbedDocuments_UnknownDimensions(t *testing.T) {
	// A service that cannot report its dimension still yields usable
	// zero vectors, sized from the stock model
	service := &embedMockService{
		dims:   0,
		failOn: map[string]error{"broken": errors.New("boom")},
	}
	embedder := NewFallbackEmbedder(service)

	vectors, fallbacks, err := embedder.EmbedDocuments(context.Background(), []string{"broken"})

	require.NoError(t, err)
	assert.Equal(t, 1, fallbacks)
	require.Len(t, vectors, 1)
	assert.Len(t, vectors[0], domain.DefaultAppSettings().Embedding.Dimensions)
}

func TestFallbackEmbedder_EmbedQuery(t *testing.T) {
	embedder := NewFallbackEmbedder(&embedMockService{dims: 3})

	vector, err := embedder.EmbedQuery(context.Background(), "how do I adjust the chain")

	require.NoError(t, err)
	assert.Len(t, vector, 3)
}

func TestFallbackEmbedder_EmbedQuery_PropagatesFailure(t *testing.T) {
	service := &embedMockService{
		dims:   3,
		failOn: map[string]error{"query": errors.New("connection refused")},
	}
	embedder := NewFallbackEmbedder(service)

	_, err := embedder.EmbedQuery(context.Background(), "query")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrQueryEmbedding)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestFallbackEmbedder_RateLimitedStillEmbeds(t *testing.T) {
	service := &embedMockService{dims: 2}
	embedder := NewFallbackEmbedder(service, WithRateLimit(1000))

	vectors, fallbacks, err := embedder.EmbedDocuments(context.Background(), []string{"a", "b", "c"})

	require.NoError(t, err)
	assert.Equal(t, 0, fallbacks)
	assert.Len(t, vectors, 3)
}
