package services

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/time/rate"

	"github.com/torque-labs/wrench-cli/internal/core/domain"
	"github.com/torque-labs/wrench-cli/internal/core/ports/driven"
	"github.com/torque-labs/wrench-cli/internal/logger"
)

// FallbackEmbedder wraps an embedding service with the ingestion
// failure policy. Document embedding never fails: a chunk whose
// embedding call errors gets an all-zero vector of the model's
// dimension so batch alignment survives, and the degradation is
// counted and logged. Query embedding propagates failures instead,
// because distances against a zero query vector are meaningless.
type FallbackEmbedder struct {
	service driven.EmbeddingService
	limiter *rate.Limiter

	// fallbacks counts zero-vector substitutions over the embedder's
	// lifetime so operators can spot silent degradation.
	fallbacks atomic.Int64
}

// EmbedderOption configures a FallbackEmbedder.
type EmbedderOption func(*FallbackEmbedder)

// WithRateLimit paces upstream embedding calls to at most rps requests
// per second. Zero or negative disables pacing.
func WithRateLimit(rps float64) EmbedderOption {
	return func(e *FallbackEmbedder) {
		if rps > 0 {
			e.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// NewFallbackEmbedder creates an embedder with the given failure policy
// around service.
func NewFallbackEmbedder(service driven.EmbeddingService, opts ...EmbedderOption) *FallbackEmbedder {
	e := &FallbackEmbedder{service: service}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EmbedDocuments embeds every text in order. The returned slice always
// has one vector per input; failed embeddings are zero vectors and the
// second return counts them. The only error returned is context
// cancellation, which aborts the remaining texts.
func (e *FallbackEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, int, error) {
	vectors := make([][]float32, 0, len(texts))
	fallbacks := 0

	for _, text := range texts {
		if err := e.wait(ctx); err != nil {
			return nil, fallbacks, err
		}

		vector, err := e.service.Embed(ctx, text)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fallbacks, ctx.Err()
			}
			logger.Error("Embedding failed, storing zero vector: %v", err)
			vector = e.zeroVector()
			fallbacks++
			e.fallbacks.Add(1)
		}
		vectors = append(vectors, vector)
	}

	return vectors, fallbacks, nil
}

// EmbedQuery embeds a retrieval query. Failures are returned wrapped in
// domain.ErrQueryEmbedding so callers can short-circuit retrieval.
func (e *FallbackEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if err := e.wait(ctx); err != nil {
		return nil, err
	}

	vector, err := e.service.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrQueryEmbedding, err)
	}
	return vector, nil
}

// Dimensions returns the embedding dimension used for zero vectors.
func (e *FallbackEmbedder) Dimensions() int {
	return e.service.Dimensions()
}

// ModelName returns the underlying model name.
func (e *FallbackEmbedder) ModelName() string {
	return e.service.ModelName()
}

// FallbackCount returns the total zero-vector substitutions so far.
func (e *FallbackEmbedder) FallbackCount() int64 {
	return e.fallbacks.Load()
}

func (e *FallbackEmbedder) wait(ctx context.Context) error {
	if e.limiter == nil {
		return nil
	}
	return e.limiter.Wait(ctx)
}

func (e *FallbackEmbedder) zeroVector() []float32 {
	dims := e.service.Dimensions()
	if dims <= 0 {
		dims = domain.DefaultAppSettings().Embedding.Dimensions
	}
	return make([]float32, dims)
}
