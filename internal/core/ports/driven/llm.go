package driven

import (
	"context"

	"github.com/torque-labs/wrench-cli/internal/core/domain"
)

// LLMService provides streamed text generation for the assistant.
//
// Implementations may include:
//   - Ollama (local models, deepseek-r1 family)
//   - OpenAI-compatible servers (cloud or local inference)
//
// Generation is streaming-only: the assistant pipeline consumes raw
// fragments and demultiplexes reasoning, answer, and suggestions itself,
// so adapters must never buffer the whole response.
type LLMService interface {
	// Stream generates a completion for the prompt, invoking fn once per
	// fragment as it arrives. Fragment boundaries are arbitrary; callers
	// must not assume they align with tokens, words, or markup. A non-nil
	// error from fn cancels generation and is returned.
	Stream(ctx context.Context, prompt string, opts StreamOptions, fn func(fragment string) error) error

	// ListModels returns the models the provider currently serves.
	// Errors are returned, not masked; the service layer supplies the
	// fallback listing.
	ListModels(ctx context.Context) ([]domain.ModelInfo, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// StreamOptions configures generation behaviour.
type StreamOptions struct {
	// MaxTokens is the maximum number of tokens to generate. Zero means
	// the provider default.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64
}
