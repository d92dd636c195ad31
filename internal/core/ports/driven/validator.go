package driven

import "github.com/torque-labs/wrench-cli/internal/core/domain"

// AIConfigValidator checks provider configurations against the live services.
// Implementations build a throwaway client from the given settings and ping it.
type AIConfigValidator interface {
	// ValidateEmbedding pings the configured embedding provider.
	// A nil error means the configuration is usable or not configured at all.
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	// ValidateLLM pings the configured LLM provider.
	// A nil error means the configuration is usable or not configured at all.
	ValidateLLM(config *domain.LLMSettings) error
}
