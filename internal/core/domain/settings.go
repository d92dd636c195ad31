package domain

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API or any compatible server.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI-compatible (cloud)"
	default:
		return unknownDescription
	}
}

// StoreBackend identifies a vector store implementation.
type StoreBackend string

// Available store backends.
const (
	// StoreBackendSQLite keeps vectors in a local SQLite file.
	StoreBackendSQLite StoreBackend = "sqlite"

	// StoreBackendPostgres keeps vectors in Postgres with pgvector.
	StoreBackendPostgres StoreBackend = "postgres"

	// StoreBackendMemory keeps vectors in process memory. Mainly for
	// tests and throwaway sessions; nothing survives a restart.
	StoreBackendMemory StoreBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StoreBackend) IsValid() bool {
	switch b {
	case StoreBackendSQLite, StoreBackendPostgres, StoreBackendMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b StoreBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b StoreBackend) Description() string {
	switch b {
	case StoreBackendSQLite:
		return "SQLite (local file)"
	case StoreBackendPostgres:
		return "Postgres (pgvector)"
	case StoreBackendMemory:
		return "Memory (volatile)"
	default:
		return unknownDescription
	}
}

// IngestSettings holds chunking and batching configuration.
type IngestSettings struct {
	// SourceDir is the directory scanned for manuals.
	SourceDir string

	// ChunkSize is the sliding-window size in runes.
	ChunkSize int

	// Overlap is the window overlap in runes. Must be less than ChunkSize.
	Overlap int

	// BatchSize is the number of chunks embedded and upserted per batch.
	BatchSize int
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (OpenAI only).
	APIKey string

	// Dimensions is the embedding vector size. Zero vectors emitted on
	// embedding failure have this length.
	Dimensions int

	// RateLimit caps upstream requests per second. Zero means unlimited.
	RateLimit float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (OpenAI only).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// StoreSettings holds vector store configuration.
type StoreSettings struct {
	// Backend selects the store implementation.
	Backend StoreBackend

	// DSN is the Postgres connection string (postgres backend only).
	DSN string

	// Collection is the logical collection name.
	Collection string
}

// ChatSettings holds assistant behaviour configuration.
type ChatSettings struct {
	// HistoryWindow is the number of recent turns included in prompts.
	HistoryWindow int

	// RetrievalK is the number of chunks retrieved per question.
	RetrievalK int
}

// AppSettings holds all application settings.
type AppSettings struct {
	// DataDir is where Wrench keeps its store, prompts, and transcript.
	DataDir string

	// Ingest holds chunking and batching settings.
	Ingest IngestSettings

	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// LLM holds LLM provider settings.
	LLM LLMSettings

	// Store holds vector store settings.
	Store StoreSettings

	// Chat holds assistant behaviour settings.
	Chat ChatSettings
}

// DefaultAppSettings returns settings matching a stock local setup:
// Ollama for both embeddings and generation, SQLite storage, and the
// chunking geometry the index was designed around.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Ingest: IngestSettings{
			SourceDir: "manuals",
			ChunkSize: 1000,
			Overlap:   200,
			BatchSize: 50,
		},
		Embedding: EmbeddingSettings{
			Provider:   AIProviderOllama,
			Model:      "all-minilm",
			BaseURL:    "http://localhost:11434",
			Dimensions: 384,
		},
		LLM: LLMSettings{
			Provider: AIProviderOllama,
			Model:    "deepseek-r1:8b",
			BaseURL:  "http://localhost:11434",
		},
		Store: StoreSettings{
			Backend:    StoreBackendSQLite,
			Collection: "manuals",
		},
		Chat: ChatSettings{
			HistoryWindow: 6,
			RetrievalK:    5,
		},
	}
}

// AllAIProviders returns all available AI providers.
func AllAIProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllStoreBackends returns all available store backends.
func AllStoreBackends() []StoreBackend {
	return []StoreBackend{
		StoreBackendSQLite,
		StoreBackendPostgres,
		StoreBackendMemory,
	}
}

// DefaultEmbeddingModels returns the default embedding model per provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "all-minilm",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns the default LLM model per provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "deepseek-r1:8b",
		AIProviderOpenAI: "gpt-4o-mini",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"all-minilm":        384,
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

// FallbackLLMModels is shown when the provider's live model listing
// fails. Reasoning-capable models first.
func FallbackLLMModels() []string {
	return []string{
		"deepseek-r1:8b",
		"deepseek-r1:14b",
		"qwen3:8b",
		"llama3.2",
	}
}
