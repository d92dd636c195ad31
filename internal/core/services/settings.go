package services

import (
	"fmt"

	"github.com/torque-labs/wrench-cli/internal/core/domain"
	"github.com/torque-labs/wrench-cli/internal/core/ports/driven"
	"github.com/torque-labs/wrench-cli/internal/core/ports/driving"
	"github.com/torque-labs/wrench-cli/internal/logger"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyDataDir           = "data_dir"
	keyEmbedProvider     = "embedding.provider"
	keyEmbedModel        = "embedding.model"
	keyEmbedBaseURL      = "embedding.base_url"
	keyEmbedAPIKey       = "embedding.api_key"
	keyEmbedDimensions   = "embedding.dimensions"
	keyEmbedRateLimit    = "embedding.rate_limit"
	keyLLMProvider       = "llm.provider"
	keyLLMModel          = "llm.model"
	keyLLMBaseURL        = "llm.base_url"
	keyLLMAPIKey         = "llm.api_key"
	keyStoreBackend      = "store.backend"
	keyStoreDSN          = "store.dsn"
	keyStoreCollection   = "store.collection"
	keyIngestSourceDir   = "ingest.source_dir"
	keyIngestChunkSize   = "ingest.chunk_size"
	keyIngestOverlap     = "ingest.overlap"
	keyIngestBatchSize   = "ingest.batch_size"
	keyChatHistoryWindow = "chat.history_window"
	keyChatRetrievalK    = "chat.retrieval_k"
)

// ConfigKeys returns every config key the application reads, in display
// order. The CLI uses it for raw key listing and for warning about
// typoed keys on set.
func ConfigKeys() []string {
	return []string{
		keyDataDir,
		keyEmbedProvider,
		keyEmbedModel,
		keyEmbedBaseURL,
		keyEmbedAPIKey,
		keyEmbedDimensions,
		keyEmbedRateLimit,
		keyLLMProvider,
		keyLLMModel,
		keyLLMBaseURL,
		keyLLMAPIKey,
		keyStoreBackend,
		keyStoreDSN,
		keyStoreCollection,
		keyIngestSourceDir,
		keyIngestChunkSize,
		keyIngestOverlap,
		keyIngestBatchSize,
		keyChatHistoryWindow,
		keyChatRetrievalK,
	}
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		DataDir: s.configStore.GetString(keyDataDir), // Empty means next to the config file
		Ingest: domain.IngestSettings{
			SourceDir: s.getString(keyIngestSourceDir, defaults.Ingest.SourceDir),
			ChunkSize: s.getInt(keyIngestChunkSize, defaults.Ingest.ChunkSize),
			Overlap:   s.getIntZeroValid(keyIngestOverlap, defaults.Ingest.Overlap),
			BatchSize: s.getInt(keyIngestBatchSize, defaults.Ingest.BatchSize),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:   s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:      s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:    s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:     s.configStore.GetString(keyEmbedAPIKey),
			Dimensions: s.getInt(keyEmbedDimensions, defaults.Embedding.Dimensions),
			RateLimit:  s.configStore.GetFloat(keyEmbedRateLimit), // Zero means unlimited
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:    s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL), // No default - empty is valid for cloud providers
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		Store: domain.StoreSettings{
			Backend:    s.getBackend(keyStoreBackend, defaults.Store.Backend),
			DSN:        s.configStore.GetString(keyStoreDSN),
			Collection: s.getString(keyStoreCollection, defaults.Store.Collection),
		},
		Chat: domain.ChatSettings{
			HistoryWindow: s.getInt(keyChatHistoryWindow, defaults.Chat.HistoryWindow),
			RetrievalK:    s.getInt(keyChatRetrievalK, defaults.Chat.RetrievalK),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	// Save data dir only when set; empty means the default location
	if settings.DataDir != "" {
		if err := s.configStore.Set(keyDataDir, settings.DataDir); err != nil {
			return fmt.Errorf("save data_dir: %w", err)
		}
	}

	// Save ingest settings
	if err := s.configStore.Set(keyIngestSourceDir, settings.Ingest.SourceDir); err != nil {
		return fmt.Errorf("save ingest source_dir: %w", err)
	}
	if err := s.configStore.Set(keyIngestChunkSize, settings.Ingest.ChunkSize); err != nil {
		return fmt.Errorf("save ingest chunk_size: %w", err)
	}
	if err := s.configStore.Set(keyIngestOverlap, settings.Ingest.Overlap); err != nil {
		return fmt.Errorf("save ingest overlap: %w", err)
	}
	if err := s.configStore.Set(keyIngestBatchSize, settings.Ingest.BatchSize); err != nil {
		return fmt.Errorf("save ingest batch_size: %w", err)
	}

	// Save embedding settings
	if err := s.configStore.Set(keyEmbedProvider, settings.Embedding.Provider.String()); err != nil {
		return fmt.Errorf("save embedding provider: %w", err)
	}
	if err := s.configStore.Set(keyEmbedModel, settings.Embedding.Model); err != nil {
		return fmt.Errorf("save embedding model: %w", err)
	}
	if err := s.configStore.Set(keyEmbedBaseURL, settings.Embedding.BaseURL); err != nil {
		return fmt.Errorf("save embedding base_url: %w", err)
	}
	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}
	if err := s.configStore.Set(keyEmbedDimensions, settings.Embedding.Dimensions); err != nil {
		return fmt.Errorf("save embedding dimensions: %w", err)
	}
	if err := s.configStore.Set(keyEmbedRateLimit, settings.Embedding.RateLimit); err != nil {
		return fmt.Errorf("save embedding rate_limit: %w", err)
	}

	// Save LLM settings
	if err := s.configStore.Set(keyLLMProvider, settings.LLM.Provider.String()); err != nil {
		return fmt.Errorf("save llm provider: %w", err)
	}
	if err := s.configStore.Set(keyLLMModel, settings.LLM.Model); err != nil {
		return fmt.Errorf("save llm model: %w", err)
	}
	if err := s.configStore.Set(keyLLMBaseURL, settings.LLM.BaseURL); err != nil {
		return fmt.Errorf("save llm base_url: %w", err)
	}
	if settings.LLM.APIKey != "" {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}

	// Save store settings
	if err := s.configStore.Set(keyStoreBackend, settings.Store.Backend.String()); err != nil {
		return fmt.Errorf("save store backend: %w", err)
	}
	if err := s.configStore.Set(keyStoreDSN, settings.Store.DSN); err != nil {
		return fmt.Errorf("save store dsn: %w", err)
	}
	if err := s.configStore.Set(keyStoreCollection, settings.Store.Collection); err != nil {
		return fmt.Errorf("save store collection: %w", err)
	}

	// Save chat settings
	if err := s.configStore.Set(keyChatHistoryWindow, settings.Chat.HistoryWindow); err != nil {
		return fmt.Errorf("save chat history_window: %w", err)
	}
	if err := s.configStore.Set(keyChatRetrievalK, settings.Chat.RetrievalK); err != nil {
		return fmt.Errorf("save chat retrieval_k: %w", err)
	}

	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.Embedding.Model = model
	} else {
		defaults := domain.DefaultEmbeddingModels()
		if defaultModel, ok := defaults[provider]; ok {
			settings.Embedding.Model = defaultModel
		}
	}

	// Set base URL based on provider type
	if provider.IsLocal() {
		// Local providers need a base URL
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = "http://localhost:11434"
		}
	} else {
		// Cloud providers don't need a custom base URL
		settings.Embedding.BaseURL = ""
	}

	// Set API key
	settings.Embedding.APIKey = apiKey

	// Keep stored dimensions in line with the model so zero vectors and
	// store schemas agree on vector width
	dims := domain.EmbeddingDimensions()
	if d, ok := dims[settings.Embedding.Model]; ok {
		if settings.Embedding.Dimensions != 0 && settings.Embedding.Dimensions != d {
			logger.Warn("Embedding dimensions changed from %d to %d, re-ingest to rebuild the index",
				settings.Embedding.Dimensions, d)
		}
		settings.Embedding.Dimensions = d
	}

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.LLM.Model = model
	} else {
		defaults := domain.DefaultLLMModels()
		if defaultModel, ok := defaults[provider]; ok {
			settings.LLM.Model = defaultModel
		}
	}

	// Set base URL based on provider type
	if provider.IsLocal() {
		// Local providers need a base URL
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = "http://localhost:11434"
		}
	} else {
		// Cloud providers don't need a custom base URL
		settings.LLM.BaseURL = ""
	}

	// Set API key
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetStoreBackend configures the vector store backend.
func (s *SettingsService) SetStoreBackend(backend domain.StoreBackend, dsn string) error {
	if !backend.IsValid() {
		return fmt.Errorf("invalid store backend: %s", backend)
	}

	if backend == domain.StoreBackendPostgres && dsn == "" {
		return fmt.Errorf("connection string required for %s", backend)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Store.Backend = backend
	if backend == domain.StoreBackendPostgres {
		settings.Store.DSN = dsn
	} else {
		// Local backends derive their path from the data directory
		settings.Store.DSN = ""
	}

	return s.Save(settings)
}

// Validate checks if current settings form a runnable configuration.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	// Check provider configuration
	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("embedding provider %q is not configured", settings.Embedding.Provider)
	}
	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("llm provider %q is not configured", settings.LLM.Provider)
	}

	// Check store configuration
	if !settings.Store.Backend.IsValid() {
		return fmt.Errorf("invalid store backend: %s", settings.Store.Backend)
	}
	if settings.Store.Backend == domain.StoreBackendPostgres && settings.Store.DSN == "" {
		return fmt.Errorf("store backend %q requires a connection string", settings.Store.Backend)
	}

	// Check chunking geometry
	if settings.Ingest.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", settings.Ingest.ChunkSize)
	}
	if settings.Ingest.Overlap < 0 || settings.Ingest.Overlap >= settings.Ingest.ChunkSize {
		return fmt.Errorf("overlap %d must be non-negative and smaller than chunk size %d",
			settings.Ingest.Overlap, settings.Ingest.ChunkSize)
	}
	if settings.Ingest.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", settings.Ingest.BatchSize)
	}

	// Check chat configuration
	if settings.Chat.HistoryWindow < 0 {
		return fmt.Errorf("history window must be non-negative, got %d", settings.Chat.HistoryWindow)
	}
	if settings.Chat.RetrievalK <= 0 {
		return fmt.Errorf("retrieval k must be positive, got %d", settings.Chat.RetrievalK)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

// getIntZeroValid reads an int where zero is a meaningful stored value,
// so only a missing key falls back to the default.
func (s *SettingsService) getIntZeroValid(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(key string, defaultVal domain.StoreBackend) domain.StoreBackend {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	backend := domain.StoreBackend(val)
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
