package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/torque-labs/wrench-cli/internal/adapters/driven/ai"
	configfile "github.com/torque-labs/wrench-cli/internal/adapters/driven/config/file"
	"github.com/torque-labs/wrench-cli/internal/adapters/driven/storage/memory"
	"github.com/torque-labs/wrench-cli/internal/adapters/driven/storage/postgres"
	"github.com/torque-labs/wrench-cli/internal/adapters/driven/storage/sqlite"
	transcriptfile "github.com/torque-labs/wrench-cli/internal/adapters/driven/transcript/file"
	"github.com/torque-labs/wrench-cli/internal/chunker"
	"github.com/torque-labs/wrench-cli/internal/core/domain"
	"github.com/torque-labs/wrench-cli/internal/core/ports/driven"
	"github.com/torque-labs/wrench-cli/internal/core/services"
	"github.com/torque-labs/wrench-cli/internal/extractors"
	"github.com/torque-labs/wrench-cli/internal/logger"
)

// Wiring is lazy and layered: the settings layer is pure file access,
// the index layer opens the configured store backend, and the AI layer
// additionally pings the providers. Commands request only the layer
// they need, so `wrench sources` works offline while ollama is down.
var (
	wireMu      sync.Mutex
	configStore driven.ConfigStore
	vectorIndex driven.VectorIndex
)

func ensureSettings() error {
	wireMu.Lock()
	defer wireMu.Unlock()
	return ensureSettingsLocked()
}

func ensureSettingsLocked() error {
	if settingsService != nil {
		return nil
	}
	store, err := configfile.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("open config store: %w", err)
	}
	configStore = store
	settingsService = services.NewSettingsService(store, ai.NewConfigValidator())
	return nil
}

// ensureIndex wires the vector store and the library service on top of
// the settings layer.
func ensureIndex(ctx context.Context) error {
	wireMu.Lock()
	defer wireMu.Unlock()
	if libraryService != nil {
		return nil
	}
	if err := ensureSettingsLocked(); err != nil {
		return err
	}
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	index, err := openIndex(ctx, settings)
	if err != nil {
		return fmt.Errorf("open vector store: %w", err)
	}
	vectorIndex = index
	libraryService = services.NewLibraryService(index)
	return nil
}

// ensureIngestor wires the full ingestion pipeline. Requires a
// configured embedding provider.
func ensureIngestor(ctx context.Context) error {
	if err := ensureIndex(ctx); err != nil {
		return err
	}
	wireMu.Lock()
	defer wireMu.Unlock()
	if ingestService != nil {
		return nil
	}
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if ingestDir != "" {
		settings.Ingest.SourceDir = ingestDir
	}

	embedding, err := ai.CreateAndValidateEmbeddingService(&settings.Embedding)
	if err != nil {
		return err
	}
	if embedding == nil {
		return errors.New("embedding provider not configured: run 'wrench settings' first")
	}

	splitter, err := chunker.New(
		chunker.WithChunkSize(settings.Ingest.ChunkSize),
		chunker.WithOverlap(settings.Ingest.Overlap),
	)
	if err != nil {
		return fmt.Errorf("chunker: %w", err)
	}

	ingestService = services.NewIngestService(
		extractors.NewRegistry(),
		newEmbedder(embedding, settings),
		vectorIndex,
		splitter,
		settings.Ingest,
	)
	return nil
}

// ensureAssistant wires the question-answering stack. Requires both a
// configured embedding provider and a configured LLM provider.
func ensureAssistant(ctx context.Context) error {
	if err := ensureIndex(ctx); err != nil {
		return err
	}
	wireMu.Lock()
	defer wireMu.Unlock()
	if askService != nil {
		return nil
	}
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	embedding, err := ai.CreateAndValidateEmbeddingService(&settings.Embedding)
	if err != nil {
		return err
	}
	llm, err := ai.CreateAndValidateLLMService(&settings.LLM)
	if err != nil {
		return err
	}
	if embedding == nil || llm == nil {
		return errors.New("assistant not configured: run 'wrench settings' to set up providers")
	}

	prompts, err := configfile.NewPromptStore(promptsDir(settings))
	if err != nil {
		return fmt.Errorf("open prompt store: %w", err)
	}

	// The transcript log is best-effort; a turn must never fail because
	// the log directory is unwritable.
	var transcript driven.TranscriptStore
	if ts, err := transcriptfile.NewTranscriptStore(storageDir(settings)); err != nil {
		logger.Warn("Transcript log unavailable: %v", err)
	} else {
		transcript = ts
	}

	builder := services.NewPromptBuilder(
		services.WithHistoryWindow(settings.Chat.HistoryWindow),
	)

	askService = services.NewAskService(
		newEmbedder(embedding, settings),
		vectorIndex,
		llm,
		prompts,
		transcript,
		builder,
		settings.Chat,
	)
	return nil
}

// openIndex opens the configured vector store backend.
func openIndex(ctx context.Context, settings *domain.AppSettings) (driven.VectorIndex, error) {
	switch settings.Store.Backend {
	case domain.StoreBackendSQLite:
		return sqlite.NewStore(storageDir(settings), settings.Store.Collection)
	case domain.StoreBackendPostgres:
		return postgres.NewStore(ctx, settings.Store.DSN, settings.Store.Collection, settings.Embedding.Dimensions)
	case domain.StoreBackendMemory:
		return memory.NewIndex(), nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", settings.Store.Backend)
	}
}

func newEmbedder(service driven.EmbeddingService, settings *domain.AppSettings) *services.FallbackEmbedder {
	return services.NewFallbackEmbedder(service,
		services.WithRateLimit(settings.Embedding.RateLimit),
	)
}

// storageDir resolves the directory holding the index and transcript.
// Empty means the adapters fall back to their own ~/.wrench/data
// default.
func storageDir(settings *domain.AppSettings) string {
	if settings.DataDir == "" {
		return ""
	}
	return filepath.Join(settings.DataDir, "data")
}

func promptsDir(settings *domain.AppSettings) string {
	if settings.DataDir == "" {
		return ""
	}
	return filepath.Join(settings.DataDir, "prompts")
}
