package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/torque-labs/wrench-cli/internal/chunker"
	"github.com/torque-labs/wrench-cli/internal/core/domain"
	"github.com/torque-labs/wrench-cli/internal/core/ports/driven"
	"github.com/torque-labs/wrench-cli/internal/core/ports/driving"
	"github.com/torque-labs/wrench-cli/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.Ingestor = (*IngestService)(nil)

// IngestService runs the ingestion pipeline: walk the source folder,
// extract pages, cut chunks, embed them and upsert batches into the
// vector index. One ingestion runs at a time per service.
type IngestService struct {
	registry driven.ExtractorRegistry
	embedder *FallbackEmbedder
	index    driven.VectorIndex
	splitter *chunker.Splitter

	sourceDir string
	batchSize int

	mu      sync.Mutex
	running bool
}

// NewIngestService creates an ingestion service. Chunking geometry
// comes from the splitter; sourceDir and batchSize from settings.
func NewIngestService(
	registry driven.ExtractorRegistry,
	embedder *FallbackEmbedder,
	index driven.VectorIndex,
	splitter *chunker.Splitter,
	settings domain.IngestSettings,
) *IngestService {
	batchSize := settings.BatchSize
	if batchSize <= 0 {
		batchSize = domain.DefaultAppSettings().Ingest.BatchSize
	}

	return &IngestService{
		registry:  registry,
		embedder:  embedder,
		index:     index,
		splitter:  splitter,
		sourceDir: settings.SourceDir,
		batchSize: batchSize,
	}
}

// Ingest processes every supported file in the source folder. Per-file
// failures are counted and logged, never fatal for the run. The
// progress callback, when non-nil, fires after each committed batch.
func (s *IngestService) Ingest(ctx context.Context, progress func(domain.IngestProgress)) (*domain.IngestReport, error) {
	release, err := s.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	report := s.newReport()
	started := time.Now()

	entries, err := os.ReadDir(s.sourceDir)
	if err != nil {
		return nil, fmt.Errorf("reading source folder: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}

		path := filepath.Join(s.sourceDir, entry.Name())
		if _, err := s.registry.ForFile(path); err != nil {
			logger.Debug("Skipping unsupported file %s", entry.Name())
			continue
		}

		logger.Info("Processing %s", entry.Name())
		if err := s.ingestOne(ctx, path, report, progress); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				report.Duration = time.Since(started)
				return report, err
			}
			report.FilesFailed++
			logger.Error("Failed to process %s: %v", entry.Name(), err)
			continue
		}
		report.Files++
	}

	report.Duration = time.Since(started)
	logger.Info("Ingested %d files (%d failed): %d chunks, %d indexed, %d embedding fallbacks",
		report.Files, report.FilesFailed, report.Chunks, report.Indexed, report.EmbeddingFallbacks)
	return report, nil
}

// IngestFile processes a single file.
func (s *IngestService) IngestFile(ctx context.Context, path string, progress func(domain.IngestProgress)) (*domain.IngestReport, error) {
	release, err := s.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	report := s.newReport()
	started := time.Now()

	if err := s.ingestOne(ctx, path, report, progress); err != nil {
		report.FilesFailed++
		report.Duration = time.Since(started)
		return report, err
	}

	report.Files++
	report.Duration = time.Since(started)
	return report, nil
}

// ingestOne extracts, chunks and indexes one file. Chunk identifiers
// use a global index across all pages of the file, so re-ingesting the
// same file with the same geometry overwrites in place.
func (s *IngestService) ingestOne(ctx context.Context, path string, report *domain.IngestReport, progress func(domain.IngestProgress)) error {
	extractor, err := s.registry.ForFile(path)
	if err != nil {
		return err
	}

	pages, err := extractor.Extract(ctx, path)
	if err != nil {
		return fmt.Errorf("extracting: %w", err)
	}

	source := filepath.Base(path)
	step := s.splitter.ChunkSize() - s.splitter.Overlap()

	var chunks []domain.Chunk
	index := 0
	for _, page := range pages {
		if page.Text == "" {
			report.PagesSkipped++
			logger.Debug("Skipping empty page %d of %s", page.Number, source)
			continue
		}

		for win, text := range s.splitter.Split(page.Text) {
			chunks = append(chunks, domain.Chunk{
				ID:        domain.ChunkID(source, index),
				Source:    source,
				Page:      page.Number,
				CharStart: win * step,
				Text:      text,
			})
			index++
		}
	}

	report.Chunks += len(chunks)
	if len(chunks) == 0 {
		logger.Warn("No extractable text in %s", source)
		return nil
	}

	return s.insertBatches(ctx, source, chunks, report, progress)
}

// insertBatches writes chunks in batches of at most batchSize. Each
// batch is one atomic upsert; a failed batch aborts the file but prior
// batches stay committed.
func (s *IngestService) insertBatches(ctx context.Context, source string, chunks []domain.Chunk, report *domain.IngestReport, progress func(domain.IngestProgress)) error {
	total := len(chunks)

	for start := 0; start < total; start += s.batchSize {
		end := start + s.batchSize
		if end > total {
			end = total
		}
		part := chunks[start:end]

		batch := driven.Batch{
			IDs:       make([]string, 0, len(part)),
			Documents: make([]string, 0, len(part)),
			Metadatas: make([]map[string]string, 0, len(part)),
		}
		for _, chunk := range part {
			batch.IDs = append(batch.IDs, chunk.ID)
			batch.Documents = append(batch.Documents, chunk.Text)
			batch.Metadatas = append(batch.Metadatas, chunk.Metadata())
		}

		vectors, fallbacks, err := s.embedder.EmbedDocuments(ctx, batch.Documents)
		if err != nil {
			return err
		}
		batch.Vectors = vectors
		report.EmbeddingFallbacks += fallbacks

		if err := s.index.Upsert(ctx, batch); err != nil {
			return &domain.BatchError{
				Source: source,
				Batch:  start/s.batchSize + 1,
				IDs:    batch.IDs,
				Err:    err,
			}
		}
		report.Indexed += batch.Len()

		if progress != nil {
			progress(domain.IngestProgress{Source: source, Processed: end, Total: total})
		}
	}

	return nil
}

// acquire marks the service busy, or reports an ingestion already in
// flight.
func (s *IngestService) acquire() (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil, domain.ErrIngestInProgress
	}
	s.running = true

	return func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}, nil
}

func (s *IngestService) newReport() *domain.IngestReport {
	return &domain.IngestReport{RunID: uuid.New().String()}
}

// SourceDir returns the folder this service ingests from.
func (s *IngestService) SourceDir() string {
	return s.sourceDir
}

// SupportedExtensions returns the extensions the registry accepts.
func (s *IngestService) SupportedExtensions() []string {
	return s.registry.Extensions()
}
