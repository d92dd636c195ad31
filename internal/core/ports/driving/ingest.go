package driving

import (
	"context"

	"github.com/torque-labs/wrench-cli/internal/core/domain"
)

// Ingestor indexes manual files into the vector store.
type Ingestor interface {
	// Ingest walks the configured source directory, extracts, chunks,
	// embeds, and indexes every supported file. Per-file and per-page
	// failures are recorded in the report and do not abort the run; a
	// failed batch upsert aborts the affected source only.
	Ingest(ctx context.Context, progress func(domain.IngestProgress)) (*domain.IngestReport, error)

	// IngestFile indexes a single file, for watch-triggered updates.
	IngestFile(ctx context.Context, path string, progress func(domain.IngestProgress)) (*domain.IngestReport, error)
}
