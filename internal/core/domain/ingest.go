package domain

import "time"

// IngestProgress reports batch-level progress for one source file.
type IngestProgress struct {
	// Source is the file being indexed.
	Source string

	// Processed is the number of chunks committed so far, capped at Total.
	Processed int

	// Total is the number of chunks for this source.
	Total int
}

// Fraction returns completion in [0, 1]. The final batch of a source is
// usually partial, so the raw processed count can overshoot the total;
// the fraction is clamped and never regresses.
func (p IngestProgress) Fraction() float64 {
	if p.Total <= 0 {
		return 1.0
	}
	f := float64(p.Processed) / float64(p.Total)
	if f > 1.0 {
		return 1.0
	}
	return f
}

// IngestReport summarises one ingest run across all source files.
type IngestReport struct {
	// RunID uniquely identifies the run in logs.
	RunID string

	// Files is the number of source files fully processed.
	Files int

	// FilesFailed is the number of files skipped entirely (unreadable,
	// unsupported, or no extractable text).
	FilesFailed int

	// PagesSkipped is the number of pages dropped by extraction errors.
	PagesSkipped int

	// Chunks is the total number of chunks produced.
	Chunks int

	// Indexed is the number of chunks committed to the vector store.
	Indexed int

	// EmbeddingFallbacks is the number of chunks indexed with a zero
	// vector because embedding failed.
	EmbeddingFallbacks int

	// Duration is the wall-clock time of the run.
	Duration time.Duration
}
