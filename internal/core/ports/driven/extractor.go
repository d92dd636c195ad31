package driven

import (
	"context"

	"github.com/torque-labs/wrench-cli/internal/core/domain"
)

// Extractor pulls page-addressed plain text out of one manual format.
// Each extractor handles specific file extensions (e.g., ".pdf", ".docx").
type Extractor interface {
	// Name returns the extractor name for logging.
	Name() string

	// SupportedExtensions returns the lower-case file extensions this
	// extractor handles, dot included.
	SupportedExtensions() []string

	// Extract reads the file and returns its pages in order. Formats
	// without physical pages return synthetic pages. An unreadable page
	// may be omitted; an empty result means the file had no extractable
	// text.
	Extract(ctx context.Context, path string) ([]domain.Page, error)
}

// ExtractorRegistry selects the extractor for a file.
type ExtractorRegistry interface {
	// ForFile returns the extractor handling the file's extension, or
	// domain.ErrUnsupportedType if none is registered.
	ForFile(path string) (Extractor, error)

	// Extensions returns every registered extension.
	Extensions() []string
}
