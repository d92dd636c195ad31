package driving

import (
	"context"

	"github.com/torque-labs/wrench-cli/internal/core/domain"
)

// Library manages the indexed manual collection.
type Library interface {
	// Sources lists indexed source files with chunk counts.
	Sources(ctx context.Context) ([]domain.SourceInfo, error)

	// Reset clears the whole index (the workbench).
	Reset(ctx context.Context) error

	// DeleteSource removes one source file's chunks from the index.
	DeleteSource(ctx context.Context, source string) error

	// Scan runs a non-vector keyword scan over the stored page text.
	Scan(ctx context.Context, opts ScanOptions) ([]domain.ScanMatch, error)
}

// ScanOptions configures a keyword scan.
type ScanOptions struct {
	// Term is the text to look for.
	Term string

	// PartNumber treats Term as a part number: digit groups may be
	// separated by spaces, dashes, or dots in the manuals, and a
	// flattened digits-only comparison is applied as well.
	PartNumber bool

	// Context is the number of runes of surrounding text included in
	// each snippet. Zero means the default.
	Context int
}
