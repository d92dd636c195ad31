// Package extractors wires the per-format text extractors behind a
// single extension-based registry.
package extractors

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/torque-labs/wrench-cli/internal/core/domain"
	"github.com/torque-labs/wrench-cli/internal/core/ports/driven"
	"github.com/torque-labs/wrench-cli/internal/extractors/docx"
	"github.com/torque-labs/wrench-cli/internal/extractors/markdown"
	"github.com/torque-labs/wrench-cli/internal/extractors/pdf"
	"github.com/torque-labs/wrench-cli/internal/extractors/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry maps file extensions to extractors.
type Registry struct {
	byExtension map[string]driven.Extractor
}

// NewRegistry creates a registry with all built-in extractors registered.
func NewRegistry() *Registry {
	r := &Registry{byExtension: make(map[string]driven.Extractor)}

	r.Register(pdf.New())
	r.Register(docx.New())
	r.Register(markdown.New())
	r.Register(plaintext.New())

	return r
}

// Register adds an extractor for each of its supported extensions.
// A later registration for the same extension wins.
func (r *Registry) Register(e driven.Extractor) {
	for _, ext := range e.SupportedExtensions() {
		r.byExtension[strings.ToLower(ext)] = e
	}
}

// ForFile returns the extractor for the file's extension.
func (r *Registry) ForFile(path string) (driven.Extractor, error) {
	ext := strings.ToLower(filepath.Ext(path))
	e, ok := r.byExtension[ext]
	if !ok {
		return nil, fmt.Errorf("no extractor for %q: %w", ext, domain.ErrUnsupportedType)
	}
	return e, nil
}

// Extensions returns every registered extension, sorted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExtension))
	for ext := range r.byExtension {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
