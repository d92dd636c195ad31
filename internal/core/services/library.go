package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/torque-labs/wrench-cli/internal/core/domain"
	"github.com/torque-labs/wrench-cli/internal/core/ports/driven"
	"github.com/torque-labs/wrench-cli/internal/core/ports/driving"
	"github.com/torque-labs/wrench-cli/internal/logger"
)

// defaultScanContext is the number of runes shown before a scan match;
// twice as many follow it.
const defaultScanContext = 50

var nonDigits = regexp.MustCompile(`[^0-9]`)

// Ensure LibraryService implements the interface.
var _ driving.Library = (*LibraryService)(nil)

// LibraryService manages the indexed manual collection and serves the
// non-vector keyword scan.
type LibraryService struct {
	index driven.VectorIndex
}

// NewLibraryService creates a library service over the vector index.
func NewLibraryService(index driven.VectorIndex) *LibraryService {
	return &LibraryService{index: index}
}

// Sources lists indexed source files with chunk counts.
func (s *LibraryService) Sources(ctx context.Context) ([]domain.SourceInfo, error) {
	sources, err := s.index.Sources(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return sources, nil
}

// Reset clears the whole index.
func (s *LibraryService) Reset(ctx context.Context) error {
	if err := s.index.Reset(ctx); err != nil {
		return fmt.Errorf("resetting index: %w", err)
	}
	logger.Info("Index cleared")
	return nil
}

// DeleteSource removes one source file's chunks.
func (s *LibraryService) DeleteSource(ctx context.Context, source string) error {
	if source == "" {
		return fmt.Errorf("%w: source name required", domain.ErrInvalidInput)
	}
	if err := s.index.DeleteSource(ctx, source); err != nil {
		return fmt.Errorf("deleting %s: %w", source, err)
	}
	return nil
}

// Scan looks for a literal term in the stored page text. In part-number
// mode the digit groups may be separated by spaces, dashes or dots in
// the manuals, and a flattened digits-only comparison catches the rest.
// Matching never touches embeddings; this is the tool for "the vector
// search can't find part 1144 020 1202" moments.
func (s *LibraryService) Scan(ctx context.Context, opts driving.ScanOptions) ([]domain.ScanMatch, error) {
	if strings.TrimSpace(opts.Term) == "" {
		return nil, fmt.Errorf("%w: scan term required", domain.ErrInvalidInput)
	}

	chunks, err := s.index.Pages(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	contextRunes := opts.Context
	if contextRunes <= 0 {
		contextRunes = defaultScanContext
	}

	var separated *regexp.Regexp
	var flatTerm string
	if opts.PartNumber {
		flatTerm = nonDigits.ReplaceAllString(opts.Term, "")
		if flatTerm != "" {
			separated = separatedDigitsPattern(flatTerm)
		}
	}

	var matches []domain.ScanMatch
	seen := make(map[string]bool)

	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// 1. Direct literal match.
		if idx := strings.Index(chunk.Text, opts.Term); idx >= 0 {
			s.record(&matches, seen, chunk, idx, len(opts.Term), contextRunes)
			continue
		}

		if separated == nil {
			continue
		}

		// 2. Separator-tolerant match on the original text.
		if loc := separated.FindStringIndex(chunk.Text); loc != nil {
			s.record(&matches, seen, chunk, loc[0], loc[1]-loc[0], contextRunes)
			continue
		}

		// 3. Flattened comparison: the digits appear but with line
		// breaks or other noise between them. Snippet the whole chunk
		// start since the exact spot cannot be recovered.
		if strings.Contains(nonDigits.ReplaceAllString(chunk.Text, ""), flatTerm) {
			s.record(&matches, seen, chunk, 0, 0, contextRunes)
		}
	}

	return matches, nil
}

// record appends a match unless an identical one was already taken from
// an overlapping chunk window of the same page.
func (s *LibraryService) record(matches *[]domain.ScanMatch, seen map[string]bool, chunk domain.Chunk, idx, matchLen, contextRunes int) {
	snippet := contextSnippet(chunk.Text, idx, matchLen, contextRunes)
	key := fmt.Sprintf("%s|%d|%s", chunk.Source, chunk.Page, snippet)
	if seen[key] {
		return
	}
	seen[key] = true

	*matches = append(*matches, domain.ScanMatch{
		Source:  chunk.Source,
		Page:    chunk.Page,
		Offset:  chunk.CharStart + len([]rune(chunk.Text[:idx])),
		Snippet: snippet,
	})
}

// separatedDigitsPattern builds a pattern matching the digits with an
// optional space, dash or dot between any two of them.
func separatedDigitsPattern(digits string) *regexp.Regexp {
	parts := strings.Split(digits, "")
	return regexp.MustCompile(strings.Join(parts, `[\s\-.]?`))
}

// contextSnippet returns the text around a match with newlines
// flattened, bounded by before runes on the left and twice that on the
// right.
func contextSnippet(text string, byteIdx, matchLen, before int) string {
	runes := []rune(text)
	start := len([]rune(text[:byteIdx]))
	end := start + len([]rune(text[byteIdx:byteIdx+matchLen]))

	from := start - before
	if from < 0 {
		from = 0
	}
	to := end + 2*before
	if to > len(runes) {
		to = len(runes)
	}

	snippet := string(runes[from:to])
	return strings.ReplaceAll(snippet, "\n", " ")
}
