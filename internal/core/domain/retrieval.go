package domain

import "strconv"

// RetrievedChunk is a chunk returned by similarity search, ordered by
// ascending distance (closest first).
type RetrievedChunk struct {
	// ID is the chunk identifier.
	ID string

	// Source is the source file name from the chunk metadata.
	Source string

	// Page is the 1-based page number from the chunk metadata.
	Page int

	// Text is the stored chunk content.
	Text string

	// Distance is the raw vector distance. Smaller is more similar.
	Distance float64
}

// Label renders the citation label used in prompts and result listings,
// e.g. "FS55.pdf (Pg 12)".
func (r RetrievedChunk) Label() string {
	return r.Source + " (Pg " + strconv.Itoa(r.Page) + ")"
}

// ScanMatch is a hit from the non-vector keyword scan over stored pages.
type ScanMatch struct {
	// Source is the file the match was found in.
	Source string

	// Page is the 1-based page number.
	Page int

	// Offset is the rune offset of the match within the page text.
	Offset int

	// Snippet is the match with surrounding context.
	Snippet string
}
