package domain

import "strconv"

// Page is a unit of extracted manual text addressed by page number.
// PDF extraction yields physical pages; formats without physical pages
// (DOCX, plain text) yield synthetic pages so every chunk stays
// page-addressable in citations.
type Page struct {
	// Number is the 1-based page number within the source file.
	Number int

	// Text is the extracted plain text of the page.
	Text string
}

// Chunk is an indexable window of page text. Chunks are what the vector
// store holds and what retrieval returns.
type Chunk struct {
	// ID is the stable identifier, "{source}_{index}" where index is the
	// global 0-based chunk position across all pages of the source.
	ID string

	// Source is the base file name the chunk came from (e.g. "FS55.pdf").
	Source string

	// Page is the 1-based page number the chunk was cut from.
	Page int

	// CharStart is the rune offset of the chunk window within its page.
	// Together with the chunking geometry it makes re-ingestion land the
	// same text under the same identifier.
	CharStart int

	// Text is the chunk content.
	Text string
}

// ChunkID builds the stable chunk identifier for a source file and a
// global chunk index.
func ChunkID(source string, index int) string {
	return source + "_" + strconv.Itoa(index)
}

// Metadata returns the chunk's index metadata as stored alongside its
// vector. Keys match what retrieval hands back for citation labels.
func (c Chunk) Metadata() map[string]string {
	return map[string]string{
		"source":     c.Source,
		"page":       strconv.Itoa(c.Page),
		"char_start": strconv.Itoa(c.CharStart),
	}
}

// SourceInfo summarises one indexed source file.
type SourceInfo struct {
	// Name is the source file name.
	Name string

	// Chunks is the number of chunks stored for this source.
	Chunks int
}
