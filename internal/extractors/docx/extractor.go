// Package docx extracts DOCX manuals into synthetic pages.
package docx

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/torque-labs/wrench-cli/internal/core/domain"
	"github.com/torque-labs/wrench-cli/internal/core/ports/driven"
)

// pageBreakRunes is the accumulated paragraph length at which a new
// synthetic page begins. DOCX has no physical pages, so citations use
// these instead; the threshold keeps them close to one printed page.
const pageBreakRunes = 1000

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles DOCX files.
type Extractor struct{}

// New creates a new DOCX extractor.
func New() *Extractor {
	return &Extractor{}
}

// Name returns the extractor name.
func (e *Extractor) Name() string {
	return "docx"
}

// SupportedExtensions returns the file extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".docx"}
}

// Extract opens the DOCX archive, walks the paragraphs of
// word/document.xml and groups them into synthetic pages. A paragraph
// is never split across pages; a page closes once it has grown past
// the break threshold.
func (e *Extractor) Extract(_ context.Context, path string) ([]domain.Page, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, domain.ErrInvalidInput)
	}
	defer reader.Close()

	paragraphs, err := extractParagraphs(&reader.Reader)
	if err != nil {
		return nil, err
	}

	var pages []domain.Page
	var current strings.Builder
	number := 1
	runes := 0

	for _, para := range paragraphs {
		if runes > pageBreakRunes {
			pages = append(pages, domain.Page{Number: number, Text: current.String()})
			current.Reset()
			runes = 0
			number++
		}
		current.WriteString(para)
		current.WriteString("\n")
		runes += utf8.RuneCountInString(para) + 1
	}
	if current.Len() > 0 {
		pages = append(pages, domain.Page{Number: number, Text: current.String()})
	}

	return pages, nil
}

// extractParagraphs returns the text of each paragraph in
// word/document.xml, in document order.
func extractParagraphs(reader *zip.Reader) ([]string, error) {
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return nil, domain.ErrInvalidInput
		}

		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, domain.ErrInvalidInput
		}

		return parseDocumentXML(content), nil
	}
	return nil, nil
}

// documentXML represents the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

// parseDocumentXML extracts paragraph texts from the document XML.
func parseDocumentXML(content []byte) []string {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return nil
	}

	paragraphs := make([]string, 0, len(doc.Body.Paragraphs))
	for _, para := range doc.Body.Paragraphs {
		var text strings.Builder
		for _, run := range para.Runs {
			for _, t := range run.Text {
				text.WriteString(t.Content)
			}
		}
		paragraphs = append(paragraphs, text.String())
	}

	return paragraphs
}
