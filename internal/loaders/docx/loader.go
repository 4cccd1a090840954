// Package docx loads Microsoft Word documents, extracting paragraph
// and table text in document order.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
)

// Ensure Loader implements the interface.
var _ driven.Loader = (*Loader)(nil)

// Loader handles DOCX documents.
type Loader struct{}

// New creates a DOCX loader.
func New() *Loader {
	return &Loader{}
}

// SupportedExtensions returns the extensions this loader handles.
func (l *Loader) SupportedExtensions() []string {
	return []string{"docx"}
}

// Load extracts text from word/document.xml: paragraphs in order, then
// table cell text row by row wherever a table appears. An unreadable
// archive or missing document part is reported as corrupt, never
// partially extracted.
func (l *Loader) Load(_ context.Context, raw *domain.RawDocument) (string, error) {
	if raw == nil {
		return "", domain.ErrInvalidInput
	}

	reader, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return "", fmt.Errorf("%w: %s is not a valid archive: %v", domain.ErrCorruptDocument, raw.Path, err)
	}

	payload, err := readDocumentPart(reader)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrCorruptDocument, raw.Path, err)
	}

	text, err := extractText(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrCorruptDocument, raw.Path, err)
	}
	return text, nil
}

// readDocumentPart returns the bytes of word/document.xml.
func readDocumentPart(reader *zip.Reader) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("missing word/document.xml")
}

// body mirrors the parts of the WordprocessingML schema we read.
// Paragraphs and tables interleave inside the body; decoding them into
// one ordered slice keeps document order.
type body struct {
	Blocks []block `xml:",any"`
}

type block struct {
	XMLName xml.Name
	Runs    []run `xml:"r"`
	Rows    []row `xml:"tr"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type row struct {
	Cells []cell `xml:"tc"`
}

type cell struct {
	Paragraphs []block `xml:"p"`
}

type document struct {
	Body body `xml:"body"`
}

// extractText walks the document body in order, joining paragraphs with
// newlines and table cells with tabs.
func extractText(payload []byte) (string, error) {
	var doc document
	if err := xml.Unmarshal(payload, &doc); err != nil {
		return "", err
	}

	var out strings.Builder
	for _, b := range doc.Body.Blocks {
		switch b.XMLName.Local {
		case "p":
			writeParagraph(&out, b)
			out.WriteString("\n")
		case "tbl":
			writeTable(&out, b)
		}
	}
	return strings.TrimSpace(out.String()), nil
}

func writeParagraph(out *strings.Builder, p block) {
	for _, r := range p.Runs {
		for _, t := range r.Text {
			out.WriteString(t.Content)
		}
	}
}

func writeTable(out *strings.Builder, tbl block) {
	for _, tr := range tbl.Rows {
		for i, tc := range tr.Cells {
			if i > 0 {
				out.WriteString("\t")
			}
			for _, p := range tc.Paragraphs {
				writeParagraph(out, p)
			}
		}
		out.WriteString("\n")
	}
}

type textElement struct {
	Content string `xml:",chardata"`
}
