// Package pdf loads PDF documents by delegating extraction to the
// poppler pdftotext utility through a CommandRunner, keeping the loader
// free of cgo and testable with a mock runner.
package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
)

// Ensure Loader implements the interface.
var _ driven.Loader = (*Loader)(nil)

// pdfMagic is the header every well-formed PDF starts with.
const pdfMagic = "%PDF-"

// Loader handles PDF documents.
type Loader struct {
	runner driven.CommandRunner
}

// New creates a PDF loader using the given command runner.
func New(runner driven.CommandRunner) *Loader {
	return &Loader{runner: runner}
}

// SupportedExtensions returns the extensions this loader handles.
func (l *Loader) SupportedExtensions() []string {
	return []string{"pdf"}
}

// Load extracts page-ordered text. The raw bytes are staged to a
// temporary file and handed to pdftotext with -layout off so reading
// order follows the page content stream. Any extraction failure is
// reported as a corrupt document.
func (l *Loader) Load(ctx context.Context, raw *domain.RawDocument) (string, error) {
	if raw == nil {
		return "", domain.ErrInvalidInput
	}
	if !strings.HasPrefix(string(raw.Content[:min(len(raw.Content), len(pdfMagic))]), pdfMagic) {
		return "", fmt.Errorf("%w: %s has no PDF header", domain.ErrCorruptDocument, raw.Path)
	}

	tmpDir, err := os.MkdirTemp("", "docqa-pdf-")
	if err != nil {
		return "", fmt.Errorf("staging pdf: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	tmpPath := filepath.Join(tmpDir, "input.pdf")
	if err := os.WriteFile(tmpPath, raw.Content, 0600); err != nil {
		return "", fmt.Errorf("staging pdf: %w", err)
	}

	// "-" sends extracted text to stdout; pages arrive in order,
	// separated by form feeds.
	out, err := l.runner.Run(ctx, "pdftotext", "-enc", "UTF-8", tmpPath, "-")
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: %s: %v", domain.ErrCorruptDocument, raw.Path, err)
	}

	return normalisePages(string(out)), nil
}

// normalisePages converts pdftotext's form-feed page separators into
// blank lines so the chunker sees page breaks as paragraph boundaries.
func normalisePages(text string) string {
	pages := strings.Split(text, "\f")
	for i, page := range pages {
		pages[i] = strings.TrimRight(page, "\n")
	}
	joined := strings.Join(pages, "\n\n")
	return strings.TrimSpace(joined)
}
