package driven

import (
	"context"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
)

// Loader extracts plain text from a raw document of a specific format.
// Each loader handles specific file extensions (e.g. pdf, docx).
type Loader interface {
	// SupportedExtensions returns the lowercased extensions this loader
	// handles, without the leading dot.
	SupportedExtensions() []string

	// Load extracts text with minimal structure loss. A parse failure
	// partway through returns domain.ErrCorruptDocument; the caller
	// must not index anything from a failed load.
	Load(ctx context.Context, raw *domain.RawDocument) (string, error)
}

// LoaderRegistry resolves a Loader for a document format.
type LoaderRegistry interface {
	// Resolve returns the loader for the given extension, or
	// domain.ErrUnsupportedFormat when none is registered.
	Resolve(format string) (Loader, error)
}

// CommandRunner executes an external command and returns its combined
// stdout. It exists so loaders that shell out (pdftotext) stay testable.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}
