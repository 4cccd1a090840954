// Package plaintext loads plain text files, normalising their encoding
// to UTF-8.
package plaintext

import (
	"bytes"
	"context"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
)

// Ensure Loader implements the interface.
var _ driven.Loader = (*Loader)(nil)

// utf8BOM is the byte order mark some editors prepend to UTF-8 files.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Loader handles plain text documents.
type Loader struct{}

// New creates a plain text loader.
func New() *Loader {
	return &Loader{}
}

// SupportedExtensions returns the extensions this loader handles.
func (l *Loader) SupportedExtensions() []string {
	return []string{"txt", "text", "md", "markdown", "log"}
}

// Load normalises the file bytes to UTF-8. Valid UTF-8 passes through
// with a BOM strip; anything else is decoded as Latin-1, which cannot
// fail and matches how most legacy text files were written. Binary
// content (NUL bytes) is rejected as corrupt.
func (l *Loader) Load(_ context.Context, raw *domain.RawDocument) (string, error) {
	if raw == nil {
		return "", domain.ErrInvalidInput
	}

	content := bytes.TrimPrefix(raw.Content, utf8BOM)

	if bytes.IndexByte(content, 0) >= 0 {
		return "", fmt.Errorf("%w: %s contains binary data", domain.ErrCorruptDocument, raw.Path)
	}

	if utf8.Valid(content) {
		return string(content), nil
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(content)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrCorruptDocument, raw.Path, err)
	}
	return string(decoded), nil
}
