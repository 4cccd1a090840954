package loaders

import (
	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docqa-cli/internal/loaders/docx"
	"github.com/custodia-labs/docqa-cli/internal/loaders/pdf"
	"github.com/custodia-labs/docqa-cli/internal/loaders/plaintext"
)

// errUnsupported aliases the domain sentinel so registry.go reads cleanly.
var errUnsupported = domain.ErrUnsupportedFormat

// NewDefaultRegistry returns a registry with all built-in loaders:
// plain text, DOCX, and PDF (via the given command runner).
func NewDefaultRegistry(runner driven.CommandRunner) *Registry {
	r := NewRegistry()
	r.Register(plaintext.New())
	r.Register(docx.New())
	r.Register(pdf.New(runner))
	return r
}
