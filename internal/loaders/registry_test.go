package loaders

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
)

type stubLoader struct {
	exts []string
}

func (s *stubLoader) SupportedExtensions() []string {
	return s.exts
}

func (s *stubLoader) Load(_ context.Context, _ *domain.RawDocument) (string, error) {
	return "", nil
}

type stubRunner struct{}

func (s *stubRunner) Run(_ context.Context, _ string, _ ...string) ([]byte, error) {
	return nil, nil
}

func TestRegistryResolve(t *testing.T) {
	r := NewRegistry()
	txt := &stubLoader{exts: []string{"txt"}}
	r.Register(txt)

	loader, err := r.Resolve("txt")
	require.NoError(t, err)
	assert.Same(t, driven.Loader(txt), loader)

	// Case and leading-dot insensitive.
	loader, err = r.Resolve(".TXT")
	require.NoError(t, err)
	assert.Same(t, driven.Loader(txt), loader)
}

func TestRegistryUnsupportedFormat(t *testing.T) {
	r := NewRegistry()

	_, err := r.Resolve("xlsx")
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}

func TestDefaultRegistryCoversCoreFormats(t *testing.T) {
	r := NewDefaultRegistry(&stubRunner{})

	for _, ext := range []string{"pdf", "docx", "txt", "md"} {
		_, err := r.Resolve(ext)
		assert.NoError(t, err, "expected loader for %s", ext)
	}

	exts := r.Extensions()
	assert.Contains(t, exts, "pdf")
	assert.Contains(t, exts, "docx")
	assert.Contains(t, exts, "txt")
}
