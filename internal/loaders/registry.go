package loaders

import (
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.LoaderRegistry = (*Registry)(nil)

// Registry maps file extensions to loaders.
type Registry struct {
	byExt map[string]driven.Loader
}

// NewRegistry creates an empty loader registry.
func NewRegistry() *Registry {
	return &Registry{
		byExt: make(map[string]driven.Loader),
	}
}

// Register adds a loader for each of its supported extensions.
// A later registration for the same extension wins.
func (r *Registry) Register(loader driven.Loader) {
	for _, ext := range loader.SupportedExtensions() {
		r.byExt[strings.ToLower(ext)] = loader
	}
}

// Resolve returns the loader for the given extension, or
// domain.ErrUnsupportedFormat when none is registered.
func (r *Registry) Resolve(format string) (driven.Loader, error) {
	loader, ok := r.byExt[strings.ToLower(strings.TrimPrefix(format, "."))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errUnsupported, format)
	}
	return loader, nil
}

// Extensions returns all registered extensions, sorted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
