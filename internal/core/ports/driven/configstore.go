package driven

import "github.com/custodia-labs/docqa-cli/internal/core/domain"

// ConfigStore loads and persists the pipeline configuration.
type ConfigStore interface {
	// Load reads the stored configuration with defaults applied for
	// absent fields. A missing file yields the full defaults.
	Load() (domain.PipelineConfig, error)

	// Save persists the configuration.
	Save(cfg domain.PipelineConfig) error

	// Path returns the backing file path, for diagnostics.
	Path() string
}
