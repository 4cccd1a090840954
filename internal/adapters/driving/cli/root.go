// Package cli wires the question-answering pipeline to its command
// line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driving"
	"github.com/custodia-labs/docqa-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Persistent flag values.
var (
	flagDataDir string
	flagConfig  string
	flagVerbose bool
)

// Services is everything the commands need, built by the composition
// root once flags are parsed.
type Services struct {
	Pipeline    driving.Pipeline
	ConfigStore driven.ConfigStore
	Embedder    driven.EmbeddingService
	LLM         driven.LLMService

	// Extensions lists the supported file extensions, used when
	// expanding directories.
	Extensions []string
}

var (
	// bootstrap builds the services for the given data directory and
	// config path. Set via SetBootstrap before Execute.
	bootstrap func(dataDir, configPath string) (*Services, func(), error)

	services *Services
	teardown func()
)

// SetBootstrap installs the service factory used by commands that need
// the pipeline.
func SetBootstrap(fn func(dataDir, configPath string) (*Services, func(), error)) {
	bootstrap = fn
}

// SetVersion sets the version string reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "Ask questions about your local documents",
	Long: `docqa ingests local documents (PDF, DOCX, plain text) into a
vector index and answers natural-language questions grounded on their
content, citing the passages each answer came from.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if teardown != nil {
			teardown()
			teardown = nil
			services = nil
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default ~/.docqa/data)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default ~/.docqa/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose logging to stderr")
}

// getServices builds (or returns the already-built) services for this
// invocation.
func getServices() (*Services, error) {
	if services != nil {
		return services, nil
	}
	if bootstrap == nil {
		return nil, errNotConfigured
	}
	built, cleanup, err := bootstrap(flagDataDir, flagConfig)
	if err != nil {
		return nil, err
	}
	services = built
	teardown = cleanup
	return services, nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
