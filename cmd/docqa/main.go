// Command docqa answers questions about local documents. Files are
// ingested into a vector index; questions are answered by a language
// model grounded on the most relevant indexed fragments.
package main

import (
	"fmt"
	"os"

	"github.com/custodia-labs/docqa-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docqa-cli/internal/adapters/driven/embedding"
	ollamaembed "github.com/custodia-labs/docqa-cli/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/docqa-cli/internal/adapters/driven/embedding/openai"
	llmretry "github.com/custodia-labs/docqa-cli/internal/adapters/driven/llm"
	ollamallm "github.com/custodia-labs/docqa-cli/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/docqa-cli/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/docqa-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docqa-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/docqa-cli/internal/chunker"
	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docqa-cli/internal/core/services"
	"github.com/custodia-labs/docqa-cli/internal/loaders"
	"github.com/custodia-labs/docqa-cli/internal/loaders/pdf"
)

// version is set at build time via ldflags.
var version = "dev"

// openaiRequestsPerSecond keeps embedding calls under the hosted API's
// rate limits.
const openaiRequestsPerSecond = 5

func main() {
	cli.SetVersion(version)
	cli.SetBootstrap(buildServices)

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildServices is the composition root: it assembles the storage,
// loader, model and pipeline layers from the loaded configuration.
func buildServices(dataDir, configPath string) (*cli.Services, func(), error) {
	configStore, err := file.NewConfigStore(configPath)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := configStore.Load()
	if err != nil {
		return nil, nil, err
	}

	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, nil, err
	}

	split, err := chunker.New(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	embedder, llm, err := buildProviders(cfg)
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	registry := loaders.NewDefaultRegistry(pdf.NewExecRunner())
	pipeline, err := services.NewPipelineService(
		cfg, registry, split, embedder, llm, store.DocumentStore(), store.VectorIndex())
	if err != nil {
		embedder.Close()
		llm.Close()
		store.Close()
		return nil, nil, err
	}

	cleanup := func() {
		embedder.Close()
		llm.Close()
		store.Close()
	}

	return &cli.Services{
		Pipeline:    pipeline,
		ConfigStore: configStore,
		Embedder:    embedder,
		LLM:         llm,
		Extensions:  registry.Extensions(),
	}, cleanup, nil
}

// buildProviders constructs the embedding and generation services for
// the configured provider, decorated with rate limiting (hosted APIs)
// and bounded retry for transient failures.
func buildProviders(cfg domain.PipelineConfig) (driven.EmbeddingService, driven.LLMService, error) {
	switch cfg.Provider {
	case "", "ollama":
		embedder := ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: cfg.BaseURL,
			Model:   cfg.EmbeddingModel,
		})
		llm := ollamallm.NewLLMService(ollamallm.Config{
			BaseURL: cfg.BaseURL,
			Model:   cfg.LLMModel,
		})
		return embedding.NewRetrying(embedder, embedding.DefaultRetryConfig()),
			llmretry.NewRetrying(llm, llmretry.DefaultRetryConfig()), nil

	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		embedder, err := openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  apiKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.EmbeddingModel,
		})
		if err != nil {
			return nil, nil, err
		}
		llm, err := openaillm.NewLLMService(openaillm.Config{
			APIKey:  apiKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.LLMModel,
		})
		if err != nil {
			embedder.Close()
			return nil, nil, err
		}
		limited := embedding.NewRateLimited(embedder, openaiRequestsPerSecond)
		return embedding.NewRetrying(limited, embedding.DefaultRetryConfig()),
			llmretry.NewRetrying(llm, llmretry.DefaultRetryConfig()), nil

	default:
		return nil, nil, fmt.Errorf("%w: unknown provider %q (want ollama or openai)",
			domain.ErrInvalidInput, cfg.Provider)
	}
}
