package services

import (
	"fmt"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driving"
)

// Ensure PipelineService implements the interface.
var _ driving.Pipeline = (*PipelineService)(nil)

// PipelineService is the document question-answering pipeline: it
// ingests files into the vector index and answers questions grounded
// on the indexed fragments.
type PipelineService struct {
	cfg      domain.PipelineConfig
	loaders  driven.LoaderRegistry
	chunker  driven.Chunker
	embedder driven.EmbeddingService
	llm      driven.LLMService
	docs     driven.DocumentStore
	index    driven.VectorIndex
	locks    *keyedMutex
}

// NewPipelineService creates the pipeline. The configuration is
// validated up front; an invalid chunking configuration is rejected
// before any document is touched.
func NewPipelineService(
	cfg domain.PipelineConfig,
	loaders driven.LoaderRegistry,
	chunker driven.Chunker,
	embedder driven.EmbeddingService,
	llm driven.LLMService,
	docs driven.DocumentStore,
	index driven.VectorIndex,
) (*PipelineService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline config: %w", err)
	}

	return &PipelineService{
		cfg:      cfg,
		loaders:  loaders,
		chunker:  chunker,
		embedder: embedder,
		llm:      llm,
		docs:     docs,
		index:    index,
		locks:    newKeyedMutex(),
	}, nil
}
