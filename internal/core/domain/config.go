package domain

import "fmt"

// Default pipeline configuration values.
const (
	DefaultChunkSize     = 1000
	DefaultChunkOverlap  = 200
	DefaultTopK          = 5
	DefaultMaxTokens     = 1024
	DefaultTemperature   = 0.2
	DefaultContextBudget = 4096
	DefaultAnswerReserve = 512
	DefaultMaxFileSize   = 20 << 20 // 20 MiB
	DefaultIngestWorkers = 4
)

// PipelineConfig is the configuration surface consumed by the pipeline.
// It is supplied at construction; the core never reads configuration
// sources directly.
type PipelineConfig struct {
	// ChunkSize is the maximum fragment length in characters.
	ChunkSize int `toml:"chunk_size"`

	// ChunkOverlap is the number of characters repeated between
	// consecutive fragments. Must be strictly less than ChunkSize.
	ChunkOverlap int `toml:"chunk_overlap"`

	// TopK is the default number of fragments retrieved per question.
	TopK int `toml:"top_k"`

	// MinScore excludes fragments below this similarity when > 0.
	MinScore float64 `toml:"min_score"`

	// MaxTokens bounds generated answer length.
	MaxTokens int `toml:"max_tokens"`

	// Temperature controls generation randomness.
	Temperature float64 `toml:"temperature"`

	// ContextBudget is the language model's usable context window in
	// tokens. Fragments are dropped lowest-ranked-first to stay within
	// ContextBudget - AnswerReserve - question size.
	ContextBudget int `toml:"context_budget"`

	// AnswerReserve is the margin kept free for the generated answer.
	AnswerReserve int `toml:"answer_reserve"`

	// MaxFileSize rejects files larger than this many bytes at ingest.
	MaxFileSize int64 `toml:"max_file_size"`

	// IngestWorkers bounds parallel document ingestion.
	IngestWorkers int `toml:"ingest_workers"`

	// Provider selects the model backend: "ollama" or "openai".
	Provider string `toml:"provider"`

	// EmbeddingModel identifies the embedding model.
	EmbeddingModel string `toml:"embedding_model"`

	// LLMModel identifies the generation model.
	LLMModel string `toml:"llm_model"`

	// BaseURL overrides the provider API endpoint.
	BaseURL string `toml:"base_url"`
}

// DefaultPipelineConfig returns a configuration with all defaults applied.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		ChunkSize:     DefaultChunkSize,
		ChunkOverlap:  DefaultChunkOverlap,
		TopK:          DefaultTopK,
		MaxTokens:     DefaultMaxTokens,
		Temperature:   DefaultTemperature,
		ContextBudget: DefaultContextBudget,
		AnswerReserve: DefaultAnswerReserve,
		MaxFileSize:   DefaultMaxFileSize,
		IngestWorkers: DefaultIngestWorkers,
		Provider:      "ollama",
	}
}

// Validate rejects configurations that cannot produce valid pipeline
// behaviour. It fails fast, before any document is processed.
func (c PipelineConfig) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidChunkConfig, c.ChunkSize)
	}
	if c.ChunkOverlap < 0 {
		return fmt.Errorf("%w: overlap must not be negative, got %d", ErrInvalidChunkConfig, c.ChunkOverlap)
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: overlap %d must be strictly less than chunk size %d",
			ErrInvalidChunkConfig, c.ChunkOverlap, c.ChunkSize)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("%w: top_k must be positive, got %d", ErrInvalidInput, c.TopK)
	}
	if c.ContextBudget <= c.AnswerReserve {
		return fmt.Errorf("%w: context budget %d must exceed answer reserve %d",
			ErrInvalidInput, c.ContextBudget, c.AnswerReserve)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("%w: temperature %g out of range [0, 2]", ErrInvalidInput, c.Temperature)
	}
	return nil
}
