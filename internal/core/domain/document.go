package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// DocumentStatus tracks a document through the ingestion state machine.
type DocumentStatus string

const (
	// StatusPending means the document is known but not yet indexed.
	StatusPending DocumentStatus = "pending"

	// StatusProcessed means the document was ingested and its fragments
	// are in the index.
	StatusProcessed DocumentStatus = "processed"

	// StatusFailed means ingestion failed; none of the document's
	// fragments from the failed attempt are in the index.
	StatusFailed DocumentStatus = "failed"
)

// Document represents a source file registered with the pipeline.
type Document struct {
	// ID is derived from the source path and is stable across
	// re-ingestion of the same file.
	ID string

	// Path is the original file location.
	Path string

	// Title is a human-readable name derived from the filename.
	Title string

	// Format is the lowercased file extension without the dot
	// (e.g. "pdf", "docx", "txt").
	Format string

	// ContentHash is the SHA-256 hex digest of the raw file bytes.
	// Re-ingestion with an unchanged hash is a no-op.
	ContentHash string

	// Status is the ingestion state.
	Status DocumentStatus

	// Error holds the failure reason when Status is StatusFailed.
	Error string

	// FragmentCount is the number of fragments currently indexed.
	FragmentCount int

	// IngestedAt is when the document was last (re-)ingested.
	IngestedAt time.Time
}

// Fragment is a contiguous slice of a document's extracted text,
// the unit of retrieval.
type Fragment struct {
	// ID is the unique fragment identifier.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Position is the ordinal position within the document.
	Position int

	// Start and End are rune offsets of this fragment's span in the
	// extracted text. Overlapping fragments have overlapping spans.
	Start int
	End   int

	// Content is the overlap-adjusted fragment text.
	Content string

	// TokenEstimate is a rough token count used for prompt budgeting.
	TokenEstimate int

	// Embedding is the vector representation. Populated during
	// ingestion, stored alongside the fragment.
	Embedding []float32
}

// DocumentID derives the stable document identifier for a source path.
func DocumentID(path string) string {
	sum := sha256.Sum256([]byte(path))
	return hex.EncodeToString(sum[:])[:16]
}

// HashContent returns the SHA-256 hex digest of raw file bytes.
func HashContent(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// EstimateTokens approximates the token count of text. Four characters
// per token is conservative for English prose and keeps prompt
// budgeting deterministic without a tokenizer dependency.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return (len(text) + 3) / 4
}

// RawDocument is a file's bytes plus its declared format, the loader's
// input before text extraction.
type RawDocument struct {
	// Path is the original file location.
	Path string

	// Format is the lowercased extension without the dot.
	Format string

	// Content is the raw bytes.
	Content []byte
}
