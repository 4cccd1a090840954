package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors and are matched with
// errors.Is after wrapping.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedFormat indicates no loader handles the file's
	// extension or content.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrCorruptDocument indicates parsing failed partway through a
	// document. The document is marked failed and never partially indexed.
	ErrCorruptDocument = errors.New("corrupt document")

	// ErrInvalidChunkConfig indicates chunk size/overlap configuration
	// that cannot produce valid fragments. Rejected before any processing.
	ErrInvalidChunkConfig = errors.New("invalid chunk configuration")

	// ErrEmbeddingUnavailable indicates the embedding service cannot be
	// reached. Surfaced, never skipped: an un-embedded fragment must not
	// enter the index.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorDimensionMismatch indicates a vector whose dimension does
	// not match the index. The entry is rejected, not indexed.
	ErrVectorDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrIndexUnreadable indicates the on-disk index could not be opened
	// or fails integrity checks. The index is never silently replaced
	// with an empty one.
	ErrIndexUnreadable = errors.New("index unreadable")

	// ErrGenerationTimeout indicates the language model call exceeded
	// its deadline.
	ErrGenerationTimeout = errors.New("generation timed out")

	// ErrGenerationUnavailable indicates the language model service
	// cannot be reached.
	ErrGenerationUnavailable = errors.New("generation service unavailable")

	// ErrIngestInProgress indicates an ingestion for the same document
	// is already running.
	ErrIngestInProgress = errors.New("ingestion already in progress")
)

// IsTransient reports whether an error may succeed on retry. Only
// service availability and timeout failures qualify; format,
// configuration and dimension errors are deterministic and must not be
// retried.
func IsTransient(err error) bool {
	return errors.Is(err, ErrEmbeddingUnavailable) ||
		errors.Is(err, ErrGenerationUnavailable) ||
		errors.Is(err, ErrGenerationTimeout)
}
