package driving

import (
	"context"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
)

// IngestOutcome describes what happened to one document during ingestion.
type IngestOutcome int

const (
	// IngestProcessed means the document was (re-)indexed.
	IngestProcessed IngestOutcome = iota

	// IngestSkipped means the content hash was unchanged and the
	// existing index entries were left untouched.
	IngestSkipped

	// IngestFailed means ingestion failed; the document is recorded
	// with status failed and nothing from this attempt was indexed.
	IngestFailed
)

// IngestResult reports the outcome of ingesting one file.
type IngestResult struct {
	// Path is the source file.
	Path string

	// DocumentID is the stable document identifier.
	DocumentID string

	// Outcome is what happened.
	Outcome IngestOutcome

	// Fragments is the number of fragments indexed (0 unless processed).
	Fragments int

	// Err is the failure cause when Outcome is IngestFailed.
	Err error
}

// Pipeline is the entire surface the CLI/TUI layer calls.
type Pipeline interface {
	// Ingest indexes a single file. Re-ingesting unchanged content is a
	// no-op. The returned result carries the per-document outcome; err
	// is non-nil only for failures outside any one document's scope.
	Ingest(ctx context.Context, path string) (IngestResult, error)

	// IngestAll indexes multiple files with bounded parallelism.
	// Per-document failures are isolated: one corrupt file never aborts
	// the rest. Results are returned in input order.
	IngestAll(ctx context.Context, paths []string) []IngestResult

	// Remove deletes a document and all its index entries as one
	// logical operation.
	Remove(ctx context.Context, documentID string) error

	// Ask answers a question from the indexed documents. An empty index
	// yields the fixed no-information answer, not an error.
	Ask(ctx context.Context, query domain.Query) (*domain.Answer, error)

	// Documents lists all registered documents.
	Documents(ctx context.Context) ([]domain.Document, error)
}
