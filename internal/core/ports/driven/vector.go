package driven

import (
	"context"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
)

// VectorHit is a similarity search result.
type VectorHit struct {
	// Fragment is the matched index entry, embedding included.
	Fragment domain.Fragment

	// Score is the cosine similarity to the query vector. The metric is
	// fixed per index instance.
	Score float64
}

// VectorIndex persists (fragment, vector) entries and answers
// nearest-neighbour queries. It owns the index entries exclusively and
// is the durable source of truth for what has been ingested.
//
// The similarity metric is cosine; ties are broken by insertion order
// (earlier-inserted entries rank first) so identical inputs produce
// identical results.
type VectorIndex interface {
	// Upsert replaces all entries for documentID with the given
	// fragments, atomically: a concurrent Search sees either the prior
	// set or the new set, never a mix. Every fragment must carry an
	// embedding of the index's fixed dimension; a mismatch is rejected
	// with domain.ErrVectorDimensionMismatch and nothing is written.
	// The dimension is fixed by the first insert for the lifetime of
	// the index.
	Upsert(ctx context.Context, documentID string, fragments []domain.Fragment) error

	// Delete removes all entries for documentID. No-op when none exist.
	Delete(ctx context.Context, documentID string) error

	// Search returns up to k entries ranked by descending similarity,
	// excluding entries scoring below minScore when minScore > 0.
	Search(ctx context.Context, query []float32, k int, minScore float64) ([]VectorHit, error)

	// Count returns the number of entries in the index.
	Count(ctx context.Context) (int, error)

	// Dimensions returns the fixed vector dimension, or 0 before the
	// first insert.
	Dimensions() int

	// Close releases resources.
	Close() error
}
