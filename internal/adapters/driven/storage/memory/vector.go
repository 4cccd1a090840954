package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

type memEntry struct {
	seq      int64
	fragment domain.Fragment
}

// VectorIndex is an in-memory implementation of driven.VectorIndex for
// testing. Same semantics as the SQLite index: cosine similarity,
// insertion-order tie-breaks, dimension fixed by the first insert.
type VectorIndex struct {
	mu        sync.RWMutex
	entries   []memEntry
	nextSeq   int64
	dimension int
}

// NewVectorIndex creates a new in-memory vector index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{}
}

// Upsert replaces all entries for documentID with the given fragments.
func (v *VectorIndex) Upsert(_ context.Context, documentID string, fragments []domain.Fragment) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	dimension := v.dimension
	for _, frag := range fragments {
		if len(frag.Embedding) == 0 {
			return fmt.Errorf("%w: fragment %s has no embedding", domain.ErrInvalidInput, frag.ID)
		}
		if dimension == 0 {
			dimension = len(frag.Embedding)
			continue
		}
		if len(frag.Embedding) != dimension {
			return fmt.Errorf("%w: fragment %s has %d dimensions, index has %d",
				domain.ErrVectorDimensionMismatch, frag.ID, len(frag.Embedding), dimension)
		}
	}

	kept := make([]memEntry, 0, len(v.entries)+len(fragments))
	for _, e := range v.entries {
		if e.fragment.DocumentID != documentID {
			kept = append(kept, e)
		}
	}
	for _, frag := range fragments {
		v.nextSeq++
		kept = append(kept, memEntry{seq: v.nextSeq, fragment: frag})
	}
	v.entries = kept
	v.dimension = dimension
	return nil
}

// Delete removes all entries for documentID.
func (v *VectorIndex) Delete(_ context.Context, documentID string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	kept := v.entries[:0]
	for _, e := range v.entries {
		if e.fragment.DocumentID != documentID {
			kept = append(kept, e)
		}
	}
	v.entries = kept
	return nil
}

// Search returns up to k entries ranked by descending cosine similarity.
func (v *VectorIndex) Search(ctx context.Context, query []float32, k int, minScore float64) ([]driven.VectorHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	if len(v.entries) == 0 {
		return nil, nil
	}
	if len(query) != v.dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrVectorDimensionMismatch, len(query), v.dimension)
	}

	type scored struct {
		memEntry
		score float64
	}

	hits := make([]scored, 0, len(v.entries))
	for _, e := range v.entries {
		score := cosine(query, e.fragment.Embedding)
		if minScore > 0 && score < minScore {
			continue
		}
		hits = append(hits, scored{memEntry: e, score: score})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].seq < hits[j].seq
	})

	if len(hits) > k {
		hits = hits[:k]
	}

	results := make([]driven.VectorHit, len(hits))
	for i, h := range hits {
		results[i] = driven.VectorHit{Fragment: h.fragment, Score: h.score}
	}
	return results, nil
}

// Count returns the number of entries in the index.
func (v *VectorIndex) Count(_ context.Context) (int, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.entries), nil
}

// Dimensions returns the fixed vector dimension, 0 before first insert.
func (v *VectorIndex) Dimensions() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.dimension
}

// Close releases nothing; present to satisfy the interface.
func (v *VectorIndex) Close() error {
	return nil
}

// fragmentsFor returns documentID's fragments ordered by position.
func (v *VectorIndex) fragmentsFor(documentID string) []domain.Fragment {
	v.mu.RLock()
	defer v.mu.RUnlock()

	var fragments []domain.Fragment
	for _, e := range v.entries {
		if e.fragment.DocumentID == documentID {
			fragments = append(fragments, e.fragment)
		}
	}
	sort.Slice(fragments, func(i, j int) bool { return fragments[i].Position < fragments[j].Position })
	return fragments
}

func cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
