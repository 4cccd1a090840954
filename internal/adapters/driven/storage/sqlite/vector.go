package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"sync"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
)

// entry is one indexed fragment held in the in-memory snapshot. seq is
// the fragment row's AUTOINCREMENT id and fixes insertion order, which
// breaks score ties deterministically.
type entry struct {
	seq      int64
	fragment domain.Fragment
}

// vectorIndex implements driven.VectorIndex on top of the store's
// fragment table. All rows are mirrored in an in-memory snapshot so
// searches are a brute-force scan over vectors without touching the
// database; writes go through SQLite first and swap the snapshot only
// after the transaction commits.
type vectorIndex struct {
	store *Store

	mu        sync.RWMutex
	entries   []entry
	dimension int
}

var _ driven.VectorIndex = (*vectorIndex)(nil)

func newVectorIndex(store *Store) *vectorIndex {
	return &vectorIndex{store: store}
}

// load populates the snapshot from the fragments table, ordered by
// insertion.
func (v *vectorIndex) load() error {
	var dimension int
	row := v.store.db.QueryRow("SELECT value FROM index_meta WHERE key = ?", dimensionKey)
	var raw string
	switch err := row.Scan(&raw); {
	case err == nil:
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("parsing stored dimension %q: %w", raw, err)
		}
		dimension = parsed
	case errors.Is(err, sql.ErrNoRows):
		// fresh index, dimension fixed on first insert
	default:
		return fmt.Errorf("reading dimension: %w", err)
	}

	rows, err := v.store.db.Query(`
		SELECT seq, id, document_id, position, span_start, span_end, content, token_estimate, embedding
		FROM fragments ORDER BY seq
	`)
	if err != nil {
		return fmt.Errorf("loading index entries: %w", err)
	}
	defer rows.Close()

	var entries []entry //nolint:prealloc // size unknown from query
	for rows.Next() {
		var e entry
		var blob []byte
		if err := rows.Scan(&e.seq, &e.fragment.ID, &e.fragment.DocumentID,
			&e.fragment.Position, &e.fragment.Start, &e.fragment.End,
			&e.fragment.Content, &e.fragment.TokenEstimate, &blob); err != nil {
			return fmt.Errorf("scanning index entry: %w", err)
		}
		e.fragment.Embedding = bytesToFloat32Slice(blob)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating index entries: %w", err)
	}

	v.mu.Lock()
	v.entries = entries
	v.dimension = dimension
	v.mu.Unlock()
	return nil
}

// Upsert replaces all entries for documentID with the given fragments
// in a single transaction, then swaps the snapshot.
func (v *vectorIndex) Upsert(ctx context.Context, documentID string, fragments []domain.Fragment) error {
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

	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning upsert: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if dimension != v.dimension {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO index_meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
			dimensionKey, strconv.Itoa(dimension)); err != nil {
			return fmt.Errorf("storing dimension: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM fragments WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("clearing prior entries: %w", err)
	}

	inserted := make([]entry, 0, len(fragments))
	for _, frag := range fragments {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO fragments (id, document_id, position, span_start, span_end, content, token_estimate, embedding)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, frag.ID, frag.DocumentID, frag.Position, frag.Start, frag.End,
			frag.Content, frag.TokenEstimate, float32SliceToBytes(frag.Embedding))
		if err != nil {
			return fmt.Errorf("inserting entry %s: %w", frag.ID, err)
		}
		seq, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading entry seq: %w", err)
		}
		inserted = append(inserted, entry{seq: seq, fragment: frag})
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing upsert: %w", err)
	}

	kept := make([]entry, 0, len(v.entries)+len(inserted))
	for _, e := range v.entries {
		if e.fragment.DocumentID != documentID {
			kept = append(kept, e)
		}
	}
	kept = append(kept, inserted...)
	v.entries = kept
	v.dimension = dimension
	return nil
}

// Delete removes all entries for documentID.
func (v *vectorIndex) Delete(ctx context.Context, documentID string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, err := v.store.db.ExecContext(ctx, "DELETE FROM fragments WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("deleting entries: %w", err)
	}

	kept := v.entries[:0]
	for _, e := range v.entries {
		if e.fragment.DocumentID != documentID {
			kept = append(kept, e)
		}
	}
	v.entries = kept
	return nil
}

// Search scans all entries and returns the top k by cosine similarity.
func (v *vectorIndex) Search(ctx context.Context, query []float32, k int, minScore float64) ([]driven.VectorHit, error) {
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
		seq      int64
		fragment domain.Fragment
		score    float64
	}

	hits := make([]scored, 0, len(v.entries))
	for _, e := range v.entries {
		score := cosineSimilarity(query, e.fragment.Embedding)
		if minScore > 0 && score < minScore {
			continue
		}
		hits = append(hits, scored{seq: e.seq, fragment: e.fragment, score: score})
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

// Count returns the number of index entries.
func (v *vectorIndex) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.entries), nil
}

// Dimensions returns the fixed vector dimension, 0 before first insert.
func (v *vectorIndex) Dimensions() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.dimension
}

// Close is a no-op; the owning Store closes the database.
func (v *vectorIndex) Close() error {
	return nil
}

// cosineSimilarity computes the cosine similarity of two equal-length
// vectors. Zero vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
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
