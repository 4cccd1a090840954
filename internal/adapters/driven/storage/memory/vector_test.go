package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
)

func fragment(docID string, position int, embedding []float32) domain.Fragment {
	return domain.Fragment{
		ID:         docID + "-" + string(rune('0'+position)),
		DocumentID: docID,
		Position:   position,
		Content:    "content",
		Embedding:  embedding,
	}
}

func TestVectorIndexSearchRanksAndBreaksTies(t *testing.T) {
	index := NewVectorIndex()
	ctx := context.Background()

	require.NoError(t, index.Upsert(ctx, "a", []domain.Fragment{
		fragment("a", 0, []float32{1, 0}),
		fragment("a", 1, []float32{0, 1}),
	}))
	require.NoError(t, index.Upsert(ctx, "b", []domain.Fragment{
		fragment("b", 0, []float32{1, 0}),
	}))

	hits, err := index.Search(ctx, []float32{1, 0}, 3, 0)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	// a-0 and b-0 tie at score 1; a-0 was inserted first.
	assert.Equal(t, "a-0", hits[0].Fragment.ID)
	assert.Equal(t, "b-0", hits[1].Fragment.ID)
	assert.Equal(t, "a-1", hits[2].Fragment.ID)
}

func TestVectorIndexUpsertReplaces(t *testing.T) {
	index := NewVectorIndex()
	ctx := context.Background()

	require.NoError(t, index.Upsert(ctx, "a", []domain.Fragment{
		fragment("a", 0, []float32{1, 0}),
		fragment("a", 1, []float32{0, 1}),
	}))
	require.NoError(t, index.Upsert(ctx, "a", []domain.Fragment{
		fragment("a", 0, []float32{0, 1}),
	}))

	count, err := index.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestVectorIndexDimensionMismatch(t *testing.T) {
	index := NewVectorIndex()
	ctx := context.Background()

	require.NoError(t, index.Upsert(ctx, "a", []domain.Fragment{
		fragment("a", 0, []float32{1, 0}),
	}))

	err := index.Upsert(ctx, "b", []domain.Fragment{
		fragment("b", 0, []float32{1, 0, 0}),
	})
	assert.ErrorIs(t, err, domain.ErrVectorDimensionMismatch)

	_, err = index.Search(ctx, []float32{1}, 1, 0)
	assert.ErrorIs(t, err, domain.ErrVectorDimensionMismatch)
}

func TestDocumentStoreRoundTrip(t *testing.T) {
	index := NewVectorIndex()
	docs := NewDocumentStore(index)
	ctx := context.Background()

	doc := &domain.Document{ID: "a", Path: "/p/a.txt", Status: domain.StatusProcessed}
	require.NoError(t, docs.SaveDocument(ctx, doc))
	require.NoError(t, index.Upsert(ctx, "a", []domain.Fragment{
		fragment("a", 1, []float32{0, 1}),
		fragment("a", 0, []float32{1, 0}),
	}))

	got, err := docs.GetDocument(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "/p/a.txt", got.Path)

	fragments, err := docs.GetFragments(ctx, "a")
	require.NoError(t, err)
	require.Len(t, fragments, 2)
	assert.Equal(t, 0, fragments[0].Position)
	assert.Equal(t, 1, fragments[1].Position)

	require.NoError(t, docs.DeleteDocument(ctx, "a"))
	_, err = docs.GetDocument(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
