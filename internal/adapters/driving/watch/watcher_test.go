package watch

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driving"
)

// fakePipeline records the paths and document IDs it was called with.
type fakePipeline struct {
	mu       sync.Mutex
	ingested [][]string
	removed  []string
}

func (p *fakePipeline) Ingest(_ context.Context, path string) (driving.IngestResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ingested = append(p.ingested, []string{path})
	return driving.IngestResult{Path: path, Outcome: driving.IngestProcessed}, nil
}

func (p *fakePipeline) IngestAll(_ context.Context, paths []string) []driving.IngestResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ingested = append(p.ingested, paths)
	results := make([]driving.IngestResult, len(paths))
	for i, path := range paths {
		results[i] = driving.IngestResult{Path: path, Outcome: driving.IngestProcessed}
	}
	return results
}

func (p *fakePipeline) Remove(_ context.Context, documentID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.removed = append(p.removed, documentID)
	return nil
}

func (p *fakePipeline) Ask(_ context.Context, _ domain.Query) (*domain.Answer, error) {
	return nil, nil
}

func (p *fakePipeline) Documents(_ context.Context) ([]domain.Document, error) {
	return nil, nil
}

var _ driving.Pipeline = (*fakePipeline)(nil)

func TestRelevantFiltersByExtension(t *testing.T) {
	w := New(&fakePipeline{}, []string{"txt", "PDF"}, 0)

	assert.True(t, w.relevant("/docs/a.txt"))
	assert.True(t, w.relevant("/docs/b.pdf"), "extension matching is case-insensitive")
	assert.False(t, w.relevant("/docs/c.png"))
	assert.False(t, w.relevant("/docs/noext"))
}

func TestHandleEventAccumulatesWrites(t *testing.T) {
	w := New(&fakePipeline{}, []string{"txt"}, 0)
	pending := make(map[string]struct{})

	restart := w.handleEvent(context.Background(), nil, fsnotify.Event{
		Name: "/docs/a.txt",
		Op:   fsnotify.Write,
	}, pending)
	assert.True(t, restart)

	restart = w.handleEvent(context.Background(), nil, fsnotify.Event{
		Name: "/docs/a.txt",
		Op:   fsnotify.Write,
	}, pending)
	assert.True(t, restart, "repeat writes restart the debounce window")
	assert.Len(t, pending, 1, "repeat writes coalesce")

	restart = w.handleEvent(context.Background(), nil, fsnotify.Event{
		Name: "/docs/skip.png",
		Op:   fsnotify.Write,
	}, pending)
	assert.False(t, restart)
	assert.Len(t, pending, 1)
}

func TestHandleEventRemoveDropsDocument(t *testing.T) {
	pipeline := &fakePipeline{}
	w := New(pipeline, []string{"txt"}, 0)
	pending := map[string]struct{}{"/docs/a.txt": {}}

	restart := w.handleEvent(context.Background(), nil, fsnotify.Event{
		Name: "/docs/a.txt",
		Op:   fsnotify.Remove,
	}, pending)
	assert.False(t, restart)
	assert.Empty(t, pending, "a removed file has no pending re-ingest")

	abs, err := filepath.Abs("/docs/a.txt")
	require.NoError(t, err)
	require.Len(t, pipeline.removed, 1)
	assert.Equal(t, domain.DocumentID(abs), pipeline.removed[0])
}

func TestFlushIngestsPendingInOrder(t *testing.T) {
	pipeline := &fakePipeline{}
	w := New(pipeline, []string{"txt"}, 0)

	pending := map[string]struct{}{
		"/docs/b.txt": {},
		"/docs/a.txt": {},
	}
	w.flush(context.Background(), pending)

	assert.Empty(t, pending)
	require.Len(t, pipeline.ingested, 1)
	assert.Equal(t, []string{"/docs/a.txt", "/docs/b.txt"}, pipeline.ingested[0])
}

func TestFlushEmptyPendingIsNoOp(t *testing.T) {
	pipeline := &fakePipeline{}
	w := New(pipeline, []string{"txt"}, 0)

	w.flush(context.Background(), map[string]struct{}{})
	assert.Empty(t, pipeline.ingested)
}
