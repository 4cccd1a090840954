// Package memory provides in-memory implementations of the storage
// ports for testing.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore
// for testing. Pair it with a VectorIndex from this package so
// GetFragments reads the index's entries.
type DocumentStore struct {
	mu    sync.RWMutex
	docs  map[string]domain.Document
	index *VectorIndex
}

// NewDocumentStore creates a new in-memory document store reading
// fragment data from index.
func NewDocumentStore(index *VectorIndex) *DocumentStore {
	return &DocumentStore{
		docs:  make(map[string]domain.Document),
		index: index,
	}
}

// SaveDocument stores or updates a document record.
func (s *DocumentStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = *doc
	return nil
}

// GetDocument retrieves a document by ID.
func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// GetFragments retrieves a document's fragments ordered by position.
func (s *DocumentStore) GetFragments(_ context.Context, documentID string) ([]domain.Fragment, error) {
	return s.index.fragmentsFor(documentID), nil
}

// DeleteDocument removes a document record.
func (s *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
	return nil
}

// ListDocuments returns all documents ordered by path.
func (s *DocumentStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]domain.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, nil
}
