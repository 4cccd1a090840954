package driven

import (
	"context"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
)

// DocumentStore persists document records. Fragment rows are written by
// the VectorIndex (which owns index entries); this store reads them for
// listing and inspection.
type DocumentStore interface {
	// SaveDocument stores or updates a document record.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID, or domain.ErrNotFound.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetFragments retrieves a document's fragments ordered by position.
	GetFragments(ctx context.Context, documentID string) ([]domain.Fragment, error)

	// DeleteDocument removes a document record. No-op when absent.
	DeleteDocument(ctx context.Context, id string) error

	// ListDocuments returns all documents ordered by path.
	ListDocuments(ctx context.Context) ([]domain.Document, error)
}
