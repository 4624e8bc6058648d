package repositories

import (
	"context"

	"github.com/clearbooks/finance_core_app/internal/core/domain"
)

// DocumentListFilter narrows ListDocuments results.
type DocumentListFilter struct {
	Kind    *domain.DocumentKind
	Status  *domain.DocumentStatus
	PartyID *string
	SiteID  *string
}

// DocumentReader defines read operations for AR/AP documents
type DocumentReader interface {
	// FindDocumentByID retrieves a document by its unique identifier.
	FindDocumentByID(ctx context.Context, docID string) (*domain.Document, error)

	// ListDocuments retrieves a paginated, filtered list of documents using
	// token-based pagination.
	ListDocuments(ctx context.Context, filter DocumentListFilter, limit int, nextToken *string) ([]domain.Document, *string, error)
}

// DocumentWriter defines write operations for AR/AP documents
type DocumentWriter interface {
	// SaveDocument persists a new draft document.
	SaveDocument(ctx context.Context, doc domain.Document) error

	// ConfirmDocument locks the document row, verifies it is still DRAFT,
	// posts the confirmation flow and transitions the document to CONFIRMED,
	// all in one transaction. A non-nil idempotencyKey makes retries replay
	// the original result instead of double-posting.
	ConfirmDocument(ctx context.Context, docID string, confirmFlow domain.Flow, idempotencyKey *string) (*domain.Document, error)

	// ReverseDocument locks the document row, verifies it is non-terminal,
	// posts the compensating flow for the unsettled remainder (omitted when
	// the document was never confirmed or the remainder is zero) and freezes
	// the document at REVERSED, all in one transaction. The remainder is
	// recomputed under the row lock so concurrent settlements cannot skew it.
	ReverseDocument(ctx context.Context, docID string, userID string, memo string) (*domain.Document, *domain.Flow, error)
}

// DocumentRepositoryFacade combines all document-related repository interfaces
type DocumentRepositoryFacade interface {
	DocumentReader
	DocumentWriter
}
