package services

import (
	"context"

	"github.com/clearbooks/finance_core_app/internal/core/domain"
	"github.com/clearbooks/finance_core_app/internal/dto"
)

// DocumentReaderSvc defines read operations for AR/AP documents
type DocumentReaderSvc interface {
	// GetDocumentByID retrieves a specific document.
	GetDocumentByID(ctx context.Context, docID string) (*domain.Document, error)

	// ListDocuments retrieves a paginated, filtered list of documents.
	ListDocuments(ctx context.Context, params dto.ListDocumentsParams) (*dto.ListDocumentsResponse, error)
}

// DocumentWriterSvc defines lifecycle operations for AR/AP documents
type DocumentWriterSvc interface {
	// CreateDocument creates a draft receivable or payable.
	CreateDocument(ctx context.Context, req dto.CreateDocumentRequest, creatorUserID string) (*domain.Document, error)

	// ConfirmDocument posts the confirmation flow and moves the document from
	// DRAFT to CONFIRMED; idempotent on key replay.
	ConfirmDocument(ctx context.Context, docID string, req dto.ConfirmDocumentRequest, userID string) (*domain.Document, error)

	// ReverseDocument posts a compensating flow for the unsettled remainder
	// and freezes the document. Legal from any non-terminal state; prior
	// settlements stay valid.
	ReverseDocument(ctx context.Context, docID string, memo string, userID string) (*domain.Document, error)
}

// DocumentSvcFacade combines all document-related service interfaces
type DocumentSvcFacade interface {
	DocumentReaderSvc
	DocumentWriterSvc
}
