package services

import (
	"context"

	"github.com/clearbooks/finance_core_app/internal/core/domain"
	"github.com/clearbooks/finance_core_app/internal/dto"
)

// SettlementReaderSvc defines read operations for settlements
type SettlementReaderSvc interface {
	// GetSettlementByID retrieves a specific settlement.
	GetSettlementByID(ctx context.Context, settlementID string) (*domain.Settlement, error)

	// ListSettlementsByDoc retrieves all settlements applied to a document.
	ListSettlementsByDoc(ctx context.Context, docID string) ([]domain.Settlement, error)

	// ListSettlementCandidates retrieves the flows eligible to back a
	// settlement of the given document; read-only.
	ListSettlementCandidates(ctx context.Context, docID string, params dto.ListSettlementCandidatesParams) (*dto.ListSettlementCandidatesResponse, error)
}

// SettlementWriterSvc defines write operations for settlements
type SettlementWriterSvc interface {
	// Settle allocates part of a flow's value against a document, never
	// exceeding either side's remaining capacity; idempotent on key replay.
	Settle(ctx context.Context, req dto.CreateSettlementRequest, userID string) (*domain.Settlement, error)

	// ReverseSettlement records an explicit compensating entry for a
	// settlement and restores the document's capacity.
	ReverseSettlement(ctx context.Context, settlementID string, reason string, userID string) (*domain.SettlementReversal, error)
}

// SettlementSvcFacade combines all settlement-related service interfaces
type SettlementSvcFacade interface {
	SettlementReaderSvc
	SettlementWriterSvc
}
