package repositories

import (
	"context"

	"github.com/clearbooks/finance_core_app/internal/core/domain"
)

// SettlementReader defines read operations for settlements
type SettlementReader interface {
	// FindSettlementByID retrieves a settlement by its unique identifier.
	FindSettlementByID(ctx context.Context, settlementID string) (*domain.Settlement, error)

	// ListSettlementsByDoc retrieves all settlements applied to a document.
	ListSettlementsByDoc(ctx context.Context, docID string) ([]domain.Settlement, error)

	// ListSettlementCandidates retrieves flows of the given type and currency
	// that still have unallocated value, using token-based pagination. Purely
	// a read; never mutates state.
	ListSettlementCandidates(ctx context.Context, flowType domain.FlowType, currencyCode string, counterparty string, limit int, nextToken *string) ([]domain.SettlementCandidate, *string, error)
}

// SettlementWriter defines write operations for settlements
type SettlementWriter interface {
	// SaveSettlement locks the document and flow rows, re-checks remaining
	// capacity on both sides under the locks, inserts the settlement,
	// increments the document's settled amount and recomputes its status, all in
	// one transaction. Exceeding either capacity fails with ErrOverSettlement.
	// A non-nil idempotencyKey makes retries replay the original settlement.
	SaveSettlement(ctx context.Context, settlement domain.Settlement, idempotencyKey *string) (*domain.Settlement, *domain.Document, error)

	// ReverseSettlement inserts an explicit reversal record for a settlement,
	// marks the settlement reversed, decrements the document's settled amount
	// and recomputes its status in one transaction. Settlement rows themselves
	// are never deleted or edited.
	ReverseSettlement(ctx context.Context, settlementID string, reason string, userID string) (*domain.SettlementReversal, *domain.Document, error)
}

// SettlementRepositoryFacade combines all settlement-related repository interfaces
type SettlementRepositoryFacade interface {
	SettlementReader
	SettlementWriter
}
