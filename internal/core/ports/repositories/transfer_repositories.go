package repositories

import (
	"context"

	"github.com/clearbooks/finance_core_app/internal/core/domain"
)

// TransferReader defines read operations for account transfers
type TransferReader interface {
	// FindTransferByID retrieves a transfer by its unique identifier.
	FindTransferByID(ctx context.Context, transferID string) (*domain.AccountTransfer, error)

	// ListTransfers retrieves a paginated list of transfers using token-based pagination.
	ListTransfers(ctx context.Context, limit int, nextToken *string) ([]domain.AccountTransfer, *string, error)
}

// TransferWriter defines write operations for account transfers
type TransferWriter interface {
	// SaveTransfer persists the transfer row and posts both legs in one
	// transaction: the out leg on the source account and the in leg on the
	// destination. If either leg fails, nothing is applied.
	SaveTransfer(ctx context.Context, transfer domain.AccountTransfer, outFlow domain.Flow, inFlow domain.Flow) (*domain.AccountTransfer, error)
}

// TransferRepositoryFacade combines all transfer-related repository interfaces
type TransferRepositoryFacade interface {
	TransferReader
	TransferWriter
}
