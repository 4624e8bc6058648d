package services

import (
	"context"

	"github.com/clearbooks/finance_core_app/internal/core/domain"
	"github.com/clearbooks/finance_core_app/internal/dto"
)

// TransferSvcFacade defines operations for atomic two-leg transfers.
type TransferSvcFacade interface {
	// CreateTransfer moves money between two accounts, all-or-nothing.
	CreateTransfer(ctx context.Context, req dto.CreateTransferRequest, creatorUserID string) (*domain.AccountTransfer, error)

	// GetTransferByID retrieves a specific transfer.
	GetTransferByID(ctx context.Context, transferID string) (*domain.AccountTransfer, error)

	// ListTransfers retrieves a paginated list of transfers.
	ListTransfers(ctx context.Context, params dto.ListTransfersParams) (*dto.ListTransfersResponse, error)
}
