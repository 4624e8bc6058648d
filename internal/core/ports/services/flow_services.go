package services

import (
	"context"

	"github.com/clearbooks/finance_core_app/internal/core/domain"
	"github.com/clearbooks/finance_core_app/internal/dto"
)

// FlowReaderSvc defines read operations for ledger entries
type FlowReaderSvc interface {
	// GetFlowByID retrieves a specific flow.
	GetFlowByID(ctx context.Context, flowID string) (*domain.Flow, error)

	// ListFlowsByAccount retrieves an account's paginated flow history in
	// posting-sequence order.
	ListFlowsByAccount(ctx context.Context, accountID string, params dto.ListFlowsParams) (*dto.ListFlowsResponse, error)
}

// FlowWriterSvc defines write operations for ledger entries
type FlowWriterSvc interface {
	// PostFlow validates and posts a ledger entry; the single balance
	// mutation path for direct transactions.
	PostFlow(ctx context.Context, req dto.PostFlowRequest, creatorUserID string) (*domain.Flow, error)

	// ReverseFlow posts an offsetting flow referencing the original; posted
	// flows are never edited in place.
	ReverseFlow(ctx context.Context, flowID string, memo string, userID string) (*domain.Flow, error)

	// AttachVoucher appends a voucher URL to a posted flow.
	AttachVoucher(ctx context.Context, flowID string, voucherURL string, userID string) error
}

// FlowSvcFacade combines all flow-related service interfaces
type FlowSvcFacade interface {
	FlowReaderSvc
	FlowWriterSvc
}
