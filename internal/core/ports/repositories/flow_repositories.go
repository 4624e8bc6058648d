package repositories

import (
	"context"
	"time"

	"github.com/clearbooks/finance_core_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// FlowListFilter narrows ListFlowsByAccount results.
type FlowListFilter struct {
	From *time.Time // inclusive biz_date lower bound
	To   *time.Time // inclusive biz_date upper bound
}

// FlowReader defines read operations for ledger entries
type FlowReader interface {
	// FindFlowByID retrieves a specific flow by its unique identifier.
	FindFlowByID(ctx context.Context, flowID string) (*domain.Flow, error)

	// ListFlowsByAccount retrieves a paginated list of flows for an account in
	// posting-sequence order using token-based pagination.
	ListFlowsByAccount(ctx context.Context, accountID string, filter FlowListFilter, limit int, nextToken *string) ([]domain.Flow, *string, error)
}

// FlowWriter defines write operations for ledger entries
type FlowWriter interface {
	// PostFlow atomically locks the account, computes balance before/after,
	// inserts the flow and writes the new balance. The returned flow carries
	// the assigned sequence and balance snapshot. Fails with
	// ErrInsufficientBalance when an outgoing posting would overdraw a
	// non-overdraft account.
	PostFlow(ctx context.Context, flow domain.Flow) (*domain.Flow, error)

	// PostFlowInTx performs PostFlow's work inside a caller-owned transaction,
	// so confirmations and transfers can combine flow postings with their own
	// writes in one atomic unit.
	PostFlowInTx(ctx context.Context, tx pgx.Tx, flow domain.Flow) (*domain.Flow, error)

	// AttachVoucher appends a voucher URL to a flow. The only permitted
	// mutation of a posted flow.
	AttachVoucher(ctx context.Context, flowID string, voucherURL string, userID string, now time.Time) error
}

// FlowRepositoryFacade combines all flow-related repository interfaces
type FlowRepositoryFacade interface {
	FlowReader
	FlowWriter
	TransactionManager
}
