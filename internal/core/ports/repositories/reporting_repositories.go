package repositories

import (
	"context"
	"time"

	"github.com/clearbooks/finance_core_app/internal/core/domain"
)

// ReportingRepository defines read-only aggregation over the flow history.
type ReportingRepository interface {
	// GetAccountBalanceData folds flows into per-account opening/income/
	// expense/closing sums for the month containing asOf.
	GetAccountBalanceData(ctx context.Context, periodStart, periodEnd time.Time) ([]domain.AccountBalanceRow, error)

	// GetAccountStatement retrieves the raw flow sequence for an account with
	// running balances, using token-based pagination.
	GetAccountStatement(ctx context.Context, accountID string, from, to time.Time, limit int, nextToken *string) ([]domain.Flow, *string, error)
}
