package services

import (
	"context"
	"time"

	"github.com/clearbooks/finance_core_app/internal/dto"
)

// ReportingService defines read-only report generation over the ledger.
type ReportingService interface {
	// AccountBalanceReport folds flows into per-account and per-currency
	// opening/income/expense/closing summaries for the month containing asOf.
	AccountBalanceReport(ctx context.Context, asOf time.Time) (*dto.AccountBalanceReportResponse, error)

	// AccountStatement returns the raw flow sequence with running balances
	// for audit and drill-down.
	AccountStatement(ctx context.Context, accountID string, params dto.AccountStatementParams) (*dto.AccountStatementResponse, error)
}
