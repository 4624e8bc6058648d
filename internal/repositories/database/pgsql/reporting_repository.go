package pgsql

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/clearbooks/finance_core_app/internal/apperrors"
	"github.com/clearbooks/finance_core_app/internal/core/domain"
	portsrepo "github.com/clearbooks/finance_core_app/internal/core/ports/repositories"
	"github.com/clearbooks/finance_core_app/internal/models"
	"github.com/clearbooks/finance_core_app/internal/utils/mapping"
	"github.com/clearbooks/finance_core_app/internal/utils/pagination"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxReportingRepository struct {
	BaseRepository
}

// newPgxReportingRepository creates a new read-only repository for reports.
func newPgxReportingRepository(pool *pgxpool.Pool) portsrepo.ReportingRepository {
	return &PgxReportingRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxReportingRepository implements portsrepo.ReportingRepository
var _ portsrepo.ReportingRepository = (*PgxReportingRepository)(nil)

// GetAccountBalanceData folds the flow history into per-account sums for the
// period. Opening is everything strictly before periodStart; income and
// expense are the positive and negative signed sums within
// [periodStart, periodEnd). Accounts with no flows at all still appear with
// zero sums.
func (r *PgxReportingRepository) GetAccountBalanceData(ctx context.Context, periodStart, periodEnd time.Time) ([]domain.AccountBalanceRow, error) {
	query := `
		SELECT
			a.account_id,
			a.name,
			a.account_type,
			a.currency_code,
			COALESCE(SUM(f.signed_amount_cents) FILTER (WHERE f.biz_date < $1), 0) AS opening_cents,
			COALESCE(SUM(f.signed_amount_cents) FILTER (WHERE f.biz_date >= $1 AND f.biz_date < $2 AND f.signed_amount_cents > 0), 0) AS income_cents,
			COALESCE(SUM(-f.signed_amount_cents) FILTER (WHERE f.biz_date >= $1 AND f.biz_date < $2 AND f.signed_amount_cents < 0), 0) AS expense_cents
		FROM accounts a
		LEFT JOIN flows f ON f.account_id = a.account_id
		GROUP BY a.account_id, a.name, a.account_type, a.currency_code
		ORDER BY a.currency_code ASC, a.name ASC, a.account_id ASC;
	`

	rows, err := r.Pool.Query(ctx, query, periodStart, periodEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to query balance report data: %w", err)
	}
	defer rows.Close()

	result := make([]domain.AccountBalanceRow, 0)
	for rows.Next() {
		var row domain.AccountBalanceRow
		var accountType string
		scanErr := rows.Scan(
			&row.AccountID,
			&row.AccountName,
			&accountType,
			&row.CurrencyCode,
			&row.OpeningCents,
			&row.IncomeCents,
			&row.ExpenseCents,
		)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan balance report row: %w", scanErr)
		}
		row.AccountType = domain.AccountType(accountType)
		row.ClosingCents = row.OpeningCents + row.IncomeCents - row.ExpenseCents
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating balance report rows: %w", err)
	}

	return result, nil
}

// GetAccountStatement retrieves an account's flows between two business
// dates in posting order, oldest first. The running balances on each flow
// are the snapshot taken at posting time.
func (r *PgxReportingRepository) GetAccountStatement(ctx context.Context, accountID string, from, to time.Time, limit int, nextToken *string) ([]domain.Flow, *string, error) {
	if limit <= 0 {
		limit = 50
	}
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + flowColumns + ` FROM flows WHERE account_id = $1 AND biz_date >= $2 AND biz_date <= $3`
	args := []interface{}{accountID, from, to}

	if nextToken != nil && *nextToken != "" {
		lastSeq, decodeErr := pagination.DecodeSeqToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, lastSeq)
		baseQuery += ` AND flow_seq > $` + strconv.Itoa(len(args))
	}

	args = append(args, fetchLimit)
	query := baseQuery + ` ORDER BY flow_seq ASC LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query statement for account %s: %w", accountID, err)
	}
	defer rows.Close()

	modelFlows := make([]models.Flow, 0, fetchLimit)
	for rows.Next() {
		m, scanErr := scanFlow(rows)
		if scanErr != nil {
			return nil, nil, fmt.Errorf("failed to scan statement row for account %s: %w", accountID, scanErr)
		}
		modelFlows = append(modelFlows, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating statement rows for account %s: %w", accountID, err)
	}

	var nextTokenVal *string
	results := modelFlows
	if len(modelFlows) > limit {
		token := pagination.EncodeSeqToken(modelFlows[limit-1].FlowSeq)
		nextTokenVal = &token
		results = modelFlows[:limit]
	}

	return mapping.ToDomainFlowSlice(results), nextTokenVal, nil
}
