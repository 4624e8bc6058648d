package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/clearbooks/finance_core_app/internal/apperrors"
	"github.com/clearbooks/finance_core_app/internal/core/domain"
	portsrepo "github.com/clearbooks/finance_core_app/internal/core/ports/repositories"
	"github.com/clearbooks/finance_core_app/internal/models"
	"github.com/clearbooks/finance_core_app/internal/utils/mapping"
	"github.com/clearbooks/finance_core_app/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const flowColumns = `flow_id, flow_seq, account_id, flow_type, amount_cents, signed_amount_cents, currency_code, biz_date, balance_before_cents, balance_after_cents, category_id, counterparty, memo, voucher_urls, transfer_id, original_flow_id, created_at, created_by, last_updated_at, last_updated_by`

type PgxFlowRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountRepositoryFacade
}

// newPgxFlowRepository creates a new repository for ledger entries.
func newPgxFlowRepository(pool *pgxpool.Pool, lockTimeout time.Duration, accountRepo portsrepo.AccountRepositoryFacade) portsrepo.FlowRepositoryFacade {
	return &PgxFlowRepository{
		BaseRepository: BaseRepository{Pool: pool, LockTimeout: lockTimeout},
		accountRepo:    accountRepo,
	}
}

// Ensure PgxFlowRepository implements portsrepo.FlowRepositoryFacade
var _ portsrepo.FlowRepositoryFacade = (*PgxFlowRepository)(nil)

func scanFlow(row pgx.Row) (models.Flow, error) {
	var m models.Flow
	err := row.Scan(
		&m.FlowID,
		&m.FlowSeq,
		&m.AccountID,
		&m.FlowType,
		&m.AmountCents,
		&m.SignedAmountCents,
		&m.CurrencyCode,
		&m.BizDate,
		&m.BalanceBeforeCents,
		&m.BalanceAfterCents,
		&m.CategoryID,
		&m.Counterparty,
		&m.Memo,
		&m.VoucherURLs,
		&m.TransferID,
		&m.OriginalFlowID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// PostFlow posts a ledger entry in its own transaction.
func (r *PgxFlowRepository) PostFlow(ctx context.Context, flow domain.Flow) (*domain.Flow, error) {
	tx, err := r.BeginPosting(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	posted, err := r.PostFlowInTx(ctx, tx, flow)
	if err != nil {
		return nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return posted, nil
}

// PostFlowInTx locks the account row, computes the balance snapshot, inserts
// the flow and writes the new balance. This is the single balance mutation
// path; transfers and document confirmations call it inside their own
// transactions.
func (r *PgxFlowRepository) PostFlowInTx(ctx context.Context, tx pgx.Tx, flow domain.Flow) (*domain.Flow, error) {
	account, err := r.accountRepo.FindAccountForUpdate(ctx, tx, flow.AccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock account %s for posting: %w", flow.AccountID, err)
	}

	// Re-checked under the lock; the service-level checks are advisory.
	if !account.IsActive {
		return nil, fmt.Errorf("%w: account %s is inactive", apperrors.ErrValidation, flow.AccountID)
	}
	if account.CurrencyCode != flow.CurrencyCode {
		return nil, fmt.Errorf("%w: account currency %s does not match flow currency %s", apperrors.ErrCurrencyMismatch, account.CurrencyCode, flow.CurrencyCode)
	}

	flow.BalanceBeforeCents = account.BalanceCents
	flow.BalanceAfterCents = account.BalanceCents + flow.SignedAmountCents
	if flow.BalanceAfterCents < 0 && !account.AllowOverdraft {
		return nil, fmt.Errorf("%w: posting %d cents would leave account %s at %d", apperrors.ErrInsufficientBalance, flow.SignedAmountCents, flow.AccountID, flow.BalanceAfterCents)
	}

	modelFlow := mapping.ToModelFlow(flow)
	query := `
		INSERT INTO flows (flow_id, account_id, flow_type, amount_cents, signed_amount_cents, currency_code, biz_date, balance_before_cents, balance_after_cents, category_id, counterparty, memo, voucher_urls, transfer_id, original_flow_id, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING flow_seq;
	`
	err = tx.QueryRow(ctx, query,
		modelFlow.FlowID,
		modelFlow.AccountID,
		modelFlow.FlowType,
		modelFlow.AmountCents,
		modelFlow.SignedAmountCents,
		modelFlow.CurrencyCode,
		modelFlow.BizDate,
		modelFlow.BalanceBeforeCents,
		modelFlow.BalanceAfterCents,
		modelFlow.CategoryID,
		modelFlow.Counterparty,
		modelFlow.Memo,
		modelFlow.VoucherURLs,
		modelFlow.TransferID,
		modelFlow.OriginalFlowID,
		modelFlow.CreatedAt,
		modelFlow.CreatedBy,
		modelFlow.LastUpdatedAt,
		modelFlow.LastUpdatedBy,
	).Scan(&flow.FlowSeq)
	if err != nil {
		return nil, fmt.Errorf("failed to insert flow %s: %w", flow.FlowID, mapPgError(err))
	}

	if err := r.accountRepo.UpdateAccountBalanceInTx(ctx, tx, flow.AccountID, flow.BalanceAfterCents, flow.CreatedBy, flow.CreatedAt); err != nil {
		return nil, err
	}

	return &flow, nil
}

// FindFlowByID retrieves a flow by its ID.
func (r *PgxFlowRepository) FindFlowByID(ctx context.Context, flowID string) (*domain.Flow, error) {
	query := `SELECT ` + flowColumns + ` FROM flows WHERE flow_id = $1;`

	modelFlow, err := scanFlow(r.Pool.QueryRow(ctx, query, flowID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find flow by ID %s: %w", flowID, err)
	}

	domainFlow := mapping.ToDomainFlow(modelFlow)
	return &domainFlow, nil
}

// ListFlowsByAccount retrieves a paginated list of an account's flows, newest
// posting first, using flow_seq as the pagination cursor.
func (r *PgxFlowRepository) ListFlowsByAccount(ctx context.Context, accountID string, filter portsrepo.FlowListFilter, limit int, nextToken *string) ([]domain.Flow, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + flowColumns + ` FROM flows WHERE account_id = $1`
	args := []interface{}{accountID}

	if filter.From != nil {
		args = append(args, *filter.From)
		baseQuery += ` AND biz_date >= $` + strconv.Itoa(len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		baseQuery += ` AND biz_date <= $` + strconv.Itoa(len(args))
	}
	if nextToken != nil && *nextToken != "" {
		lastSeq, decodeErr := pagination.DecodeSeqToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, lastSeq)
		baseQuery += ` AND flow_seq < $` + strconv.Itoa(len(args))
	}

	args = append(args, fetchLimit)
	query := baseQuery + ` ORDER BY flow_seq DESC LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query flows for account %s: %w", accountID, err)
	}
	defer rows.Close()

	modelFlows := make([]models.Flow, 0, fetchLimit)
	for rows.Next() {
		m, scanErr := scanFlow(rows)
		if scanErr != nil {
			return nil, nil, fmt.Errorf("failed to scan flow row for account %s: %w", accountID, scanErr)
		}
		modelFlows = append(modelFlows, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating flow rows for account %s: %w", accountID, err)
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

// AttachVoucher appends a voucher URL to a flow. The only permitted mutation
// of a posted flow.
func (r *PgxFlowRepository) AttachVoucher(ctx context.Context, flowID string, voucherURL string, userID string, now time.Time) error {
	query := `
		UPDATE flows
		SET voucher_urls = array_append(voucher_urls, $2), last_updated_at = $3, last_updated_by = $4
		WHERE flow_id = $1;
	`

	cmdTag, err := r.Pool.Exec(ctx, query, flowID, voucherURL, now, userID)
	if err != nil {
		return fmt.Errorf("failed to attach voucher to flow %s: %w", flowID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("flow " + flowID + " not found for voucher attach")
	}
	return nil
}
