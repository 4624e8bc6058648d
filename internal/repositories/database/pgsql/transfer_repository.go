package pgsql

import (
	"context"
	"errors"
	"fmt"
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

const transferColumns = `transfer_id, from_account_id, to_account_id, amount_cents, currency_code, dest_amount_cents, dest_currency_code, biz_date, memo, out_flow_id, in_flow_id, created_at, created_by, last_updated_at, last_updated_by`

type PgxTransferRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountRepositoryFacade
	flowRepo    portsrepo.FlowRepositoryFacade
}

// newPgxTransferRepository creates a new repository for account transfers.
func newPgxTransferRepository(pool *pgxpool.Pool, lockTimeout time.Duration, accountRepo portsrepo.AccountRepositoryFacade, flowRepo portsrepo.FlowRepositoryFacade) portsrepo.TransferRepositoryFacade {
	return &PgxTransferRepository{
		BaseRepository: BaseRepository{Pool: pool, LockTimeout: lockTimeout},
		accountRepo:    accountRepo,
		flowRepo:       flowRepo,
	}
}

// Ensure PgxTransferRepository implements portsrepo.TransferRepositoryFacade
var _ portsrepo.TransferRepositoryFacade = (*PgxTransferRepository)(nil)

func scanTransfer(row pgx.Row) (models.AccountTransfer, error) {
	var m models.AccountTransfer
	err := row.Scan(
		&m.TransferID,
		&m.FromAccountID,
		&m.ToAccountID,
		&m.AmountCents,
		&m.CurrencyCode,
		&m.DestAmountCents,
		&m.DestCurrencyCode,
		&m.BizDate,
		&m.Memo,
		&m.OutFlowID,
		&m.InFlowID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveTransfer posts both legs and the transfer row in one transaction. Both
// account rows are locked up front in ascending ID order so that two
// transfers touching the same pair of accounts in opposite directions cannot
// deadlock.
func (r *PgxTransferRepository) SaveTransfer(ctx context.Context, transfer domain.AccountTransfer, outFlow domain.Flow, inFlow domain.Flow) (*domain.AccountTransfer, error) {
	tx, err := r.BeginPosting(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	if _, err := r.accountRepo.FindAccountsForUpdate(ctx, tx, []string{transfer.FromAccountID, transfer.ToAccountID}); err != nil {
		return nil, fmt.Errorf("failed to lock accounts for transfer %s: %w", transfer.TransferID, err)
	}

	if _, err := r.flowRepo.PostFlowInTx(ctx, tx, outFlow); err != nil {
		return nil, err
	}
	if _, err := r.flowRepo.PostFlowInTx(ctx, tx, inFlow); err != nil {
		return nil, err
	}

	modelTransfer := mapping.ToModelTransfer(transfer)
	query := `
		INSERT INTO account_transfers (` + transferColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err = tx.Exec(ctx, query,
		modelTransfer.TransferID,
		modelTransfer.FromAccountID,
		modelTransfer.ToAccountID,
		modelTransfer.AmountCents,
		modelTransfer.CurrencyCode,
		modelTransfer.DestAmountCents,
		modelTransfer.DestCurrencyCode,
		modelTransfer.BizDate,
		modelTransfer.Memo,
		modelTransfer.OutFlowID,
		modelTransfer.InFlowID,
		modelTransfer.CreatedAt,
		modelTransfer.CreatedBy,
		modelTransfer.LastUpdatedAt,
		modelTransfer.LastUpdatedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert transfer %s: %w", transfer.TransferID, mapPgError(err))
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return &transfer, nil
}

// FindTransferByID retrieves a transfer by its ID.
func (r *PgxTransferRepository) FindTransferByID(ctx context.Context, transferID string) (*domain.AccountTransfer, error) {
	query := `SELECT ` + transferColumns + ` FROM account_transfers WHERE transfer_id = $1;`

	modelTransfer, err := scanTransfer(r.Pool.QueryRow(ctx, query, transferID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transfer by ID %s: %w", transferID, err)
	}

	domainTransfer := mapping.ToDomainTransfer(modelTransfer)
	return &domainTransfer, nil
}

// ListTransfers retrieves a paginated list of transfers, newest first.
func (r *PgxTransferRepository) ListTransfers(ctx context.Context, limit int, nextToken *string) ([]domain.AccountTransfer, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	var rows pgx.Rows
	var err error
	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastID, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		query := `
			SELECT ` + transferColumns + ` FROM account_transfers
			WHERE (created_at, transfer_id) < ($1, $2)
			ORDER BY created_at DESC, transfer_id DESC
			LIMIT $3;
		`
		rows, err = r.Pool.Query(ctx, query, lastCreatedAt, lastID, fetchLimit)
	} else {
		query := `
			SELECT ` + transferColumns + ` FROM account_transfers
			ORDER BY created_at DESC, transfer_id DESC
			LIMIT $1;
		`
		rows, err = r.Pool.Query(ctx, query, fetchLimit)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query transfers: %w", err)
	}
	defer rows.Close()

	modelTransfers := make([]models.AccountTransfer, 0, fetchLimit)
	for rows.Next() {
		m, scanErr := scanTransfer(rows)
		if scanErr != nil {
			return nil, nil, fmt.Errorf("failed to scan transfer row: %w", scanErr)
		}
		modelTransfers = append(modelTransfers, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating transfer rows: %w", err)
	}

	var nextTokenVal *string
	results := modelTransfers
	if len(modelTransfers) > limit {
		last := modelTransfers[limit-1]
		token := pagination.EncodeToken(last.CreatedAt, last.TransferID)
		nextTokenVal = &token
		results = modelTransfers[:limit]
	}

	return mapping.ToDomainTransferSlice(results), nextTokenVal, nil
}
