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
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const settlementColumns = `settlement_id, doc_id, flow_id, settle_amount_cents, reversed, created_at, created_by, last_updated_at, last_updated_by`

// Qualified because the candidates query joins an allocation subquery that
// also exposes flow_id.
const candidateFlowColumns = `flows.flow_id, flows.flow_seq, flows.account_id, flows.flow_type, flows.amount_cents, flows.signed_amount_cents, flows.currency_code, flows.biz_date, flows.balance_before_cents, flows.balance_after_cents, flows.category_id, flows.counterparty, flows.memo, flows.voucher_urls, flows.transfer_id, flows.original_flow_id, flows.created_at, flows.created_by, flows.last_updated_at, flows.last_updated_by`

type PgxSettlementRepository struct {
	BaseRepository
}

// newPgxSettlementRepository creates a new repository for settlements.
func newPgxSettlementRepository(pool *pgxpool.Pool, lockTimeout time.Duration) portsrepo.SettlementRepositoryFacade {
	return &PgxSettlementRepository{
		BaseRepository: BaseRepository{Pool: pool, LockTimeout: lockTimeout},
	}
}

// Ensure PgxSettlementRepository implements portsrepo.SettlementRepositoryFacade
var _ portsrepo.SettlementRepositoryFacade = (*PgxSettlementRepository)(nil)

func scanSettlement(row pgx.Row) (models.Settlement, error) {
	var m models.Settlement
	err := row.Scan(
		&m.SettlementID,
		&m.DocID,
		&m.FlowID,
		&m.SettleAmountCents,
		&m.Reversed,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// flowAllocatedInTx sums the non-reversed settlement amounts already drawn
// from a flow. Must run after the flow row is locked.
func flowAllocatedInTx(ctx context.Context, tx pgx.Tx, flowID string) (int64, error) {
	query := `SELECT COALESCE(SUM(settle_amount_cents), 0) FROM settlements WHERE flow_id = $1 AND reversed = FALSE;`

	var allocated int64
	if err := tx.QueryRow(ctx, query, flowID).Scan(&allocated); err != nil {
		return 0, fmt.Errorf("failed to sum allocations for flow %s: %w", flowID, mapPgError(err))
	}
	return allocated, nil
}

// SaveSettlement applies part of a flow's value against a document. Both the
// document row and the flow row are locked, capacity is re-checked on each
// side under the locks, then the settlement insert and the document's settled
// amount update commit together.
func (r *PgxSettlementRepository) SaveSettlement(ctx context.Context, settlement domain.Settlement, idempotencyKey *string) (*domain.Settlement, *domain.Document, error) {
	tx, err := r.BeginPosting(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer r.Rollback(ctx, tx)

	doc, err := findDocumentForUpdate(ctx, tx, settlement.DocID)
	if err != nil {
		return nil, nil, err
	}
	if !doc.Status.CanSettle() {
		return nil, nil, fmt.Errorf("%w: document %s is %s and cannot be settled", apperrors.ErrInvalidStateTransition, doc.DocID, doc.Status)
	}
	if settlement.SettleAmountCents > doc.RemainingCents() {
		return nil, nil, fmt.Errorf("%w: amount %d exceeds document remaining %d", apperrors.ErrOverSettlement, settlement.SettleAmountCents, doc.RemainingCents())
	}

	lockFlowQuery := `SELECT signed_amount_cents FROM flows WHERE flow_id = $1 FOR UPDATE;`
	var flowSigned int64
	if err := tx.QueryRow(ctx, lockFlowQuery, settlement.FlowID).Scan(&flowSigned); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to lock flow %s: %w", settlement.FlowID, mapPgError(err))
	}

	allocated, err := flowAllocatedInTx(ctx, tx, settlement.FlowID)
	if err != nil {
		return nil, nil, err
	}
	flowCapacity := flowSigned
	if flowCapacity < 0 {
		flowCapacity = -flowCapacity
	}
	if settlement.SettleAmountCents > flowCapacity-allocated {
		return nil, nil, fmt.Errorf("%w: amount %d exceeds flow remaining %d", apperrors.ErrOverSettlement, settlement.SettleAmountCents, flowCapacity-allocated)
	}

	modelSettlement := mapping.ToModelSettlement(settlement)
	insertQuery := `
		INSERT INTO settlements (` + settlementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err = tx.Exec(ctx, insertQuery,
		modelSettlement.SettlementID,
		modelSettlement.DocID,
		modelSettlement.FlowID,
		modelSettlement.SettleAmountCents,
		modelSettlement.Reversed,
		modelSettlement.CreatedAt,
		modelSettlement.CreatedBy,
		modelSettlement.LastUpdatedAt,
		modelSettlement.LastUpdatedBy,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to insert settlement %s: %w", settlement.SettlementID, mapPgError(err))
	}

	newSettled := doc.SettledCents + settlement.SettleAmountCents
	newStatus := domain.StatusForSettled(newSettled, doc.AmountCents)
	updateDocQuery := `
		UPDATE arap_docs
		SET settled_cents = $2, status = $3, last_updated_at = $4, last_updated_by = $5
		WHERE doc_id = $1;
	`
	if _, err := tx.Exec(ctx, updateDocQuery, doc.DocID, newSettled, string(newStatus), settlement.CreatedAt, settlement.CreatedBy); err != nil {
		return nil, nil, fmt.Errorf("failed to update document %s on settlement: %w", doc.DocID, mapPgError(err))
	}

	if idempotencyKey != nil && *idempotencyKey != "" {
		if err := insertIdempotencyKeyInTx(ctx, tx, *idempotencyKey, portsrepo.OpCreateSettlement, settlement.SettlementID, settlement.CreatedAt); err != nil {
			return nil, nil, err
		}
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, nil, err
	}

	doc.SettledCents = newSettled
	doc.Status = newStatus
	doc.LastUpdatedAt = settlement.CreatedAt
	doc.LastUpdatedBy = settlement.CreatedBy
	return &settlement, doc, nil
}

// ReverseSettlement records an explicit reversal, marks the settlement
// reversed and gives the document its capacity back. Settlement rows are
// never deleted.
func (r *PgxSettlementRepository) ReverseSettlement(ctx context.Context, settlementID string, reason string, userID string) (*domain.SettlementReversal, *domain.Document, error) {
	tx, err := r.BeginPosting(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer r.Rollback(ctx, tx)

	lockQuery := `SELECT ` + settlementColumns + ` FROM settlements WHERE settlement_id = $1 FOR UPDATE;`
	modelSettlement, err := scanSettlement(tx.QueryRow(ctx, lockQuery, settlementID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to lock settlement %s: %w", settlementID, mapPgError(err))
	}
	if modelSettlement.Reversed {
		return nil, nil, fmt.Errorf("%w: settlement %s is already reversed", apperrors.ErrConflict, settlementID)
	}

	doc, err := findDocumentForUpdate(ctx, tx, modelSettlement.DocID)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	reversal := domain.SettlementReversal{
		ReversalID:   uuid.NewString(),
		SettlementID: settlementID,
		AmountCents:  modelSettlement.SettleAmountCents,
		Reason:       reason,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	insertQuery := `
		INSERT INTO settlement_reversals (reversal_id, settlement_id, amount_cents, reason, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err = tx.Exec(ctx, insertQuery, reversal.ReversalID, settlementID, reversal.AmountCents, reason, now, userID, now, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to insert reversal for settlement %s: %w", settlementID, mapPgError(err))
	}

	markQuery := `UPDATE settlements SET reversed = TRUE, last_updated_at = $2, last_updated_by = $3 WHERE settlement_id = $1;`
	if _, err := tx.Exec(ctx, markQuery, settlementID, now, userID); err != nil {
		return nil, nil, fmt.Errorf("failed to mark settlement %s reversed: %w", settlementID, mapPgError(err))
	}

	newSettled := doc.SettledCents - modelSettlement.SettleAmountCents
	newStatus := doc.Status
	if newStatus != domain.DocReversed {
		if newSettled <= 0 {
			newStatus = domain.DocConfirmed
		} else {
			newStatus = domain.DocPartiallySettled
		}
	}
	updateDocQuery := `
		UPDATE arap_docs
		SET settled_cents = $2, status = $3, last_updated_at = $4, last_updated_by = $5
		WHERE doc_id = $1;
	`
	if _, err := tx.Exec(ctx, updateDocQuery, doc.DocID, newSettled, string(newStatus), now, userID); err != nil {
		return nil, nil, fmt.Errorf("failed to update document %s on reversal: %w", doc.DocID, mapPgError(err))
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, nil, err
	}

	doc.SettledCents = newSettled
	doc.Status = newStatus
	doc.LastUpdatedAt = now
	doc.LastUpdatedBy = userID
	return &reversal, doc, nil
}

// FindSettlementByID retrieves a settlement by its ID.
func (r *PgxSettlementRepository) FindSettlementByID(ctx context.Context, settlementID string) (*domain.Settlement, error) {
	query := `SELECT ` + settlementColumns + ` FROM settlements WHERE settlement_id = $1;`

	modelSettlement, err := scanSettlement(r.Pool.QueryRow(ctx, query, settlementID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find settlement by ID %s: %w", settlementID, err)
	}

	domainSettlement := mapping.ToDomainSettlement(modelSettlement)
	return &domainSettlement, nil
}

// ListSettlementsByDoc retrieves all settlements applied to a document,
// oldest first, reversed rows included.
func (r *PgxSettlementRepository) ListSettlementsByDoc(ctx context.Context, docID string) ([]domain.Settlement, error) {
	query := `SELECT ` + settlementColumns + ` FROM settlements WHERE doc_id = $1 ORDER BY created_at ASC, settlement_id ASC;`

	rows, err := r.Pool.Query(ctx, query, docID)
	if err != nil {
		return nil, fmt.Errorf("failed to query settlements for document %s: %w", docID, err)
	}
	defer rows.Close()

	modelSettlements := make([]models.Settlement, 0)
	for rows.Next() {
		m, scanErr := scanSettlement(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan settlement row for document %s: %w", docID, scanErr)
		}
		modelSettlements = append(modelSettlements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating settlement rows for document %s: %w", docID, err)
	}

	return mapping.ToDomainSettlementSlice(modelSettlements), nil
}

// ListSettlementCandidates retrieves flows of the given type and currency
// with unallocated value remaining, in posting order. Reversal flows are
// excluded; a flow that compensates another never settles a document.
func (r *PgxSettlementRepository) ListSettlementCandidates(ctx context.Context, flowType domain.FlowType, currencyCode string, counterparty string, limit int, nextToken *string) ([]domain.SettlementCandidate, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `
		SELECT ` + candidateFlowColumns + `, COALESCE(alloc.allocated, 0) AS allocated
		FROM flows
		LEFT JOIN (
			SELECT flow_id, SUM(settle_amount_cents) AS allocated
			FROM settlements
			WHERE reversed = FALSE
			GROUP BY flow_id
		) alloc ON alloc.flow_id = flows.flow_id
		WHERE flows.flow_type = $1
		  AND flows.currency_code = $2
		  AND flows.original_flow_id IS NULL
		  AND flows.amount_cents > COALESCE(alloc.allocated, 0)`
	args := []interface{}{string(flowType), currencyCode}

	if counterparty != "" {
		args = append(args, counterparty)
		baseQuery += ` AND flows.counterparty = $` + strconv.Itoa(len(args))
	}
	if nextToken != nil && *nextToken != "" {
		lastSeq, decodeErr := pagination.DecodeSeqToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, lastSeq)
		baseQuery += ` AND flows.flow_seq > $` + strconv.Itoa(len(args))
	}

	args = append(args, fetchLimit)
	query := baseQuery + ` ORDER BY flows.flow_seq ASC LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query settlement candidates: %w", err)
	}
	defer rows.Close()

	type candidateRow struct {
		flow      models.Flow
		allocated int64
	}
	candidateRows := make([]candidateRow, 0, fetchLimit)
	for rows.Next() {
		var c candidateRow
		scanErr := rows.Scan(
			&c.flow.FlowID,
			&c.flow.FlowSeq,
			&c.flow.AccountID,
			&c.flow.FlowType,
			&c.flow.AmountCents,
			&c.flow.SignedAmountCents,
			&c.flow.CurrencyCode,
			&c.flow.BizDate,
			&c.flow.BalanceBeforeCents,
			&c.flow.BalanceAfterCents,
			&c.flow.CategoryID,
			&c.flow.Counterparty,
			&c.flow.Memo,
			&c.flow.VoucherURLs,
			&c.flow.TransferID,
			&c.flow.OriginalFlowID,
			&c.flow.CreatedAt,
			&c.flow.CreatedBy,
			&c.flow.LastUpdatedAt,
			&c.flow.LastUpdatedBy,
			&c.allocated,
		)
		if scanErr != nil {
			return nil, nil, fmt.Errorf("failed to scan settlement candidate row: %w", scanErr)
		}
		candidateRows = append(candidateRows, c)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating settlement candidate rows: %w", err)
	}

	var nextTokenVal *string
	if len(candidateRows) > limit {
		token := pagination.EncodeSeqToken(candidateRows[limit-1].flow.FlowSeq)
		nextTokenVal = &token
		candidateRows = candidateRows[:limit]
	}

	candidates := make([]domain.SettlementCandidate, 0, len(candidateRows))
	for _, c := range candidateRows {
		candidates = append(candidates, domain.SettlementCandidate{
			Flow:           mapping.ToDomainFlow(c.flow),
			RemainingCents: c.flow.AmountCents - c.allocated,
		})
	}

	return candidates, nextTokenVal, nil
}
