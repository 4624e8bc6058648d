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

const documentColumns = `doc_id, kind, party_id, site_id, issue_date, due_date, amount_cents, currency_code, status, settled_cents, confirm_flow_id, reversal_flow_id, memo, created_at, created_by, last_updated_at, last_updated_by`

type PgxDocumentRepository struct {
	BaseRepository
	flowRepo portsrepo.FlowRepositoryFacade
}

// newPgxDocumentRepository creates a new repository for AR/AP documents.
func newPgxDocumentRepository(pool *pgxpool.Pool, lockTimeout time.Duration, flowRepo portsrepo.FlowRepositoryFacade) portsrepo.DocumentRepositoryFacade {
	return &PgxDocumentRepository{
		BaseRepository: BaseRepository{Pool: pool, LockTimeout: lockTimeout},
		flowRepo:       flowRepo,
	}
}

// Ensure PgxDocumentRepository implements portsrepo.DocumentRepositoryFacade
var _ portsrepo.DocumentRepositoryFacade = (*PgxDocumentRepository)(nil)

func scanDocument(row pgx.Row) (models.Document, error) {
	var m models.Document
	err := row.Scan(
		&m.DocID,
		&m.Kind,
		&m.PartyID,
		&m.SiteID,
		&m.IssueDate,
		&m.DueDate,
		&m.AmountCents,
		&m.CurrencyCode,
		&m.Status,
		&m.SettledCents,
		&m.ConfirmFlowID,
		&m.ReversalFlowID,
		&m.Memo,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func findDocumentForUpdate(ctx context.Context, tx pgx.Tx, docID string) (*domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM arap_docs WHERE doc_id = $1 FOR UPDATE;`

	modelDoc, err := scanDocument(tx.QueryRow(ctx, query, docID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock document %s: %w", docID, mapPgError(err))
	}

	domainDoc := mapping.ToDomainDocument(modelDoc)
	return &domainDoc, nil
}

// SaveDocument persists a new draft document.
func (r *PgxDocumentRepository) SaveDocument(ctx context.Context, doc domain.Document) error {
	modelDoc := mapping.ToModelDocument(doc)
	query := `
		INSERT INTO arap_docs (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err := r.Pool.Exec(ctx, query,
		modelDoc.DocID,
		modelDoc.Kind,
		modelDoc.PartyID,
		modelDoc.SiteID,
		modelDoc.IssueDate,
		modelDoc.DueDate,
		modelDoc.AmountCents,
		modelDoc.CurrencyCode,
		modelDoc.Status,
		modelDoc.SettledCents,
		modelDoc.ConfirmFlowID,
		modelDoc.ReversalFlowID,
		modelDoc.Memo,
		modelDoc.CreatedAt,
		modelDoc.CreatedBy,
		modelDoc.LastUpdatedAt,
		modelDoc.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert document %s: %w", doc.DocID, mapPgError(err))
	}
	return nil
}

// ConfirmDocument posts the recognition flow and transitions the document
// from DRAFT to CONFIRMED in one transaction. The status is re-checked under
// the row lock so two concurrent confirms cannot both post.
func (r *PgxDocumentRepository) ConfirmDocument(ctx context.Context, docID string, confirmFlow domain.Flow, idempotencyKey *string) (*domain.Document, error) {
	tx, err := r.BeginPosting(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	doc, err := findDocumentForUpdate(ctx, tx, docID)
	if err != nil {
		return nil, err
	}
	if doc.Status != domain.DocDraft {
		return nil, fmt.Errorf("%w: document %s is %s, only DRAFT documents can be confirmed", apperrors.ErrInvalidStateTransition, docID, doc.Status)
	}

	postedFlow, err := r.flowRepo.PostFlowInTx(ctx, tx, confirmFlow)
	if err != nil {
		return nil, err
	}

	updateQuery := `
		UPDATE arap_docs
		SET status = $2, confirm_flow_id = $3, last_updated_at = $4, last_updated_by = $5
		WHERE doc_id = $1;
	`
	if _, err := tx.Exec(ctx, updateQuery, docID, string(domain.DocConfirmed), postedFlow.FlowID, postedFlow.CreatedAt, postedFlow.CreatedBy); err != nil {
		return nil, fmt.Errorf("failed to update document %s on confirm: %w", docID, mapPgError(err))
	}

	if idempotencyKey != nil && *idempotencyKey != "" {
		if err := insertIdempotencyKeyInTx(ctx, tx, *idempotencyKey, portsrepo.OpConfirmDocument, docID, postedFlow.CreatedAt); err != nil {
			return nil, err
		}
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}

	doc.Status = domain.DocConfirmed
	doc.ConfirmFlowID = &postedFlow.FlowID
	doc.LastUpdatedAt = postedFlow.CreatedAt
	doc.LastUpdatedBy = postedFlow.CreatedBy
	return doc, nil
}

// ReverseDocument freezes a non-terminal document at REVERSED. When the
// document was confirmed and still carries an unsettled remainder, a
// compensating flow for that remainder is posted against the confirmation
// flow's account. The remainder is recomputed under the row lock so
// concurrent settlements cannot skew it.
func (r *PgxDocumentRepository) ReverseDocument(ctx context.Context, docID string, userID string, memo string) (*domain.Document, *domain.Flow, error) {
	tx, err := r.BeginPosting(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer r.Rollback(ctx, tx)

	doc, err := findDocumentForUpdate(ctx, tx, docID)
	if err != nil {
		return nil, nil, err
	}
	if doc.Status.IsTerminal() {
		return nil, nil, fmt.Errorf("%w: document %s is already %s", apperrors.ErrInvalidStateTransition, docID, doc.Status)
	}

	now := time.Now().UTC()
	var reversalFlow *domain.Flow

	remainder := doc.RemainingCents()
	if doc.ConfirmFlowID != nil && remainder > 0 {
		var accountID string
		var confirmFlowType string
		findFlowQuery := `SELECT account_id, flow_type FROM flows WHERE flow_id = $1;`
		if err := tx.QueryRow(ctx, findFlowQuery, *doc.ConfirmFlowID).Scan(&accountID, &confirmFlowType); err != nil {
			return nil, nil, fmt.Errorf("failed to load confirmation flow %s: %w", *doc.ConfirmFlowID, mapPgError(err))
		}

		reversalType := domain.FlowExpense
		if domain.FlowType(confirmFlowType) == domain.FlowExpense {
			reversalType = domain.FlowIncome
		}

		compensating := domain.Flow{
			FlowID:            uuid.NewString(),
			AccountID:         accountID,
			FlowType:          reversalType,
			AmountCents:       remainder,
			SignedAmountCents: domain.SignedAmount(reversalType, remainder),
			CurrencyCode:      doc.CurrencyCode,
			BizDate:           now,
			Memo:              memo,
			OriginalFlowID:    doc.ConfirmFlowID,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
		reversalFlow, err = r.flowRepo.PostFlowInTx(ctx, tx, compensating)
		if err != nil {
			return nil, nil, err
		}
	}

	var reversalFlowID *string
	if reversalFlow != nil {
		reversalFlowID = &reversalFlow.FlowID
	}
	updateQuery := `
		UPDATE arap_docs
		SET status = $2, reversal_flow_id = $3, last_updated_at = $4, last_updated_by = $5
		WHERE doc_id = $1;
	`
	if _, err := tx.Exec(ctx, updateQuery, docID, string(domain.DocReversed), reversalFlowID, now, userID); err != nil {
		return nil, nil, fmt.Errorf("failed to update document %s on reverse: %w", docID, mapPgError(err))
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, nil, err
	}

	doc.Status = domain.DocReversed
	doc.ReversalFlowID = reversalFlowID
	doc.LastUpdatedAt = now
	doc.LastUpdatedBy = userID
	return doc, reversalFlow, nil
}

// FindDocumentByID retrieves a document by its ID.
func (r *PgxDocumentRepository) FindDocumentByID(ctx context.Context, docID string) (*domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM arap_docs WHERE doc_id = $1;`

	modelDoc, err := scanDocument(r.Pool.QueryRow(ctx, query, docID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find document by ID %s: %w", docID, err)
	}

	domainDoc := mapping.ToDomainDocument(modelDoc)
	return &domainDoc, nil
}

// ListDocuments retrieves a paginated, filtered list of documents, newest
// first.
func (r *PgxDocumentRepository) ListDocuments(ctx context.Context, filter portsrepo.DocumentListFilter, limit int, nextToken *string) ([]domain.Document, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + documentColumns + ` FROM arap_docs WHERE 1=1`
	args := []interface{}{}

	if filter.Kind != nil {
		args = append(args, string(*filter.Kind))
		baseQuery += ` AND kind = $` + strconv.Itoa(len(args))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		baseQuery += ` AND status = $` + strconv.Itoa(len(args))
	}
	if filter.PartyID != nil {
		args = append(args, *filter.PartyID)
		baseQuery += ` AND party_id = $` + strconv.Itoa(len(args))
	}
	if filter.SiteID != nil {
		args = append(args, *filter.SiteID)
		baseQuery += ` AND site_id = $` + strconv.Itoa(len(args))
	}
	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastID, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, lastCreatedAt, lastID)
		baseQuery += fmt.Sprintf(` AND (created_at, doc_id) < ($%d, $%d)`, len(args)-1, len(args))
	}

	args = append(args, fetchLimit)
	query := baseQuery + ` ORDER BY created_at DESC, doc_id DESC LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	modelDocs := make([]models.Document, 0, fetchLimit)
	for rows.Next() {
		m, scanErr := scanDocument(rows)
		if scanErr != nil {
			return nil, nil, fmt.Errorf("failed to scan document row: %w", scanErr)
		}
		modelDocs = append(modelDocs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating document rows: %w", err)
	}

	var nextTokenVal *string
	results := modelDocs
	if len(modelDocs) > limit {
		last := modelDocs[limit-1]
		token := pagination.EncodeToken(last.CreatedAt, last.DocID)
		nextTokenVal = &token
		results = modelDocs[:limit]
	}

	return mapping.ToDomainDocumentSlice(results), nextTokenVal, nil
}
