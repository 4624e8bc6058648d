package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/clearbooks/finance_core_app/internal/apperrors"
	"github.com/clearbooks/finance_core_app/internal/core/domain"
	portsrepo "github.com/clearbooks/finance_core_app/internal/core/ports/repositories"
	portssvc "github.com/clearbooks/finance_core_app/internal/core/ports/services"
	"github.com/clearbooks/finance_core_app/internal/dto"
	"github.com/clearbooks/finance_core_app/internal/middleware"
	"github.com/clearbooks/finance_core_app/internal/platform/audit"
)

var (
	ErrSiteRequired  = errors.New("receivable documents require a site reference")
	ErrPartyRequired = errors.New("payable documents require a party reference")
)

// documentService provides AR/AP document lifecycle operations.
type documentService struct {
	documentRepo    portsrepo.DocumentRepositoryFacade
	accountRepo     portsrepo.AccountReader
	currencyRepo    portsrepo.CurrencyReader
	idempotencyRepo portsrepo.IdempotencyRepository
	auditPub        audit.Publisher
}

// NewDocumentService creates a new document service.
func NewDocumentService(
	documentRepo portsrepo.DocumentRepositoryFacade,
	accountRepo portsrepo.AccountReader,
	currencyRepo portsrepo.CurrencyReader,
	idempotencyRepo portsrepo.IdempotencyRepository,
	auditPub audit.Publisher,
) portssvc.DocumentSvcFacade {
	return &documentService{
		documentRepo:    documentRepo,
		accountRepo:     accountRepo,
		currencyRepo:    currencyRepo,
		idempotencyRepo: idempotencyRepo,
		auditPub:        auditPub,
	}
}

var _ portssvc.DocumentSvcFacade = (*documentService)(nil)

// CreateDocument creates a draft receivable or payable. Drafts have no ledger
// effect until confirmed.
func (s *documentService) CreateDocument(ctx context.Context, req dto.CreateDocumentRequest, creatorUserID string) (*domain.Document, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.Kind.IsValid() {
		return nil, fmt.Errorf("%w: invalid document kind %s", apperrors.ErrValidation, req.Kind)
	}
	if req.Kind == domain.KindReceivable && req.SiteID == "" {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrSiteRequired)
	}
	if req.Kind == domain.KindPayable && req.PartyID == "" {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrPartyRequired)
	}
	if req.AmountCents <= 0 {
		return nil, fmt.Errorf("%w", ErrAmountNotPositive)
	}

	issueDate, err := parseDate("issueDate", req.IssueDate)
	if err != nil {
		return nil, err
	}
	var dueDate *time.Time
	if req.DueDate != nil {
		due, err := parseDate("dueDate", *req.DueDate)
		if err != nil {
			return nil, err
		}
		if due.Before(issueDate) {
			return nil, fmt.Errorf("%w: due date must not precede issue date", apperrors.ErrValidation)
		}
		dueDate = &due
	}

	currency, err := s.currencyRepo.FindCurrencyByCode(ctx, req.CurrencyCode)
	if err != nil {
		return nil, fmt.Errorf("failed to validate currency %s: %w", req.CurrencyCode, err)
	}
	if !currency.IsActive {
		return nil, fmt.Errorf("%w: currency %s is inactive", apperrors.ErrValidation, req.CurrencyCode)
	}

	now := time.Now().UTC()
	doc := domain.Document{
		DocID:        uuid.NewString(),
		Kind:         req.Kind,
		PartyID:      req.PartyID,
		SiteID:       req.SiteID,
		IssueDate:    issueDate,
		DueDate:      dueDate,
		AmountCents:  req.AmountCents,
		CurrencyCode: req.CurrencyCode,
		Status:       domain.DocDraft,
		SettledCents: 0,
		Memo:         req.Memo,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.documentRepo.SaveDocument(ctx, doc); err != nil {
		logger.Error("Failed to save document", slog.String("error", err.Error()), slog.String("kind", string(req.Kind)))
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	logger.Info("Document created", slog.String("doc_id", doc.DocID), slog.String("kind", string(doc.Kind)), slog.Int64("amount_cents", doc.AmountCents))
	publishAudit(ctx, s.auditPub, "document.created", "document", doc.DocID, creatorUserID)
	return &doc, nil
}

// ConfirmDocument posts the recognition flow and moves the document from
// DRAFT to CONFIRMED. Replaying the same idempotency key returns the already
// confirmed document instead of double-posting.
func (s *documentService) ConfirmDocument(ctx context.Context, docID string, req dto.ConfirmDocumentRequest, userID string) (*domain.Document, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.IdempotencyKey != nil {
		entityID, err := s.idempotencyRepo.FindEntityID(ctx, *req.IdempotencyKey, portsrepo.OpConfirmDocument)
		if err == nil {
			if entityID != docID {
				return nil, fmt.Errorf("%w: idempotency key was used to confirm a different document", apperrors.ErrConflict)
			}
			logger.Info("Replaying confirmed document for idempotency key", slog.String("doc_id", docID))
			return s.documentRepo.FindDocumentByID(ctx, docID)
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to check idempotency key: %w", err)
		}
	}

	doc, err := s.documentRepo.FindDocumentByID(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("failed to find document %s: %w", docID, err)
	}
	if doc.Status != domain.DocDraft {
		return nil, fmt.Errorf("%w: document status is %s, expected DRAFT", apperrors.ErrInvalidStateTransition, doc.Status)
	}

	bizDate, err := parseDate("bizDate", req.BizDate)
	if err != nil {
		return nil, err
	}

	account, err := s.accountRepo.FindAccountByID(ctx, req.AccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", req.AccountID, err)
	}
	if !account.IsActive {
		return nil, fmt.Errorf("%w: account %s is inactive", apperrors.ErrValidation, req.AccountID)
	}
	if account.CurrencyCode != doc.CurrencyCode {
		return nil, fmt.Errorf("%w: account currency %s does not match document currency %s", apperrors.ErrCurrencyMismatch, account.CurrencyCode, doc.CurrencyCode)
	}

	counterparty := doc.PartyID
	if doc.Kind == domain.KindReceivable {
		counterparty = doc.SiteID
	}

	flowType := doc.Kind.ConfirmFlowType()
	now := time.Now().UTC()
	confirmFlow := domain.Flow{
		FlowID:            uuid.NewString(),
		AccountID:         req.AccountID,
		FlowType:          flowType,
		AmountCents:       doc.AmountCents,
		SignedAmountCents: domain.SignedAmount(flowType, doc.AmountCents),
		CurrencyCode:      doc.CurrencyCode,
		BizDate:           bizDate,
		CategoryID:        req.CategoryID,
		Counterparty:      counterparty,
		Memo:              doc.Memo,
		VoucherURLs:       []string{req.VoucherURL},
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	confirmed, err := s.documentRepo.ConfirmDocument(ctx, docID, confirmFlow, req.IdempotencyKey)
	if err != nil {
		if req.IdempotencyKey != nil && errors.Is(err, apperrors.ErrDuplicate) {
			// A concurrent request with the same key won the insert race.
			// Its row is visible now, so replay it instead of failing.
			entityID, lookupErr := s.idempotencyRepo.FindEntityID(ctx, *req.IdempotencyKey, portsrepo.OpConfirmDocument)
			if lookupErr == nil {
				if entityID != docID {
					return nil, fmt.Errorf("%w: idempotency key was used to confirm a different document", apperrors.ErrConflict)
				}
				logger.Info("Replaying confirmed document for idempotency key", slog.String("doc_id", docID))
				return s.documentRepo.FindDocumentByID(ctx, docID)
			}
		}
		if !errors.Is(err, apperrors.ErrInvalidStateTransition) && !errors.Is(err, apperrors.ErrInsufficientBalance) {
			logger.Error("Failed to confirm document", slog.String("error", err.Error()), slog.String("doc_id", docID))
		}
		return nil, fmt.Errorf("failed to confirm document: %w", err)
	}

	logger.Info("Document confirmed",
		slog.String("doc_id", confirmed.DocID),
		slog.String("kind", string(confirmed.Kind)),
		slog.String("flow_type", string(flowType)),
	)
	publishAudit(ctx, s.auditPub, "document.confirmed", "document", confirmed.DocID, userID)
	return confirmed, nil
}

// ReverseDocument posts a compensating flow for the unsettled remainder and
// freezes the document at REVERSED. Prior settlements stay valid; the
// remainder is computed under the document row lock.
func (s *documentService) ReverseDocument(ctx context.Context, docID string, memo string, userID string) (*domain.Document, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	doc, reversalFlow, err := s.documentRepo.ReverseDocument(ctx, docID, userID, memo)
	if err != nil {
		if !errors.Is(err, apperrors.ErrInvalidStateTransition) && !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to reverse document", slog.String("error", err.Error()), slog.String("doc_id", docID))
		}
		return nil, fmt.Errorf("failed to reverse document: %w", err)
	}

	if reversalFlow != nil {
		logger.Info("Document reversed with compensating flow",
			slog.String("doc_id", doc.DocID),
			slog.String("reversal_flow_id", reversalFlow.FlowID),
			slog.Int64("reversed_cents", reversalFlow.AmountCents),
		)
	} else {
		// Never confirmed, or fully settled remainder of zero: no flow to post.
		logger.Info("Document reversed without ledger effect", slog.String("doc_id", doc.DocID))
	}
	publishAudit(ctx, s.auditPub, "document.reversed", "document", doc.DocID, userID)
	return doc, nil
}

func (s *documentService) GetDocumentByID(ctx context.Context, docID string) (*domain.Document, error) {
	doc, err := s.documentRepo.FindDocumentByID(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s: %w", docID, err)
	}
	return doc, nil
}

func (s *documentService) ListDocuments(ctx context.Context, params dto.ListDocumentsParams) (*dto.ListDocumentsResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	var filter portsrepo.DocumentListFilter
	if params.Kind != nil {
		kind := domain.DocumentKind(*params.Kind)
		if !kind.IsValid() {
			return nil, fmt.Errorf("%w: invalid document kind %s", apperrors.ErrValidation, *params.Kind)
		}
		filter.Kind = &kind
	}
	if params.Status != nil {
		status := domain.DocumentStatus(*params.Status)
		if !status.IsValid() {
			return nil, fmt.Errorf("%w: invalid document status %s", apperrors.ErrValidation, *params.Status)
		}
		filter.Status = &status
	}
	filter.PartyID = params.PartyID
	filter.SiteID = params.SiteID

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	docs, nextToken, err := s.documentRepo.ListDocuments(ctx, filter, limit, params.NextToken)
	if err != nil {
		logger.Error("Failed to list documents", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	return &dto.ListDocumentsResponse{
		Documents: dto.ToDocumentResponses(docs),
		NextToken: nextToken,
	}, nil
}
