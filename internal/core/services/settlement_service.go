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
	ErrFlowNotEligible     = errors.New("flow type does not match the document kind")
	ErrReversalNotEligible = errors.New("reversal flows cannot back settlements")
)

// settlementService links AR/AP documents to the flows that pay them off.
type settlementService struct {
	settlementRepo  portsrepo.SettlementRepositoryFacade
	documentRepo    portsrepo.DocumentReader
	flowRepo        portsrepo.FlowReader
	idempotencyRepo portsrepo.IdempotencyRepository
	auditPub        audit.Publisher
}

// NewSettlementService creates a new settlement service.
func NewSettlementService(
	settlementRepo portsrepo.SettlementRepositoryFacade,
	documentRepo portsrepo.DocumentReader,
	flowRepo portsrepo.FlowReader,
	idempotencyRepo portsrepo.IdempotencyRepository,
	auditPub audit.Publisher,
) portssvc.SettlementSvcFacade {
	return &settlementService{
		settlementRepo:  settlementRepo,
		documentRepo:    documentRepo,
		flowRepo:        flowRepo,
		idempotencyRepo: idempotencyRepo,
		auditPub:        auditPub,
	}
}

var _ portssvc.SettlementSvcFacade = (*settlementService)(nil)

// Settle allocates part of a flow's value against a document. The repository
// re-checks both remaining capacities under row locks; the checks here give
// early, friendly failures for the common cases.
func (s *settlementService) Settle(ctx context.Context, req dto.CreateSettlementRequest, userID string) (*domain.Settlement, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.SettleAmountCents <= 0 {
		return nil, fmt.Errorf("%w", ErrAmountNotPositive)
	}

	if req.IdempotencyKey != nil {
		entityID, err := s.idempotencyRepo.FindEntityID(ctx, *req.IdempotencyKey, portsrepo.OpCreateSettlement)
		if err == nil {
			logger.Info("Replaying settlement for idempotency key", slog.String("settlement_id", entityID))
			return s.settlementRepo.FindSettlementByID(ctx, entityID)
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to check idempotency key: %w", err)
		}
	}

	doc, err := s.documentRepo.FindDocumentByID(ctx, req.DocID)
	if err != nil {
		return nil, fmt.Errorf("failed to find document %s: %w", req.DocID, err)
	}
	if !doc.Status.CanSettle() {
		return nil, fmt.Errorf("%w: document status is %s", apperrors.ErrInvalidStateTransition, doc.Status)
	}
	if req.SettleAmountCents > doc.RemainingCents() {
		return nil, fmt.Errorf("%w: settle amount %d exceeds document remainder %d", apperrors.ErrOverSettlement, req.SettleAmountCents, doc.RemainingCents())
	}

	flow, err := s.flowRepo.FindFlowByID(ctx, req.FlowID)
	if err != nil {
		return nil, fmt.Errorf("failed to find flow %s: %w", req.FlowID, err)
	}
	if flow.FlowType != doc.Kind.ConfirmFlowType() {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrFlowNotEligible)
	}
	if flow.OriginalFlowID != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrReversalNotEligible)
	}
	if flow.CurrencyCode != doc.CurrencyCode {
		return nil, fmt.Errorf("%w: flow currency %s does not match document currency %s", apperrors.ErrCurrencyMismatch, flow.CurrencyCode, doc.CurrencyCode)
	}

	now := time.Now().UTC()
	settlement := domain.Settlement{
		SettlementID:      uuid.NewString(),
		DocID:             req.DocID,
		FlowID:            req.FlowID,
		SettleAmountCents: req.SettleAmountCents,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	saved, updatedDoc, err := s.settlementRepo.SaveSettlement(ctx, settlement, req.IdempotencyKey)
	if err != nil {
		if req.IdempotencyKey != nil && errors.Is(err, apperrors.ErrDuplicate) {
			// A concurrent request with the same key won the insert race.
			// Its row is visible now, so replay it instead of failing.
			entityID, lookupErr := s.idempotencyRepo.FindEntityID(ctx, *req.IdempotencyKey, portsrepo.OpCreateSettlement)
			if lookupErr == nil {
				logger.Info("Replaying settlement for idempotency key", slog.String("settlement_id", entityID))
				return s.settlementRepo.FindSettlementByID(ctx, entityID)
			}
		}
		if !errors.Is(err, apperrors.ErrOverSettlement) && !errors.Is(err, apperrors.ErrInvalidStateTransition) {
			logger.Error("Failed to save settlement", slog.String("error", err.Error()), slog.String("doc_id", req.DocID), slog.String("flow_id", req.FlowID))
		}
		return nil, fmt.Errorf("failed to create settlement: %w", err)
	}

	logger.Info("Settlement created",
		slog.String("settlement_id", saved.SettlementID),
		slog.String("doc_id", saved.DocID),
		slog.String("flow_id", saved.FlowID),
		slog.Int64("settle_amount_cents", saved.SettleAmountCents),
		slog.String("doc_status", string(updatedDoc.Status)),
	)
	publishAudit(ctx, s.auditPub, "settlement.created", "settlement", saved.SettlementID, userID)
	return saved, nil
}

// ReverseSettlement records an explicit compensating entry for a settlement
// and restores the document's settleable capacity.
func (s *settlementService) ReverseSettlement(ctx context.Context, settlementID string, reason string, userID string) (*domain.SettlementReversal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	reversal, updatedDoc, err := s.settlementRepo.ReverseSettlement(ctx, settlementID, reason, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrConflict) {
			logger.Error("Failed to reverse settlement", slog.String("error", err.Error()), slog.String("settlement_id", settlementID))
		}
		return nil, fmt.Errorf("failed to reverse settlement: %w", err)
	}

	logger.Info("Settlement reversed",
		slog.String("reversal_id", reversal.ReversalID),
		slog.String("settlement_id", settlementID),
		slog.String("doc_status", string(updatedDoc.Status)),
	)
	publishAudit(ctx, s.auditPub, "settlement.reversed", "settlement", settlementID, userID)
	return reversal, nil
}

func (s *settlementService) GetSettlementByID(ctx context.Context, settlementID string) (*domain.Settlement, error) {
	settlement, err := s.settlementRepo.FindSettlementByID(ctx, settlementID)
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement %s: %w", settlementID, err)
	}
	return settlement, nil
}

func (s *settlementService) ListSettlementsByDoc(ctx context.Context, docID string) ([]domain.Settlement, error) {
	if _, err := s.documentRepo.FindDocumentByID(ctx, docID); err != nil {
		return nil, fmt.Errorf("failed to find document %s: %w", docID, err)
	}

	settlements, err := s.settlementRepo.ListSettlementsByDoc(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements for document %s: %w", docID, err)
	}
	if settlements == nil {
		return []domain.Settlement{}, nil
	}
	return settlements, nil
}

// ListSettlementCandidates retrieves flows with unallocated value that could
// back a settlement of the given document. Purely a read.
func (s *settlementService) ListSettlementCandidates(ctx context.Context, docID string, params dto.ListSettlementCandidatesParams) (*dto.ListSettlementCandidatesResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	doc, err := s.documentRepo.FindDocumentByID(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("failed to find document %s: %w", docID, err)
	}
	if !doc.Status.CanSettle() {
		return nil, fmt.Errorf("%w: document status is %s", apperrors.ErrInvalidStateTransition, doc.Status)
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	candidates, nextToken, err := s.settlementRepo.ListSettlementCandidates(ctx, doc.Kind.ConfirmFlowType(), doc.CurrencyCode, params.Counterparty, limit, params.NextToken)
	if err != nil {
		logger.Error("Failed to list settlement candidates", slog.String("error", err.Error()), slog.String("doc_id", docID))
		return nil, fmt.Errorf("failed to list settlement candidates: %w", err)
	}

	return &dto.ListSettlementCandidatesResponse{
		Candidates: dto.ToSettlementCandidateResponses(candidates),
		NextToken:  nextToken,
	}, nil
}
