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

// Posting sentinels that callers reject with a 4xx wrap ErrValidation so the
// HTTP layer never mistakes them for internal failures.
var (
	ErrTransferTypeDirect  = fmt.Errorf("%w: transfer flows can only be created through the transfer engine", apperrors.ErrValidation)
	ErrAdjustDeltaRequired = fmt.Errorf("%w: adjust flows require a non-zero signed delta", apperrors.ErrValidation)
	ErrAmountNotPositive   = fmt.Errorf("%w: flow amount must be positive", apperrors.ErrValidation)
	ErrTransferLegReversal = errors.New("transfer legs cannot be reversed individually")
	ErrReversalOfReversal  = errors.New("cannot reverse a flow that is already a reversal")
)

// flowService provides ledger posting operations. Every direct balance
// mutation in the system goes through PostFlow.
type flowService struct {
	flowRepo     portsrepo.FlowRepositoryFacade
	accountRepo  portsrepo.AccountReader
	currencyRepo portsrepo.CurrencyReader
	auditPub     audit.Publisher
}

// NewFlowService creates a new flow service.
func NewFlowService(flowRepo portsrepo.FlowRepositoryFacade, accountRepo portsrepo.AccountReader, currencyRepo portsrepo.CurrencyReader, auditPub audit.Publisher) portssvc.FlowSvcFacade {
	return &flowService{
		flowRepo:     flowRepo,
		accountRepo:  accountRepo,
		currencyRepo: currencyRepo,
		auditPub:     auditPub,
	}
}

var _ portssvc.FlowSvcFacade = (*flowService)(nil)

// resolveAmounts derives the magnitude and signed balance effect from the
// request. ADJUST entries carry a caller-supplied signed delta; every other
// type derives the sign from the flow type.
func resolveAmounts(req dto.PostFlowRequest) (amountCents int64, signedCents int64, err error) {
	if req.TransactionType == domain.FlowAdjust {
		if req.AdjustDeltaCents == nil || *req.AdjustDeltaCents == 0 {
			return 0, 0, fmt.Errorf("%w", ErrAdjustDeltaRequired)
		}
		signedCents = *req.AdjustDeltaCents
		amountCents = signedCents
		if amountCents < 0 {
			amountCents = -amountCents
		}
		return amountCents, signedCents, nil
	}

	if req.AdjustDeltaCents != nil {
		return 0, 0, fmt.Errorf("%w: adjustDeltaCents is only valid for ADJUST flows", apperrors.ErrValidation)
	}
	if req.AmountCents <= 0 {
		return 0, 0, fmt.Errorf("%w", ErrAmountNotPositive)
	}
	return req.AmountCents, domain.SignedAmount(req.TransactionType, req.AmountCents), nil
}

// PostFlow validates and posts a ledger entry against one account.
func (s *flowService) PostFlow(ctx context.Context, req dto.PostFlowRequest, creatorUserID string) (*domain.Flow, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.TransactionType.IsValid() {
		return nil, fmt.Errorf("%w: invalid flow type %s", apperrors.ErrValidation, req.TransactionType)
	}
	if req.TransactionType == domain.FlowTransferIn || req.TransactionType == domain.FlowTransferOut {
		return nil, ErrTransferTypeDirect
	}

	amountCents, signedCents, err := resolveAmounts(req)
	if err != nil {
		return nil, err
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
	if account.CurrencyCode != req.CurrencyCode {
		return nil, fmt.Errorf("%w: account currency %s does not match flow currency %s", apperrors.ErrCurrencyMismatch, account.CurrencyCode, req.CurrencyCode)
	}

	currency, err := s.currencyRepo.FindCurrencyByCode(ctx, req.CurrencyCode)
	if err != nil {
		return nil, fmt.Errorf("failed to validate currency %s: %w", req.CurrencyCode, err)
	}
	if !currency.IsActive {
		return nil, fmt.Errorf("%w: currency %s is inactive", apperrors.ErrValidation, req.CurrencyCode)
	}

	now := time.Now().UTC()
	flow := domain.Flow{
		FlowID:            uuid.NewString(),
		AccountID:         req.AccountID,
		FlowType:          req.TransactionType,
		AmountCents:       amountCents,
		SignedAmountCents: signedCents,
		CurrencyCode:      req.CurrencyCode,
		BizDate:           bizDate,
		CategoryID:        req.CategoryID,
		Counterparty:      req.Counterparty,
		Memo:              req.Memo,
		VoucherURLs:       req.VoucherURLs,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
		// FlowSeq and balance snapshots are assigned under the account lock.
	}

	posted, err := s.flowRepo.PostFlow(ctx, flow)
	if err != nil {
		if !errors.Is(err, apperrors.ErrInsufficientBalance) {
			logger.Error("Failed to post flow", slog.String("error", err.Error()), slog.String("account_id", req.AccountID))
		}
		return nil, fmt.Errorf("failed to post flow: %w", err)
	}

	logger.Info("Flow posted",
		slog.String("flow_id", posted.FlowID),
		slog.String("account_id", posted.AccountID),
		slog.String("flow_type", string(posted.FlowType)),
		slog.Int64("signed_amount_cents", posted.SignedAmountCents),
		slog.Int64("balance_after_cents", posted.BalanceAfterCents),
	)
	publishAudit(ctx, s.auditPub, "flow.posted", "flow", posted.FlowID, creatorUserID)
	return posted, nil
}

// ReverseFlow posts an offsetting flow referencing the original. The original
// row is never edited.
func (s *flowService) ReverseFlow(ctx context.Context, flowID string, memo string, userID string) (*domain.Flow, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	original, err := s.flowRepo.FindFlowByID(ctx, flowID)
	if err != nil {
		return nil, fmt.Errorf("failed to find flow %s for reversal: %w", flowID, err)
	}
	if original.OriginalFlowID != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrConflict, ErrReversalOfReversal)
	}
	if original.TransferID != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrTransferLegReversal)
	}

	reverseType := original.FlowType
	switch original.FlowType {
	case domain.FlowIncome:
		reverseType = domain.FlowExpense
	case domain.FlowExpense:
		reverseType = domain.FlowIncome
	}

	if memo == "" {
		memo = fmt.Sprintf("Reversal of flow %s", original.FlowID)
	}

	now := time.Now().UTC()
	reversal := domain.Flow{
		FlowID:            uuid.NewString(),
		AccountID:         original.AccountID,
		FlowType:          reverseType,
		AmountCents:       original.AmountCents,
		SignedAmountCents: -original.SignedAmountCents,
		CurrencyCode:      original.CurrencyCode,
		BizDate:           original.BizDate,
		CategoryID:        original.CategoryID,
		Counterparty:      original.Counterparty,
		Memo:              memo,
		OriginalFlowID:    &original.FlowID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	posted, err := s.flowRepo.PostFlow(ctx, reversal)
	if err != nil {
		logger.Error("Failed to post reversal flow", slog.String("error", err.Error()), slog.String("original_flow_id", flowID))
		return nil, fmt.Errorf("failed to post reversal flow: %w", err)
	}

	logger.Info("Flow reversed", slog.String("flow_id", posted.FlowID), slog.String("original_flow_id", flowID))
	publishAudit(ctx, s.auditPub, "flow.reversed", "flow", posted.FlowID, userID)
	return posted, nil
}

// AttachVoucher appends a voucher URL to a posted flow.
func (s *flowService) AttachVoucher(ctx context.Context, flowID string, voucherURL string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if voucherURL == "" {
		return fmt.Errorf("%w: voucher URL must not be empty", apperrors.ErrValidation)
	}

	if _, err := s.flowRepo.FindFlowByID(ctx, flowID); err != nil {
		return fmt.Errorf("failed to find flow %s: %w", flowID, err)
	}

	now := time.Now().UTC()
	if err := s.flowRepo.AttachVoucher(ctx, flowID, voucherURL, userID, now); err != nil {
		logger.Error("Failed to attach voucher", slog.String("error", err.Error()), slog.String("flow_id", flowID))
		return fmt.Errorf("failed to attach voucher: %w", err)
	}

	logger.Info("Voucher attached", slog.String("flow_id", flowID))
	publishAudit(ctx, s.auditPub, "flow.voucher_attached", "flow", flowID, userID)
	return nil
}

func (s *flowService) GetFlowByID(ctx context.Context, flowID string) (*domain.Flow, error) {
	flow, err := s.flowRepo.FindFlowByID(ctx, flowID)
	if err != nil {
		return nil, fmt.Errorf("failed to get flow %s: %w", flowID, err)
	}
	return flow, nil
}

func (s *flowService) ListFlowsByAccount(ctx context.Context, accountID string, params dto.ListFlowsParams) (*dto.ListFlowsResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}

	var filter portsrepo.FlowListFilter
	if params.From != nil {
		from, err := parseDate("from", *params.From)
		if err != nil {
			return nil, err
		}
		filter.From = &from
	}
	if params.To != nil {
		to, err := parseDate("to", *params.To)
		if err != nil {
			return nil, err
		}
		filter.To = &to
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, fmt.Errorf("%w: from must not be after to", apperrors.ErrValidation)
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	flows, nextToken, err := s.flowRepo.ListFlowsByAccount(ctx, accountID, filter, limit, params.NextToken)
	if err != nil {
		logger.Error("Failed to list flows", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to list flows: %w", err)
	}

	return &dto.ListFlowsResponse{
		Flows:     dto.ToFlowResponses(flows),
		NextToken: nextToken,
	}, nil
}
