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
	ErrSameAccountTransfer = errors.New("transfer source and destination must differ")
	ErrDestAmountRequired  = errors.New("cross-currency transfers require an explicit destination amount")
)

// transferService provides atomic two-leg transfer operations.
type transferService struct {
	transferRepo portsrepo.TransferRepositoryFacade
	accountRepo  portsrepo.AccountReader
	auditPub     audit.Publisher
}

// NewTransferService creates a new transfer service.
func NewTransferService(transferRepo portsrepo.TransferRepositoryFacade, accountRepo portsrepo.AccountReader, auditPub audit.Publisher) portssvc.TransferSvcFacade {
	return &transferService{
		transferRepo: transferRepo,
		accountRepo:  accountRepo,
		auditPub:     auditPub,
	}
}

var _ portssvc.TransferSvcFacade = (*transferService)(nil)

// CreateTransfer moves money between two accounts. Both legs are posted in
// one transaction; a failed destination leg rolls back the source leg.
func (s *transferService) CreateTransfer(ctx context.Context, req dto.CreateTransferRequest, creatorUserID string) (*domain.AccountTransfer, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.FromAccountID == req.ToAccountID {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrSameAccountTransfer)
	}
	if req.AmountCents <= 0 {
		return nil, fmt.Errorf("%w", ErrAmountNotPositive)
	}

	bizDate, err := parseDate("bizDate", req.BizDate)
	if err != nil {
		return nil, err
	}

	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, []string{req.FromAccountID, req.ToAccountID})
	if err != nil {
		logger.Error("Failed to fetch accounts for transfer", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}

	source, found := accounts[req.FromAccountID]
	if !found {
		return nil, fmt.Errorf("%w: source account %s", apperrors.ErrNotFound, req.FromAccountID)
	}
	dest, found := accounts[req.ToAccountID]
	if !found {
		return nil, fmt.Errorf("%w: destination account %s", apperrors.ErrNotFound, req.ToAccountID)
	}
	if !source.IsActive {
		return nil, fmt.Errorf("%w: source account %s is inactive", apperrors.ErrValidation, source.AccountID)
	}
	if !dest.IsActive {
		return nil, fmt.Errorf("%w: destination account %s is inactive", apperrors.ErrValidation, dest.AccountID)
	}
	if source.CurrencyCode != req.CurrencyCode {
		return nil, fmt.Errorf("%w: source account currency %s does not match transfer currency %s", apperrors.ErrCurrencyMismatch, source.CurrencyCode, req.CurrencyCode)
	}

	// Same-currency transfers move the same magnitude on both legs. Across
	// currencies the caller supplies the destination amount; no rate lookup
	// ever happens here.
	destAmountCents := req.AmountCents
	if dest.CurrencyCode != source.CurrencyCode {
		if req.DestAmountCents == nil || *req.DestAmountCents <= 0 {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrDestAmountRequired)
		}
		destAmountCents = *req.DestAmountCents
	} else if req.DestAmountCents != nil && *req.DestAmountCents != req.AmountCents {
		return nil, fmt.Errorf("%w: destination amount must equal the transfer amount for same-currency transfers", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	transferID := uuid.NewString()
	auditFields := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     creatorUserID,
		LastUpdatedAt: now,
		LastUpdatedBy: creatorUserID,
	}

	outFlow := domain.Flow{
		FlowID:            uuid.NewString(),
		AccountID:         source.AccountID,
		FlowType:          domain.FlowTransferOut,
		AmountCents:       req.AmountCents,
		SignedAmountCents: -req.AmountCents,
		CurrencyCode:      source.CurrencyCode,
		BizDate:           bizDate,
		Counterparty:      dest.Name,
		Memo:              req.Memo,
		TransferID:        &transferID,
		AuditFields:       auditFields,
	}
	inFlow := domain.Flow{
		FlowID:            uuid.NewString(),
		AccountID:         dest.AccountID,
		FlowType:          domain.FlowTransferIn,
		AmountCents:       destAmountCents,
		SignedAmountCents: destAmountCents,
		CurrencyCode:      dest.CurrencyCode,
		BizDate:           bizDate,
		Counterparty:      source.Name,
		Memo:              req.Memo,
		TransferID:        &transferID,
		AuditFields:       auditFields,
	}

	transfer := domain.AccountTransfer{
		TransferID:       transferID,
		FromAccountID:    source.AccountID,
		ToAccountID:      dest.AccountID,
		AmountCents:      req.AmountCents,
		CurrencyCode:     source.CurrencyCode,
		DestAmountCents:  destAmountCents,
		DestCurrencyCode: dest.CurrencyCode,
		BizDate:          bizDate,
		Memo:             req.Memo,
		OutFlowID:        outFlow.FlowID,
		InFlowID:         inFlow.FlowID,
		AuditFields:      auditFields,
	}

	saved, err := s.transferRepo.SaveTransfer(ctx, transfer, outFlow, inFlow)
	if err != nil {
		if !errors.Is(err, apperrors.ErrInsufficientBalance) {
			logger.Error("Failed to save transfer", slog.String("error", err.Error()), slog.String("from_account_id", source.AccountID), slog.String("to_account_id", dest.AccountID))
		}
		return nil, fmt.Errorf("failed to create transfer: %w", err)
	}

	logger.Info("Transfer created",
		slog.String("transfer_id", saved.TransferID),
		slog.String("from_account_id", saved.FromAccountID),
		slog.String("to_account_id", saved.ToAccountID),
		slog.Int64("amount_cents", saved.AmountCents),
	)
	publishAudit(ctx, s.auditPub, "transfer.created", "transfer", saved.TransferID, creatorUserID)
	return saved, nil
}

func (s *transferService) GetTransferByID(ctx context.Context, transferID string) (*domain.AccountTransfer, error) {
	transfer, err := s.transferRepo.FindTransferByID(ctx, transferID)
	if err != nil {
		return nil, fmt.Errorf("failed to get transfer %s: %w", transferID, err)
	}
	return transfer, nil
}

func (s *transferService) ListTransfers(ctx context.Context, params dto.ListTransfersParams) (*dto.ListTransfersResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	transfers, nextToken, err := s.transferRepo.ListTransfers(ctx, limit, params.NextToken)
	if err != nil {
		logger.Error("Failed to list transfers", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}

	transferResponses := make([]dto.TransferResponse, len(transfers))
	for i := range transfers {
		transferResponses[i] = dto.ToTransferResponse(&transfers[i])
	}

	return &dto.ListTransfersResponse{
		Transfers: transferResponses,
		NextToken: nextToken,
	}, nil
}
