package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/clearbooks/finance_core_app/internal/apperrors"
	"github.com/clearbooks/finance_core_app/internal/core/domain"
	portsrepo "github.com/clearbooks/finance_core_app/internal/core/ports/repositories"
	portssvc "github.com/clearbooks/finance_core_app/internal/core/ports/services"
	"github.com/clearbooks/finance_core_app/internal/dto"
	"github.com/clearbooks/finance_core_app/internal/middleware"
)

// currencyService provides currency registry operations.
type currencyService struct {
	currencyRepo portsrepo.CurrencyRepositoryFacade
}

// NewCurrencyService creates a new currency service.
func NewCurrencyService(currencyRepo portsrepo.CurrencyRepositoryFacade) portssvc.CurrencySvcFacade {
	return &currencyService{currencyRepo: currencyRepo}
}

var _ portssvc.CurrencySvcFacade = (*currencyService)(nil)

func (s *currencyService) CreateCurrency(ctx context.Context, req dto.CreateCurrencyRequest, creatorUserID string) (*domain.Currency, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	// Code format and precision bounds are enforced by DTO binding; keep the
	// registry free of duplicates here.
	existing, err := s.currencyRepo.FindCurrencyByCode(ctx, req.CurrencyCode)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		logger.Error("Failed to check for existing currency", slog.String("error", err.Error()), slog.String("currency_code", req.CurrencyCode))
		return nil, fmt.Errorf("failed to check for existing currency: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: currency %s already registered", apperrors.ErrDuplicate, req.CurrencyCode)
	}

	now := time.Now().UTC()
	currency := domain.Currency{
		CurrencyCode: req.CurrencyCode,
		Symbol:       req.Symbol,
		Name:         req.Name,
		Precision:    req.Precision,
		IsActive:     true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.currencyRepo.SaveCurrency(ctx, currency); err != nil {
		logger.Error("Failed to save currency", slog.String("error", err.Error()), slog.String("currency_code", req.CurrencyCode))
		return nil, fmt.Errorf("failed to create currency: %w", err)
	}

	logger.Info("Currency registered", slog.String("currency_code", currency.CurrencyCode))
	return &currency, nil
}

func (s *currencyService) GetCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	currency, err := s.currencyRepo.FindCurrencyByCode(ctx, currencyCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get currency %s: %w", currencyCode, err)
	}
	return currency, nil
}

func (s *currencyService) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	currencies, err := s.currencyRepo.ListCurrencies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}
	// Return empty slice if no currencies found, not nil
	if currencies == nil {
		return []domain.Currency{}, nil
	}
	return currencies, nil
}

func (s *currencyService) DeactivateCurrency(ctx context.Context, currencyCode string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	currency, err := s.currencyRepo.FindCurrencyByCode(ctx, currencyCode)
	if err != nil {
		return fmt.Errorf("failed to find currency %s for deactivation: %w", currencyCode, err)
	}
	if !currency.IsActive {
		return fmt.Errorf("%w: currency %s is already inactive", apperrors.ErrConflict, currencyCode)
	}

	now := time.Now().UTC()
	if err := s.currencyRepo.SetCurrencyActive(ctx, currencyCode, false, userID, now); err != nil {
		logger.Error("Failed to deactivate currency", slog.String("error", err.Error()), slog.String("currency_code", currencyCode))
		return fmt.Errorf("failed to deactivate currency: %w", err)
	}

	logger.Info("Currency deactivated", slog.String("currency_code", currencyCode))
	return nil
}
