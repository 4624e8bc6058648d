package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/clearbooks/finance_core_app/internal/apperrors"
	"github.com/clearbooks/finance_core_app/internal/core/domain"
	portsrepo "github.com/clearbooks/finance_core_app/internal/core/ports/repositories"
	portssvc "github.com/clearbooks/finance_core_app/internal/core/ports/services"
	"github.com/clearbooks/finance_core_app/internal/dto"
	"github.com/clearbooks/finance_core_app/internal/middleware"
	"github.com/clearbooks/finance_core_app/internal/utils"
)

// reportingService folds the immutable flow history into summaries. Reports
// never aggregate across currencies; each currency rolls up separately.
type reportingService struct {
	reportingRepo portsrepo.ReportingRepository
	accountRepo   portsrepo.AccountReader
	currencyRepo  portsrepo.CurrencyReader
}

// NewReportingService creates a new reporting service.
func NewReportingService(reportingRepo portsrepo.ReportingRepository, accountRepo portsrepo.AccountReader, currencyRepo portsrepo.CurrencyReader) portssvc.ReportingService {
	return &reportingService{
		reportingRepo: reportingRepo,
		accountRepo:   accountRepo,
		currencyRepo:  currencyRepo,
	}
}

var _ portssvc.ReportingService = (*reportingService)(nil)

// AccountBalanceReport generates per-account and per-currency
// opening/income/expense/closing summaries for the month containing asOf.
func (s *reportingService) AccountBalanceReport(ctx context.Context, asOf time.Time) (*dto.AccountBalanceReportResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	periodStart := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, time.UTC)
	periodEnd := periodStart.AddDate(0, 1, 0) // exclusive

	rows, err := s.reportingRepo.GetAccountBalanceData(ctx, periodStart, periodEnd)
	if err != nil {
		logger.Error("Failed to retrieve balance report data", slog.String("error", err.Error()), slog.String("period_start", periodStart.Format(dateLayout)))
		return nil, fmt.Errorf("failed to retrieve balance report data: %w", err)
	}

	currencies, err := s.currencyRepo.ListCurrencies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list currencies for report formatting: %w", err)
	}
	currencyByCode := make(map[string]domain.Currency, len(currencies))
	for _, c := range currencies {
		currencyByCode[c.CurrencyCode] = c
	}

	format := func(cents int64, code string) string {
		if c, ok := currencyByCode[code]; ok {
			return utils.FormatCents(cents, c)
		}
		return utils.FormatCentsWithPrecision(cents, 2)
	}

	// Group account rows by currency, preserving the repository's ordering.
	rollupByCode := make(map[string]*dto.CurrencyRollupResponse)
	order := make([]string, 0)
	for _, row := range rows {
		rollup, ok := rollupByCode[row.CurrencyCode]
		if !ok {
			rollup = &dto.CurrencyRollupResponse{CurrencyCode: row.CurrencyCode}
			rollupByCode[row.CurrencyCode] = rollup
			order = append(order, row.CurrencyCode)
		}
		rollup.OpeningCents += row.OpeningCents
		rollup.IncomeCents += row.IncomeCents
		rollup.ExpenseCents += row.ExpenseCents
		rollup.ClosingCents += row.ClosingCents
		rollup.Accounts = append(rollup.Accounts, dto.AccountBalanceRowResponse{
			AccountID:      row.AccountID,
			AccountName:    row.AccountName,
			AccountType:    string(row.AccountType),
			CurrencyCode:   row.CurrencyCode,
			OpeningCents:   row.OpeningCents,
			IncomeCents:    row.IncomeCents,
			ExpenseCents:   row.ExpenseCents,
			ClosingCents:   row.ClosingCents,
			OpeningDisplay: format(row.OpeningCents, row.CurrencyCode),
			ClosingDisplay: format(row.ClosingCents, row.CurrencyCode),
		})
	}

	rollups := make([]dto.CurrencyRollupResponse, 0, len(order))
	for _, code := range order {
		rollup := rollupByCode[code]
		rollup.OpeningDisplay = format(rollup.OpeningCents, code)
		rollup.ClosingDisplay = format(rollup.ClosingCents, code)
		rollups = append(rollups, *rollup)
	}

	logger.Info("Account balance report generated",
		slog.String("period_start", periodStart.Format(dateLayout)),
		slog.Int("account_count", len(rows)),
		slog.Int("currency_count", len(rollups)),
	)
	return &dto.AccountBalanceReportResponse{
		PeriodStart: periodStart.Format(dateLayout),
		PeriodEnd:   periodEnd.AddDate(0, 0, -1).Format(dateLayout), // inclusive last day
		Currencies:  rollups,
	}, nil
}

// AccountStatement returns an account's raw flow sequence with running
// balances for the requested date range.
func (s *reportingService) AccountStatement(ctx context.Context, accountID string, params dto.AccountStatementParams) (*dto.AccountStatementResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}

	from, err := parseDate("from", params.From)
	if err != nil {
		return nil, err
	}
	to, err := parseDate("to", params.To)
	if err != nil {
		return nil, err
	}
	if from.After(to) {
		return nil, fmt.Errorf("%w: from must not be after to", apperrors.ErrValidation)
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}

	flows, nextToken, err := s.reportingRepo.GetAccountStatement(ctx, accountID, from, to, limit, params.NextToken)
	if err != nil {
		logger.Error("Failed to retrieve account statement", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to retrieve account statement: %w", err)
	}

	return &dto.AccountStatementResponse{
		AccountID: accountID,
		From:      params.From,
		To:        params.To,
		Lines:     dto.ToFlowResponses(flows),
		NextToken: nextToken,
	}, nil
}
