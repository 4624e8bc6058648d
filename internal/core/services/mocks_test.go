package services_test

import (
	"context"
	"time"

	"github.com/clearbooks/finance_core_app/internal/core/domain"
	portsrepo "github.com/clearbooks/finance_core_app/internal/core/ports/repositories"
	"github.com/clearbooks/finance_core_app/internal/platform/audit"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

// --- Mock CurrencyRepository ---

type MockCurrencyRepository struct {
	mock.Mock
}

func (m *MockCurrencyRepository) SaveCurrency(ctx context.Context, currency domain.Currency) error {
	args := m.Called(ctx, currency)
	return args.Error(0)
}

func (m *MockCurrencyRepository) FindCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	args := m.Called(ctx, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) SetCurrencyActive(ctx context.Context, currencyCode string, active bool, userID string, now time.Time) error {
	args := m.Called(ctx, currencyCode, active, userID, now)
	return args.Error(0)
}

var _ portsrepo.CurrencyRepositoryFacade = (*MockCurrencyRepository)(nil)

// --- Mock AccountRepository ---

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, limit int, nextToken *string) ([]domain.Account, *string, error) {
	args := m.Called(ctx, limit, nextToken)
	var accounts []domain.Account
	if args.Get(0) != nil {
		accounts = args.Get(0).([]domain.Account)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return accounts, token, args.Error(2)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateAccountDetails(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error {
	args := m.Called(ctx, accountID, userID, now)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountForUpdate(ctx context.Context, tx pgx.Tx, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, tx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateAccountBalanceInTx(ctx context.Context, tx pgx.Tx, accountID string, newBalanceCents int64, userID string, now time.Time) error {
	args := m.Called(ctx, tx, accountID, newBalanceCents, userID, now)
	return args.Error(0)
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

// --- Mock FlowRepository ---

type MockFlowRepository struct {
	mock.Mock
}

func (m *MockFlowRepository) FindFlowByID(ctx context.Context, flowID string) (*domain.Flow, error) {
	args := m.Called(ctx, flowID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flow), args.Error(1)
}

func (m *MockFlowRepository) ListFlowsByAccount(ctx context.Context, accountID string, filter portsrepo.FlowListFilter, limit int, nextToken *string) ([]domain.Flow, *string, error) {
	args := m.Called(ctx, accountID, filter, limit, nextToken)
	var flows []domain.Flow
	if args.Get(0) != nil {
		flows = args.Get(0).([]domain.Flow)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return flows, token, args.Error(2)
}

func (m *MockFlowRepository) PostFlow(ctx context.Context, flow domain.Flow) (*domain.Flow, error) {
	args := m.Called(ctx, flow)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flow), args.Error(1)
}

func (m *MockFlowRepository) PostFlowInTx(ctx context.Context, tx pgx.Tx, flow domain.Flow) (*domain.Flow, error) {
	args := m.Called(ctx, tx, flow)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flow), args.Error(1)
}

func (m *MockFlowRepository) AttachVoucher(ctx context.Context, flowID string, voucherURL string, userID string, now time.Time) error {
	args := m.Called(ctx, flowID, voucherURL, userID, now)
	return args.Error(0)
}

func (m *MockFlowRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockFlowRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockFlowRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

var _ portsrepo.FlowRepositoryFacade = (*MockFlowRepository)(nil)

// --- Mock TransferRepository ---

type MockTransferRepository struct {
	mock.Mock
}

func (m *MockTransferRepository) SaveTransfer(ctx context.Context, transfer domain.AccountTransfer, outFlow domain.Flow, inFlow domain.Flow) (*domain.AccountTransfer, error) {
	args := m.Called(ctx, transfer, outFlow, inFlow)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountTransfer), args.Error(1)
}

func (m *MockTransferRepository) FindTransferByID(ctx context.Context, transferID string) (*domain.AccountTransfer, error) {
	args := m.Called(ctx, transferID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountTransfer), args.Error(1)
}

func (m *MockTransferRepository) ListTransfers(ctx context.Context, limit int, nextToken *string) ([]domain.AccountTransfer, *string, error) {
	args := m.Called(ctx, limit, nextToken)
	var transfers []domain.AccountTransfer
	if args.Get(0) != nil {
		transfers = args.Get(0).([]domain.AccountTransfer)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return transfers, token, args.Error(2)
}

var _ portsrepo.TransferRepositoryFacade = (*MockTransferRepository)(nil)

// --- Mock DocumentRepository ---

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) FindDocumentByID(ctx context.Context, docID string) (*domain.Document, error) {
	args := m.Called(ctx, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) ListDocuments(ctx context.Context, filter portsrepo.DocumentListFilter, limit int, nextToken *string) ([]domain.Document, *string, error) {
	args := m.Called(ctx, filter, limit, nextToken)
	var docs []domain.Document
	if args.Get(0) != nil {
		docs = args.Get(0).([]domain.Document)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return docs, token, args.Error(2)
}

func (m *MockDocumentRepository) SaveDocument(ctx context.Context, doc domain.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) ConfirmDocument(ctx context.Context, docID string, confirmFlow domain.Flow, idempotencyKey *string) (*domain.Document, error) {
	args := m.Called(ctx, docID, confirmFlow, idempotencyKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) ReverseDocument(ctx context.Context, docID string, userID string, memo string) (*domain.Document, *domain.Flow, error) {
	args := m.Called(ctx, docID, userID, memo)
	var doc *domain.Document
	if args.Get(0) != nil {
		doc = args.Get(0).(*domain.Document)
	}
	var flow *domain.Flow
	if args.Get(1) != nil {
		flow = args.Get(1).(*domain.Flow)
	}
	return doc, flow, args.Error(2)
}

var _ portsrepo.DocumentRepositoryFacade = (*MockDocumentRepository)(nil)

// --- Mock SettlementRepository ---

type MockSettlementRepository struct {
	mock.Mock
}

func (m *MockSettlementRepository) FindSettlementByID(ctx context.Context, settlementID string) (*domain.Settlement, error) {
	args := m.Called(ctx, settlementID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Settlement), args.Error(1)
}

func (m *MockSettlementRepository) ListSettlementsByDoc(ctx context.Context, docID string) ([]domain.Settlement, error) {
	args := m.Called(ctx, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Settlement), args.Error(1)
}

func (m *MockSettlementRepository) ListSettlementCandidates(ctx context.Context, flowType domain.FlowType, currencyCode string, counterparty string, limit int, nextToken *string) ([]domain.SettlementCandidate, *string, error) {
	args := m.Called(ctx, flowType, currencyCode, counterparty, limit, nextToken)
	var cands []domain.SettlementCandidate
	if args.Get(0) != nil {
		cands = args.Get(0).([]domain.SettlementCandidate)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return cands, token, args.Error(2)
}

func (m *MockSettlementRepository) SaveSettlement(ctx context.Context, settlement domain.Settlement, idempotencyKey *string) (*domain.Settlement, *domain.Document, error) {
	args := m.Called(ctx, settlement, idempotencyKey)
	var s *domain.Settlement
	if args.Get(0) != nil {
		s = args.Get(0).(*domain.Settlement)
	}
	var doc *domain.Document
	if args.Get(1) != nil {
		doc = args.Get(1).(*domain.Document)
	}
	return s, doc, args.Error(2)
}

func (m *MockSettlementRepository) ReverseSettlement(ctx context.Context, settlementID string, reason string, userID string) (*domain.SettlementReversal, *domain.Document, error) {
	args := m.Called(ctx, settlementID, reason, userID)
	var rev *domain.SettlementReversal
	if args.Get(0) != nil {
		rev = args.Get(0).(*domain.SettlementReversal)
	}
	var doc *domain.Document
	if args.Get(1) != nil {
		doc = args.Get(1).(*domain.Document)
	}
	return rev, doc, args.Error(2)
}

var _ portsrepo.SettlementRepositoryFacade = (*MockSettlementRepository)(nil)

// --- Mock ReportingRepository ---

type MockReportingRepository struct {
	mock.Mock
}

func (m *MockReportingRepository) GetAccountBalanceData(ctx context.Context, periodStart, periodEnd time.Time) ([]domain.AccountBalanceRow, error) {
	args := m.Called(ctx, periodStart, periodEnd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountBalanceRow), args.Error(1)
}

func (m *MockReportingRepository) GetAccountStatement(ctx context.Context, accountID string, from, to time.Time, limit int, nextToken *string) ([]domain.Flow, *string, error) {
	args := m.Called(ctx, accountID, from, to, limit, nextToken)
	var flows []domain.Flow
	if args.Get(0) != nil {
		flows = args.Get(0).([]domain.Flow)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return flows, token, args.Error(2)
}

var _ portsrepo.ReportingRepository = (*MockReportingRepository)(nil)

// --- Mock IdempotencyRepository ---

type MockIdempotencyRepository struct {
	mock.Mock
}

func (m *MockIdempotencyRepository) FindEntityID(ctx context.Context, key string, operation string) (string, error) {
	args := m.Called(ctx, key, operation)
	return args.String(0), args.Error(1)
}

var _ portsrepo.IdempotencyRepository = (*MockIdempotencyRepository)(nil)

// --- Mock audit publisher ---

type MockAuditPublisher struct {
	mock.Mock
}

func (m *MockAuditPublisher) Publish(ctx context.Context, event audit.Event) {
	m.Called(ctx, event)
}

var _ audit.Publisher = (*MockAuditPublisher)(nil)
