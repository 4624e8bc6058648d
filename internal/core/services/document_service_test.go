package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/clearbooks/finance_core_app/internal/apperrors"
	"github.com/clearbooks/finance_core_app/internal/core/domain"
	portsrepo "github.com/clearbooks/finance_core_app/internal/core/ports/repositories"
	portssvc "github.com/clearbooks/finance_core_app/internal/core/ports/services"
	"github.com/clearbooks/finance_core_app/internal/core/services"
	"github.com/clearbooks/finance_core_app/internal/dto"
)

type DocumentServiceTestSuite struct {
	suite.Suite
	mockDocumentRepo    *MockDocumentRepository
	mockAccountRepo     *MockAccountRepository
	mockCurrencyRepo    *MockCurrencyRepository
	mockIdempotencyRepo *MockIdempotencyRepository
	mockAudit           *MockAuditPublisher
	service             portssvc.DocumentSvcFacade
	ctx                 context.Context
}

func (suite *DocumentServiceTestSuite) SetupTest() {
	suite.mockDocumentRepo = new(MockDocumentRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockCurrencyRepo = new(MockCurrencyRepository)
	suite.mockIdempotencyRepo = new(MockIdempotencyRepository)
	suite.mockAudit = new(MockAuditPublisher)
	suite.mockAudit.On("Publish", mock.Anything, mock.Anything).Maybe()
	suite.service = services.NewDocumentService(
		suite.mockDocumentRepo,
		suite.mockAccountRepo,
		suite.mockCurrencyRepo,
		suite.mockIdempotencyRepo,
		suite.mockAudit,
	)
	suite.ctx = context.Background()
}

func TestDocumentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(DocumentServiceTestSuite))
}

func (suite *DocumentServiceTestSuite) TestCreateDocument_ReceivableSuccess() {
	req := dto.CreateDocumentRequest{
		Kind:         domain.KindReceivable,
		SiteID:       "site-1",
		AmountCents:  50_000,
		CurrencyCode: "USD",
		IssueDate:    "2026-08-01",
	}

	suite.mockCurrencyRepo.On("FindCurrencyByCode", suite.ctx, "USD").
		Return(&domain.Currency{CurrencyCode: "USD", IsActive: true}, nil).Once()
	suite.mockDocumentRepo.On("SaveDocument", suite.ctx, mock.MatchedBy(func(d domain.Document) bool {
		return d.Kind == domain.KindReceivable && d.Status == domain.DocDraft &&
			d.SettledCents == 0 && d.AmountCents == 50_000
	})).Return(nil).Once()

	doc, err := suite.service.CreateDocument(suite.ctx, req, "user-1")

	suite.NoError(err)
	suite.Require().NotNil(doc)
	suite.Equal(domain.DocDraft, doc.Status)
	suite.mockDocumentRepo.AssertExpectations(suite.T())
}

func (suite *DocumentServiceTestSuite) TestCreateDocument_ReceivableRequiresSite() {
	req := dto.CreateDocumentRequest{
		Kind:         domain.KindReceivable,
		PartyID:      "party-1",
		AmountCents:  50_000,
		CurrencyCode: "USD",
		IssueDate:    "2026-08-01",
	}

	doc, err := suite.service.CreateDocument(suite.ctx, req, "user-1")

	suite.Nil(doc)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *DocumentServiceTestSuite) TestCreateDocument_PayableRequiresParty() {
	req := dto.CreateDocumentRequest{
		Kind:         domain.KindPayable,
		SiteID:       "site-1",
		AmountCents:  50_000,
		CurrencyCode: "USD",
		IssueDate:    "2026-08-01",
	}

	doc, err := suite.service.CreateDocument(suite.ctx, req, "user-1")

	suite.Nil(doc)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *DocumentServiceTestSuite) TestCreateDocument_DueBeforeIssueRejected() {
	due := "2026-07-31"
	req := dto.CreateDocumentRequest{
		Kind:         domain.KindReceivable,
		SiteID:       "site-1",
		AmountCents:  50_000,
		CurrencyCode: "USD",
		IssueDate:    "2026-08-01",
		DueDate:      &due,
	}

	doc, err := suite.service.CreateDocument(suite.ctx, req, "user-1")

	suite.Nil(doc)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *DocumentServiceTestSuite) TestConfirmDocument_PostsIncomeForReceivable() {
	doc := &domain.Document{
		DocID:        "doc-1",
		Kind:         domain.KindReceivable,
		SiteID:       "site-1",
		AmountCents:  50_000,
		CurrencyCode: "USD",
		Status:       domain.DocDraft,
	}
	req := dto.ConfirmDocumentRequest{
		AccountID:  "acc-1",
		CategoryID: "cat-sales",
		BizDate:    "2026-08-05",
		VoucherURL: "https://vouchers.example.com/inv-1.pdf",
	}

	suite.mockDocumentRepo.On("FindDocumentByID", suite.ctx, "doc-1").Return(doc, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", suite.ctx, "acc-1").
		Return(&domain.Account{AccountID: "acc-1", CurrencyCode: "USD", IsActive: true}, nil).Once()
	suite.mockDocumentRepo.On("ConfirmDocument", suite.ctx, "doc-1", mock.MatchedBy(func(f domain.Flow) bool {
		return f.FlowType == domain.FlowIncome && f.AmountCents == 50_000 &&
			f.SignedAmountCents == 50_000 && f.Counterparty == "site-1"
	}), (*string)(nil)).Return(&domain.Document{DocID: "doc-1", Status: domain.DocConfirmed}, nil).Once()

	confirmed, err := suite.service.ConfirmDocument(suite.ctx, "doc-1", req, "user-1")

	suite.NoError(err)
	suite.Require().NotNil(confirmed)
	suite.Equal(domain.DocConfirmed, confirmed.Status)
	suite.mockDocumentRepo.AssertExpectations(suite.T())
}

func (suite *DocumentServiceTestSuite) TestConfirmDocument_PostsExpenseForPayable() {
	doc := &domain.Document{
		DocID:        "doc-2",
		Kind:         domain.KindPayable,
		PartyID:      "party-9",
		AmountCents:  12_000,
		CurrencyCode: "USD",
		Status:       domain.DocDraft,
	}
	req := dto.ConfirmDocumentRequest{
		AccountID:  "acc-1",
		CategoryID: "cat-supplies",
		BizDate:    "2026-08-05",
		VoucherURL: "https://vouchers.example.com/bill-2.pdf",
	}

	suite.mockDocumentRepo.On("FindDocumentByID", suite.ctx, "doc-2").Return(doc, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", suite.ctx, "acc-1").
		Return(&domain.Account{AccountID: "acc-1", CurrencyCode: "USD", IsActive: true}, nil).Once()
	suite.mockDocumentRepo.On("ConfirmDocument", suite.ctx, "doc-2", mock.MatchedBy(func(f domain.Flow) bool {
		return f.FlowType == domain.FlowExpense && f.SignedAmountCents == -12_000 &&
			f.Counterparty == "party-9"
	}), (*string)(nil)).Return(&domain.Document{DocID: "doc-2", Status: domain.DocConfirmed}, nil).Once()

	_, err := suite.service.ConfirmDocument(suite.ctx, "doc-2", req, "user-1")

	suite.NoError(err)
	suite.mockDocumentRepo.AssertExpectations(suite.T())
}

func (suite *DocumentServiceTestSuite) TestConfirmDocument_NonDraftRejected() {
	doc := &domain.Document{DocID: "doc-1", Kind: domain.KindReceivable, Status: domain.DocConfirmed}
	req := dto.ConfirmDocumentRequest{
		AccountID:  "acc-1",
		CategoryID: "cat-sales",
		BizDate:    "2026-08-05",
		VoucherURL: "https://vouchers.example.com/inv-1.pdf",
	}

	suite.mockDocumentRepo.On("FindDocumentByID", suite.ctx, "doc-1").Return(doc, nil).Once()

	confirmed, err := suite.service.ConfirmDocument(suite.ctx, "doc-1", req, "user-1")

	suite.Nil(confirmed)
	suite.ErrorIs(err, apperrors.ErrInvalidStateTransition)
	suite.mockDocumentRepo.AssertNotCalled(suite.T(), "ConfirmDocument", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *DocumentServiceTestSuite) TestConfirmDocument_CurrencyMismatch() {
	doc := &domain.Document{DocID: "doc-1", Kind: domain.KindReceivable, CurrencyCode: "EUR", Status: domain.DocDraft}
	req := dto.ConfirmDocumentRequest{
		AccountID:  "acc-1",
		CategoryID: "cat-sales",
		BizDate:    "2026-08-05",
		VoucherURL: "https://vouchers.example.com/inv-1.pdf",
	}

	suite.mockDocumentRepo.On("FindDocumentByID", suite.ctx, "doc-1").Return(doc, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", suite.ctx, "acc-1").
		Return(&domain.Account{AccountID: "acc-1", CurrencyCode: "USD", IsActive: true}, nil).Once()

	confirmed, err := suite.service.ConfirmDocument(suite.ctx, "doc-1", req, "user-1")

	suite.Nil(confirmed)
	suite.ErrorIs(err, apperrors.ErrCurrencyMismatch)
}

func (suite *DocumentServiceTestSuite) TestConfirmDocument_IdempotentReplay() {
	key := "confirm-key-1"
	req := dto.ConfirmDocumentRequest{
		AccountID:      "acc-1",
		CategoryID:     "cat-sales",
		BizDate:        "2026-08-05",
		VoucherURL:     "https://vouchers.example.com/inv-1.pdf",
		IdempotencyKey: &key,
	}
	already := &domain.Document{DocID: "doc-1", Status: domain.DocConfirmed}

	suite.mockIdempotencyRepo.On("FindEntityID", suite.ctx, key, portsrepo.OpConfirmDocument).Return("doc-1", nil).Once()
	suite.mockDocumentRepo.On("FindDocumentByID", suite.ctx, "doc-1").Return(already, nil).Once()

	confirmed, err := suite.service.ConfirmDocument(suite.ctx, "doc-1", req, "user-1")

	suite.NoError(err)
	suite.Equal(domain.DocConfirmed, confirmed.Status)
	suite.mockDocumentRepo.AssertNotCalled(suite.T(), "ConfirmDocument", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *DocumentServiceTestSuite) TestConfirmDocument_ConcurrentDuplicateKeyReplays() {
	key := "confirm-key-2"
	doc := &domain.Document{
		DocID:        "doc-1",
		Kind:         domain.KindReceivable,
		SiteID:       "site-1",
		AmountCents:  50_000,
		CurrencyCode: "USD",
		Status:       domain.DocDraft,
	}
	req := dto.ConfirmDocumentRequest{
		AccountID:      "acc-1",
		CategoryID:     "cat-sales",
		BizDate:        "2026-08-05",
		VoucherURL:     "https://vouchers.example.com/inv-1.pdf",
		IdempotencyKey: &key,
	}
	already := &domain.Document{DocID: "doc-1", Status: domain.DocConfirmed}

	// Pre-flight lookup misses, then a concurrent request holding the same
	// key commits first and our insert trips the unique constraint.
	suite.mockIdempotencyRepo.On("FindEntityID", suite.ctx, key, portsrepo.OpConfirmDocument).Return("", apperrors.ErrNotFound).Once()
	suite.mockDocumentRepo.On("FindDocumentByID", suite.ctx, "doc-1").Return(doc, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", suite.ctx, "acc-1").
		Return(&domain.Account{AccountID: "acc-1", CurrencyCode: "USD", IsActive: true}, nil).Once()
	suite.mockDocumentRepo.On("ConfirmDocument", suite.ctx, "doc-1", mock.Anything, &key).
		Return(nil, apperrors.ErrDuplicate).Once()
	suite.mockIdempotencyRepo.On("FindEntityID", suite.ctx, key, portsrepo.OpConfirmDocument).Return("doc-1", nil).Once()
	suite.mockDocumentRepo.On("FindDocumentByID", suite.ctx, "doc-1").Return(already, nil).Once()

	confirmed, err := suite.service.ConfirmDocument(suite.ctx, "doc-1", req, "user-1")

	suite.NoError(err)
	suite.Require().NotNil(confirmed)
	suite.Equal(domain.DocConfirmed, confirmed.Status)
	suite.mockDocumentRepo.AssertExpectations(suite.T())
	suite.mockIdempotencyRepo.AssertExpectations(suite.T())
}

func (suite *DocumentServiceTestSuite) TestConfirmDocument_KeyBoundToOtherDocument() {
	key := "confirm-key-1"
	req := dto.ConfirmDocumentRequest{
		AccountID:      "acc-1",
		CategoryID:     "cat-sales",
		BizDate:        "2026-08-05",
		VoucherURL:     "https://vouchers.example.com/inv-1.pdf",
		IdempotencyKey: &key,
	}

	suite.mockIdempotencyRepo.On("FindEntityID", suite.ctx, key, portsrepo.OpConfirmDocument).Return("doc-other", nil).Once()

	confirmed, err := suite.service.ConfirmDocument(suite.ctx, "doc-1", req, "user-1")

	suite.Nil(confirmed)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *DocumentServiceTestSuite) TestReverseDocument_Success() {
	reversed := &domain.Document{DocID: "doc-1", Status: domain.DocReversed}
	reversalFlow := &domain.Flow{FlowID: "flow-rev", AmountCents: 30_000}

	suite.mockDocumentRepo.On("ReverseDocument", suite.ctx, "doc-1", "user-1", "customer cancelled").
		Return(reversed, reversalFlow, nil).Once()

	doc, err := suite.service.ReverseDocument(suite.ctx, "doc-1", "customer cancelled", "user-1")

	suite.NoError(err)
	suite.Equal(domain.DocReversed, doc.Status)
	suite.mockDocumentRepo.AssertExpectations(suite.T())
}

func (suite *DocumentServiceTestSuite) TestReverseDocument_TerminalRejected() {
	suite.mockDocumentRepo.On("ReverseDocument", suite.ctx, "doc-1", "user-1", "").
		Return(nil, nil, apperrors.ErrInvalidStateTransition).Once()

	doc, err := suite.service.ReverseDocument(suite.ctx, "doc-1", "", "user-1")

	suite.Nil(doc)
	suite.ErrorIs(err, apperrors.ErrInvalidStateTransition)
}

func (suite *DocumentServiceTestSuite) TestListDocuments_InvalidKindRejected() {
	kind := "INVOICE"

	res, err := suite.service.ListDocuments(suite.ctx, dto.ListDocumentsParams{Kind: &kind})

	suite.Nil(res)
	suite.ErrorIs(err, apperrors.ErrValidation)
}
