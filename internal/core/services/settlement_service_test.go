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

type SettlementServiceTestSuite struct {
	suite.Suite
	mockSettlementRepo  *MockSettlementRepository
	mockDocumentRepo    *MockDocumentRepository
	mockFlowRepo        *MockFlowRepository
	mockIdempotencyRepo *MockIdempotencyRepository
	mockAudit           *MockAuditPublisher
	service             portssvc.SettlementSvcFacade
	ctx                 context.Context
}

func (suite *SettlementServiceTestSuite) SetupTest() {
	suite.mockSettlementRepo = new(MockSettlementRepository)
	suite.mockDocumentRepo = new(MockDocumentRepository)
	suite.mockFlowRepo = new(MockFlowRepository)
	suite.mockIdempotencyRepo = new(MockIdempotencyRepository)
	suite.mockAudit = new(MockAuditPublisher)
	suite.mockAudit.On("Publish", mock.Anything, mock.Anything).Maybe()
	suite.service = services.NewSettlementService(
		suite.mockSettlementRepo,
		suite.mockDocumentRepo,
		suite.mockFlowRepo,
		suite.mockIdempotencyRepo,
		suite.mockAudit,
	)
	suite.ctx = context.Background()
}

func TestSettlementServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SettlementServiceTestSuite))
}

func (suite *SettlementServiceTestSuite) confirmedReceivable() *domain.Document {
	return &domain.Document{
		DocID:        "doc-1",
		Kind:         domain.KindReceivable,
		SiteID:       "site-1",
		AmountCents:  50_000,
		SettledCents: 10_000,
		CurrencyCode: "USD",
		Status:       domain.DocPartiallySettled,
	}
}

func (suite *SettlementServiceTestSuite) incomeFlow() *domain.Flow {
	return &domain.Flow{
		FlowID:            "flow-1",
		AccountID:         "acc-1",
		FlowType:          domain.FlowIncome,
		AmountCents:       30_000,
		SignedAmountCents: 30_000,
		CurrencyCode:      "USD",
	}
}

func (suite *SettlementServiceTestSuite) TestSettle_Success() {
	req := dto.CreateSettlementRequest{
		DocID:             "doc-1",
		FlowID:            "flow-1",
		SettleAmountCents: 20_000,
	}

	suite.mockDocumentRepo.On("FindDocumentByID", suite.ctx, "doc-1").Return(suite.confirmedReceivable(), nil).Once()
	suite.mockFlowRepo.On("FindFlowByID", suite.ctx, "flow-1").Return(suite.incomeFlow(), nil).Once()
	suite.mockSettlementRepo.On("SaveSettlement", suite.ctx, mock.MatchedBy(func(s domain.Settlement) bool {
		return s.DocID == "doc-1" && s.FlowID == "flow-1" && s.SettleAmountCents == 20_000 && !s.Reversed
	}), (*string)(nil)).Return(
		&domain.Settlement{SettlementID: "set-1", DocID: "doc-1", FlowID: "flow-1", SettleAmountCents: 20_000},
		&domain.Document{DocID: "doc-1", Status: domain.DocPartiallySettled, SettledCents: 30_000},
		nil,
	).Once()

	settlement, err := suite.service.Settle(suite.ctx, req, "user-1")

	suite.NoError(err)
	suite.Require().NotNil(settlement)
	suite.Equal("set-1", settlement.SettlementID)
	suite.mockSettlementRepo.AssertExpectations(suite.T())
}

func (suite *SettlementServiceTestSuite) TestSettle_DraftDocumentRejected() {
	doc := suite.confirmedReceivable()
	doc.Status = domain.DocDraft
	req := dto.CreateSettlementRequest{DocID: "doc-1", FlowID: "flow-1", SettleAmountCents: 100}

	suite.mockDocumentRepo.On("FindDocumentByID", suite.ctx, "doc-1").Return(doc, nil).Once()

	settlement, err := suite.service.Settle(suite.ctx, req, "user-1")

	suite.Nil(settlement)
	suite.ErrorIs(err, apperrors.ErrInvalidStateTransition)
	suite.mockSettlementRepo.AssertNotCalled(suite.T(), "SaveSettlement", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *SettlementServiceTestSuite) TestSettle_ExceedsDocumentRemainder() {
	req := dto.CreateSettlementRequest{DocID: "doc-1", FlowID: "flow-1", SettleAmountCents: 45_000}

	suite.mockDocumentRepo.On("FindDocumentByID", suite.ctx, "doc-1").Return(suite.confirmedReceivable(), nil).Once()

	settlement, err := suite.service.Settle(suite.ctx, req, "user-1")

	suite.Nil(settlement)
	suite.ErrorIs(err, apperrors.ErrOverSettlement)
}

func (suite *SettlementServiceTestSuite) TestSettle_WrongFlowTypeRejected() {
	flow := suite.incomeFlow()
	flow.FlowType = domain.FlowExpense
	flow.SignedAmountCents = -flow.AmountCents
	req := dto.CreateSettlementRequest{DocID: "doc-1", FlowID: "flow-1", SettleAmountCents: 1_000}

	suite.mockDocumentRepo.On("FindDocumentByID", suite.ctx, "doc-1").Return(suite.confirmedReceivable(), nil).Once()
	suite.mockFlowRepo.On("FindFlowByID", suite.ctx, "flow-1").Return(flow, nil).Once()

	settlement, err := suite.service.Settle(suite.ctx, req, "user-1")

	suite.Nil(settlement)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *SettlementServiceTestSuite) TestSettle_ReversalFlowRejected() {
	origID := "flow-0"
	flow := suite.incomeFlow()
	flow.OriginalFlowID = &origID
	req := dto.CreateSettlementRequest{DocID: "doc-1", FlowID: "flow-1", SettleAmountCents: 1_000}

	suite.mockDocumentRepo.On("FindDocumentByID", suite.ctx, "doc-1").Return(suite.confirmedReceivable(), nil).Once()
	suite.mockFlowRepo.On("FindFlowByID", suite.ctx, "flow-1").Return(flow, nil).Once()

	settlement, err := suite.service.Settle(suite.ctx, req, "user-1")

	suite.Nil(settlement)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *SettlementServiceTestSuite) TestSettle_CurrencyMismatchRejected() {
	flow := suite.incomeFlow()
	flow.CurrencyCode = "EUR"
	req := dto.CreateSettlementRequest{DocID: "doc-1", FlowID: "flow-1", SettleAmountCents: 1_000}

	suite.mockDocumentRepo.On("FindDocumentByID", suite.ctx, "doc-1").Return(suite.confirmedReceivable(), nil).Once()
	suite.mockFlowRepo.On("FindFlowByID", suite.ctx, "flow-1").Return(flow, nil).Once()

	settlement, err := suite.service.Settle(suite.ctx, req, "user-1")

	suite.Nil(settlement)
	suite.ErrorIs(err, apperrors.ErrCurrencyMismatch)
}

func (suite *SettlementServiceTestSuite) TestSettle_IdempotentReplay() {
	key := "settle-key-1"
	req := dto.CreateSettlementRequest{DocID: "doc-1", FlowID: "flow-1", SettleAmountCents: 1_000, IdempotencyKey: &key}
	existing := &domain.Settlement{SettlementID: "set-1", DocID: "doc-1", FlowID: "flow-1", SettleAmountCents: 1_000}

	suite.mockIdempotencyRepo.On("FindEntityID", suite.ctx, key, portsrepo.OpCreateSettlement).Return("set-1", nil).Once()
	suite.mockSettlementRepo.On("FindSettlementByID", suite.ctx, "set-1").Return(existing, nil).Once()

	settlement, err := suite.service.Settle(suite.ctx, req, "user-1")

	suite.NoError(err)
	suite.Equal("set-1", settlement.SettlementID)
	suite.mockSettlementRepo.AssertNotCalled(suite.T(), "SaveSettlement", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *SettlementServiceTestSuite) TestSettle_ConcurrentDuplicateKeyReplays() {
	key := "settle-key-2"
	req := dto.CreateSettlementRequest{DocID: "doc-1", FlowID: "flow-1", SettleAmountCents: 1_000, IdempotencyKey: &key}
	existing := &domain.Settlement{SettlementID: "set-9", DocID: "doc-1", FlowID: "flow-1", SettleAmountCents: 1_000}

	// Pre-flight lookup misses, then a concurrent request holding the same
	// key commits first and our insert trips the unique constraint.
	suite.mockIdempotencyRepo.On("FindEntityID", suite.ctx, key, portsrepo.OpCreateSettlement).Return("", apperrors.ErrNotFound).Once()
	suite.mockDocumentRepo.On("FindDocumentByID", suite.ctx, "doc-1").Return(suite.confirmedReceivable(), nil).Once()
	suite.mockFlowRepo.On("FindFlowByID", suite.ctx, "flow-1").Return(suite.incomeFlow(), nil).Once()
	suite.mockSettlementRepo.On("SaveSettlement", suite.ctx, mock.Anything, &key).
		Return(nil, nil, apperrors.ErrDuplicate).Once()
	suite.mockIdempotencyRepo.On("FindEntityID", suite.ctx, key, portsrepo.OpCreateSettlement).Return("set-9", nil).Once()
	suite.mockSettlementRepo.On("FindSettlementByID", suite.ctx, "set-9").Return(existing, nil).Once()

	settlement, err := suite.service.Settle(suite.ctx, req, "user-1")

	suite.NoError(err)
	suite.Require().NotNil(settlement)
	suite.Equal("set-9", settlement.SettlementID)
	suite.mockSettlementRepo.AssertExpectations(suite.T())
	suite.mockIdempotencyRepo.AssertExpectations(suite.T())
}

func (suite *SettlementServiceTestSuite) TestSettle_RepositoryOverSettlementSurfaces() {
	req := dto.CreateSettlementRequest{DocID: "doc-1", FlowID: "flow-1", SettleAmountCents: 20_000}

	suite.mockDocumentRepo.On("FindDocumentByID", suite.ctx, "doc-1").Return(suite.confirmedReceivable(), nil).Once()
	suite.mockFlowRepo.On("FindFlowByID", suite.ctx, "flow-1").Return(suite.incomeFlow(), nil).Once()
	suite.mockSettlementRepo.On("SaveSettlement", suite.ctx, mock.Anything, (*string)(nil)).
		Return(nil, nil, apperrors.ErrOverSettlement).Once()

	settlement, err := suite.service.Settle(suite.ctx, req, "user-1")

	suite.Nil(settlement)
	suite.ErrorIs(err, apperrors.ErrOverSettlement)
}

func (suite *SettlementServiceTestSuite) TestReverseSettlement_Success() {
	reversal := &domain.SettlementReversal{ReversalID: "rev-1", SettlementID: "set-1", AmountCents: 20_000}
	doc := &domain.Document{DocID: "doc-1", Status: domain.DocPartiallySettled}

	suite.mockSettlementRepo.On("ReverseSettlement", suite.ctx, "set-1", "entered twice", "user-1").
		Return(reversal, doc, nil).Once()

	got, err := suite.service.ReverseSettlement(suite.ctx, "set-1", "entered twice", "user-1")

	suite.NoError(err)
	suite.Equal("rev-1", got.ReversalID)
	suite.mockSettlementRepo.AssertExpectations(suite.T())
}

func (suite *SettlementServiceTestSuite) TestReverseSettlement_AlreadyReversed() {
	suite.mockSettlementRepo.On("ReverseSettlement", suite.ctx, "set-1", "", "user-1").
		Return(nil, nil, apperrors.ErrConflict).Once()

	got, err := suite.service.ReverseSettlement(suite.ctx, "set-1", "", "user-1")

	suite.Nil(got)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *SettlementServiceTestSuite) TestListSettlementCandidates_MatchesDocumentKind() {
	doc := suite.confirmedReceivable()
	candidates := []domain.SettlementCandidate{
		{Flow: *suite.incomeFlow(), RemainingCents: 12_000},
	}

	suite.mockDocumentRepo.On("FindDocumentByID", suite.ctx, "doc-1").Return(doc, nil).Once()
	suite.mockSettlementRepo.On("ListSettlementCandidates", suite.ctx, domain.FlowIncome, "USD", "", 20, (*string)(nil)).
		Return(candidates, nil, nil).Once()

	res, err := suite.service.ListSettlementCandidates(suite.ctx, "doc-1", dto.ListSettlementCandidatesParams{})

	suite.NoError(err)
	suite.Require().Len(res.Candidates, 1)
	suite.Equal(int64(12_000), res.Candidates[0].RemainingCents)
	suite.mockSettlementRepo.AssertExpectations(suite.T())
}

func (suite *SettlementServiceTestSuite) TestListSettlementCandidates_TerminalDocumentRejected() {
	doc := suite.confirmedReceivable()
	doc.Status = domain.DocReversed

	suite.mockDocumentRepo.On("FindDocumentByID", suite.ctx, "doc-1").Return(doc, nil).Once()

	res, err := suite.service.ListSettlementCandidates(suite.ctx, "doc-1", dto.ListSettlementCandidatesParams{})

	suite.Nil(res)
	suite.ErrorIs(err, apperrors.ErrInvalidStateTransition)
}
