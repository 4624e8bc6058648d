package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/clearbooks/finance_core_app/internal/apperrors"
	"github.com/clearbooks/finance_core_app/internal/core/domain"
	portssvc "github.com/clearbooks/finance_core_app/internal/core/ports/services"
	"github.com/clearbooks/finance_core_app/internal/core/services"
	"github.com/clearbooks/finance_core_app/internal/dto"
)

type TransferServiceTestSuite struct {
	suite.Suite
	mockTransferRepo *MockTransferRepository
	mockAccountRepo  *MockAccountRepository
	mockAudit        *MockAuditPublisher
	service          portssvc.TransferSvcFacade
	ctx              context.Context
}

func (suite *TransferServiceTestSuite) SetupTest() {
	suite.mockTransferRepo = new(MockTransferRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockAudit = new(MockAuditPublisher)
	suite.mockAudit.On("Publish", mock.Anything, mock.Anything).Maybe()
	suite.service = services.NewTransferService(suite.mockTransferRepo, suite.mockAccountRepo, suite.mockAudit)
	suite.ctx = context.Background()
}

func TestTransferServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransferServiceTestSuite))
}

func (suite *TransferServiceTestSuite) twoAccounts(destCurrency string) map[string]domain.Account {
	return map[string]domain.Account{
		"acc-src": {AccountID: "acc-src", Name: "Source", CurrencyCode: "USD", IsActive: true, BalanceCents: 50_000},
		"acc-dst": {AccountID: "acc-dst", Name: "Destination", CurrencyCode: destCurrency, IsActive: true},
	}
}

func (suite *TransferServiceTestSuite) TestCreateTransfer_SameCurrencyLegsAreZeroSum() {
	req := dto.CreateTransferRequest{
		FromAccountID: "acc-src",
		ToAccountID:   "acc-dst",
		AmountCents:   10_000,
		CurrencyCode:  "USD",
		BizDate:       "2026-08-20",
	}

	suite.mockAccountRepo.On("FindAccountsByIDs", suite.ctx, []string{"acc-src", "acc-dst"}).
		Return(suite.twoAccounts("USD"), nil).Once()
	suite.mockTransferRepo.On("SaveTransfer", suite.ctx,
		mock.MatchedBy(func(t domain.AccountTransfer) bool {
			return t.FromAccountID == "acc-src" && t.ToAccountID == "acc-dst" &&
				t.AmountCents == 10_000 && t.DestAmountCents == 10_000 &&
				t.CurrencyCode == "USD" && t.DestCurrencyCode == "USD"
		}),
		mock.MatchedBy(func(out domain.Flow) bool {
			return out.FlowType == domain.FlowTransferOut && out.SignedAmountCents == -10_000 &&
				out.AccountID == "acc-src" && out.TransferID != nil
		}),
		mock.MatchedBy(func(in domain.Flow) bool {
			return in.FlowType == domain.FlowTransferIn && in.SignedAmountCents == 10_000 &&
				in.AccountID == "acc-dst" && in.TransferID != nil
		}),
	).Return(&domain.AccountTransfer{TransferID: "tr-1", FromAccountID: "acc-src", ToAccountID: "acc-dst", AmountCents: 10_000}, nil).Once()

	transfer, err := suite.service.CreateTransfer(suite.ctx, req, "user-1")

	suite.NoError(err)
	suite.Require().NotNil(transfer)
	suite.Equal("tr-1", transfer.TransferID)
	suite.mockTransferRepo.AssertExpectations(suite.T())
}

func (suite *TransferServiceTestSuite) TestCreateTransfer_SameAccountRejected() {
	req := dto.CreateTransferRequest{
		FromAccountID: "acc-1",
		ToAccountID:   "acc-1",
		AmountCents:   100,
		CurrencyCode:  "USD",
		BizDate:       "2026-08-20",
	}

	transfer, err := suite.service.CreateTransfer(suite.ctx, req, "user-1")

	suite.Nil(transfer)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockTransferRepo.AssertNotCalled(suite.T(), "SaveTransfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransferServiceTestSuite) TestCreateTransfer_CrossCurrencyRequiresDestAmount() {
	req := dto.CreateTransferRequest{
		FromAccountID: "acc-src",
		ToAccountID:   "acc-dst",
		AmountCents:   10_000,
		CurrencyCode:  "USD",
		BizDate:       "2026-08-20",
	}

	suite.mockAccountRepo.On("FindAccountsByIDs", suite.ctx, []string{"acc-src", "acc-dst"}).
		Return(suite.twoAccounts("EUR"), nil).Once()

	transfer, err := suite.service.CreateTransfer(suite.ctx, req, "user-1")

	suite.Nil(transfer)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *TransferServiceTestSuite) TestCreateTransfer_CrossCurrencyUsesDestAmount() {
	destAmount := int64(9_200)
	req := dto.CreateTransferRequest{
		FromAccountID:   "acc-src",
		ToAccountID:     "acc-dst",
		AmountCents:     10_000,
		CurrencyCode:    "USD",
		DestAmountCents: &destAmount,
		BizDate:         "2026-08-20",
	}

	suite.mockAccountRepo.On("FindAccountsByIDs", suite.ctx, []string{"acc-src", "acc-dst"}).
		Return(suite.twoAccounts("EUR"), nil).Once()
	suite.mockTransferRepo.On("SaveTransfer", suite.ctx,
		mock.MatchedBy(func(t domain.AccountTransfer) bool {
			return t.DestAmountCents == 9_200 && t.DestCurrencyCode == "EUR"
		}),
		mock.MatchedBy(func(out domain.Flow) bool {
			return out.SignedAmountCents == -10_000 && out.CurrencyCode == "USD"
		}),
		mock.MatchedBy(func(in domain.Flow) bool {
			return in.SignedAmountCents == 9_200 && in.CurrencyCode == "EUR"
		}),
	).Return(&domain.AccountTransfer{TransferID: "tr-2"}, nil).Once()

	transfer, err := suite.service.CreateTransfer(suite.ctx, req, "user-1")

	suite.NoError(err)
	suite.Require().NotNil(transfer)
	suite.mockTransferRepo.AssertExpectations(suite.T())
}

func (suite *TransferServiceTestSuite) TestCreateTransfer_SourceCurrencyMismatch() {
	req := dto.CreateTransferRequest{
		FromAccountID: "acc-src",
		ToAccountID:   "acc-dst",
		AmountCents:   100,
		CurrencyCode:  "GBP",
		BizDate:       "2026-08-20",
	}

	suite.mockAccountRepo.On("FindAccountsByIDs", suite.ctx, []string{"acc-src", "acc-dst"}).
		Return(suite.twoAccounts("USD"), nil).Once()

	transfer, err := suite.service.CreateTransfer(suite.ctx, req, "user-1")

	suite.Nil(transfer)
	suite.ErrorIs(err, apperrors.ErrCurrencyMismatch)
}

func (suite *TransferServiceTestSuite) TestCreateTransfer_InactiveDestination() {
	accounts := suite.twoAccounts("USD")
	dst := accounts["acc-dst"]
	dst.IsActive = false
	accounts["acc-dst"] = dst

	req := dto.CreateTransferRequest{
		FromAccountID: "acc-src",
		ToAccountID:   "acc-dst",
		AmountCents:   100,
		CurrencyCode:  "USD",
		BizDate:       "2026-08-20",
	}

	suite.mockAccountRepo.On("FindAccountsByIDs", suite.ctx, []string{"acc-src", "acc-dst"}).
		Return(accounts, nil).Once()

	transfer, err := suite.service.CreateTransfer(suite.ctx, req, "user-1")

	suite.Nil(transfer)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *TransferServiceTestSuite) TestCreateTransfer_MissingDestination() {
	accounts := suite.twoAccounts("USD")
	delete(accounts, "acc-dst")

	req := dto.CreateTransferRequest{
		FromAccountID: "acc-src",
		ToAccountID:   "acc-dst",
		AmountCents:   100,
		CurrencyCode:  "USD",
		BizDate:       "2026-08-20",
	}

	suite.mockAccountRepo.On("FindAccountsByIDs", suite.ctx, []string{"acc-src", "acc-dst"}).
		Return(accounts, nil).Once()

	transfer, err := suite.service.CreateTransfer(suite.ctx, req, "user-1")

	suite.Nil(transfer)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *TransferServiceTestSuite) TestCreateTransfer_InsufficientBalanceSurfaces() {
	req := dto.CreateTransferRequest{
		FromAccountID: "acc-src",
		ToAccountID:   "acc-dst",
		AmountCents:   999_999,
		CurrencyCode:  "USD",
		BizDate:       "2026-08-20",
	}

	suite.mockAccountRepo.On("FindAccountsByIDs", suite.ctx, []string{"acc-src", "acc-dst"}).
		Return(suite.twoAccounts("USD"), nil).Once()
	suite.mockTransferRepo.On("SaveTransfer", suite.ctx, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperrors.ErrInsufficientBalance).Once()

	transfer, err := suite.service.CreateTransfer(suite.ctx, req, "user-1")

	suite.Nil(transfer)
	suite.ErrorIs(err, apperrors.ErrInsufficientBalance)
}
