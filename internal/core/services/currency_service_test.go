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

type CurrencyServiceTestSuite struct {
	suite.Suite
	mockRepo *MockCurrencyRepository
	service  portssvc.CurrencySvcFacade
	ctx      context.Context
}

func (suite *CurrencyServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockCurrencyRepository)
	suite.service = services.NewCurrencyService(suite.mockRepo)
	suite.ctx = context.Background()
}

func TestCurrencyServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CurrencyServiceTestSuite))
}

func (suite *CurrencyServiceTestSuite) TestCreateCurrency_Success() {
	req := dto.CreateCurrencyRequest{
		CurrencyCode: "USD",
		Symbol:       "$",
		Name:         "US Dollar",
		Precision:    2,
	}

	suite.mockRepo.On("FindCurrencyByCode", suite.ctx, "USD").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("SaveCurrency", suite.ctx, mock.MatchedBy(func(c domain.Currency) bool {
		return c.CurrencyCode == "USD" && c.IsActive && c.CreatedBy == "user-1"
	})).Return(nil).Once()

	currency, err := suite.service.CreateCurrency(suite.ctx, req, "user-1")

	suite.NoError(err)
	suite.Require().NotNil(currency)
	suite.Equal("USD", currency.CurrencyCode)
	suite.Equal(2, currency.Precision)
	suite.True(currency.IsActive)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CurrencyServiceTestSuite) TestCreateCurrency_Duplicate() {
	req := dto.CreateCurrencyRequest{
		CurrencyCode: "EUR",
		Symbol:       "€",
		Name:         "Euro",
		Precision:    2,
	}
	existing := &domain.Currency{CurrencyCode: "EUR", IsActive: true}

	suite.mockRepo.On("FindCurrencyByCode", suite.ctx, "EUR").Return(existing, nil).Once()

	currency, err := suite.service.CreateCurrency(suite.ctx, req, "user-1")

	suite.Nil(currency)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveCurrency", mock.Anything, mock.Anything)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CurrencyServiceTestSuite) TestGetCurrencyByCode_NotFound() {
	suite.mockRepo.On("FindCurrencyByCode", suite.ctx, "XXX").Return(nil, apperrors.ErrNotFound).Once()

	currency, err := suite.service.GetCurrencyByCode(suite.ctx, "XXX")

	suite.Nil(currency)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CurrencyServiceTestSuite) TestListCurrencies_EmptyReturnsSlice() {
	suite.mockRepo.On("ListCurrencies", suite.ctx).Return([]domain.Currency{}, nil).Once()

	currencies, err := suite.service.ListCurrencies(suite.ctx)

	suite.NoError(err)
	suite.NotNil(currencies)
	suite.Len(currencies, 0)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CurrencyServiceTestSuite) TestDeactivateCurrency_Success() {
	existing := &domain.Currency{CurrencyCode: "JPY", IsActive: true}

	suite.mockRepo.On("FindCurrencyByCode", suite.ctx, "JPY").Return(existing, nil).Once()
	suite.mockRepo.On("SetCurrencyActive", suite.ctx, "JPY", false, "admin-1", mock.Anything).Return(nil).Once()

	err := suite.service.DeactivateCurrency(suite.ctx, "JPY", "admin-1")

	suite.NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CurrencyServiceTestSuite) TestDeactivateCurrency_AlreadyInactive() {
	existing := &domain.Currency{CurrencyCode: "JPY", IsActive: false}

	suite.mockRepo.On("FindCurrencyByCode", suite.ctx, "JPY").Return(existing, nil).Once()

	err := suite.service.DeactivateCurrency(suite.ctx, "JPY", "admin-1")

	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockRepo.AssertNotCalled(suite.T(), "SetCurrencyActive", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockRepo.AssertExpectations(suite.T())
}
