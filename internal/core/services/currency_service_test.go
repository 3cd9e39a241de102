package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/openbooks/ledger_engine/internal/apperrors"
	"github.com/openbooks/ledger_engine/internal/core/domain"
	portssvc "github.com/openbooks/ledger_engine/internal/core/ports/services"
	"github.com/openbooks/ledger_engine/internal/core/services"
	"github.com/openbooks/ledger_engine/internal/dto"
	"github.com/openbooks/ledger_engine/internal/utils/revision"
)

type CurrencyServiceTestSuite struct {
	suite.Suite
	mockCurrencyRepo *MockCurrencyRepository
	mockDomainRepo   *MockDomainRepository
	service          portssvc.CurrencySvcFacade

	usd domain.Currency
}

func (suite *CurrencyServiceTestSuite) SetupTest() {
	suite.mockCurrencyRepo = new(MockCurrencyRepository)
	suite.mockDomainRepo = new(MockDomainRepository)

	rules := domain.BaseRuleSet()
	rules.Salt = "test-salt"
	suite.service = services.NewCurrencyService(suite.mockCurrencyRepo, suite.mockDomainRepo,
		passthroughTxManager{}, &stubRules{rules: rules})

	now := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	suite.usd = domain.Currency{Code: "USD", Decimals: 2}
	suite.usd.CreatedAt = now
	suite.usd.Touch(now)
}

func (suite *CurrencyServiceTestSuite) usdToken() string {
	return revision.Token(suite.usd.RevisedAt, suite.usd.LastUpdatedAt, "test-salt")
}

func (suite *CurrencyServiceTestSuite) TestAddCurrency_NormalizesCode() {
	ctx := context.Background()
	suite.mockCurrencyRepo.On("FindCurrencyByCode", mock.Anything, "EUR").Return(nil, apperrors.ErrNotFound)
	suite.mockCurrencyRepo.On("SaveCurrency", mock.Anything, mock.AnythingOfType("domain.Currency")).Return(nil).Once()

	decimals := int32(2)
	currency, err := suite.service.AddCurrency(ctx, dto.CurrencyRequest{Code: " eur ", Decimals: &decimals})

	suite.Require().NoError(err)
	suite.Equal("EUR", currency.Code)
	suite.mockCurrencyRepo.AssertExpectations(suite.T())
}

func (suite *CurrencyServiceTestSuite) TestAddCurrency_DuplicateRejected() {
	ctx := context.Background()
	suite.mockCurrencyRepo.On("FindCurrencyByCode", mock.Anything, "USD").Return(&suite.usd, nil)

	decimals := int32(2)
	_, err := suite.service.AddCurrency(ctx, dto.CurrencyRequest{Code: "USD", Decimals: &decimals})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

func (suite *CurrencyServiceTestSuite) TestUpdateCurrency_RenameCascades() {
	ctx := context.Background()
	suite.mockCurrencyRepo.On("FindCurrencyByCode", mock.Anything, "USD").Return(&suite.usd, nil)
	suite.mockCurrencyRepo.On("FindCurrencyByCode", mock.Anything, "USN").Return(nil, apperrors.ErrNotFound)
	suite.mockCurrencyRepo.On("UpdateCurrency", mock.Anything, mock.AnythingOfType("domain.Currency")).Return(nil).Once()
	suite.mockCurrencyRepo.On("RenameCurrency", mock.Anything, "USD", "USN").Return(nil).Once()

	updated, err := suite.service.UpdateCurrency(ctx, dto.CurrencyRequest{
		Code:     "USD",
		ToCode:   "USN",
		Revision: suite.usdToken(),
	})

	suite.Require().NoError(err)
	suite.Equal("USN", updated.Code)
	suite.mockCurrencyRepo.AssertExpectations(suite.T())
}

func (suite *CurrencyServiceTestSuite) TestUpdateCurrency_ScaleDecreaseBlockedWhenUsed() {
	ctx := context.Background()
	suite.mockCurrencyRepo.On("FindCurrencyByCode", mock.Anything, "USD").Return(&suite.usd, nil)
	suite.mockCurrencyRepo.On("CountEntriesUsingCurrency", mock.Anything, "USD").Return(int64(12), nil)

	decimals := int32(0)
	_, err := suite.service.UpdateCurrency(ctx, dto.CurrencyRequest{
		Code:     "USD",
		Decimals: &decimals,
		Revision: suite.usdToken(),
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrRuleViolation)
	suite.Contains(err.Error(), services.ErrScaleDecreaseUsed.Error())
	suite.mockCurrencyRepo.AssertNotCalled(suite.T(), "UpdateCurrency", mock.Anything, mock.Anything)
}

func (suite *CurrencyServiceTestSuite) TestUpdateCurrency_ScaleIncreaseAllowedWhenUsed() {
	ctx := context.Background()
	suite.mockCurrencyRepo.On("FindCurrencyByCode", mock.Anything, "USD").Return(&suite.usd, nil)
	suite.mockCurrencyRepo.On("UpdateCurrency", mock.Anything, mock.AnythingOfType("domain.Currency")).Return(nil).Once()

	decimals := int32(4)
	updated, err := suite.service.UpdateCurrency(ctx, dto.CurrencyRequest{
		Code:     "USD",
		Decimals: &decimals,
		Revision: suite.usdToken(),
	})

	suite.Require().NoError(err)
	suite.Equal(int32(4), updated.Decimals)
	suite.mockCurrencyRepo.AssertNotCalled(suite.T(), "CountEntriesUsingCurrency", mock.Anything, mock.Anything)
}

func (suite *CurrencyServiceTestSuite) TestDeleteCurrency_InUseRejected() {
	ctx := context.Background()
	suite.mockCurrencyRepo.On("FindCurrencyByCode", mock.Anything, "USD").Return(&suite.usd, nil)
	suite.mockCurrencyRepo.On("CountEntriesUsingCurrency", mock.Anything, "USD").Return(int64(1), nil)

	err := suite.service.DeleteCurrency(ctx, dto.CurrencyRequest{Code: "USD", Revision: suite.usdToken()})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrRuleViolation)
	suite.Contains(err.Error(), services.ErrCurrencyInUse.Error())
}

func (suite *CurrencyServiceTestSuite) TestDeleteCurrency_DomainDefaultRejected() {
	ctx := context.Background()
	suite.mockCurrencyRepo.On("FindCurrencyByCode", mock.Anything, "USD").Return(&suite.usd, nil)
	suite.mockCurrencyRepo.On("CountEntriesUsingCurrency", mock.Anything, "USD").Return(int64(0), nil)
	suite.mockDomainRepo.On("ListDomains", mock.Anything).
		Return([]domain.Domain{{Code: "MAIN", DefaultCurrencyCode: "USD"}}, nil)

	err := suite.service.DeleteCurrency(ctx, dto.CurrencyRequest{Code: "USD", Revision: suite.usdToken()})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrRuleViolation)
	suite.Contains(err.Error(), "is the default of domain MAIN")
}

func (suite *CurrencyServiceTestSuite) TestDeleteCurrency_Unused() {
	ctx := context.Background()
	suite.mockCurrencyRepo.On("FindCurrencyByCode", mock.Anything, "USD").Return(&suite.usd, nil)
	suite.mockCurrencyRepo.On("CountEntriesUsingCurrency", mock.Anything, "USD").Return(int64(0), nil)
	suite.mockDomainRepo.On("ListDomains", mock.Anything).Return([]domain.Domain{}, nil)
	suite.mockCurrencyRepo.On("DeleteCurrency", mock.Anything, "USD").Return(nil).Once()

	err := suite.service.DeleteCurrency(ctx, dto.CurrencyRequest{Code: "USD", Revision: suite.usdToken()})

	suite.Require().NoError(err)
	suite.mockCurrencyRepo.AssertExpectations(suite.T())
}

func TestCurrencyServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CurrencyServiceTestSuite))
}
