package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/openbooks/ledger_engine/internal/apperrors"
	"github.com/openbooks/ledger_engine/internal/core/domain"
	portssvc "github.com/openbooks/ledger_engine/internal/core/ports/services"
	"github.com/openbooks/ledger_engine/internal/core/services"
	"github.com/openbooks/ledger_engine/internal/dto"
)

type LedgerServiceTestSuite struct {
	suite.Suite
	mockAccountRepo    *MockAccountRepository
	mockNameRepo       *MockNameRepository
	mockCurrencyRepo   *MockCurrencyRepository
	mockDomainRepo     *MockDomainRepository
	mockSubJournalRepo *MockSubJournalRepository
	mockReferenceRepo  *MockReferenceRepository
	mockJournalRepo    *MockJournalRepository
	mockBalanceRepo    *MockBalanceRepository
	rules              *stubRules
	service            portssvc.LedgerSvcFacade
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockNameRepo = new(MockNameRepository)
	suite.mockCurrencyRepo = new(MockCurrencyRepository)
	suite.mockDomainRepo = new(MockDomainRepository)
	suite.mockSubJournalRepo = new(MockSubJournalRepository)
	suite.mockReferenceRepo = new(MockReferenceRepository)
	suite.mockJournalRepo = new(MockJournalRepository)
	suite.mockBalanceRepo = new(MockBalanceRepository)

	suite.rules = &stubRules{rules: domain.BaseRuleSet()}

	resolver := services.NewResolver(suite.mockAccountRepo, suite.mockDomainRepo,
		suite.mockSubJournalRepo, suite.mockReferenceRepo)
	accountSvc := services.NewAccountService(suite.mockAccountRepo, suite.mockNameRepo,
		suite.mockBalanceRepo, resolver, passthroughTxManager{}, suite.rules)
	suite.service = services.NewLedgerService(suite.mockAccountRepo, suite.mockNameRepo,
		suite.mockCurrencyRepo, suite.mockDomainRepo, suite.mockSubJournalRepo,
		suite.mockJournalRepo, suite.mockBalanceRepo, accountSvc, resolver,
		passthroughTxManager{}, suite.rules)
}

func minimalRequest() dto.CreateLedgerRequest {
	decimals := int32(2)
	return dto.CreateLedgerRequest{
		Currencies: []dto.CurrencyRequest{{Code: "USD", Decimals: &decimals}},
		Domains: []dto.DomainRequest{{
			Code:            ptrStr("MAIN"),
			DefaultCurrency: ptrStr("USD"),
			Names:           []dto.NameRequest{{Language: "en", Name: "Main"}},
		}},
	}
}

func (suite *LedgerServiceTestSuite) TestCreateLedger_Minimal() {
	ctx := context.Background()
	suite.mockAccountRepo.On("CountAccounts", mock.Anything).Return(int64(0), nil)

	var root domain.Account
	suite.mockAccountRepo.On("SaveAccount", mock.Anything, mock.AnythingOfType("domain.Account")).
		Run(func(args mock.Arguments) {
			root = args.Get(1).(domain.Account)
		}).Return(nil).Once()
	suite.mockNameRepo.On("ReplaceNames", mock.Anything, mock.AnythingOfType("string"),
		mock.AnythingOfType("[]domain.LedgerName")).Return(nil)
	suite.mockCurrencyRepo.On("SaveCurrency", mock.Anything, mock.AnythingOfType("domain.Currency")).Return(nil).Once()
	suite.mockCurrencyRepo.On("FindCurrencyByCode", mock.Anything, "USD").
		Return(&domain.Currency{Code: "USD", Decimals: 2}, nil)

	var savedDomain domain.Domain
	suite.mockDomainRepo.On("SaveDomain", mock.Anything, mock.AnythingOfType("domain.Domain")).
		Run(func(args mock.Arguments) {
			savedDomain = args.Get(1).(domain.Domain)
		}).Return(nil).Once()

	created, err := suite.service.CreateLedger(ctx, minimalRequest())

	suite.Require().NoError(err)
	suite.True(created.IsRoot())
	suite.Empty(created.Code)
	suite.True(created.Category)

	encoded, ok := root.Extra["ledgerRules"].(map[string]any)
	suite.Require().True(ok, "the root account carries the ledger rules")
	suite.Equal("MAIN", encoded["defaultDomainCode"], "first domain becomes the default")
	suite.NotEmpty(encoded["salt"])

	suite.Equal("MAIN", savedDomain.Code)
	suite.Equal("USD", savedDomain.DefaultCurrencyCode)
	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockCurrencyRepo.AssertExpectations(suite.T())
	suite.mockDomainRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestCreateLedger_OnlyOnce() {
	ctx := context.Background()
	suite.mockAccountRepo.On("CountAccounts", mock.Anything).Return(int64(4), nil)

	_, err := suite.service.CreateLedger(ctx, minimalRequest())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidOperation)
	suite.Contains(err.Error(), "already been created")
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestCreateLedger_RequiresCurrency() {
	ctx := context.Background()

	_, err := suite.service.CreateLedger(ctx, dto.CreateLedgerRequest{})

	suite.Require().Error(err)
	suite.Contains(err.Error(), "at least one currency is required")
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "CountAccounts", mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestCreateLedger_StuckParentsRejected() {
	ctx := context.Background()
	suite.mockAccountRepo.On("CountAccounts", mock.Anything).Return(int64(0), nil)
	suite.mockAccountRepo.On("SaveAccount", mock.Anything, mock.AnythingOfType("domain.Account")).Return(nil).Once()
	suite.mockNameRepo.On("ReplaceNames", mock.Anything, mock.AnythingOfType("string"),
		mock.AnythingOfType("[]domain.LedgerName")).Return(nil)
	suite.mockCurrencyRepo.On("SaveCurrency", mock.Anything, mock.AnythingOfType("domain.Currency")).Return(nil)
	suite.mockDomainRepo.On("SaveDomain", mock.Anything, mock.AnythingOfType("domain.Domain")).Return(nil)
	// Neither the new code nor the claimed parent exist.
	suite.mockAccountRepo.On("FindAccountByCode", mock.Anything, mock.AnythingOfType("string")).
		Return(nil, apperrors.ErrNotFound)

	req := minimalRequest()
	req.Domains = nil
	req.Accounts = []dto.AccountRequest{{
		Code:   ptrStr("1100"),
		Parent: &dto.EntityRef{Code: "9999"},
		Names:  []dto.NameRequest{{Language: "en", Name: "Cash"}},
	}}

	_, err := suite.service.CreateLedger(ctx, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), "reference parents that do not exist")
}

func (suite *LedgerServiceTestSuite) TestCreateLedger_OpeningBalancesMustNetToZero() {
	ctx := context.Background()
	mainDomain := domain.Domain{DomainID: uuid.NewString(), Code: "MAIN", DefaultCurrencyCode: "USD"}
	cash := domain.Account{AccountID: uuid.NewString(), Code: "1100", ParentID: ptrStr(uuid.NewString()), Debit: true}

	suite.mockAccountRepo.On("CountAccounts", mock.Anything).Return(int64(0), nil)
	suite.mockAccountRepo.On("SaveAccount", mock.Anything, mock.AnythingOfType("domain.Account")).Return(nil)
	suite.mockNameRepo.On("ReplaceNames", mock.Anything, mock.AnythingOfType("string"),
		mock.AnythingOfType("[]domain.LedgerName")).Return(nil)
	suite.mockCurrencyRepo.On("SaveCurrency", mock.Anything, mock.AnythingOfType("domain.Currency")).Return(nil)
	suite.mockCurrencyRepo.On("FindCurrencyByCode", mock.Anything, "USD").
		Return(&domain.Currency{Code: "USD", Decimals: 2}, nil)
	suite.mockDomainRepo.On("SaveDomain", mock.Anything, mock.AnythingOfType("domain.Domain")).Return(nil)
	suite.mockDomainRepo.On("FindDomainByCode", mock.Anything, "MAIN").Return(&mainDomain, nil)
	suite.mockAccountRepo.On("FindAccountByCode", mock.Anything, "1100").Return(&cash, nil)

	req := minimalRequest()
	req.Balances = []dto.OpeningBalanceRequest{
		{Account: dto.EntityRef{Code: "1100"}, Debit: ptrStr("250")},
	}

	_, err := suite.service.CreateLedger(ctx, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrRuleViolation)
	suite.Contains(err.Error(), "out of balance by 250.00.")
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveEntry", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestCreateLedger_PostsOpeningEntries() {
	ctx := context.Background()
	mainDomain := domain.Domain{DomainID: uuid.NewString(), Code: "MAIN", DefaultCurrencyCode: "USD"}
	parentID := uuid.NewString()
	cash := domain.Account{AccountID: uuid.NewString(), Code: "1100", ParentID: &parentID, Debit: true}
	equity := domain.Account{AccountID: uuid.NewString(), Code: "3100", ParentID: &parentID, Credit: true}

	suite.mockAccountRepo.On("CountAccounts", mock.Anything).Return(int64(0), nil)
	suite.mockAccountRepo.On("SaveAccount", mock.Anything, mock.AnythingOfType("domain.Account")).Return(nil)
	suite.mockNameRepo.On("ReplaceNames", mock.Anything, mock.AnythingOfType("string"),
		mock.AnythingOfType("[]domain.LedgerName")).Return(nil)
	suite.mockCurrencyRepo.On("SaveCurrency", mock.Anything, mock.AnythingOfType("domain.Currency")).Return(nil)
	suite.mockCurrencyRepo.On("FindCurrencyByCode", mock.Anything, "USD").
		Return(&domain.Currency{Code: "USD", Decimals: 2}, nil)
	suite.mockDomainRepo.On("SaveDomain", mock.Anything, mock.AnythingOfType("domain.Domain")).Return(nil)
	suite.mockDomainRepo.On("FindDomainByCode", mock.Anything, "MAIN").Return(&mainDomain, nil)
	suite.mockAccountRepo.On("FindAccountByCode", mock.Anything, "1100").Return(&cash, nil)
	suite.mockAccountRepo.On("FindAccountByCode", mock.Anything, "3100").Return(&equity, nil)

	var opening *domain.JournalEntry
	suite.mockJournalRepo.On("SaveEntry", mock.Anything, mock.AnythingOfType("*domain.JournalEntry")).
		Run(func(args mock.Arguments) {
			opening = args.Get(1).(*domain.JournalEntry)
			opening.EntryID = 1
		}).Return(nil).Once()
	suite.mockBalanceRepo.On("ApplyBalanceDelta", mock.Anything, cash.AccountID,
		mainDomain.DomainID, "USD", decimalEq("-250"), mock.Anything).Return(nil).Once()
	suite.mockBalanceRepo.On("ApplyBalanceDelta", mock.Anything, equity.AccountID,
		mainDomain.DomainID, "USD", decimalEq("250"), mock.Anything).Return(nil).Once()

	req := minimalRequest()
	req.Balances = []dto.OpeningBalanceRequest{
		{Account: dto.EntityRef{Code: "1100"}, Debit: ptrStr("250")},
		{Account: dto.EntityRef{Code: "3100"}, Credit: ptrStr("250")},
	}

	_, err := suite.service.CreateLedger(ctx, req)

	suite.Require().NoError(err)
	suite.Require().NotNil(opening)
	suite.True(opening.Opening)
	suite.Equal("Opening balances", opening.Description)
	suite.Len(opening.Details, 2)
	suite.mockJournalRepo.AssertExpectations(suite.T())
	suite.mockBalanceRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestCreateLedger_BatchLimitEnforced() {
	ctx := context.Background()
	suite.mockAccountRepo.On("CountAccounts", mock.Anything).Return(int64(0), nil)

	req := minimalRequest()
	limit := 1
	req.Rules = &domain.LedgerRulesPatch{MaxBatchSize: &limit}
	req.Accounts = []dto.AccountRequest{
		{Code: ptrStr("1100"), Names: []dto.NameRequest{{Language: "en", Name: "Cash"}}},
		{Code: ptrStr("3100"), Names: []dto.NameRequest{{Language: "en", Name: "Equity"}}},
	}

	_, err := suite.service.CreateLedger(ctx, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), "exceed the batch limit")
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestCreateLedger_ImplicitDefaultDomain() {
	ctx := context.Background()
	suite.mockAccountRepo.On("CountAccounts", mock.Anything).Return(int64(0), nil)

	var root domain.Account
	suite.mockAccountRepo.On("SaveAccount", mock.Anything, mock.AnythingOfType("domain.Account")).
		Run(func(args mock.Arguments) {
			root = args.Get(1).(domain.Account)
		}).Return(nil).Once()
	suite.mockNameRepo.On("ReplaceNames", mock.Anything, mock.AnythingOfType("string"),
		mock.AnythingOfType("[]domain.LedgerName")).Return(nil)
	suite.mockCurrencyRepo.On("SaveCurrency", mock.Anything, mock.AnythingOfType("domain.Currency")).Return(nil).Once()

	var savedDomain domain.Domain
	suite.mockDomainRepo.On("SaveDomain", mock.Anything, mock.AnythingOfType("domain.Domain")).
		Run(func(args mock.Arguments) {
			savedDomain = args.Get(1).(domain.Domain)
		}).Return(nil).Once()

	req := minimalRequest()
	req.Domains = nil

	_, err := suite.service.CreateLedger(ctx, req)

	suite.Require().NoError(err)
	suite.Equal("GENERAL", savedDomain.Code)
	suite.Equal("USD", savedDomain.DefaultCurrencyCode, "first currency becomes the domain default")
	encoded, ok := root.Extra["ledgerRules"].(map[string]any)
	suite.Require().True(ok)
	suite.Equal("GENERAL", encoded["defaultDomainCode"])
	suite.mockDomainRepo.AssertExpectations(suite.T())
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}
