package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/openbooks/ledger_engine/internal/apperrors"
	"github.com/openbooks/ledger_engine/internal/core/domain"
	portsrepo "github.com/openbooks/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/openbooks/ledger_engine/internal/core/ports/services"
	"github.com/openbooks/ledger_engine/internal/core/services"
	"github.com/openbooks/ledger_engine/internal/dto"
	"github.com/openbooks/ledger_engine/internal/utils/revision"
)

type JournalServiceTestSuite struct {
	suite.Suite
	mockJournalRepo    *MockJournalRepository
	mockBalanceRepo    *MockBalanceRepository
	mockCurrencyRepo   *MockCurrencyRepository
	mockDomainRepo     *MockDomainRepository
	mockAccountRepo    *MockAccountRepository
	mockSubJournalRepo *MockSubJournalRepository
	mockReferenceRepo  *MockReferenceRepository
	rules              *stubRules
	service            portssvc.JournalSvcFacade

	mainDomain     domain.Domain
	usd            domain.Currency
	cashAccount    domain.Account
	revenueAccount domain.Account
	assetCategory  domain.Account
}

func (suite *JournalServiceTestSuite) SetupTest() {
	suite.mockJournalRepo = new(MockJournalRepository)
	suite.mockBalanceRepo = new(MockBalanceRepository)
	suite.mockCurrencyRepo = new(MockCurrencyRepository)
	suite.mockDomainRepo = new(MockDomainRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockSubJournalRepo = new(MockSubJournalRepository)
	suite.mockReferenceRepo = new(MockReferenceRepository)

	rules := domain.BaseRuleSet()
	rules.DefaultDomainCode = "MAIN"
	rules.OpeningDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rules.Salt = "test-salt"
	suite.rules = &stubRules{rules: rules}

	resolver := services.NewResolver(suite.mockAccountRepo, suite.mockDomainRepo,
		suite.mockSubJournalRepo, suite.mockReferenceRepo)
	suite.service = services.NewJournalService(suite.mockJournalRepo, suite.mockBalanceRepo,
		suite.mockCurrencyRepo, suite.mockDomainRepo, resolver, passthroughTxManager{}, suite.rules)

	suite.mainDomain = domain.Domain{
		DomainID:            uuid.NewString(),
		Code:                "MAIN",
		DefaultCurrencyCode: "USD",
	}
	suite.usd = domain.Currency{Code: "USD", Decimals: 2}

	rootID := uuid.NewString()
	suite.cashAccount = domain.Account{
		AccountID: uuid.NewString(),
		Code:      "1100",
		ParentID:  &rootID,
		Debit:     true,
	}
	suite.revenueAccount = domain.Account{
		AccountID: uuid.NewString(),
		Code:      "4000",
		ParentID:  &rootID,
		Credit:    true,
	}
	suite.assetCategory = domain.Account{
		AccountID: uuid.NewString(),
		Code:      "1000",
		ParentID:  &rootID,
		Category:  true,
	}
}

func (suite *JournalServiceTestSuite) expectDefaultHeader() {
	suite.mockDomainRepo.On("FindDomainByCode", mock.Anything, "MAIN").Return(&suite.mainDomain, nil)
	suite.mockCurrencyRepo.On("FindCurrencyByCode", mock.Anything, "USD").Return(&suite.usd, nil)
}

func (suite *JournalServiceTestSuite) expectAccount(a domain.Account) {
	suite.mockAccountRepo.On("FindAccountByCode", mock.Anything, a.Code).Return(&a, nil)
}

func decimalEq(want string) interface{} {
	expected := decimal.RequireFromString(want)
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(expected) })
}

func ptrStr(s string) *string { return &s }

func balancedRequest(cashCode, revenueCode string) dto.EntryRequest {
	return dto.EntryRequest{
		Description: ptrStr("Cash sale"),
		Details: []dto.DetailRequest{
			{Account: dto.EntityRef{Code: cashCode}, Debit: ptrStr("100")},
			{Account: dto.EntityRef{Code: revenueCode}, Credit: ptrStr("100")},
		},
	}
}

func (suite *JournalServiceTestSuite) TestAddEntry_Success() {
	ctx := context.Background()
	suite.expectDefaultHeader()
	suite.expectAccount(suite.cashAccount)
	suite.expectAccount(suite.revenueAccount)

	suite.mockJournalRepo.On("SaveEntry", mock.Anything, mock.AnythingOfType("*domain.JournalEntry")).
		Run(func(args mock.Arguments) {
			entry := args.Get(1).(*domain.JournalEntry)
			entry.EntryID = 42
		}).Return(nil).Once()
	suite.mockBalanceRepo.On("ApplyBalanceDelta", mock.Anything, suite.cashAccount.AccountID,
		suite.mainDomain.DomainID, "USD", decimalEq("-100"), mock.Anything).Return(nil).Once()
	suite.mockBalanceRepo.On("ApplyBalanceDelta", mock.Anything, suite.revenueAccount.AccountID,
		suite.mainDomain.DomainID, "USD", decimalEq("100"), mock.Anything).Return(nil).Once()

	entry, err := suite.service.AddEntry(ctx, balancedRequest("1100", "4000"))

	suite.Require().NoError(err)
	suite.Require().NotNil(entry)
	suite.Equal(int64(42), entry.EntryID)
	suite.Equal(suite.mainDomain.DomainID, entry.DomainID)
	suite.Equal("USD", entry.CurrencyCode)
	suite.Equal("en", entry.Language)
	suite.Require().Len(entry.Details, 2)
	suite.True(entry.Details[0].IsDebit())
	suite.False(entry.Details[1].IsDebit())
	suite.mockJournalRepo.AssertExpectations(suite.T())
	suite.mockBalanceRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestAddEntry_OutOfBalance() {
	ctx := context.Background()
	suite.expectDefaultHeader()
	suite.expectAccount(suite.cashAccount)
	suite.expectAccount(suite.revenueAccount)

	req := balancedRequest("1100", "4000")
	req.Details[1].Credit = ptrStr("99.99")

	_, err := suite.service.AddEntry(ctx, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrRuleViolation)
	suite.Contains(err.Error(), "out of balance by 0.01.")
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveEntry", mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestAddEntry_ManyToManyRejected() {
	ctx := context.Background()
	suite.expectDefaultHeader()
	suite.expectAccount(suite.cashAccount)
	suite.expectAccount(suite.revenueAccount)

	bank := suite.cashAccount
	bank.AccountID = uuid.NewString()
	bank.Code = "1200"
	fees := suite.revenueAccount
	fees.AccountID = uuid.NewString()
	fees.Code = "4100"
	suite.expectAccount(bank)
	suite.expectAccount(fees)

	req := dto.EntryRequest{
		Description: ptrStr("Mixed posting"),
		Details: []dto.DetailRequest{
			{Account: dto.EntityRef{Code: "1100"}, Debit: ptrStr("60")},
			{Account: dto.EntityRef{Code: "1200"}, Debit: ptrStr("40")},
			{Account: dto.EntityRef{Code: "4000"}, Credit: ptrStr("70")},
			{Account: dto.EntityRef{Code: "4100"}, Credit: ptrStr("30")},
		},
	}

	_, err := suite.service.AddEntry(ctx, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrRuleViolation)
	suite.Contains(err.Error(), services.ErrManyToMany.Error())
}

func (suite *JournalServiceTestSuite) TestAddEntry_DuplicateAccountRejected() {
	ctx := context.Background()
	suite.expectDefaultHeader()
	suite.expectAccount(suite.cashAccount)

	req := dto.EntryRequest{
		Description: ptrStr("Self transfer"),
		Details: []dto.DetailRequest{
			{Account: dto.EntityRef{Code: "1100"}, Debit: ptrStr("50")},
			{Account: dto.EntityRef{Code: "1100"}, Credit: ptrStr("50")},
		},
	}

	_, err := suite.service.AddEntry(ctx, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrRuleViolation)
	suite.Contains(err.Error(), services.ErrDuplicateAccount.Error())
}

func (suite *JournalServiceTestSuite) TestAddEntry_CategoryAccountRejected() {
	ctx := context.Background()
	suite.expectDefaultHeader()
	suite.expectAccount(suite.assetCategory)
	suite.expectAccount(suite.revenueAccount)

	req := balancedRequest("1000", "4000")

	_, err := suite.service.AddEntry(ctx, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrRuleViolation)
	suite.Contains(err.Error(), "category account")
}

func (suite *JournalServiceTestSuite) TestAddEntry_DateBeforeOpeningRejected() {
	ctx := context.Background()
	suite.expectDefaultHeader()

	req := balancedRequest("1100", "4000")
	early := time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC)
	req.Date = &early

	_, err := suite.service.AddEntry(ctx, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrRuleViolation)
	suite.Contains(err.Error(), "before the ledger opening date")
}

func (suite *JournalServiceTestSuite) TestAddEntry_SubJournalRequired() {
	ctx := context.Background()
	subsDomain := suite.mainDomain
	subsDomain.UseSubJournals = true
	suite.mockDomainRepo.On("FindDomainByCode", mock.Anything, "MAIN").Return(&subsDomain, nil)
	suite.mockCurrencyRepo.On("FindCurrencyByCode", mock.Anything, "USD").Return(&suite.usd, nil)

	_, err := suite.service.AddEntry(ctx, balancedRequest("1100", "4000"))

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrRuleViolation)
	suite.Contains(err.Error(), "requires a sub-journal")
}

// storedEntry builds a persisted-looking entry and its current revision token.
func (suite *JournalServiceTestSuite) storedEntry(locked bool) (*domain.JournalEntry, string) {
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	entry := &domain.JournalEntry{
		EntryID:      7,
		Date:         now,
		DomainID:     suite.mainDomain.DomainID,
		CurrencyCode: "USD",
		Description:  "Stored entry",
		Language:     "en",
		Locked:       locked,
		Details: []domain.JournalDetail{
			{DetailID: uuid.NewString(), EntryID: 7, AccountID: suite.cashAccount.AccountID, Amount: decimal.RequireFromString("-100")},
			{DetailID: uuid.NewString(), EntryID: 7, AccountID: suite.revenueAccount.AccountID, Amount: decimal.RequireFromString("100")},
		},
	}
	entry.CreatedAt = now
	entry.LastUpdatedAt = now
	entry.RevisedAt = now
	token := revision.Token(entry.RevisedAt, entry.LastUpdatedAt, "test-salt")

	suite.mockJournalRepo.On("FindEntryByID", mock.Anything, int64(7)).Return(entry, nil)
	suite.mockJournalRepo.On("FindDetailsByEntryID", mock.Anything, int64(7)).Return(entry.Details, nil)
	return entry, token
}

func (suite *JournalServiceTestSuite) TestUpdateEntry_HeaderOnlyKeepsBalances() {
	ctx := context.Background()
	_, token := suite.storedEntry(false)

	id := int64(7)
	req := dto.EntryRequest{
		EntryID:     &id,
		Description: ptrStr("Corrected description"),
		Revision:    token,
	}
	suite.mockJournalRepo.On("UpdateEntryHeader", mock.Anything, mock.AnythingOfType("domain.JournalEntry")).Return(nil).Once()

	updated, err := suite.service.UpdateEntry(ctx, req)

	suite.Require().NoError(err)
	suite.Equal("Corrected description", updated.Description)
	suite.mockBalanceRepo.AssertNotCalled(suite.T(), "ApplyBalanceDelta",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestUpdateEntry_LockedRejected() {
	ctx := context.Background()
	_, token := suite.storedEntry(true)

	id := int64(7)
	req := dto.EntryRequest{
		EntryID:     &id,
		Description: ptrStr("Attempted change"),
		Revision:    token,
	}

	_, err := suite.service.UpdateEntry(ctx, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrRuleViolation)
	suite.Contains(err.Error(), services.ErrEntryLocked.Error())
}

func (suite *JournalServiceTestSuite) TestUpdateEntry_CurrencyChangeNeedsDetails() {
	ctx := context.Background()
	_, token := suite.storedEntry(false)

	id := int64(7)
	req := dto.EntryRequest{
		EntryID:  &id,
		Currency: ptrStr("EUR"),
		Revision: token,
	}

	_, err := suite.service.UpdateEntry(ctx, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrRuleViolation)
	suite.Contains(err.Error(), "requires new detail lines")
}

func (suite *JournalServiceTestSuite) TestUpdateEntry_BadRevision() {
	ctx := context.Background()
	suite.storedEntry(false)

	id := int64(7)
	req := dto.EntryRequest{
		EntryID:     &id,
		Description: ptrStr("Stale update"),
		Revision:    "stale-token",
	}

	_, err := suite.service.UpdateEntry(ctx, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrBadRevision)
}

func (suite *JournalServiceTestSuite) TestDeleteEntry_ReversesBalances() {
	ctx := context.Background()
	_, token := suite.storedEntry(false)

	suite.mockBalanceRepo.On("ApplyBalanceDelta", mock.Anything, suite.cashAccount.AccountID,
		suite.mainDomain.DomainID, "USD", decimalEq("100"), mock.Anything).Return(nil).Once()
	suite.mockBalanceRepo.On("ApplyBalanceDelta", mock.Anything, suite.revenueAccount.AccountID,
		suite.mainDomain.DomainID, "USD", decimalEq("-100"), mock.Anything).Return(nil).Once()
	suite.mockJournalRepo.On("DeleteEntry", mock.Anything, int64(7)).Return(nil).Once()

	id := int64(7)
	err := suite.service.DeleteEntry(ctx, dto.EntryRequest{EntryID: &id, Revision: token})

	suite.Require().NoError(err)
	suite.mockBalanceRepo.AssertExpectations(suite.T())
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestDeleteEntry_LockedRejected() {
	ctx := context.Background()
	_, token := suite.storedEntry(true)

	id := int64(7)
	err := suite.service.DeleteEntry(ctx, dto.EntryRequest{EntryID: &id, Revision: token})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrRuleViolation)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "DeleteEntry", mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestQueryEntries_ReferenceCodeScopesToDefaultDomain() {
	ctx := context.Background()
	ref := domain.JournalReference{
		ReferenceID: uuid.NewString(),
		DomainID:    suite.mainDomain.DomainID,
		Code:        "INV-7",
	}
	suite.mockDomainRepo.On("FindDomainByCode", mock.Anything, "MAIN").Return(&suite.mainDomain, nil)
	suite.mockReferenceRepo.On("FindReferenceByCode", mock.Anything, suite.mainDomain.DomainID, "INV-7").
		Return(&ref, nil).Once()
	suite.mockJournalRepo.On("QueryEntries", mock.Anything, mock.MatchedBy(func(f portsrepo.EntryFilter) bool {
		return f.ReferenceID != nil && *f.ReferenceID == ref.ReferenceID
	})).Return([]domain.JournalEntry{}, nil, nil).Once()

	res, err := suite.service.QueryEntries(ctx, dto.EntryQueryRequest{
		Reference: &dto.EntityRef{Code: "INV-7"},
	}, dto.Options{})

	suite.Require().NoError(err)
	suite.Empty(res.Entries)
	suite.mockReferenceRepo.AssertExpectations(suite.T())
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestSetReviewed_AllowedOnLockedEntry() {
	ctx := context.Background()
	_, token := suite.storedEntry(true)

	suite.mockJournalRepo.On("UpdateEntryHeader", mock.Anything, mock.AnythingOfType("domain.JournalEntry")).Return(nil).Once()

	updated, err := suite.service.SetReviewed(ctx, 7, true, token)

	suite.Require().NoError(err)
	suite.True(updated.Reviewed)
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestSetReviewed_BatchSentinelAccepted() {
	ctx := context.Background()
	suite.storedEntry(false)

	suite.mockJournalRepo.On("UpdateEntryHeader", mock.Anything, mock.AnythingOfType("domain.JournalEntry")).Return(nil).Once()

	updated, err := suite.service.SetReviewed(ctx, 7, true, revision.BatchSentinel)

	suite.Require().NoError(err)
	suite.True(updated.Reviewed)
}

func TestJournalServiceTestSuite(t *testing.T) {
	suite.Run(t, new(JournalServiceTestSuite))
}
