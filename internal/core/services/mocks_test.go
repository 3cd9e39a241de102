package services_test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/openbooks/ledger_engine/internal/core/domain"
	portsrepo "github.com/openbooks/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/openbooks/ledger_engine/internal/core/ports/services"
)

// --- Mock AccountRepository ---

type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindRootAccount(ctx context.Context) (*domain.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindChildren(ctx context.Context, parentID string) ([]domain.Account, error) {
	args := m.Called(ctx, parentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) CountAccounts(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) DeleteAccounts(ctx context.Context, accountIDs []string) error {
	args := m.Called(ctx, accountIDs)
	return args.Error(0)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, codePrefix, nameLike string, parentID *string, limit int, nextToken *string) ([]domain.Account, *string, error) {
	args := m.Called(ctx, codePrefix, nameLike, parentID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var token *string
	if args.Get(1) != nil {
		t := args.Get(1).(string)
		token = &t
	}
	return args.Get(0).([]domain.Account), token, args.Error(2)
}

// --- Mock NameRepository ---

type MockNameRepository struct {
	mock.Mock
}

var _ portsrepo.NameRepositoryFacade = (*MockNameRepository)(nil)

func (m *MockNameRepository) ReplaceNames(ctx context.Context, ownerID string, names []domain.LedgerName) error {
	args := m.Called(ctx, ownerID, names)
	return args.Error(0)
}

func (m *MockNameRepository) UpsertName(ctx context.Context, name domain.LedgerName) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockNameRepository) DeleteName(ctx context.Context, ownerID, language string) error {
	args := m.Called(ctx, ownerID, language)
	return args.Error(0)
}

func (m *MockNameRepository) FindNamesByOwner(ctx context.Context, ownerID string) ([]domain.LedgerName, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerName), args.Error(1)
}

func (m *MockNameRepository) FindNamesByOwners(ctx context.Context, ownerIDs []string) (map[string][]domain.LedgerName, error) {
	args := m.Called(ctx, ownerIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]domain.LedgerName), args.Error(1)
}

func (m *MockNameRepository) DeleteNamesByOwners(ctx context.Context, ownerIDs []string) error {
	args := m.Called(ctx, ownerIDs)
	return args.Error(0)
}

// --- Mock CurrencyRepository ---

type MockCurrencyRepository struct {
	mock.Mock
}

var _ portsrepo.CurrencyRepositoryFacade = (*MockCurrencyRepository)(nil)

func (m *MockCurrencyRepository) SaveCurrency(ctx context.Context, currency domain.Currency) error {
	args := m.Called(ctx, currency)
	return args.Error(0)
}

func (m *MockCurrencyRepository) FindCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error) {
	args := m.Called(ctx, code)
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

func (m *MockCurrencyRepository) UpdateCurrency(ctx context.Context, currency domain.Currency) error {
	args := m.Called(ctx, currency)
	return args.Error(0)
}

func (m *MockCurrencyRepository) DeleteCurrency(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockCurrencyRepository) RenameCurrency(ctx context.Context, fromCode, toCode string) error {
	args := m.Called(ctx, fromCode, toCode)
	return args.Error(0)
}

func (m *MockCurrencyRepository) CountEntriesUsingCurrency(ctx context.Context, code string) (int64, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(int64), args.Error(1)
}

// --- Mock DomainRepository ---

type MockDomainRepository struct {
	mock.Mock
}

var _ portsrepo.DomainRepositoryFacade = (*MockDomainRepository)(nil)

func (m *MockDomainRepository) SaveDomain(ctx context.Context, d domain.Domain) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDomainRepository) FindDomainByID(ctx context.Context, domainID string) (*domain.Domain, error) {
	args := m.Called(ctx, domainID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Domain), args.Error(1)
}

func (m *MockDomainRepository) FindDomainByCode(ctx context.Context, code string) (*domain.Domain, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Domain), args.Error(1)
}

func (m *MockDomainRepository) ListDomains(ctx context.Context) ([]domain.Domain, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Domain), args.Error(1)
}

func (m *MockDomainRepository) UpdateDomain(ctx context.Context, d domain.Domain) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDomainRepository) DeleteDomain(ctx context.Context, domainID string) error {
	args := m.Called(ctx, domainID)
	return args.Error(0)
}

func (m *MockDomainRepository) CountEntriesUsingDomain(ctx context.Context, domainID string) (int64, error) {
	args := m.Called(ctx, domainID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDomainRepository) CountBalancesUsingDomain(ctx context.Context, domainID string) (int64, error) {
	args := m.Called(ctx, domainID)
	return args.Get(0).(int64), args.Error(1)
}

// --- Mock SubJournalRepository ---

type MockSubJournalRepository struct {
	mock.Mock
}

var _ portsrepo.SubJournalRepositoryFacade = (*MockSubJournalRepository)(nil)

func (m *MockSubJournalRepository) SaveSubJournal(ctx context.Context, s domain.SubJournal) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSubJournalRepository) FindSubJournalByID(ctx context.Context, subJournalID string) (*domain.SubJournal, error) {
	args := m.Called(ctx, subJournalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SubJournal), args.Error(1)
}

func (m *MockSubJournalRepository) FindSubJournalByCode(ctx context.Context, code string) (*domain.SubJournal, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SubJournal), args.Error(1)
}

func (m *MockSubJournalRepository) ListSubJournals(ctx context.Context) ([]domain.SubJournal, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SubJournal), args.Error(1)
}

func (m *MockSubJournalRepository) UpdateSubJournal(ctx context.Context, s domain.SubJournal) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSubJournalRepository) DeleteSubJournal(ctx context.Context, subJournalID string) error {
	args := m.Called(ctx, subJournalID)
	return args.Error(0)
}

func (m *MockSubJournalRepository) CountEntriesUsingSubJournal(ctx context.Context, subJournalID string) (int64, error) {
	args := m.Called(ctx, subJournalID)
	return args.Get(0).(int64), args.Error(1)
}

// --- Mock ReferenceRepository ---

type MockReferenceRepository struct {
	mock.Mock
}

var _ portsrepo.ReferenceRepositoryFacade = (*MockReferenceRepository)(nil)

func (m *MockReferenceRepository) SaveReference(ctx context.Context, ref domain.JournalReference) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

func (m *MockReferenceRepository) FindReferenceByID(ctx context.Context, referenceID string) (*domain.JournalReference, error) {
	args := m.Called(ctx, referenceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalReference), args.Error(1)
}

func (m *MockReferenceRepository) FindReferenceByCode(ctx context.Context, domainID, code string) (*domain.JournalReference, error) {
	args := m.Called(ctx, domainID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalReference), args.Error(1)
}

func (m *MockReferenceRepository) UpdateReference(ctx context.Context, ref domain.JournalReference) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

func (m *MockReferenceRepository) DeleteReference(ctx context.Context, referenceID string) error {
	args := m.Called(ctx, referenceID)
	return args.Error(0)
}

func (m *MockReferenceRepository) CountDetailsUsingReference(ctx context.Context, referenceID string) (int64, error) {
	args := m.Called(ctx, referenceID)
	return args.Get(0).(int64), args.Error(1)
}

// --- Mock JournalRepository ---

type MockJournalRepository struct {
	mock.Mock
}

var _ portsrepo.JournalRepositoryFacade = (*MockJournalRepository)(nil)

func (m *MockJournalRepository) SaveEntry(ctx context.Context, entry *domain.JournalEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockJournalRepository) FindEntryByID(ctx context.Context, entryID int64) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) FindDetailsByEntryID(ctx context.Context, entryID int64) ([]domain.JournalDetail, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalDetail), args.Error(1)
}

func (m *MockJournalRepository) UpdateEntryHeader(ctx context.Context, entry domain.JournalEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockJournalRepository) ReplaceDetails(ctx context.Context, entryID int64, details []domain.JournalDetail) error {
	args := m.Called(ctx, entryID, details)
	return args.Error(0)
}

func (m *MockJournalRepository) DeleteEntry(ctx context.Context, entryID int64) error {
	args := m.Called(ctx, entryID)
	return args.Error(0)
}

func (m *MockJournalRepository) QueryEntries(ctx context.Context, filter portsrepo.EntryFilter) ([]domain.JournalEntry, *string, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var token *string
	if args.Get(1) != nil {
		t := args.Get(1).(string)
		token = &t
	}
	return args.Get(0).([]domain.JournalEntry), token, args.Error(2)
}

// --- Mock BalanceRepository ---

type MockBalanceRepository struct {
	mock.Mock
}

var _ portsrepo.BalanceRepositoryFacade = (*MockBalanceRepository)(nil)

func (m *MockBalanceRepository) ApplyBalanceDelta(ctx context.Context, accountID, domainID, currencyCode string, delta decimal.Decimal, now time.Time) error {
	args := m.Called(ctx, accountID, domainID, currencyCode, delta, now)
	return args.Error(0)
}

func (m *MockBalanceRepository) FindBalance(ctx context.Context, accountID, domainID, currencyCode string) (*domain.LedgerBalance, error) {
	args := m.Called(ctx, accountID, domainID, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerBalance), args.Error(1)
}

func (m *MockBalanceRepository) ListBalances(ctx context.Context, accountID, domainID, currencyCode *string) ([]domain.LedgerBalance, error) {
	args := m.Called(ctx, accountID, domainID, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerBalance), args.Error(1)
}

func (m *MockBalanceRepository) CountBalancesForAccounts(ctx context.Context, accountIDs []string) (int64, error) {
	args := m.Called(ctx, accountIDs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBalanceRepository) DeleteBalancesForAccounts(ctx context.Context, accountIDs []string) error {
	args := m.Called(ctx, accountIDs)
	return args.Error(0)
}

// --- Passthrough TxManager ---

// passthroughTxManager runs the callback directly; transaction mechanics are
// exercised against a real database, not here.
type passthroughTxManager struct{}

var _ portsrepo.TxManager = (*passthroughTxManager)(nil)

func (passthroughTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// recordingTxManager remembers whether the callback failed, which a real
// manager answers with a rollback.
type recordingTxManager struct {
	rolledBack bool
}

var _ portsrepo.TxManager = (*recordingTxManager)(nil)

func (m *recordingTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	err := fn(ctx)
	if err != nil {
		m.rolledBack = true
	}
	return err
}

// --- Stub rules service ---

// stubRules serves a fixed rule set without touching storage.
type stubRules struct {
	rules  domain.LedgerRules
	setErr error
	resets int
}

var _ portssvc.RulesSvcFacade = (*stubRules)(nil)

func (s *stubRules) Rules(ctx context.Context) (domain.LedgerRules, error) {
	return s.rules, nil
}

func (s *stubRules) SetRules(ctx context.Context, patch domain.LedgerRulesPatch) (domain.LedgerRules, error) {
	if s.setErr != nil {
		return domain.LedgerRules{}, s.setErr
	}
	s.rules = s.rules.Merge(patch)
	return s.rules, nil
}

func (s *stubRules) Reset() {
	s.resets++
}

func (s *stubRules) Salt(ctx context.Context) string {
	return s.rules.Salt
}
