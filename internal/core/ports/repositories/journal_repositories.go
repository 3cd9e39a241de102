package repositories

import (
	"context"
	"time"

	"github.com/openbooks/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// EntryFilter selects journal entries for a query. Amount bounds compare the
// entry's total debit magnitude at the currency scale.
type EntryFilter struct {
	FromDate        *time.Time
	ToDate          *time.Time
	MinAmount       *decimal.Decimal
	MaxAmount       *decimal.Decimal
	DescriptionLike string
	DomainID        *string
	ReferenceID     *string
	Reviewed        *bool
	Limit           int
	NextToken       *string
}

// JournalRepositoryFacade provides persistence for entries and detail lines.
type JournalRepositoryFacade interface {
	// SaveEntry inserts the header and detail lines. The store assigns the
	// numeric entry ID, written back into entry.EntryID.
	SaveEntry(ctx context.Context, entry *domain.JournalEntry) error
	FindEntryByID(ctx context.Context, entryID int64) (*domain.JournalEntry, error)
	FindDetailsByEntryID(ctx context.Context, entryID int64) ([]domain.JournalDetail, error)
	UpdateEntryHeader(ctx context.Context, entry domain.JournalEntry) error
	ReplaceDetails(ctx context.Context, entryID int64, details []domain.JournalDetail) error
	DeleteEntry(ctx context.Context, entryID int64) error
	QueryEntries(ctx context.Context, filter EntryFilter) ([]domain.JournalEntry, *string, error)
}

// BalanceRepositoryFacade provides persistence for running balances.
type BalanceRepositoryFacade interface {
	// ApplyBalanceDelta adds delta to the (account, domain, currency) row,
	// creating it at the delta value when absent.
	ApplyBalanceDelta(ctx context.Context, accountID, domainID, currencyCode string, delta decimal.Decimal, now time.Time) error
	FindBalance(ctx context.Context, accountID, domainID, currencyCode string) (*domain.LedgerBalance, error)
	ListBalances(ctx context.Context, accountID, domainID, currencyCode *string) ([]domain.LedgerBalance, error)
	CountBalancesForAccounts(ctx context.Context, accountIDs []string) (int64, error)
	DeleteBalancesForAccounts(ctx context.Context, accountIDs []string) error
}
