package services

import (
	"context"

	"github.com/openbooks/ledger_engine/internal/core/domain"
	"github.com/openbooks/ledger_engine/internal/dto"
)

// JournalSvcFacade is the journal entry posting engine: balanced posting,
// full-reversal delete, reverse-then-reapply update and filtered queries.
type JournalSvcFacade interface {
	AddEntry(ctx context.Context, req dto.EntryRequest) (*domain.JournalEntry, error)
	GetEntry(ctx context.Context, entryID int64) (*domain.JournalEntry, error)
	UpdateEntry(ctx context.Context, req dto.EntryRequest) (*domain.JournalEntry, error)
	DeleteEntry(ctx context.Context, req dto.EntryRequest) error
	QueryEntries(ctx context.Context, q dto.EntryQueryRequest, opts dto.Options) (*dto.ListEntriesResponse, error)
	// SetReviewed toggles the reviewed flag, revision-checked.
	SetReviewed(ctx context.Context, entryID int64, reviewed bool, revisionToken string) (*domain.JournalEntry, error)
	QueryBalances(ctx context.Context, q dto.BalanceQueryRequest, opts dto.Options) ([]domain.LedgerBalance, error)
}
