package services

import (
	"context"

	"github.com/openbooks/ledger_engine/internal/core/domain"
	"github.com/openbooks/ledger_engine/internal/dto"
)

// CurrencySvcFacade manages currencies, including renames that cascade to
// entries, balances and domain defaults.
type CurrencySvcFacade interface {
	AddCurrency(ctx context.Context, req dto.CurrencyRequest) (*domain.Currency, error)
	GetCurrency(ctx context.Context, code string) (*domain.Currency, error)
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)
	UpdateCurrency(ctx context.Context, req dto.CurrencyRequest) (*domain.Currency, error)
	DeleteCurrency(ctx context.Context, req dto.CurrencyRequest) error
}

// DomainSvcFacade manages the ledger's organizational partitions.
type DomainSvcFacade interface {
	AddDomain(ctx context.Context, req dto.DomainRequest) (*domain.Domain, error)
	GetDomain(ctx context.Context, req dto.DomainRequest) (*domain.Domain, error)
	// DefaultDomain resolves the ledger-wide default domain from the rules.
	DefaultDomain(ctx context.Context) (*domain.Domain, error)
	ListDomains(ctx context.Context) ([]domain.Domain, error)
	UpdateDomain(ctx context.Context, req dto.DomainRequest) (*domain.Domain, error)
	DeleteDomain(ctx context.Context, req dto.DomainRequest) error
}

// SubJournalSvcFacade manages named entry channels.
type SubJournalSvcFacade interface {
	AddSubJournal(ctx context.Context, req dto.SubJournalRequest) (*domain.SubJournal, error)
	GetSubJournal(ctx context.Context, req dto.SubJournalRequest) (*domain.SubJournal, error)
	ListSubJournals(ctx context.Context) ([]domain.SubJournal, error)
	UpdateSubJournal(ctx context.Context, req dto.SubJournalRequest) (*domain.SubJournal, error)
	DeleteSubJournal(ctx context.Context, req dto.SubJournalRequest) error
}

// ReferenceSvcFacade manages links to external entities.
type ReferenceSvcFacade interface {
	AddReference(ctx context.Context, req dto.ReferenceRequest) (*domain.JournalReference, error)
	GetReference(ctx context.Context, req dto.ReferenceRequest) (*domain.JournalReference, error)
	UpdateReference(ctx context.Context, req dto.ReferenceRequest) (*domain.JournalReference, error)
	DeleteReference(ctx context.Context, req dto.ReferenceRequest) error
}

// RulesSvcFacade is the process-wide ledger rules store. Before the root
// account exists it serves transient boot defaults; afterwards it lazily
// loads and caches the rules persisted on the root account.
type RulesSvcFacade interface {
	Rules(ctx context.Context) (domain.LedgerRules, error)
	SetRules(ctx context.Context, patch domain.LedgerRulesPatch) (domain.LedgerRules, error)
	// Reset discards cached state, forcing a reload from storage.
	Reset()
	// Salt returns the ledger revision salt ("" before bootstrap).
	Salt(ctx context.Context) string
}

// LedgerSvcFacade is the one-time bootstrap orchestrator.
type LedgerSvcFacade interface {
	// CreateLedger initializes the ledger exactly once, returning the root
	// account. Fails when any account already exists.
	CreateLedger(ctx context.Context, req dto.CreateLedgerRequest) (*domain.Account, error)
}
