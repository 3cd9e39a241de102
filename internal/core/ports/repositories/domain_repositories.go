package repositories

import (
	"context"

	"github.com/openbooks/ledger_engine/internal/core/domain"
)

// DomainRepositoryFacade provides persistence for domains.
type DomainRepositoryFacade interface {
	SaveDomain(ctx context.Context, d domain.Domain) error
	FindDomainByID(ctx context.Context, domainID string) (*domain.Domain, error)
	FindDomainByCode(ctx context.Context, code string) (*domain.Domain, error)
	ListDomains(ctx context.Context) ([]domain.Domain, error)
	UpdateDomain(ctx context.Context, d domain.Domain) error
	DeleteDomain(ctx context.Context, domainID string) error
	CountEntriesUsingDomain(ctx context.Context, domainID string) (int64, error)
	CountBalancesUsingDomain(ctx context.Context, domainID string) (int64, error)
}

// SubJournalRepositoryFacade provides persistence for sub-journals.
type SubJournalRepositoryFacade interface {
	SaveSubJournal(ctx context.Context, s domain.SubJournal) error
	FindSubJournalByID(ctx context.Context, subJournalID string) (*domain.SubJournal, error)
	FindSubJournalByCode(ctx context.Context, code string) (*domain.SubJournal, error)
	ListSubJournals(ctx context.Context) ([]domain.SubJournal, error)
	UpdateSubJournal(ctx context.Context, s domain.SubJournal) error
	DeleteSubJournal(ctx context.Context, subJournalID string) error
	CountEntriesUsingSubJournal(ctx context.Context, subJournalID string) (int64, error)
}

// ReferenceRepositoryFacade provides persistence for journal references.
type ReferenceRepositoryFacade interface {
	SaveReference(ctx context.Context, ref domain.JournalReference) error
	FindReferenceByID(ctx context.Context, referenceID string) (*domain.JournalReference, error)
	FindReferenceByCode(ctx context.Context, domainID, code string) (*domain.JournalReference, error)
	UpdateReference(ctx context.Context, ref domain.JournalReference) error
	DeleteReference(ctx context.Context, referenceID string) error
	CountDetailsUsingReference(ctx context.Context, referenceID string) (int64, error)
}
