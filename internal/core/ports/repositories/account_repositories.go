package repositories

import (
	"context"

	"github.com/openbooks/ledger_engine/internal/core/domain"
)

// AccountRepositoryFacade provides persistence for accounts and their names.
type AccountRepositoryFacade interface {
	SaveAccount(ctx context.Context, account domain.Account) error
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)
	FindAccountByCode(ctx context.Context, code string) (*domain.Account, error)
	FindRootAccount(ctx context.Context) (*domain.Account, error)
	FindChildren(ctx context.Context, parentID string) ([]domain.Account, error)
	CountAccounts(ctx context.Context) (int64, error)
	UpdateAccount(ctx context.Context, account domain.Account) error
	DeleteAccounts(ctx context.Context, accountIDs []string) error
	ListAccounts(ctx context.Context, codePrefix, nameLike string, parentID *string, limit int, nextToken *string) ([]domain.Account, *string, error)
}

// NameRepositoryFacade provides persistence for multilingual names shared by
// accounts, domains and sub-journals.
type NameRepositoryFacade interface {
	ReplaceNames(ctx context.Context, ownerID string, names []domain.LedgerName) error
	UpsertName(ctx context.Context, name domain.LedgerName) error
	DeleteName(ctx context.Context, ownerID, language string) error
	FindNamesByOwner(ctx context.Context, ownerID string) ([]domain.LedgerName, error)
	FindNamesByOwners(ctx context.Context, ownerIDs []string) (map[string][]domain.LedgerName, error)
	DeleteNamesByOwners(ctx context.Context, ownerIDs []string) error
}
