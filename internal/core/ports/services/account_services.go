package services

import (
	"context"

	"github.com/openbooks/ledger_engine/internal/core/domain"
	"github.com/openbooks/ledger_engine/internal/dto"
)

// AccountSvcFacade owns the account hierarchy: root singleton, parent-path
// traversal, circular-reference detection, category/posting consistency and
// debit/credit flag inheritance.
type AccountSvcFacade interface {
	AddAccount(ctx context.Context, req dto.AccountRequest) (*domain.Account, error)
	GetAccount(ctx context.Context, req dto.AccountRequest) (*domain.Account, error)
	UpdateAccount(ctx context.Context, req dto.AccountRequest) (*domain.Account, error)
	// DeleteAccount removes the account and its whole descendant subtree,
	// returning the removed account IDs.
	DeleteAccount(ctx context.Context, req dto.AccountRequest) ([]string, error)
	QueryAccounts(ctx context.Context, q dto.AccountQueryRequest, opts dto.Options) (*dto.ListAccountsResponse, error)
	// ParentPath walks parent pointers from start to root, collecting
	// ancestors; encountering lookingFor fails with a rule violation.
	ParentPath(ctx context.Context, start *domain.Account, lookingFor string) ([]domain.Account, error)
}
