package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openbooks/ledger_engine/internal/apperrors"
	"github.com/openbooks/ledger_engine/internal/core/domain"
	portsrepo "github.com/openbooks/ledger_engine/internal/core/ports/repositories"
	"github.com/openbooks/ledger_engine/internal/models"
	"github.com/openbooks/ledger_engine/internal/utils/mapping"
	"github.com/openbooks/ledger_engine/internal/utils/pagination"
)

const accountColumns = `account_id, code, parent_id, category, debit, credit, closed, extra, created_at, last_updated_at, revised_at`

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

func scanAccount(row pgx.Row) (models.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountID,
		&m.Code,
		&m.ParentID,
		&m.Category,
		&m.Debit,
		&m.Credit,
		&m.Closed,
		&m.Extra,
		&m.CreatedAt,
		&m.LastUpdatedAt,
		&m.RevisedAt,
	)
	return m, err
}

// SaveAccount inserts a new account row.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	query := `
		INSERT INTO accounts (account_id, code, parent_id, category, debit, credit, closed, extra, created_at, last_updated_at, revised_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.db(ctx).Exec(ctx, query,
		m.AccountID, m.Code, m.ParentID, m.Category, m.Debit, m.Credit, m.Closed, m.Extra,
		m.CreatedAt, m.LastUpdatedAt, m.RevisedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save account %s: %w", m.AccountID, err)
	}
	return nil
}

// FindAccountByID retrieves an account by its UUID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`
	m, err := scanAccount(r.db(ctx).QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("account %s not found", accountID))
		}
		return nil, fmt.Errorf("failed to find account by id %s: %w", accountID, err)
	}
	a := mapping.ToDomainAccount(m)
	return &a, nil
}

// FindAccountByCode retrieves an account by its unique code.
func (r *PgxAccountRepository) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE code = $1;`
	m, err := scanAccount(r.db(ctx).QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("account with code %q not found", code))
		}
		return nil, fmt.Errorf("failed to find account by code %q: %w", code, err)
	}
	a := mapping.ToDomainAccount(m)
	return &a, nil
}

// FindRootAccount retrieves the singleton account with no parent.
func (r *PgxAccountRepository) FindRootAccount(ctx context.Context) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE parent_id IS NULL;`
	m, err := scanAccount(r.db(ctx).QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("root account not found")
		}
		return nil, fmt.Errorf("failed to find root account: %w", err)
	}
	a := mapping.ToDomainAccount(m)
	return &a, nil
}

// FindChildren retrieves the direct children of an account.
func (r *PgxAccountRepository) FindChildren(ctx context.Context, parentID string) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE parent_id = $1 ORDER BY code;`
	rows, err := r.db(ctx).Query(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query children of %s: %w", parentID, err)
	}
	defer rows.Close()

	ms, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Account, error) {
		return scanAccount(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan children of %s: %w", parentID, err)
	}
	return mapping.ToDomainAccountSlice(ms), nil
}

// CountAccounts returns the total number of accounts, root included.
func (r *PgxAccountRepository) CountAccounts(ctx context.Context) (int64, error) {
	var count int64
	err := r.db(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM accounts;`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count accounts: %w", err)
	}
	return count, nil
}

// UpdateAccount rewrites all mutable columns of an account row.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	query := `
		UPDATE accounts
		SET code = $2, parent_id = $3, category = $4, debit = $5, credit = $6, closed = $7, extra = $8,
			last_updated_at = $9, revised_at = $10
		WHERE account_id = $1;
	`
	tag, err := r.db(ctx).Exec(ctx, query,
		m.AccountID, m.Code, m.ParentID, m.Category, m.Debit, m.Credit, m.Closed, m.Extra,
		m.LastUpdatedAt, m.RevisedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update account %s: %w", m.AccountID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("account %s not found", m.AccountID))
	}
	return nil
}

// DeleteAccounts removes the given account rows.
func (r *PgxAccountRepository) DeleteAccounts(ctx context.Context, accountIDs []string) error {
	if len(accountIDs) == 0 {
		return nil
	}
	_, err := r.db(ctx).Exec(ctx, `DELETE FROM accounts WHERE account_id = ANY($1);`, accountIDs)
	if err != nil {
		return fmt.Errorf("failed to delete accounts: %w", err)
	}
	return nil
}

// ListAccounts retrieves a filtered page of accounts ordered by code, using
// a keyset cursor so pages stay stable under concurrent inserts.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, codePrefix, nameLike string, parentID *string, limit int, nextToken *string) ([]domain.Account, *string, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE parent_id IS NOT NULL`
	args := []any{}

	if codePrefix != "" {
		args = append(args, codePrefix+"%")
		query += fmt.Sprintf(" AND code LIKE $%d", len(args))
	}
	if nameLike != "" {
		args = append(args, "%"+nameLike+"%")
		query += fmt.Sprintf(" AND EXISTS (SELECT 1 FROM names n WHERE n.owner_id = accounts.account_id AND n.name ILIKE $%d)", len(args))
	}
	if parentID != nil {
		args = append(args, *parentID)
		query += fmt.Sprintf(" AND parent_id = $%d", len(args))
	}
	if nextToken != nil && *nextToken != "" {
		lastCode, err := pagination.DecodeCodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		args = append(args, lastCode)
		query += fmt.Sprintf(" AND code > $%d", len(args))
	}
	args = append(args, limit+1)
	query += fmt.Sprintf(" ORDER BY code LIMIT $%d;", len(args))

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	ms, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Account, error) {
		return scanAccount(row)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to scan accounts: %w", err)
	}

	var token *string
	if len(ms) > limit {
		ms = ms[:limit]
		t := pagination.EncodeCodeToken(ms[len(ms)-1].Code)
		token = &t
	}
	return mapping.ToDomainAccountSlice(ms), token, nil
}
