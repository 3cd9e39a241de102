package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/openbooks/ledger_engine/internal/apperrors"
	"github.com/openbooks/ledger_engine/internal/core/domain"
	portsrepo "github.com/openbooks/ledger_engine/internal/core/ports/repositories"
	"github.com/openbooks/ledger_engine/internal/models"
	"github.com/openbooks/ledger_engine/internal/utils/mapping"
)

const balanceColumns = `balance_id, account_id, domain_id, currency_code, amount, created_at, last_updated_at, revised_at`

type PgxBalanceRepository struct {
	BaseRepository
}

// newPgxBalanceRepository creates a new repository for running balances.
func newPgxBalanceRepository(pool *pgxpool.Pool) portsrepo.BalanceRepositoryFacade {
	return &PgxBalanceRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.BalanceRepositoryFacade = (*PgxBalanceRepository)(nil)

func scanBalance(row pgx.Row) (models.LedgerBalance, error) {
	var m models.LedgerBalance
	err := row.Scan(&m.BalanceID, &m.AccountID, &m.DomainID, &m.CurrencyCode, &m.Amount,
		&m.CreatedAt, &m.LastUpdatedAt, &m.RevisedAt)
	return m, err
}

// ApplyBalanceDelta adds delta to the (account, domain, currency) row,
// creating it at the delta value when absent.
func (r *PgxBalanceRepository) ApplyBalanceDelta(ctx context.Context, accountID, domainID, currencyCode string, delta decimal.Decimal, now time.Time) error {
	query := `
		INSERT INTO balances (balance_id, account_id, domain_id, currency_code, amount, created_at, last_updated_at, revised_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6, $6)
		ON CONFLICT (account_id, domain_id, currency_code) DO UPDATE SET
			amount = balances.amount + EXCLUDED.amount,
			last_updated_at = EXCLUDED.last_updated_at,
			revised_at = EXCLUDED.revised_at;
	`
	_, err := r.db(ctx).Exec(ctx, query, uuid.NewString(), accountID, domainID, currencyCode, delta, now)
	if err != nil {
		return fmt.Errorf("failed to apply balance delta for account %s: %w", accountID, err)
	}
	return nil
}

// FindBalance retrieves the (account, domain, currency) balance row.
func (r *PgxBalanceRepository) FindBalance(ctx context.Context, accountID, domainID, currencyCode string) (*domain.LedgerBalance, error) {
	query := `SELECT ` + balanceColumns + ` FROM balances WHERE account_id = $1 AND domain_id = $2 AND currency_code = $3;`
	m, err := scanBalance(r.db(ctx).QueryRow(ctx, query, accountID, domainID, currencyCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("balance for account %s not found", accountID))
		}
		return nil, fmt.Errorf("failed to find balance for account %s: %w", accountID, err)
	}
	b := mapping.ToDomainBalance(m)
	return &b, nil
}

// ListBalances retrieves balance rows, optionally filtered by account,
// domain and/or currency.
func (r *PgxBalanceRepository) ListBalances(ctx context.Context, accountID, domainID, currencyCode *string) ([]domain.LedgerBalance, error) {
	query := `SELECT ` + balanceColumns + ` FROM balances WHERE 1=1`
	args := []any{}
	if accountID != nil {
		args = append(args, *accountID)
		query += fmt.Sprintf(" AND account_id = $%d", len(args))
	}
	if domainID != nil {
		args = append(args, *domainID)
		query += fmt.Sprintf(" AND domain_id = $%d", len(args))
	}
	if currencyCode != nil {
		args = append(args, *currencyCode)
		query += fmt.Sprintf(" AND currency_code = $%d", len(args))
	}
	query += " ORDER BY account_id, domain_id, currency_code;"

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query balances: %w", err)
	}
	defer rows.Close()

	ms, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.LedgerBalance, error) {
		return scanBalance(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan balances: %w", err)
	}
	return mapping.ToDomainBalanceSlice(ms), nil
}

// CountBalancesForAccounts counts balance rows across the given accounts.
func (r *PgxBalanceRepository) CountBalancesForAccounts(ctx context.Context, accountIDs []string) (int64, error) {
	if len(accountIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM balances WHERE account_id = ANY($1);`, accountIDs).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count balances: %w", err)
	}
	return count, nil
}

// DeleteBalancesForAccounts removes every balance row of the given accounts.
func (r *PgxBalanceRepository) DeleteBalancesForAccounts(ctx context.Context, accountIDs []string) error {
	if len(accountIDs) == 0 {
		return nil
	}
	if _, err := r.db(ctx).Exec(ctx, `DELETE FROM balances WHERE account_id = ANY($1);`, accountIDs); err != nil {
		return fmt.Errorf("failed to delete balances: %w", err)
	}
	return nil
}
