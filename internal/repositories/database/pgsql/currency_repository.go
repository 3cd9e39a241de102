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
)

const currencyColumns = `code, decimals, created_at, last_updated_at, revised_at`

type PgxCurrencyRepository struct {
	BaseRepository
}

// newPgxCurrencyRepository creates a new repository for currency data.
func newPgxCurrencyRepository(pool *pgxpool.Pool) portsrepo.CurrencyRepositoryFacade {
	return &PgxCurrencyRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CurrencyRepositoryFacade = (*PgxCurrencyRepository)(nil)

func scanCurrency(row pgx.Row) (models.Currency, error) {
	var m models.Currency
	err := row.Scan(&m.Code, &m.Decimals, &m.CreatedAt, &m.LastUpdatedAt, &m.RevisedAt)
	return m, err
}

// SaveCurrency inserts a new currency row.
func (r *PgxCurrencyRepository) SaveCurrency(ctx context.Context, currency domain.Currency) error {
	m := mapping.ToModelCurrency(currency)
	query := `
		INSERT INTO currencies (code, decimals, created_at, last_updated_at, revised_at)
		VALUES ($1, $2, $3, $4, $5);
	`
	_, err := r.db(ctx).Exec(ctx, query, m.Code, m.Decimals, m.CreatedAt, m.LastUpdatedAt, m.RevisedAt)
	if err != nil {
		return fmt.Errorf("failed to save currency %s: %w", m.Code, err)
	}
	return nil
}

// FindCurrencyByCode retrieves a currency by its code.
func (r *PgxCurrencyRepository) FindCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error) {
	query := `SELECT ` + currencyColumns + ` FROM currencies WHERE code = $1;`
	m, err := scanCurrency(r.db(ctx).QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("currency %q not found", code))
		}
		return nil, fmt.Errorf("failed to find currency by code %s: %w", code, err)
	}
	c := mapping.ToDomainCurrency(m)
	return &c, nil
}

// ListCurrencies retrieves all currencies.
func (r *PgxCurrencyRepository) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	query := `SELECT ` + currencyColumns + ` FROM currencies ORDER BY code;`
	rows, err := r.db(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query currencies: %w", err)
	}
	defer rows.Close()

	ms, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Currency, error) {
		return scanCurrency(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan currencies: %w", err)
	}
	return mapping.ToDomainCurrencySlice(ms), nil
}

// UpdateCurrency rewrites the mutable columns of a currency row.
func (r *PgxCurrencyRepository) UpdateCurrency(ctx context.Context, currency domain.Currency) error {
	m := mapping.ToModelCurrency(currency)
	query := `
		UPDATE currencies
		SET decimals = $2, last_updated_at = $3, revised_at = $4
		WHERE code = $1;
	`
	tag, err := r.db(ctx).Exec(ctx, query, m.Code, m.Decimals, m.LastUpdatedAt, m.RevisedAt)
	if err != nil {
		return fmt.Errorf("failed to update currency %s: %w", m.Code, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("currency %q not found", m.Code))
	}
	return nil
}

// DeleteCurrency removes a currency row.
func (r *PgxCurrencyRepository) DeleteCurrency(ctx context.Context, code string) error {
	tag, err := r.db(ctx).Exec(ctx, `DELETE FROM currencies WHERE code = $1;`, code)
	if err != nil {
		return fmt.Errorf("failed to delete currency %s: %w", code, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("currency %q not found", code))
	}
	return nil
}

// RenameCurrency changes a currency code. The referencing columns on
// journal_entries, balances and domains are declared ON UPDATE CASCADE, so
// the rename propagates in the same statement.
func (r *PgxCurrencyRepository) RenameCurrency(ctx context.Context, fromCode, toCode string) error {
	tag, err := r.db(ctx).Exec(ctx, `UPDATE currencies SET code = $2 WHERE code = $1;`, fromCode, toCode)
	if err != nil {
		return fmt.Errorf("failed to rename currency %s to %s: %w", fromCode, toCode, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("currency %q not found", fromCode))
	}
	return nil
}

// CountEntriesUsingCurrency counts journal entries denominated in a currency.
func (r *PgxCurrencyRepository) CountEntriesUsingCurrency(ctx context.Context, code string) (int64, error) {
	var count int64
	err := r.db(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM journal_entries WHERE currency_code = $1;`, code).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count entries using currency %s: %w", code, err)
	}
	return count, nil
}
