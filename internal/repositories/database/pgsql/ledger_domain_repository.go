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

const domainColumns = `domain_id, code, default_currency_code, use_sub_journals, created_at, last_updated_at, revised_at`

type PgxDomainRepository struct {
	BaseRepository
}

// newPgxDomainRepository creates a new repository for domain data.
func newPgxDomainRepository(pool *pgxpool.Pool) portsrepo.DomainRepositoryFacade {
	return &PgxDomainRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.DomainRepositoryFacade = (*PgxDomainRepository)(nil)

func scanDomain(row pgx.Row) (models.Domain, error) {
	var m models.Domain
	err := row.Scan(&m.DomainID, &m.Code, &m.DefaultCurrencyCode, &m.UseSubJournals,
		&m.CreatedAt, &m.LastUpdatedAt, &m.RevisedAt)
	return m, err
}

// SaveDomain inserts a new domain row.
func (r *PgxDomainRepository) SaveDomain(ctx context.Context, d domain.Domain) error {
	m := mapping.ToModelDomain(d)
	query := `
		INSERT INTO domains (domain_id, code, default_currency_code, use_sub_journals, created_at, last_updated_at, revised_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.db(ctx).Exec(ctx, query,
		m.DomainID, m.Code, m.DefaultCurrencyCode, m.UseSubJournals, m.CreatedAt, m.LastUpdatedAt, m.RevisedAt)
	if err != nil {
		return fmt.Errorf("failed to save domain %s: %w", m.DomainID, err)
	}
	return nil
}

// FindDomainByID retrieves a domain by its UUID.
func (r *PgxDomainRepository) FindDomainByID(ctx context.Context, domainID string) (*domain.Domain, error) {
	query := `SELECT ` + domainColumns + ` FROM domains WHERE domain_id = $1;`
	m, err := scanDomain(r.db(ctx).QueryRow(ctx, query, domainID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("domain %s not found", domainID))
		}
		return nil, fmt.Errorf("failed to find domain by id %s: %w", domainID, err)
	}
	d := mapping.ToDomainDomain(m)
	return &d, nil
}

// FindDomainByCode retrieves a domain by its unique code.
func (r *PgxDomainRepository) FindDomainByCode(ctx context.Context, code string) (*domain.Domain, error) {
	query := `SELECT ` + domainColumns + ` FROM domains WHERE code = $1;`
	m, err := scanDomain(r.db(ctx).QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("domain with code %q not found", code))
		}
		return nil, fmt.Errorf("failed to find domain by code %q: %w", code, err)
	}
	d := mapping.ToDomainDomain(m)
	return &d, nil
}

// ListDomains retrieves all domains.
func (r *PgxDomainRepository) ListDomains(ctx context.Context) ([]domain.Domain, error) {
	query := `SELECT ` + domainColumns + ` FROM domains ORDER BY code;`
	rows, err := r.db(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query domains: %w", err)
	}
	defer rows.Close()

	ms, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Domain, error) {
		return scanDomain(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan domains: %w", err)
	}
	return mapping.ToDomainDomainSlice(ms), nil
}

// UpdateDomain rewrites the mutable columns of a domain row.
func (r *PgxDomainRepository) UpdateDomain(ctx context.Context, d domain.Domain) error {
	m := mapping.ToModelDomain(d)
	query := `
		UPDATE domains
		SET code = $2, default_currency_code = $3, use_sub_journals = $4, last_updated_at = $5, revised_at = $6
		WHERE domain_id = $1;
	`
	tag, err := r.db(ctx).Exec(ctx, query,
		m.DomainID, m.Code, m.DefaultCurrencyCode, m.UseSubJournals, m.LastUpdatedAt, m.RevisedAt)
	if err != nil {
		return fmt.Errorf("failed to update domain %s: %w", m.DomainID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("domain %s not found", m.DomainID))
	}
	return nil
}

// DeleteDomain removes a domain row.
func (r *PgxDomainRepository) DeleteDomain(ctx context.Context, domainID string) error {
	tag, err := r.db(ctx).Exec(ctx, `DELETE FROM domains WHERE domain_id = $1;`, domainID)
	if err != nil {
		return fmt.Errorf("failed to delete domain %s: %w", domainID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("domain %s not found", domainID))
	}
	return nil
}

// CountEntriesUsingDomain counts journal entries posted in a domain.
func (r *PgxDomainRepository) CountEntriesUsingDomain(ctx context.Context, domainID string) (int64, error) {
	var count int64
	err := r.db(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM journal_entries WHERE domain_id = $1;`, domainID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count entries using domain %s: %w", domainID, err)
	}
	return count, nil
}

// CountBalancesUsingDomain counts balance rows recorded in a domain.
func (r *PgxDomainRepository) CountBalancesUsingDomain(ctx context.Context, domainID string) (int64, error) {
	var count int64
	err := r.db(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM balances WHERE domain_id = $1;`, domainID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count balances using domain %s: %w", domainID, err)
	}
	return count, nil
}
