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

const referenceColumns = `reference_id, domain_id, code, extra, created_at, last_updated_at, revised_at`

type PgxReferenceRepository struct {
	BaseRepository
}

// newPgxReferenceRepository creates a new repository for journal references.
func newPgxReferenceRepository(pool *pgxpool.Pool) portsrepo.ReferenceRepositoryFacade {
	return &PgxReferenceRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ReferenceRepositoryFacade = (*PgxReferenceRepository)(nil)

func scanReference(row pgx.Row) (models.JournalReference, error) {
	var m models.JournalReference
	err := row.Scan(&m.ReferenceID, &m.DomainID, &m.Code, &m.Extra,
		&m.CreatedAt, &m.LastUpdatedAt, &m.RevisedAt)
	return m, err
}

// SaveReference inserts a new journal reference row.
func (r *PgxReferenceRepository) SaveReference(ctx context.Context, ref domain.JournalReference) error {
	m := mapping.ToModelReference(ref)
	query := `
		INSERT INTO journal_references (reference_id, domain_id, code, extra, created_at, last_updated_at, revised_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.db(ctx).Exec(ctx, query,
		m.ReferenceID, m.DomainID, m.Code, m.Extra, m.CreatedAt, m.LastUpdatedAt, m.RevisedAt)
	if err != nil {
		return fmt.Errorf("failed to save reference %s: %w", m.ReferenceID, err)
	}
	return nil
}

// FindReferenceByID retrieves a journal reference by its UUID.
func (r *PgxReferenceRepository) FindReferenceByID(ctx context.Context, referenceID string) (*domain.JournalReference, error) {
	query := `SELECT ` + referenceColumns + ` FROM journal_references WHERE reference_id = $1;`
	m, err := scanReference(r.db(ctx).QueryRow(ctx, query, referenceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("reference %s not found", referenceID))
		}
		return nil, fmt.Errorf("failed to find reference by id %s: %w", referenceID, err)
	}
	ref := mapping.ToDomainReference(m)
	return &ref, nil
}

// FindReferenceByCode retrieves a journal reference by its per-domain code.
func (r *PgxReferenceRepository) FindReferenceByCode(ctx context.Context, domainID, code string) (*domain.JournalReference, error) {
	query := `SELECT ` + referenceColumns + ` FROM journal_references WHERE domain_id = $1 AND code = $2;`
	m, err := scanReference(r.db(ctx).QueryRow(ctx, query, domainID, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("reference with code %q not found in domain", code))
		}
		return nil, fmt.Errorf("failed to find reference by code %q: %w", code, err)
	}
	ref := mapping.ToDomainReference(m)
	return &ref, nil
}

// UpdateReference rewrites the mutable columns of a journal reference row.
func (r *PgxReferenceRepository) UpdateReference(ctx context.Context, ref domain.JournalReference) error {
	m := mapping.ToModelReference(ref)
	query := `
		UPDATE journal_references
		SET code = $2, extra = $3, last_updated_at = $4, revised_at = $5
		WHERE reference_id = $1;
	`
	tag, err := r.db(ctx).Exec(ctx, query, m.ReferenceID, m.Code, m.Extra, m.LastUpdatedAt, m.RevisedAt)
	if err != nil {
		return fmt.Errorf("failed to update reference %s: %w", m.ReferenceID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("reference %s not found", m.ReferenceID))
	}
	return nil
}

// DeleteReference removes a journal reference row.
func (r *PgxReferenceRepository) DeleteReference(ctx context.Context, referenceID string) error {
	tag, err := r.db(ctx).Exec(ctx, `DELETE FROM journal_references WHERE reference_id = $1;`, referenceID)
	if err != nil {
		return fmt.Errorf("failed to delete reference %s: %w", referenceID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("reference %s not found", referenceID))
	}
	return nil
}

// CountDetailsUsingReference counts entry headers and detail lines pointing
// at a reference.
func (r *PgxReferenceRepository) CountDetailsUsingReference(ctx context.Context, referenceID string) (int64, error) {
	query := `
		SELECT (SELECT COUNT(*) FROM journal_details WHERE reference_id = $1)
			+ (SELECT COUNT(*) FROM journal_entries WHERE reference_id = $1);
	`
	var count int64
	if err := r.db(ctx).QueryRow(ctx, query, referenceID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count usages of reference %s: %w", referenceID, err)
	}
	return count, nil
}
