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

const subJournalColumns = `sub_journal_id, code, created_at, last_updated_at, revised_at`

type PgxSubJournalRepository struct {
	BaseRepository
}

// newPgxSubJournalRepository creates a new repository for sub-journal data.
func newPgxSubJournalRepository(pool *pgxpool.Pool) portsrepo.SubJournalRepositoryFacade {
	return &PgxSubJournalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.SubJournalRepositoryFacade = (*PgxSubJournalRepository)(nil)

func scanSubJournal(row pgx.Row) (models.SubJournal, error) {
	var m models.SubJournal
	err := row.Scan(&m.SubJournalID, &m.Code, &m.CreatedAt, &m.LastUpdatedAt, &m.RevisedAt)
	return m, err
}

// SaveSubJournal inserts a new sub-journal row.
func (r *PgxSubJournalRepository) SaveSubJournal(ctx context.Context, s domain.SubJournal) error {
	m := mapping.ToModelSubJournal(s)
	query := `
		INSERT INTO sub_journals (sub_journal_id, code, created_at, last_updated_at, revised_at)
		VALUES ($1, $2, $3, $4, $5);
	`
	_, err := r.db(ctx).Exec(ctx, query, m.SubJournalID, m.Code, m.CreatedAt, m.LastUpdatedAt, m.RevisedAt)
	if err != nil {
		return fmt.Errorf("failed to save sub-journal %s: %w", m.SubJournalID, err)
	}
	return nil
}

// FindSubJournalByID retrieves a sub-journal by its UUID.
func (r *PgxSubJournalRepository) FindSubJournalByID(ctx context.Context, subJournalID string) (*domain.SubJournal, error) {
	query := `SELECT ` + subJournalColumns + ` FROM sub_journals WHERE sub_journal_id = $1;`
	m, err := scanSubJournal(r.db(ctx).QueryRow(ctx, query, subJournalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("sub-journal %s not found", subJournalID))
		}
		return nil, fmt.Errorf("failed to find sub-journal by id %s: %w", subJournalID, err)
	}
	s := mapping.ToDomainSubJournal(m)
	return &s, nil
}

// FindSubJournalByCode retrieves a sub-journal by its unique code.
func (r *PgxSubJournalRepository) FindSubJournalByCode(ctx context.Context, code string) (*domain.SubJournal, error) {
	query := `SELECT ` + subJournalColumns + ` FROM sub_journals WHERE code = $1;`
	m, err := scanSubJournal(r.db(ctx).QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("sub-journal with code %q not found", code))
		}
		return nil, fmt.Errorf("failed to find sub-journal by code %q: %w", code, err)
	}
	s := mapping.ToDomainSubJournal(m)
	return &s, nil
}

// ListSubJournals retrieves all sub-journals.
func (r *PgxSubJournalRepository) ListSubJournals(ctx context.Context) ([]domain.SubJournal, error) {
	query := `SELECT ` + subJournalColumns + ` FROM sub_journals ORDER BY code;`
	rows, err := r.db(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sub-journals: %w", err)
	}
	defer rows.Close()

	ms, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.SubJournal, error) {
		return scanSubJournal(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan sub-journals: %w", err)
	}
	return mapping.ToDomainSubJournalSlice(ms), nil
}

// UpdateSubJournal rewrites the mutable columns of a sub-journal row.
func (r *PgxSubJournalRepository) UpdateSubJournal(ctx context.Context, s domain.SubJournal) error {
	m := mapping.ToModelSubJournal(s)
	query := `
		UPDATE sub_journals
		SET code = $2, last_updated_at = $3, revised_at = $4
		WHERE sub_journal_id = $1;
	`
	tag, err := r.db(ctx).Exec(ctx, query, m.SubJournalID, m.Code, m.LastUpdatedAt, m.RevisedAt)
	if err != nil {
		return fmt.Errorf("failed to update sub-journal %s: %w", m.SubJournalID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("sub-journal %s not found", m.SubJournalID))
	}
	return nil
}

// DeleteSubJournal removes a sub-journal row.
func (r *PgxSubJournalRepository) DeleteSubJournal(ctx context.Context, subJournalID string) error {
	tag, err := r.db(ctx).Exec(ctx, `DELETE FROM sub_journals WHERE sub_journal_id = $1;`, subJournalID)
	if err != nil {
		return fmt.Errorf("failed to delete sub-journal %s: %w", subJournalID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("sub-journal %s not found", subJournalID))
	}
	return nil
}

// CountEntriesUsingSubJournal counts journal entries tagged with a sub-journal.
func (r *PgxSubJournalRepository) CountEntriesUsingSubJournal(ctx context.Context, subJournalID string) (int64, error) {
	var count int64
	err := r.db(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM journal_entries WHERE sub_journal_id = $1;`, subJournalID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count entries using sub-journal %s: %w", subJournalID, err)
	}
	return count, nil
}
