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

const entryColumns = `entry_id, entry_date, domain_id, currency_code, sub_journal_id, reference_id,
	description, description_args, language, opening, reviewed, locked, extra,
	created_at, last_updated_at, revised_at`

type PgxJournalRepository struct {
	BaseRepository
}

// newPgxJournalRepository creates a new repository for journal entries and
// their detail lines.
func newPgxJournalRepository(pool *pgxpool.Pool) portsrepo.JournalRepositoryFacade {
	return &PgxJournalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

func scanEntry(row pgx.Row) (models.JournalEntry, error) {
	var m models.JournalEntry
	err := row.Scan(
		&m.EntryID,
		&m.EntryDate,
		&m.DomainID,
		&m.CurrencyCode,
		&m.SubJournalID,
		&m.ReferenceID,
		&m.Description,
		&m.DescriptionArgs,
		&m.Language,
		&m.Opening,
		&m.Reviewed,
		&m.Locked,
		&m.Extra,
		&m.CreatedAt,
		&m.LastUpdatedAt,
		&m.RevisedAt,
	)
	return m, err
}

// SaveEntry inserts the entry header and its detail lines. The store assigns
// the numeric entry ID, written back into entry.EntryID and every detail.
func (r *PgxJournalRepository) SaveEntry(ctx context.Context, entry *domain.JournalEntry) error {
	m := mapping.ToModelEntry(*entry)
	query := `
		INSERT INTO journal_entries (entry_date, domain_id, currency_code, sub_journal_id, reference_id,
			description, description_args, language, opening, reviewed, locked, extra,
			created_at, last_updated_at, revised_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING entry_id;
	`
	err := r.db(ctx).QueryRow(ctx, query,
		m.EntryDate, m.DomainID, m.CurrencyCode, m.SubJournalID, m.ReferenceID,
		m.Description, m.DescriptionArgs, m.Language, m.Opening, m.Reviewed, m.Locked, m.Extra,
		m.CreatedAt, m.LastUpdatedAt, m.RevisedAt,
	).Scan(&entry.EntryID)
	if err != nil {
		return fmt.Errorf("failed to save entry: %w", err)
	}

	for i := range entry.Details {
		entry.Details[i].EntryID = entry.EntryID
	}
	return r.insertDetails(ctx, entry.Details)
}

func (r *PgxJournalRepository) insertDetails(ctx context.Context, details []domain.JournalDetail) error {
	query := `
		INSERT INTO journal_details (detail_id, entry_id, account_id, amount, reference_id)
		VALUES ($1, $2, $3, $4, $5);
	`
	for i := range details {
		d := mapping.ToModelDetail(details[i])
		if _, err := r.db(ctx).Exec(ctx, query, d.DetailID, d.EntryID, d.AccountID, d.Amount, d.ReferenceID); err != nil {
			return fmt.Errorf("failed to save detail for entry %d: %w", d.EntryID, err)
		}
	}
	return nil
}

// FindEntryByID retrieves an entry header.
func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, entryID int64) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE entry_id = $1;`
	m, err := scanEntry(r.db(ctx).QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("entry %d not found", entryID))
		}
		return nil, fmt.Errorf("failed to find entry %d: %w", entryID, err)
	}
	e := mapping.ToDomainEntry(m)
	return &e, nil
}

// FindDetailsByEntryID retrieves the detail lines of an entry.
func (r *PgxJournalRepository) FindDetailsByEntryID(ctx context.Context, entryID int64) ([]domain.JournalDetail, error) {
	query := `
		SELECT detail_id, entry_id, account_id, amount, reference_id
		FROM journal_details
		WHERE entry_id = $1
		ORDER BY detail_id;
	`
	rows, err := r.db(ctx).Query(ctx, query, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query details of entry %d: %w", entryID, err)
	}
	defer rows.Close()

	ms, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.JournalDetail, error) {
		var m models.JournalDetail
		err := row.Scan(&m.DetailID, &m.EntryID, &m.AccountID, &m.Amount, &m.ReferenceID)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan details of entry %d: %w", entryID, err)
	}
	return mapping.ToDomainDetailSlice(ms), nil
}

// UpdateEntryHeader rewrites the mutable header columns of an entry.
func (r *PgxJournalRepository) UpdateEntryHeader(ctx context.Context, entry domain.JournalEntry) error {
	m := mapping.ToModelEntry(entry)
	query := `
		UPDATE journal_entries
		SET entry_date = $2, domain_id = $3, currency_code = $4, sub_journal_id = $5, reference_id = $6,
			description = $7, description_args = $8, language = $9, reviewed = $10, locked = $11, extra = $12,
			last_updated_at = $13, revised_at = $14
		WHERE entry_id = $1;
	`
	tag, err := r.db(ctx).Exec(ctx, query,
		m.EntryID, m.EntryDate, m.DomainID, m.CurrencyCode, m.SubJournalID, m.ReferenceID,
		m.Description, m.DescriptionArgs, m.Language, m.Reviewed, m.Locked, m.Extra,
		m.LastUpdatedAt, m.RevisedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update entry %d: %w", m.EntryID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("entry %d not found", m.EntryID))
	}
	return nil
}

// ReplaceDetails swaps the full detail set of an entry.
func (r *PgxJournalRepository) ReplaceDetails(ctx context.Context, entryID int64, details []domain.JournalDetail) error {
	if _, err := r.db(ctx).Exec(ctx, `DELETE FROM journal_details WHERE entry_id = $1;`, entryID); err != nil {
		return fmt.Errorf("failed to clear details of entry %d: %w", entryID, err)
	}
	return r.insertDetails(ctx, details)
}

// DeleteEntry removes an entry and its detail lines.
func (r *PgxJournalRepository) DeleteEntry(ctx context.Context, entryID int64) error {
	if _, err := r.db(ctx).Exec(ctx, `DELETE FROM journal_details WHERE entry_id = $1;`, entryID); err != nil {
		return fmt.Errorf("failed to delete details of entry %d: %w", entryID, err)
	}
	tag, err := r.db(ctx).Exec(ctx, `DELETE FROM journal_entries WHERE entry_id = $1;`, entryID)
	if err != nil {
		return fmt.Errorf("failed to delete entry %d: %w", entryID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("entry %d not found", entryID))
	}
	return nil
}

// QueryEntries retrieves a filtered page of entry headers, newest first,
// using a (entry_date, entry_id) keyset cursor. Amount bounds compare the
// entry's total debit magnitude.
func (r *PgxJournalRepository) QueryEntries(ctx context.Context, filter portsrepo.EntryFilter) ([]domain.JournalEntry, *string, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE 1=1`
	args := []any{}

	if filter.FromDate != nil {
		args = append(args, *filter.FromDate)
		query += fmt.Sprintf(" AND entry_date >= $%d", len(args))
	}
	if filter.ToDate != nil {
		args = append(args, *filter.ToDate)
		query += fmt.Sprintf(" AND entry_date <= $%d", len(args))
	}
	if filter.DescriptionLike != "" {
		args = append(args, "%"+filter.DescriptionLike+"%")
		query += fmt.Sprintf(" AND description ILIKE $%d", len(args))
	}
	if filter.DomainID != nil {
		args = append(args, *filter.DomainID)
		query += fmt.Sprintf(" AND domain_id = $%d", len(args))
	}
	if filter.ReferenceID != nil {
		args = append(args, *filter.ReferenceID)
		query += fmt.Sprintf(" AND (reference_id = $%d OR EXISTS (SELECT 1 FROM journal_details d WHERE d.entry_id = journal_entries.entry_id AND d.reference_id = $%d))", len(args), len(args))
	}
	if filter.Reviewed != nil {
		args = append(args, *filter.Reviewed)
		query += fmt.Sprintf(" AND reviewed = $%d", len(args))
	}
	if filter.MinAmount != nil {
		args = append(args, *filter.MinAmount)
		query += fmt.Sprintf(" AND (SELECT COALESCE(SUM(-d.amount), 0) FROM journal_details d WHERE d.entry_id = journal_entries.entry_id AND d.amount < 0) >= $%d", len(args))
	}
	if filter.MaxAmount != nil {
		args = append(args, *filter.MaxAmount)
		query += fmt.Sprintf(" AND (SELECT COALESCE(SUM(-d.amount), 0) FROM journal_details d WHERE d.entry_id = journal_entries.entry_id AND d.amount < 0) <= $%d", len(args))
	}
	if filter.NextToken != nil && *filter.NextToken != "" {
		lastDate, lastID, err := pagination.DecodeToken(*filter.NextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		args = append(args, lastDate, lastID)
		query += fmt.Sprintf(" AND (entry_date, entry_id) < ($%d, $%d)", len(args)-1, len(args))
	}
	args = append(args, filter.Limit+1)
	query += fmt.Sprintf(" ORDER BY entry_date DESC, entry_id DESC LIMIT $%d;", len(args))

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	ms, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.JournalEntry, error) {
		return scanEntry(row)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to scan entries: %w", err)
	}

	var token *string
	if len(ms) > filter.Limit {
		ms = ms[:filter.Limit]
		last := ms[len(ms)-1]
		t := pagination.EncodeToken(last.EntryDate, last.EntryID)
		token = &t
	}
	return mapping.ToDomainEntrySlice(ms), token, nil
}
