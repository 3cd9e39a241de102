package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openbooks/ledger_engine/internal/core/domain"
	portsrepo "github.com/openbooks/ledger_engine/internal/core/ports/repositories"
	"github.com/openbooks/ledger_engine/internal/models"
	"github.com/openbooks/ledger_engine/internal/utils/mapping"
)

type PgxNameRepository struct {
	BaseRepository
}

// newPgxNameRepository creates a new repository for the multilingual names
// shared by accounts, domains and sub-journals.
func newPgxNameRepository(pool *pgxpool.Pool) portsrepo.NameRepositoryFacade {
	return &PgxNameRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.NameRepositoryFacade = (*PgxNameRepository)(nil)

// ReplaceNames swaps the full name set of one owner.
func (r *PgxNameRepository) ReplaceNames(ctx context.Context, ownerID string, names []domain.LedgerName) error {
	if _, err := r.db(ctx).Exec(ctx, `DELETE FROM names WHERE owner_id = $1;`, ownerID); err != nil {
		return fmt.Errorf("failed to clear names of %s: %w", ownerID, err)
	}
	for _, n := range names {
		if err := r.UpsertName(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

// UpsertName inserts or overwrites one (owner, language) name.
func (r *PgxNameRepository) UpsertName(ctx context.Context, name domain.LedgerName) error {
	m := mapping.ToModelName(name)
	query := `
		INSERT INTO names (owner_id, language, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (owner_id, language) DO UPDATE SET name = EXCLUDED.name;
	`
	if _, err := r.db(ctx).Exec(ctx, query, m.OwnerID, m.Language, m.Name); err != nil {
		return fmt.Errorf("failed to upsert name for %s/%s: %w", m.OwnerID, m.Language, err)
	}
	return nil
}

// DeleteName removes one (owner, language) name.
func (r *PgxNameRepository) DeleteName(ctx context.Context, ownerID, language string) error {
	if _, err := r.db(ctx).Exec(ctx, `DELETE FROM names WHERE owner_id = $1 AND language = $2;`, ownerID, language); err != nil {
		return fmt.Errorf("failed to delete name for %s/%s: %w", ownerID, language, err)
	}
	return nil
}

// FindNamesByOwner retrieves every name of one owner.
func (r *PgxNameRepository) FindNamesByOwner(ctx context.Context, ownerID string) ([]domain.LedgerName, error) {
	query := `SELECT owner_id, language, name FROM names WHERE owner_id = $1 ORDER BY language;`
	rows, err := r.db(ctx).Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query names of %s: %w", ownerID, err)
	}
	defer rows.Close()

	ms, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.LedgerName, error) {
		var m models.LedgerName
		err := row.Scan(&m.OwnerID, &m.Language, &m.Name)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan names of %s: %w", ownerID, err)
	}
	return mapping.ToDomainNameSlice(ms), nil
}

// FindNamesByOwners retrieves the names of many owners, grouped by owner.
func (r *PgxNameRepository) FindNamesByOwners(ctx context.Context, ownerIDs []string) (map[string][]domain.LedgerName, error) {
	out := make(map[string][]domain.LedgerName, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return out, nil
	}
	query := `SELECT owner_id, language, name FROM names WHERE owner_id = ANY($1) ORDER BY owner_id, language;`
	rows, err := r.db(ctx).Query(ctx, query, ownerIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query names: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m models.LedgerName
		if err := rows.Scan(&m.OwnerID, &m.Language, &m.Name); err != nil {
			return nil, fmt.Errorf("failed to scan name: %w", err)
		}
		out[m.OwnerID] = append(out[m.OwnerID], mapping.ToDomainName(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read names: %w", err)
	}
	return out, nil
}

// DeleteNamesByOwners removes every name of the given owners.
func (r *PgxNameRepository) DeleteNamesByOwners(ctx context.Context, ownerIDs []string) error {
	if len(ownerIDs) == 0 {
		return nil
	}
	if _, err := r.db(ctx).Exec(ctx, `DELETE FROM names WHERE owner_id = ANY($1);`, ownerIDs); err != nil {
		return fmt.Errorf("failed to delete names: %w", err)
	}
	return nil
}
