package pgsql

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openbooks/ledger_engine/internal/apperrors"
	portsrepo "github.com/openbooks/ledger_engine/internal/core/ports/repositories"
)

// DBTX is the querying surface shared by the pool and an open transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txCtxKey struct{}

// BaseRepository provides common functionality for all repositories.
type BaseRepository struct {
	Pool *pgxpool.Pool
}

// db returns the transaction carried in the context when present, else the
// pool. Repositories are transaction-transparent this way.
func (r *BaseRepository) db(ctx context.Context) DBTX {
	if tx, ok := ctx.Value(txCtxKey{}).(pgx.Tx); ok {
		return tx
	}
	return r.Pool
}

// PgxTxManager runs functions inside a database transaction carried in the
// context. Nested calls join the surrounding transaction.
type PgxTxManager struct {
	Pool *pgxpool.Pool
}

// NewTxManager creates the transaction manager.
func NewTxManager(pool *pgxpool.Pool) portsrepo.TxManager {
	return &PgxTxManager{Pool: pool}
}

var _ portsrepo.TxManager = (*PgxTxManager)(nil)

// WithTx executes fn within a transaction, committing when fn returns nil and
// rolling back otherwise.
func (m *PgxTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txCtxKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}
	tx, err := m.Pool.Begin(ctx)
	if err != nil {
		return apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(context.WithValue(ctx, txCtxKey{}, tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewAppError(500, "failed to commit transaction", err)
	}
	return nil
}
