package repositories

import "context"

// TxManager owns explicit transaction scopes. The transaction travels in the
// context; repository methods transparently use it when present. Nested calls
// join the surrounding transaction instead of opening a new one.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}
