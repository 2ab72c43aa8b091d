package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// querier is the subset of *pgxpool.Pool and pgx.Tx that mutating store
// methods need, so the same SQL can run either directly against the pool
// or inside a transaction.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// withTx runs fn inside a Serializable transaction, the whole attempt
// retried by withRetry on a 40001/40P01 failure. Every mutating store
// method goes through this rather than a lone pool.Exec/QueryRow, so a
// read-then-write sequence — CancelByID's idempotency check in particular
// — is atomic under concurrent callers instead of racing across two
// separate pool checkouts.
func (s *Store) withTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
	return s.withRetry(ctx, func(ctx context.Context) error {
		tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
		if err != nil {
			return mapError(err)
		}
		defer tx.Rollback(ctx)

		if err := fn(ctx, tx); err != nil {
			return err
		}
		return tx.Commit(ctx)
	})
}
