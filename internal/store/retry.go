package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/neondatabase/deployq/internal/core"
)

// Postgres error codes this package treats specially. serializationFailure
// and deadlockDetected are transient under the concurrent load the wait
// loop and the trigger's row locking create; everything else is either a
// guard violation (mapped to a sentinel below) or unexpected.
const (
	pgCodeSerializationFailure = "40001"
	pgCodeDeadlockDetected     = "40P01"
	pgCodeUniqueViolation      = "23505"
)

// withRetry re-runs op up to s.retryAttempts times with doubling backoff
// when it fails with a transient serialization or deadlock error, the same
// busy-writer retry shape adapted to Postgres's equivalent transient codes.
func (s *Store) withRetry(ctx context.Context, op func(context.Context) error) error {
	wait := s.retryBaseWait
	var lastErr error
	for attempt := 0; attempt < s.retryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			wait *= 2
		}
		lastErr = op(ctx)
		if lastErr == nil || !isRetryable(lastErr) {
			return lastErr
		}
	}
	return lastErr
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgCodeSerializationFailure || pgErr.Code == pgCodeDeadlockDetected
}

// mapError translates a raw pgx/pgconn error into the core sentinel errors.
// Anything that doesn't match a known shape is wrapped under
// core.ErrStoreUnavailable so callers never see a *pgconn.PgError directly.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgCodeUniqueViolation:
			return core.ErrInvariantViolation
		case pgErr.Code == "P0001" && pgErr.Message == terminalStateMessage:
			return core.ErrTerminalState
		case pgErr.Code == "P0001":
			// Every other raise_exception from the transition-guard trigger
			// is a generic invariant violation.
			return core.ErrInvariantViolation
		}
	}

	return joinUnavailable(err)
}

func joinUnavailable(err error) error {
	return &storeError{cause: err}
}

type storeError struct {
	cause error
}

func (e *storeError) Error() string { return core.ErrStoreUnavailable.Error() + ": " + e.cause.Error() }
func (e *storeError) Unwrap() []error {
	return []error{core.ErrStoreUnavailable, e.cause}
}

// terminalStateMessage is the exact text the transition-guard trigger raises
// for a mutation attempted against an already-finished or already-cancelled
// row (see migrations/0001_init.sql). Kept as a constant here so the two
// sides of the contract — the trigger and this mapping — can't drift
// silently.
const terminalStateMessage = "deployment already in a terminal state"
