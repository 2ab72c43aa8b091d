// Package store is the Postgres-backed implementation of core.Store.
//
// It owns the schema (internal/store/migrations, embedded and applied
// through goose at Open time), the transition guard that enforces
// deployment lifecycle invariants as a trigger function (not application
// code — so every writer, including a stray psql session, is bound by it),
// and the blocking predicate as a single parameterized query.
//
// Store translates every constraint violation and trigger-raised exception
// into the core sentinel errors (core.ErrInvariantViolation,
// core.ErrTerminalState, core.ErrNotFound, core.ErrStoreUnavailable) so
// callers never see a raw *pgconn.PgError.
package store
