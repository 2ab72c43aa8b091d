package core

import "github.com/neondatabase/deployq/internal/sentinel"

// Sentinel errors for the deployment queue's error kinds. Declared as
// sentinel.Error consts rather than errors.New vars so they are immutable
// and still work with errors.Is through wrapped chains.
const (
	// ErrStoreUnavailable wraps a transport-level failure talking to the
	// backing store. The returned error also wraps the underlying driver
	// error, which errors.Is and errors.As can reach (errors.Unwrap cannot,
	// since the wrapper carries both errors).
	ErrStoreUnavailable = sentinel.Error("store unavailable")

	// ErrInvariantViolation is returned when the store's transition guard
	// rejected a mutation. Never retried.
	ErrInvariantViolation = sentinel.Error("invariant violation")

	// ErrNotFound is returned when an id, (component, version) pair, or
	// location matched zero rows.
	ErrNotFound = sentinel.Error("not found")

	// ErrTerminalState is a specialization of ErrInvariantViolation,
	// carried as a distinct sentinel so callers can print a friendlier
	// message when a mutation targets an already-finished or
	// already-cancelled row.
	ErrTerminalState = sentinel.Error("deployment already in a terminal state")

	// ErrHeartbeatFailure is returned by the background heartbeat mode
	// after three consecutive failed heartbeat writes. The wait loop
	// self-cancels the target before returning this.
	ErrHeartbeatFailure = sentinel.Error("heartbeat failure")

	// ErrCancelled is returned by the wait loop when the target deployment
	// was cancelled by another party while waiting.
	ErrCancelled = sentinel.Error("deployment was cancelled")
)
