package deployq

import "github.com/neondatabase/deployq/internal/core"

// Sentinel errors callers can compare against with errors.Is. They are
// re-exported from internal/core so errors.Is works directly against the
// values returned by every Client method without importing an internal
// package.
const (
	// ErrStoreUnavailable wraps a transport-level failure talking to the
	// backing store.
	ErrStoreUnavailable = core.ErrStoreUnavailable

	// ErrInvariantViolation is returned when a mutation was rejected by
	// the store's lifecycle guard.
	ErrInvariantViolation = core.ErrInvariantViolation

	// ErrNotFound is returned when an id, (component, version) pair, or
	// location matched zero rows.
	ErrNotFound = core.ErrNotFound

	// ErrTerminalState is returned when a mutation targets an
	// already-finished or already-cancelled deployment.
	ErrTerminalState = core.ErrTerminalState

	// ErrHeartbeatFailure is returned by WaitUntilStarted after three
	// consecutive failed heartbeat writes. The target is self-cancelled
	// before this is returned.
	ErrHeartbeatFailure = core.ErrHeartbeatFailure

	// ErrCancelled is returned by WaitUntilStarted when the target was
	// cancelled by another party while waiting.
	ErrCancelled = core.ErrCancelled
)
