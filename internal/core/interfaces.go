package core

import (
	"context"
	"time"
)

// Store is everything the coordinator needs from the backing relational
// store. internal/store implements it against Postgres; tests substitute a
// fake implementation.
//
// Every mutating method enforces the deployment lifecycle invariants at the
// store boundary (a trigger in the Postgres implementation) and returns
// ErrInvariantViolation / ErrTerminalState / ErrNotFound / ErrStoreUnavailable
// as appropriate — Store implementations must not leave that translation to
// callers.
type Store interface {
	// Enqueue inserts a new deployment in state queued and returns its id.
	Enqueue(ctx context.Context, loc Location, payload Payload) (int64, error)

	// MarkStarted sets start = now. Fails with ErrTerminalState if the
	// deployment is already finished or cancelled, and with
	// ErrInvariantViolation if it is otherwise not queued.
	MarkStarted(ctx context.Context, id int64) error

	// MarkFinished sets finish = now. Fails with ErrTerminalState if the
	// deployment is already finished or cancelled, and with
	// ErrInvariantViolation if it is otherwise not running.
	MarkFinished(ctx context.Context, id int64) error

	// CancelByID sets cancellation = now and the given note. Idempotent: if
	// already cancelled, returns the existing row and a nil error. Fails
	// with ErrTerminalState if already finished.
	CancelByID(ctx context.Context, id int64, note string) (Deployment, error)

	// CancelByVersion cancels every non-terminal deployment matching
	// (component, version) in one transaction and returns the affected ids.
	CancelByVersion(ctx context.Context, component, version, note string) ([]int64, error)

	// CancelByLocation cancels every non-terminal deployment matching the
	// location. cellIndex == nil means all cells in the region.
	CancelByLocation(ctx context.Context, env, provider, region string, cellIndex *int, note string) ([]int64, error)

	// PreviewCancelByVersion returns the ids CancelByVersion would cancel,
	// without mutating anything.
	PreviewCancelByVersion(ctx context.Context, component, version string) ([]int64, error)

	// PreviewCancelByLocation returns the ids CancelByLocation would cancel,
	// without mutating anything.
	PreviewCancelByLocation(ctx context.Context, env, provider, region string, cellIndex *int) ([]int64, error)

	// Info returns the row for rendering.
	Info(ctx context.Context, id int64) (Deployment, error)

	// Blockers returns the ordered (ascending id) list of deployments that
	// block the given target.
	Blockers(ctx context.Context, targetID int64) ([]Blocker, error)

	// Environment returns the named environment's buffer interval.
	Environment(ctx context.Context, name string) (Environment, error)

	// ListOutliers returns every currently-running deployment whose
	// elapsed time exceeds its historical mean by more than two standard
	// deviations.
	ListOutliers(ctx context.Context) ([]Outlier, error)

	// ListCells returns the distinct (provider, region, cell index) tuples
	// observed for the environment.
	ListCells(ctx context.Context, env string) ([]Cell, error)

	// Heartbeat sets last_heartbeat = now for the given id. This bypasses
	// the transition guard: it is the one write that touches a row outside
	// the lifecycle transitions.
	Heartbeat(ctx context.Context, id int64) error

	// ResolveURL returns the id of the deployment with the given url, used
	// by "heartbeat url" to resolve a url to an id.
	ResolveURL(ctx context.Context, url string) (int64, error)

	// StaleHeartbeats returns the ids of every non-terminal deployment,
	// anywhere, whose last_heartbeat is non-null and older than
	// olderThan. Used by the foreground heartbeat mode's global sweep.
	StaleHeartbeats(ctx context.Context, olderThan time.Duration) ([]int64, error)
}

// EventKind identifies which lifecycle transition a notification reports.
type EventKind string

const (
	EventStartPending EventKind = "start_pending"
	EventStarted      EventKind = "started"
	EventFinished     EventKind = "finished"
	EventCancelled    EventKind = "cancelled"
)

// Event is what the coordinator hands to a Notifier after a successful
// mutation. ThreadID is empty on the first event for a deployment; the
// value a Notifier's Notify returns is passed back in on subsequent events
// for the same id so a chat-style sink can thread them.
type Event struct {
	Kind     EventKind
	Deployment Deployment
	ThreadID string
}

// Notifier is the core's only extensibility point: an abstract,
// best-effort sink for lifecycle events. Notify must never block the
// caller indefinitely and its errors are logged, never propagated — see
// Notify's wrapper in notifier.go.
type Notifier interface {
	// Notify delivers an event and returns a thread-correlation id to pass
	// into the next Notify call for the same deployment. Implementations
	// that don't thread events may return "".
	Notify(ctx context.Context, e Event) (threadID string, err error)
}
