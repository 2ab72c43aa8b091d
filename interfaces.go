package deployq

import (
	"context"

	"github.com/neondatabase/deployq/internal/core"
)

// Re-exported domain types. These are plain value types with no internal
// state to hide, so aliasing is enough: there is no pool generation counter
// or release token that would make a wrapper type worth the indirection.
type (
	Location    = core.Location
	Payload     = core.Payload
	Deployment  = core.Deployment
	Environment = core.Environment
	Blocker     = core.Blocker
	Outlier     = core.Outlier
	Cell        = core.Cell
	Status      = core.Status
	Event       = core.Event
	EventKind   = core.EventKind
	Notifier    = core.Notifier
)

// Re-exported status and event-kind constants.
const (
	StatusQueued    = core.StatusQueued
	StatusRunning   = core.StatusRunning
	StatusBuffering = core.StatusBuffering
	StatusFinished  = core.StatusFinished
	StatusCancelled = core.StatusCancelled
	StatusPending   = core.StatusPending

	EventStartPending = core.EventStartPending
	EventStarted      = core.EventStarted
	EventFinished     = core.EventFinished
	EventCancelled    = core.EventCancelled
)

// Client is the public entry point to the deployment queue: enqueueing,
// waiting out a location's exclusion window, and reporting lifecycle
// transitions, all against a Postgres-backed store.
//
// A Client is safe for concurrent use by multiple goroutines.
type Client interface {
	// Enqueue inserts a new queued deployment and returns its id.
	Enqueue(ctx context.Context, loc Location, payload Payload) (int64, error)

	// WaitUntilStarted blocks until id has no remaining blockers and has
	// been marked running, the target was cancelled by another party
	// (ErrCancelled), three consecutive heartbeat writes failed
	// (ErrHeartbeatFailure, after which id is self-cancelled), or ctx is
	// cancelled.
	WaitUntilStarted(ctx context.Context, id int64) error

	// MarkFinished transitions id to finished.
	MarkFinished(ctx context.Context, id int64) error

	// CancelByID cancels a single deployment. Idempotent if already
	// cancelled; fails with ErrTerminalState if already finished.
	CancelByID(ctx context.Context, id int64, note string) (Deployment, error)

	// CancelByVersion cancels every non-terminal deployment matching
	// (component, version) and returns the affected ids.
	CancelByVersion(ctx context.Context, component, version, note string) ([]int64, error)

	// CancelByLocation cancels every non-terminal deployment matching the
	// given environment/provider/region, and the given cell index when
	// cellIndex is non-nil, or every cell in the region when it is nil.
	CancelByLocation(ctx context.Context, env, provider, region string, cellIndex *int, note string) ([]int64, error)

	// PreviewCancelByVersion returns the ids CancelByVersion would cancel,
	// without cancelling them. Used to implement cancel version --dry-run.
	PreviewCancelByVersion(ctx context.Context, component, version string) ([]int64, error)

	// PreviewCancelByLocation returns the ids CancelByLocation would
	// cancel, without cancelling them. Used to implement
	// cancel location --dry-run.
	PreviewCancelByLocation(ctx context.Context, env, provider, region string, cellIndex *int) ([]int64, error)

	// Info returns the deployment's current row.
	Info(ctx context.Context, id int64) (Deployment, error)

	// ListOutliers returns every currently-running deployment whose
	// elapsed time exceeds its historical mean by more than two standard
	// deviations.
	ListOutliers(ctx context.Context) ([]Outlier, error)

	// ListCells returns the distinct (provider, region, cell index)
	// tuples observed for env.
	ListCells(ctx context.Context, env string) ([]Cell, error)

	// ResolveURL returns the id of the deployment with the given url.
	ResolveURL(ctx context.Context, url string) (int64, error)

	// RunHeartbeat heartbeats id on the client's configured interval until
	// ctx is cancelled, also reaping any other deployment anywhere whose
	// heartbeat has gone stale. It is the standalone long-running mode
	// described for a process that owns a deployment outside the
	// WaitUntilStarted call that started it.
	RunHeartbeat(ctx context.Context, id int64) error

	// Close releases the underlying store connection pool.
	Close()
}
