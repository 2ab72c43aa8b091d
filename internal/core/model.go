package core

import "time"

// Status is the derived lifecycle state of a Deployment. It is never stored;
// it is always computed from timestamps plus the owning environment's
// buffer interval (see Deployment.Status).
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusBuffering Status = "buffering"
	StatusFinished  Status = "finished"
	StatusCancelled Status = "cancelled"

	// StatusPending is a pseudo-status that only ever appears in the
	// cross-cell "latest deployment" view, for a (env, component) whose
	// newest observed version has no deployment yet in a given cell.
	StatusPending Status = "pending"
)

// Location identifies a deployment's exclusion domain: the tuple of
// environment, cloud provider, region and cell index. Two deployments in
// the same Location compete for the same slot unless both carry the same
// non-empty concurrency key (see Payload.ConcurrencyKey).
type Location struct {
	Environment   string
	CloudProvider string
	Region        string
	CellIndex     int
}

// Payload carries the information about what is being deployed. Component
// is the only required field; everything else is optional metadata that
// rides along for display and correlation purposes.
type Payload struct {
	Component      string
	Version        string
	URL            string
	Note           string
	ConcurrencyKey string
}

// Deployment is the central entity. Identity and Payload fields are
// immutable after insert; only the lifecycle timestamps and LastHeartbeat
// ever change, and only along the transitions the store's guard allows.
type Deployment struct {
	ID        int64
	CreatedAt time.Time
	UpdatedAt time.Time

	Location
	Payload

	Start            *time.Time
	Finish           *time.Time
	Cancellation     *time.Time
	CancellationNote string
	LastHeartbeat    *time.Time
}

// Status derives a pure-function status: queued until Start is set,
// running until Finish is set, buffering while now is less than buffer
// past Finish, finished after that, and cancelled whenever Cancellation is
// set (regardless of the other timestamps).
//
// buffer is the owning environment's buffer interval; now is the instant
// to evaluate the status at (callers pass time.Now() except in tests,
// which need a fixed clock to make the "still buffering at T+9m, finished
// at T+10m" boundary deterministic).
func (d Deployment) Status(buffer time.Duration, now time.Time) Status {
	if d.Cancellation != nil {
		return StatusCancelled
	}
	if d.Finish != nil {
		if now.Sub(*d.Finish) < buffer {
			return StatusBuffering
		}
		return StatusFinished
	}
	if d.Start != nil {
		return StatusRunning
	}
	return StatusQueued
}

// Environment carries the one per-environment tunable: how long a
// finished deployment continues to block its cell.
type Environment struct {
	Name          string
	BufferInterval time.Duration
}

// Blocker is a row returned by the blocking query: enough of a
// deployment's fields to render a "waiting on" line and to decide whether
// it is a candidate for stale-heartbeat reaping.
type Blocker struct {
	ID             int64
	Component      string
	Version        string
	URL            string
	Note           string
	ConcurrencyKey string
	Start          *time.Time
	Finish         *time.Time
	LastHeartbeat  *time.Time
	Buffer         time.Duration
}

// Outlier describes a running deployment whose elapsed time has exceeded
// its historical mean by more than two standard deviations.
type Outlier struct {
	ID       int64
	Location Location
	Payload  Payload
	Start    time.Time
	Elapsed  time.Duration
	Mean     time.Duration
	StdDev   time.Duration
}

// Cell is a distinct (provider, region, cell index) tuple observed for an
// environment.
type Cell struct {
	CloudProvider string
	Region        string
	CellIndex     int
}
