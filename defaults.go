package deployq

import "github.com/neondatabase/deployq/internal/core"

// Default configuration values, re-exported so callers can reference them
// when building a custom Config relative to the defaults (e.g.
// 2 * DefaultPollInterval).
const (
	// DefaultPollInterval is how often the wait loop re-queries blockers.
	DefaultPollInterval = core.DefaultPollInterval

	// DefaultHeartbeatInterval is how often the foreground heartbeat mode
	// refreshes last-heartbeat. The wait loop's background mode refreshes it
	// once per poll instead.
	DefaultHeartbeatInterval = core.DefaultHeartbeatInterval

	// DefaultStaleThreshold is how old a blocker's heartbeat must be before
	// the wait loop reaps it.
	DefaultStaleThreshold = core.DefaultStaleThreshold

	// DefaultConsecutiveFailureLimit is how many consecutive heartbeat
	// write failures the background mode tolerates before self-cancelling.
	DefaultConsecutiveFailureLimit = core.DefaultConsecutiveFailureLimit
)
