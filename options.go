package deployq

import (
	"fmt"
	"time"

	"github.com/neondatabase/deployq/internal/core"
)

// requirePositive panics if v <= 0 with a descriptive message. Option
// values are typically compile-time constants, so an invalid value
// indicates a programmer error rather than a runtime condition worth a
// returned error — the same fail-fast posture regexp.MustCompile uses.
func requirePositive[T int | time.Duration](name string, v T) {
	if v <= 0 {
		panic(fmt.Sprintf("deployq: %s must be greater than 0, got %v", name, v))
	}
}

// Option configures a Client during construction via New.
type Option func(*clientConfig)

// WithPollInterval sets how often WaitUntilStarted re-queries blockers.
//
// Default: DefaultPollInterval.
//
// Panics if d <= 0.
func WithPollInterval(d time.Duration) Option {
	requirePositive("poll interval", d)
	return func(c *clientConfig) { c.PollInterval = d }
}

// WithHeartbeatInterval sets the cadence of RunHeartbeat's heartbeat
// writes. WaitUntilStarted's embedded heartbeat is written once per poll
// and is not affected.
//
// Default: DefaultHeartbeatInterval.
//
// Panics if d <= 0.
func WithHeartbeatInterval(d time.Duration) Option {
	requirePositive("heartbeat interval", d)
	return func(c *clientConfig) { c.HeartbeatInterval = d }
}

// WithStaleThreshold sets how old a blocker's last heartbeat must be
// before it is reaped.
//
// Default: DefaultStaleThreshold.
//
// Panics if d <= 0.
func WithStaleThreshold(d time.Duration) Option {
	requirePositive("stale threshold", d)
	return func(c *clientConfig) { c.StaleThreshold = d }
}

// WithConsecutiveFailureLimit sets how many consecutive heartbeat write
// failures WaitUntilStarted tolerates before self-cancelling its target.
//
// Default: DefaultConsecutiveFailureLimit.
//
// Panics if limit <= 0.
func WithConsecutiveFailureLimit(limit int) Option {
	requirePositive("consecutive failure limit", limit)
	return func(c *clientConfig) { c.ConsecutiveFailureLimit = limit }
}

// WithNotifier sets the best-effort lifecycle notification sink. The
// internal/notify package provides a Slack and a file-based
// implementation; callers may also supply their own Notifier.
//
// Default: none — events are discarded.
func WithNotifier(n core.Notifier) Option {
	return func(c *clientConfig) { c.notifier = n }
}

// WithRetryPolicy overrides the store's default retry policy for
// serialization failures and deadlocks (3 attempts, 20ms base backoff,
// doubling).
//
// Panics if attempts <= 0 or baseWait <= 0.
func WithRetryPolicy(attempts int, baseWait time.Duration) Option {
	requirePositive("retry attempts", attempts)
	requirePositive("retry base wait", baseWait)
	return func(c *clientConfig) {
		c.retryAttempts = attempts
		c.retryBaseWait = baseWait
	}
}
