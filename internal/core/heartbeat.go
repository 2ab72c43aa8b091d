package core

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// backgroundHeartbeat is the wait loop's embedded heartbeat mode (spec
// §4.5). It wraps a gobreaker.CircuitBreaker configured to trip after
// ConsecutiveFailureLimit consecutive failed writes — a circuit breaker is
// exactly the "N consecutive failures" primitive this needs, rather than a
// hand-rolled counter, and gobreaker is already in the example pack's
// dependency surface for this kind of liveness guard.
type backgroundHeartbeat struct {
	store   Store
	id      int64
	breaker *gobreaker.CircuitBreaker
}

func newBackgroundHeartbeat(store Store, id int64, limit int) *backgroundHeartbeat {
	settings := gobreaker.Settings{
		Name:        fmt.Sprintf("deployment-%d-heartbeat", id),
		MaxRequests: 1,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(limit)
		},
	}
	return &backgroundHeartbeat{store: store, id: id, breaker: gobreaker.NewCircuitBreaker(settings)}
}

// beat writes one heartbeat. tripped reports whether the breaker is open
// after this failed call, i.e. ConsecutiveFailures has reached the limit;
// the wait loop treats that as the signal to self-cancel.
func (b *backgroundHeartbeat) beat(ctx context.Context) (tripped bool, err error) {
	_, err = b.breaker.Execute(func() (any, error) {
		return nil, b.store.Heartbeat(ctx, b.id)
	})
	if err != nil {
		return b.breaker.State() == gobreaker.StateOpen, err
	}
	return false, nil
}

// ForegroundHeartbeat is the long-running client process mode: a standalone
// loop that heartbeats one deployment and, on every tick, also reaps any
// other deployment anywhere whose heartbeat has gone stale.
type ForegroundHeartbeat struct {
	coord *Coordinator
	id    int64
}

// NewForegroundHeartbeat returns a ForegroundHeartbeat for id, ready to
// Run. It does no lookup of its own; a caller starting from a url resolves
// it first with Coordinator.ResolveURL.
func NewForegroundHeartbeat(coord *Coordinator, id int64) *ForegroundHeartbeat {
	return &ForegroundHeartbeat{coord: coord, id: id}
}

// ResolveURL looks up the deployment id owning url, for the "heartbeat url"
// entry point.
func (c *Coordinator) ResolveURL(ctx context.Context, url string) (int64, error) {
	return c.store.ResolveURL(ctx, url)
}

// Run heartbeats h.id every interval until ctx is cancelled, reaping stale
// heartbeats globally on every tick. It returns ctx.Err() when the context
// is cancelled; store errors are logged and do not stop the loop, since a
// foreground heartbeater's whole purpose is to keep running despite
// transient store hiccups (only the wait loop's background mode enforces
// the fail-fast, 3-strikes contract).
func (h *ForegroundHeartbeat) Run(ctx context.Context, interval, staleThreshold time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := h.coord.store.Heartbeat(ctx, h.id); err != nil {
			Logger().Warn("foreground heartbeat write failed", zap.Int64("deployment_id", h.id), zap.Error(err))
		}

		staleIDs, err := h.coord.store.StaleHeartbeats(ctx, staleThreshold)
		if err != nil {
			Logger().Warn("stale heartbeat sweep failed", zap.Error(err))
		} else {
			for _, staleID := range staleIDs {
				if _, err := h.coord.CancelByID(ctx, staleID, "stale heartbeat"); err != nil {
					Logger().Warn("failed to cancel stale deployment", zap.Int64("deployment_id", staleID), zap.Error(err))
				}
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
