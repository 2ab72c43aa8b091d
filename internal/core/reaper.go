package core

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// reapStaleBlockers cancels every blocker whose last_heartbeat is non-null
// and older than staleThreshold. A blocker with a null heartbeat is left
// alone — only its own client, or an explicit cancel-by-location/version,
// can remove it. Returns the ids whose cancel succeeded, including a
// blocker that was already cancelled (CancelByID is idempotent).
func reapStaleBlockers(ctx context.Context, coord *Coordinator, blockers []Blocker, staleThreshold time.Duration) []int64 {
	var reaped []int64
	now := time.Now()
	for _, b := range blockers {
		if b.LastHeartbeat == nil {
			continue
		}
		if now.Sub(*b.LastHeartbeat) <= staleThreshold {
			continue
		}
		if _, err := coord.CancelByID(ctx, b.ID, "stale heartbeat"); err != nil {
			Logger().Warn("failed to reap stale blocker", zap.Int64("deployment_id", b.ID), zap.Error(err))
			continue
		}
		reaped = append(reaped, b.ID)
	}
	return reaped
}
