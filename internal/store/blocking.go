package store

import (
	"context"
	"time"

	"github.com/neondatabase/deployq/internal/core"
)

// Blockers returns the ordered (ascending id) list of deployments that
// block targetID: same cell, non-equal (or null) concurrency keys, not
// cancelled, and either still running or finished within the target
// environment's buffer. One round-trip, so per-poll cost stays O(|blockers|).
func (s *Store) Blockers(ctx context.Context, targetID int64) ([]core.Blocker, error) {
	var blockers []core.Blocker
	err := s.withRetry(ctx, func(ctx context.Context) error {
		blockers = nil
		rows, err := s.pool.Query(ctx, `
			WITH target AS (
				SELECT * FROM deployments WHERE id = $1
			), buffer AS (
				SELECT e.buffer_interval FROM environments e, target t
				WHERE e.name = t.environment
			)
			SELECT b.id, b.component, b.version, b.url, b.note,
			       coalesce(b.concurrency_key, ''), b.start_ts, b.finish_ts,
			       b.last_heartbeat, extract(epoch FROM (SELECT buffer_interval FROM buffer))
			FROM deployments b, target t
			WHERE b.id < t.id
			  AND b.environment = t.environment
			  AND b.cloud_provider = t.cloud_provider
			  AND b.region = t.region
			  AND b.cell_index = t.cell_index
			  AND NOT (b.concurrency_key IS NOT NULL
			           AND t.concurrency_key IS NOT NULL
			           AND b.concurrency_key = t.concurrency_key)
			  AND b.cancellation_ts IS NULL
			  AND (b.finish_ts IS NULL
			       OR now() - b.finish_ts < (SELECT buffer_interval FROM buffer))
			ORDER BY b.id`, targetID)
		if err != nil {
			return mapError(err)
		}
		defer rows.Close()
		for rows.Next() {
			var b core.Blocker
			var bufferSeconds float64
			if err := rows.Scan(&b.ID, &b.Component, &b.Version, &b.URL, &b.Note,
				&b.ConcurrencyKey, &b.Start, &b.Finish, &b.LastHeartbeat, &bufferSeconds); err != nil {
				return err
			}
			b.Buffer = time.Duration(bufferSeconds * float64(time.Second))
			blockers = append(blockers, b)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		if len(blockers) == 0 {
			// Distinguish "target has no blockers" from "target doesn't
			// exist" — the latter must surface as not-found so a caller
			// doesn't mistake a typo'd id for an unblocked deployment.
			if _, err := s.infoTx(ctx, s.pool, targetID); err != nil {
				return err
			}
		}
		return nil
	})
	return blockers, err
}
