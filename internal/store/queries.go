package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/neondatabase/deployq/internal/core"
)

var _ core.Store = (*Store)(nil)

// Enqueue inserts a new queued deployment.
func (s *Store) Enqueue(ctx context.Context, loc core.Location, payload core.Payload) (int64, error) {
	var id int64
	err := s.withTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return tx.QueryRow(ctx, `
			INSERT INTO deployments
				(environment, cloud_provider, region, cell_index,
				 component, version, url, note, concurrency_key)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''))
			RETURNING id`,
			loc.Environment, loc.CloudProvider, loc.Region, loc.CellIndex,
			payload.Component, payload.Version, payload.URL, payload.Note, payload.ConcurrencyKey,
		).Scan(&id)
	})
	if err != nil {
		return 0, mapError(err)
	}
	return id, nil
}

// MarkStarted sets start = now.
func (s *Store) MarkStarted(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE deployments SET start_ts = now() WHERE id = $1`, id)
		if err != nil {
			return mapError(err)
		}
		if tag.RowsAffected() == 0 {
			return core.ErrNotFound
		}
		return nil
	})
}

// MarkFinished sets finish = now, then kicks off a best-effort, detached
// refresh of the outlier-detection analytics cache. The refresh never
// blocks the caller and its failure is only logged — stale analytics are
// acceptable (spec's "never block writes on it" posture), a wrong write
// result is not.
func (s *Store) MarkFinished(ctx context.Context, id int64) error {
	err := s.withTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE deployments SET finish_ts = now() WHERE id = $1`, id)
		if err != nil {
			return mapError(err)
		}
		if tag.RowsAffected() == 0 {
			return core.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}
	go s.refreshDurationsAsync()
	return nil
}

// refreshDurationsAsync recomputes the deployment_durations materialized
// view in the background, detached from the request that triggered it.
func (s *Store) refreshDurationsAsync() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := s.pool.Exec(ctx, `SELECT refresh_deployment_durations()`); err != nil {
		core.Logger().Warn("refresh deployment_durations failed", zap.Error(err))
	}
}

// CancelByID sets cancellation = now, idempotently. The existing-row check
// and the write run inside the same Serializable transaction, so a
// concurrent second cancel can't read the pre-cancellation row after the
// first cancel's write has already landed: one of the two transactions
// serializes after the other and retries, rather than both taking the
// idempotent-success branch or one surfacing a spurious ErrTerminalState.
func (s *Store) CancelByID(ctx context.Context, id int64, note string) (core.Deployment, error) {
	var result core.Deployment
	err := s.withTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		existing, err := s.infoTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing.Cancellation != nil {
			result = existing
			return nil
		}
		if existing.Finish != nil {
			return core.ErrTerminalState
		}

		tag, err := tx.Exec(ctx, `
			UPDATE deployments SET cancellation_ts = now(), cancellation_note = $2
			WHERE id = $1`, id, note)
		if err != nil {
			return mapError(err)
		}
		if tag.RowsAffected() == 0 {
			return core.ErrNotFound
		}
		result, err = s.infoTx(ctx, tx, id)
		return err
	})
	if err != nil {
		return core.Deployment{}, err
	}
	return result, nil
}

// CancelByVersion cancels every non-terminal deployment matching (component,
// version) and returns the affected ids, ascending.
func (s *Store) CancelByVersion(ctx context.Context, component, version, note string) ([]int64, error) {
	return s.cancelMatching(ctx, note, `component = $2 AND version = $3`, component, version)
}

// CancelByLocation cancels every non-terminal deployment matching the
// location; cellIndex == nil means every cell in the region.
func (s *Store) CancelByLocation(ctx context.Context, env, provider, region string, cellIndex *int, note string) ([]int64, error) {
	if cellIndex != nil {
		return s.cancelMatching(ctx, note,
			`environment = $2 AND cloud_provider = $3 AND region = $4 AND cell_index = $5`,
			env, provider, region, *cellIndex)
	}
	return s.cancelMatching(ctx, note,
		`environment = $2 AND cloud_provider = $3 AND region = $4`,
		env, provider, region)
}

func (s *Store) cancelMatching(ctx context.Context, note, predicate string, args ...any) ([]int64, error) {
	var ids []int64
	err := s.withTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		ids = nil
		queryArgs := append([]any{note}, args...)
		rows, err := tx.Query(ctx, `
			UPDATE deployments
			SET cancellation_ts = now(), cancellation_note = $1
			WHERE `+predicate+`
			  AND cancellation_ts IS NULL AND finish_ts IS NULL
			RETURNING id`, queryArgs...)
		if err != nil {
			return mapError(err)
		}
		defer rows.Close()
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// PreviewCancelByVersion returns the ids CancelByVersion would cancel,
// without mutating anything.
func (s *Store) PreviewCancelByVersion(ctx context.Context, component, version string) ([]int64, error) {
	return s.previewMatching(ctx, `component = $1 AND version = $2`, component, version)
}

// PreviewCancelByLocation returns the ids CancelByLocation would cancel,
// without mutating anything.
func (s *Store) PreviewCancelByLocation(ctx context.Context, env, provider, region string, cellIndex *int) ([]int64, error) {
	if cellIndex != nil {
		return s.previewMatching(ctx,
			`environment = $1 AND cloud_provider = $2 AND region = $3 AND cell_index = $4`,
			env, provider, region, *cellIndex)
	}
	return s.previewMatching(ctx,
		`environment = $1 AND cloud_provider = $2 AND region = $3`,
		env, provider, region)
}

func (s *Store) previewMatching(ctx context.Context, predicate string, args ...any) ([]int64, error) {
	var ids []int64
	err := s.withRetry(ctx, func(ctx context.Context) error {
		ids = nil
		rows, err := s.pool.Query(ctx, `
			SELECT id FROM deployments
			WHERE `+predicate+`
			  AND cancellation_ts IS NULL AND finish_ts IS NULL
			ORDER BY id`, args...)
		if err != nil {
			return mapError(err)
		}
		defer rows.Close()
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Info returns the row for rendering.
func (s *Store) Info(ctx context.Context, id int64) (core.Deployment, error) {
	var d core.Deployment
	err := s.withRetry(ctx, func(ctx context.Context) error {
		var err error
		d, err = s.infoTx(ctx, s.pool, id)
		return err
	})
	return d, err
}

// infoTx reads a deployment's row through q, so CancelByID can reuse it
// inside the same transaction as its write instead of a separate pool
// checkout.
func (s *Store) infoTx(ctx context.Context, q querier, id int64) (core.Deployment, error) {
	row := q.QueryRow(ctx, `
		SELECT id, created_at, updated_at,
		       environment, cloud_provider, region, cell_index,
		       component, version, url, note, coalesce(concurrency_key, ''),
		       start_ts, finish_ts, cancellation_ts, cancellation_note, last_heartbeat
		FROM deployments WHERE id = $1`, id)
	d, err := scanDeployment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Deployment{}, core.ErrNotFound
	}
	if err != nil {
		return core.Deployment{}, mapError(err)
	}
	return d, nil
}

// Environment returns the named environment's buffer interval.
func (s *Store) Environment(ctx context.Context, name string) (core.Environment, error) {
	var env core.Environment
	env.Name = name
	err := s.withRetry(ctx, func(ctx context.Context) error {
		var bufferSeconds float64
		if err := s.pool.QueryRow(ctx,
			`SELECT extract(epoch FROM buffer_interval) FROM environments WHERE name = $1`, name,
		).Scan(&bufferSeconds); err != nil {
			return err
		}
		env.BufferInterval = time.Duration(bufferSeconds * float64(time.Second))
		return nil
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Environment{}, core.ErrNotFound
	}
	if err != nil {
		return core.Environment{}, mapError(err)
	}
	return env, nil
}

// ListCells returns the distinct (provider, region, cell index) tuples
// observed for the environment.
func (s *Store) ListCells(ctx context.Context, env string) ([]core.Cell, error) {
	var cells []core.Cell
	err := s.withRetry(ctx, func(ctx context.Context) error {
		cells = nil
		rows, err := s.pool.Query(ctx, `
			SELECT cloud_provider, region, cell_index FROM cells
			WHERE environment = $1
			ORDER BY cloud_provider, region, cell_index`, env)
		if err != nil {
			return mapError(err)
		}
		defer rows.Close()
		for rows.Next() {
			var c core.Cell
			if err := rows.Scan(&c.CloudProvider, &c.Region, &c.CellIndex); err != nil {
				return err
			}
			cells = append(cells, c)
		}
		return rows.Err()
	})
	return cells, err
}

// Heartbeat sets last_heartbeat = now, bypassing the transition guard.
func (s *Store) Heartbeat(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE deployments SET last_heartbeat = now() WHERE id = $1`, id)
		if err != nil {
			return mapError(err)
		}
		if tag.RowsAffected() == 0 {
			return core.ErrNotFound
		}
		return nil
	})
}

// ResolveURL returns the id of the deployment with the given url.
func (s *Store) ResolveURL(ctx context.Context, url string) (int64, error) {
	var id int64
	err := s.withRetry(ctx, func(ctx context.Context) error {
		return s.pool.QueryRow(ctx, `SELECT id FROM deployments WHERE url = $1`, url).Scan(&id)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, core.ErrNotFound
	}
	if err != nil {
		return 0, mapError(err)
	}
	return id, nil
}

// StaleHeartbeats returns ids of every non-terminal deployment whose
// last_heartbeat is non-null and older than olderThan.
func (s *Store) StaleHeartbeats(ctx context.Context, olderThan time.Duration) ([]int64, error) {
	var ids []int64
	err := s.withRetry(ctx, func(ctx context.Context) error {
		ids = nil
		rows, err := s.pool.Query(ctx, `
			SELECT id FROM deployments
			WHERE cancellation_ts IS NULL AND finish_ts IS NULL
			  AND last_heartbeat IS NOT NULL
			  AND now() - last_heartbeat > (interval '1 second' * $1::double precision)
			ORDER BY id`, olderThan.Seconds())
		if err != nil {
			return mapError(err)
		}
		defer rows.Close()
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return rows.Err()
	})
	return ids, err
}

// rowScanner abstracts pgx.Row so scanDeployment works for both QueryRow and
// a manual Scan call site.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDeployment(row rowScanner) (core.Deployment, error) {
	var d core.Deployment
	err := row.Scan(
		&d.ID, &d.CreatedAt, &d.UpdatedAt,
		&d.Environment, &d.CloudProvider, &d.Region, &d.CellIndex,
		&d.Component, &d.Version, &d.URL, &d.Note, &d.ConcurrencyKey,
		&d.Start, &d.Finish, &d.Cancellation, &d.CancellationNote, &d.LastHeartbeat,
	)
	return d, err
}
