package store

import (
	"context"
	"time"

	"github.com/neondatabase/deployq/internal/core"
)

// ListOutliers returns every currently-running deployment whose elapsed
// time exceeds its key's historical mean by more than two standard
// deviations, sourced from the deployment_stats projection. The projection
// is a cache — refreshed on finish events, never on this read path, so a
// slow or failed refresh never blocks a write.
func (s *Store) ListOutliers(ctx context.Context) ([]core.Outlier, error) {
	var outliers []core.Outlier
	err := s.withRetry(ctx, func(ctx context.Context) error {
		outliers = nil
		rows, err := s.pool.Query(ctx, `
			SELECT d.id, d.environment, d.cloud_provider, d.region, d.cell_index,
			       d.component, d.version, d.url, d.note, coalesce(d.concurrency_key, ''),
			       d.start_ts,
			       extract(epoch FROM st.mean_duration),
			       extract(epoch FROM st.stddev_duration)
			FROM deployments d
			JOIN deployment_stats st
			  ON st.environment = d.environment
			 AND st.cloud_provider = d.cloud_provider
			 AND st.region = d.region
			 AND st.cell_index = d.cell_index
			 AND st.component = d.component
			WHERE d.cancellation_ts IS NULL
			  AND d.finish_ts IS NULL
			  AND d.start_ts IS NOT NULL
			  AND st.sample_size > 0
			  AND now() - d.start_ts > st.mean_duration + 2 * st.stddev_duration
			ORDER BY d.id`)
		if err != nil {
			return mapError(err)
		}
		defer rows.Close()
		for rows.Next() {
			var o core.Outlier
			var meanSeconds, stddevSeconds float64
			if err := rows.Scan(&o.ID, &o.Location.Environment, &o.Location.CloudProvider,
				&o.Location.Region, &o.Location.CellIndex,
				&o.Payload.Component, &o.Payload.Version, &o.Payload.URL, &o.Payload.Note,
				&o.Payload.ConcurrencyKey, &o.Start, &meanSeconds, &stddevSeconds); err != nil {
				return err
			}
			o.Mean = time.Duration(meanSeconds * float64(time.Second))
			o.StdDev = time.Duration(stddevSeconds * float64(time.Second))
			o.Elapsed = time.Since(o.Start)
			outliers = append(outliers, o)
		}
		return rows.Err()
	})
	return outliers, err
}
