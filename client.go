package deployq

import (
	"context"

	"github.com/neondatabase/deployq/internal/core"
	"github.com/neondatabase/deployq/internal/store"
)

// Compile-time interface satisfaction check.
var _ Client = (*clientImpl)(nil)

// clientImpl wraps core.Coordinator and the Postgres store, hiding both
// behind the public Client interface so callers never import
// internal/core or internal/store directly.
type clientImpl struct {
	coord *core.Coordinator
	store *store.Store
}

// New opens databaseURL, applies any pending migrations, and returns a
// Client ready to enqueue and coordinate deployments.
//
// Callers are responsible for calling Close when done.
func New(ctx context.Context, databaseURL string, opts ...Option) (Client, error) {
	cfg := defaultClientConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	st, err := store.Open(ctx, databaseURL, store.WithRetryPolicy(cfg.retryAttempts, cfg.retryBaseWait))
	if err != nil {
		return nil, err
	}

	coord, err := core.NewCoordinator(st, cfg.notifier, cfg.Config)
	if err != nil {
		st.Close()
		return nil, err
	}

	return &clientImpl{coord: coord, store: st}, nil
}

func (c *clientImpl) Enqueue(ctx context.Context, loc Location, payload Payload) (int64, error) {
	return c.coord.Enqueue(ctx, loc, payload)
}

// WaitUntilStarted drives a NewWaitLoop for id to completion. The loop
// inherits its poll interval, stale threshold and consecutive-failure
// limit from the same Config the Client was built with; it writes one
// heartbeat per poll, so the heartbeat interval does not apply to it.
func (c *clientImpl) WaitUntilStarted(ctx context.Context, id int64) error {
	return core.NewWaitLoop(c.coord, id).Run(ctx)
}

func (c *clientImpl) MarkFinished(ctx context.Context, id int64) error {
	return c.coord.MarkFinished(ctx, id)
}

func (c *clientImpl) CancelByID(ctx context.Context, id int64, note string) (Deployment, error) {
	return c.coord.CancelByID(ctx, id, note)
}

func (c *clientImpl) CancelByVersion(ctx context.Context, component, version, note string) ([]int64, error) {
	return c.coord.CancelByVersion(ctx, component, version, note)
}

func (c *clientImpl) CancelByLocation(ctx context.Context, env, provider, region string, cellIndex *int, note string) ([]int64, error) {
	return c.coord.CancelByLocation(ctx, env, provider, region, cellIndex, note)
}

func (c *clientImpl) PreviewCancelByVersion(ctx context.Context, component, version string) ([]int64, error) {
	return c.coord.PreviewCancelByVersion(ctx, component, version)
}

func (c *clientImpl) PreviewCancelByLocation(ctx context.Context, env, provider, region string, cellIndex *int) ([]int64, error) {
	return c.coord.PreviewCancelByLocation(ctx, env, provider, region, cellIndex)
}

func (c *clientImpl) Info(ctx context.Context, id int64) (Deployment, error) {
	return c.coord.Info(ctx, id)
}

func (c *clientImpl) ListOutliers(ctx context.Context) ([]Outlier, error) {
	return c.coord.ListOutliers(ctx)
}

func (c *clientImpl) ListCells(ctx context.Context, env string) ([]Cell, error) {
	return c.coord.ListCells(ctx, env)
}

func (c *clientImpl) ResolveURL(ctx context.Context, url string) (int64, error) {
	return c.coord.ResolveURL(ctx, url)
}

func (c *clientImpl) RunHeartbeat(ctx context.Context, id int64) error {
	cfg := c.coord.Config()
	return core.NewForegroundHeartbeat(c.coord, id).Run(ctx, cfg.HeartbeatInterval, cfg.StaleThreshold)
}

func (c *clientImpl) Close() {
	c.store.Close()
}
