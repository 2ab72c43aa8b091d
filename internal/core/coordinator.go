package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Coordinator is the concrete implementation of the deployment queue's
// lifecycle operations. It is a thin orchestration layer over Store: every
// method delegates the mutation to the store, then emits a best-effort
// notification. Its only mutable state is the notifier's per-deployment
// thread-id map, guarded by a mutex, so it is safe for concurrent use by
// multiple goroutines as long as its Store is.
type Coordinator struct {
	store    Store
	notifier *notifyHub
	cfg      Config
}

// NewCoordinator builds a Coordinator over the given Store. notifier may be
// nil, in which case notifications are silently discarded.
func NewCoordinator(store Store, notifier Notifier, cfg Config) (*Coordinator, error) {
	if store == nil {
		panic("core: NewCoordinator store must not be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid coordinator config: %w", err)
	}
	return &Coordinator{
		store:    store,
		notifier: newNotifyHub(notifier),
		cfg:      cfg,
	}, nil
}

// Config returns the coordinator's tunables, primarily for the wait loop
// and heartbeat engine constructors.
func (c *Coordinator) Config() Config { return c.cfg }

// Store exposes the underlying Store so the wait loop and heartbeat engine
// (which live in the same package but are separate types) can share it
// without the coordinator interposing on every blocker poll and heartbeat
// write.
func (c *Coordinator) Store() Store { return c.store }

// Enqueue inserts a new queued deployment and emits a start-pending
// notification.
func (c *Coordinator) Enqueue(ctx context.Context, loc Location, payload Payload) (int64, error) {
	id, err := c.store.Enqueue(ctx, loc, payload)
	if err != nil {
		return 0, err
	}
	Logger().Info("enqueued deployment",
		zap.Int64("deployment_id", id),
		zap.String("environment", loc.Environment),
		zap.String("component", payload.Component),
	)
	c.notifier.emit(ctx, EventStartPending, Deployment{ID: id, Location: loc, Payload: payload})
	return id, nil
}

// MarkStarted transitions the deployment to running and emits a started
// notification.
func (c *Coordinator) MarkStarted(ctx context.Context, id int64) error {
	if err := c.store.MarkStarted(ctx, id); err != nil {
		return err
	}
	d, err := c.store.Info(ctx, id)
	if err != nil {
		return err
	}
	Logger().Info("deployment started", zap.Int64("deployment_id", id))
	c.notifier.emit(ctx, EventStarted, d)
	return nil
}

// MarkFinished transitions the deployment to finished and emits a finished
// notification.
func (c *Coordinator) MarkFinished(ctx context.Context, id int64) error {
	if err := c.store.MarkFinished(ctx, id); err != nil {
		return err
	}
	d, err := c.store.Info(ctx, id)
	if err != nil {
		return err
	}
	Logger().Info("deployment finished", zap.Int64("deployment_id", id))
	c.notifier.emit(ctx, EventFinished, d)
	return nil
}

// CancelByID cancels a single deployment by id. See Store.CancelByID for
// the idempotence and terminal-state contract.
func (c *Coordinator) CancelByID(ctx context.Context, id int64, note string) (Deployment, error) {
	d, err := c.store.CancelByID(ctx, id, note)
	if err != nil {
		return Deployment{}, err
	}
	Logger().Info("deployment cancelled", zap.Int64("deployment_id", id), zap.String("note", note))
	c.notifier.emit(ctx, EventCancelled, d)
	return d, nil
}

// CancelByVersion bulk-cancels every non-terminal deployment matching
// (component, version).
func (c *Coordinator) CancelByVersion(ctx context.Context, component, version, note string) ([]int64, error) {
	ids, err := c.store.CancelByVersion(ctx, component, version, note)
	if err != nil {
		return nil, err
	}
	c.notifyBulkCancel(ctx, ids, note)
	return ids, nil
}

// CancelByLocation bulk-cancels every non-terminal deployment matching the
// location. cellIndex == nil means all cells in the region.
func (c *Coordinator) CancelByLocation(ctx context.Context, env, provider, region string, cellIndex *int, note string) ([]int64, error) {
	ids, err := c.store.CancelByLocation(ctx, env, provider, region, cellIndex, note)
	if err != nil {
		return nil, err
	}
	c.notifyBulkCancel(ctx, ids, note)
	return ids, nil
}

// PreviewCancelByVersion returns the ids CancelByVersion would cancel,
// without cancelling them or emitting any notification.
func (c *Coordinator) PreviewCancelByVersion(ctx context.Context, component, version string) ([]int64, error) {
	return c.store.PreviewCancelByVersion(ctx, component, version)
}

// PreviewCancelByLocation returns the ids CancelByLocation would cancel,
// without cancelling them or emitting any notification.
func (c *Coordinator) PreviewCancelByLocation(ctx context.Context, env, provider, region string, cellIndex *int) ([]int64, error) {
	return c.store.PreviewCancelByLocation(ctx, env, provider, region, cellIndex)
}

func (c *Coordinator) notifyBulkCancel(ctx context.Context, ids []int64, note string) {
	Logger().Info("bulk cancel", zap.Int64s("deployment_ids", ids), zap.String("note", note))
	for _, id := range ids {
		d, err := c.store.Info(ctx, id)
		if err != nil {
			// The row existed moments ago inside the same cancel
			// transaction; a lookup failure here is a notification-only
			// concern, not a reason to fail a cancel that already
			// committed.
			continue
		}
		c.notifier.emit(ctx, EventCancelled, d)
	}
}

// Info returns the row for rendering.
func (c *Coordinator) Info(ctx context.Context, id int64) (Deployment, error) {
	return c.store.Info(ctx, id)
}

// ListOutliers returns every currently-running deployment whose elapsed
// time exceeds its historical mean by more than two standard deviations.
func (c *Coordinator) ListOutliers(ctx context.Context) ([]Outlier, error) {
	return c.store.ListOutliers(ctx)
}

// ListCells returns the distinct (provider, region, cell index) tuples
// observed for the environment.
func (c *Coordinator) ListCells(ctx context.Context, env string) ([]Cell, error) {
	return c.store.ListCells(ctx, env)
}
