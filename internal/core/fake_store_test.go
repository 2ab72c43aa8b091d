package core

import (
	"context"
	"sort"
	"sync"
	"time"
)

// fakeStore is an in-memory Store used to exercise Coordinator and WaitLoop
// without a live Postgres. It enforces the same transition and blocking
// rules the real store's trigger and blocking query enforce, so tests here
// cover the orchestration logic. The SQL that implements those rules in
// internal/store is not exercised by any test in this module.
type fakeStore struct {
	mu          sync.Mutex
	nextID      int64
	deployments map[int64]*Deployment
	buffers     map[string]time.Duration
	failHeartbeat bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		deployments: make(map[int64]*Deployment),
		buffers:     make(map[string]time.Duration),
	}
}

func (f *fakeStore) setBuffer(env string, d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buffers[env] = d
}

func (f *fakeStore) Enqueue(_ context.Context, loc Location, payload Payload) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := f.nextID
	now := time.Now()
	f.deployments[id] = &Deployment{
		ID: id, CreatedAt: now, UpdatedAt: now,
		Location: loc, Payload: payload,
	}
	return id, nil
}

func (f *fakeStore) MarkStarted(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.deployments[id]
	if !ok {
		return ErrNotFound
	}
	if d.Cancellation != nil || d.Finish != nil {
		return ErrTerminalState
	}
	if d.Start != nil {
		return ErrInvariantViolation
	}
	now := time.Now()
	d.Start = &now
	d.UpdatedAt = now
	return nil
}

func (f *fakeStore) MarkFinished(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.deployments[id]
	if !ok {
		return ErrNotFound
	}
	if d.Cancellation != nil || d.Finish != nil {
		return ErrTerminalState
	}
	if d.Start == nil {
		return ErrInvariantViolation
	}
	now := time.Now()
	d.Finish = &now
	d.UpdatedAt = now
	return nil
}

func (f *fakeStore) CancelByID(_ context.Context, id int64, note string) (Deployment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.deployments[id]
	if !ok {
		return Deployment{}, ErrNotFound
	}
	if d.Cancellation != nil {
		return *d, nil
	}
	if d.Finish != nil {
		return Deployment{}, ErrTerminalState
	}
	now := time.Now()
	d.Cancellation = &now
	d.CancellationNote = note
	d.UpdatedAt = now
	return *d, nil
}

func (f *fakeStore) CancelByVersion(ctx context.Context, component, version, note string) ([]int64, error) {
	f.mu.Lock()
	var ids []int64
	for id, d := range f.deployments {
		if d.Component == component && d.Version == version && d.Cancellation == nil && d.Finish == nil {
			ids = append(ids, id)
		}
	}
	f.mu.Unlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if _, err := f.CancelByID(ctx, id, note); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

func (f *fakeStore) CancelByLocation(ctx context.Context, env, provider, region string, cellIndex *int, note string) ([]int64, error) {
	f.mu.Lock()
	var ids []int64
	for id, d := range f.deployments {
		if d.Environment == env && d.CloudProvider == provider && d.Region == region &&
			(cellIndex == nil || d.CellIndex == *cellIndex) &&
			d.Cancellation == nil && d.Finish == nil {
			ids = append(ids, id)
		}
	}
	f.mu.Unlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if _, err := f.CancelByID(ctx, id, note); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

func (f *fakeStore) PreviewCancelByVersion(_ context.Context, component, version string) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []int64
	for id, d := range f.deployments {
		if d.Component == component && d.Version == version && d.Cancellation == nil && d.Finish == nil {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (f *fakeStore) PreviewCancelByLocation(_ context.Context, env, provider, region string, cellIndex *int) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []int64
	for id, d := range f.deployments {
		if d.Environment == env && d.CloudProvider == provider && d.Region == region &&
			(cellIndex == nil || d.CellIndex == *cellIndex) &&
			d.Cancellation == nil && d.Finish == nil {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (f *fakeStore) Info(_ context.Context, id int64) (Deployment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.deployments[id]
	if !ok {
		return Deployment{}, ErrNotFound
	}
	return *d, nil
}

func (f *fakeStore) Blockers(_ context.Context, targetID int64) ([]Blocker, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	target, ok := f.deployments[targetID]
	if !ok {
		return nil, ErrNotFound
	}
	buffer := f.buffers[target.Environment]

	var blockers []Blocker
	for id, d := range f.deployments {
		if id >= targetID {
			continue
		}
		if d.Location != target.Location {
			continue
		}
		if d.ConcurrencyKey != "" && target.ConcurrencyKey != "" && d.ConcurrencyKey == target.ConcurrencyKey {
			continue
		}
		if d.Cancellation != nil {
			continue
		}
		if d.Finish != nil && time.Since(*d.Finish) >= buffer {
			continue
		}
		blockers = append(blockers, Blocker{
			ID: d.ID, Component: d.Component, Version: d.Version, URL: d.URL,
			Note: d.Note, ConcurrencyKey: d.ConcurrencyKey,
			Start: d.Start, Finish: d.Finish, LastHeartbeat: d.LastHeartbeat,
			Buffer: buffer,
		})
	}
	sort.Slice(blockers, func(i, j int) bool { return blockers[i].ID < blockers[j].ID })
	return blockers, nil
}

func (f *fakeStore) Environment(_ context.Context, name string) (Environment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Environment{Name: name, BufferInterval: f.buffers[name]}, nil
}

func (f *fakeStore) ListOutliers(context.Context) ([]Outlier, error) { return nil, nil }

func (f *fakeStore) ListCells(_ context.Context, env string) ([]Cell, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[Cell]bool)
	var cells []Cell
	for _, d := range f.deployments {
		if d.Environment != env {
			continue
		}
		c := Cell{CloudProvider: d.CloudProvider, Region: d.Region, CellIndex: d.CellIndex}
		if !seen[c] {
			seen[c] = true
			cells = append(cells, c)
		}
	}
	return cells, nil
}

func (f *fakeStore) Heartbeat(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failHeartbeat {
		return ErrStoreUnavailable
	}
	d, ok := f.deployments[id]
	if !ok {
		return ErrNotFound
	}
	now := time.Now()
	d.LastHeartbeat = &now
	d.UpdatedAt = now
	return nil
}

func (f *fakeStore) ResolveURL(_ context.Context, url string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, d := range f.deployments {
		if d.URL == url {
			return id, nil
		}
	}
	return 0, ErrNotFound
}

func (f *fakeStore) StaleHeartbeats(_ context.Context, olderThan time.Duration) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []int64
	for id, d := range f.deployments {
		if d.LastHeartbeat == nil || d.Cancellation != nil || d.Finish != nil {
			continue
		}
		if time.Since(*d.LastHeartbeat) > olderThan {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
