package core

import (
	"context"
	"testing"
	"time"
)

func TestBackgroundHeartbeat_TripsAfterConsecutiveFailures(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	store.failHeartbeat = true
	hb := newBackgroundHeartbeat(store, 1, 3)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		tripped, err := hb.beat(ctx)
		if err == nil {
			t.Fatalf("beat() call %d: expected error", i)
		}
		if tripped {
			t.Fatalf("beat() call %d: tripped too early", i)
		}
	}

	tripped, err := hb.beat(ctx)
	if err == nil {
		t.Fatal("beat() call 3: expected error")
	}
	if !tripped {
		t.Fatal("beat() call 3: expected breaker to trip on the third consecutive failure")
	}
}

func TestBackgroundHeartbeat_SuccessResetsCount(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	hb := newBackgroundHeartbeat(store, 1, 3)
	ctx := context.Background()
	store.Enqueue(ctx, Location{Environment: "staging"}, Payload{Component: "api"})

	store.failHeartbeat = true
	if _, err := hb.beat(ctx); err == nil {
		t.Fatal("expected error on first failing beat")
	}
	store.failHeartbeat = false
	if tripped, err := hb.beat(ctx); err != nil || tripped {
		t.Fatalf("beat() after recovery = (%v, %v), want (false, nil)", tripped, err)
	}

	store.failHeartbeat = true
	for i := 0; i < 2; i++ {
		if tripped, err := hb.beat(ctx); err == nil || tripped {
			t.Fatalf("beat() call %d after reset: (%v, %v)", i, tripped, err)
		}
	}
}

func TestForegroundHeartbeat_RunHeartbeatsAndReapsStale(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	coord := mustCoordinator(t, store)
	ctx, cancel := context.WithCancel(context.Background())
	loc := Location{Environment: "staging", CloudProvider: "aws", Region: "us-east-1", CellIndex: 0}

	selfID, err := coord.Enqueue(ctx, loc, Payload{Component: "api", URL: "https://ci.example/1"})
	if err != nil {
		t.Fatalf("Enqueue self: %v", err)
	}
	if err := coord.MarkStarted(ctx, selfID); err != nil {
		t.Fatalf("MarkStarted self: %v", err)
	}

	staleID, err := coord.Enqueue(ctx, loc, Payload{Component: "worker"})
	if err != nil {
		t.Fatalf("Enqueue stale: %v", err)
	}
	if err := coord.MarkStarted(ctx, staleID); err != nil {
		t.Fatalf("MarkStarted stale: %v", err)
	}
	if err := store.Heartbeat(ctx, staleID); err != nil {
		t.Fatalf("Heartbeat: %v", err)
	}
	store.mu.Lock()
	backdated := time.Now().Add(-time.Hour)
	store.deployments[staleID].LastHeartbeat = &backdated
	store.mu.Unlock()

	hb := NewForegroundHeartbeat(coord, selfID)
	done := make(chan error, 1)
	go func() { done <- hb.Run(ctx, 5*time.Millisecond, 10*time.Millisecond) }()

	time.Sleep(30 * time.Millisecond)
	cancel()
	<-done

	self, err := coord.Info(context.Background(), selfID)
	if err != nil {
		t.Fatalf("Info self: %v", err)
	}
	if self.LastHeartbeat == nil {
		t.Error("expected self heartbeat to have been written")
	}

	stale, err := coord.Info(context.Background(), staleID)
	if err != nil {
		t.Fatalf("Info stale: %v", err)
	}
	if stale.Cancellation == nil {
		t.Error("expected globally stale deployment to have been reaped")
	}
}

func TestResolveURL(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	coord := mustCoordinator(t, store)
	ctx := context.Background()
	loc := Location{Environment: "staging", CloudProvider: "aws", Region: "us-east-1", CellIndex: 0}

	id, err := coord.Enqueue(ctx, loc, Payload{Component: "api", URL: "https://ci.example/42"})
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	got, err := coord.ResolveURL(ctx, "https://ci.example/42")
	if err != nil {
		t.Fatalf("ResolveURL: %v", err)
	}
	if got != id {
		t.Errorf("ResolveURL() = %d, want %d", got, id)
	}

	if _, err := coord.ResolveURL(ctx, "https://ci.example/missing"); err == nil {
		t.Error("expected ResolveURL to fail for an unknown url")
	}
}
