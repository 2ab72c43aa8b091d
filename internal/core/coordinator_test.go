package core

import (
	"context"
	"errors"
	"testing"
)

type recordingNotifier struct {
	events []Event
}

func (r *recordingNotifier) Notify(_ context.Context, e Event) (string, error) {
	r.events = append(r.events, e)
	return "thread-1", nil
}

func TestCoordinator_EnqueueEmitsStartPending(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	rec := &recordingNotifier{}
	coord, err := NewCoordinator(store, rec, testConfig())
	if err != nil {
		t.Fatalf("NewCoordinator: %v", err)
	}

	loc := Location{Environment: "staging", CloudProvider: "aws", Region: "us-east-1", CellIndex: 0}
	id, err := coord.Enqueue(context.Background(), loc, Payload{Component: "api"})
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	if len(rec.events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(rec.events))
	}
	if rec.events[0].Kind != EventStartPending {
		t.Errorf("Kind = %v, want EventStartPending", rec.events[0].Kind)
	}
	if rec.events[0].Deployment.ID != id {
		t.Errorf("event deployment id = %d, want %d", rec.events[0].Deployment.ID, id)
	}
}

func TestCoordinator_ThreadIDCarriesAcrossEvents(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	rec := &recordingNotifier{}
	coord, err := NewCoordinator(store, rec, testConfig())
	if err != nil {
		t.Fatalf("NewCoordinator: %v", err)
	}
	ctx := context.Background()
	loc := Location{Environment: "staging", CloudProvider: "aws", Region: "us-east-1", CellIndex: 0}

	id, err := coord.Enqueue(ctx, loc, Payload{Component: "api"})
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if err := coord.MarkStarted(ctx, id); err != nil {
		t.Fatalf("MarkStarted: %v", err)
	}

	if len(rec.events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(rec.events))
	}
	if rec.events[0].ThreadID != "" {
		t.Errorf("first event ThreadID = %q, want empty", rec.events[0].ThreadID)
	}
	if rec.events[1].ThreadID != "thread-1" {
		t.Errorf("second event ThreadID = %q, want %q", rec.events[1].ThreadID, "thread-1")
	}
}

func TestCoordinator_MarkFinishedRequiresRunning(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	coord := mustCoordinator(t, store)
	ctx := context.Background()
	loc := Location{Environment: "staging", CloudProvider: "aws", Region: "us-east-1", CellIndex: 0}

	id, err := coord.Enqueue(ctx, loc, Payload{Component: "api"})
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	if err := coord.MarkFinished(ctx, id); !errors.Is(err, ErrInvariantViolation) {
		t.Fatalf("MarkFinished on queued deployment = %v, want ErrInvariantViolation", err)
	}
}

func TestCoordinator_CancelAlreadyFinishedFails(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	coord := mustCoordinator(t, store)
	ctx := context.Background()
	loc := Location{Environment: "staging", CloudProvider: "aws", Region: "us-east-1", CellIndex: 0}

	id, err := coord.Enqueue(ctx, loc, Payload{Component: "api"})
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if err := coord.MarkStarted(ctx, id); err != nil {
		t.Fatalf("MarkStarted: %v", err)
	}
	if err := coord.MarkFinished(ctx, id); err != nil {
		t.Fatalf("MarkFinished: %v", err)
	}

	if _, err := coord.CancelByID(ctx, id, "too late"); !errors.Is(err, ErrTerminalState) {
		t.Fatalf("CancelByID on finished deployment = %v, want ErrTerminalState", err)
	}
}

func TestCoordinator_CancelIsIdempotent(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	coord := mustCoordinator(t, store)
	ctx := context.Background()
	loc := Location{Environment: "staging", CloudProvider: "aws", Region: "us-east-1", CellIndex: 0}

	id, err := coord.Enqueue(ctx, loc, Payload{Component: "api"})
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	first, err := coord.CancelByID(ctx, id, "first")
	if err != nil {
		t.Fatalf("CancelByID (first): %v", err)
	}
	second, err := coord.CancelByID(ctx, id, "second")
	if err != nil {
		t.Fatalf("CancelByID (second): %v", err)
	}
	if *first.Cancellation != *second.Cancellation {
		t.Error("expected second cancel to be a no-op returning the original cancellation time")
	}
}

func TestCoordinator_CancelByVersionBulk(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	rec := &recordingNotifier{}
	coord, err := NewCoordinator(store, rec, testConfig())
	if err != nil {
		t.Fatalf("NewCoordinator: %v", err)
	}
	ctx := context.Background()
	loc := Location{Environment: "staging", CloudProvider: "aws", Region: "us-east-1", CellIndex: 0}

	id1, _ := coord.Enqueue(ctx, loc, Payload{Component: "api", Version: "v1"})
	id2, _ := coord.Enqueue(ctx, loc, Payload{Component: "api", Version: "v1"})
	id3, _ := coord.Enqueue(ctx, loc, Payload{Component: "api", Version: "v2"})

	ids, err := coord.CancelByVersion(ctx, "api", "v1", "superseded")
	if err != nil {
		t.Fatalf("CancelByVersion: %v", err)
	}
	if len(ids) != 2 || ids[0] != id1 || ids[1] != id2 {
		t.Fatalf("CancelByVersion ids = %v, want [%d %d]", ids, id1, id2)
	}

	d3, err := coord.Info(ctx, id3)
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if d3.Cancellation != nil {
		t.Error("v2 deployment should not have been cancelled")
	}
}

func TestNewCoordinator_RejectsInvalidConfig(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	_, err := NewCoordinator(store, nil, Config{})
	if err == nil {
		t.Fatal("expected an error for a zero-value config")
	}
}
