package core

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// notifyHub wraps a Notifier with a best-effort contract: a failure must
// never fail the mutation it rode in on, and the thread-correlation id
// returned by the first event for a deployment must be threaded into
// subsequent events for the same id.
type notifyHub struct {
	sink Notifier

	mu      sync.Mutex
	threads map[int64]string
}

func newNotifyHub(sink Notifier) *notifyHub {
	if sink == nil {
		sink = noopNotifier{}
	}
	return &notifyHub{sink: sink, threads: make(map[int64]string)}
}

// emit sends an event and swallows any error, logging it at warn level.
// It never blocks on anything the sink itself doesn't block on — callers
// needing a hard timeout should wrap their Notifier with one.
func (h *notifyHub) emit(ctx context.Context, kind EventKind, d Deployment) {
	h.mu.Lock()
	threadID := h.threads[d.ID]
	h.mu.Unlock()

	tid, err := h.sink.Notify(ctx, Event{Kind: kind, Deployment: d, ThreadID: threadID})
	if err != nil {
		Logger().Warn("notification sink failed",
			zap.Int64("deployment_id", d.ID),
			zap.String("event", string(kind)),
			zap.Error(err),
		)
		return
	}
	if tid != "" {
		h.mu.Lock()
		h.threads[d.ID] = tid
		h.mu.Unlock()
	}
}

// noopNotifier is the default Notifier when none is configured.
type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, Event) (string, error) { return "", nil }
