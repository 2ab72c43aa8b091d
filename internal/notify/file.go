package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/neondatabase/deployq/internal/core"
	"github.com/neondatabase/deployq/internal/fileutil"
)

// RetryableError wraps a file-sink error that is safe to retry — a
// directory-creation or write failure that may be transient (permissions
// fixed, disk freed), as opposed to a malformed event. Mirrors the
// kubernaut notification package's retryable/non-retryable error
// distinction for its file delivery channel.
type RetryableError struct {
	cause error
}

func (e *RetryableError) Error() string { return e.cause.Error() }
func (e *RetryableError) Unwrap() error  { return e.cause }

// FileNotifier appends one JSON line per event to a file under dir, named
// by deployment id. A flat file has no server-assigned thread id the way
// Slack does, so Notify mints a random one on the first event for a
// deployment and echoes it back on the rest.
type FileNotifier struct {
	dir string

	mu sync.Mutex
}

// NewFileNotifier returns a FileNotifier that writes under dir, creating it
// (and any parents) on first use.
func NewFileNotifier(dir string) *FileNotifier {
	return &FileNotifier{dir: dir}
}

type fileEvent struct {
	Kind         core.EventKind `json:"kind"`
	DeploymentID int64          `json:"deployment_id"`
	Environment  string         `json:"environment"`
	Component    string         `json:"component"`
	Version      string         `json:"version,omitempty"`
	Timestamp    time.Time      `json:"timestamp"`
}

// Notify appends the event as a JSON line to <dir>/<deployment-id>.jsonl.
func (n *FileNotifier) Notify(_ context.Context, e core.Event) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if err := fileutil.EnsureDir(n.dir); err != nil {
		return "", &RetryableError{cause: fmt.Errorf("failed to create output directory: %w", err)}
	}

	path := filepath.Join(n.dir, fmt.Sprintf("%d.jsonl", e.Deployment.ID))
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return "", &RetryableError{cause: fmt.Errorf("failed to open notification file: %w", err)}
	}
	defer f.Close()

	payload := fileEvent{
		Kind:         e.Kind,
		DeploymentID: e.Deployment.ID,
		Environment:  e.Deployment.Environment,
		Component:    e.Deployment.Component,
		Version:      e.Deployment.Version,
		Timestamp:    time.Now(),
	}
	line, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		return "", &RetryableError{cause: fmt.Errorf("failed to write notification file: %w", err)}
	}

	// A flat file has no server-assigned thread id the way Slack does, but
	// the coordinator still expects one back on the first event so it can
	// correlate later events for the same deployment in its own bookkeeping.
	if e.ThreadID != "" {
		return e.ThreadID, nil
	}
	return uuid.NewString(), nil
}
