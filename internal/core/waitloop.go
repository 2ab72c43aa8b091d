package core

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// waitState tracks a WaitLoop's progress: polling until blockers clear (or
// a terminal condition fires), then done. Modeled as an atomic enum so
// State can be read without a lock from a concurrent observer (e.g. a CLI
// progress indicator).
type waitState uint32

const (
	waitPolling waitState = iota
	waitStarted
	waitCancelled
	waitErrored
)

// WaitLoop drives a single deployment from queued to running:
//
//	START -> POLL -> (empty blockers) -> MARK_STARTED -> DONE
//	          |  (non-empty) -> SLEEP -> POLL
//	          `- (target cancelled / fatal) -> CANCELLED / ERROR
//
// It has no wall-clock timeout; it is bounded only by ctx cancellation or
// the target being cancelled by another party.
type WaitLoop struct {
	coord    *Coordinator
	targetID int64
	cfg      Config

	state atomic.Uint32
}

// NewWaitLoop returns a WaitLoop for targetID, which must already be
// enqueued.
func NewWaitLoop(coord *Coordinator, targetID int64) *WaitLoop {
	return &WaitLoop{coord: coord, targetID: targetID, cfg: coord.Config()}
}

// State returns the loop's current state, safe to call from any goroutine.
func (w *WaitLoop) State() waitState { return waitState(w.state.Load()) }

// Run polls until the target is unblocked (returning nil after a
// successful MarkStarted), the target is cancelled externally (returning
// ErrCancelled), three consecutive heartbeat writes fail (returning
// ErrHeartbeatFailure), or ctx is cancelled (returning ctx.Err()).
func (w *WaitLoop) Run(ctx context.Context) error {
	hb := newBackgroundHeartbeat(w.coord.store, w.targetID, w.cfg.ConsecutiveFailureLimit)
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		blockers, err := w.coord.store.Blockers(ctx, w.targetID)
		if err != nil {
			w.state.Store(uint32(waitErrored))
			return err
		}

		if len(blockers) == 0 {
			if err := w.coord.MarkStarted(ctx, w.targetID); err != nil {
				if errors.Is(err, ErrInvariantViolation) || errors.Is(err, ErrTerminalState) {
					// Someone else mutated the target between our empty
					// Blockers read and MarkStarted — most likely an
					// external cancellation racing us. Confirm and report
					// the more specific outcome.
					if cancelled, cerr := w.targetCancelled(ctx); cerr == nil && cancelled {
						w.state.Store(uint32(waitCancelled))
						return ErrCancelled
					}
				}
				w.state.Store(uint32(waitErrored))
				return err
			}
			w.state.Store(uint32(waitStarted))
			return nil
		}

		reapStaleBlockers(ctx, w.coord, blockers, w.cfg.StaleThreshold)

		if tripped, err := hb.beat(ctx); err != nil {
			Logger().Warn("background heartbeat write failed",
				zap.Int64("deployment_id", w.targetID), zap.Error(err))
			if tripped {
				if _, cerr := w.coord.CancelByID(ctx, w.targetID, "heartbeat failure"); cerr != nil {
					Logger().Warn("failed to self-cancel after heartbeat failure",
						zap.Int64("deployment_id", w.targetID), zap.Error(cerr))
				}
				w.state.Store(uint32(waitErrored))
				return ErrHeartbeatFailure
			}
		}

		cancelled, err := w.targetCancelled(ctx)
		if err != nil {
			w.state.Store(uint32(waitErrored))
			return err
		}
		if cancelled {
			w.state.Store(uint32(waitCancelled))
			return ErrCancelled
		}

		select {
		case <-ctx.Done():
			w.state.Store(uint32(waitErrored))
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (w *WaitLoop) targetCancelled(ctx context.Context) (bool, error) {
	d, err := w.coord.store.Info(ctx, w.targetID)
	if err != nil {
		return false, err
	}
	return d.Cancellation != nil, nil
}
