package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"golang.org/x/sync/errgroup"
)

// runCancelable runs fn alongside a signal-watcher goroutine, two tasks
// sharing one cancellation. SIGINT or SIGTERM cancels fn's context; fn's
// own return (error or not) cancels the signal watcher in turn so
// runCancelable always returns once fn does.
//
// A SIGINT/SIGTERM is a normal way to stop a long-running command (heartbeat,
// start's wait), not a failure: if fn returns ctx.Err() because the signal
// fired, runCancelable reports success instead of propagating it as a CLI
// error.
func runCancelable(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var interrupted atomic.Bool

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		select {
		case <-sigCh:
			interrupted.Store(true)
			cancel()
		case <-gCtx.Done():
		}
		return nil
	})
	g.Go(func() error {
		defer cancel()
		return fn(gCtx)
	})

	err := g.Wait()
	if interrupted.Load() && errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
