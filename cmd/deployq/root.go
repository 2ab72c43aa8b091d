package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/neondatabase/deployq"
)

// newRootCmd builds the deployq command tree. Every leaf command's RunE
// opens its own Client against DATABASE_URL and closes it before
// returning, since each CLI invocation is a fresh process with no shared
// state across commands — all coordination happens through the store.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "deployq",
		Short:         "Coordinate concurrent deployments across environments, regions, and cells",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.AddCommand(
		newStartCmd(),
		newFinishCmd(),
		newCancelCmd(),
		newInfoCmd(),
		newListCmd(),
		newHeartbeatCmd(),
	)
	return root
}

// newLogger builds a zap logger from LOG_LEVEL (default "info"), following
// the same package-level SetLogger convention internal/core exposes.
func newLogger() (*zap.Logger, error) {
	levelStr := os.Getenv("LOG_LEVEL")
	if levelStr == "" {
		levelStr = "info"
	}
	var level zapcore.Level
	if err := level.Set(levelStr); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", levelStr, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// newClient reads DATABASE_URL and returns a connected deployq.Client with
// logging configured from LOG_LEVEL.
func newClient(ctx context.Context) (deployq.Client, error) {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL must be set")
	}

	logger, err := newLogger()
	if err != nil {
		return nil, err
	}
	deployq.SetLogger(logger)

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return deployq.New(connectCtx, databaseURL)
}
