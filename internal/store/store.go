package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/neondatabase/deployq/internal/core"
)

// Store is the Postgres-backed implementation of core.Store.
type Store struct {
	pool *pgxpool.Pool

	retryAttempts int
	retryBaseWait time.Duration
}

// Option configures a Store at Open time using the functional-options
// pattern (panicking on an invalid value rather than returning a
// construction-time error a caller might ignore).
type Option func(*Store)

// WithRetryPolicy overrides the default serialization-failure retry policy
// (3 attempts, 20ms base backoff, doubling). Panics if attempts <= 0 or
// baseWait <= 0.
func WithRetryPolicy(attempts int, baseWait time.Duration) Option {
	if attempts <= 0 {
		panic("store: WithRetryPolicy attempts must be positive")
	}
	if baseWait <= 0 {
		panic("store: WithRetryPolicy baseWait must be positive")
	}
	return func(s *Store) {
		s.retryAttempts = attempts
		s.retryBaseWait = baseWait
	}
}

// Open connects to databaseURL, applies any pending migrations, and returns
// a ready-to-use Store. Callers are responsible for calling Close.
func Open(ctx context.Context, databaseURL string, opts ...Option) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("store: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}

	result, err := applyMigrations(ctx, databaseURL)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	core.Logger().Info("migrations applied",
		zap.Int("applied", result.Applied),
		zap.String("checksum", result.Checksum))

	s := &Store{
		pool:          pool,
		retryAttempts: 3,
		retryBaseWait: 20 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}
