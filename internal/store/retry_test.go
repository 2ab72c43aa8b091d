package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/neondatabase/deployq/internal/core"
)

func TestIsRetryable(t *testing.T) {
	tests := map[string]struct {
		err  error
		want bool
	}{
		"serialization failure": {&pgconn.PgError{Code: pgCodeSerializationFailure}, true},
		"deadlock detected":     {&pgconn.PgError{Code: pgCodeDeadlockDetected}, true},
		"unique violation":      {&pgconn.PgError{Code: pgCodeUniqueViolation}, false},
		"wrapped serialization": {fmt.Errorf("query: %w", &pgconn.PgError{Code: pgCodeSerializationFailure}), true},
		"non-pg error":          {errors.New("connection reset"), false},
		"nil":                   {nil, false},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := isRetryable(tc.err); got != tc.want {
				t.Errorf("isRetryable(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestMapError(t *testing.T) {
	tests := map[string]struct {
		err  error
		want error
	}{
		"nil passes through": {nil, nil},
		"unique violation maps to invariant violation": {
			&pgconn.PgError{Code: pgCodeUniqueViolation}, core.ErrInvariantViolation,
		},
		"terminal state trigger message maps to terminal state": {
			&pgconn.PgError{Code: "P0001", Message: terminalStateMessage}, core.ErrTerminalState,
		},
		"other guard violation maps to invariant violation": {
			&pgconn.PgError{Code: "P0001", Message: "cannot mutate frozen column"}, core.ErrInvariantViolation,
		},
		"unrecognized error wraps as store unavailable": {
			errors.New("connection reset"), core.ErrStoreUnavailable,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got := mapError(tc.err)
			if tc.want == nil {
				if got != nil {
					t.Errorf("mapError(nil) = %v, want nil", got)
				}
				return
			}
			if !errors.Is(got, tc.want) {
				t.Errorf("mapError(%v) = %v, want errors.Is match for %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestMapError_PreservesUnderlyingCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	got := mapError(cause)
	if !errors.Is(got, cause) {
		t.Errorf("mapError result does not unwrap to the original cause: %v", got)
	}
}

func TestStore_WithRetry_RetriesTransientThenSucceeds(t *testing.T) {
	s := &Store{retryAttempts: 3, retryBaseWait: time.Millisecond}

	attempts := 0
	err := s.withRetry(context.Background(), func(context.Context) error {
		attempts++
		if attempts < 3 {
			return &pgconn.PgError{Code: pgCodeSerializationFailure}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("withRetry: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestStore_WithRetry_GivesUpAfterRetryAttempts(t *testing.T) {
	s := &Store{retryAttempts: 2, retryBaseWait: time.Millisecond}

	attempts := 0
	err := s.withRetry(context.Background(), func(context.Context) error {
		attempts++
		return &pgconn.PgError{Code: pgCodeSerializationFailure}
	})
	if err == nil {
		t.Fatal("expected an error after exhausting retry attempts")
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestStore_WithRetry_DoesNotRetryNonTransientError(t *testing.T) {
	s := &Store{retryAttempts: 5, retryBaseWait: time.Millisecond}

	attempts := 0
	wantErr := &pgconn.PgError{Code: pgCodeUniqueViolation}
	err := s.withRetry(context.Background(), func(context.Context) error {
		attempts++
		return wantErr
	})
	if !errors.Is(err, wantErr) && err != error(wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (non-transient errors must not be retried)", attempts)
	}
}

func TestStore_WithRetry_StopsOnContextCancellation(t *testing.T) {
	s := &Store{retryAttempts: 5, retryBaseWait: 50 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	done := make(chan error, 1)
	go func() {
		done <- s.withRetry(ctx, func(context.Context) error {
			attempts++
			return &pgconn.PgError{Code: pgCodeDeadlockDetected}
		})
	}()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("withRetry did not return after context cancellation")
	}
}
