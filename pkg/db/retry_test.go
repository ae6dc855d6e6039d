package db

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/farmlog-app/farmlog-backend/pkg/config"
)

func retryConfig(attempts int) config.DBConfig {
	return config.DBConfig{RetryAttempts: attempts, RetryBackoff: time.Millisecond}
}

func TestWithRetry_StopsOnSuccess(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), retryConfig(3), func(ctx context.Context) error {
		calls++
		if calls < 2 {
			return io.EOF
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestWithRetry_DoesNotRetryPermanentErrors(t *testing.T) {
	boom := errors.New("duplicate key value violates unique constraint")
	calls := 0
	err := WithRetry(context.Background(), retryConfig(3), func(ctx context.Context) error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected permanent error back, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single call, got %d", calls)
	}
}

func TestWithRetry_GivesUpAfterAttempts(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), retryConfig(3), func(ctx context.Context) error {
		calls++
		return io.EOF
	})
	if !errors.Is(err, io.EOF) {
		t.Fatalf("expected final transient error, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestWithRetry_HonorsContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := WithRetry(ctx, retryConfig(5), func(ctx context.Context) error {
		calls++
		cancel()
		return io.EOF
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call before cancel, got %d", calls)
	}
}

func TestIsTransient(t *testing.T) {
	if IsTransient(nil) {
		t.Fatal("nil is not transient")
	}
	if !IsTransient(io.EOF) {
		t.Fatal("io.EOF should be transient")
	}
	if !IsTransient(errors.New("dial tcp: connection refused")) {
		t.Fatal("connection refused should be transient")
	}
	if IsTransient(context.DeadlineExceeded) {
		t.Fatal("deadline exceeded should not be retried")
	}
	if IsTransient(errors.New("null value in column")) {
		t.Fatal("constraint errors are permanent")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	err := errors.New(`duplicate key value violates unique constraint "accounts_user_id_key"`)
	if !IsUniqueViolation(err, "") {
		t.Fatal("expected generic unique violation match")
	}
	if !IsUniqueViolation(err, "accounts_user_id_key") {
		t.Fatal("expected constraint-name match")
	}
	if IsUniqueViolation(err, "farms_pkey") {
		t.Fatal("unexpected match for different constraint")
	}
}
