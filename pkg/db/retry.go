package db

import (
	"context"
	"time"

	"github.com/farmlog-app/farmlog-backend/pkg/config"
)

// WithRetry runs fn up to cfg.RetryAttempts times, sleeping cfg.RetryBackoff
// between attempts, but only while the failure is transient. Context
// cancellation stops the loop immediately.
func WithRetry(ctx context.Context, cfg config.DBConfig, fn func(ctx context.Context) error) error {
	attempts := cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn(ctx)
		if err == nil || !IsTransient(err) {
			return err
		}
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(cfg.RetryBackoff):
		}
	}
	return err
}
