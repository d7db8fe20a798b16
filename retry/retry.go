// Package retry applies an explicit retry policy to fallible operations.
// Callers hold the policy as a value instead of scattering ad-hoc retry loops
// around network calls.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy describes how an operation is retried: how many attempts, the base
// of the quadratic backoff, and which errors are worth retrying at all.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	// Retryable reports whether an error should be retried. A nil func
	// treats every error as retryable.
	Retryable func(error) bool
}

// Do runs op until it succeeds, the policy is exhausted, or ctx is done.
// Backoff before attempt n (1-based) is n²×BaseDelay. The last error is
// returned wrapped with the attempt count.
func Do(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if attempt > 1 {
			backoff := time.Duration(attempt*attempt) * p.BaseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(lastErr) {
			return lastErr
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return fmt.Errorf("after %d attempts: %w", p.MaxAttempts, lastErr)
}
