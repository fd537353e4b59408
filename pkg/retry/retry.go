// Package retry provides the bounded exponential backoff policy shared by
// metadata extraction and compliance evaluation.
package retry

import (
	"context"
	"log/slog"
	"time"
)

// Policy retries an operation with exponential backoff. An attempt is
// retried only when Retryable classifies its error as transient; any other
// error is returned to the caller immediately.
type Policy struct {
	// MaxAttempts is the total number of attempts (first try included)
	MaxAttempts int

	// BaseDelay is the delay before the second attempt; it doubles on
	// every subsequent attempt
	BaseDelay time.Duration

	// Retryable classifies errors. A nil Retryable retries nothing.
	Retryable func(error) bool
}

// Do runs op until it succeeds, returns a non-retryable error, or exhausts
// MaxAttempts. Backoff sleeps respect context cancellation. The error of
// the last attempt is returned on exhaustion; callers distinguish
// exhaustion from permanent failure by classifying the returned error.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := p.BaseDelay << (attempt - 1)
			slog.Warn("transient failure, backing off",
				"attempt", attempt,
				"max_attempts", p.MaxAttempts,
				"delay", delay,
				"error", lastErr,
			)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		if p.Retryable == nil || !p.Retryable(lastErr) {
			return lastErr
		}
	}

	return lastErr
}
