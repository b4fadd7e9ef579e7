package utils

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// RetryConfig holds the parameters for the retry strategy.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	// Jitter adds a random 0..BaseDelay spread on top of each delay so
	// repeated attempts against the same host don't land on a fixed cadence.
	Jitter bool
	Logger *Logger
}

// Do executes fn with exponential back-off retry logic. Once ctx is done the
// loop stops: no further attempts are made and any pending back-off wait is
// abandoned.
func (r *RetryConfig) Do(ctx context.Context, operationName string, fn func() error) error {
	var lastErr error
	delay := r.BaseDelay

	for attempt := 1; attempt <= r.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if ctx.Err() != nil {
			return fmt.Errorf("%s abandoned after %d attempts: %w", operationName, attempt, lastErr)
		}

		if attempt < r.MaxAttempts {
			wait := delay
			if r.Jitter && r.BaseDelay > 0 {
				wait += time.Duration(rand.Int63n(int64(r.BaseDelay)))
			}
			r.Logger.Warn("[retry] %s failed (attempt %d/%d): %v — retrying in %v",
				operationName, attempt, r.MaxAttempts, lastErr, wait)

			select {
			case <-ctx.Done():
				return fmt.Errorf("%s cancelled during back-off after %d attempts: %w",
					operationName, attempt, lastErr)
			case <-time.After(wait):
			}
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, r.MaxAttempts, lastErr)
}
