package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// RetryConfig configures RetryWithBackoff
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	BackoffRate  float64
}

// DefaultRetryConfig returns 3 attempts starting at 1s, doubling, capped at 30s.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
		BackoffRate:  2.0,
	}
}

// RetryWithBackoff executes a function with exponential backoff retry logic.
// Errors for which IsRetryable is false are returned immediately and unwrapped.
//
// Context cancellation is respected at two points:
// 1. Before each attempt
// 2. During the sleep delay between attempts
//
// Returns the last error wrapped with retry count if all attempts fail.
func RetryWithBackoff[T any](ctx context.Context, cfg RetryConfig, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error
	delay := cfg.InitialDelay

	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if !IsRetryable(err) {
			return zero, err
		}

		lastErr = err

		// Don't sleep after last attempt
		if attempt < attempts-1 {
			slog.Debug("engine call failed, retrying", "attempt", attempt+1, "delay", delay, "error", err)
			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
				delay = time.Duration(float64(delay) * cfg.BackoffRate)
				if delay > cfg.MaxDelay {
					delay = cfg.MaxDelay
				}
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			}
		}
	}

	return zero, fmt.Errorf("failed after %d retries: %w", attempts, lastErr)
}
