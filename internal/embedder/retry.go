package embedder

import (
	"context"
	"time"
)

// RetryConfig configures linear backoff retry behavior: attempt n waits
// BaseDelay*n before retrying.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// DefaultRetryConfig returns the default retry policy.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: MaxRetries,
		BaseDelay:  time.Duration(BaseDelayMs) * time.Millisecond,
	}
}

// retryLinear executes fn up to config.MaxRetries times, waiting
// BaseDelay multiplied by the attempt number between failures. The wait
// is a non-blocking select so context cancellation is honored
// immediately. On exhaustion the last error is returned.
func retryLinear[T any](ctx context.Context, config RetryConfig, fn func() (T, error)) (T, error) {
	var lastErr error
	var zero T

	attempts := config.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		if attempt < attempts {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(config.BaseDelay * time.Duration(attempt)):
			}
		}
	}

	return zero, lastErr
}
