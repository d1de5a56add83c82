package reliability

import (
	"context"
	"errors"
	"time"
)

// IsRetryableHTTPStatus classifies upstream statuses worth another attempt.
func IsRetryableHTTPStatus(code int) bool {
	switch code {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

// ExponentialBackoff computes a deterministic capped backoff duration.
func ExponentialBackoff(attempt int, base, cap time.Duration) time.Duration {
	if attempt <= 0 {
		return base
	}
	d := base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= cap {
			return cap
		}
	}
	return d
}

// RetryableError marks an error as safe to retry.
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string { return e.Err.Error() }

func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err so Do will try again.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// Do runs fn up to attempts times, sleeping with capped exponential backoff
// between tries. Only errors wrapped with Retryable are retried.
func Do(ctx context.Context, attempts int, base, cap time.Duration, fn func(ctx context.Context) error) error {
	if attempts <= 0 {
		attempts = 1
	}
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		var re *RetryableError
		if !errors.As(err, &re) || attempt == attempts-1 {
			break
		}
		timer := time.NewTimer(ExponentialBackoff(attempt, base, cap))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	var re *RetryableError
	if errors.As(err, &re) {
		return re.Err
	}
	return err
}
