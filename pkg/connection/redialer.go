package connection

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Redialer errors.
var (
	ErrAttemptsExhausted = errors.New("dial attempts exhausted")
)

// DialFunc attempts one connection establishment.
type DialFunc func(ctx context.Context) error

// RedialerConfig configures a Redialer.
type RedialerConfig struct {
	// MaxAttempts bounds how many dials are tried before giving up
	// (default: 1, no retry).
	MaxAttempts int

	// Backoff configures the delay between attempts. Zero values select
	// the package defaults.
	Backoff BackoffConfig

	// OnAttempt is called before each dial with the 1-based attempt number.
	OnAttempt func(attempt int)

	// OnRetry is called after a failed dial with the error and the delay
	// before the next attempt.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Redialer wraps a dial function with bounded attempts and exponential
// backoff between them.
type Redialer struct {
	config  RedialerConfig
	backoff *Backoff
}

// NewRedialer creates a redialer for the given config.
func NewRedialer(config RedialerConfig) *Redialer {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 1
	}
	return &Redialer{
		config:  config,
		backoff: NewBackoffWithConfig(config.Backoff),
	}
}

// Dial runs fn until it succeeds, the attempt budget is exhausted, or ctx is
// canceled. The backoff resets on success, so a redialer is reusable across
// runs. The returned error wraps the last dial error.
func (r *Redialer) Dial(ctx context.Context, fn DialFunc) error {
	var lastErr error

	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if r.config.OnAttempt != nil {
			r.config.OnAttempt(attempt)
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			r.backoff.Reset()
			return nil
		}

		if attempt == r.config.MaxAttempts {
			break
		}

		delay := r.backoff.Next()
		if r.config.OnRetry != nil {
			r.config.OnRetry(attempt, lastErr, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrAttemptsExhausted, r.config.MaxAttempts, lastErr)
}
