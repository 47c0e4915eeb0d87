// Package retry provides retry functionality with exponential backoff and jitter.
// Used by the network-backed storage adapters and the Telegram notifier.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// PermanentError marks an error that must not be retried.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent wraps err so that Do returns it immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// isPermanent reports whether err was wrapped with Permanent.
func isPermanent(err error) bool {
	var permanentErr *PermanentError
	return errors.As(err, &permanentErr)
}

// Config holds retry configuration.
type Config struct {
	// MaxAttempts is the maximum number of attempts, including the first.
	// Default: 3
	MaxAttempts int

	// InitialDelay is the delay before the first retry.
	// Default: 50ms
	InitialDelay time.Duration

	// MaxDelay caps the delay between retries.
	// Default: 1s
	MaxDelay time.Duration

	// Multiplier is the backoff growth factor. Default: 2.0
	Multiplier float64

	// JitterFactor adds +/- randomness to delays, 0.0 to 1.0. Default: 0.05
	JitterFactor float64

	// OnRetry is called before each retry attempt.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// DefaultConfig returns a Config tuned for store round trips.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: 50 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.05,
	}
}

// Option is a functional option for configuring retries.
type Option func(*Config)

// WithMaxAttempts sets the maximum number of attempts.
func WithMaxAttempts(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxAttempts = n
		}
	}
}

// WithInitialDelay sets the delay before the first retry.
func WithInitialDelay(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.InitialDelay = d
		}
	}
}

// WithMaxDelay caps the delay between retries.
func WithMaxDelay(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.MaxDelay = d
		}
	}
}

// WithJitter sets the jitter factor.
func WithJitter(j float64) Option {
	return func(c *Config) {
		if j >= 0 && j <= 1.0 {
			c.JitterFactor = j
		}
	}
}

// WithOnRetry sets a callback invoked before each retry.
func WithOnRetry(fn func(attempt int, err error, delay time.Duration)) Option {
	return func(c *Config) {
		c.OnRetry = fn
	}
}

// Retrier runs operations with exponential backoff.
type Retrier struct {
	config Config
}

// New creates a Retrier with the given options applied over DefaultConfig.
func New(opts ...Option) *Retrier {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	return &Retrier{config: config}
}

// Do executes operation until it succeeds, returns a permanent error, the
// context ends, or attempts run out. Context errors are never retried.
func (r *Retrier) Do(ctx context.Context, operation func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return lastErr
			}
			return err
		}

		err := operation(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if isPermanent(err) {
			return errors.Unwrap(err)
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if attempt == r.config.MaxAttempts {
			return err
		}

		delay := r.delay(attempt)
		if r.config.OnRetry != nil {
			r.config.OnRetry(attempt, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return lastErr
		case <-timer.C:
		}
	}

	return lastErr
}

// delay computes initialDelay * multiplier^(attempt-1), capped and jittered.
func (r *Retrier) delay(attempt int) time.Duration {
	base := float64(r.config.InitialDelay) * math.Pow(r.config.Multiplier, float64(attempt-1))
	if base > float64(r.config.MaxDelay) {
		base = float64(r.config.MaxDelay)
	}
	if r.config.JitterFactor > 0 {
		base += base * r.config.JitterFactor * (rand.Float64()*2 - 1)
	}
	if base < 0 {
		base = 0
	}
	return time.Duration(base)
}

// DoWithData is a helper for operations that return data.
func DoWithData[T any](ctx context.Context, r *Retrier, operation func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := r.Do(ctx, func(ctx context.Context) error {
		var opErr error
		result, opErr = operation(ctx)
		return opErr
	})
	return result, err
}
