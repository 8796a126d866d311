package retry

import (
	"context"
	"errors"
	"time"

	"incuhub/pkg/apierr"
)

// Config defines retry behavior for a single invocation.
// All fields are optional; Normalize fills in defaults.
type Config struct {
	// MaxRetries is the number of retries after the initial attempt,
	// so at most MaxRetries+1 attempts are made.
	MaxRetries int
	// InitialDelay is the delay before the first retry.
	InitialDelay time.Duration
	// MaxDelay caps the exponential backoff growth.
	MaxDelay time.Duration
	// Multiplier is the exponential backoff multiplier (must be > 1).
	Multiplier float64
	// RetryableStatusCodes lists the HTTP status codes eligible for retry.
	// Errors without a discoverable status code are always retried unless
	// marked Permanent or caused by context cancellation.
	RetryableStatusCodes []int
	// OnRetry is called before each backoff sleep with the 1-based retry
	// number, the computed delay and the error that triggered the retry.
	// It runs synchronously between attempts, so keep it fast.
	OnRetry func(attempt int, delay time.Duration, err error)
	// Now returns current time (for testing, defaults to time.Now).
	Now func() time.Time
	// After creates a timer channel (for testing, defaults to time.After).
	After func(d time.Duration) <-chan time.Time

	statusSet map[int]struct{}
}

// DefaultConfig returns the configuration used across the admin client.
func DefaultConfig() Config {
	return Config{
		MaxRetries:           3,
		InitialDelay:         time.Second,
		MaxDelay:             10 * time.Second,
		Multiplier:           2.0,
		RetryableStatusCodes: []int{408, 429, 500, 502, 503, 504},
	}
}

// Normalize validates the configuration and fills in defaults for unset
// optional fields. Do and DoTracked call it on a copy, so a Config value
// shared between calls is never mutated.
func (c *Config) Normalize() error {
	if c.MaxRetries < 0 {
		return errors.New("retry: MaxRetries cannot be negative")
	}
	if c.InitialDelay < 0 {
		return errors.New("retry: InitialDelay cannot be negative")
	}
	if c.InitialDelay == 0 {
		c.InitialDelay = time.Second
	}
	if c.MaxDelay < 0 {
		return errors.New("retry: MaxDelay cannot be negative")
	}
	if c.MaxDelay == 0 {
		c.MaxDelay = 10 * time.Second
	}
	if c.InitialDelay > c.MaxDelay {
		return errors.New("retry: InitialDelay cannot be greater than MaxDelay")
	}
	if c.Multiplier == 0 {
		c.Multiplier = 2.0
	}
	if c.Multiplier <= 1.0 {
		return errors.New("retry: Multiplier must be greater than 1")
	}
	if c.RetryableStatusCodes == nil {
		c.RetryableStatusCodes = []int{408, 429, 500, 502, 503, 504}
	}
	c.statusSet = make(map[int]struct{}, len(c.RetryableStatusCodes))
	for _, code := range c.RetryableStatusCodes {
		c.statusSet[code] = struct{}{}
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.After == nil {
		c.After = time.After
	}
	return nil
}

// delay computes the backoff before the given 1-based retry:
// min(InitialDelay * Multiplier^(attempt-1), MaxDelay). Deterministic,
// no jitter.
func (c Config) delay(attempt int) time.Duration {
	d := c.InitialDelay
	for i := 1; i < attempt; i++ {
		if d >= c.MaxDelay {
			return c.MaxDelay
		}
		d = time.Duration(float64(d) * c.Multiplier)
	}
	if d > c.MaxDelay {
		return c.MaxDelay
	}
	return d
}

// retryable decides whether an error is worth another attempt. An error
// carrying a status code is retryable only when the code is in the
// configured set; an error without one is assumed to be a connectivity
// failure and retried, unless it was marked Permanent or came from a
// canceled context.
func (c Config) retryable(err error) bool {
	var pe *permanentError
	if errors.As(err, &pe) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if code, ok := apierr.StatusOf(err); ok {
		_, in := c.statusSet[code]
		return in
	}
	return true
}

// permanentError marks an error as non-retryable regardless of its shape.
type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so the executor never retries it.
// Returns nil for a nil err.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Operation is a retryable unit of work returning a value of type T.
type Operation[T any] func(ctx context.Context) (T, error)

// Do runs op with bounded retries and exponential backoff. On success it
// returns op's value immediately. On a non-retryable error, or once
// MaxRetries retries are exhausted, it returns the last error exactly as op
// produced it, so callers can still match on its status or category.
func Do[T any](ctx context.Context, cfg Config, op Operation[T]) (T, error) {
	var zero T
	c := cfg
	if err := c.Normalize(); err != nil {
		return zero, err
	}
	return run(ctx, c, op)
}

func run[T any](ctx context.Context, c Config, op Operation[T]) (T, error) {
	var zero T
	for retries := 0; ; retries++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		if retries >= c.MaxRetries || !c.retryable(err) {
			return zero, err
		}
		attempt := retries + 1
		d := c.delay(attempt)
		if c.OnRetry != nil {
			c.OnRetry(attempt, d, err)
		}
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-c.After(d):
		}
	}
}

// Result captures the outcome of a tracked invocation.
type Result[T any] struct {
	// Success is true when Data holds op's value.
	Success bool
	// Data is the value returned by the final successful attempt.
	Data T
	// Err is the final error when Success is false, unmodified.
	Err error
	// Attempts is the number of times the operation was invoked, at least 1.
	Attempts int
	// Elapsed is observed wall-clock time across all attempts, including
	// the operation's own latency, not the sum of requested backoff delays.
	Elapsed time.Duration
}

// DoTracked runs op like Do but captures the outcome instead of propagating
// it: the returned Result carries either the value or the final error along
// with attempt and timing telemetry. It never panics and never loses the
// original error.
func DoTracked[T any](ctx context.Context, cfg Config, op Operation[T]) Result[T] {
	c := cfg
	if err := c.Normalize(); err != nil {
		return Result[T]{Err: err, Attempts: 1}
	}
	attempts := 0
	counted := func(ctx context.Context) (T, error) {
		attempts++
		return op(ctx)
	}
	start := c.Now()
	v, err := run(ctx, c, counted)
	elapsed := c.Now().Sub(start)
	if attempts < 1 {
		attempts = 1
	}
	if err != nil {
		return Result[T]{Err: err, Attempts: attempts, Elapsed: elapsed}
	}
	return Result[T]{Success: true, Data: v, Attempts: attempts, Elapsed: elapsed}
}
