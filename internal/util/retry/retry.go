package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/util/wait"
)

// Config holds retry configuration.
type Config struct {
	Steps        int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// Option is a functional option for retry configuration.
type Option func(*Config)

func newConfig(opts []Option) *Config {
	cfg := &Config{
		Steps:        10,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	cfg.Steps = max(cfg.Steps, 1)
	return cfg
}

// backoff computes the growing delay. MaxDelay is applied by the caller:
// wait.Backoff zeroes its step budget once Cap is exceeded.
func (c *Config) backoff() wait.Backoff {
	return wait.Backoff{
		Duration: c.InitialDelay,
		Factor:   c.Multiplier,
		Steps:    c.Steps,
	}
}

func (c *Config) nextDelay(b *wait.Backoff) time.Duration {
	d := b.Step()
	if c.MaxDelay > 0 {
		d = min(d, c.MaxDelay)
	}
	return d
}

// Until calls condition up to Steps times until it reports done. Retryable
// errors are swallowed until the attempts run out; the last one is returned.
func Until(ctx context.Context, condition func(context.Context) (bool, error), opts ...Option) error {
	cfg := newConfig(opts)
	backoff := cfg.backoff()

	var lastErr error
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return interrupted(err, lastErr)
		}

		done, err := condition(ctx)
		switch {
		case err == nil && done:
			return nil
		case err != nil && !Retryable(err):
			return err
		case err != nil:
			lastErr = err
		}

		if attempt >= cfg.Steps {
			break
		}

		timer := time.NewTimer(cfg.nextDelay(&backoff))
		select {
		case <-ctx.Done():
			timer.Stop()
			return interrupted(ctx.Err(), lastErr)
		case <-timer.C:
		}
	}

	if lastErr != nil {
		return fmt.Errorf("gave up after %d attempts: %w", cfg.Steps, lastErr)
	}
	return fmt.Errorf("condition not met after %d attempts", cfg.Steps)
}

func interrupted(ctxErr, lastErr error) error {
	if lastErr != nil {
		return fmt.Errorf("interrupted: %w: %w", ctxErr, lastErr)
	}
	return fmt.Errorf("interrupted: %w", ctxErr)
}

// Do retries operation until it returns nil.
func Do(ctx context.Context, operation func(context.Context) error, opts ...Option) error {
	return Until(ctx, func(ctx context.Context) (bool, error) {
		if err := operation(ctx); err != nil {
			return false, err
		}
		return true, nil
	}, opts...)
}

// WithSteps sets the maximum number of attempts.
func WithSteps(n int) Option {
	return func(c *Config) {
		c.Steps = n
	}
}

// WithInitialDelay sets the initial delay between retries.
func WithInitialDelay(d time.Duration) Option {
	return func(c *Config) {
		c.InitialDelay = d
	}
}

// WithMaxDelay sets the maximum delay between retries.
func WithMaxDelay(d time.Duration) Option {
	return func(c *Config) {
		c.MaxDelay = d
	}
}

// WithMultiplier sets the backoff multiplier.
func WithMultiplier(m float64) Option {
	return func(c *Config) {
		c.Multiplier = m
	}
}

// FatalError wraps an error to mark it as fatal (non-retryable).
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	return e.Err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// Fatal marks an error as fatal (non-retryable).
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &FatalError{Err: err}
}

// IsFatal checks if an error is fatal (non-retryable).
func IsFatal(err error) bool {
	var fatalErr *FatalError
	return errors.As(err, &fatalErr)
}

// Retryable reports whether err may succeed on a later attempt. API status
// errors retry only for throttling, timeouts, conflicts and server faults;
// other errors (transport failures) always retry unless marked fatal.
func Retryable(err error) bool {
	if err == nil || IsFatal(err) {
		return false
	}

	var status apierrors.APIStatus
	if !errors.As(err, &status) {
		return true
	}

	return apierrors.IsTooManyRequests(err) ||
		apierrors.IsServerTimeout(err) ||
		apierrors.IsTimeout(err) ||
		apierrors.IsServiceUnavailable(err) ||
		apierrors.IsInternalError(err) ||
		apierrors.IsConflict(err)
}
