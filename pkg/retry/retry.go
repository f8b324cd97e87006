// Package retry runs an operation with exponential backoff until it succeeds,
// fails permanently or the context ends.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Config controls the backoff.
type Config struct {
	MaxAttempts  int           // at least 1
	InitialDelay time.Duration // delay before the second attempt
	MaxDelay     time.Duration
	Multiplier   float64
	Jitter       bool // randomize each delay by up to 25%

	// OnRetry is called after each failed attempt that will be retried.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// Default returns the backoff used when connecting to external services.
func Default() Config {
	return Config{
		MaxAttempts:  5,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   2,
		Jitter:       true,
	}
}

// Permanent marks err as not worth retrying. Do returns the unwrapped err.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return backoff.Permanent(err)
}

// Do calls fn until it returns nil. Once MaxAttempts is reached the last
// error is returned.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context) error) error {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.Multiplier < 1 {
		cfg.Multiplier = 1
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = cfg.InitialDelay
	exp.Multiplier = cfg.Multiplier
	exp.MaxElapsedTime = 0
	exp.RandomizationFactor = 0
	if cfg.Jitter {
		exp.RandomizationFactor = 0.25
	}
	if cfg.MaxDelay > 0 {
		exp.MaxInterval = cfg.MaxDelay
	}

	b := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(cfg.MaxAttempts-1)), ctx)

	attempt := 0
	return backoff.RetryNotify(func() error {
		attempt++
		return fn(ctx)
	}, b, func(err error, wait time.Duration) {
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, wait)
		}
	})
}
