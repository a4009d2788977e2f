// Package retry wraps network calls with bounded exponential backoff.
package retry

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Options bound the retry behavior. Zero values take the defaults below.
type Options struct {
	MaxRetries uint64        // additional attempts after the first
	BaseDelay  time.Duration // first retry delay, doubled per attempt
	MaxDelay   time.Duration // delay cap
	Logger     *slog.Logger
}

const (
	defaultMaxRetries = 3
	defaultBaseDelay  = 2 * time.Second
	defaultMaxDelay   = 60 * time.Second
)

// Permanent marks an error as non-retryable: Do propagates it immediately.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do runs op, retrying with delay min(base*2^attempt, max) up to MaxRetries
// additional times. Errors wrapped with Permanent propagate without retry;
// exhausting retries returns the final error. Each retry logs a warning,
// final failure logs an error.
func Do(ctx context.Context, name string, op func() error, opts Options) error {
	if opts.MaxRetries == 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	if opts.BaseDelay == 0 {
		opts.BaseDelay = defaultBaseDelay
	}
	if opts.MaxDelay == 0 {
		opts.MaxDelay = defaultMaxDelay
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = opts.BaseDelay
	expo.MaxInterval = opts.MaxDelay
	expo.Multiplier = 2
	expo.RandomizationFactor = 0
	expo.MaxElapsedTime = 0

	attempt := 0
	notify := func(err error, delay time.Duration) {
		attempt++
		if opts.Logger != nil {
			opts.Logger.Warn("attempt failed, retrying",
				"op", name, "attempt", attempt, "delay", delay, "error", err)
		}
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(expo, opts.MaxRetries), ctx)
	err := backoff.RetryNotify(op, policy, notify)
	if err != nil && opts.Logger != nil {
		opts.Logger.Error("failed after retries", "op", name, "retries", opts.MaxRetries, "error", err)
	}
	return err
}
