// Package ratelimit throttles calls to named external sources.
package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"TrackerPipeline/internal/config"
)

// Limiter serializes calls per source so that no sliding window of a
// source's configured duration ever holds more calls than its quota.
// Burst is pinned to 1: with limit quota/window, consecutive permits are
// spaced at least window/quota apart, which bounds any window at the quota.
type Limiter struct {
	limiters map[string]*rate.Limiter
	logger   *slog.Logger
}

// New builds per-source limiters from quota configuration. Sources without
// a quota are unthrottled.
func New(quotas map[string]config.Quota, logger *slog.Logger) *Limiter {
	limiters := make(map[string]*rate.Limiter, len(quotas))
	for source, quota := range quotas {
		calls, window := quota.Window()
		if calls <= 0 {
			continue
		}
		limiters[source] = rate.NewLimiter(limitFor(calls, window), 1)
	}
	return &Limiter{limiters: limiters, logger: logger}
}

// Wait blocks until a call to source is permitted, or the context ends.
// Unconfigured sources return immediately.
func (l *Limiter) Wait(ctx context.Context, source string) error {
	limiter, ok := l.limiters[source]
	if !ok {
		return nil
	}
	if l.logger != nil && limiter.Tokens() < 1 {
		l.logger.Debug("rate limit reached, waiting", "source", source)
	}
	return limiter.Wait(ctx)
}

func limitFor(calls int, window time.Duration) rate.Limit {
	return rate.Limit(float64(calls) / window.Seconds())
}
