package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// RateLimitError is returned by Allow once the quota for the current window
// is exhausted. The caller decides whether to retry after the window rolls
// over; the limiter never queues or backs off on its own.
type RateLimitError struct {
	Source string
	Limit  int
	Window time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s: %d requests per %s", e.Source, e.Limit, e.Window)
}

// Counter stores request counts keyed by window bucket. Implementations must
// expire a key once its TTL elapses.
type Counter interface {
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Get(ctx context.Context, key string) (int64, error)
}

// Limiter enforces an at-most-N-requests-per-window quota for one source.
// The bucket is the current time truncated to the window in UTC, so a 24h
// window counts per calendar day and a 60s window per wall-clock minute,
// with the same algorithm for both.
type Limiter struct {
	source  string
	limit   int
	window  time.Duration
	counter Counter
	now     func() time.Time
}

// NewLimiter creates a limiter for the named source
func NewLimiter(source string, limit int, window time.Duration, counter Counter) *Limiter {
	return &Limiter{
		source:  source,
		limit:   limit,
		window:  window,
		counter: counter,
		now:     time.Now,
	}
}

func (l *Limiter) bucketKey(now time.Time) (string, time.Duration) {
	bucket := now.UTC().Truncate(l.window)
	ttl := bucket.Add(l.window).Sub(now)
	return fmt.Sprintf("ratelimit:%s:%d", l.source, bucket.Unix()), ttl
}

// Allow reports whether another request may be made in the current window.
// Returns a *RateLimitError when the quota is exhausted.
func (l *Limiter) Allow(ctx context.Context) error {
	key, _ := l.bucketKey(l.now())

	count, err := l.counter.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to read rate limit counter: %w", err)
	}

	if count >= int64(l.limit) {
		return &RateLimitError{Source: l.source, Limit: l.limit, Window: l.window}
	}
	return nil
}

// Record increments the counter for the current window. The key expires at
// the window boundary.
func (l *Limiter) Record(ctx context.Context) error {
	key, ttl := l.bucketKey(l.now())
	if _, err := l.counter.Incr(ctx, key, ttl); err != nil {
		return fmt.Errorf("failed to increment rate limit counter: %w", err)
	}
	return nil
}

// Used returns the number of requests recorded in the current window
func (l *Limiter) Used(ctx context.Context) (int, error) {
	key, _ := l.bucketKey(l.now())
	count, err := l.counter.Get(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("failed to read rate limit counter: %w", err)
	}
	return int(count), nil
}

// Limit returns the configured per-window quota
func (l *Limiter) Limit() int {
	return l.limit
}

// Window returns the configured window duration
func (l *Limiter) Window() time.Duration {
	return l.window
}
