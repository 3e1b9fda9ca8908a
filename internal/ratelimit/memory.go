package ratelimit

import (
	"context"
	"sync"
	"time"
)

type slot struct {
	count     int64
	expiresAt time.Time
}

// MemoryCounter is an in-process counter store. Buckets expire lazily.
// Suitable for tests and single-process deployments without Redis.
type MemoryCounter struct {
	mu    sync.Mutex
	slots map[string]slot
	now   func() time.Time
}

// NewMemoryCounter creates an empty in-memory counter
func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{
		slots: make(map[string]slot),
		now:   time.Now,
	}
}

// Incr increments a bucket, creating it with the given TTL if absent
func (c *MemoryCounter) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	s, ok := c.slots[key]
	if !ok || !s.expiresAt.After(now) {
		s = slot{count: 0, expiresAt: now.Add(ttl)}
	}
	s.count++
	c.slots[key] = s
	return s.count, nil
}

// Get returns the current count for a bucket, zero if absent or expired
func (c *MemoryCounter) Get(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.slots[key]
	if !ok {
		return 0, nil
	}
	if !s.expiresAt.After(c.now()) {
		delete(c.slots, key)
		return 0, nil
	}
	return s.count, nil
}
