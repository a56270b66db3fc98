// Package cache provides a bounded, process-local cache whose entries expire
// after a fixed time-to-live.
package cache

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jonboulle/clockwork"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTL is a size-bounded LRU whose entries stop being returned once their TTL
// has elapsed. It is safe for concurrent use.
type TTL[V any] struct {
	mu    sync.Mutex
	lru   *lru.Cache[string, entry[V]]
	ttl   time.Duration
	clock clockwork.Clock
}

// New creates a cache holding at most size entries for ttl each.
// A nil clock uses the real clock.
func New[V any](size int, ttl time.Duration, clock clockwork.Clock) (*TTL[V], error) {
	l, err := lru.New[string, entry[V]](size)
	if err != nil {
		return nil, err
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &TTL[V]{lru: l, ttl: ttl, clock: clock}, nil
}

// Get returns the cached value for key. Expired entries are evicted and
// reported as misses.
func (c *TTL[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lru.Get(key)
	if !ok {
		var zero V
		return zero, false
	}
	if !c.clock.Now().Before(e.expiresAt) {
		c.lru.Remove(key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key for the configured TTL.
func (c *TTL[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(key, entry[V]{value: value, expiresAt: c.clock.Now().Add(c.ttl)})
}

// Delete removes key. Deleting a missing key is a no-op.
func (c *TTL[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Remove(key)
}

// Purge drops every entry.
func (c *TTL[V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}

// Len returns the number of stored entries, expired ones included.
func (c *TTL[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
