// internal/cache/cache.go
//
// In-process query cache for backend reads. Each cached read is keyed
// by a structured tuple; any argument that affects the response is
// part of the key. Concurrent fetches for the same key collapse into
// one in-flight request, and mutations invalidate by key prefix.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Key is a structured cache key tuple, e.g. ["devices","detail","3",
// "telemetry","<args>"]. Equal tuples are cache-equivalent.
type Key []string

const keySep = "\x1f"

func (k Key) String() string {
	return strings.Join(k, keySep)
}

// HasPrefix reports whether k falls under prefix in the key hierarchy.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i, p := range prefix {
		if k[i] != p {
			return false
		}
	}
	return true
}

type entry struct {
	value     any
	fetchedAt time.Time
}

// Cache holds query results with a freshness TTL.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	keys    map[string]Key
	sf      singleflight.Group
	ttl     time.Duration
	logger  *logrus.Logger
}

// New creates a cache. ttl <= 0 means every Get refetches (but still
// deduplicates concurrent callers).
func New(ttl time.Duration, logger *logrus.Logger) *Cache {
	if logger == nil {
		logger = logrus.New()
	}
	return &Cache{
		entries: make(map[string]entry),
		keys:    make(map[string]Key),
		ttl:     ttl,
		logger:  logger,
	}
}

// Get returns the cached value for key when still fresh, otherwise
// fetches through a singleflight group: at most one fetch per key is
// in flight, and late-arriving callers share its result. A failed
// fetch caches nothing.
func Get[T any](ctx context.Context, c *Cache, key Key, fetch func(ctx context.Context) (T, error)) (T, error) {
	ks := key.String()

	c.mu.RLock()
	e, ok := c.entries[ks]
	c.mu.RUnlock()
	if ok && c.ttl > 0 && time.Since(e.fetchedAt) <= c.ttl {
		return e.value.(T), nil
	}

	v, err, shared := c.sf.Do(ks, func() (any, error) {
		val, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[ks] = entry{value: val, fetchedAt: time.Now()}
		c.keys[ks] = key
		c.mu.Unlock()
		return val, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	if shared {
		c.logger.WithField("key", ks).Debug("shared in-flight fetch")
	}
	return v.(T), nil
}

// peek returns the cached value regardless of freshness.
func (c *Cache) peek(key Key) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key.String()]
	if !ok {
		return nil, false
	}
	return e.value, true
}

// Invalidate drops every entry under prefix and returns how many were
// removed. The next read of an affected key refetches.
func (c *Cache) Invalidate(prefix Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for ks, k := range c.keys {
		if !k.HasPrefix(prefix) {
			continue
		}
		delete(c.entries, ks)
		delete(c.keys, ks)
		n++
	}
	if n > 0 {
		c.logger.WithFields(logrus.Fields{
			"prefix":  prefix.String(),
			"dropped": n,
		}).Debug("cache invalidated")
	}
	return n
}

// Len reports how many entries are cached.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
