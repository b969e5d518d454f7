package core

// cache.go holds parsed imports between preview and confirm.
//
// The cache is the only mutable shared state in the package. Entries
// are addressed by an opaque token, live for a bounded TTL, and are
// consumed exactly once: a second confirm on the same token misses.

import (
	"sync"
	"time"
)

// Preview cache defaults, overridable through config.
const (
	DefaultPreviewTTL      = 15 * time.Minute
	DefaultPreviewCapacity = 64
)

type cacheEntry struct {
	parsed  *parsedImport
	expires time.Time
}

// previewCache is a mutex-guarded token store with TTL and a capacity
// bound. Expired entries are evicted lazily on insert and lookup; when
// the cache is full the entry closest to expiry is dropped to make
// room. Parsing always happens outside the critical section.
type previewCache struct {
	mu       sync.Mutex
	entries  map[string]cacheEntry
	ttl      time.Duration
	capacity int
	now      func() time.Time // stubbed in tests
}

func newPreviewCache(ttl time.Duration, capacity int) *previewCache {
	if ttl <= 0 {
		ttl = DefaultPreviewTTL
	}
	if capacity <= 0 {
		capacity = DefaultPreviewCapacity
	}
	return &previewCache{
		entries:  make(map[string]cacheEntry),
		ttl:      ttl,
		capacity: capacity,
		now:      time.Now,
	}
}

// put stores a parsed import under token.
func (c *previewCache) put(token string, parsed *parsedImport) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.evictExpired(now)

	if len(c.entries) >= c.capacity {
		oldest := ""
		var oldestExp time.Time
		for k, e := range c.entries {
			if oldest == "" || e.expires.Before(oldestExp) {
				oldest, oldestExp = k, e.expires
			}
		}
		delete(c.entries, oldest)
	}

	c.entries[token] = cacheEntry{parsed: parsed, expires: now.Add(c.ttl)}
}

// take removes and returns the entry for token. A miss means the token
// is unknown, expired, or was already consumed.
func (c *previewCache) take(token string) (*parsedImport, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.evictExpired(now)

	e, ok := c.entries[token]
	if !ok {
		return nil, false
	}
	delete(c.entries, token)
	return e.parsed, true
}

// restore puts a consumed entry back, used when a commit fails for a
// transient reason so the caller can retry without re-uploading.
func (c *previewCache) restore(token string, parsed *parsedImport) {
	c.put(token, parsed)
}

// evictExpired drops expired entries. Caller holds the lock.
func (c *previewCache) evictExpired(now time.Time) {
	for k, e := range c.entries {
		if !e.expires.After(now) {
			delete(c.entries, k)
		}
	}
}

func (c *previewCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
