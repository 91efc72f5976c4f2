package cache

import (
	"container/list"
	"sync"
	"time"
)

// cacheEntry holds a cached value with its timestamp.
type cacheEntry struct {
	key       string
	value     string
	timestamp time.Time
}

// InMemoryCache is a thread-safe in-memory cache with TTL support and an
// optional entry limit. When the limit is reached the oldest written entry
// is evicted first.
type InMemoryCache struct {
	cache      map[string]*list.Element
	order      *list.List // front = oldest write
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// MemoryOption configures an InMemoryCache.
type MemoryOption func(*InMemoryCache)

// WithMaxEntries caps the number of stored entries. Zero means unbounded.
func WithMaxEntries(n int) MemoryOption {
	return func(c *InMemoryCache) {
		if n > 0 {
			c.maxEntries = n
		}
	}
}

// NewInMemoryCache creates a new in-memory cache with the specified TTL.
// If ttlSeconds is 0 or negative, entries never expire.
func NewInMemoryCache(ttlSeconds int, opts ...MemoryOption) *InMemoryCache {
	ttl := time.Duration(ttlSeconds) * time.Second
	if ttlSeconds <= 0 {
		ttl = 0 // No expiration
	}
	c := &InMemoryCache{
		cache: make(map[string]*list.Element),
		order: list.New(),
		ttl:   ttl,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get retrieves a value from the cache.
// Returns the value and true if found and not expired, empty string and false otherwise.
func (c *InMemoryCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.cache[key]
	if !ok {
		return "", false
	}

	entry := el.Value.(*cacheEntry)
	if c.expired(entry, c.now()) {
		c.removeElement(el)
		return "", false
	}

	return entry.value, true
}

// Set stores a value in the cache.
func (c *InMemoryCache) Set(key string, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if el, ok := c.cache[key]; ok {
		entry := el.Value.(*cacheEntry)
		entry.value = value
		entry.timestamp = now
		c.order.MoveToBack(el)
		return nil
	}

	if c.maxEntries > 0 {
		for c.order.Len() >= c.maxEntries {
			c.removeElement(c.order.Front())
		}
	}

	c.cache[key] = c.order.PushBack(&cacheEntry{key: key, value: value, timestamp: now})
	return nil
}

// Len returns the number of entries in the cache (including expired ones).
func (c *InMemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache)
}

// Clear removes all entries from the cache.
func (c *InMemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]*list.Element)
	c.order.Init()
}

// Entries returns all non-expired entries as key-value pairs.
func (c *InMemoryCache) Entries() (map[string]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make(map[string]string, len(c.cache))
	now := c.now()

	for key, el := range c.cache {
		entry := el.Value.(*cacheEntry)
		if c.expired(entry, now) {
			continue
		}
		result[key] = entry.value
	}

	return result, nil
}

// Purge drops expired entries and returns how many were removed. Entries
// are kept in write order, so only the expired prefix is visited.
func (c *InMemoryCache) Purge() (int64, error) {
	if c.ttl == 0 {
		return 0, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var n int64
	for el := c.order.Front(); el != nil && c.expired(el.Value.(*cacheEntry), now); el = c.order.Front() {
		c.removeElement(el)
		n++
	}
	return n, nil
}

func (c *InMemoryCache) expired(e *cacheEntry, now time.Time) bool {
	return c.ttl > 0 && now.Sub(e.timestamp) > c.ttl
}

// removeElement must be called with the lock held.
func (c *InMemoryCache) removeElement(el *list.Element) {
	entry := c.order.Remove(el).(*cacheEntry)
	delete(c.cache, entry.key)
}

var (
	_ ExportableCache = (*InMemoryCache)(nil)
	_ Purger          = (*InMemoryCache)(nil)
)
