package reviewpress

import (
	"sync"
	"time"
)

// Cache is an in-process key-value cache organized into named regions,
// each an isolated key space with its own lock. Entries carry an absolute
// expiry and are evicted lazily on read; there is no background sweep and
// no size bound. Constructed once at startup and injected where needed.
type Cache struct {
	mu      sync.RWMutex
	regions map[string]*cacheRegion
	ttl     time.Duration
}

type cacheRegion struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	value  interface{}
	expiry time.Time
}

// NewCache creates a Cache whose entries expire after ttl.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		regions: make(map[string]*cacheRegion),
		ttl:     ttl,
	}
}

func (c *Cache) region(name string) *cacheRegion {
	c.mu.RLock()
	r, ok := c.regions[name]
	c.mu.RUnlock()
	if ok {
		return r
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok = c.regions[name]; ok {
		return r
	}
	r = &cacheRegion{entries: make(map[string]cacheEntry)}
	c.regions[name] = r
	return r
}

// Put stores value under (region, key) with the cache's default TTL.
// Concurrent puts to the same key are last-write-wins.
func (c *Cache) Put(region, key string, value interface{}) {
	c.PutTTL(region, key, value, c.ttl)
}

// PutTTL stores value with an explicit TTL.
func (c *Cache) PutTTL(region, key string, value interface{}, ttl time.Duration) {
	r := c.region(region)
	r.mu.Lock()
	r.entries[key] = cacheEntry{value: value, expiry: time.Now().Add(ttl)}
	r.mu.Unlock()
}

// Get returns the value stored under (region, key). An entry past its
// expiry is evicted as a side effect and reported as a miss.
func (c *Cache) Get(region, key string) (interface{}, bool) {
	r := c.region(region)
	r.mu.RLock()
	e, ok := r.entries[key]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiry) {
		r.mu.Lock()
		// Re-check under the write lock: a fresh Put may have raced in.
		if cur, ok := r.entries[key]; ok && time.Now().After(cur.expiry) {
			delete(r.entries, key)
		}
		r.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

// Evict removes a single entry; no-op if absent.
func (c *Cache) Evict(region, key string) {
	r := c.region(region)
	r.mu.Lock()
	delete(r.entries, key)
	r.mu.Unlock()
}

// EvictRegion clears every entry in a region.
func (c *Cache) EvictRegion(region string) {
	r := c.region(region)
	r.mu.Lock()
	r.entries = make(map[string]cacheEntry)
	r.mu.Unlock()
}

// EvictAll clears every region. Used by the cache control endpoint to force
// repopulation from disk on the next read.
func (c *Cache) EvictAll() {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, r := range c.regions {
		r.mu.Lock()
		r.entries = make(map[string]cacheEntry)
		r.mu.Unlock()
	}
}

// Regions returns the names of all regions created so far.
func (c *Cache) Regions() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.regions))
	for name := range c.regions {
		names = append(names, name)
	}
	return names
}
