package oui

import (
	"container/list"
	"sync"
)

// LookupCache memoizes prefix -> vendor resolutions with LRU eviction.
// Keys are normalized the same way the registry tables are, so a caller may
// pass "aa-bb-cc" and later hit with "AA:BB:CC". Hits and misses are
// counted so the resolver can report cache effectiveness.
type LookupCache struct {
	// Get promotes the entry in the recency list, which is a write, so a
	// plain Mutex instead of RWMutex.
	mu       sync.Mutex
	capacity int
	entries  map[string]*list.Element
	recency  *list.List // front = most recently used

	hits   uint64
	misses uint64
}

type lookupEntry struct {
	prefix string // normalized
	vendor string
}

// NewLookupCache builds a cache bounded to capacity entries. A prefix table
// has a few tens of thousands of rows at most, so even generous capacities
// stay cheap.
func NewLookupCache(capacity int) *LookupCache {
	if capacity <= 0 {
		capacity = 1024
	}
	return &LookupCache{
		capacity: capacity,
		entries:  make(map[string]*list.Element, capacity),
		recency:  list.New(),
	}
}

// Get returns the memoized vendor for a prefix and promotes it.
func (c *LookupCache) Get(prefix string) (string, bool) {
	key := normalizePrefix(prefix)

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		c.misses++
		return "", false
	}
	c.hits++
	c.recency.MoveToFront(elem)
	return elem.Value.(*lookupEntry).vendor, true
}

// Set records a resolution, evicting the least recently used entry when
// the cache is full. Setting an existing prefix updates it in place.
func (c *LookupCache) Set(prefix, vendor string) {
	key := normalizePrefix(prefix)

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.recency.MoveToFront(elem)
		elem.Value.(*lookupEntry).vendor = vendor
		return
	}

	c.entries[key] = c.recency.PushFront(&lookupEntry{prefix: key, vendor: vendor})
	for c.recency.Len() > c.capacity {
		oldest := c.recency.Back()
		c.recency.Remove(oldest)
		delete(c.entries, oldest.Value.(*lookupEntry).prefix)
	}
}

// Stats returns cumulative hit and miss counts since construction. Clear
// does not reset them.
func (c *LookupCache) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Len returns the current number of memoized prefixes.
func (c *LookupCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recency.Len()
}

// Clear drops all entries, for callers that just reloaded the registry
// underneath the cache.
func (c *LookupCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element, c.capacity)
	c.recency = list.New()
}
