package scenecache

import (
	"context"
	"sync"
	"time"

	"github.com/netscenehq/netscene/internal/core/domain"
	"github.com/netscenehq/netscene/internal/telemetry"
	"golang.org/x/sync/singleflight"
)

// ComputeFunc produces a scene on a cache miss.
type ComputeFunc func(ctx context.Context) (domain.Scene, error)

type entry struct {
	scene     domain.Scene
	createdAt time.Time
}

// Cache memoizes normalized scenes by fingerprint with TTL expiry and
// single-flight computation: concurrent callers for the same fingerprint
// share one in-flight computation instead of duplicating upstream calls.
// Expired entries are lazily replaced on access, never swept.
type Cache struct {
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[string]entry
	group   singleflight.Group
	now     func() time.Time
}

// New creates a cache with the given TTL.
func New(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the cached scene for a fingerprint if still fresh.
// A miss is a normal outcome, not an error.
func (c *Cache) Get(fp string) (domain.Scene, bool) {
	s, ok := c.lookup(fp)
	if ok {
		telemetry.SceneCacheHits.WithLabelValues("hit").Inc()
	} else {
		telemetry.SceneCacheHits.WithLabelValues("miss").Inc()
	}
	return s, ok
}

// GetOrCompute returns the cached scene when fresh, otherwise invokes
// compute and stores its result. Stored scenes are returned as read-only
// values; callers must not mutate them (clone first, see Scene.Clone).
func (c *Cache) GetOrCompute(ctx context.Context, fp string, compute ComputeFunc) (domain.Scene, error) {
	if s, ok := c.lookup(fp); ok {
		telemetry.SceneCacheHits.WithLabelValues("hit").Inc()
		return s, nil
	}

	v, err, shared := c.group.Do(fp, func() (interface{}, error) {
		// Another caller may have completed while we queued.
		if s, ok := c.lookup(fp); ok {
			return s, nil
		}
		telemetry.SceneCacheHits.WithLabelValues("miss").Inc()

		s, err := compute(ctx)
		if err != nil {
			return domain.Scene{}, err
		}
		c.store(fp, s)
		return s, nil
	})
	if err != nil {
		return domain.Scene{}, err
	}
	if shared {
		telemetry.SceneCacheHits.WithLabelValues("shared").Inc()
	}
	return v.(domain.Scene), nil
}

// Put stores a scene computed outside the cache, e.g. by a forced refresh.
func (c *Cache) Put(fp string, s domain.Scene) {
	c.store(fp, s)
}

// Invalidate drops one fingerprint.
func (c *Cache) Invalidate(fp string) {
	c.mu.Lock()
	delete(c.entries, fp)
	c.mu.Unlock()
}

// InvalidateAll wipes the cache.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// Len returns the number of entries, including not-yet-replaced stale ones.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) lookup(fp string) (domain.Scene, bool) {
	c.mu.RLock()
	e, ok := c.entries[fp]
	c.mu.RUnlock()
	if !ok {
		return domain.Scene{}, false
	}
	if c.ttl > 0 && c.now().Sub(e.createdAt) > c.ttl {
		telemetry.SceneCacheHits.WithLabelValues("stale").Inc()
		return domain.Scene{}, false
	}
	return e.scene, true
}

func (c *Cache) store(fp string, s domain.Scene) {
	c.mu.Lock()
	c.entries[fp] = entry{scene: s, createdAt: c.now()}
	c.mu.Unlock()
}
