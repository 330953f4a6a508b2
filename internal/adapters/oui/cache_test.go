package oui

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupCache_NormalizesPrefixes(t *testing.T) {
	cache := NewLookupCache(8)

	cache.Set("f0-9f-c2", "Ubiquiti Inc")

	vendor, ok := cache.Get("F0:9F:C2")
	require.True(t, ok, "dash-separated Set must satisfy colon-separated Get")
	assert.Equal(t, "Ubiquiti Inc", vendor)
}

func TestLookupCache_EvictsLeastRecentlyUsed(t *testing.T) {
	cache := NewLookupCache(3)
	cache.Set("00:00:01", "A")
	cache.Set("00:00:02", "B")
	cache.Set("00:00:03", "C")

	// Touch A so B becomes the eviction candidate.
	_, ok := cache.Get("00:00:01")
	require.True(t, ok)

	cache.Set("00:00:04", "D")

	_, ok = cache.Get("00:00:02")
	assert.False(t, ok, "least recently used entry should be evicted")
	_, ok = cache.Get("00:00:01")
	assert.True(t, ok)
	assert.Equal(t, 3, cache.Len())
}

func TestLookupCache_UpdateInPlace(t *testing.T) {
	cache := NewLookupCache(2)
	cache.Set("00:00:01", "Old Name")
	cache.Set("00:00:01", "New Name")

	vendor, ok := cache.Get("00:00:01")
	require.True(t, ok)
	assert.Equal(t, "New Name", vendor)
	assert.Equal(t, 1, cache.Len())
}

func TestLookupCache_Stats(t *testing.T) {
	cache := NewLookupCache(4)
	cache.Set("00:00:01", "A")

	cache.Get("00:00:01") // hit
	cache.Get("00:00:01") // hit
	cache.Get("ff:ff:ff") // miss

	hits, misses := cache.Stats()
	assert.Equal(t, uint64(2), hits)
	assert.Equal(t, uint64(1), misses)

	cache.Clear()
	assert.Equal(t, 0, cache.Len())
	hits, misses = cache.Stats()
	assert.Equal(t, uint64(2), hits, "counters survive Clear")
	assert.Equal(t, uint64(1), misses)
}

func TestLookupCache_ConcurrentPromotion(t *testing.T) {
	cache := NewLookupCache(64)
	for i := 0; i < 64; i++ {
		cache.Set(fmt.Sprintf("00:00:%02X", i), "Vendor")
	}

	// Get mutates the recency list, so hammer reads and writes together.
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				cache.Get(fmt.Sprintf("00:00:%02X", (g*i)%80))
				cache.Set(fmt.Sprintf("00:01:%02X", i%80), "Other")
			}
		}(g)
	}
	wg.Wait()

	assert.LessOrEqual(t, cache.Len(), 64)
}
