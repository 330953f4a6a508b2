package scenecache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/netscenehq/netscene/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint_DiffersPerHost(t *testing.T) {
	a := Fingerprint(Params{Host: "controller-x.local", Site: "default", Variant: "raw"})
	b := Fingerprint(Params{Host: "controller-y.local", Site: "default", Variant: "raw"})
	assert.NotEqual(t, a, b, "different hosts must never share a fingerprint")
}

func TestFingerprint_OptionOrderIrrelevant(t *testing.T) {
	a := Fingerprint(Params{Host: "h", Options: map[string]string{"a": "1", "b": "2"}})
	b := Fingerprint(Params{Host: "h", Options: map[string]string{"b": "2", "a": "1"}})
	assert.Equal(t, a, b)
}

func TestFingerprint_NoConcatenationCollision(t *testing.T) {
	a := Fingerprint(Params{Host: "ab", Site: "c"})
	b := Fingerprint(Params{Host: "a", Site: "bc"})
	assert.NotEqual(t, a, b)
}

func TestCache_GetOrCompute(t *testing.T) {
	c := New(time.Minute)
	var calls int32

	compute := func(ctx context.Context) (domain.Scene, error) {
		atomic.AddInt32(&calls, 1)
		return domain.Scene{Devices: []domain.Device{{ID: "dev_1"}}}, nil
	}

	fp := Fingerprint(Params{Host: "h"})
	first, err := c.GetOrCompute(context.Background(), fp, compute)
	require.NoError(t, err)

	second, err := c.GetOrCompute(context.Background(), fp, compute)
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "second call must be a cache hit")
	assert.Equal(t, first, second)
}

func TestCache_TTLExpiryTriggersRecompute(t *testing.T) {
	c := New(time.Minute)
	now := time.Now()
	c.now = func() time.Time { return now }

	var calls int32
	compute := func(ctx context.Context) (domain.Scene, error) {
		atomic.AddInt32(&calls, 1)
		return domain.Scene{}, nil
	}

	fp := "fp"
	_, err := c.GetOrCompute(context.Background(), fp, compute)
	require.NoError(t, err)

	// Advance past the TTL: next access recomputes lazily.
	now = now.Add(2 * time.Minute)
	_, err = c.GetOrCompute(context.Background(), fp, compute)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCache_SingleFlightSharesComputation(t *testing.T) {
	c := New(time.Minute)
	var calls int32
	release := make(chan struct{})

	compute := func(ctx context.Context) (domain.Scene, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return domain.Scene{}, nil
	}

	const workers = 8
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := c.GetOrCompute(context.Background(), "same-fp", compute)
			assert.NoError(t, err)
		}()
	}

	// Let the in-flight computation finish once all callers queued.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls),
		"concurrent identical requests must share one computation")
}

func TestCache_ErrorsAreNotCached(t *testing.T) {
	c := New(time.Minute)
	var calls int32

	failing := func(ctx context.Context) (domain.Scene, error) {
		atomic.AddInt32(&calls, 1)
		return domain.Scene{}, assert.AnError
	}

	_, err := c.GetOrCompute(context.Background(), "fp", failing)
	require.Error(t, err)

	_, err = c.GetOrCompute(context.Background(), "fp", failing)
	require.Error(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCache_GetAndInvalidate(t *testing.T) {
	c := New(time.Minute)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.store("fp", domain.Scene{Enhanced: true})
	s, ok := c.Get("fp")
	require.True(t, ok)
	assert.True(t, s.Enhanced)

	c.Invalidate("fp")
	_, ok = c.Get("fp")
	assert.False(t, ok)
}
