package oui

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingProvider records how many times it was queried.
type countingProvider struct {
	name   string
	vendor string
	err    error
	calls  int
}

func (p *countingProvider) Name() string { return p.name }

func (p *countingProvider) Lookup(ctx context.Context, mac MACAddress) (string, error) {
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	return p.vendor, nil
}

func (p *countingProvider) Close() error { return nil }

func TestChain_StaticShortCircuit(t *testing.T) {
	// A prefix present in the local table must never reach a network tier.
	remote := &countingProvider{name: "remote", vendor: "ShouldNotBeUsed"}
	chain := NewChain([]Provider{
		NewStaticProvider(map[string]string{"F0:9F:C2": "Ubiquiti Inc"}),
		remote,
	})

	vendor, err := chain.Lookup(context.Background(), MustParseMAC("f0:9f:c2:aa:bb:cc"))
	require.NoError(t, err)
	assert.Equal(t, "Ubiquiti Inc", vendor)
	assert.Equal(t, 0, remote.calls, "network tier must not be consulted for a local hit")
}

func TestChain_FallsThroughOnTransportError(t *testing.T) {
	broken := &countingProvider{name: "broken", err: &TransportError{Provider: "broken", Err: errors.New("boom")}}
	working := &countingProvider{name: "working", vendor: "Polycom"}
	chain := NewChain([]Provider{broken, working})

	vendor, err := chain.Lookup(context.Background(), MustParseMAC("00:04:f2:11:22:33"))
	require.NoError(t, err)
	assert.Equal(t, "Polycom", vendor)
	assert.Equal(t, 1, broken.calls)
	assert.Equal(t, 1, working.calls)
}

func TestChain_ExhaustionYieldsNotFound(t *testing.T) {
	a := &countingProvider{name: "a", err: ErrNotFound}
	b := &countingProvider{name: "b", err: &TransportError{Provider: "b", Err: errors.New("timeout")}}
	chain := NewChain([]Provider{a, b})

	_, err := chain.Lookup(context.Background(), MustParseMAC("de:ad:be:ef:00:01"))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
}

func TestChain_CachesSuccessfulLookups(t *testing.T) {
	remote := &countingProvider{name: "remote", vendor: "Axis Communications"}
	chain := NewChain([]Provider{remote}, WithCache(NewLookupCache(16)))

	mac := MustParseMAC("00:40:8c:01:02:03")
	for i := 0; i < 3; i++ {
		vendor, err := chain.Lookup(context.Background(), mac)
		require.NoError(t, err)
		assert.Equal(t, "Axis Communications", vendor)
	}
	assert.Equal(t, 1, remote.calls, "repeat lookups for the same prefix must hit the cache")
}

func TestChain_CancelledContextStopsIteration(t *testing.T) {
	first := &countingProvider{name: "first", err: ErrNotFound}
	second := &countingProvider{name: "second", vendor: "Never"}
	chain := NewChain([]Provider{first, second}, WithTierTimeout(time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := chain.Lookup(ctx, MustParseMAC("de:ad:be:ef:00:02"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, second.calls)
}

func TestChain_InvalidMAC(t *testing.T) {
	chain := NewChain([]Provider{NewStaticProvider(CommonOUIs)})
	_, err := chain.Lookup(context.Background(), MACAddress{})
	assert.ErrorIs(t, err, ErrInvalidMAC)
}

func TestNewResolver_SkipsPaidTierWithoutKey(t *testing.T) {
	chain := NewResolver(ResolverConfig{TierTimeout: time.Second})
	for _, p := range chain.providers {
		assert.NotEqual(t, "maclookup", p.Name(), "paid tier must be skipped when no API key is configured")
	}

	withKey := NewResolver(ResolverConfig{APIKey: "k", TierTimeout: time.Second})
	names := make([]string, 0, len(withKey.providers))
	for _, p := range withKey.providers {
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{"static", "maclookup", "macvendors", "macvendorlookup"}, names)
}
