package oui

import (
	"context"
	"errors"
	"time"

	"github.com/netscenehq/netscene/internal/telemetry"
)

// Provider resolves a MAC address to a manufacturer name.
// Implementations return ErrNotFound when the prefix is unknown to them and
// a *TransportError when the lookup itself failed; the chain treats both as
// "try the next tier".
type Provider interface {
	// Name identifies the tier in logs and metrics.
	Name() string

	// Lookup returns the vendor name for a given MAC address.
	Lookup(ctx context.Context, mac MACAddress) (string, error)

	// Close releases any resources held by the provider.
	Close() error
}

// Chain tries each provider in order until one succeeds. Network tiers get
// an independent timeout budget; local tiers run with the caller's context.
// New tiers are added by appending, not by branching.
type Chain struct {
	providers   []Provider
	tierTimeout time.Duration
	cache       *LookupCache
}

// ChainOption configures a Chain.
type ChainOption func(*Chain)

// WithTierTimeout bounds each provider attempt. Zero disables the per-tier
// deadline and providers run under the caller's context only.
func WithTierTimeout(d time.Duration) ChainOption {
	return func(c *Chain) { c.tierTimeout = d }
}

// WithCache memoizes successful resolutions by OUI prefix.
func WithCache(cache *LookupCache) ChainOption {
	return func(c *Chain) { c.cache = cache }
}

// NewChain creates a tiered lookup chain over the given providers.
func NewChain(providers []Provider, opts ...ChainOption) *Chain {
	c := &Chain{
		providers:   providers,
		tierTimeout: 3 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name implements Provider so chains can nest.
func (c *Chain) Name() string { return "chain" }

// Lookup tries each tier in order, first success wins. Transport errors and
// unknown prefixes fall through; exhaustion yields ErrNotFound. Callers must
// treat ErrNotFound as "unknown vendor", never as fatal.
func (c *Chain) Lookup(ctx context.Context, mac MACAddress) (string, error) {
	if !mac.IsValid() {
		return "", ErrInvalidMAC
	}

	prefix := mac.OUI()
	if c.cache != nil {
		if vendor, ok := c.cache.Get(prefix); ok {
			telemetry.VendorLookups.WithLabelValues("cache", "hit").Inc()
			return vendor, nil
		}
	}

	for _, p := range c.providers {
		vendor, err := c.lookupTier(ctx, p, mac)
		if err == nil && vendor != "" {
			telemetry.VendorLookups.WithLabelValues(p.Name(), "hit").Inc()
			if c.cache != nil {
				c.cache.Set(prefix, vendor)
			}
			return vendor, nil
		}

		if ctx.Err() != nil {
			// Caller cancelled; do not burn the remaining tiers.
			return "", ctx.Err()
		}

		if errors.Is(err, ErrNotFound) {
			telemetry.VendorLookups.WithLabelValues(p.Name(), "miss").Inc()
		} else {
			telemetry.VendorLookups.WithLabelValues(p.Name(), "error").Inc()
		}
	}

	return "", ErrNotFound
}

func (c *Chain) lookupTier(ctx context.Context, p Provider, mac MACAddress) (string, error) {
	if c.tierTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.tierTimeout)
		defer cancel()
	}
	return p.Lookup(ctx, mac)
}

// Close closes all providers, returning the first error.
func (c *Chain) Close() error {
	var firstErr error
	for _, p := range c.providers {
		if err := p.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
