package app

import (
	"context"

	"github.com/netscenehq/netscene/internal/adapters/oui"
)

// RandomizedVendor is reported for locally administered MACs. Those carry
// no manufacturer prefix, so hitting the lookup tiers for them only burns
// quota on guaranteed misses.
const RandomizedVendor = "Randomized"

// ChainResolver adapts the tiered OUI lookup chain to the string-based
// resolver port the pipeline uses.
type ChainResolver struct {
	chain *oui.Chain
}

// NewChainResolver wraps a lookup chain.
func NewChainResolver(chain *oui.Chain) *ChainResolver {
	return &ChainResolver{chain: chain}
}

// Resolve parses and validates the MAC, then walks the lookup tiers.
func (r *ChainResolver) Resolve(ctx context.Context, mac string) (string, error) {
	parsed, err := oui.ParseMAC(mac)
	if err != nil {
		return "", err
	}
	if parsed.IsRandomized() {
		return RandomizedVendor, nil
	}
	return r.chain.Lookup(ctx, parsed)
}
