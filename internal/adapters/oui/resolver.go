package oui

import (
	"log/slog"
	"time"
)

// ResolverConfig selects and tunes the lookup tiers.
type ResolverConfig struct {
	// DBPath points at the local sqlite OUI registry. Empty disables the
	// sqlite tier; the static table still serves as the local tier.
	DBPath string
	// CacheSize bounds the per-provider and chain LRU caches.
	CacheSize int
	// APIKey enables the paid maclookup.app tier. Empty skips it entirely.
	APIKey string
	// TierTimeout bounds each network tier attempt.
	TierTimeout time.Duration
}

// NewResolver assembles the production lookup chain:
// static table -> sqlite registry -> paid API -> free API A -> free API B.
// Tier order is the only fallback policy; adding a provider means appending
// it here.
func NewResolver(cfg ResolverConfig) *Chain {
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 4096
	}

	providers := []Provider{NewStaticProvider(CommonOUIs)}

	if cfg.DBPath != "" {
		db, err := NewDBProvider(cfg.DBPath, cfg.CacheSize)
		if err != nil {
			slog.Warn("OUI registry unavailable, continuing without sqlite tier", "path", cfg.DBPath, "err", err)
		} else {
			providers = append(providers, db)
		}
	}

	if cfg.APIKey != "" {
		providers = append(providers, NewMacLookupProvider(cfg.APIKey, "", cfg.TierTimeout))
	}
	providers = append(providers,
		NewMacVendorsProvider("", cfg.TierTimeout),
		NewMacVendorLookupProvider("", cfg.TierTimeout),
	)

	return NewChain(providers,
		WithTierTimeout(cfg.TierTimeout),
		WithCache(NewLookupCache(cfg.CacheSize)),
	)
}
