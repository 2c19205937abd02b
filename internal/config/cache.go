package config

import (
	"time"
)

// CacheConfig controls the Redis response cache in front of the
// occupancy read endpoint.  Occupancy display may be eventually
// consistent, so a short TTL keeps dashboards cheap to poll without
// touching admission correctness, which always goes to the ledger.
type CacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig reads cache settings from the environment with
// defaults suited to dashboard polling.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		TTL:          envDur("CACHE_TTL", 5*time.Second),
		Prefix:       envStr("CACHE_PREFIX", "occ"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
}
