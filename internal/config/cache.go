package config

import "time"

// CacheConfig drives the Redis response cache on booking lookups.  A
// confirmed booking never changes, so entries only age out via TTL.
// Responses larger than MaxBodyBytes are served but not stored.
type CacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig reads CACHE_* variables.
func LoadCacheConfig() CacheConfig {
	cfg := CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		TTL:          envDur("CACHE_TTL", 10*time.Minute),
		Prefix:       envStr("CACHE_PREFIX", "cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 64<<10),
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Minute
	}
	return cfg
}
