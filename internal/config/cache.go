package config

import (
	"os"
	"time"
)

// CacheConfig defines settings for the availability cache.  When Enabled
// is false or no Redis client is configured, every availability query is
// computed from the store.  TTL bounds how long a projection lives even
// if no write invalidates it; Prefix namespaces the keys.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

// LoadCacheConfig reads CACHE_* variables, falling back to defaults.
func LoadCacheConfig() CacheConfig {
	c := CacheConfig{
		Enabled: envBool("CACHE_ENABLED", true),
		TTL:     envDur("CACHE_TTL", 30*time.Second),
		Prefix:  getenv("CACHE_PREFIX", "avail"),
	}
	if c.TTL <= 0 {
		c.TTL = 30 * time.Second
	}
	return c
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
