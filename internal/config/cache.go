package config

import "time"

// CacheConfig defines settings for the user profile cache. When Enabled is
// false or no Redis client is configured, profiles are always read from the
// database. TTL bounds how long a cached profile may be served; Prefix
// namespaces the keys.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

func loadCacheConfig(e *env) CacheConfig {
	return CacheConfig{
		Enabled: e.bool("CACHE_ENABLED", true),
		TTL:     e.duration("CACHE_TTL", 5*time.Minute),
		Prefix:  e.def("CACHE_PREFIX", "accounts"),
	}
}
