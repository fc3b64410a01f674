package config

import (
	"github.com/spf13/viper"
)

// Default loader threshold: one malformed row per hundred is already a sign
// of a bad extraction, not line noise.
const DefaultCorruptThreshold = 0.01

// DefaultAncestorCacheSize bounds per-snapshot ancestor memoization
const DefaultAncestorCacheSize = 4096

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("definitions.path", "")
	v.SetDefault("definitions.release", "")

	v.SetDefault("loader.include_inactive", false)
	v.SetDefault("loader.corrupt_threshold", DefaultCorruptThreshold)

	v.SetDefault("query.ancestor_cache_size", DefaultAncestorCacheSize)
}

// BindEnvVars explicitly binds configuration to well-known environment variables
func BindEnvVars(v *viper.Viper) {
	// SNOMED_DEFINITIONS is the historical name for the snapshot root
	v.BindEnv("definitions.path", "SNOMED_DEFINITIONS")
	v.BindEnv("definitions.release", "SNOMED_RELEASE")
}

// CorruptThreshold returns the loader threshold with the default applied
func (c *Config) CorruptThreshold() float64 {
	if c.Loader.CorruptThreshold <= 0 {
		return DefaultCorruptThreshold
	}
	return c.Loader.CorruptThreshold
}

// AncestorCacheSize returns the query cache size with the default applied
func (c *Config) AncestorCacheSize() int {
	if c.Query.AncestorCacheSize <= 0 {
		return DefaultAncestorCacheSize
	}
	return c.Query.AncestorCacheSize
}
