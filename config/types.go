package config

// Config is the snomed-squasher configuration, loaded from TOML files and
// SNOMED_* environment variables.
type Config struct {
	Definitions DefinitionsConfig `mapstructure:"definitions"`
	Loader      LoaderConfig      `mapstructure:"loader"`
	Query       QueryConfig       `mapstructure:"query"`
}

// DefinitionsConfig locates the terminology snapshot files
type DefinitionsConfig struct {
	// Path is the root directory holding one subdirectory per release
	Path string `mapstructure:"path"`
	// Release optionally pins loading to a single release directory.
	// Empty means load every available release.
	Release string `mapstructure:"release"`
}

// LoaderConfig controls snapshot parsing
type LoaderConfig struct {
	// IncludeInactive retains inactive description rows for historical lookups
	IncludeInactive bool `mapstructure:"include_inactive"`
	// CorruptThreshold is the maximum tolerated ratio of malformed rows per
	// file before loading fails instead of degrading the graph
	CorruptThreshold float64 `mapstructure:"corrupt_threshold"`
}

// QueryConfig controls read-side behavior
type QueryConfig struct {
	// AncestorCacheSize bounds the per-snapshot memoization of ancestor sets
	AncestorCacheSize int `mapstructure:"ancestor_cache_size"`
}
