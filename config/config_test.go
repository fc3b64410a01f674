package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderbrown/snomed-squasher/config"
)

func TestLoadDefaults(t *testing.T) {
	config.Reset()
	t.Cleanup(config.Reset)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.False(t, cfg.Loader.IncludeInactive)
	assert.InDelta(t, config.DefaultCorruptThreshold, cfg.CorruptThreshold(), 1e-9)
	assert.Equal(t, config.DefaultAncestorCacheSize, cfg.AncestorCacheSize())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snomed.toml")
	contents := `
[definitions]
path = "/data/snomed"
release = "uk_sct2cl_39.2.0"

[loader]
include_inactive = true
corrupt_threshold = 0.05
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := config.LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/snomed", cfg.Definitions.Path)
	assert.Equal(t, "uk_sct2cl_39.2.0", cfg.Definitions.Release)
	assert.True(t, cfg.Loader.IncludeInactive)
	assert.InDelta(t, 0.05, cfg.CorruptThreshold(), 1e-9)
}

func TestDefinitionsPathEnvOverride(t *testing.T) {
	config.Reset()
	t.Cleanup(config.Reset)

	t.Setenv("SNOMED_DEFINITIONS", "/env/snomed")

	path, err := config.DefinitionsPath()
	require.NoError(t, err)
	assert.Equal(t, "/env/snomed", path)
}

func TestDefinitionsPathMissing(t *testing.T) {
	config.Reset()
	t.Cleanup(config.Reset)

	t.Setenv("SNOMED_DEFINITIONS", "")

	_, err := config.DefinitionsPath()
	assert.Error(t, err)
}

func TestThresholdFallbacks(t *testing.T) {
	cfg := &config.Config{}
	assert.InDelta(t, config.DefaultCorruptThreshold, cfg.CorruptThreshold(), 1e-9)
	assert.Equal(t, config.DefaultAncestorCacheSize, cfg.AncestorCacheSize())
}
