package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratalign/stratalign/config"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := config.DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "snapshots", cfg.Snapshots.Dir)
	assert.Equal(t, 4, cfg.Pipeline.Workers)
	assert.Equal(t, "stratalign.graph", cfg.NATS.SubjectPrefix)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{name: "empty snapshots dir", mutate: func(c *config.Config) { c.Snapshots.Dir = "" }},
		{name: "empty pattern", mutate: func(c *config.Config) { c.Snapshots.Pattern = "" }},
		{name: "zero workers", mutate: func(c *config.Config) { c.Pipeline.Workers = 0 }},
		{name: "empty subject prefix", mutate: func(c *config.Config) { c.NATS.SubjectPrefix = "" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"snapshots:\n  dir: /data/graphs\npipeline:\n  workers: 8\n"), 0644))

	cfg, err := config.LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/graphs", cfg.Snapshots.Dir)
	assert.Equal(t, 8, cfg.Pipeline.Workers)
	// Unset fields keep their defaults.
	assert.Equal(t, "**/*.yaml", cfg.Snapshots.Pattern)
	assert.Equal(t, "stratalign.graph", cfg.NATS.SubjectPrefix)
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := config.DefaultConfig()
	cfg.NATS.URL = "nats://localhost:4222"
	cfg.Catalog.GoalsFile = "goals.yaml"
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := config.LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestMerge(t *testing.T) {
	base := config.DefaultConfig()
	base.Merge(&config.Config{
		Snapshots: config.SnapshotsConfig{Dir: "/override"},
		Pipeline:  config.PipelineConfig{Workers: 16},
	})

	assert.Equal(t, "/override", base.Snapshots.Dir)
	assert.Equal(t, 16, base.Pipeline.Workers)
	assert.Equal(t, "**/*.yaml", base.Snapshots.Pattern, "zero values do not override")

	base.Merge(nil)
	assert.Equal(t, "/override", base.Snapshots.Dir)
}

func TestConfigPathEnvOverride(t *testing.T) {
	t.Setenv("STRATALIGN_CONFIG", "/etc/stratalign.yaml")
	assert.Equal(t, "/etc/stratalign.yaml", config.ConfigPath())
}
