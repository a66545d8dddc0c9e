// Package config provides configuration loading and management for
// Stratalign.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the complete Stratalign configuration
type Config struct {
	Snapshots SnapshotsConfig `yaml:"snapshots"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	NATS      NATSConfig      `yaml:"nats"`
	Catalog   CatalogConfig   `yaml:"catalog"`
}

// SnapshotsConfig configures where serialized graph files live
type SnapshotsConfig struct {
	// Dir is the directory snapshot files are written to and watched in
	Dir string `yaml:"dir"`
	// Pattern is the doublestar glob matching snapshot files inside Dir
	Pattern string `yaml:"pattern"`
}

// PipelineConfig configures pipeline execution
type PipelineConfig struct {
	// Workers bounds the alignment worker pool
	Workers int `yaml:"workers"`
}

// NATSConfig configures the NATS connection
type NATSConfig struct {
	// URL is the NATS server URL (empty = publishing disabled)
	URL string `yaml:"url"`
	// SubjectPrefix is the subject root for published messages
	SubjectPrefix string `yaml:"subject_prefix"`
}

// CatalogConfig configures the schema catalog
type CatalogConfig struct {
	// GoalsFile overrides the built-in reference-goal taxonomy
	// (empty = use the default taxonomy)
	GoalsFile string `yaml:"goals_file"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Snapshots: SnapshotsConfig{
			Dir:     "snapshots",
			Pattern: "**/*.yaml",
		},
		Pipeline: PipelineConfig{
			Workers: 4,
		},
		NATS: NATSConfig{
			URL:           "",
			SubjectPrefix: "stratalign.graph",
		},
		Catalog: CatalogConfig{
			GoalsFile: "",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Snapshots.Dir == "" {
		return fmt.Errorf("snapshots.dir is required")
	}
	if c.Snapshots.Pattern == "" {
		return fmt.Errorf("snapshots.pattern is required")
	}
	if c.Pipeline.Workers < 1 {
		return fmt.Errorf("pipeline.workers must be at least 1")
	}
	if c.NATS.SubjectPrefix == "" {
		return fmt.Errorf("nats.subject_prefix is required")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Snapshots.Dir != "" {
		c.Snapshots.Dir = other.Snapshots.Dir
	}
	if other.Snapshots.Pattern != "" {
		c.Snapshots.Pattern = other.Snapshots.Pattern
	}
	if other.Pipeline.Workers != 0 {
		c.Pipeline.Workers = other.Pipeline.Workers
	}
	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}
	if other.NATS.SubjectPrefix != "" {
		c.NATS.SubjectPrefix = other.NATS.SubjectPrefix
	}
	if other.Catalog.GoalsFile != "" {
		c.Catalog.GoalsFile = other.Catalog.GoalsFile
	}
}

// ConfigPath returns the path to the config file, checking the
// STRATALIGN_CONFIG environment variable before the default location.
func ConfigPath() string {
	if p := os.Getenv("STRATALIGN_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(".stratalign", "config.yaml")
}

// Load loads configuration from the default path, falling back to
// defaults when no file exists.
func Load() (*Config, error) {
	path := ConfigPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	return LoadFromFile(path)
}
