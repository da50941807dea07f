// config_test.go: tests for the configuration schema, diffing, cloning and
// field metadata
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package confwatch

import (
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	loader := NewFileLoader()
	if err := loader.Validate(DefaultConfig()); err != nil {
		t.Errorf("Expected default config to pass validation, got: %v", err)
	}
}

func TestCloneIsDeep(t *testing.T) {
	original := DefaultConfig()
	clone := original.Clone()

	clone.Logger.Level = "error"
	clone.Logger.Writers[0] = "file"
	clone.Network.TLS.Version = "1.2"

	if original.Logger.Level != "info" {
		t.Error("Expected clone mutation not to affect the original level")
	}
	if original.Logger.Writers[0] != "console" {
		t.Error("Expected the writer list to be deep-copied")
	}
	if original.Network.TLS.Version != "1.3" {
		t.Error("Expected nested struct mutation not to affect the original")
	}
}

func TestDiffConfigsEmpty(t *testing.T) {
	cfg := DefaultConfig()
	if diff := DiffConfigs(cfg, cfg.Clone()); len(diff) != 0 {
		t.Errorf("Expected no diff between identical configs, got %v", diff)
	}
	if !cfg.Equal(cfg.Clone()) {
		t.Error("Expected identical configs to compare equal")
	}
}

func TestDiffConfigsReportsDotPaths(t *testing.T) {
	oldCfg := DefaultConfig()
	newCfg := oldCfg.Clone()
	newCfg.Logger.Level = "debug"
	newCfg.Thread.PoolSize = 8
	newCfg.Monitoring.Tracing.SamplingRate = 0.5
	newCfg.Database.Pool.MaxSize = 50
	newCfg.Network.TLS.Enabled = false

	diff := DiffConfigs(oldCfg, newCfg)
	want := map[string]bool{
		"logger.level":                     true,
		"thread.pool_size":                 true,
		"monitoring.tracing.sampling_rate": true,
		"database.pool.max_size":           true,
		"network.tls.enabled":              true,
	}
	if len(diff) != len(want) {
		t.Fatalf("Expected %d changed fields, got %d: %v", len(want), len(diff), diff)
	}
	for _, field := range diff {
		if !want[field] {
			t.Errorf("Unexpected changed field %q", field)
		}
	}
}

func TestDiffConfigsWriterList(t *testing.T) {
	oldCfg := DefaultConfig()

	newCfg := oldCfg.Clone()
	newCfg.Logger.Writers = []string{"console", "file"}
	diff := DiffConfigs(oldCfg, newCfg)
	if len(diff) != 1 || diff[0] != "logger.writers" {
		t.Errorf("Expected [logger.writers], got %v", diff)
	}

	// Same elements, same order: no change.
	sameCfg := oldCfg.Clone()
	sameCfg.Logger.Writers = []string{"console"}
	if diff := DiffConfigs(oldCfg, sameCfg); len(diff) != 0 {
		t.Errorf("Expected no diff for identical writer lists, got %v", diff)
	}
}

func TestDiffConfigsDurations(t *testing.T) {
	oldCfg := DefaultConfig()
	newCfg := oldCfg.Clone()
	newCfg.Monitoring.MetricsInterval = 30 * time.Second
	newCfg.Database.Pool.IdleTimeout = 2 * time.Minute

	diff := DiffConfigs(oldCfg, newCfg)
	found := map[string]bool{}
	for _, field := range diff {
		found[field] = true
	}
	if !found["monitoring.metrics_interval"] || !found["database.pool.idle_timeout"] {
		t.Errorf("Expected duration fields in diff, got %v", diff)
	}
}

func TestIsHotReloadable(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"logger.level", true},
		{"logger.file_path", true},
		{"monitoring.metrics_interval", true},
		{"monitoring.tracing.sampling_rate", true},
		{"thread.pool_size", false},
		{"thread.queue_type", false},
		{"network.tls.enabled", false},
		{"database.backend", false},
		{"no.such.field", false},
	}
	for _, tt := range tests {
		if got := IsHotReloadable(tt.path); got != tt.want {
			t.Errorf("IsHotReloadable(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestConfigMetadataIsConsistent(t *testing.T) {
	seen := map[string]bool{}
	for _, field := range ConfigMetadata() {
		if field.Path == "" {
			t.Error("Found metadata entry with empty path")
		}
		if seen[field.Path] {
			t.Errorf("Duplicate metadata path %q", field.Path)
		}
		seen[field.Path] = true
		if field.EnvVar != "" && field.EnvVar[:len(EnvPrefix)] != EnvPrefix {
			t.Errorf("EnvVar %q for %q does not carry the %s prefix",
				field.EnvVar, field.Path, EnvPrefix)
		}
		if field.Description == "" {
			t.Errorf("Metadata for %q has no description", field.Path)
		}
	}
}
