// env_config_test.go: tests for environment variable expansion and overrides
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package confwatch

import (
	"testing"
	"time"
)

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("CONFWATCH_TEST_HOST", "db.internal")

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"set variable", "host: ${CONFWATCH_TEST_HOST}", "host: db.internal"},
		{"unset without default", "host: ${CONFWATCH_TEST_MISSING}", "host: "},
		{"unset with default", "host: ${CONFWATCH_TEST_MISSING:-localhost}", "host: localhost"},
		{"set ignores default", "host: ${CONFWATCH_TEST_HOST:-localhost}", "host: db.internal"},
		{"no placeholder", "host: literal", "host: literal"},
		{"multiple", "${CONFWATCH_TEST_HOST}:${CONFWATCH_TEST_MISSING:-5432}", "db.internal:5432"},
		{"malformed left alone", "host: ${not valid}", "host: ${not valid}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpandEnvVars(tt.content); got != tt.want {
				t.Errorf("ExpandEnvVars(%q) = %q, want %q", tt.content, got, tt.want)
			}
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("CONFWATCH_LOGGER_LEVEL", "ERROR")
	t.Setenv("CONFWATCH_THREAD_POOL_SIZE", "16")
	t.Setenv("CONFWATCH_LOGGER_ASYNC", "false")
	t.Setenv("CONFWATCH_MONITORING_TRACING_SAMPLING_RATE", "0.75")
	t.Setenv("CONFWATCH_MONITORING_METRICS_INTERVAL", "45s")
	t.Setenv("CONFWATCH_DATABASE_BACKEND", "redis")

	cfg := DefaultConfig()
	if err := ApplyEnvOverrides(&cfg); err != nil {
		t.Fatalf("ApplyEnvOverrides failed: %v", err)
	}

	if cfg.Logger.Level != "error" {
		t.Errorf("Expected level lowered to error, got %q", cfg.Logger.Level)
	}
	if cfg.Thread.PoolSize != 16 {
		t.Errorf("Expected pool size 16, got %d", cfg.Thread.PoolSize)
	}
	if cfg.Logger.Async {
		t.Error("Expected async disabled by override")
	}
	if cfg.Monitoring.Tracing.SamplingRate != 0.75 {
		t.Errorf("Expected sampling rate 0.75, got %f", cfg.Monitoring.Tracing.SamplingRate)
	}
	if cfg.Monitoring.MetricsInterval != 45*time.Second {
		t.Errorf("Expected metrics interval 45s, got %v", cfg.Monitoring.MetricsInterval)
	}
	if cfg.Database.Backend != "redis" {
		t.Errorf("Expected backend redis, got %q", cfg.Database.Backend)
	}
	// Untouched fields keep defaults.
	if cfg.Network.Compression != "lz4" {
		t.Errorf("Expected untouched compression default, got %q", cfg.Network.Compression)
	}
}

func TestApplyEnvOverridesRejectsBadValues(t *testing.T) {
	tests := []struct {
		envVar string
		value  string
	}{
		{"CONFWATCH_THREAD_POOL_SIZE", "many"},
		{"CONFWATCH_LOGGER_ASYNC", "yes please"},
		{"CONFWATCH_MONITORING_TRACING_SAMPLING_RATE", "half"},
		{"CONFWATCH_MONITORING_METRICS_INTERVAL", "soon"},
	}
	for _, tt := range tests {
		t.Run(tt.envVar, func(t *testing.T) {
			t.Setenv(tt.envVar, tt.value)
			cfg := DefaultConfig()
			err := ApplyEnvOverrides(&cfg)
			if err == nil {
				t.Fatalf("Expected %s=%q to be rejected", tt.envVar, tt.value)
			}
			if code := errorCode(t, err); code != ErrCodeInvalidValue {
				t.Errorf("Expected code %s, got %s", ErrCodeInvalidValue, code)
			}
		})
	}
}

func TestDurationOverrideAcceptsMilliseconds(t *testing.T) {
	// Bare integers are treated as milliseconds for compatibility with
	// deployments that configure intervals numerically.
	t.Setenv("CONFWATCH_MONITORING_METRICS_INTERVAL", "2500")
	cfg := DefaultConfig()
	if err := ApplyEnvOverrides(&cfg); err != nil {
		t.Fatalf("ApplyEnvOverrides failed: %v", err)
	}
	if cfg.Monitoring.MetricsInterval != 2500*time.Millisecond {
		t.Errorf("Expected 2500ms, got %v", cfg.Monitoring.MetricsInterval)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CONFWATCH_LOGGER_LEVEL", "debug")
	t.Setenv("CONFWATCH_NETWORK_COMPRESSION", "zstd")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}
	if cfg.Logger.Level != "debug" {
		t.Errorf("Expected level debug, got %q", cfg.Logger.Level)
	}
	if cfg.Network.Compression != "zstd" {
		t.Errorf("Expected compression zstd, got %q", cfg.Network.Compression)
	}
	if cfg.Thread.QueueType != "lockfree" {
		t.Errorf("Expected defaults for unset fields, got %q", cfg.Thread.QueueType)
	}
}

func TestLoadFromEnvPropagatesErrors(t *testing.T) {
	t.Setenv("CONFWATCH_NETWORK_BUFFER_SIZE", "huge")
	if _, err := LoadFromEnv(); err == nil {
		t.Fatal("Expected LoadFromEnv to reject an unparsable override")
	}
}
