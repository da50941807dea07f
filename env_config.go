// env_config.go: Environment variable substitution and overrides
//
// This module implements ${VAR} substitution inside configuration file
// content and CONFWATCH_* environment variable overrides applied on top of
// parsed configurations, so deployments can adjust individual fields without
// editing the watched file.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package confwatch

import (
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix is the prefix for all configuration override variables.
//
// Variables use underscores to separate nested keys, for example:
//   - CONFWATCH_THREAD_POOL_SIZE=16
//   - CONFWATCH_LOGGER_LEVEL=debug
//   - CONFWATCH_MONITORING_ENABLED=false
//   - CONFWATCH_DATABASE_CONNECTION_STRING=postgresql://localhost/mydb
//   - CONFWATCH_NETWORK_TLS_ENABLED=true
const EnvPrefix = "CONFWATCH_"

// envVarPattern matches ${VAR} and ${VAR:-default} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// ExpandEnvVars expands ${VAR} placeholders in content with environment
// variable values. The ${VAR:-default} form supplies an inline default used
// when the variable is unset; without a default, unset variables expand to
// the empty string.
func ExpandEnvVars(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		name, fallback := groups[1], groups[2]
		if value, ok := os.LookupEnv(name); ok {
			return value
		}
		return fallback
	})
}

// LoadFromEnv builds a configuration from CONFWATCH_* environment variables
// alone, merged over defaults. Useful for containerized deployments that
// carry no configuration file at all.
func LoadFromEnv() (Config, error) {
	cfg := DefaultConfig()
	if err := ApplyEnvOverrides(&cfg); err != nil {
		return DefaultConfig(), err
	}
	return cfg, nil
}

// ApplyEnvOverrides overwrites individual fields of cfg from CONFWATCH_*
// environment variables. Only variables listed in ConfigMetadata are
// recognized; a set variable with an unparsable value is an error rather
// than a silent fallback.
func ApplyEnvOverrides(cfg *Config) error {
	for _, field := range ConfigMetadata() {
		if field.EnvVar == "" {
			continue
		}
		raw, ok := os.LookupEnv(field.EnvVar)
		if !ok {
			continue
		}
		if err := applyFieldOverride(cfg, field, raw); err != nil {
			return err
		}
	}
	return nil
}

func applyFieldOverride(cfg *Config, field FieldMetadata, raw string) error {
	switch field.Path {
	case "thread.pool_size":
		return setIntField(&cfg.Thread.PoolSize, field.Path, raw)
	case "thread.queue_type":
		cfg.Thread.QueueType = raw
	case "thread.max_queue_size":
		return setIntField(&cfg.Thread.MaxQueueSize, field.Path, raw)
	case "logger.level":
		cfg.Logger.Level = strings.ToLower(raw)
	case "logger.async":
		return setBoolField(&cfg.Logger.Async, field.Path, raw)
	case "logger.buffer_size":
		return setIntField(&cfg.Logger.BufferSize, field.Path, raw)
	case "logger.file_path":
		cfg.Logger.FilePath = raw
	case "monitoring.enabled":
		return setBoolField(&cfg.Monitoring.Enabled, field.Path, raw)
	case "monitoring.metrics_interval":
		return setDurationField(&cfg.Monitoring.MetricsInterval, field.Path, raw)
	case "monitoring.tracing.enabled":
		return setBoolField(&cfg.Monitoring.Tracing.Enabled, field.Path, raw)
	case "monitoring.tracing.sampling_rate":
		return setFloatField(&cfg.Monitoring.Tracing.SamplingRate, field.Path, raw)
	case "database.backend":
		cfg.Database.Backend = raw
	case "database.connection_string":
		cfg.Database.ConnectionString = raw
	case "database.pool.min_size":
		return setIntField(&cfg.Database.Pool.MinSize, field.Path, raw)
	case "database.pool.max_size":
		return setIntField(&cfg.Database.Pool.MaxSize, field.Path, raw)
	case "network.tls.enabled":
		return setBoolField(&cfg.Network.TLS.Enabled, field.Path, raw)
	case "network.tls.version":
		cfg.Network.TLS.Version = raw
	case "network.compression":
		cfg.Network.Compression = raw
	case "network.buffer_size":
		return setIntField(&cfg.Network.BufferSize, field.Path, raw)
	}
	return nil
}

func setIntField(target *int, fieldPath, raw string) error {
	value, err := strconv.Atoi(raw)
	if err != nil {
		return NewInvalidValueError(fieldPath, raw, "expected an integer")
	}
	*target = value
	return nil
}

func setBoolField(target *bool, fieldPath, raw string) error {
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return NewInvalidValueError(fieldPath, raw, "expected a boolean")
	}
	*target = value
	return nil
}

func setFloatField(target *float64, fieldPath, raw string) error {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return NewInvalidValueError(fieldPath, raw, "expected a number")
	}
	*target = value
	return nil
}

func setDurationField(target *time.Duration, fieldPath, raw string) error {
	value, err := time.ParseDuration(raw)
	if err != nil {
		// Bare integers are accepted as milliseconds.
		ms, intErr := strconv.Atoi(raw)
		if intErr != nil {
			return NewInvalidValueError(fieldPath, raw, "expected a duration")
		}
		value = time.Duration(ms) * time.Millisecond
	}
	if value <= 0 {
		return NewInvalidValueError(fieldPath, raw, "duration must be positive")
	}
	*target = value
	return nil
}
