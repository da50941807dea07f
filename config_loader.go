// config_loader.go: Multi-format configuration loading with validation
//
// This module loads the unified configuration from YAML, JSON or TOML files,
// applies ${VAR} environment variable substitution and CONFWATCH_* overrides,
// and validates the result against the schema's semantic constraints.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package confwatch

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ConfigFormat identifies a supported configuration file format.
type ConfigFormat string

const (
	FormatYAML        ConfigFormat = "yaml"
	FormatJSON        ConfigFormat = "json"
	FormatTOML        ConfigFormat = "toml"
	FormatUnsupported ConfigFormat = "unsupported"
)

// DetectFormat returns the configuration format implied by the file extension.
func DetectFormat(path string) ConfigFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	case ".toml":
		return FormatTOML
	default:
		return FormatUnsupported
	}
}

// maxConfigFileSize bounds config reads to keep a corrupt or misdirected
// path from exhausting memory.
const maxConfigFileSize = 10 * 1024 * 1024

// Loader is the contract the watcher consumes for loading, validating and
// defaulting configurations. The production implementation is FileLoader;
// tests substitute failing or scripted loaders through WithLoader.
type Loader interface {
	// Load reads and parses the configuration at path, merged over defaults.
	Load(path string) (Config, error)

	// Validate checks a parsed configuration against semantic constraints.
	Validate(cfg Config) error

	// Defaults returns the configuration used when no file is available.
	Defaults() Config
}

// FileLoader loads configuration files in YAML, JSON or TOML format.
//
// Values parsed from the file are merged over DefaultConfig, so a partial
// file only overrides the fields it names. After parsing, CONFWATCH_*
// environment variables override individual fields when EnvOverrides is set.
type FileLoader struct {
	// ExpandEnv enables ${VAR} and ${VAR:-default} substitution in the raw
	// file content before parsing.
	ExpandEnv bool

	// EnvOverrides enables CONFWATCH_* environment variable overrides of
	// individual configuration fields after parsing.
	EnvOverrides bool
}

// NewFileLoader returns a FileLoader with substitution and overrides enabled.
func NewFileLoader() *FileLoader {
	return &FileLoader{
		ExpandEnv:    true,
		EnvOverrides: true,
	}
}

// Load implements Loader.
func (l *FileLoader) Load(path string) (Config, error) {
	cfg := DefaultConfig()

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, NewFileNotFoundError(path)
		}
		return cfg, NewIOError(path, err)
	}
	if !info.Mode().IsRegular() {
		return cfg, NewIOError(path, os.ErrInvalid)
	}
	if info.Size() > maxConfigFileSize {
		return cfg, NewInvalidValueError("file_size", info.Size(), "configuration file too large")
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return cfg, NewIOError(path, err)
	}

	if l.ExpandEnv {
		content = []byte(ExpandEnvVars(string(content)))
	}

	format := DetectFormat(path)
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(content, &cfg)
	case FormatJSON:
		err = json.Unmarshal(content, &cfg)
	case FormatTOML:
		err = toml.Unmarshal(content, &cfg)
	default:
		return cfg, NewParseError(path, string(format), os.ErrInvalid)
	}
	if err != nil {
		return DefaultConfig(), NewParseError(path, string(format), err)
	}

	if l.EnvOverrides {
		if err := ApplyEnvOverrides(&cfg); err != nil {
			return DefaultConfig(), err
		}
	}

	return cfg, nil
}

// Defaults implements Loader.
func (l *FileLoader) Defaults() Config {
	return DefaultConfig()
}

// Validate implements Loader. It checks every section against its semantic
// constraints and returns the first violation found.
func (l *FileLoader) Validate(cfg Config) error {
	if err := validateThread(cfg.Thread); err != nil {
		return err
	}
	if err := validateLogger(cfg.Logger); err != nil {
		return err
	}
	if err := validateMonitoring(cfg.Monitoring); err != nil {
		return err
	}
	if err := validateDatabase(cfg.Database); err != nil {
		return err
	}
	return validateNetwork(cfg.Network)
}

func validateThread(cfg ThreadConfig) error {
	if cfg.PoolSize < 0 {
		return NewInvalidValueError("thread.pool_size", cfg.PoolSize, "pool size cannot be negative")
	}
	if !isAllowedValue(cfg.QueueType, "thread.queue_type") {
		return NewInvalidValueError("thread.queue_type", cfg.QueueType, "unknown queue type")
	}
	if cfg.MaxQueueSize <= 0 {
		return NewInvalidValueError("thread.max_queue_size", cfg.MaxQueueSize, "queue size must be positive")
	}
	return nil
}

func validateLogger(cfg LoggerConfig) error {
	if !isAllowedValue(cfg.Level, "logger.level") {
		return NewInvalidValueError("logger.level", cfg.Level, "unknown log level")
	}
	if len(cfg.Writers) == 0 {
		return NewValidationError("logger.writers", "at least one writer is required")
	}
	validWriters := map[string]bool{
		"console": true, "file": true, "rotating_file": true, "network": true, "json": true,
	}
	for _, writer := range cfg.Writers {
		if !validWriters[writer] {
			return NewInvalidValueError("logger.writers", writer, "unknown log writer")
		}
	}
	if cfg.BufferSize <= 0 {
		return NewInvalidValueError("logger.buffer_size", cfg.BufferSize, "buffer size must be positive")
	}
	if cfg.MaxFileSize <= 0 {
		return NewInvalidValueError("logger.max_file_size", cfg.MaxFileSize, "max file size must be positive")
	}
	if cfg.MaxBackupFiles < 0 {
		return NewInvalidValueError("logger.max_backup_files", cfg.MaxBackupFiles, "backup count cannot be negative")
	}
	return nil
}

func validateMonitoring(cfg MonitoringConfig) error {
	if cfg.MetricsInterval <= 0 {
		return NewInvalidValueError("monitoring.metrics_interval", cfg.MetricsInterval, "interval must be positive")
	}
	if cfg.HealthCheckInterval <= 0 {
		return NewInvalidValueError("monitoring.health_check_interval", cfg.HealthCheckInterval, "interval must be positive")
	}
	if cfg.Tracing.SamplingRate < 0.0 || cfg.Tracing.SamplingRate > 1.0 {
		return NewInvalidValueError("monitoring.tracing.sampling_rate", cfg.Tracing.SamplingRate,
			"sampling rate must be between 0.0 and 1.0")
	}
	if cfg.PrometheusPort < 0 || cfg.PrometheusPort > 65535 {
		return NewInvalidValueError("monitoring.prometheus_port", cfg.PrometheusPort, "port out of range")
	}
	return nil
}

func validateDatabase(cfg DatabaseConfig) error {
	if cfg.Backend != "" && !isAllowedValue(cfg.Backend, "database.backend") {
		return NewInvalidValueError("database.backend", cfg.Backend, "unknown database backend")
	}
	if cfg.Pool.MinSize < 0 {
		return NewInvalidValueError("database.pool.min_size", cfg.Pool.MinSize, "pool size cannot be negative")
	}
	if cfg.Pool.MaxSize < cfg.Pool.MinSize {
		return NewValidationError("database.pool.max_size", "max pool size must be >= min pool size")
	}
	if cfg.SlowQueryThreshold < 0 {
		return NewInvalidValueError("database.slow_query_threshold", cfg.SlowQueryThreshold,
			"threshold cannot be negative")
	}
	return nil
}

func validateNetwork(cfg NetworkConfig) error {
	if !isAllowedValue(cfg.TLS.Version, "network.tls.version") {
		return NewInvalidValueError("network.tls.version", cfg.TLS.Version, "unknown TLS version")
	}
	if !isAllowedValue(cfg.Compression, "network.compression") {
		return NewInvalidValueError("network.compression", cfg.Compression, "unknown compression algorithm")
	}
	if cfg.BufferSize <= 0 {
		return NewInvalidValueError("network.buffer_size", cfg.BufferSize, "buffer size must be positive")
	}
	if cfg.MaxConnections <= 0 {
		return NewInvalidValueError("network.max_connections", cfg.MaxConnections,
			"connection limit must be positive")
	}
	return nil
}

// isAllowedValue checks a value against the AllowedValues of a metadata entry.
// Fields without an AllowedValues list accept anything.
func isAllowedValue(value, fieldPath string) bool {
	for _, field := range ConfigMetadata() {
		if field.Path != fieldPath {
			continue
		}
		if len(field.AllowedValues) == 0 {
			return true
		}
		for _, allowed := range field.AllowedValues {
			if value == allowed {
				return true
			}
		}
		return false
	}
	return true
}
