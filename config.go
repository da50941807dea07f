// config.go: Unified configuration schema with hot-reload field metadata
//
// This module defines the hierarchical configuration structure watched by the
// library, its default values, and the per-field metadata used to distinguish
// hot-reloadable settings from those requiring a restart.
//
// Configuration Priority (highest to lowest):
// 1. Environment variables (CONFWATCH_*)
// 2. Configuration file (YAML, JSON or TOML)
// 3. Default values
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package confwatch

import (
	"time"
)

// ThreadConfig holds worker pool configuration.
type ThreadConfig struct {
	// Number of worker threads (0 means auto-detect)
	PoolSize int `json:"pool_size" yaml:"pool_size" toml:"pool_size"`

	// Queue type: "mutex", "lockfree", "bounded"
	QueueType string `json:"queue_type" yaml:"queue_type" toml:"queue_type"`

	// Maximum queue size (for bounded queue)
	MaxQueueSize int `json:"max_queue_size" yaml:"max_queue_size" toml:"max_queue_size"`

	// Thread naming prefix
	ThreadNamePrefix string `json:"thread_name_prefix" yaml:"thread_name_prefix" toml:"thread_name_prefix"`
}

// LoggerConfig holds logging system configuration.
type LoggerConfig struct {
	// Log level: "trace", "debug", "info", "warn", "error", "critical", "off"
	Level string `json:"level" yaml:"level" toml:"level"`

	// List of writers: "console", "file", "rotating_file", "network", "json"
	Writers []string `json:"writers" yaml:"writers" toml:"writers"`

	// Enable async logging
	Async bool `json:"async" yaml:"async" toml:"async"`

	// Async buffer size in bytes
	BufferSize int `json:"buffer_size" yaml:"buffer_size" toml:"buffer_size"`

	// Log file path (for file writers)
	FilePath string `json:"file_path" yaml:"file_path" toml:"file_path"`

	// Maximum file size in bytes (for rotating_file)
	MaxFileSize int64 `json:"max_file_size" yaml:"max_file_size" toml:"max_file_size"`

	// Maximum number of backup files (for rotating_file)
	MaxBackupFiles int `json:"max_backup_files" yaml:"max_backup_files" toml:"max_backup_files"`
}

// TracingConfig holds distributed tracing configuration.
type TracingConfig struct {
	// Enable tracing
	Enabled bool `json:"enabled" yaml:"enabled" toml:"enabled"`

	// Sampling rate (0.0 to 1.0)
	SamplingRate float64 `json:"sampling_rate" yaml:"sampling_rate" toml:"sampling_rate"`

	// Exporter type: "otlp", "jaeger", "zipkin", "console"
	Exporter string `json:"exporter" yaml:"exporter" toml:"exporter"`

	// Exporter endpoint
	Endpoint string `json:"endpoint" yaml:"endpoint" toml:"endpoint"`
}

// MonitoringConfig holds monitoring system configuration.
type MonitoringConfig struct {
	// Enable monitoring
	Enabled bool `json:"enabled" yaml:"enabled" toml:"enabled"`

	// Metrics collection interval
	MetricsInterval time.Duration `json:"metrics_interval" yaml:"metrics_interval" toml:"metrics_interval"`

	// Health check interval
	HealthCheckInterval time.Duration `json:"health_check_interval" yaml:"health_check_interval" toml:"health_check_interval"`

	// Tracing configuration
	Tracing TracingConfig `json:"tracing" yaml:"tracing" toml:"tracing"`

	// Prometheus metrics port (0 to disable)
	PrometheusPort int `json:"prometheus_port" yaml:"prometheus_port" toml:"prometheus_port"`

	// Prometheus metrics path
	PrometheusPath string `json:"prometheus_path" yaml:"prometheus_path" toml:"prometheus_path"`
}

// PoolConfig holds database connection pool configuration.
type PoolConfig struct {
	// Minimum pool size
	MinSize int `json:"min_size" yaml:"min_size" toml:"min_size"`

	// Maximum pool size
	MaxSize int `json:"max_size" yaml:"max_size" toml:"max_size"`

	// Idle connection timeout
	IdleTimeout time.Duration `json:"idle_timeout" yaml:"idle_timeout" toml:"idle_timeout"`

	// Connection acquisition timeout
	AcquireTimeout time.Duration `json:"acquire_timeout" yaml:"acquire_timeout" toml:"acquire_timeout"`
}

// DatabaseConfig holds database system configuration.
type DatabaseConfig struct {
	// Database backend: "postgresql", "mysql", "sqlite", "mongodb", "redis"
	Backend string `json:"backend" yaml:"backend" toml:"backend"`

	// Connection string or URI
	ConnectionString string `json:"connection_string" yaml:"connection_string" toml:"connection_string"`

	// Connection pool configuration
	Pool PoolConfig `json:"pool" yaml:"pool" toml:"pool"`

	// Enable query logging
	LogQueries bool `json:"log_queries" yaml:"log_queries" toml:"log_queries"`

	// Slow query threshold
	SlowQueryThreshold time.Duration `json:"slow_query_threshold" yaml:"slow_query_threshold" toml:"slow_query_threshold"`
}

// TLSConfig holds TLS/SSL configuration.
type TLSConfig struct {
	// Enable TLS
	Enabled bool `json:"enabled" yaml:"enabled" toml:"enabled"`

	// TLS version: "1.2", "1.3"
	Version string `json:"version" yaml:"version" toml:"version"`

	// Certificate file path
	CertPath string `json:"cert_path" yaml:"cert_path" toml:"cert_path"`

	// Private key file path
	KeyPath string `json:"key_path" yaml:"key_path" toml:"key_path"`

	// CA certificate path (for client verification)
	CAPath string `json:"ca_path" yaml:"ca_path" toml:"ca_path"`

	// Verify peer certificate
	VerifyPeer bool `json:"verify_peer" yaml:"verify_peer" toml:"verify_peer"`
}

// NetworkConfig holds network system configuration.
type NetworkConfig struct {
	// TLS configuration
	TLS TLSConfig `json:"tls" yaml:"tls" toml:"tls"`

	// Compression type: "none", "lz4", "gzip", "deflate", "zstd"
	Compression string `json:"compression" yaml:"compression" toml:"compression"`

	// Send/receive buffer size
	BufferSize int `json:"buffer_size" yaml:"buffer_size" toml:"buffer_size"`

	// Connection timeout
	ConnectTimeout time.Duration `json:"connect_timeout" yaml:"connect_timeout" toml:"connect_timeout"`

	// Read/write timeout
	IOTimeout time.Duration `json:"io_timeout" yaml:"io_timeout" toml:"io_timeout"`

	// Keep-alive interval
	KeepaliveInterval time.Duration `json:"keepalive_interval" yaml:"keepalive_interval" toml:"keepalive_interval"`

	// Maximum concurrent connections (server)
	MaxConnections int `json:"max_connections" yaml:"max_connections" toml:"max_connections"`
}

// Config is the root configuration structure watched by this library.
//
// It contains all subsystem configurations and provides default values for
// all settings. Config is a value type: snapshots taken for history hold
// independent copies obtained through Clone.
type Config struct {
	// Thread system configuration
	Thread ThreadConfig `json:"thread" yaml:"thread" toml:"thread"`

	// Logger system configuration
	Logger LoggerConfig `json:"logger" yaml:"logger" toml:"logger"`

	// Monitoring system configuration
	Monitoring MonitoringConfig `json:"monitoring" yaml:"monitoring" toml:"monitoring"`

	// Database system configuration
	Database DatabaseConfig `json:"database" yaml:"database" toml:"database"`

	// Network system configuration
	Network NetworkConfig `json:"network" yaml:"network" toml:"network"`
}

// DefaultConfig returns a configuration with all default values.
func DefaultConfig() Config {
	return Config{
		Thread: ThreadConfig{
			PoolSize:         0, // auto-detect
			QueueType:        "lockfree",
			MaxQueueSize:     10000,
			ThreadNamePrefix: "worker",
		},
		Logger: LoggerConfig{
			Level:          "info",
			Writers:        []string{"console"},
			Async:          true,
			BufferSize:     8192,
			FilePath:       "./logs/app.log",
			MaxFileSize:    10 * 1024 * 1024,
			MaxBackupFiles: 5,
		},
		Monitoring: MonitoringConfig{
			Enabled:             true,
			MetricsInterval:     5 * time.Second,
			HealthCheckInterval: 30 * time.Second,
			Tracing: TracingConfig{
				Enabled:      false,
				SamplingRate: 0.1,
				Exporter:     "otlp",
				Endpoint:     "http://localhost:4317",
			},
			PrometheusPort: 9090,
			PrometheusPath: "/metrics",
		},
		Database: DatabaseConfig{
			Pool: PoolConfig{
				MinSize:        5,
				MaxSize:        20,
				IdleTimeout:    60 * time.Second,
				AcquireTimeout: 5 * time.Second,
			},
			LogQueries:         false,
			SlowQueryThreshold: time.Second,
		},
		Network: NetworkConfig{
			TLS: TLSConfig{
				Enabled:    true,
				Version:    "1.3",
				VerifyPeer: true,
			},
			Compression:       "lz4",
			BufferSize:        65536,
			ConnectTimeout:    5 * time.Second,
			IOTimeout:         30 * time.Second,
			KeepaliveInterval: 15 * time.Second,
			MaxConnections:    10000,
		},
	}
}

// Clone returns a deep copy of the configuration.
//
// All fields except Logger.Writers are plain values; the writer list is the
// only reference type and gets copied so snapshots never alias each other.
func (c Config) Clone() Config {
	clone := c
	if c.Logger.Writers != nil {
		clone.Logger.Writers = make([]string, len(c.Logger.Writers))
		copy(clone.Logger.Writers, c.Logger.Writers)
	}
	return clone
}

// Equal reports whether two configurations are structurally identical.
func (c Config) Equal(other Config) bool {
	return len(DiffConfigs(c, other)) == 0
}

// DiffConfigs compares two configurations and returns the dot-separated paths
// of all fields that differ, grouped by section in declaration order.
//
// The comparison is explicit and field-by-field rather than reflective: each
// section knows which of its fields participate in change detection, which
// keeps the reported paths stable across schema evolution.
func DiffConfigs(oldCfg, newCfg Config) []string {
	var changes []string
	changes = append(changes, diffThread(oldCfg.Thread, newCfg.Thread)...)
	changes = append(changes, diffLogger(oldCfg.Logger, newCfg.Logger)...)
	changes = append(changes, diffMonitoring(oldCfg.Monitoring, newCfg.Monitoring)...)
	changes = append(changes, diffDatabase(oldCfg.Database, newCfg.Database)...)
	changes = append(changes, diffNetwork(oldCfg.Network, newCfg.Network)...)
	return changes
}

func diffThread(old, new ThreadConfig) []string {
	var changes []string
	if old.PoolSize != new.PoolSize {
		changes = append(changes, "thread.pool_size")
	}
	if old.QueueType != new.QueueType {
		changes = append(changes, "thread.queue_type")
	}
	if old.MaxQueueSize != new.MaxQueueSize {
		changes = append(changes, "thread.max_queue_size")
	}
	if old.ThreadNamePrefix != new.ThreadNamePrefix {
		changes = append(changes, "thread.thread_name_prefix")
	}
	return changes
}

func diffLogger(old, new LoggerConfig) []string {
	var changes []string
	if old.Level != new.Level {
		changes = append(changes, "logger.level")
	}
	if !stringSlicesEqual(old.Writers, new.Writers) {
		changes = append(changes, "logger.writers")
	}
	if old.Async != new.Async {
		changes = append(changes, "logger.async")
	}
	if old.BufferSize != new.BufferSize {
		changes = append(changes, "logger.buffer_size")
	}
	if old.FilePath != new.FilePath {
		changes = append(changes, "logger.file_path")
	}
	if old.MaxFileSize != new.MaxFileSize {
		changes = append(changes, "logger.max_file_size")
	}
	if old.MaxBackupFiles != new.MaxBackupFiles {
		changes = append(changes, "logger.max_backup_files")
	}
	return changes
}

func diffMonitoring(old, new MonitoringConfig) []string {
	var changes []string
	if old.Enabled != new.Enabled {
		changes = append(changes, "monitoring.enabled")
	}
	if old.MetricsInterval != new.MetricsInterval {
		changes = append(changes, "monitoring.metrics_interval")
	}
	if old.HealthCheckInterval != new.HealthCheckInterval {
		changes = append(changes, "monitoring.health_check_interval")
	}
	if old.Tracing.Enabled != new.Tracing.Enabled {
		changes = append(changes, "monitoring.tracing.enabled")
	}
	if old.Tracing.SamplingRate != new.Tracing.SamplingRate {
		changes = append(changes, "monitoring.tracing.sampling_rate")
	}
	if old.Tracing.Exporter != new.Tracing.Exporter {
		changes = append(changes, "monitoring.tracing.exporter")
	}
	if old.Tracing.Endpoint != new.Tracing.Endpoint {
		changes = append(changes, "monitoring.tracing.endpoint")
	}
	if old.PrometheusPort != new.PrometheusPort {
		changes = append(changes, "monitoring.prometheus_port")
	}
	if old.PrometheusPath != new.PrometheusPath {
		changes = append(changes, "monitoring.prometheus_path")
	}
	return changes
}

func diffDatabase(old, new DatabaseConfig) []string {
	var changes []string
	if old.Backend != new.Backend {
		changes = append(changes, "database.backend")
	}
	if old.ConnectionString != new.ConnectionString {
		changes = append(changes, "database.connection_string")
	}
	if old.Pool.MinSize != new.Pool.MinSize {
		changes = append(changes, "database.pool.min_size")
	}
	if old.Pool.MaxSize != new.Pool.MaxSize {
		changes = append(changes, "database.pool.max_size")
	}
	if old.Pool.IdleTimeout != new.Pool.IdleTimeout {
		changes = append(changes, "database.pool.idle_timeout")
	}
	if old.Pool.AcquireTimeout != new.Pool.AcquireTimeout {
		changes = append(changes, "database.pool.acquire_timeout")
	}
	if old.LogQueries != new.LogQueries {
		changes = append(changes, "database.log_queries")
	}
	if old.SlowQueryThreshold != new.SlowQueryThreshold {
		changes = append(changes, "database.slow_query_threshold")
	}
	return changes
}

func diffNetwork(old, new NetworkConfig) []string {
	var changes []string
	if old.TLS.Enabled != new.TLS.Enabled {
		changes = append(changes, "network.tls.enabled")
	}
	if old.TLS.Version != new.TLS.Version {
		changes = append(changes, "network.tls.version")
	}
	if old.TLS.CertPath != new.TLS.CertPath {
		changes = append(changes, "network.tls.cert_path")
	}
	if old.TLS.KeyPath != new.TLS.KeyPath {
		changes = append(changes, "network.tls.key_path")
	}
	if old.TLS.CAPath != new.TLS.CAPath {
		changes = append(changes, "network.tls.ca_path")
	}
	if old.TLS.VerifyPeer != new.TLS.VerifyPeer {
		changes = append(changes, "network.tls.verify_peer")
	}
	if old.Compression != new.Compression {
		changes = append(changes, "network.compression")
	}
	if old.BufferSize != new.BufferSize {
		changes = append(changes, "network.buffer_size")
	}
	if old.ConnectTimeout != new.ConnectTimeout {
		changes = append(changes, "network.connect_timeout")
	}
	if old.IOTimeout != new.IOTimeout {
		changes = append(changes, "network.io_timeout")
	}
	if old.KeepaliveInterval != new.KeepaliveInterval {
		changes = append(changes, "network.keepalive_interval")
	}
	if old.MaxConnections != new.MaxConnections {
		changes = append(changes, "network.max_connections")
	}
	return changes
}

// stringSlicesEqual compares two string slices for equality, treating nil and
// empty slices as equal.
func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// FieldMetadata describes a configuration field for validation, documentation
// and hot-reload classification.
type FieldMetadata struct {
	// Field path (e.g., "logger.level")
	Path string

	// Human-readable description
	Description string

	// Whether the field can be hot-reloaded
	HotReloadable bool

	// Environment variable name (if applicable)
	EnvVar string

	// Allowed values (for enum-like fields)
	AllowedValues []string
}

// ConfigMetadata returns metadata for all configuration fields that
// participate in environment overrides or hot-reload classification.
func ConfigMetadata() []FieldMetadata {
	return []FieldMetadata{
		// Thread configuration
		{Path: "thread.pool_size", Description: "Number of worker threads (0 for auto)",
			EnvVar: "CONFWATCH_THREAD_POOL_SIZE"},
		{Path: "thread.queue_type", Description: "Task queue type",
			EnvVar: "CONFWATCH_THREAD_QUEUE_TYPE", AllowedValues: []string{"mutex", "lockfree", "bounded"}},
		{Path: "thread.max_queue_size", Description: "Maximum task queue size",
			EnvVar: "CONFWATCH_THREAD_MAX_QUEUE_SIZE"},

		// Logger configuration
		{Path: "logger.level", Description: "Log level", HotReloadable: true,
			EnvVar:        "CONFWATCH_LOGGER_LEVEL",
			AllowedValues: []string{"trace", "debug", "info", "warn", "error", "critical", "off"}},
		{Path: "logger.async", Description: "Enable async logging",
			EnvVar: "CONFWATCH_LOGGER_ASYNC"},
		{Path: "logger.buffer_size", Description: "Async buffer size",
			EnvVar: "CONFWATCH_LOGGER_BUFFER_SIZE"},
		{Path: "logger.file_path", Description: "Log file path", HotReloadable: true,
			EnvVar: "CONFWATCH_LOGGER_FILE_PATH"},

		// Monitoring configuration
		{Path: "monitoring.enabled", Description: "Enable monitoring",
			EnvVar: "CONFWATCH_MONITORING_ENABLED"},
		{Path: "monitoring.metrics_interval", Description: "Metrics collection interval", HotReloadable: true,
			EnvVar: "CONFWATCH_MONITORING_METRICS_INTERVAL"},
		{Path: "monitoring.tracing.enabled", Description: "Enable distributed tracing",
			EnvVar: "CONFWATCH_MONITORING_TRACING_ENABLED"},
		{Path: "monitoring.tracing.sampling_rate", Description: "Trace sampling rate", HotReloadable: true,
			EnvVar: "CONFWATCH_MONITORING_TRACING_SAMPLING_RATE"},

		// Database configuration
		{Path: "database.backend", Description: "Database backend type",
			EnvVar:        "CONFWATCH_DATABASE_BACKEND",
			AllowedValues: []string{"postgresql", "mysql", "sqlite", "mongodb", "redis"}},
		{Path: "database.connection_string", Description: "Database connection string",
			EnvVar: "CONFWATCH_DATABASE_CONNECTION_STRING"},
		{Path: "database.pool.min_size", Description: "Minimum pool size",
			EnvVar: "CONFWATCH_DATABASE_POOL_MIN_SIZE"},
		{Path: "database.pool.max_size", Description: "Maximum pool size",
			EnvVar: "CONFWATCH_DATABASE_POOL_MAX_SIZE"},

		// Network configuration
		{Path: "network.tls.enabled", Description: "Enable TLS",
			EnvVar: "CONFWATCH_NETWORK_TLS_ENABLED"},
		{Path: "network.tls.version", Description: "TLS version",
			EnvVar: "CONFWATCH_NETWORK_TLS_VERSION", AllowedValues: []string{"1.2", "1.3"}},
		{Path: "network.compression", Description: "Compression algorithm",
			EnvVar:        "CONFWATCH_NETWORK_COMPRESSION",
			AllowedValues: []string{"none", "lz4", "gzip", "deflate", "zstd"}},
		{Path: "network.buffer_size", Description: "I/O buffer size",
			EnvVar: "CONFWATCH_NETWORK_BUFFER_SIZE"},
	}
}

// IsHotReloadable reports whether a configuration field can be changed at
// runtime without restarting the consuming subsystems. Changed fields that
// are not hot-reloadable are still committed, but the watcher logs them so
// operators know a restart is needed for the change to take full effect.
func IsHotReloadable(fieldPath string) bool {
	for _, field := range ConfigMetadata() {
		if field.Path == fieldPath {
			return field.HotReloadable
		}
	}
	return false
}
