// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package config loads Marquee configuration from built-in defaults, an
// optional YAML file and environment variables, in that order of precedence.
package config

import "time"

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	API      APIConfig      `koanf:"api"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
	Breaker  BreakerConfig  `koanf:"breaker"`
	Tracing  TracingConfig  `koanf:"tracing"`
	Audit    AuditConfig    `koanf:"audit"`
	EventBus EventBusConfig `koanf:"eventbus"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// Path is the DuckDB database file. ":memory:" opens a transient database.
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"`

	// MaxTxRetries bounds how often a write transaction is retried after a
	// DuckDB write-write conflict.
	MaxTxRetries int `koanf:"max_tx_retries"`

	// CheckpointInterval is how often the WAL is flushed into the database
	// file. Zero disables the periodic checkpoint.
	CheckpointInterval time.Duration `koanf:"checkpoint_interval"`
}

// APIConfig holds settings for the REST surface.
type APIConfig struct {
	// BasePath is the URL prefix every resource route is mounted under.
	BasePath string `koanf:"base_path"`

	// MaxBodyBytes caps request bodies on write endpoints.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// SwaggerEnabled exposes /swagger/* when true.
	SwaggerEnabled bool `koanf:"swagger_enabled"`

	// EventsEnabled serves the WebSocket change feed at {BasePath}/events.
	EventsEnabled bool `koanf:"events_enabled"`
}

// SecurityConfig holds authentication and authorization settings.
type SecurityConfig struct {
	// AuthMode selects the authenticators: basic, jwt or multi (both).
	AuthMode       string        `koanf:"auth_mode"`
	JWTSecret      string        `koanf:"jwt_secret"`
	SessionTimeout time.Duration `koanf:"session_timeout"`

	// AdminUsername and AdminPassword bootstrap a superuser at startup when
	// both are set and the user does not exist yet.
	AdminUsername string `koanf:"admin_username"`
	AdminPassword string `koanf:"admin_password"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	// LoginRateLimitReqs bounds token requests per client IP per LoginRateLimitWindow.
	LoginRateLimitReqs   int           `koanf:"login_rate_limit_reqs"`
	LoginRateLimitWindow time.Duration `koanf:"login_rate_limit_window"`

	CORSOrigins    []string `koanf:"cors_origins"`
	TrustedProxies []string `koanf:"trusted_proxies"`

	Casbin CasbinConfig `koanf:"casbin"`
}

// CasbinConfig holds RBAC enforcer settings.
type CasbinConfig struct {
	// Enabled switches the HTTP access check from the built-in staff rule to
	// the Casbin enforcer.
	Enabled bool `koanf:"enabled"`

	// ModelPath and PolicyPath override the embedded model and policy.
	ModelPath  string `koanf:"model_path"`
	PolicyPath string `koanf:"policy_path"`

	DefaultRole  string        `koanf:"default_role"`
	CacheEnabled bool          `koanf:"cache_enabled"`
	CacheTTL     time.Duration `koanf:"cache_ttl"`
}

// AuditConfig holds the audit trail settings.
type AuditConfig struct {
	Enabled bool `koanf:"enabled"`

	// BufferSize is the number of events queued for the writer before new
	// events are dropped.
	BufferSize int `koanf:"buffer_size"`

	// RetentionDays deletes older events. Zero keeps events forever.
	RetentionDays   int           `koanf:"retention_days"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
}

// EventBusConfig routes change feed events through NATS so every API
// instance sees every write. Disabled, changes only reach clients of the
// instance that made them.
type EventBusConfig struct {
	Enabled bool `koanf:"enabled"`

	// URL of the NATS server. Ignored when Embedded is set.
	URL string `koanf:"url"`

	// Embedded starts an in-process NATS server on Host:Port.
	Embedded bool   `koanf:"embedded"`
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`

	// Subject carries the JSON-encoded changes.
	Subject string `koanf:"subject"`

	MaxReconnects int           `koanf:"max_reconnects"`
	ReconnectWait time.Duration `koanf:"reconnect_wait"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// BreakerConfig holds the database circuit breaker settings.
type BreakerConfig struct {
	Enabled bool `koanf:"enabled"`

	// ConsecutiveFailures trips the breaker.
	ConsecutiveFailures uint32 `koanf:"consecutive_failures"`

	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration `koanf:"timeout"`

	// Interval clears failure counts while closed. Zero never clears.
	Interval time.Duration `koanf:"interval"`
}

// TracingConfig holds OpenTelemetry HTTP instrumentation settings.
type TracingConfig struct {
	Enabled     bool   `koanf:"enabled"`
	ServiceName string `koanf:"service_name"`

	// Endpoint is the OTLP/gRPC collector address (host:port).
	Endpoint string `koanf:"endpoint"`
	Insecure bool   `koanf:"insecure"`

	// SampleRatio is the fraction of root spans recorded, 0 to 1.
	SampleRatio float64 `koanf:"sample_ratio"`
}

// Load reads configuration from defaults, config file and environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
