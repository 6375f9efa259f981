// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths searched for a config file, in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/marquee/config.yaml",
	"/etc/marquee/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns the built-in defaults. File and environment values
// are layered on top.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8000,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Database: DatabaseConfig{
			Path:               "/data/marquee.duckdb",
			MaxMemory:          "512MB",
			Threads:            0,
			MaxTxRetries:       3,
			CheckpointInterval: 5 * time.Minute,
		},
		API: APIConfig{
			BasePath:       "/api/v1",
			MaxBodyBytes:   1 << 20,
			SwaggerEnabled: true,
			EventsEnabled:  true,
		},
		Security: SecurityConfig{
			AuthMode:             "multi",
			JWTSecret:            "",
			SessionTimeout:       24 * time.Hour,
			RateLimitReqs:        100,
			RateLimitWindow:      time.Minute,
			RateLimitDisabled:    false,
			LoginRateLimitReqs:   10,
			LoginRateLimitWindow: time.Minute,
			CORSOrigins:          []string{"*"},
			TrustedProxies:       []string{},
			Casbin: CasbinConfig{
				Enabled:      true,
				DefaultRole:  "viewer",
				CacheEnabled: true,
				CacheTTL:     5 * time.Minute,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Breaker: BreakerConfig{
			Enabled:             true,
			ConsecutiveFailures: 5,
			Timeout:             30 * time.Second,
			Interval:            0,
		},
		Tracing: TracingConfig{
			Enabled:     false,
			ServiceName: "marquee",
			Endpoint:    "localhost:4317",
			Insecure:    true,
			SampleRatio: 1.0,
		},
		Audit: AuditConfig{
			Enabled:         true,
			BufferSize:      1000,
			RetentionDays:   90,
			CleanupInterval: 24 * time.Hour,
		},
		EventBus: EventBusConfig{
			Enabled:       false,
			URL:           "nats://127.0.0.1:4222",
			Embedded:      false,
			Host:          "127.0.0.1",
			Port:          4222,
			Subject:       "marquee.catalog.changes",
			MaxReconnects: -1,
			ReconnectWait: 2 * time.Second,
		},
	}
}

// LoadWithKoanf loads configuration with layered sources:
//  1. Defaults from defaultConfig
//  2. Optional YAML config file
//  3. Environment variables
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// DUCKDB_PATH -> database.path, HTTP_PORT -> server.port, ...
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths are parsed from comma-separated strings when set via env.
var sliceConfigPaths = []string{
	"security.cors_origins",
	"security.trusted_proxies",
}

// processSliceFields splits comma-separated env values for slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
// Variables not listed are ignored.
var envMappings = map[string]string{
	// Server
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",

	// Database
	"duckdb_path":                "database.path",
	"duckdb_max_memory":          "database.max_memory",
	"duckdb_threads":             "database.threads",
	"duckdb_max_tx_retries":      "database.max_tx_retries",
	"duckdb_checkpoint_interval": "database.checkpoint_interval",

	// API
	"api_base_path":       "api.base_path",
	"api_max_body_bytes":  "api.max_body_bytes",
	"api_swagger_enabled": "api.swagger_enabled",
	"api_events_enabled":  "api.events_enabled",

	// Security
	"auth_mode":               "security.auth_mode",
	"jwt_secret":              "security.jwt_secret",
	"session_timeout":         "security.session_timeout",
	"admin_username":          "security.admin_username",
	"admin_password":          "security.admin_password",
	"rate_limit_requests":     "security.rate_limit_reqs",
	"rate_limit_window":       "security.rate_limit_window",
	"disable_rate_limit":      "security.rate_limit_disabled",
	"login_rate_limit_reqs":   "security.login_rate_limit_reqs",
	"login_rate_limit_window": "security.login_rate_limit_window",
	"cors_origins":            "security.cors_origins",
	"trusted_proxies":         "security.trusted_proxies",

	// Casbin
	"casbin_enabled":       "security.casbin.enabled",
	"casbin_model_path":    "security.casbin.model_path",
	"casbin_policy_path":   "security.casbin.policy_path",
	"casbin_default_role":  "security.casbin.default_role",
	"casbin_cache_enabled": "security.casbin.cache_enabled",
	"casbin_cache_ttl":     "security.casbin.cache_ttl",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Circuit breaker
	"db_breaker_enabled":  "breaker.enabled",
	"db_breaker_failures": "breaker.consecutive_failures",
	"db_breaker_timeout":  "breaker.timeout",
	"db_breaker_interval": "breaker.interval",

	// Tracing
	"tracing_enabled":             "tracing.enabled",
	"otel_service_name":           "tracing.service_name",
	"otel_exporter_otlp_endpoint": "tracing.endpoint",
	"otel_exporter_otlp_insecure": "tracing.insecure",
	"otel_traces_sampler_ratio":   "tracing.sample_ratio",

	// Audit
	"audit_enabled":          "audit.enabled",
	"audit_buffer_size":      "audit.buffer_size",
	"audit_retention_days":   "audit.retention_days",
	"audit_cleanup_interval": "audit.cleanup_interval",

	// Event bus
	"nats_enabled":        "eventbus.enabled",
	"nats_url":            "eventbus.url",
	"nats_embedded":       "eventbus.embedded",
	"nats_host":           "eventbus.host",
	"nats_port":           "eventbus.port",
	"nats_subject":        "eventbus.subject",
	"nats_max_reconnects": "eventbus.max_reconnects",
	"nats_reconnect_wait": "eventbus.reconnect_wait",
}

// envTransformFunc maps an environment variable name to its koanf path.
// Returning "" tells koanf to skip the variable.
func envTransformFunc(key string) string {
	if path, ok := envMappings[strings.ToLower(key)]; ok {
		return path
	}
	return ""
}
