// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package config

import (
	"fmt"
	"strings"
)

// minJWTSecretLength is the shortest accepted HS256 signing secret.
const minJWTSecretLength = 32

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateAPI(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	if err := c.validateBreaker(); err != nil {
		return err
	}
	if err := c.validateTracing(); err != nil {
		return err
	}
	if err := c.validateAudit(); err != nil {
		return err
	}
	if err := c.validateEventBus(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateAudit() error {
	if !c.Audit.Enabled {
		return nil
	}
	if c.Audit.BufferSize <= 0 {
		return fmt.Errorf("AUDIT_BUFFER_SIZE must be positive, got %d", c.Audit.BufferSize)
	}
	if c.Audit.RetentionDays < 0 {
		return fmt.Errorf("AUDIT_RETENTION_DAYS must not be negative, got %d", c.Audit.RetentionDays)
	}
	if c.Audit.RetentionDays > 0 && c.Audit.CleanupInterval <= 0 {
		return fmt.Errorf("AUDIT_CLEANUP_INTERVAL must be positive when retention is set, got %s", c.Audit.CleanupInterval)
	}
	return nil
}

func (c *Config) validateEventBus() error {
	if !c.EventBus.Enabled {
		return nil
	}
	if c.EventBus.Subject == "" || strings.ContainsAny(c.EventBus.Subject, " *>") {
		return fmt.Errorf("NATS_SUBJECT must be a literal subject, got %q", c.EventBus.Subject)
	}
	if c.EventBus.Embedded {
		if c.EventBus.Port < -1 || c.EventBus.Port > 65535 {
			return fmt.Errorf("NATS_PORT must be between -1 and 65535, got %d", c.EventBus.Port)
		}
		return nil
	}
	if !strings.HasPrefix(c.EventBus.URL, "nats://") && !strings.HasPrefix(c.EventBus.URL, "tls://") {
		return fmt.Errorf("NATS_URL must start with nats:// or tls://, got %q", c.EventBus.URL)
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", c.Server.Timeout)
	}
	switch c.Server.Environment {
	case "development", "production", "test":
		return nil
	default:
		return fmt.Errorf("ENVIRONMENT must be development, production or test, got %q", c.Server.Environment)
	}
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must not be negative, got %d", c.Database.Threads)
	}
	if c.Database.MaxTxRetries < 0 {
		return fmt.Errorf("DUCKDB_MAX_TX_RETRIES must not be negative, got %d", c.Database.MaxTxRetries)
	}
	return nil
}

func (c *Config) validateAPI() error {
	if !strings.HasPrefix(c.API.BasePath, "/") {
		return fmt.Errorf("API_BASE_PATH must start with '/', got %q", c.API.BasePath)
	}
	if c.API.MaxBodyBytes <= 0 {
		return fmt.Errorf("API_MAX_BODY_BYTES must be positive, got %d", c.API.MaxBodyBytes)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	switch c.Security.AuthMode {
	case "basic":
	case "jwt", "multi":
		if len(c.Security.JWTSecret) < minJWTSecretLength {
			return fmt.Errorf("JWT_SECRET must be at least %d characters for auth mode %q",
				minJWTSecretLength, c.Security.AuthMode)
		}
	default:
		return fmt.Errorf("AUTH_MODE must be basic, jwt or multi, got %q", c.Security.AuthMode)
	}

	if c.Security.SessionTimeout <= 0 {
		return fmt.Errorf("SESSION_TIMEOUT must be positive, got %s", c.Security.SessionTimeout)
	}

	if (c.Security.AdminUsername == "") != (c.Security.AdminPassword == "") {
		return fmt.Errorf("ADMIN_USERNAME and ADMIN_PASSWORD must be set together")
	}
	if c.Security.AdminPassword != "" && len(c.Security.AdminPassword) < 8 {
		return fmt.Errorf("ADMIN_PASSWORD must be at least 8 characters")
	}

	if c.IsProduction() && c.hasWildcardCORS() {
		return fmt.Errorf("CORS_ORIGINS=* is not allowed in production; list the allowed origins explicitly")
	}

	return c.validateRateLimits()
}

func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 || c.Security.RateLimitReqs > 100000 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between 1 and 100000, got %d", c.Security.RateLimitReqs)
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %s", c.Security.RateLimitWindow)
	}
	if c.Security.LoginRateLimitReqs < 1 {
		return fmt.Errorf("LOGIN_RATE_LIMIT_REQS must be at least 1, got %d", c.Security.LoginRateLimitReqs)
	}
	if c.Security.LoginRateLimitWindow <= 0 {
		return fmt.Errorf("LOGIN_RATE_LIMIT_WINDOW must be positive, got %s", c.Security.LoginRateLimitWindow)
	}
	return nil
}

func (c *Config) validateBreaker() error {
	if !c.Breaker.Enabled {
		return nil
	}
	if c.Breaker.ConsecutiveFailures == 0 {
		return fmt.Errorf("DB_BREAKER_FAILURES must be at least 1")
	}
	if c.Breaker.Timeout <= 0 {
		return fmt.Errorf("DB_BREAKER_TIMEOUT must be positive, got %s", c.Breaker.Timeout)
	}
	return nil
}

func (c *Config) validateTracing() error {
	if !c.Tracing.Enabled {
		return nil
	}
	if c.Tracing.Endpoint == "" {
		return fmt.Errorf("OTEL_EXPORTER_OTLP_ENDPOINT is required when tracing is enabled")
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("OTEL_TRACES_SAMPLER_RATIO must be between 0 and 1, got %v", c.Tracing.SampleRatio)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL is invalid: %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
}
