// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package metrics provides Prometheus instrumentation for the catalog API.

Metrics are registered on the default registry with promauto and exposed at
/metrics by the API router:

	curl http://localhost:8000/metrics

Database:
  - duckdb_query_duration_seconds{operation,table}
  - duckdb_query_errors_total{operation,table,error_type}
  - duckdb_transaction_retries_total{operation}

HTTP:
  - api_requests_total{method,endpoint,status}
  - api_request_duration_seconds{method,endpoint}
  - api_active_requests
  - api_rate_limit_hits_total{scope}

Security:
  - auth_attempts_total{method,result}
  - authz_decisions_total{action,result}

Catalog:
  - catalog_writes_total{resource,operation}
  - audit_events_total{type,result}
  - events_clients, events_messages_total{result}
  - eventbus_messages_total{direction,result}

Circuit breaker:
  - circuit_breaker_state{name} (0=closed, 1=half-open, 2=open)
  - circuit_breaker_requests_total{name,result}
  - circuit_breaker_state_transitions_total{name,from_state,to_state}
*/
package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	DBTransactionRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_transaction_retries_total",
			Help: "Total number of write transactions retried after a conflict",
		},
		[]string{"operation"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of API requests currently being served",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of requests rejected by a rate limiter",
		},
		[]string{"scope"}, // "api", "login"
	)

	// Security Metrics
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"method", "result"}, // result: "success", "failure"
	)

	AuthzDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authz_decisions_total",
			Help: "Total number of access decisions",
		},
		[]string{"action", "result"}, // result: "allow", "deny"
	)

	// Catalog Metrics
	CatalogWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_writes_total",
			Help: "Total number of committed catalog writes",
		},
		[]string{"resource", "operation"},
	)

	// Audit Metrics
	AuditEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_events_total",
			Help: "Total number of audit events by type and result",
		},
		[]string{"type", "result"}, // result: "written", "dropped", "failed"
	)

	// Change Feed Metrics
	EventClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "events_clients",
			Help: "Current number of connected change feed clients",
		},
	)

	EventMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_messages_total",
			Help: "Total number of change feed messages by result",
		},
		[]string{"result"}, // result: "queued", "dropped"
	)

	EventBusMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventbus_messages_total",
			Help: "Total number of NATS change messages by direction and result",
		},
		[]string{"direction", "result"}, // direction: "out", "in"
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Application Info
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordDBQuery records a database query metric. An empty errorType marks success.
func RecordDBQuery(operation, table string, duration time.Duration, errorType string) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if errorType != "" {
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordTxRetry records a write transaction retried after a conflict
func RecordTxRetry(operation string) {
	DBTransactionRetries.WithLabelValues(operation).Inc()
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimitHit records a request rejected by a limiter
func RecordRateLimitHit(scope string) {
	APIRateLimitHits.WithLabelValues(scope).Inc()
}

// RecordAuthAttempt records the outcome of an authentication attempt
func RecordAuthAttempt(method string, success bool) {
	AuthAttempts.WithLabelValues(method, resultLabel(success, "success", "failure")).Inc()
}

// RecordAuthzDecision records the outcome of an access check
func RecordAuthzDecision(action string, allowed bool) {
	AuthzDecisions.WithLabelValues(action, resultLabel(allowed, "allow", "deny")).Inc()
}

// RecordCatalogWrite records a committed create, update or delete
func RecordCatalogWrite(resource, operation string) {
	CatalogWrites.WithLabelValues(resource, operation).Inc()
}

// Circuit breaker state values for CircuitBreakerState.
const (
	BreakerClosed   = 0
	BreakerHalfOpen = 1
	BreakerOpen     = 2
)

// RecordBreakerTransition records a state change and updates the state gauge
func RecordBreakerTransition(name, from, to string, state float64) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(state)
}

// RecordBreakerRequest records a request outcome: success, failure or rejected
func RecordBreakerRequest(name, result string) {
	CircuitBreakerRequests.WithLabelValues(name, result).Inc()
}

// SetAppInfo publishes the running version
func SetAppInfo(version string) {
	AppInfo.WithLabelValues(version, runtime.Version()).Set(1)
}

// TrackUptime updates AppUptime relative to start
func TrackUptime(start time.Time) {
	AppUptime.Set(time.Since(start).Seconds())
}

func resultLabel(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}
