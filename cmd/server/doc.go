// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package main is the entry point for the Marquee server.

Marquee serves a movie catalog (movies, directors, genres) over a JSON REST
API. Reads are open to any authenticated account; writes need a staff role.

# Application Architecture

	RootSupervisor ("marquee")
	├── DataSupervisor ("data-layer")
	│   ├── CheckpointService
	│   └── audit.Logger (AUDIT_ENABLED)
	└── APISupervisor ("api-layer")
	    ├── websocket.Hub (API_EVENTS_ENABLED)
	    ├── eventbus.Bridge (NATS_ENABLED)
	    └── HTTPServerService

Component initialization order:

 1. Configuration: koanf v2 with defaults, optional YAML file and environment
 2. Logging: zerolog with JSON or console output
 3. Tracing: OpenTelemetry OTLP exporter (TRACING_ENABLED=true)
 4. Database: DuckDB, migrated on open, guarded by a circuit breaker
 5. Bootstrap admin: ADMIN_USERNAME / ADMIN_PASSWORD
 6. Authentication: Basic, JWT or both (AUTH_MODE)
 7. Authorization: Casbin RBAC or the built-in staff rule (CASBIN_ENABLED)
 8. Audit trail: buffered writer into the audit_events table
 9. Change feed: WebSocket hub, optionally fanned out over NATS
10. HTTP: chi router, wrapped by otelhttp when tracing is on
11. Supervisor tree: suture v4

# Configuration

Common environment variables:

	HTTP_PORT=8000
	DUCKDB_PATH=/data/marquee.duckdb
	JWT_SECRET=<at least 32 characters>
	ADMIN_USERNAME=admin
	ADMIN_PASSWORD=<bootstrap password>
	AUTH_MODE=multi
	LOG_LEVEL=info
	LOG_FORMAT=json

A YAML file is read from CONFIG_PATH when set. Environment variables
override file values.

# Signals

SIGINT and SIGTERM stop the supervisor tree. The HTTP server drains for
HTTP_SHUTDOWN_TIMEOUT before the database is checkpointed and closed.
*/
package main
