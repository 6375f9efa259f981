// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package middleware provides the HTTP middleware shared by the API router and
the auth packages.

Key Components:

  - RequestID: accepts or generates an X-Request-ID and stores it in the
    request context for logging and error bodies
  - PrometheusMetrics: request count, latency and in-flight gauges labeled by
    the chi route pattern
  - AccessLog: one structured log line per completed request
  - WriteError / WriteJSON: the JSON response writers used by every layer so
    that 401, 403 and handler errors share one envelope

Middleware Stack:

The router installs them in this order:

	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog)
	r.Use(middleware.PrometheusMetrics)

Thread Safety:

All middleware is stateless per request. Metrics use the prometheus client's
atomic collectors.

See Also:

  - internal/api: router and handlers
  - internal/auth: authentication gate
  - internal/authz: access policy
  - internal/metrics: Prometheus metric definitions
*/
package middleware
