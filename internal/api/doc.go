// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package api binds the catalog to HTTP using the chi router.

Routes (trailing slashes optional):

	GET    /api/v1/                    resource index
	GET    /api/v1/movies/             list, ?search= and ?ordering=name|-name
	POST   /api/v1/movies/             create (staff)
	GET    /api/v1/movies/{id}/        fetch
	PUT    /api/v1/movies/{id}/        full update (staff)
	PATCH  /api/v1/movies/{id}/        partial update (staff)
	DELETE /api/v1/movies/{id}/        delete (staff)
	GET    /api/v1/directors/[{id}/]   list, fetch
	DELETE /api/v1/directors/{id}/     delete with its movies (staff)
	GET    /api/v1/genres/[{id}/]      list, fetch
	DELETE /api/v1/genres/{id}/        delete, detaching movies (staff)
	POST   /api/v1/auth/token          exchange credentials for a JWT

Outside the authentication gate:

	GET /health/live, /health/ready, /metrics, /swagger/*

Request Flow:

	RequestID -> RealIP -> Recoverer -> AccessLog -> PrometheusMetrics ->
	CORS -> rate limit -> security headers -> auth.Authenticate ->
	authz.Authorize -> handler -> serializer -> repository

Response Format:

Successful responses are bare resource JSON. Errors use the envelope from
models.ErrorResponse, written by middleware.WriteError so that the auth gate,
the access policy and the handlers answer alike.
*/
package api
