// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package main provides the Marquee HTTP server
//
// @title Marquee API
// @version 1.0
// @description REST API for a movie catalog of movies, directors and genres.
// @description
// @description ## Authentication
// @description
// @description Every /api/v1 route except /auth/token requires credentials, either
// @description HTTP Basic or a bearer token from `POST /api/v1/auth/token`.
// @description Any account may read. Creating, updating and deleting need a staff account.
// @description
// @description ## Error Responses
// @description
// @description All error responses follow this format:
// @description ```json
// @description {
// @description   "success": false,
// @description   "error": {
// @description     "code": "VALIDATION_ERROR",
// @description     "message": "Human-readable error message",
// @description     "details": {},
// @description     "request_id": "..."
// @description   }
// @description }
// @description ```
//
// @contact.name GitHub Repository
// @contact.url https://github.com/tomtom215/marquee/issues
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @host localhost:8000
// @BasePath /api/v1
// @schemes http https
//
// @securityDefinitions.basic BasicAuth
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description "Bearer " followed by a token from /api/v1/auth/token.
//
// @tag.name Movies
// @tag.description Movie resource with nested director and genres
//
// @tag.name Catalog
// @tag.description API root, directors and genres
//
// @tag.name Auth
// @tag.description Bearer token issuance
package main
