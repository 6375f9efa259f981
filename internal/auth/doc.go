// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package auth implements the authentication gate in front of the catalog API.

Authentication Modes:

  - basic: HTTP Basic credentials checked against the users table (bcrypt)
  - jwt: HS256 bearer tokens issued by POST /api/v1/auth/token
  - multi: bearer token first, then Basic

Every mode produces a Principal carrying the username and the role derived
from the account flags (viewer, staff or admin). The Principal is stored in
the request context; internal/authz reads it to decide whether a verb is
allowed.

Usage:

	authenticator, err := auth.NewAuthenticator(cfg.Security, jwtManager, db.Users())
	gate := auth.NewMiddleware(authenticator)
	r.Use(gate.Authenticate)

Failure Handling:

Requests without usable credentials, or with invalid ones, are rejected with
401 and a WWW-Authenticate challenge before any handler runs. Credentials that
were supplied but rejected stop the multi chain; only a missing credential
falls through to the next authenticator.

Login Throttling:

RateLimiter keeps one token bucket per client IP (golang.org/x/time/rate) and
guards the token endpoint against password guessing.
*/
package auth
