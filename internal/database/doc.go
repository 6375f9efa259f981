// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package database provides the DuckDB-backed persistence layer for the
// movie catalog.
//
// # Overview
//
// DB owns the connection pool, the versioned schema and a circuit breaker
// that guards every repository call. Repositories are thin views over DB:
//
//   - Movies: MovieRepository (Find, Search, Create, Update, Delete)
//   - Directors: list, get, delete with cascade to movies
//   - Genres: list, get, delete that detaches from movies
//   - Users: API accounts for authentication
//
// # Transactions
//
// Multi-row writes run inside one transaction via DB.withTx. DuckDB uses
// optimistic concurrency, so concurrent writers may fail with a transaction
// conflict; withTx retries those up to DatabaseConfig.MaxTxRetries times
// with a short exponential backoff.
//
// # Referential Integrity
//
// The schema declares no FOREIGN KEY constraints. DuckDB cannot cascade
// deletes and rejects deleting a parent row inside the same transaction that
// removes its children, so cascade and detach are done explicitly by the
// repositories inside a transaction.
//
// # Errors
//
// Lookups return sentinel errors (ErrMovieNotFound, ErrDirectorNotFound,
// ErrGenreNotFound, ErrUserNotFound) matched with errors.Is. ErrUnavailable
// is returned while the circuit breaker is open. Everything else is wrapped
// with %w.
package database
