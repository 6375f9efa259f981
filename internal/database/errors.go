// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package database

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/tomtom215/marquee/internal/logging"
)

// Repository errors
var (
	ErrMovieNotFound    = errors.New("movie not found")
	ErrDirectorNotFound = errors.New("director not found")
	ErrGenreNotFound    = errors.New("genre not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrUserExists       = errors.New("user already exists")
	ErrIncompleteMovie  = errors.New("movie requires name, score, popularity and director")

	// ErrUnavailable is returned while the circuit breaker rejects calls.
	ErrUnavailable = errors.New("database temporarily unavailable")
)

// IsNotFound reports whether err is any of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrMovieNotFound) ||
		errors.Is(err, ErrDirectorNotFound) ||
		errors.Is(err, ErrGenreNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// isExpected reports whether err is a normal outcome rather than a store
// failure. Expected errors never trip the circuit breaker.
func isExpected(err error) bool {
	return IsNotFound(err) ||
		errors.Is(err, ErrUserExists) ||
		errors.Is(err, ErrIncompleteMovie) ||
		errors.Is(err, context.Canceled)
}

// errorType maps err to a low-cardinality metric label. Nil maps to "".
func errorType(err error) string {
	switch {
	case err == nil:
		return ""
	case IsNotFound(err):
		return "not_found"
	case errors.Is(err, ErrUserExists):
		return "duplicate"
	case errors.Is(err, ErrIncompleteMovie):
		return "invalid"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case isTransactionConflict(err):
		return "conflict"
	default:
		return "internal"
	}
}

// isUniqueConstraintError checks for a DuckDB unique or primary key violation
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "unique constraint") || strings.Contains(errMsg, "duplicate key")
}

// isTransactionConflict checks if an error is a DuckDB transaction conflict
func isTransactionConflict(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "Transaction conflict") ||
		strings.Contains(errStr, "Conflict on update") ||
		strings.Contains(errStr, "cannot update a table that has been altered")
}

// closeWithLog closes a resource and logs any error
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}

// closeQuietly closes a resource in error paths where Close errors are not actionable
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
