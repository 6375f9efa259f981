// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/marquee/internal/database"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/middleware"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/validation"
)

// errBodyTooLarge is returned by readBody when the limit is exceeded.
var errBodyTooLarge = errors.New("request body too large")

// respondJSON sends a bare JSON success body.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	middleware.WriteJSON(w, r, status, data)
}

// respondError sends the error envelope. err, when set, is logged but never
// shown to the client.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	if err != nil {
		logging.Ctx(r.Context()).Error().
			Err(err).
			Str("code", sanitizeLogValue(code)).
			Str("path", sanitizeLogValue(r.URL.Path)).
			Msg("API error")
	}
	middleware.WriteError(w, r, status, code, message, nil)
}

// respondValidationError sends a 400 VALIDATION_ERROR with field details.
func respondValidationError(w http.ResponseWriter, r *http.Request, verr *validation.RequestValidationError) {
	middleware.WriteAPIError(w, r, http.StatusBadRequest, verr.ToAPIError())
}

// respondRepositoryError maps repository errors onto HTTP statuses:
// not found is 404, an open circuit or timeout is 503, an incomplete movie is
// 400 and anything else is a generic 500.
func respondRepositoryError(w http.ResponseWriter, r *http.Request, resource string, err error) {
	switch {
	case database.IsNotFound(err):
		respondError(w, r, http.StatusNotFound, models.CodeNotFound, resource+" not found", nil)
	case errors.Is(err, database.ErrIncompleteMovie):
		respondError(w, r, http.StatusBadRequest, models.CodeValidation, err.Error(), nil)
	case errors.Is(err, context.Canceled):
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Request canceled by client")
	case errors.Is(err, database.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		w.Header().Set("Retry-After", "5")
		respondError(w, r, http.StatusServiceUnavailable, models.CodeServiceUnavailable,
			"The catalog is temporarily unavailable", err)
	default:
		respondError(w, r, http.StatusInternalServerError, models.CodeDatabase,
			"A database error occurred", err)
	}
}

// readBody reads at most limit bytes of the request body.
func readBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = 1 << 20
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, errBodyTooLarge
		}
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	return body, nil
}

// pathID parses the {id} URL parameter as a positive integer.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// sanitizeLogValue escapes control characters to prevent log injection.
func sanitizeLogValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&b, "\\x%02x", r)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
