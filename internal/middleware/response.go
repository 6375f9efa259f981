// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package middleware

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/models"
)

// WriteJSON writes data as a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// WriteError writes the standard error envelope. The request ID is taken from
// the request context.
func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string, details map[string]any) {
	WriteAPIError(w, r, status, &models.APIError{
		Code:    code,
		Message: message,
		Details: details,
	})
}

// WriteAPIError writes a prepared APIError, filling in the request ID.
func WriteAPIError(w http.ResponseWriter, r *http.Request, status int, apiErr *models.APIError) {
	apiErr.RequestID = logging.RequestIDFromContext(r.Context())
	WriteJSON(w, r, status, &models.ErrorResponse{
		Success: false,
		Error:   apiErr,
	})
}
