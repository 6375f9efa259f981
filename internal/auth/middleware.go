// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package auth

import (
	"errors"
	"net/http"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/middleware"
	"github.com/tomtom215/marquee/internal/models"
)

// FailureHook receives every rejected credential at the gate. username is
// the Basic login name when one was sent and empty for bearer tokens.
type FailureHook func(r *http.Request, username, reason string)

// Middleware is the authentication gate.
type Middleware struct {
	authenticator Authenticator
	onFailure     FailureHook
}

// NewMiddleware creates the gate around authenticator.
func NewMiddleware(authenticator Authenticator) *Middleware {
	return &Middleware{authenticator: authenticator}
}

// SetFailureHook installs hook for rejected credentials. Requests that carry
// no credentials at all are not reported.
func (m *Middleware) SetFailureHook(hook FailureHook) {
	m.onFailure = hook
}

// Authenticate rejects requests without valid credentials with 401 and a
// WWW-Authenticate challenge. On success the Principal is stored in the
// request context.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := m.authenticator.Authenticate(r.Context(), r)
		if err != nil {
			m.reject(w, r, err)
			return
		}

		metrics.RecordAuthAttempt(string(principal.Method), true)
		next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), principal)))
	})
}

func (m *Middleware) reject(w http.ResponseWriter, r *http.Request, err error) {
	message := "Authentication credentials were not provided"

	switch {
	case errors.Is(err, ErrNoCredentials):
	case errors.Is(err, ErrExpiredCredentials):
		message = "Authentication credentials have expired"
		metrics.RecordAuthAttempt(m.authenticator.Name(), false)
		m.failed(r, "expired credentials")
	case errors.Is(err, ErrInvalidCredentials):
		message = "Invalid authentication credentials"
		metrics.RecordAuthAttempt(m.authenticator.Name(), false)
		m.failed(r, "invalid credentials")
	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("Authentication backend error")
		metrics.RecordAuthAttempt(m.authenticator.Name(), false)
		middleware.WriteError(w, r, http.StatusServiceUnavailable, models.CodeServiceUnavailable,
			"Authentication is temporarily unavailable", nil)
		return
	}

	for _, challenge := range m.authenticator.Challenge() {
		w.Header().Add("WWW-Authenticate", challenge)
	}
	middleware.WriteError(w, r, http.StatusUnauthorized, models.CodeUnauthorized, message, nil)
}

func (m *Middleware) failed(r *http.Request, reason string) {
	if m.onFailure == nil {
		return
	}
	username, _, _ := r.BasicAuth()
	m.onFailure(r, username, reason)
}
