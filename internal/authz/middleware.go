// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package authz

import (
	"net/http"
	"strings"

	"github.com/tomtom215/marquee/internal/auth"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/middleware"
	"github.com/tomtom215/marquee/internal/models"
)

// Middleware applies the access policy to authenticated requests.
type Middleware struct {
	enforcer *Enforcer
	basePath string
}

// NewMiddleware creates the policy middleware for routes mounted under
// basePath. A nil enforcer selects the built-in Allow rule.
func NewMiddleware(enforcer *Enforcer, basePath string) *Middleware {
	return &Middleware{
		enforcer: enforcer,
		basePath: strings.TrimSuffix(basePath, "/"),
	}
}

// Authorize answers 403 when the caller's role does not permit the request
// method on the request path.
func (m *Middleware) Authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := auth.PrincipalFromContext(r.Context())
		if principal == nil {
			middleware.WriteError(w, r, http.StatusUnauthorized, models.CodeUnauthorized,
				"Authentication credentials were not provided", nil)
			return
		}

		action := methodToAction(r.Method)
		allowed, err := m.allowed(principal, r.URL.Path, r.Method)
		if err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Msg("Authorization error")
			middleware.WriteError(w, r, http.StatusInternalServerError, models.CodeInternal,
				"Internal server error", nil)
			return
		}

		metrics.RecordAuthzDecision(action, allowed)
		if !allowed {
			logging.Ctx(r.Context()).Debug().
				Str("username", principal.Username).
				Str("role", principal.Role).
				Str("action", action).
				Msg("Request denied by access policy")
			middleware.WriteError(w, r, http.StatusForbidden, models.CodeForbidden,
				"You do not have permission to perform this action", nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) allowed(principal *auth.Principal, path, method string) (bool, error) {
	if m.enforcer == nil {
		return Allow(principal.IsStaff(), method), nil
	}
	return m.enforcer.Enforce(principal.Role, policyObject(m.basePath, path), methodToAction(method))
}

// policyObject strips basePath and gives the rest a trailing slash, so
// "/api/v1" becomes "/" and "/api/v1/movies/1" becomes "/movies/1/".
// Paths outside basePath are kept whole.
func policyObject(basePath, path string) string {
	if basePath != "" && (path == basePath || strings.HasPrefix(path, basePath+"/")) {
		path = path[len(basePath):]
	}
	return strings.TrimSuffix(path, "/") + "/"
}
