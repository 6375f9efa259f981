// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package authz

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/marquee/internal/auth"
	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/models"
)

func serveAuthorize(m *Middleware, principal *auth.Principal, method, path string) int {
	handler := m.Authorize(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(method, path, nil)
	if principal != nil {
		req = req.WithContext(auth.ContextWithPrincipal(req.Context(), principal))
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec.Code
}

func TestMiddleware_Authorize(t *testing.T) {
	viewer := &auth.Principal{Username: "v", Role: models.RoleViewer}
	staff := &auth.Principal{Username: "s", Role: models.RoleStaff}
	admin := &auth.Principal{Username: "a", Role: models.RoleAdmin}

	middlewares := map[string]*Middleware{
		"builtin": NewMiddleware(nil, "/api/v1"),
		"casbin":  NewMiddleware(setupEnforcer(t, nil), "/api/v1"),
	}

	tests := []struct {
		name      string
		principal *auth.Principal
		method    string
		path      string
		want      int
	}{
		{"viewer reads", viewer, http.MethodGet, "/api/v1/movies/", http.StatusOK},
		{"viewer reads root without slash", viewer, http.MethodGet, "/api/v1", http.StatusOK},
		{"viewer creates", viewer, http.MethodPost, "/api/v1/movies/", http.StatusForbidden},
		{"viewer patches", viewer, http.MethodPatch, "/api/v1/movies/1", http.StatusForbidden},
		{"viewer deletes", viewer, http.MethodDelete, "/api/v1/directors/1/", http.StatusForbidden},
		{"staff creates", staff, http.MethodPost, "/api/v1/movies", http.StatusOK},
		{"staff deletes", staff, http.MethodDelete, "/api/v1/genres/3/", http.StatusOK},
		{"admin replaces", admin, http.MethodPut, "/api/v1/movies/1/", http.StatusOK},
		{"anonymous", nil, http.MethodGet, "/api/v1/movies/", http.StatusUnauthorized},
	}

	for name, m := range middlewares {
		for _, tt := range tests {
			t.Run(name+"/"+tt.name, func(t *testing.T) {
				if got := serveAuthorize(m, tt.principal, tt.method, tt.path); got != tt.want {
					t.Errorf("status = %d, want %d", got, tt.want)
				}
			})
		}
	}
}

func TestMiddleware_RecordsDecisions(t *testing.T) {
	denied := metrics.AuthzDecisions.WithLabelValues(ActionDelete, "deny")
	before := testutil.ToFloat64(denied)

	serveAuthorize(NewMiddleware(nil, "/api/v1"), &auth.Principal{Role: models.RoleViewer}, http.MethodDelete, "/api/v1/movies/1/")

	if got := testutil.ToFloat64(denied) - before; got != 1 {
		t.Errorf("denied decisions recorded = %v, want 1", got)
	}
}

func TestMiddleware_CustomBasePath(t *testing.T) {
	staff := &auth.Principal{Username: "s", Role: models.RoleStaff}
	viewer := &auth.Principal{Username: "v", Role: models.RoleViewer}

	for _, base := range []string{"/catalog", "/catalog/", "/v2/api"} {
		m := NewMiddleware(setupEnforcer(t, nil), base)
		prefix := strings.TrimSuffix(base, "/")

		if got := serveAuthorize(m, staff, http.MethodGet, prefix+"/movies/"); got != http.StatusOK {
			t.Errorf("%s: staff read = %d, want 200", base, got)
		}
		if got := serveAuthorize(m, staff, http.MethodPost, prefix+"/movies"); got != http.StatusOK {
			t.Errorf("%s: staff create = %d, want 200", base, got)
		}
		if got := serveAuthorize(m, viewer, http.MethodGet, prefix); got != http.StatusOK {
			t.Errorf("%s: viewer root = %d, want 200", base, got)
		}
		if got := serveAuthorize(m, viewer, http.MethodDelete, prefix+"/genres/1/"); got != http.StatusForbidden {
			t.Errorf("%s: viewer delete = %d, want 403", base, got)
		}
	}
}

func TestMiddleware_ScopedPolicy(t *testing.T) {
	path := writePolicy(t, "p, viewer, /*, read\np, viewer, /genres/*, delete\n")
	m := NewMiddleware(setupEnforcer(t, &config.CasbinConfig{PolicyPath: path}), "/catalog")
	viewer := &auth.Principal{Username: "v", Role: models.RoleViewer}

	if got := serveAuthorize(m, viewer, http.MethodDelete, "/catalog/genres/4/"); got != http.StatusOK {
		t.Errorf("delete genre = %d, want 200", got)
	}
	if got := serveAuthorize(m, viewer, http.MethodDelete, "/catalog/movies/4/"); got != http.StatusForbidden {
		t.Errorf("delete movie = %d, want 403", got)
	}
}

func TestPolicyObject(t *testing.T) {
	tests := []struct {
		base, path, want string
	}{
		{"/api/v1", "/api/v1", "/"},
		{"/api/v1", "/api/v1/", "/"},
		{"/api/v1", "/api/v1/movies/12", "/movies/12/"},
		{"/api/v1", "/api/v1/movies/12/", "/movies/12/"},
		{"/catalog", "/catalog/genres", "/genres/"},
		{"/catalog", "/catalogue/genres", "/catalogue/genres/"},
		{"", "/movies", "/movies/"},
	}
	for _, tt := range tests {
		if got := policyObject(tt.base, tt.path); got != tt.want {
			t.Errorf("policyObject(%q, %q) = %q, want %q", tt.base, tt.path, got, tt.want)
		}
	}
}
