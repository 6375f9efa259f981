// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/marquee/internal/database"
	"github.com/tomtom215/marquee/internal/middleware"
	"github.com/tomtom215/marquee/internal/models"
)

func TestRespondRepositoryError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		retryAfter bool
	}{
		{"movie not found", database.ErrMovieNotFound, http.StatusNotFound, models.CodeNotFound, false},
		{"wrapped not found", fmt.Errorf("lookup: %w", database.ErrDirectorNotFound), http.StatusNotFound, models.CodeNotFound, false},
		{"incomplete movie", database.ErrIncompleteMovie, http.StatusBadRequest, models.CodeValidation, false},
		{"breaker open", database.ErrUnavailable, http.StatusServiceUnavailable, models.CodeServiceUnavailable, true},
		{"deadline", context.DeadlineExceeded, http.StatusServiceUnavailable, models.CodeServiceUnavailable, true},
		{"other", errors.New("disk on fire"), http.StatusInternalServerError, models.CodeDatabase, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/movies/1/", nil)
			rec := httptest.NewRecorder()
			middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				respondRepositoryError(w, r, "Movie", tt.err)
			})).ServeHTTP(rec, req)

			assertErrorCode(t, rec, tt.wantStatus, tt.wantCode)
			if got := rec.Header().Get("Retry-After") != ""; got != tt.retryAfter {
				t.Errorf("Retry-After present = %v, want %v", got, tt.retryAfter)
			}
			if strings.Contains(rec.Body.String(), "disk on fire") {
				t.Error("internal error text leaked to client")
			}
		})
	}
}

func TestRespondRepositoryError_CanceledWritesNothing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	respondRepositoryError(rec, req, "Movie", context.Canceled)
	if rec.Body.Len() != 0 {
		t.Errorf("expected no body for canceled request, got %q", rec.Body.String())
	}
}

func TestPathID(t *testing.T) {
	tests := []struct {
		param  string
		want   int64
		wantOK bool
	}{
		{"1", 1, true},
		{"42", 42, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
		{"", 0, false},
		{"99999999999999999999", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.param)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			got, ok := pathID(req)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("pathID(%q) = (%d, %v), want (%d, %v)", tt.param, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestReadBody_Limit(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 64)))
	rec := httptest.NewRecorder()
	if _, err := readBody(rec, req, 16); !errors.Is(err, errBodyTooLarge) {
		t.Errorf("readBody error = %v, want errBodyTooLarge", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("hello"))
	body, err := readBody(rec, req, 16)
	if err != nil || string(body) != "hello" {
		t.Errorf("readBody = (%q, %v), want (hello, nil)", body, err)
	}
}

func TestSanitizeLogValue(t *testing.T) {
	if got := sanitizeLogValue("bob\nINFO forged"); got != `bob\x0aINFO forged` {
		t.Errorf("sanitizeLogValue = %q", got)
	}
	if got := sanitizeLogValue("plain"); got != "plain" {
		t.Errorf("sanitizeLogValue = %q", got)
	}
}

func TestRequestScheme(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := requestScheme(req); got != "http" {
		t.Errorf("requestScheme = %q, want http", got)
	}
	req.Header.Set("X-Forwarded-Proto", "https")
	if got := requestScheme(req); got != "https" {
		t.Errorf("requestScheme = %q, want https", got)
	}
	req.Header.Set("X-Forwarded-Proto", "gopher")
	if got := requestScheme(req); got != "http" {
		t.Errorf("requestScheme with bogus proto = %q, want http", got)
	}
}
