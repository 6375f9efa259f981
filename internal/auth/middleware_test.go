// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/models"
)

func serveGate(t *testing.T, a Authenticator, req *http.Request) (*httptest.ResponseRecorder, *Principal) {
	t.Helper()

	var seen *Principal
	handler := NewMiddleware(a).Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, seen
}

func TestMiddleware_Authenticate(t *testing.T) {
	users := newMemoryUsers(t, mustUser(t, "alice", "password123", true, false))
	a := NewBasicAuthenticator(users)

	rec, p := serveGate(t, a, basicRequest("alice", "password123"))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if p == nil || p.Username != "alice" {
		t.Errorf("principal = %+v", p)
	}
}

func TestMiddleware_Rejects(t *testing.T) {
	users := newMemoryUsers(t, mustUser(t, "alice", "password123", true, false))
	a := NewMultiAuthenticator(NewJWTAuthenticator(newTestJWTManager(t)), NewBasicAuthenticator(users))

	tests := []struct {
		name    string
		req     *http.Request
		message string
	}{
		{"no credentials", httptest.NewRequest(http.MethodGet, "/", nil), "not provided"},
		{"bad password", basicRequest("alice", "wrong-password"), "Invalid"},
		{"bad token", bearerRequest("abc.def.ghi"), "Invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, p := serveGate(t, a, tt.req)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
			if p != nil {
				t.Error("handler must not run")
			}

			challenges := rec.Header().Values("WWW-Authenticate")
			if len(challenges) != 2 || !strings.HasPrefix(challenges[0], "Bearer") || !strings.HasPrefix(challenges[1], "Basic") {
				t.Errorf("WWW-Authenticate = %v", challenges)
			}

			var body models.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error.Code != models.CodeUnauthorized || !strings.Contains(body.Error.Message, tt.message) {
				t.Errorf("error body = %+v", body.Error)
			}
		})
	}
}

func TestMiddleware_ExpiredToken(t *testing.T) {
	m := newTestJWTManager(t)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := m.GenerateToken(&models.User{Username: "alice"})
	if err != nil {
		t.Fatal(err)
	}
	m.now = time.Now

	rec, _ := serveGate(t, NewJWTAuthenticator(m), bearerRequest(token))
	if rec.Code != http.StatusUnauthorized || !strings.Contains(rec.Body.String(), "expired") {
		t.Errorf("expired token response = %d %s", rec.Code, rec.Body.String())
	}
}

func TestMiddleware_BackendFailure(t *testing.T) {
	users := newMemoryUsers(t)
	users.err = errors.New("database is locked")

	rec, _ := serveGate(t, NewBasicAuthenticator(users), basicRequest("alice", "password123"))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestMiddleware_FailureHook(t *testing.T) {
	users := newMemoryUsers(t, mustUser(t, "alice", "password123", true, false))
	a := NewMultiAuthenticator(NewJWTAuthenticator(newTestJWTManager(t)), NewBasicAuthenticator(users))

	type failure struct{ username, reason string }
	var got []failure
	m := NewMiddleware(a)
	m.SetFailureHook(func(r *http.Request, username, reason string) {
		got = append(got, failure{username, reason})
	})
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/", nil),
		basicRequest("alice", "password123"),
		basicRequest("alice", "wrong-password"),
		bearerRequest("abc.def.ghi"),
	} {
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	want := []failure{
		{"alice", "invalid credentials"},
		{"", "invalid credentials"},
	}
	if len(got) != len(want) {
		t.Fatalf("hook calls = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
