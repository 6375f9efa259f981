// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/tomtom215/marquee/internal/logging"
)

// captureRequestID runs RequestID around a handler that records the context ID.
func captureRequestID(t *testing.T, header string) (contextID, responseID string) {
	t.Helper()

	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contextID = logging.RequestIDFromContext(r.Context())
		if logging.CorrelationIDFromContext(r.Context()) == "" {
			t.Error("expected correlation ID in context")
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if header != "" {
		req.Header.Set(RequestIDHeader, header)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return contextID, rec.Header().Get(RequestIDHeader)
}

func TestRequestID_GeneratesNewID(t *testing.T) {
	contextID, responseID := captureRequestID(t, "")

	if _, err := uuid.Parse(responseID); err != nil {
		t.Errorf("response X-Request-ID %q is not a UUID: %v", responseID, err)
	}
	if contextID != responseID {
		t.Errorf("context ID %q != response ID %q", contextID, responseID)
	}
}

func TestRequestID_PreservesUpstreamID(t *testing.T) {
	contextID, responseID := captureRequestID(t, "upstream-proxy-42")

	if responseID != "upstream-proxy-42" {
		t.Errorf("response ID = %q, want upstream-proxy-42", responseID)
	}
	if contextID != responseID {
		t.Errorf("context ID %q != response ID %q", contextID, responseID)
	}
}

func TestRequestID_RejectsUnsafeUpstreamID(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"control characters", "abc\x00def"},
		{"non-ascii", "id-é"},
		{"too long", strings.Repeat("a", maxRequestIDLength+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, responseID := captureRequestID(t, tt.header)
			if responseID == tt.header {
				t.Error("unsafe request ID was echoed back")
			}
			if _, err := uuid.Parse(responseID); err != nil {
				t.Errorf("replacement ID %q is not a UUID", responseID)
			}
		})
	}
}

func TestRequestID_UniquePerRequest(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		_, id := captureRequestID(t, "")
		if seen[id] {
			t.Fatalf("duplicate request ID %q", id)
		}
		seen[id] = true
	}
}
