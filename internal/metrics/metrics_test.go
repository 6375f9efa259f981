// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordDBQuery(t *testing.T) {
	before := testutil.ToFloat64(DBQueryErrors.WithLabelValues("delete", "movies", "not_found"))

	RecordDBQuery("delete", "movies", 5*time.Millisecond, "")
	RecordDBQuery("delete", "movies", 5*time.Millisecond, "not_found")

	after := testutil.ToFloat64(DBQueryErrors.WithLabelValues("delete", "movies", "not_found"))
	if after-before != 1 {
		t.Errorf("expected exactly one error recorded, got %v", after-before)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	counter := APIRequestsTotal.WithLabelValues("GET", "/api/v1/movies", "200")
	before := testutil.ToFloat64(counter)

	RecordAPIRequest("GET", "/api/v1/movies", "200", 10*time.Millisecond)

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("api_requests_total delta = %v, want 1", got)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("after inc = %v, want %v", got, before+1)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("after dec = %v, want %v", got, before)
	}
}

func TestRecordAuthAndAuthz(t *testing.T) {
	tests := []struct {
		name  string
		do    func()
		check func() float64
	}{
		{
			name:  "auth success",
			do:    func() { RecordAuthAttempt("basic", true) },
			check: func() float64 { return testutil.ToFloat64(AuthAttempts.WithLabelValues("basic", "success")) },
		},
		{
			name:  "auth failure",
			do:    func() { RecordAuthAttempt("jwt", false) },
			check: func() float64 { return testutil.ToFloat64(AuthAttempts.WithLabelValues("jwt", "failure")) },
		},
		{
			name:  "authz deny",
			do:    func() { RecordAuthzDecision("write", false) },
			check: func() float64 { return testutil.ToFloat64(AuthzDecisions.WithLabelValues("write", "deny")) },
		},
		{
			name:  "catalog write",
			do:    func() { RecordCatalogWrite("movie", "create") },
			check: func() float64 { return testutil.ToFloat64(CatalogWrites.WithLabelValues("movie", "create")) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.check()
			tt.do()
			if got := tt.check() - before; got != 1 {
				t.Errorf("delta = %v, want 1", got)
			}
		})
	}
}

func TestRecordBreakerTransition(t *testing.T) {
	RecordBreakerTransition("duckdb-test", "closed", "open", BreakerOpen)
	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("duckdb-test")); got != BreakerOpen {
		t.Errorf("circuit_breaker_state = %v, want %v", got, BreakerOpen)
	}
	RecordBreakerTransition("duckdb-test", "open", "half-open", BreakerHalfOpen)
	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("duckdb-test")); got != BreakerHalfOpen {
		t.Errorf("circuit_breaker_state = %v, want %v", got, BreakerHalfOpen)
	}
}

func TestConcurrentMetricRecording(t *testing.T) {
	counter := CatalogWrites.WithLabelValues("genre", "delete")
	before := testutil.ToFloat64(counter)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			RecordCatalogWrite("genre", "delete")
			TrackActiveRequest(true)
			TrackActiveRequest(false)
		}()
	}
	wg.Wait()

	if got := testutil.ToFloat64(counter) - before; got != 50 {
		t.Errorf("concurrent writes delta = %v, want 50", got)
	}
}
