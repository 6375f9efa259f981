// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
)

// readinessTimeout bounds the database ping of the readiness check.
const readinessTimeout = 2 * time.Second

// HealthStatus is the body of the health endpoints.
type HealthStatus struct {
	Status   string  `json:"status"`
	Database string  `json:"database,omitempty"`
	Uptime   float64 `json:"uptime_seconds"`
}

// HealthLive handles liveness checks (Kubernetes-style)
// Returns 200 OK if the process is alive, regardless of dependencies
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	metrics.TrackUptime(h.startTime)
	respondJSON(w, r, http.StatusOK, HealthStatus{
		Status: "alive",
		Uptime: time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles readiness checks (Kubernetes-style)
// Returns 200 OK only if the database answers a ping
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	status := HealthStatus{
		Status:   "ready",
		Database: "connected",
		Uptime:   time.Since(h.startTime).Seconds(),
	}
	code := http.StatusOK

	if h.store == nil {
		status.Status, status.Database = "not_ready", "not_configured"
		code = http.StatusServiceUnavailable
	} else if err := h.store.Ping(ctx); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Readiness check failed")
		status.Status, status.Database = "not_ready", "unreachable"
		code = http.StatusServiceUnavailable
	}

	respondJSON(w, r, code, status)
}
