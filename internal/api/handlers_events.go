// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/models"
)

// Events upgrades the request to a WebSocket that streams catalog changes.
//
// @Summary Stream catalog changes
// @Description Each committed create, update or delete is sent as {"type":"catalog_change","data":{...}}. Delivery is best effort.
// @Tags Events
// @Success 101 {string} string "Switching Protocols"
// @Failure 400 {string} string "Not a WebSocket handshake"
// @Failure 403 {string} string "Origin not allowed"
// @Failure 404 {object} models.ErrorResponse
// @Security BasicAuth
// @Security BearerAuth
// @Router /events [get]
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	if h.events == nil {
		respondError(w, r, http.StatusNotFound, models.CodeNotFound, "Change feed is disabled", nil)
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		HandshakeTimeout: 10 * time.Second,
		CheckOrigin:      h.checkEventsOrigin,
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the request.
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Change feed upgrade failed")
		return
	}
	h.events.Attach(conn)
}

// checkEventsOrigin applies the CORS origin list to browser handshakes.
// Non-browser clients send no Origin and are let through.
func (h *Handler) checkEventsOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || h.config == nil {
		return true
	}
	for _, allowed := range h.config.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	logging.Ctx(r.Context()).Warn().Str("origin", origin).Msg("Change feed connection rejected from unauthorized origin")
	return false
}
