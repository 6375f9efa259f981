// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package middleware

import (
	"net/http"

	"github.com/felixge/httpsnoop"
	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/logging"
)

// AccessLog writes one log line per completed request. Server errors log at
// error level, client errors at warn, everything else at info.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)

		logger := logging.Ctx(r.Context())

		var event *zerolog.Event
		switch {
		case m.Code >= http.StatusInternalServerError:
			event = logger.Error()
		case m.Code >= http.StatusBadRequest:
			event = logger.Warn()
		default:
			event = logger.Info()
		}

		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", m.Code).
			Int64("bytes", m.Written).
			Dur("duration", m.Duration).
			Str("remote_addr", r.RemoteAddr).
			Msg("HTTP request")
	})
}
