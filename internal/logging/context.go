// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	correlationIDKey
)

// GenerateRequestID returns a fresh UUID. The API echoes it in X-Request-ID.
func GenerateRequestID() string {
	return uuid.NewString()
}

// GenerateCorrelationID returns a short 8 character ID for grouping the log
// lines of a background job.
func GenerateCorrelationID() string {
	return uuid.NewString()[:8]
}

func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// ContextWithNewCorrelationID tags ctx with a generated correlation ID.
func ContextWithNewCorrelationID(ctx context.Context) context.Context {
	return ContextWithCorrelationID(ctx, GenerateCorrelationID())
}

func CorrelationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey).(string)
	return id
}

// Ctx is the logger to use inside a request or job. Entries carry the
// request_id and correlation_id found in ctx.
//
//	logging.Ctx(r.Context()).Info().Int64("movie_id", m.ID).Msg("Movie created")
func Ctx(ctx context.Context) *zerolog.Logger {
	zc := With()
	if id := RequestIDFromContext(ctx); id != "" {
		zc = zc.Str("request_id", id)
	}
	if id := CorrelationIDFromContext(ctx); id != "" {
		zc = zc.Str("correlation_id", id)
	}
	l := zc.Logger()
	return &l
}

// WithComponent returns a logger whose entries carry component=name.
func WithComponent(name string) zerolog.Logger {
	return With().Str("component", name).Logger()
}
