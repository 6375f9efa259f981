// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package audit

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/marquee/internal/auth"
	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/models"
)

// writeTimeout bounds a single Save or retention delete.
const writeTimeout = 5 * time.Second

// Logger buffers events and writes them to a Store from Serve.
// A nil *Logger discards everything, so callers need no nil checks.
type Logger struct {
	store           Store
	events          chan *Event
	retention       time.Duration
	cleanupInterval time.Duration
	name            string
	now             func() time.Time
}

// NewLogger creates a logger writing to store.
func NewLogger(store Store, cfg *config.AuditConfig) *Logger {
	size := cfg.BufferSize
	if size <= 0 {
		size = 1000
	}
	return &Logger{
		store:           store,
		events:          make(chan *Event, size),
		retention:       time.Duration(cfg.RetentionDays) * 24 * time.Hour,
		cleanupInterval: cfg.CleanupInterval,
		name:            "audit-writer",
		now:             time.Now,
	}
}

// Log queues event without blocking. ID and Timestamp are filled in when
// empty. The event is dropped when the buffer is full.
func (l *Logger) Log(event *Event) {
	if l == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = l.now().UTC()
	}

	select {
	case l.events <- event:
	default:
		metrics.AuditEvents.WithLabelValues(string(event.Type), "dropped").Inc()
		logging.Warn().Str("event_id", event.ID).Str("type", string(event.Type)).Msg("Audit event buffer full, dropping event")
	}
}

// Serve implements suture.Service. It writes queued events until ctx is
// canceled, then flushes the buffer.
func (l *Logger) Serve(ctx context.Context) error {
	var cleanup <-chan time.Time
	if l.retention > 0 && l.cleanupInterval > 0 {
		ticker := time.NewTicker(l.cleanupInterval)
		defer ticker.Stop()
		cleanup = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			l.flush()
			return ctx.Err()
		case event := <-l.events:
			l.write(ctx, event)
		case <-cleanup:
			l.purge(ctx)
		}
	}
}

// String names the service in supervisor events.
func (l *Logger) String() string {
	return l.name
}

func (l *Logger) flush() {
	ctx := context.Background()
	for {
		select {
		case event := <-l.events:
			l.write(ctx, event)
		default:
			return
		}
	}
}

func (l *Logger) write(ctx context.Context, event *Event) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if err := l.store.Save(ctx, event); err != nil {
		metrics.AuditEvents.WithLabelValues(string(event.Type), "failed").Inc()
		logging.Error().Err(err).Str("event_id", event.ID).Msg("Failed to save audit event")
		return
	}
	metrics.AuditEvents.WithLabelValues(string(event.Type), "written").Inc()
}

func (l *Logger) purge(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	count, err := l.store.DeleteBefore(ctx, l.now().UTC().Add(-l.retention))
	if err != nil {
		logging.Error().Err(err).Msg("Audit retention cleanup failed")
		return
	}
	if count > 0 {
		logging.Info().Int64("count", count).Msg("Cleaned up old audit events")
	}
}

// LogCatalogWrite records a committed catalog change made by the caller.
func (l *Logger) LogCatalogWrite(r *http.Request, eventType EventType, target Target, description string) {
	if l == nil {
		return
	}
	l.Log(&Event{
		Type:        eventType,
		Outcome:     OutcomeSuccess,
		Actor:       ActorFromRequest(r, ""),
		Target:      &target,
		Source:      SourceFromRequest(r),
		Description: description,
		RequestID:   logging.RequestIDFromContext(r.Context()),
	})
}

// LogTokenIssued records a successful token request.
func (l *Logger) LogTokenIssued(r *http.Request, user *models.User, expiresAt time.Time) {
	if l == nil {
		return
	}
	l.Log(&Event{
		Type:    EventTokenIssued,
		Outcome: OutcomeSuccess,
		Actor: Actor{
			Name:       user.Username,
			Role:       user.Role(),
			AuthMethod: string(auth.AuthModeJWT),
		},
		Source:      SourceFromRequest(r),
		Description: "Token issued",
		Metadata:    mustJSON(map[string]string{"expires_at": expiresAt.UTC().Format(time.RFC3339)}),
		RequestID:   logging.RequestIDFromContext(r.Context()),
	})
}

// LogAuthFailure records a rejected credential check for username.
func (l *Logger) LogAuthFailure(r *http.Request, username, reason string) {
	if l == nil {
		return
	}
	l.Log(&Event{
		Type:        EventAuthFailure,
		Outcome:     OutcomeFailure,
		Actor:       Actor{Name: username},
		Source:      SourceFromRequest(r),
		Description: "Authentication failed: " + reason,
		Metadata:    mustJSON(map[string]string{"reason": reason}),
		RequestID:   logging.RequestIDFromContext(r.Context()),
	})
}

// NewUserCreatedEvent builds the event for an account created by operator
// tooling rather than over HTTP.
func NewUserCreatedEvent(user *models.User, operator string) *Event {
	return &Event{
		ID:          uuid.NewString(),
		Timestamp:   time.Now().UTC(),
		Type:        EventUserCreated,
		Outcome:     OutcomeSuccess,
		Actor:       Actor{Name: operator},
		Target:      &Target{Type: "user", ID: formatID(user.ID), Name: user.Username},
		Description: "User created with role " + user.Role(),
	}
}

// ActorFromRequest returns the authenticated caller, or an actor named
// fallback when the request carries no principal.
func ActorFromRequest(r *http.Request, fallback string) Actor {
	if p := auth.PrincipalFromContext(r.Context()); p != nil {
		return Actor{Name: p.Username, Role: p.Role, AuthMethod: string(p.Method)}
	}
	return Actor{Name: fallback}
}

// SourceFromRequest returns the client address and user agent. RemoteAddr
// has already been rewritten from trusted proxy headers by the router.
func SourceFromRequest(r *http.Request) Source {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return Source{IPAddress: ip, UserAgent: r.UserAgent()}
}

func mustJSON(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("{}")
	}
	return data
}
