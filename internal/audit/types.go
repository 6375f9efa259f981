// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package audit

import (
	"context"
	"time"

	"github.com/goccy/go-json"
)

// EventType categorizes audit events.
type EventType string

const (
	// Catalog events
	EventMovieCreated    EventType = "movie.created"
	EventMovieUpdated    EventType = "movie.updated"
	EventMovieDeleted    EventType = "movie.deleted"
	EventDirectorDeleted EventType = "director.deleted"
	EventGenreDeleted    EventType = "genre.deleted"

	// Authentication events
	EventTokenIssued EventType = "auth.token_issued"
	EventAuthFailure EventType = "auth.failure"

	// Account events
	EventUserCreated EventType = "user.created"
)

// Outcome indicates whether an action succeeded or failed.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Event is one audit record.
type Event struct {
	ID          string          `json:"id"`
	Timestamp   time.Time       `json:"timestamp"`
	Type        EventType       `json:"type"`
	Outcome     Outcome         `json:"outcome"`
	Actor       Actor           `json:"actor"`
	Target      *Target         `json:"target,omitempty"`
	Source      Source          `json:"source"`
	Description string          `json:"description"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	RequestID   string          `json:"request_id,omitempty"`
}

// Actor is who performed the action.
type Actor struct {
	Name       string `json:"name"`
	Role       string `json:"role,omitempty"`
	AuthMethod string `json:"auth_method,omitempty"`
}

// Target is the resource acted upon.
type Target struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Source is where the request came from.
type Source struct {
	IPAddress string `json:"ip_address,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

// Store persists audit events.
type Store interface {
	Save(ctx context.Context, event *Event) error

	// Query returns matching events, newest first.
	Query(ctx context.Context, filter Filter) ([]Event, error)

	// DeleteBefore removes events older than cutoff and returns the count.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// DefaultQueryLimit applies when Filter.Limit is not positive.
const DefaultQueryLimit = 100

// Filter selects events for Query. Zero fields match everything.
type Filter struct {
	Types      []EventType
	Actor      string
	TargetType string
	Since      time.Time
	Limit      int
}
