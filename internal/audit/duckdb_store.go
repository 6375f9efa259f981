// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/database/query"
)

// DuckDBStore implements Store on the audit_events table.
type DuckDBStore struct {
	db *sql.DB
}

var _ Store = (*DuckDBStore)(nil)

// NewDuckDBStore creates a store over db. The audit_events table is created
// by the database migrations.
func NewDuckDBStore(db *sql.DB) *DuckDBStore {
	return &DuckDBStore{db: db}
}

const insertEvent = `
	INSERT INTO audit_events (
		id, timestamp, type, outcome,
		actor_name, actor_role, auth_method,
		target_type, target_id, target_name,
		source_ip, user_agent,
		description, metadata, request_id
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Metadata is cast to VARCHAR so it scans as text.
const selectEvents = `
	SELECT id, timestamp, type, outcome,
		actor_name, actor_role, auth_method,
		target_type, target_id, target_name,
		source_ip, user_agent,
		description, CAST(metadata AS VARCHAR), request_id
	FROM audit_events`

// Save inserts event.
func (s *DuckDBStore) Save(ctx context.Context, event *Event) error {
	if event == nil {
		return errors.New("event cannot be nil")
	}

	var targetType, targetID, targetName *string
	if event.Target != nil {
		targetType, targetID, targetName = &event.Target.Type, &event.Target.ID, &event.Target.Name
	}
	var metadata *string
	if len(event.Metadata) > 0 {
		m := string(event.Metadata)
		metadata = &m
	}

	_, err := s.db.ExecContext(ctx, insertEvent,
		event.ID, event.Timestamp.UTC(), string(event.Type), string(event.Outcome),
		event.Actor.Name, event.Actor.Role, event.Actor.AuthMethod,
		targetType, targetID, targetName,
		event.Source.IPAddress, event.Source.UserAgent,
		event.Description, metadata, event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("failed to save audit event: %w", err)
	}
	return nil
}

// Query returns events matching filter, newest first.
func (s *DuckDBStore) Query(ctx context.Context, filter Filter) ([]Event, error) {
	wb := query.NewWhereBuilder()
	if len(filter.Types) > 0 {
		types := make([]string, len(filter.Types))
		for i, t := range filter.Types {
			types[i] = string(t)
		}
		query.AddIn(wb, "type", types)
	}
	if filter.Actor != "" {
		wb.AddClause("actor_name = ?", filter.Actor)
	}
	if filter.TargetType != "" {
		wb.AddClause("target_type = ?", filter.TargetType)
	}
	if !filter.Since.IsZero() {
		wb.AddClause("timestamp >= ?", filter.Since.UTC())
	}
	where, args := wb.BuildWithPrefix()

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	stmt := selectEvents + " " + where + " ORDER BY timestamp DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer rows.Close()

	events := make([]Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit events: %w", err)
	}
	return events, nil
}

// DeleteBefore removes events older than cutoff.
func (s *DuckDBStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM audit_events WHERE timestamp < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete old audit events: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get deleted count: %w", err)
	}
	return count, nil
}

func scanEvent(rows *sql.Rows) (*Event, error) {
	var (
		event                              Event
		eventType, outcome                 string
		role, method, ip, agent, requestID sql.NullString
		targetType, targetID, targetName   sql.NullString
		metadata                           sql.NullString
	)
	err := rows.Scan(
		&event.ID, &event.Timestamp, &eventType, &outcome,
		&event.Actor.Name, &role, &method,
		&targetType, &targetID, &targetName,
		&ip, &agent,
		&event.Description, &metadata, &requestID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan audit event: %w", err)
	}

	event.Type = EventType(eventType)
	event.Outcome = Outcome(outcome)
	event.Actor.Role = role.String
	event.Actor.AuthMethod = method.String
	event.Source = Source{IPAddress: ip.String, UserAgent: agent.String}
	event.RequestID = requestID.String
	if targetType.Valid {
		event.Target = &Target{Type: targetType.String, ID: targetID.String, Name: targetName.String}
	}
	if metadata.Valid && metadata.String != "" {
		event.Metadata = json.RawMessage(metadata.String)
	}
	return &event, nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
