// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/marquee/internal/logging"
)

// Migration represents a versioned schema change. Migrations are
// append-only: never modify or remove one that has shipped.
type Migration struct {
	Version    int
	Name       string
	Statements []string
	AppliedAt  time.Time
}

const schemaMigrationsTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	name VARCHAR NOT NULL,
	applied_at TIMESTAMP NOT NULL
)`

// migrations returns all versioned migrations in order.
func migrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "catalog",
			Statements: []string{
				`CREATE SEQUENCE IF NOT EXISTS directors_id_seq START 1`,
				`CREATE TABLE IF NOT EXISTS directors (
					id BIGINT PRIMARY KEY DEFAULT nextval('directors_id_seq'),
					name VARCHAR(150) NOT NULL UNIQUE
				)`,
				`CREATE SEQUENCE IF NOT EXISTS genres_id_seq START 1`,
				`CREATE TABLE IF NOT EXISTS genres (
					id BIGINT PRIMARY KEY DEFAULT nextval('genres_id_seq'),
					name VARCHAR(100) NOT NULL UNIQUE
				)`,
				`CREATE SEQUENCE IF NOT EXISTS movies_id_seq START 1`,
				`CREATE TABLE IF NOT EXISTS movies (
					id BIGINT PRIMARY KEY DEFAULT nextval('movies_id_seq'),
					name VARCHAR(150) NOT NULL,
					imdb_score DECIMAL(5,2) NOT NULL,
					popularity DECIMAL(5,2) NOT NULL,
					director_id BIGINT NOT NULL
				)`,
				`CREATE SEQUENCE IF NOT EXISTS movie_genres_order_seq START 1`,
				`CREATE TABLE IF NOT EXISTS movie_genres (
					movie_id BIGINT NOT NULL,
					genre_id BIGINT NOT NULL,
					attach_order BIGINT NOT NULL DEFAULT nextval('movie_genres_order_seq')
				)`,
				`CREATE INDEX IF NOT EXISTS idx_movie_genres_movie ON movie_genres(movie_id)`,
				`CREATE INDEX IF NOT EXISTS idx_movie_genres_genre ON movie_genres(genre_id)`,
			},
		},
		{
			Version: 2,
			Name:    "users",
			Statements: []string{
				`CREATE SEQUENCE IF NOT EXISTS users_id_seq START 1`,
				`CREATE TABLE IF NOT EXISTS users (
					id BIGINT PRIMARY KEY DEFAULT nextval('users_id_seq'),
					username VARCHAR(150) NOT NULL UNIQUE,
					password_hash VARCHAR NOT NULL,
					is_staff BOOLEAN NOT NULL DEFAULT false,
					is_superuser BOOLEAN NOT NULL DEFAULT false,
					created_at TIMESTAMP NOT NULL
				)`,
			},
		},
		{
			Version: 3,
			Name:    "audit_events",
			Statements: []string{
				`CREATE TABLE IF NOT EXISTS audit_events (
					id VARCHAR PRIMARY KEY,
					timestamp TIMESTAMP NOT NULL,
					type VARCHAR NOT NULL,
					outcome VARCHAR NOT NULL,
					actor_name VARCHAR NOT NULL,
					actor_role VARCHAR,
					auth_method VARCHAR,
					target_type VARCHAR,
					target_id VARCHAR,
					target_name VARCHAR,
					source_ip VARCHAR,
					user_agent VARCHAR,
					description VARCHAR NOT NULL,
					metadata JSON,
					request_id VARCHAR
				)`,
				`CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_events(timestamp)`,
				`CREATE INDEX IF NOT EXISTS idx_audit_type ON audit_events(type)`,
				`CREATE INDEX IF NOT EXISTS idx_audit_actor ON audit_events(actor_name)`,
			},
		},
		},
	}
}

// Migrate applies every migration not yet recorded in schema_migrations.
// Each migration runs in its own transaction.
func (db *DB) Migrate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	if _, err := db.conn.ExecContext(ctx, schemaMigrationsTable); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := db.appliedVersions(ctx)
	if err != nil {
		return err
	}

	newMigrations := 0
	for _, m := range migrations() {
		if applied[m.Version] {
			continue
		}

		err := db.runTx(ctx, func(tx *sql.Tx) error {
			for _, stmt := range m.Statements {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return fmt.Errorf("failed to execute migration v%d (%s): %w", m.Version, m.Name, err)
				}
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)`,
				m.Version, m.Name, time.Now().UTC())
			if err != nil {
				return fmt.Errorf("failed to record migration v%d: %w", m.Version, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
		newMigrations++
	}

	if newMigrations > 0 {
		logging.Info().Int("applied", newMigrations).Msg("Applied database migrations")
	}
	return nil
}

func (db *DB) appliedVersions(ctx context.Context) (map[int]bool, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

// SchemaVersion returns the highest applied migration version
func (db *DB) SchemaVersion(ctx context.Context) (int, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	var version int
	err := db.conn.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

// MigrationHistory returns all applied migrations in order
func (db *DB) MigrationHistory(ctx context.Context) ([]Migration, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT version, name, applied_at FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("failed to query migration history: %w", err)
	}
	defer rows.Close()

	var history []Migration
	for rows.Next() {
		var m Migration
		if err := rows.Scan(&m.Version, &m.Name, &m.AppliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan migration: %w", err)
		}
		history = append(history, m)
	}
	return history, rows.Err()
}
