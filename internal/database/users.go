// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/marquee/internal/models"
)

// Users stores API accounts.
type Users struct {
	db *DB
}

// Users returns the user repository
func (db *DB) Users() *Users {
	return &Users{db: db}
}

const userSelect = `SELECT id, username, password_hash, is_staff, is_superuser, created_at FROM users`

// Create inserts user and fills in its ID and CreatedAt. PasswordHash must
// already be a bcrypt hash.
func (r *Users) Create(ctx context.Context, user *models.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	return r.db.run(ctx, "insert", "users", func(ctx context.Context) error {
		err := r.db.conn.QueryRowContext(ctx,
			`INSERT INTO users (username, password_hash, is_staff, is_superuser, created_at)
			VALUES (?, ?, ?, ?, ?)
			RETURNING id`,
			user.Username, user.PasswordHash, user.IsStaff, user.IsSuperuser, user.CreatedAt,
		).Scan(&user.ID)
		if err != nil {
			if isUniqueConstraintError(err) {
				return ErrUserExists
			}
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
}

// GetByUsername returns the user named username, or ErrUserNotFound.
func (r *Users) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user *models.User
	err := r.db.run(ctx, "select", "users", func(ctx context.Context) error {
		row := r.db.conn.QueryRowContext(ctx, userSelect+` WHERE username = ?`, username)
		u, err := scanUser(row)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get user: %w", err)
		}
		user = u
		return nil
	})
	return user, err
}

// List returns every user ordered by id.
func (r *Users) List(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0)
	err := r.db.run(ctx, "select", "users", func(ctx context.Context) error {
		rows, err := r.db.conn.QueryContext(ctx, userSelect+` ORDER BY id`)
		if err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			u, err := scanUser(rows)
			if err != nil {
				return fmt.Errorf("failed to scan user: %w", err)
			}
			users = append(users, *u)
		}
		return rows.Err()
	})
	return users, err
}

func scanUser(scanner interface{ Scan(dest ...any) error }) (*models.User, error) {
	u := &models.User{}
	if err := scanner.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsStaff, &u.IsSuperuser, &u.CreatedAt); err != nil {
		return nil, err
	}
	return u, nil
}
