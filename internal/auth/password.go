// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/marquee/internal/database"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/models"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// bcryptCost is a variable so tests can lower it.
var bcryptCost = 12

// ErrWeakPassword is returned for passwords shorter than MinPasswordLength.
var ErrWeakPassword = fmt.Errorf("password must be at least %d characters", MinPasswordLength)

// UserStore is the subset of the users repository auth needs.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// VerifyCredentials looks up username and checks password against the stored
// hash. Unknown users still pay for one bcrypt comparison so response timing
// does not reveal which usernames exist.
func VerifyCredentials(ctx context.Context, users UserStore, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			dummyHashOnce.Do(func() {
				dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcryptCost) //nolint:errcheck // constant input
			})
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password)) //nolint:errcheck // timing only
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// NewUser builds a user with a hashed password.
func NewUser(username, password string, staff, superuser bool) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errors.New("username is required")
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	return &models.User{
		Username:     username,
		PasswordHash: hash,
		IsStaff:      staff || superuser,
		IsSuperuser:  superuser,
	}, nil
}

// EnsureAdmin creates a superuser with the given credentials unless a user
// with that name already exists. It returns true when a user was created.
func EnsureAdmin(ctx context.Context, users UserStore, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}

	_, err := users.GetByUsername(ctx, username)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, database.ErrUserNotFound):
		return false, fmt.Errorf("failed to look up admin user: %w", err)
	}

	user, err := NewUser(username, password, true, true)
	if err != nil {
		return false, err
	}
	if err := users.Create(ctx, user); err != nil {
		if errors.Is(err, database.ErrUserExists) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create admin user: %w", err)
	}

	logging.Ctx(ctx).Info().Str("username", username).Msg("Bootstrap admin user created")
	return true, nil
}
