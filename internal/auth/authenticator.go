// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/marquee/internal/models"
)

// AuthMode represents the authentication strategy.
type AuthMode string

const (
	// AuthModeBasic uses HTTP Basic Authentication against the users table
	AuthModeBasic AuthMode = "basic"

	// AuthModeJWT uses JWT Bearer tokens
	AuthModeJWT AuthMode = "jwt"

	// AuthModeMulti tries JWT, then Basic
	AuthModeMulti AuthMode = "multi"
)

// ParseAuthMode converts a string to AuthMode.
func ParseAuthMode(s string) (AuthMode, error) {
	switch AuthMode(s) {
	case AuthModeBasic, AuthModeJWT, AuthModeMulti:
		return AuthMode(s), nil
	case "":
		return AuthModeMulti, nil
	default:
		return "", errors.New("invalid auth mode: " + s)
	}
}

// String returns the string representation of AuthMode.
func (m AuthMode) String() string {
	return string(m)
}

// Standard authentication errors
var (
	// ErrNoCredentials indicates no credentials were provided.
	ErrNoCredentials = errors.New("no credentials provided")

	// ErrInvalidCredentials indicates credentials were invalid.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrExpiredCredentials indicates credentials have expired.
	ErrExpiredCredentials = errors.New("credentials expired")
)

// Authenticator defines the interface for authentication providers.
type Authenticator interface {
	// Authenticate extracts and validates credentials from the request.
	Authenticate(ctx context.Context, r *http.Request) (*Principal, error)

	// Name returns the authenticator's name for logging and metrics.
	Name() string

	// Challenge returns the WWW-Authenticate values sent with a 401.
	Challenge() []string
}

// Principal is the authenticated caller.
type Principal struct {
	Username string   `json:"username"`
	Role     string   `json:"role"`
	Method   AuthMode `json:"method"`
}

// IsStaff reports whether the caller may mutate the catalog.
func (p *Principal) IsStaff() bool {
	return p != nil && models.IsStaffRole(p.Role)
}

type principalKey struct{}

// ContextWithPrincipal stores the principal in ctx.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the authenticated principal, or nil.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}
