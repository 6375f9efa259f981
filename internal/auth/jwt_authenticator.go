// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package auth

import (
	"context"
	"net/http"
	"strings"
)

const bearerChallenge = `Bearer realm="Marquee"`

// JWTAuthenticator accepts "Authorization: Bearer <token>".
type JWTAuthenticator struct {
	manager *JWTManager
}

// NewJWTAuthenticator creates a new JWT authenticator.
func NewJWTAuthenticator(manager *JWTManager) *JWTAuthenticator {
	return &JWTAuthenticator{manager: manager}
}

// Authenticate validates the bearer token in the request.
func (a *JWTAuthenticator) Authenticate(_ context.Context, r *http.Request) (*Principal, error) {
	authHeader := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(authHeader, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return nil, ErrNoCredentials
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidCredentials
	}

	claims, err := a.manager.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	return &Principal{
		Username: claims.Username,
		Role:     claims.Role,
		Method:   AuthModeJWT,
	}, nil
}

// Name returns the authenticator name.
func (a *JWTAuthenticator) Name() string {
	return string(AuthModeJWT)
}

// Challenge returns the Bearer WWW-Authenticate value.
func (a *JWTAuthenticator) Challenge() []string {
	return []string{bearerChallenge}
}
