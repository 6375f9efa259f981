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

// basicChallenge is sent with 401 responses when Basic auth is accepted.
const basicChallenge = `Basic realm="Marquee", charset="UTF-8"`

// BasicAuthenticator checks HTTP Basic credentials against the users table.
type BasicAuthenticator struct {
	users UserStore
}

// NewBasicAuthenticator creates a new Basic authenticator.
func NewBasicAuthenticator(users UserStore) *BasicAuthenticator {
	return &BasicAuthenticator{users: users}
}

// Authenticate extracts and validates Basic auth credentials from the request.
func (a *BasicAuthenticator) Authenticate(ctx context.Context, r *http.Request) (*Principal, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Basic ") {
		return nil, ErrNoCredentials
	}

	username, password, ok := r.BasicAuth()
	if !ok {
		return nil, ErrInvalidCredentials
	}

	user, err := VerifyCredentials(ctx, a.users, username, password)
	if err != nil {
		return nil, err
	}

	return &Principal{
		Username: user.Username,
		Role:     user.Role(),
		Method:   AuthModeBasic,
	}, nil
}

// Name returns the authenticator name.
func (a *BasicAuthenticator) Name() string {
	return string(AuthModeBasic)
}

// Challenge returns the Basic WWW-Authenticate value.
func (a *BasicAuthenticator) Challenge() []string {
	return []string{basicChallenge}
}
