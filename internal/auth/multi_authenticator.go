// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package auth

import (
	"context"
	"errors"
	"net/http"
)

// MultiAuthenticator tries its authenticators in order.
//
// Error handling:
//   - ErrNoCredentials: try the next authenticator
//   - any other error: stop and return it (credentials were supplied but rejected)
type MultiAuthenticator struct {
	authenticators []Authenticator
}

// NewMultiAuthenticator creates a chain that tries authenticators in the given order.
func NewMultiAuthenticator(authenticators ...Authenticator) *MultiAuthenticator {
	return &MultiAuthenticator{authenticators: authenticators}
}

// Authenticate tries each authenticator in order.
func (m *MultiAuthenticator) Authenticate(ctx context.Context, r *http.Request) (*Principal, error) {
	for _, a := range m.authenticators {
		principal, err := a.Authenticate(ctx, r)
		if err == nil {
			return principal, nil
		}
		if !errors.Is(err, ErrNoCredentials) {
			return nil, err
		}
	}
	return nil, ErrNoCredentials
}

// Name returns the authenticator name.
func (m *MultiAuthenticator) Name() string {
	return string(AuthModeMulti)
}

// Challenge returns every chained authenticator's challenge.
func (m *MultiAuthenticator) Challenge() []string {
	var challenges []string
	for _, a := range m.authenticators {
		challenges = append(challenges, a.Challenge()...)
	}
	return challenges
}

// NewAuthenticator builds the authenticator for the configured mode. The JWT
// manager may be nil in basic mode.
func NewAuthenticator(mode AuthMode, jwtManager *JWTManager, users UserStore) (Authenticator, error) {
	switch mode {
	case AuthModeBasic:
		return NewBasicAuthenticator(users), nil
	case AuthModeJWT:
		if jwtManager == nil {
			return nil, errors.New("jwt auth mode requires a JWT manager")
		}
		return NewJWTAuthenticator(jwtManager), nil
	case AuthModeMulti:
		if jwtManager == nil {
			return nil, errors.New("multi auth mode requires a JWT manager")
		}
		return NewMultiAuthenticator(NewJWTAuthenticator(jwtManager), NewBasicAuthenticator(users)), nil
	default:
		return nil, errors.New("invalid auth mode: " + string(mode))
	}
}
