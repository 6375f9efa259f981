// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/models"
)

func TestNewJWTManager_RequiresSecret(t *testing.T) {
	if _, err := NewJWTManager(&config.SecurityConfig{}); err == nil {
		t.Error("expected error for empty secret")
	}
}

func TestJWTManager_RoundTrip(t *testing.T) {
	m := newTestJWTManager(t)
	user := &models.User{Username: "alice", IsStaff: true}

	token, expiresAt, err := m.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if until := time.Until(expiresAt); until < 59*time.Minute || until > time.Hour+time.Second {
		t.Errorf("expiresAt %v not about one hour away", expiresAt)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.Username != "alice" || claims.Role != models.RoleStaff || claims.Subject != "alice" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestJWTManager_Expired(t *testing.T) {
	m := newTestJWTManager(t)
	token, _, err := m.GenerateToken(&models.User{Username: "alice"})
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := m.ValidateToken(token); !errors.Is(err, ErrExpiredCredentials) {
		t.Errorf("ValidateToken(expired) error = %v, want ErrExpiredCredentials", err)
	}
}

func TestJWTManager_RejectsForeignTokens(t *testing.T) {
	m := newTestJWTManager(t)

	other, err := NewJWTManager(&config.SecurityConfig{JWTSecret: "another-secret-another-secret-xx", SessionTimeout: time.Hour})
	if err != nil {
		t.Fatal(err)
	}
	wrongKey, _, err := other.GenerateToken(&models.User{Username: "alice"})
	if err != nil {
		t.Fatal(err)
	}

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Username: "alice", Role: models.RoleAdmin}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}

	wrongIssuer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatal(err)
	}

	tests := map[string]string{
		"wrong key":    wrongKey,
		"alg none":     noneToken,
		"wrong issuer": wrongIssuer,
		"garbage":      "not.a.token",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := m.ValidateToken(token); !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("ValidateToken() error = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}
