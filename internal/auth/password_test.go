// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/tomtom215/marquee/internal/models"
)

func TestHashPassword_RejectsShortPasswords(t *testing.T) {
	if _, err := HashPassword("short"); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("HashPassword(short) error = %v, want ErrWeakPassword", err)
	}
}

func TestNewUser(t *testing.T) {
	u := mustUser(t, "  boss  ", "password123", false, true)

	if u.Username != "boss" {
		t.Errorf("Username = %q, want trimmed", u.Username)
	}
	if !u.IsStaff || !u.IsSuperuser || u.Role() != models.RoleAdmin {
		t.Errorf("superuser flags not applied: %+v", u)
	}
	if u.PasswordHash == "" || u.PasswordHash == "password123" {
		t.Error("password must be stored hashed")
	}

	if _, err := NewUser(" ", "password123", false, false); err == nil {
		t.Error("expected error for blank username")
	}
}

func TestVerifyCredentials(t *testing.T) {
	users := newMemoryUsers(t, mustUser(t, "alice", "password123", true, false))
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"valid", "alice", "password123", nil},
		{"wrong password", "alice", "password124", ErrInvalidCredentials},
		{"unknown user", "mallory", "password123", ErrInvalidCredentials},
		{"empty password", "alice", "", ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := VerifyCredentials(ctx, users, tt.username, tt.password)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if user.Username != tt.username {
				t.Errorf("Username = %q", user.Username)
			}
		})
	}
}

func TestVerifyCredentials_StoreFailure(t *testing.T) {
	users := newMemoryUsers(t)
	users.err = errors.New("disk on fire")

	_, err := VerifyCredentials(context.Background(), users, "alice", "password123")
	if err == nil || errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("store failure should surface as a backend error, got %v", err)
	}
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	users := newMemoryUsers(t)

	created, err := EnsureAdmin(ctx, users, "admin", "password123")
	if err != nil || !created {
		t.Fatalf("EnsureAdmin() = %v, %v, want true, nil", created, err)
	}

	admin, err := users.GetByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("admin not stored: %v", err)
	}
	if admin.Role() != models.RoleAdmin {
		t.Errorf("admin role = %q", admin.Role())
	}

	created, err = EnsureAdmin(ctx, users, "admin", "different-password")
	if err != nil || created {
		t.Errorf("second EnsureAdmin() = %v, %v, want false, nil", created, err)
	}
	if _, err := VerifyCredentials(ctx, users, "admin", "password123"); err != nil {
		t.Error("existing admin password must not be replaced")
	}

	created, err = EnsureAdmin(ctx, users, "", "")
	if err != nil || created {
		t.Errorf("EnsureAdmin without credentials = %v, %v, want no-op", created, err)
	}
}
