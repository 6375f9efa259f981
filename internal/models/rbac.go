// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package models

import "time"

// Role names. Staff may mutate the catalog; admin inherits staff.
const (
	RoleViewer = "viewer"
	RoleStaff  = "staff"
	RoleAdmin  = "admin"
)

// User is an API account. PasswordHash is a bcrypt hash and is never serialized.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	IsStaff      bool      `json:"is_staff"`
	IsSuperuser  bool      `json:"is_superuser"`
	CreatedAt    time.Time `json:"created_at"`
}

// Role derives the RBAC role from the account flags.
func (u *User) Role() string {
	switch {
	case u.IsSuperuser:
		return RoleAdmin
	case u.IsStaff:
		return RoleStaff
	default:
		return RoleViewer
	}
}

// IsStaffRole reports whether role may mutate the catalog.
func IsStaffRole(role string) bool {
	return role == RoleStaff || role == RoleAdmin
}
