// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package authz

import "net/http"

// Casbin actions.
const (
	ActionRead   = "read"
	ActionWrite  = "write"
	ActionDelete = "delete"
)

// Allow reports whether a caller may use method. Safe verbs are always
// allowed; every other verb requires staff. Unknown verbs are denied to
// non-staff callers.
func Allow(staff bool, method string) bool {
	if IsSafeMethod(method) {
		return true
	}
	return staff
}

// IsSafeMethod reports whether method never mutates the catalog.
func IsSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}

// methodToAction maps HTTP methods to Casbin actions. Unknown verbs map to
// write so they require staff, matching Allow.
func methodToAction(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return ActionRead
	case http.MethodDelete:
		return ActionDelete
	default:
		return ActionWrite
	}
}
