// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package authz decides whether an authenticated caller may perform a request.

The rule is small: safe verbs (GET, HEAD, OPTIONS) are open to every
authenticated caller, mutating verbs (POST, PUT, PATCH, DELETE) require a
staff or admin role. It exists in two equivalent forms:

  - Allow(staff, method): a pure function used when Casbin is disabled
  - Enforcer: a Casbin RBAC enforcer over named roles with the embedded
    model.conf and policy.csv, overridable from files

Model:

	[request_definition]
	r = sub, obj, act

	[policy_definition]
	p = sub, obj, act

	[role_definition]
	g = _, _

	[policy_effect]
	e = some(where (p.eft == allow))

	[matchers]
	m = g(r.sub, p.sub) && keyMatch(r.obj, p.obj) && r.act == p.act

Role hierarchy:

	admin -> staff -> viewer

Middleware runs after the authentication gate, so a missing principal is a
wiring error and is answered with 401, never 403. Denials are answered with
403 before any handler runs.
*/
package authz
