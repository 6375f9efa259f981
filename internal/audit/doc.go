// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package audit records who changed the catalog and who obtained credentials.

# Events

Every committed catalog write (movie create, update and delete, director
and genre delete), every issued token and every rejected token request
produces one Event. Accounts created with marqueectl are recorded too.

An Event names its Actor (username, role and authentication method), an
optional Target (resource type, id and name), the client Source and the
request ID that correlates it with the access log.

# Delivery

Logger.Log never blocks a request: events go through a bounded buffer that
Logger.Serve drains into the Store. When the buffer is full the event is
dropped and counted in audit_events_total{result="dropped"}. Serve runs
under the supervisor tree and flushes whatever is still buffered when it
stops.

# Storage

DuckDBStore writes to the audit_events table created by the database
migrations. Events older than the configured retention are deleted by
Serve on its cleanup interval.

# Usage Example

	store := audit.NewDuckDBStore(db.Conn())
	logger := audit.NewLogger(store, &cfg.Audit)
	tree.AddDataService(logger)
	handler.SetAuditLogger(logger)
*/
package audit
