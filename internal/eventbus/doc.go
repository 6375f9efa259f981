// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package eventbus shares catalog changes between API instances over NATS.

Without a bus each instance publishes changes straight to its own
websocket.Hub, so feed clients only see writes made through the instance
they are connected to. With the bus enabled the API handler publishes to a
Bus instead, and every instance runs a Bridge that subscribes to the same
subject and forwards what it receives to its local hub:

	handler ──► Bus ──► NATS subject ──► Bridge ──► websocket.Hub ──► clients
	                         │
	                         └─────────► Bridge (other instances) ──► ...

Messages are Watermill messages on core NATS (no JetStream). Each carries
one JSON-encoded websocket.Change; the resource and action are repeated in
the message metadata. Core NATS does not persist messages, which matches the
feed's best-effort delivery.

EmbeddedServer runs an in-process nats-server for single-host deployments
and tests.
*/
package eventbus
