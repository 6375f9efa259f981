// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package websocket streams catalog changes to connected clients.

Every successful create, update or delete answered by the API is published
to a Hub, which fans it out to the WebSocket clients attached at
GET /api/v1/events:

	{"type":"catalog_change","data":{"action":"created","resource":"movie",
	 "id":7,"name":"Inception","actor":"staff","request_id":"3f1c...",
	 "timestamp":"2026-10-18T09:12:44Z"}}

Clients may send {"type":"ping"} and receive {"type":"pong"}. The server also
sends protocol-level pings and drops clients that stop answering them.

# Delivery

Delivery is best effort. Publish never blocks the request that made the
change: when the hub's queue or a client's queue is full the message is
dropped and counted in events_messages_total{result="dropped"}. A client
whose queue overflows is disconnected and must re-read the catalog after
reconnecting.

# Lifecycle

Hub implements suture.Service. It runs in the API layer of the supervisor
tree and closes every client when stopped.
*/
package websocket
