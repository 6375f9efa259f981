// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package websocket

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
)

// Message types.
const (
	MessageTypeCatalogChange = "catalog_change"
	MessageTypePing          = "ping"
	MessageTypePong          = "pong"
)

// Change actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// defaultQueueSize bounds the hub's broadcast queue.
const defaultQueueSize = 256

// Message is the envelope of every frame sent to clients.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Change describes one committed catalog write.
type Change struct {
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	ID        int64     `json:"id"`
	Name      string    `json:"name,omitempty"`
	Actor     string    `json:"actor,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Hub fans published changes out to attached clients.
type Hub struct {
	name      string
	broadcast chan Message

	mu      sync.RWMutex
	clients map[*Client]struct{}
}

// NewHub creates a hub. Call Serve (or add it to a supervisor) before
// publishing.
func NewHub() *Hub {
	return &Hub{
		name:      "events-hub",
		broadcast: make(chan Message, defaultQueueSize),
		clients:   make(map[*Client]struct{}),
	}
}

// Serve delivers queued messages until ctx is canceled, then closes every
// client. It implements suture.Service.
func (h *Hub) Serve(ctx context.Context) error {
	logging.Info().Str("component", h.name).Msg("Change feed started")
	for {
		// Shutdown wins over a non-empty queue.
		select {
		case <-ctx.Done():
			return h.stop(ctx)
		default:
		}

		select {
		case <-ctx.Done():
			return h.stop(ctx)
		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

// String implements fmt.Stringer for supervisor logs.
func (h *Hub) String() string {
	return h.name
}

func (h *Hub) stop(ctx context.Context) error {
	closed := h.closeAll()
	reason := "context_canceled"
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		reason = "context_deadline"
	}
	logging.Info().
		Str("component", h.name).
		Str("reason", reason).
		Int("clients_closed", closed).
		Msg("Change feed stopped")
	return ctx.Err()
}

// Publish queues change for every attached client. It never blocks and is
// a no-op on a nil hub.
func (h *Hub) Publish(change Change) {
	if h == nil {
		return
	}
	if change.Timestamp.IsZero() {
		change.Timestamp = time.Now().UTC()
	}

	select {
	case h.broadcast <- Message{Type: MessageTypeCatalogChange, Data: change}:
		metrics.EventMessages.WithLabelValues("queued").Inc()
	default:
		metrics.EventMessages.WithLabelValues("dropped").Inc()
		logging.Warn().
			Str("resource", change.Resource).
			Str("action", change.Action).
			Msg("Change feed queue full, dropping change")
	}
}

// Attach starts serving conn. The connection is closed when the client
// goes away or the hub stops.
func (h *Hub) Attach(conn *websocket.Conn) *Client {
	c := newClient(h, conn)
	h.mu.Lock()
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	metrics.EventClients.Set(float64(count))
	logging.Debug().Uint64("client_id", c.id).Int("total_clients", count).Msg("Change feed client connected")

	c.start()
	return c
}

// ClientCount returns the number of attached clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// detach removes c and closes its queue. Safe to call more than once.
func (h *Hub) detach(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	count := len(h.clients)
	h.mu.Unlock()

	c.closeQueue()
	if ok {
		metrics.EventClients.Set(float64(count))
		logging.Debug().Uint64("client_id", c.id).Int("total_clients", count).Msg("Change feed client disconnected")
	}
}

// deliver encodes msg once and queues it for clients in attach order.
// Clients whose queue is full are disconnected.
func (h *Hub) deliver(msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		logging.Error().Err(err).Str("type", msg.Type).Msg("Failed to encode change feed message")
		return
	}

	var slow []*Client
	for _, c := range h.snapshot() {
		if !c.enqueue(payload) {
			slow = append(slow, c)
		}
	}
	for _, c := range slow {
		logging.Warn().Uint64("client_id", c.id).Msg("Change feed client too slow, disconnecting")
		h.detach(c)
	}
}

func (h *Hub) snapshot() []*Client {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	return clients
}

func (h *Hub) closeAll() int {
	clients := h.snapshot()
	for _, c := range clients {
		h.detach(c)
	}
	return len(clients)
}
