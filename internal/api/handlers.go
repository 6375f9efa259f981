// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/tomtom215/marquee/internal/audit"
	"github.com/tomtom215/marquee/internal/auth"
	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/database"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/models"
	ws "github.com/tomtom215/marquee/internal/websocket"
)

// DirectorStore lists, fetches and deletes directors.
type DirectorStore interface {
	List(ctx context.Context) ([]models.Director, error)
	Get(ctx context.Context, id int64) (*models.Director, error)
	Delete(ctx context.Context, id int64) error
}

// GenreStore lists, fetches and deletes genres.
type GenreStore interface {
	List(ctx context.Context) ([]models.Genre, error)
	Get(ctx context.Context, id int64) (*models.Genre, error)
	Delete(ctx context.Context, id int64) error
}

// ChangePublisher receives every committed catalog write.
type ChangePublisher interface {
	Publish(change ws.Change)
}

// Pinger reports store health for the readiness check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Catalog groups the repositories the handlers serve.
type Catalog struct {
	Movies    database.MovieRepository
	Directors DirectorStore
	Genres    GenreStore
}

// NewCatalog returns the DuckDB-backed repositories of db.
func NewCatalog(db *database.DB) Catalog {
	return Catalog{
		Movies:    db.Movies(),
		Directors: db.Directors(),
		Genres:    db.Genres(),
	}
}

// Handler contains dependencies for API handlers
//
// Handler methods are split across files:
//   - handlers_movies.go: movie resource
//   - handlers_catalog.go: director and genre resources, API root
//   - handlers_auth.go: token endpoint
//   - handlers_health.go: liveness and readiness endpoints
type Handler struct {
	catalog    Catalog
	users      auth.UserStore
	jwtManager *auth.JWTManager
	store      Pinger
	audit      *audit.Logger
	events     *ws.Hub
	changes    ChangePublisher
	config     *config.Config
	startTime  time.Time
}

// NewHandler creates the API handler. jwtManager may be nil when token
// authentication is disabled; the token endpoint then answers 404.
//
// Example:
//
//	handler := api.NewHandler(api.NewCatalog(db), db.Users(), jwtManager, db, cfg)
//	router := api.NewRouter(handler, authMiddleware, authzMiddleware, loginLimiter, cfg)
//	srv := &http.Server{Handler: router.Setup()}
func NewHandler(catalog Catalog, users auth.UserStore, jwtManager *auth.JWTManager, store Pinger, cfg *config.Config) *Handler {
	return &Handler{
		catalog:    catalog,
		users:      users,
		jwtManager: jwtManager,
		store:      store,
		config:     cfg,
		startTime:  time.Now(),
	}
}

// SetAuditLogger records catalog writes and token requests to logger.
// Passing nil disables the audit trail.
//
// Thread Safety: should be called once during startup.
func (h *Handler) SetAuditLogger(logger *audit.Logger) {
	h.audit = logger
}

// SetEventHub serves the change feed from hub and, unless SetChangePublisher
// is also used, publishes committed writes to it. Passing nil disables the
// feed.
//
// Thread Safety: should be called once during startup.
func (h *Handler) SetEventHub(hub *ws.Hub) {
	h.events = hub
	if h.changes == nil && hub != nil {
		h.changes = hub
	}
}

// SetChangePublisher sends committed writes to p instead of the local hub,
// typically an eventbus.Bus whose bridges feed every instance's hub.
//
// Thread Safety: should be called once during startup.
func (h *Handler) SetChangePublisher(p ChangePublisher) {
	h.changes = p
}

// catalogChanged audits a committed write and publishes it to the change
// feed. The resource and action are taken from eventType ("movie.created").
func (h *Handler) catalogChanged(r *http.Request, eventType audit.EventType, id int64, name, description string) {
	resource, action, _ := strings.Cut(string(eventType), ".")
	h.audit.LogCatalogWrite(r, eventType, audit.Target{Type: resource, ID: formatID(id), Name: name}, description)

	if h.changes == nil {
		return
	}
	var actor string
	if p := auth.PrincipalFromContext(r.Context()); p != nil {
		actor = p.Username
	}
	h.changes.Publish(ws.Change{
		Action:    action,
		Resource:  resource,
		ID:        id,
		Name:      name,
		Actor:     actor,
		RequestID: logging.RequestIDFromContext(r.Context()),
	})
}

func (h *Handler) maxBodyBytes() int64 {
	if h.config == nil {
		return 0
	}
	return h.config.API.MaxBodyBytes
}
