// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tomtom215/marquee/internal/auth"
	"github.com/tomtom215/marquee/internal/authz"
	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/middleware"
	"github.com/tomtom215/marquee/internal/models"
)

// Router wires handlers and middleware into a chi route tree.
type Router struct {
	handler       *Handler
	authn         *auth.Middleware
	authz         *authz.Middleware
	loginLimiter  *auth.RateLimiter
	chiMiddleware *ChiMiddleware
	config        *config.Config
}

// NewRouter creates a router. loginLimiter may be nil to leave the token
// endpoint unthrottled.
func NewRouter(handler *Handler, authn *auth.Middleware, authorizer *authz.Middleware, loginLimiter *auth.RateLimiter, cfg *config.Config) *Router {
	chiConfig := DefaultChiMiddlewareConfig()
	chiConfig.CORSAllowedOrigins = cfg.Security.CORSOrigins
	chiConfig.RateLimitRequests = cfg.Security.RateLimitReqs
	chiConfig.RateLimitWindow = cfg.Security.RateLimitWindow
	chiConfig.RateLimitDisabled = cfg.Security.RateLimitDisabled

	return &Router{
		handler:       handler,
		authn:         authn,
		authz:         authorizer,
		loginLimiter:  loginLimiter,
		chiMiddleware: NewChiMiddleware(chiConfig),
		config:        cfg,
	}
}

// Setup builds the HTTP handler.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.AccessLog)
	r.Use(middleware.PrometheusMetrics)
	r.Use(router.chiMiddleware.CORS()) // must be global to answer OPTIONS preflight
	r.Use(chimiddleware.StripSlashes)
	r.Use(chimiddleware.GetHead) // HEAD runs the GET handler; net/http drops the body

	// Set before any Route so subrouters inherit them.
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, r, http.StatusNotFound, models.CodeNotFound, "Not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, r, http.StatusMethodNotAllowed, models.CodeMethodNotAllowed,
			"Method \""+r.Method+"\" not allowed", nil)
	})

	// ========================
	// Health Endpoints
	// ========================
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// ========================
	// Catalog API
	// ========================
	r.Route(basePath(router.config), func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())

		r.With(router.throttleLogin).Post("/auth/token", router.handler.IssueToken)

		r.Group(func(r chi.Router) {
			r.Use(router.authn.Authenticate)
			r.Use(router.authz.Authorize)

			r.Get("/", router.handler.APIRoot)
			r.Options("/", allowMethods(http.MethodGet))
			r.Get("/events", router.handler.Events)

			r.Route("/movies", func(r chi.Router) {
				r.Get("/", router.handler.ListMovies)
				r.Post("/", router.handler.CreateMovie)
				r.Options("/", allowMethods(http.MethodGet, http.MethodPost))
				r.Get("/{id}", router.handler.GetMovie)
				r.Put("/{id}", router.handler.ReplaceMovie)
				r.Patch("/{id}", router.handler.PatchMovie)
				r.Delete("/{id}", router.handler.DeleteMovie)
				r.Options("/{id}", allowMethods(http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete))
			})

			r.Route("/directors", func(r chi.Router) {
				r.Get("/", router.handler.ListDirectors)
				r.Options("/", allowMethods(http.MethodGet))
				r.Get("/{id}", router.handler.GetDirector)
				r.Delete("/{id}", router.handler.DeleteDirector)
				r.Options("/{id}", allowMethods(http.MethodGet, http.MethodDelete))
			})

			r.Route("/genres", func(r chi.Router) {
				r.Get("/", router.handler.ListGenres)
				r.Options("/", allowMethods(http.MethodGet))
				r.Get("/{id}", router.handler.GetGenre)
				r.Delete("/{id}", router.handler.DeleteGenre)
				r.Options("/{id}", allowMethods(http.MethodGet, http.MethodDelete))
			})
		})
	})

	// ========================
	// Observability
	// ========================
	r.Handle("/metrics", promhttp.Handler())
	if router.config.API.SwaggerEnabled {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
			httpSwagger.DeepLinking(true),
			httpSwagger.DocExpansion("list"),
			httpSwagger.DomID("swagger-ui"),
		))
	}

	return r
}

// basePath is the API prefix, "/api/v1" unless configured.
func basePath(cfg *config.Config) string {
	if cfg == nil || cfg.API.BasePath == "" {
		return "/api/v1"
	}
	return strings.TrimSuffix(cfg.API.BasePath, "/")
}

func (router *Router) throttleLogin(next http.Handler) http.Handler {
	if router.loginLimiter == nil {
		return next
	}
	return router.loginLimiter.Limit("login", next)
}

// allowMethods answers OPTIONS with the route's methods in the Allow header.
// HEAD and OPTIONS are always listed.
func allowMethods(methods ...string) http.HandlerFunc {
	allow := strings.Join(append(methods, http.MethodHead, http.MethodOptions), ", ")
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", allow)
		w.WriteHeader(http.StatusOK)
	}
}
