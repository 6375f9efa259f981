// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	_ "github.com/tomtom215/marquee/docs" // swagger spec served at /swagger/doc.json
	"github.com/tomtom215/marquee/internal/api"
	"github.com/tomtom215/marquee/internal/audit"
	"github.com/tomtom215/marquee/internal/auth"
	"github.com/tomtom215/marquee/internal/authz"
	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/database"
	"github.com/tomtom215/marquee/internal/eventbus"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/supervisor"
	"github.com/tomtom215/marquee/internal/supervisor/services"
	"github.com/tomtom215/marquee/internal/tracing"
	ws "github.com/tomtom215/marquee/internal/websocket"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Server stopped with error")
	}
	logging.Info().Msg("Application stopped gracefully")
}

func run(cfg *config.Config) error {
	logging.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Str("db_path", cfg.Database.Path).
		Str("auth_mode", cfg.Security.AuthMode).
		Bool("casbin", cfg.Security.Casbin.Enabled).
		Msg("Starting Marquee")
	metrics.SetAppInfo(version)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := tracing.Setup(ctx, &cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logging.Warn().Err(err).Msg("Failed to flush traces")
		}
	}()

	db, err := database.New(&cfg.Database, &cfg.Breaker)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	users := db.Users()
	if _, err := auth.EnsureAdmin(ctx, users, cfg.Security.AdminUsername, cfg.Security.AdminPassword); err != nil {
		return err
	}

	authn, jwtManager, err := initAuth(cfg, users)
	if err != nil {
		return err
	}

	authorizer, enforcer, err := initAuthz(cfg)
	if err != nil {
		return err
	}
	if enforcer != nil {
		defer enforcer.Close()
		go reloadPolicyOnHUP(ctx, enforcer)
	}

	loginLimiter := auth.NewRateLimiter(cfg.Security.LoginRateLimitReqs, cfg.Security.LoginRateLimitWindow)
	defer loginLimiter.Stop()

	catalog := api.NewCatalog(db)
	handler := api.NewHandler(catalog, users, jwtManager, db, cfg)

	var auditLogger *audit.Logger
	if cfg.Audit.Enabled {
		auditLogger = audit.NewLogger(audit.NewDuckDBStore(db.Conn()), &cfg.Audit)
		handler.SetAuditLogger(auditLogger)
		authn.SetFailureHook(auditLogger.LogAuthFailure)
	}

	var eventHub *ws.Hub
	if cfg.API.EventsEnabled {
		eventHub = ws.NewHub()
		handler.SetEventHub(eventHub)
	}

	var bridge *eventbus.Bridge
	if eventHub != nil && cfg.EventBus.Enabled {
		bus, b, closeBus, err := initEventBus(&cfg.EventBus, eventHub)
		if err != nil {
			return err
		}
		defer closeBus()
		handler.SetChangePublisher(bus)
		bridge = b
	}
	router := api.NewRouter(handler, authn, authorizer, loginLimiter, cfg)

	var root http.Handler = router.Setup()
	if cfg.Tracing.Enabled {
		root = tracing.Handler(root, cfg.Tracing.ServiceName)
	}

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           root,
		ReadHeaderTimeout: cfg.Server.Timeout,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create supervisor tree: %w", err)
	}
	tree.AddDataService(services.NewCheckpointService(db, cfg.Database.CheckpointInterval))
	if auditLogger != nil {
		tree.AddDataService(auditLogger)
	}
	if eventHub != nil {
		// Added before the server so it stops after it and closes the feeds.
		tree.AddAPIService(eventHub)
	}
	if bridge != nil {
		tree.AddAPIService(bridge)
	}
	tree.AddAPIService(services.NewHTTPServerService(srv, cfg.Server.ShutdownTimeout))

	logging.Info().Str("addr", srv.Addr).Msg("HTTP server starting")
	err = tree.Serve(ctx)

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor tree: %w", err)
	}
	return nil
}

// initEventBus connects the change feed to NATS, starting an embedded
// server when configured. The returned func releases everything it opened.
func initEventBus(cfg *config.EventBusConfig, hub *ws.Hub) (*eventbus.Bus, *eventbus.Bridge, func(), error) {
	url := cfg.URL
	var embedded *eventbus.EmbeddedServer
	if cfg.Embedded {
		var err error
		embedded, err = eventbus.NewEmbeddedServer(cfg.Host, cfg.Port)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to start embedded NATS: %w", err)
		}
		url = embedded.ClientURL()
	}
	shutdownEmbedded := func() {
		if embedded != nil {
			embedded.Shutdown()
		}
	}

	bus, err := eventbus.NewBus(url, cfg)
	if err != nil {
		shutdownEmbedded()
		return nil, nil, nil, err
	}
	bridge, err := eventbus.NewBridge(url, cfg, hub)
	if err != nil {
		_ = bus.Close()
		shutdownEmbedded()
		return nil, nil, nil, err
	}

	logging.Info().Str("url", url).Str("subject", cfg.Subject).Bool("embedded", cfg.Embedded).Msg("Event bus enabled")
	return bus, bridge, func() {
		if err := bridge.Close(); err != nil {
			logging.Warn().Err(err).Msg("Failed to close event bus subscriber")
		}
		if err := bus.Close(); err != nil {
			logging.Warn().Err(err).Msg("Failed to close event bus publisher")
		}
		shutdownEmbedded()
	}, nil
}

// initAuth builds the authentication gate. The JWT manager is nil in basic
// mode, which also disables the token endpoint.
func initAuth(cfg *config.Config, users auth.UserStore) (*auth.Middleware, *auth.JWTManager, error) {
	mode, err := auth.ParseAuthMode(cfg.Security.AuthMode)
	if err != nil {
		return nil, nil, err
	}

	var jwtManager *auth.JWTManager
	if mode != auth.AuthModeBasic {
		jwtManager, err = auth.NewJWTManager(&cfg.Security)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize JWT manager: %w", err)
		}
	}

	authenticator, err := auth.NewAuthenticator(mode, jwtManager, users)
	if err != nil {
		return nil, nil, err
	}

	if mode != auth.AuthModeJWT {
		logging.Warn().Msg("Basic Auth transmits credentials with each request. Use HTTPS in production!")
	}
	logging.Info().Str("mode", mode.String()).Msg("Authentication enabled")
	return auth.NewMiddleware(authenticator), jwtManager, nil
}

// initAuthz returns the policy middleware and, when Casbin is enabled, its
// enforcer.
func initAuthz(cfg *config.Config) (*authz.Middleware, *authz.Enforcer, error) {
	if !cfg.Security.Casbin.Enabled {
		logging.Info().Msg("Authorization uses the built-in staff rule")
		return authz.NewMiddleware(nil, cfg.API.BasePath), nil, nil
	}

	enforcer, err := authz.NewEnforcer(&cfg.Security.Casbin)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize authorization: %w", err)
	}
	logging.Info().
		Str("model", cfg.Security.Casbin.ModelPath).
		Str("policy", cfg.Security.Casbin.PolicyPath).
		Msg("Casbin authorization enabled")
	return authz.NewMiddleware(enforcer, cfg.API.BasePath), enforcer, nil
}

// reloadPolicyOnHUP reloads the Casbin policy file on SIGHUP.
func reloadPolicyOnHUP(ctx context.Context, enforcer *authz.Enforcer) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if err := enforcer.Reload(); err != nil {
				logging.Warn().Err(err).Msg("Policy reload failed")
				continue
			}
			logging.Info().Msg("Authorization policy reloaded")
		}
	}
}
