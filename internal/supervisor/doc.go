// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package supervisor runs the server's long-lived services under suture v4.

The tree has two layers so a failing background job never takes the API down:

	RootSupervisor ("marquee")
	├── DataSupervisor ("data-layer")
	│   ├── CheckpointService (periodic DuckDB CHECKPOINT)
	│   └── audit.Logger (audit event writer, when enabled)
	└── APISupervisor ("api-layer")
	    ├── websocket.Hub (change feed, when enabled)
	    ├── eventbus.Bridge (NATS to hub, when the event bus is enabled)
	    └── HTTPServerService

Crashed services are restarted with suture's backoff. Canceling the context
passed to Serve stops every service, each within TreeConfig.ShutdownTimeout.
Suture stops children in reverse order of addition, so the API layer drains
its connections before the data layer flushes buffered audit events, and
the HTTP server stops accepting feed connections before the hub closes the
open ones.
Supervisor events are logged through sutureslog, which writes to the zerolog
pipeline via logging.NewSlogHandler.

Usage:

	logger := slog.New(logging.NewSlogHandler(logging.Logger()))
	tree, err := supervisor.NewSupervisorTree(logger, supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(services.NewCheckpointService(db, cfg.Database.CheckpointInterval))
	tree.AddAPIService(services.NewHTTPServerService(srv, cfg.Server.ShutdownTimeout))
	return tree.Serve(ctx)
*/
package supervisor
