// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package services adapts the server's long-running components to
// suture.Service: the HTTP server and the periodic DuckDB checkpoint.
// Each Serve returns when its context is canceled and names itself through
// String for supervisor log events.
package services
