// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package services

import (
	"context"
	"time"

	"github.com/tomtom215/marquee/internal/logging"
)

// checkpointTimeout bounds a single CHECKPOINT statement.
const checkpointTimeout = 30 * time.Second

// Checkpointer flushes the write-ahead log into the database file.
type Checkpointer interface {
	Checkpoint(ctx context.Context) error
}

// CheckpointService checkpoints the database on a fixed interval. A failed
// checkpoint is logged and retried on the next tick; the service itself
// keeps running.
type CheckpointService struct {
	store    Checkpointer
	interval time.Duration
	name     string
}

// NewCheckpointService creates the service. A non-positive interval makes
// Serve idle until canceled.
func NewCheckpointService(store Checkpointer, interval time.Duration) *CheckpointService {
	return &CheckpointService{
		store:    store,
		interval: interval,
		name:     "duckdb-checkpoint",
	}
}

// Serve implements suture.Service.
func (c *CheckpointService) Serve(ctx context.Context) error {
	if c.interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.checkpoint(ctx)
		}
	}
}

func (c *CheckpointService) checkpoint(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, checkpointTimeout)
	defer cancel()

	start := time.Now()
	if err := c.store.Checkpoint(ctx); err != nil {
		logging.Warn().Err(err).Msg("Periodic checkpoint failed")
		return
	}
	logging.Debug().Dur("duration", time.Since(start)).Msg("Database checkpointed")
}

// String names the service in supervisor events.
func (c *CheckpointService) String() string {
	return c.name
}
