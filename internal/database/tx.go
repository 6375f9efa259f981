// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
)

const maxTxBackoff = 250 * time.Millisecond

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// withTx runs fn in a transaction, retrying on write conflicts. Two writers
// creating the same director or genre name collide on the unique index; the
// retry then finds the committed row.
func (db *DB) withTx(ctx context.Context, operation string, fn func(tx *sql.Tx) error) error {
	var lastErr error

	for attempt := 0; attempt < db.maxTxRetries; attempt++ {
		if attempt > 0 {
			metrics.RecordTxRetry(operation)
			backoff := min(5*time.Millisecond*time.Duration(1<<uint(attempt-1)), maxTxBackoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := db.runTx(ctx, fn)
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return fmt.Errorf("operation timed out or canceled: %w", ctx.Err())
		}

		if !isTransactionConflict(err) && !isUniqueConstraintError(err) {
			return err
		}

		logging.Ctx(ctx).Debug().
			Err(err).
			Str("operation", operation).
			Int("attempt", attempt+1).
			Msg("Transaction conflict, retrying")
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (db *DB) runTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				logging.Error().
					Err(rbErr).
					AnErr("original_error", err).
					Msg("Transaction rollback failed")
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
