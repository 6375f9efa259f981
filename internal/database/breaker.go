// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
)

func newBreaker(name string, cfg *config.BreakerConfig) *gobreaker.CircuitBreaker[any] {
	threshold := cfg.ConsecutiveFailures
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || isExpected(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
			metrics.RecordBreakerTransition(name, from.String(), to.String(), breakerStateValue(to))
		},
	}
	return gobreaker.NewCircuitBreaker[any](settings)
}

func breakerStateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return metrics.BreakerHalfOpen
	case gobreaker.StateOpen:
		return metrics.BreakerOpen
	default:
		return metrics.BreakerClosed
	}
}

// BreakerState returns the circuit breaker state name, or "disabled".
func (db *DB) BreakerState() string {
	if db.breaker == nil {
		return "disabled"
	}
	return db.breaker.State().String()
}

// run executes fn through the circuit breaker and records query metrics.
// fn receives ctx bounded by a default timeout when the caller set none.
func (db *DB) run(ctx context.Context, operation, table string, fn func(ctx context.Context) error) error {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	err := db.guard(ctx, fn)
	metrics.RecordDBQuery(operation, table, time.Since(start), errorType(err))

	if err != nil && !isExpected(err) {
		logging.Ctx(ctx).Error().
			Err(err).
			Str("operation", operation).
			Str("table", table).
			Msg("Database operation failed")
	}
	return err
}

func (db *DB) guard(ctx context.Context, fn func(ctx context.Context) error) error {
	if db.breaker == nil {
		return fn(ctx)
	}

	_, err := db.breaker.Execute(func() (any, error) {
		return nil, fn(ctx)
	})

	name := db.breaker.Name()
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordBreakerRequest(name, "rejected")
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	case err == nil || isExpected(err):
		metrics.RecordBreakerRequest(name, "success")
	default:
		metrics.RecordBreakerRequest(name, "failure")
	}
	return err
}
