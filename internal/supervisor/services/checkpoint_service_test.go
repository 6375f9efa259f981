// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

var _ suture.Service = (*CheckpointService)(nil)

type fakeCheckpointer struct {
	calls atomic.Int32
	err   error
}

func (f *fakeCheckpointer) Checkpoint(context.Context) error {
	f.calls.Add(1)
	return f.err
}

func TestCheckpointService_Ticks(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"success", nil},
		{"failures keep the service running", errors.New("database is locked")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeCheckpointer{err: tt.err}
			svc := NewCheckpointService(store, 10*time.Millisecond)

			ctx, cancel := context.WithCancel(context.Background())
			errCh := make(chan error, 1)
			go func() { errCh <- svc.Serve(ctx) }()

			deadline := time.Now().Add(2 * time.Second)
			for store.calls.Load() < 2 {
				if time.Now().After(deadline) {
					t.Fatalf("checkpoint called %d times, want at least 2", store.calls.Load())
				}
				time.Sleep(5 * time.Millisecond)
			}

			cancel()
			if err := <-errCh; !errors.Is(err, context.Canceled) {
				t.Errorf("Serve returned %v, want context.Canceled", err)
			}
		})
	}
}

func TestCheckpointService_Disabled(t *testing.T) {
	store := &fakeCheckpointer{}
	svc := NewCheckpointService(store, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve returned %v, want context.DeadlineExceeded", err)
	}
	if store.calls.Load() != 0 {
		t.Errorf("checkpoint called %d times with interval 0", store.calls.Load())
	}
	if svc.String() != "duckdb-checkpoint" {
		t.Errorf("String() = %q", svc.String())
	}
}
