// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MKhiriev/go-chat-profiles/internal/config"
	"github.com/MKhiriev/go-chat-profiles/internal/handler"
	myGRPC "github.com/MKhiriev/go-chat-profiles/internal/handler/grpc"
	myHTTP "github.com/MKhiriev/go-chat-profiles/internal/handler/http"
	"github.com/MKhiriev/go-chat-profiles/internal/logger"
	"github.com/MKhiriev/go-chat-profiles/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	tick    = 5 * time.Millisecond
	waitFor = time.Second
)

// mockWorker counts Run calls and blocks until cancelled.
type mockWorker struct {
	runs    atomic.Int32
	stopped atomic.Bool
}

func (m *mockWorker) Run(ctx context.Context) {
	m.runs.Add(1)
	<-ctx.Done()
	m.stopped.Store(true)
}

type fakePurger struct {
	calls atomic.Int32
	err   error
}

func (f *fakePurger) PurgeExpiredRefreshTokens(context.Context) (int, error) {
	f.calls.Add(1)
	return 1, f.err
}

type fakeSweeper struct {
	calls atomic.Int32
	idle  atomic.Int64
}

func (f *fakeSweeper) Sweep(idle time.Duration) int {
	f.calls.Add(1)
	f.idle.Store(int64(idle))
	return 0
}

type fakeProber struct {
	calls       atomic.Int32
	hadDeadline atomic.Bool
}

func (f *fakeProber) Probe(ctx context.Context) {
	f.calls.Add(1)
	_, ok := ctx.Deadline()
	f.hadDeadline.Store(ok)
}

func TestWorkers_RunAndWait(t *testing.T) {
	w1, w2 := &mockWorker{}, &mockWorker{}
	ws := &Workers{workers: []Worker{w1, w2}}

	ctx, cancel := context.WithCancel(context.Background())
	ws.Run(ctx)

	require.Eventually(t, func() bool {
		return w1.runs.Load() == 1 && w2.runs.Load() == 1
	}, waitFor, tick)

	cancel()
	ws.Wait()

	assert.True(t, w1.stopped.Load())
	assert.True(t, w2.stopped.Load())
}

func TestWorkers_Empty(t *testing.T) {
	ws := &Workers{}

	ws.Run(context.Background())
	ws.Wait()
}

func TestRefreshTokenJanitor_PurgesEveryInterval(t *testing.T) {
	purger := &fakePurger{err: errors.New("store down")}
	w := NewRefreshTokenJanitor(purger, tick, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	// errors are logged and the janitor keeps going
	require.Eventually(t, func() bool { return purger.calls.Load() >= 2 }, waitFor, tick)

	cancel()
	<-done
}

func TestRateLimiterSweeper_UsesIdleTTL(t *testing.T) {
	sweeper := &fakeSweeper{}
	w := NewRateLimiterSweeper(sweeper, tick, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	require.Eventually(t, func() bool { return sweeper.calls.Load() >= 1 }, waitFor, tick)
	assert.Equal(t, int64(tick), sweeper.idle.Load())
}

func TestHealthProbe_ProbesImmediately(t *testing.T) {
	prober := &fakeProber{}
	w := NewHealthProbe(prober, time.Hour, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	require.Eventually(t, func() bool { return prober.calls.Load() == 1 }, waitFor, tick)
	assert.True(t, prober.hadDeadline.Load())
}

func TestPeriodic_NonPositiveIntervalReturns(t *testing.T) {
	prober := &fakeProber{}
	w := NewHealthProbe(prober, 0, logger.Nop())

	w.Run(context.Background())

	assert.Zero(t, prober.calls.Load())
}

func TestNewWorkers(t *testing.T) {
	cfg := config.Workers{
		RefreshTokenCleanupInterval: time.Minute,
		HealthCheckInterval:         time.Minute,
		RateLimiterIdleTTL:          time.Minute,
	}
	services := &service.Services{}
	httpHandler := myHTTP.NewHandler(services, config.StructuredConfig{}, logger.Nop())
	grpcHandler := myGRPC.NewHandler(services, logger.Nop())

	tests := []struct {
		name     string
		handlers *handler.Handlers
		want     int
	}{
		{name: "no handlers", handlers: nil, want: 1},
		{name: "empty handlers", handlers: &handler.Handlers{}, want: 1},
		{name: "http only", handlers: &handler.Handlers{HTTP: httpHandler}, want: 2},
		{name: "both transports", handlers: &handler.Handlers{HTTP: httpHandler, GRPC: grpcHandler}, want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := NewWorkers(services, tt.handlers, cfg, logger.Nop())
			assert.Len(t, ws.workers, tt.want)
		})
	}
}
