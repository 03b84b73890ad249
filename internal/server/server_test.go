package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/MKhiriev/go-chat-profiles/internal/config"
	"github.com/MKhiriev/go-chat-profiles/internal/handler"
	"github.com/MKhiriev/go-chat-profiles/internal/logger"
	"github.com/MKhiriev/go-chat-profiles/internal/service"
	"github.com/MKhiriev/go-chat-profiles/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const loopback = "127.0.0.1:0"

func newTestHandlers(t *testing.T, srv config.Server) *handler.Handlers {
	t.Helper()

	cfg := config.StructuredConfig{
		App: config.App{
			TokenSignKey:         "test-sign-key",
			AccessTokenDuration:  time.Minute,
			RefreshTokenDuration: time.Hour,
			Version:              "0.0.1",
		},
		Server:  srv,
		Storage: config.Storage{Driver: config.DriverMemory},
	}

	storages, err := store.NewStorages(context.Background(), cfg.Storage, logger.Nop())
	require.NoError(t, err)
	services, err := service.NewServices(storages, cfg, logger.Nop())
	require.NoError(t, err)
	handlers, err := handler.NewHandlers(services, cfg, logger.Nop())
	require.NoError(t, err)
	return handlers
}

func TestNewServer_NoTransports(t *testing.T) {
	_, err := NewServer(&handler.Handlers{}, config.Server{}, logger.Nop())
	assert.ErrorIs(t, err, errNoServersAreCreated)
}

func TestNewServer_OnlyConfiguredTransports(t *testing.T) {
	srvCfg := config.Server{HTTPAddress: loopback}
	s, err := NewServer(newTestHandlers(t, srvCfg), srvCfg, logger.Nop())
	require.NoError(t, err)

	impl := s.(*server)
	assert.NotNil(t, impl.httpServer)
	assert.Nil(t, impl.gRPCServer)
	assert.Len(t, impl.transports(), 1)
}

func TestHTTPServer_ServesHealth(t *testing.T) {
	srvCfg := config.Server{HTTPAddress: loopback}
	handlers := newTestHandlers(t, srvCfg)

	hs := newHTTPServer(handlers.HTTP.Init(), srvCfg, logger.Nop())
	require.NoError(t, hs.listen())

	served := make(chan error, 1)
	go func() { served <- hs.serve() }()

	resp, err := http.Get(fmt.Sprintf("http://%s/health", hs.listener.Addr()))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"status":"ok"`)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	hs.shutdown(ctx)
	assert.NoError(t, <-served, "ErrServerClosed is not reported")
}

func TestGRPCServer_HealthFollowsProbe(t *testing.T) {
	srvCfg := config.Server{GRPCAddress: loopback}
	handlers := newTestHandlers(t, srvCfg)

	gs := newGRPCServer(handlers.GRPC, srvCfg, logger.Nop())
	require.NoError(t, gs.listen())
	go func() { _ = gs.serve() }()

	conn, err := grpc.NewClient(gs.gRPCNetListener.Addr().String(),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()
	client := healthpb.NewHealthClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())

	handlers.GRPC.Probe(ctx)

	resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())

	gs.shutdown(ctx)
}

func TestRunServer_StopsOnContextCancel(t *testing.T) {
	srvCfg := config.Server{HTTPAddress: loopback, GRPCAddress: loopback}
	s, err := NewServer(newTestHandlers(t, srvCfg), srvCfg, logger.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.RunServer(ctx) }()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(ShutdownTimeout):
		t.Fatal("RunServer did not return after cancel")
	}
}

func TestRunServer_ListenFailure(t *testing.T) {
	taken, err := net.Listen("tcp", loopback)
	require.NoError(t, err)
	defer taken.Close()

	srvCfg := config.Server{HTTPAddress: taken.Addr().String()}
	s, err := NewServer(newTestHandlers(t, srvCfg), srvCfg, logger.Nop())
	require.NoError(t, err)

	err = s.RunServer(context.Background())
	assert.ErrorIs(t, err, errListen)
}
