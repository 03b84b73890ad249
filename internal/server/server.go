package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MKhiriev/go-chat-profiles/internal/config"
	"github.com/MKhiriev/go-chat-profiles/internal/handler"
	"github.com/MKhiriev/go-chat-profiles/internal/logger"
)

// ShutdownTimeout bounds how long RunServer waits for in-flight requests
// once it starts shutting down.
const ShutdownTimeout = 10 * time.Second

type server struct {
	httpServer *httpServer
	gRPCServer *grpcServer

	logger *logger.Logger
}

func NewServer(handlers *handler.Handlers, cfg config.Server, logger *logger.Logger) (Server, error) {
	logger.Info().Msg("creating new server...")
	servers := new(server)

	if cfg.HTTPAddress != "" && handlers.HTTP != nil {
		servers.httpServer = newHTTPServer(handlers.HTTP.Init(), cfg, logger)
	}
	if cfg.GRPCAddress != "" && handlers.GRPC != nil {
		servers.gRPCServer = newGRPCServer(handlers.GRPC, cfg, logger)
	}

	if servers.httpServer == nil && servers.gRPCServer == nil {
		return nil, errNoServersAreCreated
	}

	servers.logger = logger

	return servers, nil
}

func (s *server) transports() []transport {
	var ts []transport
	if s.httpServer != nil {
		ts = append(ts, s.httpServer)
	}
	if s.gRPCServer != nil {
		ts = append(ts, s.gRPCServer)
	}
	return ts
}

func (s *server) RunServer(ctx context.Context) error {
	transports := s.transports()
	if len(transports) == 0 {
		return errNoServersAreCreated
	}

	// bind everything first so a taken port fails fast
	for i, t := range transports {
		if err := t.listen(); err != nil {
			for _, started := range transports[:i] {
				started.shutdown(context.Background())
			}
			return fmt.Errorf("%w: %s: %w", errListen, t.name(), err)
		}
	}

	errs := make(chan error, len(transports))
	var wg sync.WaitGroup
	for _, t := range transports {
		s.logger.Info().Msgf("Launching %s server", t.name())
		wg.Go(func() {
			if err := t.serve(); err != nil {
				errs <- fmt.Errorf("%s server: %w", t.name(), err)
			}
		})
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errs:
		s.logger.Err(runErr).Msg("server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
	defer cancel()
	s.Shutdown(shutdownCtx)

	wg.Wait()
	s.logger.Info().Msg("server Shutdown gracefully")

	return runErr
}

func (s *server) Shutdown(ctx context.Context) {
	for _, t := range s.transports() {
		t.shutdown(ctx)
	}
}
