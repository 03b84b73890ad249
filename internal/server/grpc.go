package server

import (
	"context"
	"net"

	"github.com/MKhiriev/go-chat-profiles/internal/config"
	myGRPC "github.com/MKhiriev/go-chat-profiles/internal/handler/grpc"
	"github.com/MKhiriev/go-chat-profiles/internal/logger"

	"google.golang.org/grpc"
)

type grpcServer struct {
	handler *myGRPC.Handler
	address string

	server          *grpc.Server
	gRPCNetListener net.Listener

	logger *logger.Logger
}

func newGRPCServer(handler *myGRPC.Handler, cfg config.Server, logger *logger.Logger) *grpcServer {
	server := grpc.NewServer()
	handler.Register(server)

	return &grpcServer{
		handler: handler,
		address: cfg.GRPCAddress,
		server:  server,
		logger:  logger,
	}
}

func (g *grpcServer) name() string { return "gRPC" }

func (g *grpcServer) listen() error {
	listener, err := net.Listen("tcp", g.address)
	if err != nil {
		return err
	}
	g.gRPCNetListener = listener
	g.logger.Info().Str("address", listener.Addr().String()).Msg("gRPC server listening")
	return nil
}

func (g *grpcServer) serve() error {
	return g.server.Serve(g.gRPCNetListener)
}

// shutdown waits for in-flight RPCs until ctx expires, then stops hard.
func (g *grpcServer) shutdown(ctx context.Context) {
	g.logger.Info().Msg("gRPC server Shutdown")
	g.handler.Shutdown()

	stopped := make(chan struct{})
	go func() {
		g.server.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-ctx.Done():
		g.server.Stop()
	}
	if g.gRPCNetListener != nil {
		_ = g.gRPCNetListener.Close()
	}
}
