package server

import "context"

// Server defines the common lifecycle contract for transport servers managed
// by this package.
type Server interface {
	// RunServer binds every configured transport and serves until ctx is
	// cancelled or a transport fails, then shuts all of them down.
	RunServer(ctx context.Context) error

	// Shutdown gracefully stops the server and frees associated resources.
	// Pending requests are abandoned when ctx expires.
	Shutdown(ctx context.Context)
}

// transport is one listener managed by the server.
type transport interface {
	name() string
	listen() error
	serve() error
	shutdown(ctx context.Context)
}
