// Package server wires and runs the application's transport servers.
//
// It binds the HTTP API and the gRPC health endpoint, serves them until the
// caller's context is cancelled or one of them fails, and shuts every
// enabled transport down within [ShutdownTimeout].
package server
