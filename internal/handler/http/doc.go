// Package http implements the REST surface of the chat profiles backend.
//
// It exposes route wiring, request handlers, and middleware. Authentication,
// request tracing, access logging, metrics, rate limiting and response
// compression are handled in this package before requests are delegated to
// the service layer.
package http
