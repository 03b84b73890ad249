// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import "errors"

// Sentinel errors used by the authentication middleware when parsing the
// "Authorization" HTTP header. Callers can match against them with [errors.Is].
var (
	// ErrEmptyAuthorizationHeader is returned by the auth middleware when the
	// incoming request does not include an "Authorization" header at all.
	ErrEmptyAuthorizationHeader = errors.New("empty `Authorization` header")

	// ErrInvalidAuthorizationHeader is returned when the "Authorization"
	// header is not of the form "JWT <token>".
	ErrInvalidAuthorizationHeader = errors.New("invalid `Authorization` header")

	// ErrEmptyToken is returned when the "Authorization" header contains the
	// expected scheme prefix but the token value itself is an empty string.
	ErrEmptyToken = errors.New("empty token in `Authorization` header")
)

var (
	// ErrMissingRefreshCookie is returned by refresh and logout when the
	// refresh token cookie is absent.
	ErrMissingRefreshCookie = errors.New("missing refresh token cookie")

	// ErrNoCaller is returned when an authenticated route runs without the
	// identity the auth middleware stores in the context.
	ErrNoCaller = errors.New("no authenticated profile in request context")

	// ErrRateLimited is written with 429 by the rate limiter.
	ErrRateLimited = errors.New("too many requests")

	// ErrInvalidJSON wraps request body decoding failures.
	ErrInvalidJSON = errors.New("invalid JSON body")

	// ErrInvalidGzipBody is returned for a gzip Content-Encoding whose body
	// is not a gzip stream.
	ErrInvalidGzipBody = errors.New("invalid gzip body")
)
