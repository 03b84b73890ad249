// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/MKhiriev/go-chat-profiles/internal/utils"
	"github.com/go-chi/chi/v5"
)

// ErrMethodNotAllowed is the body of 405 responses.
var ErrMethodNotAllowed = errors.New("method not allowed")

// ErrRouteNotFound is the body of 404 responses for unknown paths.
var ErrRouteNotFound = errors.New("route not found")

// routeMethods are probed when building the Allow header.
var routeMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
}

// CheckHTTPMethod returns an [http.HandlerFunc] that is intended to be
// registered as the router's MethodNotAllowed handler via
// [chi.Mux.MethodNotAllowed].
//
// It answers 405 Method Not Allowed with a JSON body and an Allow header
// listing every method the router serves for the requested path. Matching
// goes through [chi.Mux.Match], so parameterised and mounted routes are
// expanded the same way as during normal dispatch.
//
// Register it before any sub-router is mounted so chi propagates it:
//
//	router := chi.NewRouter()
//	router.MethodNotAllowed(CheckHTTPMethod(router))
//	// ... register routes ...
func CheckHTTPMethod(router *chi.Mux) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		allowed := allowedMethods(router, r.URL.Path)
		if len(allowed) > 0 {
			w.Header().Set("Allow", strings.Join(allowed, ", "))
		}
		utils.WriteJSON(w, errorBody(ErrMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

func allowedMethods(router *chi.Mux, path string) []string {
	var allowed []string
	for _, method := range routeMethods {
		if router.Match(chi.NewRouteContext(), method, path) {
			allowed = append(allowed, method)
		}
	}
	return allowed
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	utils.WriteJSON(w, errorBody(ErrRouteNotFound), http.StatusNotFound)
}
