package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MKhiriev/go-chat-profiles/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoutedHandler() http.Handler {
	return newMockedHandler(&service.Services{
		AuthService:    acceptingAuth(),
		AppInfoService: &mockAppInfoService{version: "test-version"},
	}).Init()
}

func serve(router http.Handler, method, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(method, path, nil))
	return rr
}

// serveAuthed sends a token the accepting auth mock lets through.
func serveAuthed(router http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "JWT test")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestInit_RegistersRoutes(t *testing.T) {
	router := newMockedHandler(&service.Services{}).Init()

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/profiles"},
		{http.MethodPost, "/profiles/login"},
		{http.MethodPost, "/profiles/refresh"},
		{http.MethodPost, "/profiles/logout"},
		{http.MethodGet, "/profiles"},
		{http.MethodGet, "/profiles/me"},
		{http.MethodGet, "/profiles/p1"},
		{http.MethodPut, "/profiles/p1"},
		{http.MethodPatch, "/profiles/p1"},
		{http.MethodDelete, "/profiles/p1"},
		{http.MethodPut, "/profiles/p1/categories/k1"},
		{http.MethodDelete, "/profiles/p1/categories/k1"},
		{http.MethodPost, "/categories"},
		{http.MethodGet, "/categories"},
		{http.MethodPatch, "/categories/k1"},
		{http.MethodPut, "/categories/k1/conversations/c1"},
		{http.MethodDelete, "/categories/k1/conversations/c1"},
		{http.MethodPost, "/conversations"},
		{http.MethodDelete, "/conversations/c1"},
		{http.MethodPost, "/messages"},
		{http.MethodPost, "/messages/m1/delivered"},
		{http.MethodGet, "/health"},
		{http.MethodGet, "/metrics"},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			assert.True(t, router.Match(chi.NewRouteContext(), rt.method, rt.path))
		})
	}
}

func TestInit_ProtectedRoutesRequireAuth(t *testing.T) {
	router := newRoutedHandler()

	for _, path := range []string{"/profiles", "/profiles/me", "/categories", "/conversations", "/messages"} {
		rr := serve(router, http.MethodGet, path)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
	}
}

func TestInit_UnknownRouteReturns404(t *testing.T) {
	rr := serve(newRoutedHandler(), http.MethodGet, "/nope")

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"route not found"}`, rr.Body.String())
}

func TestInit_WrongMethodReturns405WithAllow(t *testing.T) {
	router := newRoutedHandler()

	tests := []struct {
		method    string
		path      string
		wantAllow string
	}{
		{http.MethodDelete, "/health", "GET"},
		{http.MethodPost, "/messages/m1", "GET, PUT, PATCH, DELETE"},
		{http.MethodPatch, "/profiles", "GET, POST"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rr := serveAuthed(router, tt.method, tt.path)
			assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
			assert.Equal(t, tt.wantAllow, rr.Header().Get("Allow"))
			assert.JSONEq(t, `{"error":"method not allowed"}`, rr.Body.String())
		})
	}
}

func TestInit_TraceIDHeader(t *testing.T) {
	router := newRoutedHandler()

	rr := serve(router, http.MethodGet, "/health")
	assert.NotEmpty(t, rr.Header().Get(traceIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(traceIDHeader, "trace-123")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, "trace-123", rr.Header().Get(traceIDHeader))
}

func TestInit_MetricsEndpoint(t *testing.T) {
	router := newRoutedHandler()

	require.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/health").Code)
	serve(router, http.MethodGet, "/profiles/me")

	rr := serve(router, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	assert.Contains(t, body, `chat_profiles_http_requests_total{method="GET",route="/health",status="200"} 1`)
	assert.Contains(t, body, `chat_profiles_http_requests_total{method="GET",route="/profiles/me",status="401"} 1`)
	assert.False(t, strings.Contains(body, `route="/metrics"`))
}
