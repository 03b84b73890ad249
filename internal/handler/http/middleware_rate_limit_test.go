package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func serveLimited(rl *RateLimiter, remoteAddr string) *httptest.ResponseRecorder {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	req := injectNopLogger(httptest.NewRequest(http.MethodPost, "/profiles/login", nil))
	req.RemoteAddr = remoteAddr

	rr := httptest.NewRecorder()
	rl.Handler(next).ServeHTTP(rr, req)
	return rr
}

func TestRateLimiter_PerClient(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.Equal(t, http.StatusOK, serveLimited(rl, "10.0.0.1:1000").Code)
	assert.Equal(t, http.StatusOK, serveLimited(rl, "10.0.0.1:1001").Code)

	rr := serveLimited(rl, "10.0.0.1:1002")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "1", rr.Header().Get("Retry-After"))

	// another client has its own bucket
	assert.Equal(t, http.StatusOK, serveLimited(rl, "10.0.0.2:1000").Code)

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusOK, serveLimited(rl, "10.0.0.1:1003").Code)
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	for range 10 {
		assert.Equal(t, http.StatusOK, serveLimited(rl, "10.0.0.1:1000").Code)
	}
	assert.Zero(t, rl.Len())
}

func TestRateLimiter_Sweep(t *testing.T) {
	rl := NewRateLimiter(10, 10)
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	serveLimited(rl, "10.0.0.1:1")
	now = now.Add(time.Minute)
	serveLimited(rl, "10.0.0.2:1")
	assert.Equal(t, 2, rl.Len())

	assert.Equal(t, 1, rl.Sweep(30*time.Second))
	assert.Equal(t, 1, rl.Len())
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:5555"
	assert.Equal(t, "192.0.2.1", clientIP(req))

	req.RemoteAddr = "no-port"
	assert.Equal(t, "no-port", clientIP(req))
}
