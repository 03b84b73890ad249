package http

import (
	"time"

	"github.com/MKhiriev/go-chat-profiles/internal/config"
	"github.com/MKhiriev/go-chat-profiles/internal/logger"
	"github.com/MKhiriev/go-chat-profiles/internal/service"
)

type Handler struct {
	services *service.Services

	secureCookies  bool
	requestTimeout time.Duration

	limiter *RateLimiter
	metrics *Metrics

	logger *logger.Logger
}

func NewHandler(services *service.Services, cfg config.StructuredConfig, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services:       services,
		secureCookies:  cfg.App.SecureCookies,
		requestTimeout: cfg.Server.RequestTimeout,
		limiter:        NewRateLimiter(cfg.Server.AuthRateLimit, cfg.Server.AuthRateBurst),
		metrics:        NewMetrics(),
		logger:         logger,
	}
}

// RateLimiter returns the limiter guarding the credential endpoints.
func (h *Handler) RateLimiter() *RateLimiter {
	return h.limiter
}

// Metrics returns the collectors served on /metrics.
func (h *Handler) Metrics() *Metrics {
	return h.metrics
}
