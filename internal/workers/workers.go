package workers

import (
	"context"
	"sync"

	"github.com/MKhiriev/go-chat-profiles/internal/config"
	"github.com/MKhiriev/go-chat-profiles/internal/handler"
	"github.com/MKhiriev/go-chat-profiles/internal/logger"
	"github.com/MKhiriev/go-chat-profiles/internal/service"
)

type Workers struct {
	workers []Worker
	wg      sync.WaitGroup
}

// NewWorkers builds the jobs the running configuration needs: the refresh
// token janitor always, the rate limiter sweeper with the HTTP API and the
// health probe with the gRPC endpoint.
func NewWorkers(services *service.Services, handlers *handler.Handlers, cfg config.Workers, logger *logger.Logger) *Workers {
	w := &Workers{}

	w.workers = append(w.workers,
		NewRefreshTokenJanitor(services.AuthService, cfg.RefreshTokenCleanupInterval, logger))

	if handlers != nil && handlers.HTTP != nil {
		w.workers = append(w.workers,
			NewRateLimiterSweeper(handlers.HTTP.RateLimiter(), cfg.RateLimiterIdleTTL, logger))
	}
	if handlers != nil && handlers.GRPC != nil {
		w.workers = append(w.workers,
			NewHealthProbe(handlers.GRPC, cfg.HealthCheckInterval, logger))
	}

	logger.Info().Int("count", len(w.workers)).Msg("workers created")
	return w
}

// Run starts every worker in its own goroutine and returns immediately.
func (w *Workers) Run(ctx context.Context) {
	for _, worker := range w.workers {
		w.wg.Go(func() {
			worker.Run(ctx)
		})
	}
}

// Wait blocks until every started worker has returned.
func (w *Workers) Wait() {
	w.wg.Wait()
}
