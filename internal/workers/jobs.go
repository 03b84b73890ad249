package workers

import (
	"context"
	"time"

	"github.com/MKhiriev/go-chat-profiles/internal/logger"
)

type refreshTokenPurger interface {
	PurgeExpiredRefreshTokens(ctx context.Context) (int, error)
}

type limiterSweeper interface {
	Sweep(idle time.Duration) int
}

type healthProber interface {
	Probe(ctx context.Context)
}

// NewRefreshTokenJanitor deletes expired refresh tokens every interval.
func NewRefreshTokenJanitor(purger refreshTokenPurger, interval time.Duration, log *logger.Logger) Worker {
	return newPeriodic("refresh_token_janitor", interval, func(ctx context.Context, log *logger.Logger) {
		removed, err := purger.PurgeExpiredRefreshTokens(ctx)
		if err != nil {
			log.Err(err).Msg("purge failed")
			return
		}
		if removed > 0 {
			log.Debug().Int("removed", removed).Msg("expired refresh tokens purged")
		}
	}, log)
}

// NewRateLimiterSweeper forgets clients idle for longer than idle. The sweep
// runs at the same interval.
func NewRateLimiterSweeper(limiter limiterSweeper, idle time.Duration, log *logger.Logger) Worker {
	return newPeriodic("rate_limiter_sweeper", idle, func(_ context.Context, log *logger.Logger) {
		if removed := limiter.Sweep(idle); removed > 0 {
			log.Debug().Int("removed", removed).Msg("idle rate limiter buckets swept")
		}
	}, log)
}

// NewHealthProbe refreshes the gRPC health status on start and then every
// interval.
func NewHealthProbe(prober healthProber, interval time.Duration, log *logger.Logger) Worker {
	p := newPeriodic("health_probe", interval, func(ctx context.Context, _ *logger.Logger) {
		probeCtx, cancel := context.WithTimeout(ctx, interval)
		defer cancel()
		prober.Probe(probeCtx)
	}, log)
	p.immediate = true
	return p
}
