// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"time"

	"github.com/MKhiriev/go-chat-profiles/internal/logger"
)

// periodic calls tick every interval until ctx is cancelled. With
// immediate set, the first tick runs before the first wait.
type periodic struct {
	interval  time.Duration
	immediate bool
	tick      func(ctx context.Context, log *logger.Logger)

	logger *logger.Logger
}

func newPeriodic(name string, interval time.Duration, tick func(context.Context, *logger.Logger), log *logger.Logger) *periodic {
	return &periodic{
		interval: interval,
		tick:     tick,
		logger:   log.WithComponent(name),
	}
}

func (p *periodic) Run(ctx context.Context) {
	if p.interval <= 0 {
		p.logger.Warn().Msg("worker disabled: non-positive interval")
		return
	}

	p.logger.Info().Dur("interval", p.interval).Msg("worker started")
	defer p.logger.Info().Msg("worker stopped")

	if p.immediate {
		p.tick(ctx, p.logger)
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx, p.logger)
		}
	}
}
