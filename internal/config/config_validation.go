// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"time"
)

// Default values applied by [StructuredConfig.applyDefaults].
const (
	DefaultTokenIssuer                 = "chat-profiles"
	DefaultAccessTokenDuration         = 15 * time.Minute
	DefaultRefreshTokenDuration        = 30 * 24 * time.Hour
	DefaultHTTPAddress                 = "localhost:8080"
	DefaultRequestTimeout              = 30 * time.Second
	DefaultRESTRequestTimeout          = 10 * time.Second
	DefaultAuthRateLimit               = 5
	DefaultAuthRateBurst               = 10
	DefaultRefreshTokenCleanupInterval = time.Hour
	DefaultHealthCheckInterval         = 15 * time.Second
	DefaultRateLimiterIdleTTL          = 10 * time.Minute
)

// applyDefaults fills every zero-valued optional setting.
func (cfg *StructuredConfig) applyDefaults() {
	if cfg.App.TokenIssuer == "" {
		cfg.App.TokenIssuer = DefaultTokenIssuer
	}
	if cfg.App.AccessTokenDuration == 0 {
		cfg.App.AccessTokenDuration = DefaultAccessTokenDuration
	}
	if cfg.App.RefreshTokenDuration == 0 {
		cfg.App.RefreshTokenDuration = DefaultRefreshTokenDuration
	}
	if cfg.App.RefreshTokenHashKey == "" {
		cfg.App.RefreshTokenHashKey = cfg.App.TokenSignKey
	}

	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = DriverPostgres
	}
	if cfg.Storage.REST.RequestTimeout == 0 {
		cfg.Storage.REST.RequestTimeout = DefaultRESTRequestTimeout
	}

	if cfg.Server.HTTPAddress == "" {
		cfg.Server.HTTPAddress = DefaultHTTPAddress
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Server.AuthRateLimit == 0 {
		cfg.Server.AuthRateLimit = DefaultAuthRateLimit
	}
	if cfg.Server.AuthRateBurst == 0 {
		cfg.Server.AuthRateBurst = DefaultAuthRateBurst
	}

	if cfg.Workers.RefreshTokenCleanupInterval == 0 {
		cfg.Workers.RefreshTokenCleanupInterval = DefaultRefreshTokenCleanupInterval
	}
	if cfg.Workers.HealthCheckInterval == 0 {
		cfg.Workers.HealthCheckInterval = DefaultHealthCheckInterval
	}
	if cfg.Workers.RateLimiterIdleTTL == 0 {
		cfg.Workers.RateLimiterIdleTTL = DefaultRateLimiterIdleTTL
	}
}

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup.
//
// Returns nil if the configuration is valid, or a descriptive error otherwise.
func (cfg *StructuredConfig) validate() error {
	if cfg.App.TokenSignKey == "" {
		return fmt.Errorf("%w: token sign key is required", ErrInvalidAppConfigs)
	}
	if cfg.App.AccessTokenDuration < 0 || cfg.App.RefreshTokenDuration < 0 {
		return fmt.Errorf("%w: token durations must be positive", ErrInvalidAppConfigs)
	}
	switch cfg.App.LogFormat {
	case "", LogFormatJSON, LogFormatConsole:
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidAppConfigs, cfg.App.LogFormat)
	}

	switch cfg.Storage.Driver {
	case DriverPostgres, DriverSQLite:
		if cfg.Storage.DB.DSN == "" {
			return fmt.Errorf("%w: %s driver needs a DSN", ErrInvalidStorageConfigs, cfg.Storage.Driver)
		}
	case DriverREST:
		if cfg.Storage.REST.URL == "" {
			return fmt.Errorf("%w: rest driver needs a URL", ErrInvalidStorageConfigs)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("%w: unknown driver %q", ErrInvalidStorageConfigs, cfg.Storage.Driver)
	}

	if cfg.Server.RequestTimeout < 0 || cfg.Server.AuthRateLimit < 0 || cfg.Server.AuthRateBurst < 0 {
		return fmt.Errorf("%w: timeouts and rate limits must be positive", ErrInvalidServerConfigs)
	}

	if cfg.Workers.RefreshTokenCleanupInterval < 0 || cfg.Workers.HealthCheckInterval < 0 || cfg.Workers.RateLimiterIdleTTL < 0 {
		return fmt.Errorf("%w: worker intervals must be positive", ErrInvalidWorkerConfigs)
	}

	return nil
}
