package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-chat-profiles/internal/config"
	"github.com/MKhiriev/go-chat-profiles/internal/logger"
	"github.com/MKhiriev/go-chat-profiles/internal/store"
)

type appInfoService struct {
	appVersion string
	store      store.RecordStore

	logger *logger.Logger
}

func NewAppInfoService(rs store.RecordStore, cfg config.App, logger *logger.Logger) (AppInfoService, error) {
	if cfg.Version == "" {
		return nil, ErrVersionIsNotSpecified
	}

	return &appInfoService{
		appVersion: cfg.Version,
		store:      rs,
		logger:     logger,
	}, nil
}

func (s *appInfoService) GetAppVersion(ctx context.Context) string {
	return s.appVersion
}

// Ping reports whether the record store answers.
func (s *appInfoService) Ping(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*appInfoService.Ping").Msg("record store is unreachable")
		return fmt.Errorf("%w: %w", store.ErrStoreUnavailable, err)
	}
	return nil
}
