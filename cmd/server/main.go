package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/go-chat-profiles/internal/config"
	"github.com/MKhiriev/go-chat-profiles/internal/handler"
	"github.com/MKhiriev/go-chat-profiles/internal/logger"
	"github.com/MKhiriev/go-chat-profiles/internal/server"
	"github.com/MKhiriev/go-chat-profiles/internal/service"
	"github.com/MKhiriev/go-chat-profiles/internal/store"
	"github.com/MKhiriev/go-chat-profiles/internal/workers"
	"github.com/MKhiriev/go-chat-profiles/models"
)

const role = "chat-profiles-server"

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	build := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)
	fmt.Print(build)

	log := logger.NewLogger(role)
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	configured, err := logger.New(role, logger.Options{
		Level:   cfg.App.LogLevel,
		Console: cfg.App.LogFormat == config.LogFormatConsole,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("error creating logger")
	}
	log = configured

	if cfg.App.Version == "" && build.HasVersion() {
		cfg.App.Version = build.BuildVersion()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	storages, err := store.NewStorages(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storages")
	}
	defer func() {
		if err := storages.Close(); err != nil {
			log.Err(err).Msg("error closing storages")
		}
	}()

	services, err := service.NewServices(storages, *cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating services")
	}

	handlers, err := handler.NewHandlers(services, *cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating handlers")
	}

	srv, err := server.NewServer(handlers, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	bg := workers.NewWorkers(services, handlers, cfg.Workers, log)
	workersCtx, stopWorkers := context.WithCancel(ctx)
	bg.Run(workersCtx)

	runErr := srv.RunServer(ctx)

	stopWorkers()
	bg.Wait()

	if runErr != nil {
		log.Err(runErr).Msg("server stopped with error")
		return
	}
	log.Info().Msg("server stopped")
}
