package main

import (
	"context"
	"fmt"

	"github.com/MKhiriev/tally-sync/internal/adapter"
	"github.com/MKhiriev/tally-sync/internal/client"
	"github.com/MKhiriev/tally-sync/internal/config"
	"github.com/MKhiriev/tally-sync/internal/handler"
	"github.com/MKhiriev/tally-sync/internal/logger"
	"github.com/MKhiriev/tally-sync/internal/metrics"
	"github.com/MKhiriev/tally-sync/internal/server"
	"github.com/MKhiriev/tally-sync/internal/service"
	"github.com/MKhiriev/tally-sync/internal/store"
	"github.com/MKhiriev/tally-sync/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()
	ctx := context.Background()

	cfg, err := config.GetStructuredConfig()
	if err != nil {
		logger.NewLogger("tally-sync").Fatal().Err(err).Msg("error getting configs")
	}

	log := logger.NewFileLogger("tally-sync", cfg.Log.Path, cfg.Log.Level)
	redacted := *cfg
	redacted.Auth.Token = "***"
	log.Debug().Any("config", redacted).Msg("received configs")

	collector := metrics.NewCollector("")

	serverAdapter, err := adapter.NewHTTPServerAdapter(cfg.Adapter, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create server adapter")
	}

	storages, err := store.NewClientStorages(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create local storage")
	}
	defer storages.Close()

	auth, err := service.NewTokenAuthProvider(cfg.Auth.Token)
	if err != nil {
		log.Fatal().Err(err).Msg("read session token")
	}

	session, err := service.NewSession(cfg, service.SessionDeps{
		Storages: storages,
		Adapter:  serverAdapter,
		Auth:     auth,
		Logger:   log,
		Metrics:  collector,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("create session")
	}

	var debugServer server.Server
	buildInfo := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)
	handlers, err := handler.NewHandlers(session, buildInfo, collector.Handler(), cfg.Debug, log)
	switch {
	case handler.IsDisabled(err):
		log.Info().Msg("debug listener disabled")
	case err != nil:
		log.Fatal().Err(err).Msg("create handlers")
	default:
		if debugServer, err = server.NewServer(handlers, cfg.Debug, log); err != nil {
			log.Fatal().Err(err).Msg("create debug server")
		}
	}

	app, err := client.NewApp(session, debugServer, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init app error")
	}

	if err = app.Run(ctx); err != nil {
		log.Error().Err(err).Msg("sync engine stopped with error")
	}
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
