package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"example.com/activitydirectory/internal/api"
	"example.com/activitydirectory/internal/config"
	"example.com/activitydirectory/internal/domain"
	"example.com/activitydirectory/internal/events"
	"example.com/activitydirectory/internal/observability"
	"example.com/activitydirectory/internal/registry"
	httptransport "example.com/activitydirectory/internal/transport/http"
	"example.com/activitydirectory/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	assets, err := web.Assets(cfg.StaticDir)
	if err != nil {
		logger.Error("failed to open static assets", slog.String("dir", cfg.StaticDir), slog.Any("error", err))
		os.Exit(1)
	}

	var publisher domain.EventPublisher = events.NopPublisher{}
	if cfg.EventsEnabled() {
		writer := events.NewKafkaWriter(cfg.KafkaBrokers(), cfg.KafkaTopic)
		defer writer.Close()
		publisher = events.NewKafkaPublisher(writer, cfg.KafkaTopic, cfg.PublishTimeout)
		logger.Info("roster events enabled", slog.Any("brokers", cfg.KafkaBrokers()), slog.String("topic", cfg.KafkaTopic))
	}

	repo := registry.NewInMemoryRegistry(domain.SeedActivities())
	service := domain.NewService(repo, domain.WithPublisher(publisher), domain.WithLogger(logger))

	handler := api.NewHandler(service, api.WithAssets(assets))
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle("/metrics", observability.Handler())

	server := httptransport.NewServer(httptransport.ServerConfig{
		Address:      cfg.HTTPAddress,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}, httptransport.Chain(mux,
		httptransport.RequestLogger(logger),
		observability.InstrumentHandler,
		httptransport.CORS(cfg.CORSAllowedOrigin),
	))

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("activity-directory listening", slog.String("address", cfg.HTTPAddress))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	<-shutdownCh

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
	}
}
