package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"autofinder/config"
	"autofinder/infoauto"
	"autofinder/scraper"
	"autofinder/scraper/autocosmos"
	"autofinder/scraper/carone"
	"autofinder/scraper/mercadolibre"
	"autofinder/server"
	"autofinder/services"
	"autofinder/utils"
)

func main() {
	cfg := config.Load()
	logger := utils.NewLogger(cfg.Debug)

	logger.Info("=== Used-car aggregation service starting ===")
	logger.Info("Config — concurrency: %d | timeout: %ds | retries: %d | items/source: %d",
		cfg.MaxConcurrency, cfg.SearchTimeoutSec, cfg.MaxRetries, cfg.MaxItemsPerPage)

	adapters := []scraper.Adapter{
		mercadolibre.New(cfg, logger),
		autocosmos.New(cfg.MaxItemsPerPage, logger),
		carone.New(cfg.MaxItemsPerPage, logger),
	}
	if cfg.InfoAutoUser != "" && cfg.InfoAutoPassword != "" {
		client := infoauto.NewClient(cfg.InfoAutoBaseURL, cfg.InfoAutoUser, cfg.InfoAutoPassword, logger)
		adapters = append(adapters, infoauto.NewAdapter(client))
		logger.Info("InfoAuto reference source enabled")
	}

	registry := scraper.NewRegistry(adapters...)
	aggregator := services.NewAggregator(registry, logger,
		cfg.MaxConcurrency, time.Duration(cfg.SearchTimeoutSec)*time.Second)
	filter := services.NewFilter(logger)

	srv := server.New(aggregator, filter, logger, cfg.AllowedOrigins)

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: srv.Routes(),
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpServer.ListenAndServe() }()
	logger.Info("Listening on %s", cfg.ListenAddr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("Shutting down on %s", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			logger.Error("Shutdown: %v", err)
		}
	case err := <-errCh:
		logger.Error("Server error: %v", err)
		os.Exit(1)
	}
}
