package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/divergentwx/outage-risk-service/internal/adapter/census"
	"github.com/divergentwx/outage-risk-service/internal/adapter/httpapi"
	kafkaadapter "github.com/divergentwx/outage-risk-service/internal/adapter/kafka"
	"github.com/divergentwx/outage-risk-service/internal/adapter/nws"
	"github.com/divergentwx/outage-risk-service/internal/catalog"
	"github.com/divergentwx/outage-risk-service/internal/config"
	"github.com/divergentwx/outage-risk-service/internal/observability"
	"github.com/divergentwx/outage-risk-service/internal/risk"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	cat, err := catalog.LoadCenPop(cfg.CountyFile)
	if err != nil {
		logger.Error("failed to load county catalog", "file", cfg.CountyFile, "error", err)
		os.Exit(1)
	}
	metrics.CatalogCounties.Set(float64(cat.Len()))
	logger.Info("county catalog loaded", "file", cfg.CountyFile, "counties", cat.Len())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Overlay newer population estimates (feature-flagged via PEP_ENABLED).
	// A PEP failure is logged and skipped: the CenPop base populations are
	// good enough to serve with.
	if cfg.PEPEnabled {
		overlayPopulations(ctx, cfg, cat, metrics, logger)
	} else {
		logger.Info("population overlay disabled")
	}

	forecaster := nws.NewClient(cfg.NWSBaseURL, cfg.NWSUserAgent, cfg.NWSTimeout, metrics, logger)
	collector := risk.NewCollector(forecaster, cfg.FetchConcurrency, logger, metrics)
	cache := risk.NewCache(cfg.CacheTTL, cfg.CacheMaxEntries, nil)

	// Publishing is optional (feature-flagged via KAFKA_ENABLED).
	var publisher risk.Publisher
	var kafkaPublisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		kafkaPublisher = kafkaadapter.NewPublisher(cfg, logger)
		publisher = kafkaPublisher
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaRiskTopic)
	} else {
		logger.Info("kafka publishing disabled")
	}

	aggregator := risk.NewAggregator(cat, collector, cache, publisher, cfg.MaxSample, logger, metrics)
	srv := httpapi.NewServer(cfg.HTTPAddr, aggregator, aggregator, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

func overlayPopulations(ctx context.Context, cfg *config.Config, cat *catalog.Catalog, metrics *observability.Metrics, logger *slog.Logger) {
	client := census.NewClient(cfg.PEPBaseURL, cfg.PEPTimeout, logger)
	pops, err := client.FetchPopulations(ctx)
	if err != nil {
		logger.Warn("population overlay failed, serving base populations", "error", err)
		return
	}

	applied := 0
	for fips, pop := range pops {
		if cat.SetPopulation(fips, pop) {
			applied++
		}
	}
	metrics.PopulationsOverlaid.Set(float64(applied))
	logger.Info("population overlay applied", "fetched", len(pops), "applied", applied)
}
