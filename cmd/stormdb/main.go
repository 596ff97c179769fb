package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/storm-track-db/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/storm-track-db/internal/adapter/kafka"
	"github.com/couchcryptid/storm-track-db/internal/adapter/postgres"
	"github.com/couchcryptid/storm-track-db/internal/adapter/spccsv"
	"github.com/couchcryptid/storm-track-db/internal/config"
	"github.com/couchcryptid/storm-track-db/internal/domain"
	"github.com/couchcryptid/storm-track-db/internal/fips"
	"github.com/couchcryptid/storm-track-db/internal/observability"
	"github.com/couchcryptid/storm-track-db/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// County names are optional; searches by code still work without them.
	var counties domain.CountyResolver
	if table, err := fips.Load(cfg.FIPSCSV); err != nil {
		logger.Warn("county table unavailable, county filters disabled", "path", cfg.FIPSCSV, "error", err)
	} else {
		counties = fips.NewCachedResolver(table, cfg.FIPSCacheSize, metrics.CountyLookups)
		logger.Info("county table loaded", "counties", table.Len(), "cache_size", cfg.FIPSCacheSize)
	}

	files := spccsv.Files{}
	var hazards []domain.Hazard
	for _, h := range []domain.Hazard{domain.HazardTornado, domain.HazardWind, domain.HazardHail} {
		if path := cfg.Sources()[h]; path != "" {
			files[h] = path
			hazards = append(hazards, h)
		}
	}

	var sinks []pipeline.Sink
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		sinks = append(sinks, writer)
		logger.Info("kafka sink enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSinkTopic)
	}
	var store *postgres.Store
	if cfg.DatabaseURL != "" {
		store, err = postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		sinks = append(sinks, store)
		logger.Info("postgres sink enabled")
	}

	p := pipeline.New(files, sinks, pipeline.Options{
		Hazards:   hazards,
		Totals:    cfg.TrackTotals,
		BatchSize: cfg.BatchSize,
	}, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, p, counties, metrics, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Load the databases once; the server keeps answering searches afterwards.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if store != nil {
		store.Close()
	}

	logger.Info("shutdown complete")
}
