package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/covid-snapshot-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/covid-snapshot-etl/internal/adapter/kafka"
	"github.com/couchcryptid/covid-snapshot-etl/internal/adapter/source"
	"github.com/couchcryptid/covid-snapshot-etl/internal/config"
	"github.com/couchcryptid/covid-snapshot-etl/internal/observability"
	"github.com/couchcryptid/covid-snapshot-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	fetcher := source.NewClient(cfg.SourceURL, cfg.SourceTimeout, cfg.SourceUserAgent, cfg.SourceMaxBytes, logger, metrics)
	extractor := pipeline.NewExtractor(logger)

	// Publishing is feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS.
	var (
		writer *kafkaadapter.Writer
		loader pipeline.Loader
	)
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		loader = writer
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSinkTopic)
	} else {
		logger.Info("kafka publishing disabled")
	}

	p := pipeline.New(fetcher, extractor, loader, logger, metrics, cfg.RefreshInterval, nil)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start refresh loop.
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

	logger.Info("shutdown complete")
}
