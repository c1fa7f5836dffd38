package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/flight-delay-etl/internal/adapter/file"
	"github.com/couchcryptid/flight-delay-etl/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/flight-delay-etl/internal/adapter/kafka"
	"github.com/couchcryptid/flight-delay-etl/internal/adapter/openmeteo"
	"github.com/couchcryptid/flight-delay-etl/internal/adapter/photon"
	"github.com/couchcryptid/flight-delay-etl/internal/adapter/store"
	"github.com/couchcryptid/flight-delay-etl/internal/config"
	"github.com/couchcryptid/flight-delay-etl/internal/domain"
	"github.com/couchcryptid/flight-delay-etl/internal/observability"
	"github.com/couchcryptid/flight-delay-etl/internal/pipeline"
)

type extractor interface {
	pipeline.BatchExtractor
	Close() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, metrics); err != nil {
		logger.Error("etl run failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) error {
	st, err := store.Open(cfg.DBType, cfg.DBDSN, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Error("store close error", "error", err)
		}
	}()

	iatas, err := loadIATA(ctx, cfg, st, logger)
	if err != nil {
		return err
	}

	src, err := openExtractor(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := src.Close(); err != nil {
			logger.Error("extractor close error", "error", err)
		}
	}()

	transformer := pipeline.NewTransformer(iatas, logger, metrics)
	gate := pipeline.NewGate(st, logger, metrics)
	p := pipeline.New(src, transformer, gate, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
		logger.Info("shutdown complete")
	}()

	if err := p.Run(ctx); err != nil {
		return fmt.Errorf("ingestion: %w", err)
	}
	if ctx.Err() != nil {
		logger.Info("interrupted, skipping weather enrichment")
		return nil
	}

	if !cfg.WeatherEnabled {
		logger.Info("weather enrichment disabled")
		return nil
	}
	geocoder := photon.NewCachedGeocoder(
		photon.NewClient(cfg.GeocoderBaseURL, cfg.GeocoderTimeout, logger),
		cfg.GeocoderCacheSize, metrics,
	)
	weather := openmeteo.NewClient(cfg.WeatherBaseURL, cfg.WeatherTimeout, metrics, logger)
	if _, err := pipeline.NewEnricher(st, geocoder, weather, logger, metrics).Run(ctx); err != nil {
		if ctx.Err() != nil {
			logger.Info("interrupted during weather enrichment")
			return nil
		}
		return fmt.Errorf("weather enrichment: %w", err)
	}
	return nil
}

// loadIATA seeds the reference list from IATA_FILE when set and returns the
// stored list in insertion order.
func loadIATA(ctx context.Context, cfg *config.Config, st *store.Store, logger *slog.Logger) ([]domain.IATAEntry, error) {
	if cfg.IATAFile != "" {
		f, err := os.Open(cfg.IATAFile)
		if err != nil {
			return nil, fmt.Errorf("open iata file: %w", err)
		}
		entries, err := domain.ParseIATAList(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("parse iata file: %w", err)
		}
		added, err := st.InsertIATA(ctx, entries)
		if err != nil {
			return nil, err
		}
		logger.Info("iata list seeded", "parsed", len(entries), "added", added)
	}

	iatas, err := st.AllIATA(ctx)
	if err != nil {
		return nil, err
	}
	if len(iatas) == 0 {
		logger.Warn("iata list is empty, arrival airports will use fallback codes")
	}
	return iatas, nil
}

func openExtractor(cfg *config.Config, logger *slog.Logger) (extractor, error) {
	switch cfg.IngestMode {
	case config.IngestFile:
		logger.Info("ingesting from file", "path", cfg.IngestFile)
		return file.Open(cfg.IngestFile)
	default:
		logger.Info("ingesting from kafka", "topic", cfg.KafkaSourceTopic, "brokers", cfg.KafkaBrokers)
		return kafkaadapter.NewReader(cfg, logger), nil
	}
}
