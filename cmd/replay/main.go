// Command replay publishes a JSON-lines fixture of raw departure records to
// the source topic, one message per line with a source header.
//
// Usage:
//
//	go run ./cmd/replay -file data/mock/departures_sample.jsonl
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/flight-delay-etl/internal/adapter/file"
	kafkaadapter "github.com/couchcryptid/flight-delay-etl/internal/adapter/kafka"
	"github.com/couchcryptid/flight-delay-etl/internal/config"
	"github.com/couchcryptid/flight-delay-etl/internal/domain"
	"github.com/couchcryptid/flight-delay-etl/internal/observability"
)

func main() {
	path := flag.String("file", "", "JSON-lines fixture to publish")
	flag.Parse()

	if *path == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := observability.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *path, logger); err != nil {
		logger.Error("replay failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, path string, logger *slog.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	envelopes, err := file.ReadAll(f)
	_ = f.Close()
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	events := make([]domain.RawEvent, 0, len(envelopes))
	for _, e := range envelopes {
		events = append(events, domain.RawEvent{Source: e.Source, Value: e.Record})
	}

	w := kafkaadapter.NewWriter(cfg, logger)
	defer func() {
		if err := w.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}()

	for start := 0; start < len(events); start += cfg.BatchSize {
		end := min(start+cfg.BatchSize, len(events))
		if err := w.PublishBatch(ctx, events[start:end]); err != nil {
			return err
		}
	}
	logger.Info("fixture published", "records", len(events), "topic", cfg.KafkaSourceTopic)
	return nil
}
