// Command report computes per-airport delay and weather statistics over the
// stored flights and writes them to REPORT_DIR as reportQuery.csv and
// report.json.
//
// Usage:
//
//	go run ./cmd/report [-out dir]
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/flight-delay-etl/internal/adapter/store"
	"github.com/couchcryptid/flight-delay-etl/internal/config"
	"github.com/couchcryptid/flight-delay-etl/internal/observability"
	"github.com/couchcryptid/flight-delay-etl/internal/report"
)

func main() {
	out := flag.String("out", "", "output directory (defaults to REPORT_DIR)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *out != "" {
		cfg.ReportDir = *out
	}

	logger := observability.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("report failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	st, err := store.Open(cfg.DBType, cfg.DBDSN, logger)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	r, err := report.NewGenerator(st, nil, logger).Generate(ctx)
	if err != nil {
		return err
	}
	if err := report.Write(cfg.ReportDir, r); err != nil {
		return err
	}
	logger.Info("report written", "dir", cfg.ReportDir, "airports", len(r.Airports),
		"completeness", r.Quality.Completeness, "consistency", r.Quality.Consistency)
	return nil
}
