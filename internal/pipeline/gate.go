package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/flight-delay-etl/internal/domain"
	"github.com/couchcryptid/flight-delay-etl/internal/observability"
)

// FlightStore is the persistence the dedup gate needs.
type FlightStore interface {
	FindByKey(ctx context.Context, key domain.DedupKey) (*domain.Flight, error)
	// CountByKey reports 0 instead of failing.
	CountByKey(ctx context.Context, key domain.DedupKey) int64
	Insert(ctx context.Context, f domain.Flight) (domain.Flight, error)
}

// Gate admits a flight only when no stored flight shares its dedup key.
// Check and insert are separate statements; concurrent runs may race.
type Gate struct {
	store   FlightStore
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewGate creates a Gate over the given store.
func NewGate(store FlightStore, logger *slog.Logger, metrics *observability.Metrics) *Gate {
	return &Gate{store: store, logger: logger, metrics: metrics}
}

// ShouldInsert reports whether no stored flight matches f's dedup key.
func (g *Gate) ShouldInsert(ctx context.Context, f domain.Flight) (bool, error) {
	existing, err := g.store.FindByKey(ctx, f.Key())
	if err != nil {
		return false, err
	}
	return existing == nil, nil
}

// Admit inserts f when ShouldInsert permits it. It returns the stored flight
// and whether an insert happened.
func (g *Gate) Admit(ctx context.Context, f domain.Flight) (domain.Flight, bool, error) {
	ok, err := g.ShouldInsert(ctx, f)
	if err != nil {
		return domain.Flight{}, false, fmt.Errorf("dedup check %s %s: %w", f.AirportDep, f.Number, err)
	}
	if !ok {
		g.metrics.DuplicatesSkipped.Inc()
		g.logger.Debug("duplicate flight skipped",
			"source", f.Source,
			"number", f.Number,
			"airport", f.AirportDep,
			"matches", g.store.CountByKey(ctx, f.Key()),
		)
		return f, false, nil
	}

	stored, err := g.store.Insert(ctx, f)
	if err != nil {
		return domain.Flight{}, false, err
	}
	g.metrics.FlightsInserted.Inc()
	return stored, true, nil
}

// LoadBatch admits each flight in order. The first store failure aborts the batch.
func (g *Gate) LoadBatch(ctx context.Context, flights []domain.Flight) error {
	for _, f := range flights {
		if _, _, err := g.Admit(ctx, f); err != nil {
			return err
		}
	}
	return nil
}
