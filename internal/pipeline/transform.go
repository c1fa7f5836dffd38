package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/flight-delay-etl/internal/domain"
	"github.com/couchcryptid/flight-delay-etl/internal/observability"
)

// FlightTransformer implements Transformer by decoding the source record and
// normalizing it against the IATA reference list.
type FlightTransformer struct {
	iatas   []domain.IATAEntry
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewTransformer creates a FlightTransformer. The IATA list is read once per
// run and must not be modified afterwards.
func NewTransformer(iatas []domain.IATAEntry, logger *slog.Logger, metrics *observability.Metrics) *FlightTransformer {
	return &FlightTransformer{
		iatas:   iatas,
		logger:  logger,
		metrics: metrics,
	}
}

func (t *FlightTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.Flight, bool, error) {
	rec, err := domain.DecodeRawFlight(raw.Source, raw.Value)
	if err != nil {
		return domain.Flight{}, false, err
	}

	f, ok, err := domain.Normalize(rec, t.iatas)
	if err != nil || !ok {
		return domain.Flight{}, false, err
	}
	if !domain.IsCompleted(f.Status) {
		t.logger.Debug("flight not completed, skipping", "source", f.Source, "number", f.Number, "status", f.Status)
		return domain.Flight{}, false, nil
	}

	if f.ArrivalResolved {
		t.metrics.IATAResolution.WithLabelValues("hit").Inc()
	} else {
		t.metrics.IATAResolution.WithLabelValues("fallback").Inc()
		t.logger.Debug("destination not in iata list", "source", f.Source, "airport", f.AirportArr)
	}
	return f, true, nil
}
