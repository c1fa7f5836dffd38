package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/flight-delay-etl/internal/domain"
	"github.com/couchcryptid/flight-delay-etl/internal/observability"
)

// EnrichStore is the persistence the weather pass needs.
type EnrichStore interface {
	FlightsMissingWeather(ctx context.Context) ([]domain.Flight, error)
	Replace(ctx context.Context, f domain.Flight) error
}

// Enricher fills in weather measures for stored flights that lack them.
type Enricher struct {
	store    EnrichStore
	geocoder domain.Geocoder
	weather  domain.WeatherProvider
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewEnricher creates an Enricher.
func NewEnricher(store EnrichStore, geocoder domain.Geocoder, weather domain.WeatherProvider, logger *slog.Logger, metrics *observability.Metrics) *Enricher {
	return &Enricher{
		store:    store,
		geocoder: geocoder,
		weather:  weather,
		logger:   logger,
		metrics:  metrics,
	}
}

type seriesKey struct {
	airport string
	date    string
}

// Run enriches every flight missing weather and returns how many were
// updated. One series is fetched per airport and UTC date. Repeated airport
// lookups are left to the geocoder, which is expected to cache them.
// Geocoding and weather failures skip the affected flights; store failures
// abort the pass.
func (e *Enricher) Run(ctx context.Context) (int, error) {
	flights, err := e.store.FlightsMissingWeather(ctx)
	if err != nil {
		return 0, err
	}
	e.logger.Info("weather enrichment started", "flights", len(flights))

	series := make(map[seriesKey]*domain.WeatherSeries)
	enriched := 0

	for _, f := range flights {
		if err := ctx.Err(); err != nil {
			return enriched, err
		}

		key := seriesKey{airport: f.AirportDep, date: f.ScheduledDep.UTC().Format("2006-01-02")}
		s, seen := series[key]
		if !seen {
			at, err := e.geocoder.Locate(ctx, f.AirportDep)
			if err != nil {
				if ctx.Err() != nil {
					return enriched, ctx.Err()
				}
				e.logger.Warn("airport geocoding failed", "airport", f.AirportDep, "error", err)
				continue
			}
			ws, err := e.weather.HourlySeries(ctx, at, key.date)
			if err != nil {
				e.logger.Warn("weather fetch failed", "airport", key.airport, "date", key.date, "error", err)
			} else {
				s = &ws
			}
			series[key] = s
		}
		if s == nil {
			continue
		}

		updated, changed := domain.EnrichWithWeather(f, *s)
		if !changed {
			continue
		}
		if err := e.store.Replace(ctx, updated); err != nil {
			return enriched, fmt.Errorf("store weather for flight %s: %w", f.ID, err)
		}
		enriched++
		e.metrics.FlightsEnriched.Inc()
	}

	e.logger.Info("weather enrichment finished", "enriched", enriched, "candidates", len(flights))
	return enriched, nil
}
