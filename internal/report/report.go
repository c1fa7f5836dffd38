// Package report computes per-airport delay and weather statistics over the
// stored flights.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/couchcryptid/flight-delay-etl/internal/adapter/store"
	"github.com/couchcryptid/flight-delay-etl/internal/domain"
	"github.com/jonboulle/clockwork"
)

// Source is the read side of the flight store.
type Source interface {
	AllFlights(ctx context.Context) ([]domain.Flight, error)
	AllIATA(ctx context.Context) ([]domain.IATAEntry, error)
	DistinctAirportDep(ctx context.Context) ([]string, error)
	FlightsPerAirport(ctx context.Context) (map[string]int64, error)
	MeanByAirport(ctx context.Context, column string) (map[string]float64, error)
}

// AirportRow is one line of reportQuery.csv. Delays are in minutes, wind in
// km/h and precipitation in mm.
type AirportRow struct {
	Airport                string  `csv:"airport" json:"airport"`
	CountFlights           int64   `csv:"countFlights" json:"countFlights"`
	MeanWind               float64 `csv:"meanWind" json:"meanWind"`
	MeanDelays             float64 `csv:"meanDelays" json:"meanDelays"`
	MeanWindDelaysGt       float64 `csv:"meanWindDelaysGt" json:"meanWindDelaysGt"`
	MeanWindDelaysLte      float64 `csv:"meanWindDelaysLte" json:"meanWindDelaysLte"`
	MeanPrecipitation      float64 `csv:"meanPrecipitation" json:"meanPrecipitation"`
	MeanPrecDelaysGt       float64 `csv:"meanPrecDelaysGt" json:"meanPrecDelaysGt"`
	MeanPrecDelaysLte      float64 `csv:"meanPrecDelaysLte" json:"meanPrecDelaysLte"`
	WindPercentageIncrease float64 `csv:"windPercentageIncrease" json:"windPercentageIncrease"`
	PrecPercentageIncrease float64 `csv:"precPercentageIncrease" json:"precPercentageIncrease"`
}

// Quality holds the dataset quality dimensions, each a share in [0, 1].
type Quality struct {
	// Completeness is the share of flights with an actual departure.
	Completeness float64 `json:"completeness"`
	// Consistency is the share of flights whose departure code is a known acronym.
	Consistency float64 `json:"consistency"`
}

// Correlation holds Pearson coefficients between delay and each measure.
// A nil coefficient could not be computed.
type Correlation struct {
	Precipitation *float64 `json:"precipitation"`
	CloudCover    *float64 `json:"cloud_cover"`
	WindSpeed10m  *float64 `json:"wind_speed_10m"`
	WindSpeed100m *float64 `json:"wind_speed_100m"`
}

// Report is the complete analysis output.
type Report struct {
	GeneratedAt          time.Time              `json:"generatedAt"`
	Flights              int                    `json:"flights"`
	Airports             []AirportRow           `json:"airports"`
	Quality              Quality                `json:"quality"`
	Correlation          Correlation            `json:"correlation"`
	CorrelationByAirport map[string]Correlation `json:"correlationByAirport"`
}

// Generator builds reports from a Source.
type Generator struct {
	src    Source
	clock  clockwork.Clock
	logger *slog.Logger
}

// NewGenerator creates a Generator. A nil clock uses the real clock.
func NewGenerator(src Source, clock clockwork.Clock, logger *slog.Logger) *Generator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Generator{src: src, clock: clock, logger: logger}
}

// Generate computes the report. Airports missing from a grouped result
// report 0 for that column.
func (g *Generator) Generate(ctx context.Context) (Report, error) {
	flights, err := g.src.AllFlights(ctx)
	if err != nil {
		return Report{}, err
	}
	iatas, err := g.src.AllIATA(ctx)
	if err != nil {
		return Report{}, err
	}
	airports, err := g.src.DistinctAirportDep(ctx)
	if err != nil {
		return Report{}, err
	}
	counts, err := g.src.FlightsPerAirport(ctx)
	if err != nil {
		return Report{}, err
	}
	meanWind, err := g.src.MeanByAirport(ctx, store.ColumnWindSpeed100m)
	if err != nil {
		return Report{}, err
	}
	meanPrec, err := g.src.MeanByAirport(ctx, store.ColumnPrecipitation)
	if err != nil {
		return Report{}, err
	}

	r := Report{
		GeneratedAt:          g.clock.Now().UTC(),
		Flights:              len(flights),
		Airports:             make([]AirportRow, 0, len(airports)),
		CorrelationByAirport: make(map[string]Correlation, len(airports)),
	}
	if len(flights) == 0 {
		g.logger.Warn("no flights stored, report is empty")
		return r, nil
	}

	fr, err := newFrame(flights)
	if err != nil {
		return Report{}, fmt.Errorf("build flight frame: %w", err)
	}

	r.Quality = quality(flights, iatas)
	r.Correlation = fr.correlations()

	for _, a := range airports {
		sub := fr.airport(a)
		row := AirportRow{
			Airport:           a,
			CountFlights:      counts[a],
			MeanWind:          round3(meanWind[a]),
			MeanDelays:        round3(sub.meanDelay()),
			MeanPrecipitation: round3(meanPrec[a]),
		}
		if m, ok := meanWind[a]; ok {
			row.MeanWindDelaysGt = round3(sub.above(colWind100m, m).meanDelay())
			row.MeanWindDelaysLte = round3(sub.atOrBelow(colWind100m, m).meanDelay())
		}
		if m, ok := meanPrec[a]; ok {
			row.MeanPrecDelaysGt = round3(sub.above(colPrecipitation, m).meanDelay())
			row.MeanPrecDelaysLte = round3(sub.atOrBelow(colPrecipitation, m).meanDelay())
		}
		row.WindPercentageIncrease = percentageIncrease(row.MeanWindDelaysLte, row.MeanWindDelaysGt)
		row.PrecPercentageIncrease = percentageIncrease(row.MeanPrecDelaysLte, row.MeanPrecDelaysGt)

		r.Airports = append(r.Airports, row)
		r.CorrelationByAirport[a] = sub.correlations()
	}

	g.logger.Info("report generated", "flights", len(flights), "airports", len(airports))
	return r, nil
}

func quality(flights []domain.Flight, iatas []domain.IATAEntry) Quality {
	if len(flights) == 0 {
		return Quality{}
	}
	known := make(map[string]bool, len(iatas))
	for _, e := range iatas {
		known[e.Acronym] = true
	}
	var complete, consistent int
	for _, f := range flights {
		if f.ActualDep != nil {
			complete++
		}
		if known[f.AirportDep] {
			consistent++
		}
	}
	n := float64(len(flights))
	return Quality{
		Completeness: float64(complete) / n,
		Consistency:  float64(consistent) / n,
	}
}

// percentageIncrease is the change from left to right in percent. A zero
// baseline yields 0.
func percentageIncrease(left, right float64) float64 {
	if left == 0 {
		return 0
	}
	return round3((right/left - 1) * 100)
}

func round3(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Round(v*1000) / 1000
}
