package report_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/flight-delay-etl/internal/adapter/store"
	"github.com/couchcryptid/flight-delay-etl/internal/domain"
	"github.com/couchcryptid/flight-delay-etl/internal/report"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fp(v float64) *float64 { return &v }

func newStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared", discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func flight(airport string, hour, delayMin int, wind, prec *float64) domain.Flight {
	sched := time.Date(2024, 3, 1, hour, 0, 0, 0, time.UTC)
	actual := sched.Add(time.Duration(delayMin) * time.Minute)
	return domain.Flight{
		Source:        domain.SourceMXP,
		Number:        airport + "1",
		Status:        "departed",
		ScheduledDep:  sched,
		ActualDep:     &actual,
		AirportDep:    airport,
		AirportArr:    "FCO",
		WindSpeed100m: wind,
		Precipitation: prec,
		CloudCover:    fp(50),
	}
}

func seed(t *testing.T, s *store.Store) {
	t.Helper()
	ctx := context.Background()
	flights := []domain.Flight{
		flight("MXP", 10, 30, fp(10), fp(0)),
		flight("MXP", 11, 10, fp(20), fp(2)),
		flight("MXP", 12, 50, fp(30), fp(4)),
		flight("ATH", 9, 5, nil, nil),
	}
	noActual := flight("ATH", 13, 0, nil, nil)
	noActual.ActualDep = nil
	flights = append(flights, noActual)

	for _, f := range flights {
		_, err := s.Insert(ctx, f)
		require.NoError(t, err)
	}
	_, err := s.InsertIATA(ctx, []domain.IATAEntry{{Acronym: "MXP", Name: "Milano Malpensa"}})
	require.NoError(t, err)
}

func TestGenerate(t *testing.T) {
	s := newStore(t)
	seed(t, s)
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC))

	r, err := report.NewGenerator(s, clock, discardLogger()).Generate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, clock.Now(), r.GeneratedAt)
	assert.Equal(t, 5, r.Flights)

	want := []report.AirportRow{
		{
			Airport:      "ATH",
			CountFlights: 2,
			MeanDelays:   5,
		},
		{
			Airport:                "MXP",
			CountFlights:           3,
			MeanWind:               20,
			MeanDelays:             30,
			MeanWindDelaysGt:       50,
			MeanWindDelaysLte:      20,
			MeanPrecipitation:      2,
			MeanPrecDelaysGt:       50,
			MeanPrecDelaysLte:      20,
			WindPercentageIncrease: 150,
			PrecPercentageIncrease: 150,
		},
	}
	if diff := cmp.Diff(want, r.Airports); diff != "" {
		t.Errorf("airport rows mismatch (-want +got):\n%s", diff)
	}

	assert.InDelta(t, 0.8, r.Quality.Completeness, 1e-9)
	assert.InDelta(t, 0.6, r.Quality.Consistency, 1e-9)

	require.NotNil(t, r.Correlation.WindSpeed100m)
	assert.InDelta(t, 0.5, *r.Correlation.WindSpeed100m, 1e-9)
	require.NotNil(t, r.Correlation.Precipitation)
	assert.InDelta(t, 0.5, *r.Correlation.Precipitation, 1e-9)
	assert.Nil(t, r.Correlation.CloudCover, "constant cloud cover has no correlation")
	assert.Nil(t, r.Correlation.WindSpeed10m)

	assert.Nil(t, r.CorrelationByAirport["ATH"].WindSpeed100m)
	require.NotNil(t, r.CorrelationByAirport["MXP"].WindSpeed100m)
	assert.InDelta(t, 0.5, *r.CorrelationByAirport["MXP"].WindSpeed100m, 1e-9)
}

func TestGenerate_EmptyStore(t *testing.T) {
	r, err := report.NewGenerator(newStore(t), nil, discardLogger()).Generate(context.Background())
	require.NoError(t, err)
	assert.Zero(t, r.Flights)
	assert.Empty(t, r.Airports)
	assert.Equal(t, report.Quality{}, r.Quality)
}

func TestGenerate_NegativeDelayIgnored(t *testing.T) {
	s := newStore(t)
	early := flight("FCO", 10, 0, nil, nil)
	actual := early.ScheduledDep.Add(-5 * time.Minute)
	early.ActualDep = &actual
	_, err := s.Insert(context.Background(), early)
	require.NoError(t, err)
	_, err = s.Insert(context.Background(), flight("FCO", 11, 20, nil, nil))
	require.NoError(t, err)

	r, err := report.NewGenerator(s, nil, discardLogger()).Generate(context.Background())
	require.NoError(t, err)
	require.Len(t, r.Airports, 1)
	assert.Equal(t, 20.0, r.Airports[0].MeanDelays)
}

func TestWrite(t *testing.T) {
	s := newStore(t)
	seed(t, s)
	r, err := report.NewGenerator(s, nil, discardLogger()).Generate(context.Background())
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "airportsDetails")
	require.NoError(t, report.Write(dir, r))

	data, err := os.ReadFile(filepath.Join(dir, report.CSVFile))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "airport,countFlights,meanWind,meanDelays,meanWindDelaysGt,meanWindDelaysLte,"+
		"meanPrecipitation,meanPrecDelaysGt,meanPrecDelaysLte,windPercentageIncrease,precPercentageIncrease", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "ATH,2,"))
	assert.True(t, strings.HasPrefix(lines[2], "MXP,3,20,30,50,20,2,50,20,150,150"))

	data, err = os.ReadFile(filepath.Join(dir, report.JSONFile))
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "quality")
	assert.Contains(t, decoded, "correlationByAirport")
}

func TestWrite_EmptyReportHasHeader(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, report.Write(dir, report.Report{}))

	data, err := os.ReadFile(filepath.Join(dir, report.CSVFile))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "airport,countFlights"))
}
