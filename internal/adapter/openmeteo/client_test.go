package openmeteo

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/flight-delay-etl/internal/domain"
	"github.com/couchcryptid/flight-delay-etl/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBody = `{
  "latitude": 45.62,
  "longitude": 8.72,
  "timezone": "GMT",
  "hourly": {
    "time": ["2024-03-01T00:00", "2024-03-01T01:00", "2024-03-01T02:00"],
    "precipitation": [0.0, 0.2, null],
    "cloud_cover": [100, 90, 80],
    "wind_speed_10m": [5.1, 6.3, 7.0],
    "wind_speed_100m": [12.4, 14.8]
  }
}`

func testClient(baseURL string, timeout time.Duration) (*Client, *observability.Metrics) {
	m := observability.NewMetricsForTesting()
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		metrics:    m,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, m
}

func TestClient_HourlySeries_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "45.6306", q.Get("latitude"))
		assert.Equal(t, "8.7231", q.Get("longitude"))
		assert.Equal(t, "2024-03-01", q.Get("start_date"))
		assert.Equal(t, "2024-03-01", q.Get("end_date"))
		assert.Equal(t, "precipitation,cloud_cover,wind_speed_10m,wind_speed_100m", q.Get("hourly"))
		assert.Equal(t, "GMT", q.Get("timezone"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleBody))
	}))
	defer srv.Close()

	c, m := testClient(srv.URL, 5*time.Second)
	s, err := c.HourlySeries(context.Background(), domain.Coordinates{Lat: 45.6306, Lon: 8.7231}, "2024-03-01")
	require.NoError(t, err)

	require.Len(t, s.Times, 3)
	assert.Equal(t, time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC), s.Times[1])
	assert.Equal(t, 0.2, *s.Precipitation[1])
	assert.Nil(t, s.Precipitation[2])
	assert.Equal(t, 80.0, *s.CloudCover[2])
	require.Len(t, s.WindSpeed100m, 3, "short measure is padded")
	assert.Nil(t, s.WindSpeed100m[2])
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WeatherRequests.WithLabelValues("success")))
}

func TestClient_HourlySeries_FeedsInterpolation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(sampleBody))
	}))
	defer srv.Close()

	c, _ := testClient(srv.URL, 5*time.Second)
	s, err := c.HourlySeries(context.Background(), domain.Coordinates{}, "2024-03-01")
	require.NoError(t, err)

	got, changed := domain.EnrichWithWeather(domain.Flight{ScheduledDep: time.Date(2024, 3, 1, 0, 30, 0, 0, time.UTC)}, s)
	require.True(t, changed)
	assert.InDelta(t, 0.1, *got.Precipitation, 1e-9)
	assert.InDelta(t, 95.0, *got.CloudCover, 1e-9)
	assert.InDelta(t, 13.6, *got.WindSpeed100m, 1e-9)
}

func TestClient_HourlySeries_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":true,"reason":"Parameter 'start_date' is out of allowed range"}`))
	}))
	defer srv.Close()

	c, m := testClient(srv.URL, 5*time.Second)
	_, err := c.HourlySeries(context.Background(), domain.Coordinates{}, "1900-01-01")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WeatherRequests.WithLabelValues("error")))
}

func TestClient_HourlySeries_BadTime(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"hourly":{"time":["yesterday"]}}`))
	}))
	defer srv.Close()

	c, _ := testClient(srv.URL, 5*time.Second)
	_, err := c.HourlySeries(context.Background(), domain.Coordinates{}, "2024-03-01")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "yesterday")
}

func TestClient_HourlySeries_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, _ := testClient(srv.URL, 50*time.Millisecond)
	_, err := c.HourlySeries(context.Background(), domain.Coordinates{}, "2024-03-01")
	require.Error(t, err)
}
