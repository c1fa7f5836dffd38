// Package openmeteo fetches historical hourly weather from the Open-Meteo
// archive API.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/flight-delay-etl/internal/domain"
	"github.com/couchcryptid/flight-delay-etl/internal/observability"
)

const (
	hourlyMeasures = "precipitation,cloud_cover,wind_speed_10m,wind_speed_100m"
	timeLayout     = "2006-01-02T15:04"
)

// Client implements domain.WeatherProvider.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an archive API client.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// HourlySeries returns the 24 hourly samples of date (YYYY-MM-DD, UTC) at the
// given coordinates.
func (c *Client) HourlySeries(ctx context.Context, at domain.Coordinates, date string) (domain.WeatherSeries, error) {
	params := url.Values{
		"latitude":   {strconv.FormatFloat(at.Lat, 'f', -1, 64)},
		"longitude":  {strconv.FormatFloat(at.Lon, 'f', -1, 64)},
		"start_date": {date},
		"end_date":   {date},
		"hourly":     {hourlyMeasures},
		"timezone":   {"GMT"},
	}

	start := time.Now()
	series, err := c.fetch(ctx, c.baseURL+"?"+params.Encode())
	c.metrics.WeatherAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.WeatherRequests.WithLabelValues("error").Inc()
		return domain.WeatherSeries{}, fmt.Errorf("weather for %s at %.4f,%.4f: %w", date, at.Lat, at.Lon, err)
	}
	c.metrics.WeatherRequests.WithLabelValues("success").Inc()
	c.logger.Debug("weather series fetched", "date", date, "samples", len(series.Times))
	return series, nil
}

func (c *Client) fetch(ctx context.Context, fullURL string) (domain.WeatherSeries, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.WeatherSeries{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.WeatherSeries{}, fmt.Errorf("archive request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.WeatherSeries{}, fmt.Errorf("open-meteo API error: status %d: %s", resp.StatusCode, body)
	}

	var archive response
	if err := json.NewDecoder(resp.Body).Decode(&archive); err != nil {
		return domain.WeatherSeries{}, fmt.Errorf("decode response: %w", err)
	}
	return archive.Hourly.toSeries()
}

// Open-Meteo archive response types.

type response struct {
	Hourly hourly `json:"hourly"`
}

type hourly struct {
	Time          []string   `json:"time"`
	Precipitation []*float64 `json:"precipitation"`
	CloudCover    []*float64 `json:"cloud_cover"`
	WindSpeed10m  []*float64 `json:"wind_speed_10m"`
	WindSpeed100m []*float64 `json:"wind_speed_100m"`
}

func (h hourly) toSeries() (domain.WeatherSeries, error) {
	n := len(h.Time)
	s := domain.WeatherSeries{
		Times:         make([]time.Time, n),
		Precipitation: fit(h.Precipitation, n),
		CloudCover:    fit(h.CloudCover, n),
		WindSpeed10m:  fit(h.WindSpeed10m, n),
		WindSpeed100m: fit(h.WindSpeed100m, n),
	}
	for i, raw := range h.Time {
		t, err := time.ParseInLocation(timeLayout, raw, time.UTC)
		if err != nil {
			return domain.WeatherSeries{}, fmt.Errorf("parse hourly time %q: %w", raw, err)
		}
		s.Times[i] = t
	}
	return s, nil
}

// fit pads or truncates a measure to n samples; padding is missing data.
func fit(samples []*float64, n int) []*float64 {
	out := make([]*float64, n)
	copy(out, samples)
	return out
}
