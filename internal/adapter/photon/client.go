// Package photon resolves airport codes to coordinates with the Photon
// geocoding API (OpenStreetMap data).
package photon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/flight-delay-etl/internal/domain"
)

// ErrNoMatch is returned when the API answers with no features.
var ErrNoMatch = errors.New("photon: no feature matched")

// Client implements domain.Geocoder using the Photon search endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a Photon geocoding client.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		logger:  logger,
	}
}

// Locate returns the coordinates of the best match for query.
func (c *Client) Locate(ctx context.Context, query string) (domain.Coordinates, error) {
	params := url.Values{
		"q":     {query},
		"lang":  {"en"},
		"limit": {"5"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode %s: %w", query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.Coordinates{}, fmt.Errorf("photon API error: status %d: %s", resp.StatusCode, body)
	}

	var photonResp response
	if err := json.NewDecoder(resp.Body).Decode(&photonResp); err != nil {
		return domain.Coordinates{}, fmt.Errorf("decode response: %w", err)
	}

	if len(photonResp.Features) == 0 || len(photonResp.Features[0].Geometry.Coordinates) != 2 {
		return domain.Coordinates{}, fmt.Errorf("%w: %q", ErrNoMatch, query)
	}

	f := photonResp.Features[0]
	c.logger.Debug("airport located", "airport", query, "name", f.Properties.Name)
	return domain.Coordinates{
		Lon: f.Geometry.Coordinates[0],
		Lat: f.Geometry.Coordinates[1],
	}, nil
}

// Photon GeoJSON response types.

type response struct {
	Features []feature `json:"features"`
}

type feature struct {
	Geometry   geometry   `json:"geometry"`
	Properties properties `json:"properties"`
}

type geometry struct {
	Coordinates []float64 `json:"coordinates"` // [lon, lat]
}

type properties struct {
	Name    string `json:"name"`
	Country string `json:"country"`
}
