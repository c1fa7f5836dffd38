//go:build photon

package photon

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/flight-delay-etl/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the public Photon API.
// Run with: go test -tags=photon ./internal/adapter/photon/ -v -count=1

func smokeClient() *Client {
	return NewClient("https://photon.komoot.io/api/", 10*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSmoke_LocateAirports(t *testing.T) {
	c := smokeClient()

	cases := []struct {
		code     string
		lat, lon float64
	}{
		{"MXP", 45.63, 8.72},
		{"ATH", 37.94, 23.94},
		{"NRT", 35.77, 140.39},
	}
	for _, tc := range cases {
		coords, err := c.Locate(context.Background(), tc.code)
		require.NoError(t, err, tc.code)
		assert.InDelta(t, tc.lat, coords.Lat, 1.0, tc.code)
		assert.InDelta(t, tc.lon, coords.Lon, 1.0, tc.code)
	}
}

func TestSmoke_CachedGeocoder(t *testing.T) {
	cached := NewCachedGeocoder(smokeClient(), 10, observability.NewMetricsForTesting())

	c1, err := cached.Locate(context.Background(), "BOG")
	require.NoError(t, err)

	c2, err := cached.Locate(context.Background(), "BOG")
	require.NoError(t, err)
	assert.Equal(t, c1, c2)
}
