package photon

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestClient_Locate_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "MXP", r.URL.Query().Get("q"))
		assert.Equal(t, "en", r.URL.Query().Get("lang"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))

		resp := response{Features: []feature{
			{
				Geometry:   geometry{Coordinates: []float64{8.7231, 45.6306}},
				Properties: properties{Name: "Milan Malpensa Airport", Country: "Italy"},
			},
			{Geometry: geometry{Coordinates: []float64{0, 0}}},
		}}
		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	coords, err := testClient(srv.URL, 5*time.Second).Locate(context.Background(), "MXP")
	require.NoError(t, err)
	assert.Equal(t, 45.6306, coords.Lat)
	assert.Equal(t, 8.7231, coords.Lon)
}

func TestClient_Locate_EscapesQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Los Angeles Intl", r.URL.Query().Get("q"))
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"features":[{"geometry":{"coordinates":[-118.4,33.9]}}]}`))
	}))
	defer srv.Close()

	coords, err := testClient(srv.URL, 5*time.Second).Locate(context.Background(), "Los Angeles Intl")
	require.NoError(t, err)
	assert.Equal(t, 33.9, coords.Lat)
}

func TestClient_Locate_NoFeatures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(response{Features: []feature{}}))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, 5*time.Second).Locate(context.Background(), "ZZZ")
	require.ErrorIs(t, err, ErrNoMatch)
}

func TestClient_Locate_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"missing q"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, 5*time.Second).Locate(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestClient_Locate_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, 5*time.Second).Locate(context.Background(), "MXP")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestClient_Locate_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, 50*time.Millisecond).Locate(context.Background(), "MXP")
	require.Error(t, err)
}
