package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripseek/tripseek/config"
	"github.com/tripseek/tripseek/schema"
)

func TestLookupParsesCoordinates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "South Beach, Miami Beach, FL", r.URL.Query().Get("q"))
		assert.Contains(t, r.Header.Get("User-Agent"), "tripseek")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"lat":"25.7907","lon":"-80.1300","display_name":"South Beach"}]`))
	}))
	defer srv.Close()

	g := New(config.GeocodeConfig{Endpoint: srv.URL}, nil)
	lat, lon, err := g.Lookup(context.Background(), "South Beach, Miami Beach, FL")
	require.NoError(t, err)
	assert.InDelta(t, 25.7907, lat, 1e-6)
	assert.InDelta(t, -80.13, lon, 1e-6)
}

func TestLookupNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	g := New(config.GeocodeConfig{Endpoint: srv.URL}, nil)
	_, _, err := g.Lookup(context.Background(), "nowhere")
	require.Error(t, err)
}

func TestBackfillIsBestEffort(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		if calls == 1 {
			w.Write([]byte(`[{"lat":"25.76","lon":"-80.19"}]`))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	lat, lon := 27.9, -82.5
	pois := []schema.POI{
		{Name: "Vizcaya Museum", City: "Miami", State: "FL"},
		{Name: "Ybor City", City: "Tampa", State: "FL", Latitude: &lat, Longitude: &lon},
		{Name: "Gatorland", City: "Orlando", State: "FL"},
	}
	g := New(config.GeocodeConfig{Endpoint: srv.URL}, nil)
	g.Backfill(context.Background(), pois)

	require.NotNil(t, pois[0].Latitude)
	assert.InDelta(t, 25.76, *pois[0].Latitude, 1e-6)
	// already geocoded entry untouched, no extra call spent on it
	assert.InDelta(t, 27.9, *pois[1].Latitude, 1e-6)
	// failed lookup leaves coordinates empty
	assert.Nil(t, pois[2].Latitude)
}
