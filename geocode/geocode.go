// Package geocode backfills coordinates for POIs that come out of the
// index without lat/lon, using a Nominatim-compatible search endpoint.
// Geocoding is best-effort: a failed lookup leaves the POI untouched.
package geocode

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/tripseek/tripseek/common/httpx"
	"github.com/tripseek/tripseek/common/logger"
	"github.com/tripseek/tripseek/config"
	"github.com/tripseek/tripseek/schema"
)

const defaultEndpoint = "https://nominatim.openstreetmap.org/search"

type nominatimHit struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocoder resolves place names to coordinates.
type Geocoder struct {
	Endpoint string
	Contact  string
	Client   *httpx.Client
}

func New(cfg config.GeocodeConfig, client *httpx.Client) *Geocoder {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	if client == nil {
		client = httpx.NewFromConfig(nil)
	}
	return &Geocoder{Endpoint: endpoint, Contact: cfg.Contact, Client: client}
}

// Lookup resolves one free-form place query.
func (g *Geocoder) Lookup(ctx context.Context, query string) (lat, lon float64, err error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("limit", "1")

	ua := "tripseek/1.0"
	if g.Contact != "" {
		ua = fmt.Sprintf("tripseek/1.0 (%s)", g.Contact)
	}
	var hits []nominatimHit
	if err := g.Client.GetJSON(ctx, g.Endpoint+"?"+q.Encode(), map[string]string{"User-Agent": ua}, &hits); err != nil {
		return 0, 0, fmt.Errorf("geocode lookup failed, err: %w", err)
	}
	if len(hits) == 0 {
		return 0, 0, fmt.Errorf("no geocode match for %q", query)
	}
	lat, err = strconv.ParseFloat(hits[0].Lat, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad latitude %q, err: %w", hits[0].Lat, err)
	}
	lon, err = strconv.ParseFloat(hits[0].Lon, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad longitude %q, err: %w", hits[0].Lon, err)
	}
	return lat, lon, nil
}

// Backfill fills missing coordinates in place. Lookups that fail leave
// the POI without coordinates and never fail the batch.
func (g *Geocoder) Backfill(ctx context.Context, pois []schema.POI) {
	for i := range pois {
		if pois[i].Latitude != nil && pois[i].Longitude != nil {
			continue
		}
		query := placeQuery(pois[i])
		if query == "" {
			continue
		}
		lat, lon, err := g.Lookup(ctx, query)
		if err != nil {
			logger.Debugf("geocode backfill skipped for %q: %v", pois[i].Name, err)
			continue
		}
		pois[i].Latitude = &lat
		pois[i].Longitude = &lon
	}
}

func placeQuery(p schema.POI) string {
	parts := make([]string, 0, 3)
	if p.Name != "" {
		parts = append(parts, p.Name)
	}
	if p.City != "" {
		parts = append(parts, p.City)
	}
	if p.State != "" {
		parts = append(parts, p.State)
	}
	return strings.Join(parts, ", ")
}
