// Package geocode resolves place names to coordinates via the Google
// Geocoding API. Optional: without an API key callers simply skip
// coordinate resolution.
package geocode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const googleGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"

// Result is a resolved coordinate. Matched is false when the API had no
// answer for the address.
type Result struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
	Matched   bool    `json:"matched"`
}

// Geocoder resolves addresses against the Google Geocoding API.
type Geocoder struct {
	key        string
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
}

// Option configures a Geocoder.
type Option func(*Geocoder)

// WithHTTPClient overrides the HTTP client (tests).
func WithHTTPClient(c *http.Client) Option {
	return func(g *Geocoder) { g.httpClient = c }
}

// WithBaseURL overrides the API endpoint (tests).
func WithBaseURL(u string) Option {
	return func(g *Geocoder) { g.baseURL = u }
}

// New creates a Geocoder. Google's free tier allows ~50 qps; we stay
// well under it.
func New(apiKey string, opts ...Option) *Geocoder {
	g := &Geocoder{
		key:        apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(10), 5),
		baseURL:    googleGeocodeURL,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type googleGeocodeResponse struct {
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
	Status string `json:"status"`
}

// Lookup geocodes a single free-text address (typically a city name).
func (g *Geocoder) Lookup(ctx context.Context, address string) (*Result, error) {
	if g.key == "" {
		return nil, eris.New("geocode: google api key not configured")
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "geocode: rate limit")
	}

	params := url.Values{
		"address": {address},
		"key":     {g.key},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: build request")
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("geocode: google returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: read body")
	}

	var googleResp googleGeocodeResponse
	if err := json.Unmarshal(body, &googleResp); err != nil {
		return nil, eris.Wrap(err, "geocode: parse response")
	}

	if googleResp.Status != "OK" || len(googleResp.Results) == 0 {
		return &Result{Matched: false}, nil
	}

	loc := googleResp.Results[0].Geometry.Location
	return &Result{Latitude: loc.Lat, Longitude: loc.Lng, Matched: true}, nil
}
