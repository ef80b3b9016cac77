package geolocation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/soundcheckhq/concertmatch/backend/internal/domain/providers"
)

const (
	nominatimSearchURL     = "https://nominatim.openstreetmap.org/search"
	defaultGeocodeCacheTTL = 60 * 60 * 24
	defaultHTTPTimeout     = 10 * time.Second
)

// NominatimProvider geocodes through the OpenStreetMap Nominatim API.
// Nominatim requires an identifying User-Agent on every request.
type NominatimProvider struct {
	userAgent  string
	httpClient *http.Client
	cache      providers.CacheProvider
	baseURL    string
}

// NewNominatimProvider creates a new Nominatim geolocation provider. cache
// may be nil.
func NewNominatimProvider(userAgent string, cache providers.CacheProvider) providers.GeolocationProvider {
	return NewNominatimProviderWithOptions(userAgent, cache, nominatimSearchURL, nil)
}

// NewNominatimProviderWithOptions allows overriding base URL and HTTP client (used for tests).
func NewNominatimProviderWithOptions(userAgent string, cache providers.CacheProvider, baseURL string, httpClient *http.Client) providers.GeolocationProvider {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = nominatimSearchURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &NominatimProvider{
		userAgent:  userAgent,
		httpClient: httpClient,
		cache:      cache,
		baseURL:    baseURL,
	}
}

// Geocode converts a city name to coordinates
func (p *NominatimProvider) Geocode(ctx context.Context, city string) (*providers.Coordinates, error) {
	trimmed := strings.TrimSpace(city)
	if trimmed == "" {
		return nil, fmt.Errorf("city is required")
	}

	cacheKey := "geo:city:" + strings.ToLower(trimmed)
	if p.cache != nil {
		if cached, err := p.cache.Get(ctx, cacheKey); err == nil && len(cached) > 0 {
			var coords providers.Coordinates
			if err := json.Unmarshal(cached, &coords); err == nil {
				return &coords, nil
			}
		}
	}

	params := url.Values{}
	params.Set("q", trimmed)
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("countrycodes", "us")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocode request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode request returned status %d", resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode geocode response: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no results for city %q", trimmed)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude in geocode response: %w", err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude in geocode response: %w", err)
	}

	coords := providers.Coordinates{Latitude: lat, Longitude: lon}
	if p.cache != nil {
		if payload, err := json.Marshal(coords); err == nil {
			_ = p.cache.Set(ctx, cacheKey, payload, defaultGeocodeCacheTTL)
		}
	}

	return &coords, nil
}

type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}
