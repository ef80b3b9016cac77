package geolocation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundcheckhq/concertmatch/backend/internal/domain/providers"
)

func TestStaticProvider_KnownCity(t *testing.T) {
	provider := NewStaticProvider(nil)

	coords, err := provider.Geocode(context.Background(), "Austin")
	require.NoError(t, err)
	assert.InDelta(t, 30.2672, coords.Latitude, 0.001)
	assert.InDelta(t, -97.7431, coords.Longitude, 0.001)
}

func TestStaticProvider_Aliases(t *testing.T) {
	provider := NewStaticProvider(nil)

	nyc, err := provider.Geocode(context.Background(), "NYC")
	require.NoError(t, err)
	full, err := provider.Geocode(context.Background(), "New York City")
	require.NoError(t, err)
	assert.Equal(t, full, nyc)
}

func TestStaticProvider_StripsCountryAndState(t *testing.T) {
	provider := NewStaticProvider(nil)

	coords, err := provider.Geocode(context.Background(), "Seattle, USA")
	require.NoError(t, err)
	assert.InDelta(t, 47.6062, coords.Latitude, 0.001)

	coords, err = provider.Geocode(context.Background(), "Nashville, TN")
	require.NoError(t, err)
	assert.InDelta(t, 36.1627, coords.Latitude, 0.001)
}

func TestStaticProvider_UnknownCityErrorsWithoutFallback(t *testing.T) {
	provider := NewStaticProvider(nil)

	_, err := provider.Geocode(context.Background(), "Zzyzx Flats")
	assert.Error(t, err)
}

func TestStaticProvider_UsesFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		assert.Equal(t, "us", r.URL.Query().Get("countrycodes"))
		w.Write([]byte(`[{"lat": "64.8378", "lon": "-147.7164", "display_name": "Fairbanks, Alaska"}]`))
	}))
	defer server.Close()

	fallback := NewNominatimProviderWithOptions("concertmatch/1.0", nil, server.URL, server.Client())
	provider := NewStaticProvider(fallback)

	coords, err := provider.Geocode(context.Background(), "Fairbanks North Star Borough")
	require.NoError(t, err)
	assert.InDelta(t, 64.8378, coords.Latitude, 0.001)
	assert.InDelta(t, -147.7164, coords.Longitude, 0.001)
}

func TestNominatimProvider_NoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	provider := NewNominatimProviderWithOptions("concertmatch/1.0", nil, server.URL, server.Client())

	_, err := provider.Geocode(context.Background(), "Nowhere At All")
	assert.Error(t, err)
}

var _ providers.GeolocationProvider = (*StaticProvider)(nil)
