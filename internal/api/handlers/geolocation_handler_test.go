package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundcheckhq/concertmatch/backend/internal/api/handlers"
	"github.com/soundcheckhq/concertmatch/backend/internal/domain/providers"
	apperrors "github.com/soundcheckhq/concertmatch/backend/pkg/errors"
)

type stubGeoProvider struct {
	coords *providers.Coordinates
	err    error
}

func (s *stubGeoProvider) Geocode(ctx context.Context, city string) (*providers.Coordinates, error) {
	return s.coords, s.err
}

func TestGeolocationHandler_Geocode(t *testing.T) {
	provider := &stubGeoProvider{coords: &providers.Coordinates{Latitude: 30.2672, Longitude: -97.7431}}
	handler := handlers.NewGeolocationHandler(provider)

	req := httptest.NewRequest("GET", "/api/geocode?city=Austin", nil)
	w := httptest.NewRecorder()

	handler.Geocode(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "Austin", response["city"])
	assert.InDelta(t, 30.2672, response["lat"].(float64), 0.0001)
}

func TestGeolocationHandler_Geocode_MissingCity(t *testing.T) {
	handler := handlers.NewGeolocationHandler(&stubGeoProvider{})

	req := httptest.NewRequest("GET", "/api/geocode", nil)
	w := httptest.NewRecorder()

	handler.Geocode(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGeolocationHandler_Geocode_UnknownCity(t *testing.T) {
	handler := handlers.NewGeolocationHandler(&stubGeoProvider{err: apperrors.NewNotFoundError("could not geocode city")})

	req := httptest.NewRequest("GET", "/api/geocode?city=Atlantis", nil)
	w := httptest.NewRecorder()

	handler.Geocode(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
