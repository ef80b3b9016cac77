package handlers

import (
	"net/http"
	"strings"

	"github.com/soundcheckhq/concertmatch/backend/internal/domain/providers"
)

// GeolocationHandler handles city geocoding endpoints.
type GeolocationHandler struct {
	provider providers.GeolocationProvider
}

// NewGeolocationHandler creates a new geolocation handler.
func NewGeolocationHandler(provider providers.GeolocationProvider) *GeolocationHandler {
	return &GeolocationHandler{provider: provider}
}

// Geocode handles GET /api/geocode?city=...
func (h *GeolocationHandler) Geocode(w http.ResponseWriter, r *http.Request) {
	city := strings.TrimSpace(r.URL.Query().Get("city"))
	if city == "" {
		respondError(w, http.StatusBadRequest, "city parameter is required")
		return
	}

	coords, err := h.provider.Geocode(r.Context(), city)
	if err != nil {
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"city": city,
		"lat":  coords.Latitude,
		"lon":  coords.Longitude,
	})
}
