package providers

import (
	"context"
)

// GeolocationProvider defines the interface for geocoding city names
type GeolocationProvider interface {
	// Geocode converts a city name to coordinates
	Geocode(ctx context.Context, city string) (*Coordinates, error)
}

// Coordinates represents geographical coordinates
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
