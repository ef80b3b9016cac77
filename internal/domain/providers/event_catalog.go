package providers

import (
	"context"

	"github.com/soundcheckhq/concertmatch/backend/internal/domain/entities"
)

// EventSearchParams narrows an event catalog query. SeedGenres and
// ExcludeArtists are hints consumed only by sources that generate or
// discover events (the synthetic catalog); listing APIs ignore them.
type EventSearchParams struct {
	City           string
	RadiusMiles    int
	DateFrom       string
	DateTo         string
	Limit          int
	SeedGenres     map[string]float64
	ExcludeArtists []string
}

// EventCatalog defines the interface to a source of upcoming live events
type EventCatalog interface {
	// Name identifies the source in logs and result attribution
	Name() string

	// SearchEvents returns upcoming events matching the params
	SearchEvents(ctx context.Context, params EventSearchParams) ([]entities.Event, error)
}
