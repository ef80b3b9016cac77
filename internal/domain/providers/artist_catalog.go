package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/soundcheckhq/concertmatch/backend/internal/domain/entities"
)

// ArtistCatalog defines the interface to a music catalog (Spotify)
type ArtistCatalog interface {
	// SearchArtists searches the catalog by artist name
	SearchArtists(ctx context.Context, query string, limit int) ([]entities.ArtistRecord, error)

	// GetTopArtists returns the user's top artists for a time range
	// ("short_term", "medium_term", "long_term"). Requires a user token.
	GetTopArtists(ctx context.Context, accessToken, timeRange string, limit int) ([]entities.ArtistRecord, error)
}

// RateLimitError is returned when the catalog rate-limits a request and the
// advertised Retry-After is too long to wait out inside the request.
type RateLimitError struct {
	RetryAfter time.Duration
}

// Error implements the error interface
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("catalog rate limited, retry after %s", e.RetryAfter)
}
