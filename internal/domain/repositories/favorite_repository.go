package repositories

import (
	"context"

	"github.com/soundcheckhq/concertmatch/backend/internal/domain/entities"
)

// FavoriteRepository defines the interface for saved concert matches
type FavoriteRepository interface {
	// Create saves a favorite
	Create(ctx context.Context, favorite *entities.Favorite) error

	// ListByUser retrieves a user's favorites, newest first
	ListByUser(ctx context.Context, userID string) ([]*entities.Favorite, error)

	// Delete removes a favorite by ID
	Delete(ctx context.Context, id string) error
}
