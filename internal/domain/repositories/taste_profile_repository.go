package repositories

import (
	"context"

	"github.com/soundcheckhq/concertmatch/backend/internal/domain/entities"
)

// TasteProfileRepository defines the interface for taste profile storage.
// Profiles are stored whole and replaced on rebuild.
type TasteProfileRepository interface {
	// Upsert stores a profile, replacing any existing profile for the user
	Upsert(ctx context.Context, profile *entities.TasteProfile) error

	// GetByUserID retrieves the profile for a user
	GetByUserID(ctx context.Context, userID string) (*entities.TasteProfile, error)

	// ListUserIDs returns user IDs that have a stored profile
	ListUserIDs(ctx context.Context, limit int) ([]string, error)

	// Delete removes the profile for a user
	Delete(ctx context.Context, userID string) error
}
