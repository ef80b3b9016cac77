package services

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/soundcheckhq/concertmatch/backend/internal/domain/entities"
	"github.com/soundcheckhq/concertmatch/backend/internal/domain/providers"
	"github.com/soundcheckhq/concertmatch/backend/internal/domain/repositories"
	"github.com/soundcheckhq/concertmatch/backend/internal/infrastructure/observability"
	apperrors "github.com/soundcheckhq/concertmatch/backend/pkg/errors"
	"github.com/soundcheckhq/concertmatch/backend/pkg/utils"
)

const (
	topArtistLimit = 50

	// Recent listening counts for more than the medium-term baseline
	shortTermWeight  = 1.5
	mediumTermWeight = 1.0
)

// TasteProfileService builds and serves listener taste profiles
type TasteProfileService struct {
	catalog  providers.ArtistCatalog
	profiles repositories.TasteProfileRepository
}

// NewTasteProfileService creates a new taste profile service
func NewTasteProfileService(catalog providers.ArtistCatalog, profiles repositories.TasteProfileRepository) *TasteProfileService {
	return &TasteProfileService{
		catalog:  catalog,
		profiles: profiles,
	}
}

// Build fetches the user's top artists and derives their weighted genre
// fingerprint, replacing any stored profile.
func (s *TasteProfileService) Build(ctx context.Context, userID, accessToken string) (*entities.TasteProfile, error) {
	ctx, span := observability.StartSpan(ctx, "TasteProfileService.Build")
	defer span.End()

	if userID == "" {
		return nil, apperrors.NewValidationError("user_id is required")
	}
	if accessToken == "" {
		return nil, apperrors.NewUnauthorizedError("a catalog access token is required to build a profile")
	}

	shortTerm, err := s.catalog.GetTopArtists(ctx, accessToken, "short_term", topArtistLimit)
	if err != nil {
		return nil, apperrors.NewExternalError("failed to fetch short-term top artists", err)
	}
	mediumTerm, err := s.catalog.GetTopArtists(ctx, accessToken, "medium_term", topArtistLimit)
	if err != nil {
		return nil, apperrors.NewExternalError("failed to fetch medium-term top artists", err)
	}

	genreMap := make(map[string]float64)
	rootGenreMap := make(map[string]float64)
	accumulateGenres(shortTerm, shortTermWeight, genreMap, rootGenreMap)
	accumulateGenres(mediumTerm, mediumTermWeight, genreMap, rootGenreMap)

	normalizeWeights(genreMap)
	normalizeWeights(rootGenreMap)

	artistIDs, artistNames := uniqueArtists(shortTerm, mediumTerm)

	profile := &entities.TasteProfile{
		ID:             uuid.New().String(),
		UserID:         userID,
		GenreMap:       genreMap,
		RootGenreMap:   rootGenreMap,
		TopArtistIDs:   artistIDs,
		TopArtistNames: artistNames,
		CreatedAt:      time.Now().UTC(),
	}

	if s.profiles != nil {
		if err := s.profiles.Upsert(ctx, profile); err != nil {
			return nil, apperrors.NewInternalError("failed to store taste profile", err)
		}
	}

	observability.LoggerFromContext(ctx).Info().
		Str("user_id", userID).
		Int("genres", len(genreMap)).
		Int("root_genres", len(rootGenreMap)).
		Int("artists", len(artistIDs)).
		Msg("taste profile built")

	return profile, nil
}

// Get returns the stored profile for a user
func (s *TasteProfileService) Get(ctx context.Context, userID string) (*entities.TasteProfile, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil || profile == nil {
		return nil, apperrors.NewNotFoundError("no taste profile for user")
	}
	return profile, nil
}

// accumulateGenres folds one time range of artists into the genre maps.
// Earlier positions weigh more; the floor keeps the long tail contributing.
func accumulateGenres(artists []entities.ArtistRecord, timeRangeWeight float64, genreMap, rootGenreMap map[string]float64) {
	for i, artist := range artists {
		positionWeight := math.Max(1.0-float64(i)*0.015, 0.2)
		weight := positionWeight * timeRangeWeight

		for _, genre := range artist.Genres {
			normalized := utils.NormalizeGenre(genre)
			if normalized == "" {
				continue
			}
			genreMap[normalized] += weight
			for _, root := range utils.ExtractRootGenres(normalized) {
				rootGenreMap[root] += weight
			}
		}
	}
}

// normalizeWeights scales the map in place so the heaviest entry is 1.0
func normalizeWeights(genreMap map[string]float64) {
	maxWeight := 0.0
	for _, weight := range genreMap {
		if weight > maxWeight {
			maxWeight = weight
		}
	}
	if maxWeight == 0 {
		return
	}
	for genre, weight := range genreMap {
		genreMap[genre] = math.Round(weight/maxWeight*1000) / 1000
	}
}

// uniqueArtists merges both time ranges, deduplicating by catalog ID while
// preserving first-seen order.
func uniqueArtists(shortTerm, mediumTerm []entities.ArtistRecord) ([]string, []string) {
	seen := make(map[string]struct{})
	var ids, names []string
	for _, artist := range append(append([]entities.ArtistRecord{}, shortTerm...), mediumTerm...) {
		if artist.ID == "" {
			continue
		}
		if _, ok := seen[artist.ID]; ok {
			continue
		}
		seen[artist.ID] = struct{}{}
		ids = append(ids, artist.ID)
		names = append(names, artist.Name)
	}
	return ids, names
}
