package database

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"

	"github.com/soundcheckhq/concertmatch/backend/internal/domain/entities"
	"github.com/soundcheckhq/concertmatch/backend/internal/domain/repositories"
	"github.com/soundcheckhq/concertmatch/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/soundcheckhq/concertmatch/backend/pkg/errors"
)

// TasteProfileAdapter implements TasteProfileRepository. Genre maps are
// stored as JSONB; artist lists as text arrays.
type TasteProfileAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewTasteProfileAdapter creates a new taste profile adapter
func NewTasteProfileAdapter(client *postgres.Client) repositories.TasteProfileRepository {
	return &TasteProfileAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Upsert stores a profile, replacing any existing profile for the user
func (a *TasteProfileAdapter) Upsert(ctx context.Context, profile *entities.TasteProfile) error {
	genreMap, err := json.Marshal(profile.GenreMap)
	if err != nil {
		return apperrors.NewInternalError("failed to encode genre map", err)
	}
	rootGenreMap, err := json.Marshal(profile.RootGenreMap)
	if err != nil {
		return apperrors.NewInternalError("failed to encode root genre map", err)
	}

	record := goqu.Record{
		"id":               profile.ID,
		"user_id":          profile.UserID,
		"genre_map":        genreMap,
		"root_genre_map":   rootGenreMap,
		"top_artist_ids":   pq.Array(profile.TopArtistIDs),
		"top_artist_names": pq.Array(profile.TopArtistNames),
		"created_at":       profile.CreatedAt,
	}

	query, args, err := a.db.Insert("taste_profiles").
		Rows(record).
		OnConflict(goqu.DoUpdate("user_id", goqu.Record{
			"genre_map":        genreMap,
			"root_genre_map":   rootGenreMap,
			"top_artist_ids":   pq.Array(profile.TopArtistIDs),
			"top_artist_names": pq.Array(profile.TopArtistNames),
			"created_at":       profile.CreatedAt,
		})).
		ToSQL()

	if err != nil {
		return apperrors.NewInternalError("failed to build upsert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to store taste profile", err)
	}

	return nil
}

// GetByUserID retrieves the profile for a user
func (a *TasteProfileAdapter) GetByUserID(ctx context.Context, userID string) (*entities.TasteProfile, error) {
	query, args, err := a.db.Select(
		"id", "user_id", "genre_map", "root_genre_map",
		"top_artist_ids", "top_artist_names", "created_at",
	).From("taste_profiles").
		Where(goqu.Ex{"user_id": userID}).
		ToSQL()

	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	profile := &entities.TasteProfile{}
	var genreMap, rootGenreMap []byte

	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&profile.ID,
		&profile.UserID,
		&genreMap,
		&rootGenreMap,
		pq.Array(&profile.TopArtistIDs),
		pq.Array(&profile.TopArtistNames),
		&profile.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("taste profile not found")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get taste profile", err)
	}

	if err := json.Unmarshal(genreMap, &profile.GenreMap); err != nil {
		return nil, apperrors.NewInternalError("failed to decode genre map", err)
	}
	if err := json.Unmarshal(rootGenreMap, &profile.RootGenreMap); err != nil {
		return nil, apperrors.NewInternalError("failed to decode root genre map", err)
	}

	return profile, nil
}

// ListUserIDs returns user IDs that have a stored profile
func (a *TasteProfileAdapter) ListUserIDs(ctx context.Context, limit int) ([]string, error) {
	ds := a.db.Select("user_id").
		From("taste_profiles").
		Order(goqu.I("created_at").Desc())

	if limit > 0 {
		ds = ds.Limit(uint(limit))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list profile user ids", err)
	}
	defer rows.Close()

	var userIDs []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, apperrors.NewInternalError("failed to scan user id", err)
		}
		userIDs = append(userIDs, userID)
	}

	return userIDs, nil
}

// Delete removes the profile for a user
func (a *TasteProfileAdapter) Delete(ctx context.Context, userID string) error {
	query, args, err := a.db.Delete("taste_profiles").
		Where(goqu.Ex{"user_id": userID}).
		ToSQL()

	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete taste profile", err)
	}

	return nil
}
