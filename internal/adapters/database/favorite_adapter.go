package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/soundcheckhq/concertmatch/backend/internal/domain/entities"
	"github.com/soundcheckhq/concertmatch/backend/internal/domain/repositories"
	"github.com/soundcheckhq/concertmatch/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/soundcheckhq/concertmatch/backend/pkg/errors"
)

// FavoriteAdapter implements FavoriteRepository. The saved concert match is
// stored whole as JSONB so favorites survive events aging out of catalogs.
type FavoriteAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewFavoriteAdapter creates a new favorite adapter
func NewFavoriteAdapter(client *postgres.Client) repositories.FavoriteRepository {
	return &FavoriteAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create saves a favorite
func (a *FavoriteAdapter) Create(ctx context.Context, favorite *entities.Favorite) error {
	if favorite.ID == "" {
		favorite.ID = uuid.New().String()
	}
	if favorite.SavedAt.IsZero() {
		favorite.SavedAt = time.Now()
	}

	concert, err := json.Marshal(favorite.Concert)
	if err != nil {
		return apperrors.NewInternalError("failed to encode concert", err)
	}

	record := goqu.Record{
		"id":       favorite.ID,
		"user_id":  favorite.UserID,
		"concert":  concert,
		"saved_at": favorite.SavedAt,
	}

	query, args, err := a.db.Insert("favorites").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to create favorite", err)
	}

	return nil
}

// ListByUser retrieves a user's favorites, newest first
func (a *FavoriteAdapter) ListByUser(ctx context.Context, userID string) ([]*entities.Favorite, error) {
	query, args, err := a.db.Select("id", "user_id", "concert", "saved_at").
		From("favorites").
		Where(goqu.Ex{"user_id": userID}).
		Order(goqu.I("saved_at").Desc()).
		ToSQL()

	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list favorites", err)
	}
	defer rows.Close()

	var favorites []*entities.Favorite
	for rows.Next() {
		favorite := &entities.Favorite{}
		var concert []byte

		err := rows.Scan(
			&favorite.ID,
			&favorite.UserID,
			&concert,
			&favorite.SavedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan favorite", err)
		}

		if err := json.Unmarshal(concert, &favorite.Concert); err != nil {
			return nil, apperrors.NewInternalError("failed to decode concert", err)
		}

		favorites = append(favorites, favorite)
	}

	return favorites, nil
}

// Delete removes a favorite by ID
func (a *FavoriteAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.db.Delete("favorites").
		Where(goqu.Ex{"id": id}).
		ToSQL()

	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete favorite", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("favorite with id %s not found", id))
	}

	return nil
}
