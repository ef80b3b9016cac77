package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/soundcheckhq/concertmatch/backend/internal/domain/entities"
	"github.com/soundcheckhq/concertmatch/backend/internal/domain/repositories"
)

// FavoriteHandler handles saved concert endpoints
type FavoriteHandler struct {
	favoriteRepo repositories.FavoriteRepository
}

// NewFavoriteHandler creates a new favorite handler
func NewFavoriteHandler(favoriteRepo repositories.FavoriteRepository) *FavoriteHandler {
	return &FavoriteHandler{
		favoriteRepo: favoriteRepo,
	}
}

type saveFavoriteRequest struct {
	Concert entities.ConcertMatch `json:"concert"`
}

// SaveFavorite handles POST /api/users/{id}/favorites. The whole match is
// stored so the save survives the listing expiring from the catalog.
func (h *FavoriteHandler) SaveFavorite(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "user ID is required")
		return
	}

	var payload saveFavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if payload.Concert.EventID == "" || payload.Concert.ArtistName == "" {
		respondError(w, http.StatusBadRequest, "concert with event_id and artist_name is required")
		return
	}

	favorite := &entities.Favorite{
		UserID:  userID,
		Concert: payload.Concert,
	}
	if err := h.favoriteRepo.Create(r.Context(), favorite); err != nil {
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, favorite)
}

// ListFavorites handles GET /api/users/{id}/favorites
func (h *FavoriteHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "user ID is required")
		return
	}

	favorites, err := h.favoriteRepo.ListByUser(r.Context(), userID)
	if err != nil {
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"favorites": favorites,
		"count":     len(favorites),
	})
}

// DeleteFavorite handles DELETE /api/favorites/{id}
func (h *FavoriteHandler) DeleteFavorite(w http.ResponseWriter, r *http.Request) {
	favoriteID := r.PathValue("id")
	if favoriteID == "" {
		respondError(w, http.StatusBadRequest, "favorite ID is required")
		return
	}

	if err := h.favoriteRepo.Delete(r.Context(), favoriteID); err != nil {
		respondAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
