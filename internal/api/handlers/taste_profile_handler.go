package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/soundcheckhq/concertmatch/backend/internal/domain/entities"
)

// ProfileService defines the taste profile operations used by the handler.
type ProfileService interface {
	Build(ctx context.Context, userID, accessToken string) (*entities.TasteProfile, error)
	Get(ctx context.Context, userID string) (*entities.TasteProfile, error)
}

// TasteProfileHandler handles taste profile endpoints.
type TasteProfileHandler struct {
	service ProfileService
}

// NewTasteProfileHandler creates a new taste profile handler.
func NewTasteProfileHandler(service ProfileService) *TasteProfileHandler {
	return &TasteProfileHandler{service: service}
}

type buildProfileRequest struct {
	UserID string `json:"user_id"`
}

// BuildProfile handles POST /api/taste-profile. The Spotify user token
// arrives as a bearer credential, never in the body.
func (h *TasteProfileHandler) BuildProfile(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		respondError(w, http.StatusUnauthorized, "a bearer access token is required")
		return
	}

	var payload buildProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	profile, err := h.service.Build(r.Context(), strings.TrimSpace(payload.UserID), token)
	if err != nil {
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, profile)
}

// GetProfile handles GET /api/users/{id}/taste-profile
func (h *TasteProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "user ID is required")
		return
	}

	profile, err := h.service.Get(r.Context(), userID)
	if err != nil {
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
}
