package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/soundcheckhq/concertmatch/backend/internal/domain/entities"
	"github.com/soundcheckhq/concertmatch/backend/internal/domain/repositories"
)

// UserHandler handles user account endpoints
type UserHandler struct {
	userRepo repositories.UserRepository
}

// NewUserHandler creates a new user handler
func NewUserHandler(userRepo repositories.UserRepository) *UserHandler {
	return &UserHandler{
		userRepo: userRepo,
	}
}

type createUserRequest struct {
	Name             string  `json:"name"`
	Email            string  `json:"email"`
	ConcertsPerMonth int     `json:"concerts_per_month"`
	TicketBudget     float64 `json:"ticket_budget"`
	City             string  `json:"city"`
	Radius           int     `json:"radius"`
}

// CreateUser handles POST /api/users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var payload createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	payload.Name = strings.TrimSpace(payload.Name)
	payload.Email = strings.ToLower(strings.TrimSpace(payload.Email))

	if payload.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if payload.Email == "" || !strings.Contains(payload.Email, "@") {
		respondError(w, http.StatusBadRequest, "a valid email is required")
		return
	}

	if existing, err := h.userRepo.GetByEmail(r.Context(), payload.Email); err == nil && existing != nil {
		respondError(w, http.StatusConflict, "a user with this email already exists")
		return
	}

	now := time.Now().UTC()
	user := &entities.User{
		ID:               uuid.New().String(),
		Name:             payload.Name,
		Email:            payload.Email,
		ConcertsPerMonth: payload.ConcertsPerMonth,
		TicketBudget:     payload.TicketBudget,
		City:             strings.TrimSpace(payload.City),
		Radius:           payload.Radius,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if user.Radius <= 0 {
		user.Radius = 25
	}

	if err := h.userRepo.Create(r.Context(), user); err != nil {
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, user)
}

// GetUser handles GET /api/users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "user ID is required")
		return
	}

	user, err := h.userRepo.GetByID(r.Context(), userID)
	if err != nil {
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// UpdateUser handles PATCH /api/users/{id}
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "user ID is required")
		return
	}

	var update entities.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if update.Email != nil {
		normalized := strings.ToLower(strings.TrimSpace(*update.Email))
		if normalized == "" || !strings.Contains(normalized, "@") {
			respondError(w, http.StatusBadRequest, "a valid email is required")
			return
		}
		update.Email = &normalized
	}
	if update.Radius != nil && *update.Radius <= 0 {
		respondError(w, http.StatusBadRequest, "radius must be positive")
		return
	}

	user, err := h.userRepo.GetByID(r.Context(), userID)
	if err != nil {
		respondAppError(w, err)
		return
	}

	update.Apply(user)
	user.UpdatedAt = time.Now().UTC()

	if err := h.userRepo.Update(r.Context(), user); err != nil {
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// DeleteUser handles DELETE /api/users/{id}
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "user ID is required")
		return
	}

	if err := h.userRepo.Delete(r.Context(), userID); err != nil {
		respondAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
