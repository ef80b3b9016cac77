package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/soundcheckhq/concertmatch/backend/internal/domain/entities"
	"github.com/soundcheckhq/concertmatch/backend/internal/domain/repositories"
)

const recentRunsDefaultLimit = 50

// DiscoveryService defines the discovery operations used by the handler.
type DiscoveryService interface {
	Discover(ctx context.Context, req *entities.DiscoverRequest) (*entities.DiscoverResponse, error)
}

// DiscoveryHandler handles concert discovery requests.
type DiscoveryHandler struct {
	service   DiscoveryService
	analytics repositories.DiscoveryAnalyticsRepository
}

// NewDiscoveryHandler creates a new discovery handler. analytics may be nil.
func NewDiscoveryHandler(service DiscoveryService, analytics repositories.DiscoveryAnalyticsRepository) *DiscoveryHandler {
	return &DiscoveryHandler{
		service:   service,
		analytics: analytics,
	}
}

// Discover handles POST /api/concerts/discover
func (h *DiscoveryHandler) Discover(w http.ResponseWriter, r *http.Request) {
	var req entities.DiscoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	response, err := h.service.Discover(r.Context(), &req)
	if err != nil {
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, response)
}

// RecentRuns handles GET /api/analytics/discovery-runs
func (h *DiscoveryHandler) RecentRuns(w http.ResponseWriter, r *http.Request) {
	if h.analytics == nil {
		respondError(w, http.StatusNotFound, "run analytics are not enabled")
		return
	}

	limit := recentRunsDefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondError(w, http.StatusBadRequest, "invalid limit parameter")
			return
		}
		limit = parsed
	}

	runs, err := h.analytics.RecentRuns(r.Context(), limit)
	if err != nil {
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	})
}
