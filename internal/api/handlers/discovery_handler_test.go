package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundcheckhq/concertmatch/backend/internal/api/handlers"
	"github.com/soundcheckhq/concertmatch/backend/internal/domain/entities"
	apperrors "github.com/soundcheckhq/concertmatch/backend/pkg/errors"
)

type stubDiscoveryService struct {
	response *entities.DiscoverResponse
	err      error
	gotReq   *entities.DiscoverRequest
}

func (s *stubDiscoveryService) Discover(ctx context.Context, req *entities.DiscoverRequest) (*entities.DiscoverResponse, error) {
	s.gotReq = req
	return s.response, s.err
}

type stubAnalyticsRepo struct {
	runs []*entities.DiscoveryRun
	err  error
}

func (s *stubAnalyticsRepo) LogRun(ctx context.Context, run *entities.DiscoveryRun) error {
	return nil
}

func (s *stubAnalyticsRepo) RecentRuns(ctx context.Context, limit int) ([]*entities.DiscoveryRun, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.runs) > limit {
		return s.runs[:limit], nil
	}
	return s.runs, nil
}

func TestDiscoveryHandler_Discover_Success(t *testing.T) {
	service := &stubDiscoveryService{
		response: &entities.DiscoverResponse{
			Concerts: []entities.ConcertMatch{
				{EventID: "ev-1", ArtistName: "Night Shapes", MatchScore: 87.5},
			},
			TotalEventsScanned: 40,
			Source:             "ticketmaster",
		},
	}
	handler := handlers.NewDiscoveryHandler(service, nil)

	body := `{"user_id":"u1","city":"Austin, TX","radius":25}`
	req := httptest.NewRequest("POST", "/api/concerts/discover", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.Discover(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, service.gotReq)
	assert.Equal(t, "u1", service.gotReq.UserID)
	assert.Equal(t, "Austin, TX", service.gotReq.City)

	var response entities.DiscoverResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	require.Len(t, response.Concerts, 1)
	assert.Equal(t, "Night Shapes", response.Concerts[0].ArtistName)
	assert.Equal(t, 40, response.TotalEventsScanned)
}

func TestDiscoveryHandler_Discover_InvalidPayload(t *testing.T) {
	handler := handlers.NewDiscoveryHandler(&stubDiscoveryService{}, nil)

	req := httptest.NewRequest("POST", "/api/concerts/discover", strings.NewReader("{not json"))
	w := httptest.NewRecorder()

	handler.Discover(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDiscoveryHandler_Discover_ErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", apperrors.NewValidationError("user_id and city are required"), http.StatusBadRequest},
		{"missing profile", apperrors.NewNotFoundError("no taste profile for user"), http.StatusNotFound},
		{"catalog down", apperrors.NewExternalError("event catalog search failed", nil), http.StatusBadGateway},
		{"internal", apperrors.NewInternalError("boom", nil), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := handlers.NewDiscoveryHandler(&stubDiscoveryService{err: tc.err}, nil)

			req := httptest.NewRequest("POST", "/api/concerts/discover", strings.NewReader(`{"user_id":"u1","city":"Austin"}`))
			w := httptest.NewRecorder()

			handler.Discover(w, req)

			assert.Equal(t, tc.wantStatus, w.Code)
		})
	}
}

func TestDiscoveryHandler_RecentRuns(t *testing.T) {
	analytics := &stubAnalyticsRepo{runs: []*entities.DiscoveryRun{
		{ID: "r1", City: "Austin", Matched: 12},
		{ID: "r2", City: "Denver", Matched: 3},
	}}
	handler := handlers.NewDiscoveryHandler(&stubDiscoveryService{}, analytics)

	req := httptest.NewRequest("GET", "/api/analytics/discovery-runs", nil)
	w := httptest.NewRecorder()

	handler.RecentRuns(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Runs  []entities.DiscoveryRun `json:"runs"`
		Count int                     `json:"count"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, 2, response.Count)
	assert.Equal(t, "r1", response.Runs[0].ID)
}

func TestDiscoveryHandler_RecentRuns_LimitParam(t *testing.T) {
	analytics := &stubAnalyticsRepo{runs: []*entities.DiscoveryRun{{ID: "r1"}, {ID: "r2"}}}
	handler := handlers.NewDiscoveryHandler(&stubDiscoveryService{}, analytics)

	req := httptest.NewRequest("GET", "/api/analytics/discovery-runs?limit=1", nil)
	w := httptest.NewRecorder()
	handler.RecentRuns(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var response struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, 1, response.Count)

	req = httptest.NewRequest("GET", "/api/analytics/discovery-runs?limit=zero", nil)
	w = httptest.NewRecorder()
	handler.RecentRuns(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDiscoveryHandler_RecentRuns_Disabled(t *testing.T) {
	handler := handlers.NewDiscoveryHandler(&stubDiscoveryService{}, nil)

	req := httptest.NewRequest("GET", "/api/analytics/discovery-runs", nil)
	w := httptest.NewRecorder()

	handler.RecentRuns(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
