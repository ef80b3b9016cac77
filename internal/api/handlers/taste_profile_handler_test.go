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

type stubProfileService struct {
	profile  *entities.TasteProfile
	err      error
	gotUser  string
	gotToken string
}

func (s *stubProfileService) Build(ctx context.Context, userID, accessToken string) (*entities.TasteProfile, error) {
	s.gotUser = userID
	s.gotToken = accessToken
	return s.profile, s.err
}

func (s *stubProfileService) Get(ctx context.Context, userID string) (*entities.TasteProfile, error) {
	s.gotUser = userID
	return s.profile, s.err
}

func TestTasteProfileHandler_BuildProfile_Success(t *testing.T) {
	service := &stubProfileService{profile: &entities.TasteProfile{
		UserID:   "u1",
		GenreMap: map[string]float64{"indie rock": 1.0},
	}}
	handler := handlers.NewTasteProfileHandler(service)

	req := httptest.NewRequest("POST", "/api/taste-profile", strings.NewReader(`{"user_id":"u1"}`))
	req.Header.Set("Authorization", "Bearer spotify-token")
	w := httptest.NewRecorder()

	handler.BuildProfile(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "u1", service.gotUser)
	assert.Equal(t, "spotify-token", service.gotToken)

	var profile entities.TasteProfile
	require.NoError(t, json.NewDecoder(w.Body).Decode(&profile))
	assert.Equal(t, 1.0, profile.GenreMap["indie rock"])
}

func TestTasteProfileHandler_BuildProfile_MissingToken(t *testing.T) {
	service := &stubProfileService{}
	handler := handlers.NewTasteProfileHandler(service)

	req := httptest.NewRequest("POST", "/api/taste-profile", strings.NewReader(`{"user_id":"u1"}`))
	w := httptest.NewRecorder()

	handler.BuildProfile(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, service.gotToken)
}

func TestTasteProfileHandler_BuildProfile_UpstreamUnauthorized(t *testing.T) {
	service := &stubProfileService{err: apperrors.NewExternalError("failed to fetch short-term top artists", nil)}
	handler := handlers.NewTasteProfileHandler(service)

	req := httptest.NewRequest("POST", "/api/taste-profile", strings.NewReader(`{"user_id":"u1"}`))
	req.Header.Set("Authorization", "Bearer expired")
	w := httptest.NewRecorder()

	handler.BuildProfile(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestTasteProfileHandler_GetProfile(t *testing.T) {
	service := &stubProfileService{profile: &entities.TasteProfile{UserID: "u1"}}
	handler := handlers.NewTasteProfileHandler(service)

	req := httptest.NewRequest("GET", "/api/users/u1/taste-profile", nil)
	req.SetPathValue("id", "u1")
	w := httptest.NewRecorder()

	handler.GetProfile(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", service.gotUser)
}

func TestTasteProfileHandler_GetProfile_NotFound(t *testing.T) {
	service := &stubProfileService{err: apperrors.NewNotFoundError("no taste profile for user")}
	handler := handlers.NewTasteProfileHandler(service)

	req := httptest.NewRequest("GET", "/api/users/nope/taste-profile", nil)
	req.SetPathValue("id", "nope")
	w := httptest.NewRecorder()

	handler.GetProfile(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
