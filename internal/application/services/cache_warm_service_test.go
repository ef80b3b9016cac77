package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundcheckhq/concertmatch/backend/internal/domain/entities"
	apperrors "github.com/soundcheckhq/concertmatch/backend/pkg/errors"
)

type stubWarmUserRepo struct {
	users map[string]*entities.User
}

func (s *stubWarmUserRepo) Create(ctx context.Context, user *entities.User) error { return nil }

func (s *stubWarmUserRepo) GetByID(ctx context.Context, id string) (*entities.User, error) {
	if user, ok := s.users[id]; ok {
		return user, nil
	}
	return nil, apperrors.NewNotFoundError("user not found")
}

func (s *stubWarmUserRepo) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	return nil, apperrors.NewNotFoundError("user not found")
}

func (s *stubWarmUserRepo) Update(ctx context.Context, user *entities.User) error { return nil }

func (s *stubWarmUserRepo) Delete(ctx context.Context, id string) error { return nil }

func TestWarmAll_ResolvesUnenrichedArtists(t *testing.T) {
	catalog := catalogWith(entities.ArtistRecord{Name: "Night Shapes", Genres: []string{"indie"}, Popularity: intPtr(20)})
	source := &stubEventCatalog{events: []entities.Event{
		makeEvent("Night Shapes", nil),
		enrichedEvent("Already Known", []string{"rock"}, 50),
	}}
	profile := testProfile()
	users := &stubWarmUserRepo{users: map[string]*entities.User{
		profile.UserID: {ID: profile.UserID, City: "Austin, TX", Radius: 25},
	}}

	svc := NewCacheWarmService(
		&stubProfileRepo{profile: profile},
		users,
		source,
		NewArtistResolverService(catalog, nil, nil, 0),
		2,
	)

	summary, err := svc.WarmAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Cities)
	assert.Equal(t, 2, summary.EventsScanned)
	assert.Equal(t, 1, summary.ArtistsResolved, "enriched listings are not resolved")
	assert.False(t, summary.RateLimited)
	assert.Equal(t, 1, catalog.calls())
}

func TestWarmAll_SkipsUsersWithoutCity(t *testing.T) {
	profile := testProfile()
	users := &stubWarmUserRepo{users: map[string]*entities.User{
		profile.UserID: {ID: profile.UserID},
	}}
	source := &stubEventCatalog{}

	svc := NewCacheWarmService(
		&stubProfileRepo{profile: profile},
		users,
		source,
		NewArtistResolverService(&stubArtistCatalog{}, nil, nil, 0),
		2,
	)

	summary, err := svc.WarmAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Cities)
	assert.Equal(t, 0, summary.EventsScanned)
}

func TestWarmAll_PassesSeedGenresToSource(t *testing.T) {
	profile := testProfile()
	users := &stubWarmUserRepo{users: map[string]*entities.User{
		profile.UserID: {ID: profile.UserID, City: "Austin, TX"},
	}}
	source := &stubEventCatalog{}

	svc := NewCacheWarmService(
		&stubProfileRepo{profile: profile},
		users,
		source,
		NewArtistResolverService(&stubArtistCatalog{}, nil, nil, 0),
		1,
	)

	_, err := svc.WarmAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, profile.RootGenreMap, source.params.SeedGenres)
	assert.Equal(t, 25, source.params.RadiusMiles, "radius defaults when unset")
}
