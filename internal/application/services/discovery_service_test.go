package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundcheckhq/concertmatch/backend/internal/domain/entities"
	"github.com/soundcheckhq/concertmatch/backend/internal/domain/providers"
)

type stubProfileRepo struct {
	profile  *entities.TasteProfile
	upserted *entities.TasteProfile
}

func (s *stubProfileRepo) Upsert(ctx context.Context, profile *entities.TasteProfile) error {
	s.upserted = profile
	return nil
}

func (s *stubProfileRepo) GetByUserID(ctx context.Context, userID string) (*entities.TasteProfile, error) {
	return s.profile, nil
}

func (s *stubProfileRepo) ListUserIDs(ctx context.Context, limit int) ([]string, error) {
	if s.profile == nil {
		return nil, nil
	}
	return []string{s.profile.UserID}, nil
}

func (s *stubProfileRepo) Delete(ctx context.Context, userID string) error {
	return nil
}

type stubEventCatalog struct {
	events []entities.Event
	err    error
	params providers.EventSearchParams
}

func (s *stubEventCatalog) Name() string { return "stub" }

func (s *stubEventCatalog) SearchEvents(ctx context.Context, params providers.EventSearchParams) ([]entities.Event, error) {
	s.params = params
	return s.events, s.err
}

func newTestDiscoveryService(catalog *stubArtistCatalog, source *stubEventCatalog, profile *entities.TasteProfile, maxResults int) *DiscoveryService {
	return NewDiscoveryService(
		NewPrefilterService(),
		NewMatchScoringService(),
		NewArtistResolverService(catalog, nil, nil, 0),
		source,
		&stubProfileRepo{profile: profile},
		nil,
		nil,
		nil,
		maxResults,
		75,
	)
}

func enrichedEvent(artist string, genres []string, popularity int) entities.Event {
	event := makeEvent(artist, genres)
	event.Popularity = intPtr(popularity)
	return event
}

func TestDiscover_EndToEnd(t *testing.T) {
	catalog := catalogWith(entities.ArtistRecord{Name: "Indie Darling", Genres: []string{"indie rock", "folk"}, Popularity: intPtr(15)})
	source := &stubEventCatalog{events: []entities.Event{
		makeEvent("Indie Darling", nil),
		enrichedEvent("No Match Band", []string{"death metal"}, 90),
	}}
	svc := newTestDiscoveryService(catalog, source, testProfile(), 25)

	resp, err := svc.Discover(context.Background(), &entities.DiscoverRequest{UserID: "test-user", City: "Austin, TX"})
	require.NoError(t, err)

	assert.Equal(t, "stub", resp.Source)
	assert.Equal(t, 2, resp.TotalEventsScanned)
	require.Len(t, resp.Concerts, 1)
	assert.Equal(t, "Indie Darling", resp.Concerts[0].ArtistName)
	assert.Equal(t, 99.0, resp.Concerts[0].MatchScore)
}

func TestDiscover_ValidatesRequest(t *testing.T) {
	svc := newTestDiscoveryService(&stubArtistCatalog{}, &stubEventCatalog{}, testProfile(), 25)

	_, err := svc.Discover(context.Background(), &entities.DiscoverRequest{City: "Austin, TX"})
	assert.Error(t, err)

	_, err = svc.Discover(context.Background(), &entities.DiscoverRequest{UserID: "test-user"})
	assert.Error(t, err)
}

func TestDiscover_RequiresProfile(t *testing.T) {
	svc := newTestDiscoveryService(&stubArtistCatalog{}, &stubEventCatalog{}, nil, 25)

	_, err := svc.Discover(context.Background(), &entities.DiscoverRequest{UserID: "test-user", City: "Austin, TX"})
	assert.Error(t, err)
}

func TestDiscover_PassesProfileHintsToSource(t *testing.T) {
	source := &stubEventCatalog{}
	profile := testProfile()
	svc := newTestDiscoveryService(&stubArtistCatalog{}, source, profile, 25)

	_, err := svc.Discover(context.Background(), &entities.DiscoverRequest{UserID: "test-user", City: "Austin, TX"})
	require.NoError(t, err)

	assert.Equal(t, profile.RootGenreMap, source.params.SeedGenres)
	assert.Equal(t, profile.TopArtistNames, source.params.ExcludeArtists)
	assert.Equal(t, 25, source.params.RadiusMiles, "radius defaults when unset")
}

func TestRank_SkipsKnownArtists(t *testing.T) {
	catalog := &stubArtistCatalog{}
	svc := newTestDiscoveryService(catalog, &stubEventCatalog{}, testProfile(), 25)

	candidates := []entities.Event{
		enrichedEvent("phoebe bridgers", []string{"indie rock"}, 10),
		enrichedEvent("Big Thief", []string{"indie rock"}, 10),
	}
	matches, stats := svc.Rank(context.Background(), candidates, testProfile(), 25)

	assert.Empty(t, matches)
	assert.Equal(t, 2, stats.SkippedKnown)
}

func TestRank_SkipsEventsWithoutArtist(t *testing.T) {
	svc := newTestDiscoveryService(&stubArtistCatalog{}, &stubEventCatalog{}, testProfile(), 25)

	event := makeEvent("ignored", []string{"folk"})
	event.ArtistNames = nil
	matches, stats := svc.Rank(context.Background(), []entities.Event{event}, testProfile(), 25)

	assert.Empty(t, matches)
	assert.Equal(t, 1, stats.SkippedNoArtist)
}

func TestRank_EnrichedEventsSkipResolution(t *testing.T) {
	catalog := &stubArtistCatalog{}
	svc := newTestDiscoveryService(catalog, &stubEventCatalog{}, testProfile(), 25)

	candidates := []entities.Event{enrichedEvent("Folk Act", []string{"folk"}, 50)}
	matches, stats := svc.Rank(context.Background(), candidates, testProfile(), 25)

	require.Len(t, matches, 1)
	assert.Equal(t, 0, catalog.calls(), "pre-enriched events must not hit the catalog")
	assert.Equal(t, 0, stats.Resolutions)
}

func TestRank_ResolvesAndGapFills(t *testing.T) {
	catalog := catalogWith(entities.ArtistRecord{
		Name:         "Folk Act",
		Genres:       []string{"folk"},
		Popularity:   intPtr(10),
		CanonicalURL: "https://open.spotify.com/artist/abc",
	})
	svc := newTestDiscoveryService(catalog, &stubEventCatalog{}, testProfile(), 25)

	candidates := []entities.Event{makeEvent("Folk Act", nil)}
	matches, stats := svc.Rank(context.Background(), candidates, testProfile(), 25)

	require.Len(t, matches, 1)
	assert.Equal(t, 1, catalog.calls())
	assert.Equal(t, 1, stats.Resolutions)
	assert.Equal(t, "folk", matches[0].GenreDescription)
	assert.Equal(t, "https://open.spotify.com/artist/abc", matches[0].ArtistURL)
	assert.Equal(t, 10, *matches[0].Popularity)
}

func TestRank_EventGenresWinOverResolved(t *testing.T) {
	// The event already names genres; only the missing popularity is filled in
	catalog := catalogWith(entities.ArtistRecord{
		Name:       "Folk Act",
		Genres:     []string{"death metal"},
		Popularity: intPtr(10),
	})
	svc := newTestDiscoveryService(catalog, &stubEventCatalog{}, testProfile(), 25)

	candidates := []entities.Event{makeEvent("Folk Act", []string{"folk"})}
	matches, _ := svc.Rank(context.Background(), candidates, testProfile(), 25)

	require.Len(t, matches, 1)
	assert.Equal(t, "folk", matches[0].GenreDescription)
	assert.Equal(t, 10, *matches[0].Popularity)
}

func TestRank_DropsLowScores(t *testing.T) {
	svc := newTestDiscoveryService(&stubArtistCatalog{}, &stubEventCatalog{}, testProfile(), 25)

	candidates := []entities.Event{enrichedEvent("No Match Band", []string{"death metal"}, 90)}
	matches, _ := svc.Rank(context.Background(), candidates, testProfile(), 25)

	assert.Empty(t, matches)
}

func TestRank_SortsByScoreThenDate(t *testing.T) {
	svc := newTestDiscoveryService(&stubArtistCatalog{}, &stubEventCatalog{}, testProfile(), 25)

	strong := enrichedEvent("Strong Match", []string{"indie rock", "folk"}, 80)
	medium := enrichedEvent("Medium Match", []string{"folk"}, 80)
	laterTie := enrichedEvent("Later Tie", []string{"folk"}, 80)
	laterTie.Date = "2025-09-01T20:00:00"

	matches, _ := svc.Rank(context.Background(), []entities.Event{laterTie, medium, strong}, testProfile(), 25)
	require.Len(t, matches, 3)
	assert.Equal(t, "Strong Match", matches[0].ArtistName)
	assert.Equal(t, "Medium Match", matches[1].ArtistName)
	assert.Equal(t, "Later Tie", matches[2].ArtistName)
}

func TestRank_TruncatesToMaxResults(t *testing.T) {
	svc := newTestDiscoveryService(&stubArtistCatalog{}, &stubEventCatalog{}, testProfile(), 25)

	candidates := []entities.Event{
		enrichedEvent("Band A", []string{"folk"}, 80),
		enrichedEvent("Band B", []string{"folk"}, 80),
		enrichedEvent("Band C", []string{"folk"}, 80),
	}
	matches, stats := svc.Rank(context.Background(), candidates, testProfile(), 2)

	assert.Len(t, matches, 2)
	assert.Equal(t, 2, stats.Matched)
}

func TestRank_RateLimitedSessionReported(t *testing.T) {
	catalog := &stubArtistCatalog{
		searchFn: func(string) ([]entities.ArtistRecord, error) {
			return nil, &providers.RateLimitError{}
		},
	}
	svc := newTestDiscoveryService(catalog, &stubEventCatalog{}, testProfile(), 25)

	candidates := []entities.Event{makeEvent("Unknown Band", nil)}
	_, stats := svc.Rank(context.Background(), candidates, testProfile(), 25)

	assert.True(t, stats.RateLimited)
}

func TestGenreDescription(t *testing.T) {
	assert.Equal(t, "Genre unknown", genreDescription(nil))
	assert.Equal(t, "folk", genreDescription([]string{"folk"}))
	assert.Equal(t, "a, b, c", genreDescription([]string{"a", "b", "c", "d"}))
}
