package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundcheckhq/concertmatch/backend/internal/domain/entities"
)

func topArtistsCatalog(byRange map[string][]entities.ArtistRecord) *stubArtistCatalog {
	return &stubArtistCatalog{
		topFn: func(timeRange string) ([]entities.ArtistRecord, error) {
			return byRange[timeRange], nil
		},
	}
}

func TestBuild_NormalizesWeights(t *testing.T) {
	catalog := topArtistsCatalog(map[string][]entities.ArtistRecord{
		"short_term": {
			{ID: "a1", Name: "Artist One", Genres: []string{"indie rock", "folk"}},
			{ID: "a2", Name: "Artist Two", Genres: []string{"indie rock"}},
		},
		"medium_term": {
			{ID: "a3", Name: "Artist Three", Genres: []string{"dream pop"}},
		},
	})
	repo := &stubProfileRepo{}
	svc := NewTasteProfileService(catalog, repo)

	profile, err := svc.Build(context.Background(), "user-1", "token")
	require.NoError(t, err)

	maxWeight := 0.0
	for _, weight := range profile.GenreMap {
		assert.LessOrEqual(t, weight, 1.0)
		if weight > maxWeight {
			maxWeight = weight
		}
	}
	assert.Equal(t, 1.0, maxWeight)
	assert.Equal(t, 1.0, profile.GenreMap["indie rock"], "heaviest genre anchors the scale")
	assert.NotNil(t, repo.upserted)
}

func TestBuild_ShortTermOutweighsMediumTerm(t *testing.T) {
	// The same genre at the same position weighs more in the recent range
	catalog := topArtistsCatalog(map[string][]entities.ArtistRecord{
		"short_term": {
			{ID: "a1", Name: "Recent", Genres: []string{"folk"}},
			{ID: "a2", Name: "Also Recent", Genres: []string{"techno"}},
		},
		"medium_term": {
			{ID: "a3", Name: "Older", Genres: []string{"jazz"}},
		},
	})
	svc := NewTasteProfileService(catalog, &stubProfileRepo{})

	profile, err := svc.Build(context.Background(), "user-1", "token")
	require.NoError(t, err)

	assert.Greater(t, profile.GenreMap["folk"], profile.GenreMap["jazz"])
}

func TestBuild_DedupsArtistsAcrossRanges(t *testing.T) {
	catalog := topArtistsCatalog(map[string][]entities.ArtistRecord{
		"short_term": {
			{ID: "a1", Name: "Shared Artist", Genres: []string{"folk"}},
			{ID: "a2", Name: "Short Only", Genres: []string{"folk"}},
		},
		"medium_term": {
			{ID: "a1", Name: "Shared Artist", Genres: []string{"folk"}},
			{ID: "a3", Name: "Medium Only", Genres: []string{"folk"}},
		},
	})
	svc := NewTasteProfileService(catalog, &stubProfileRepo{})

	profile, err := svc.Build(context.Background(), "user-1", "token")
	require.NoError(t, err)

	assert.Equal(t, []string{"a1", "a2", "a3"}, profile.TopArtistIDs)
	assert.Equal(t, []string{"Shared Artist", "Short Only", "Medium Only"}, profile.TopArtistNames)
}

func TestBuild_ExtractsRootGenres(t *testing.T) {
	catalog := topArtistsCatalog(map[string][]entities.ArtistRecord{
		"short_term": {
			{ID: "a1", Name: "Artist", Genres: []string{"Australian Garage Punk"}},
		},
	})
	svc := NewTasteProfileService(catalog, &stubProfileRepo{})

	profile, err := svc.Build(context.Background(), "user-1", "token")
	require.NoError(t, err)

	assert.Contains(t, profile.GenreMap, "australian garage punk")
	assert.Contains(t, profile.RootGenreMap, "garage")
	assert.Contains(t, profile.RootGenreMap, "punk")
}

func TestBuild_RequiresUserAndToken(t *testing.T) {
	svc := NewTasteProfileService(&stubArtistCatalog{}, &stubProfileRepo{})

	_, err := svc.Build(context.Background(), "", "token")
	assert.Error(t, err)

	_, err = svc.Build(context.Background(), "user-1", "")
	assert.Error(t, err)
}

func TestGet_MissingProfile(t *testing.T) {
	svc := NewTasteProfileService(&stubArtistCatalog{}, &stubProfileRepo{})

	_, err := svc.Get(context.Background(), "user-1")
	assert.Error(t, err)
}

func TestAccumulateGenres_PositionWeightFloors(t *testing.T) {
	artists := make([]entities.ArtistRecord, 60)
	for i := range artists {
		artists[i] = entities.ArtistRecord{ID: "x", Name: "X", Genres: []string{"folk"}}
	}

	genreMap := map[string]float64{}
	rootMap := map[string]float64{}
	accumulateGenres(artists, 1.0, genreMap, rootMap)

	// Index 54 onward contributes the 0.2 floor: total is the decaying head
	// plus the flat tail, all of it for "folk".
	assert.Greater(t, genreMap["folk"], 0.0)

	single := map[string]float64{}
	accumulateGenres(artists[:1], 1.0, single, map[string]float64{})
	assert.Equal(t, 1.0, single["folk"])
}
