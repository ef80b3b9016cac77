package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundcheckhq/concertmatch/backend/internal/domain/entities"
)

func testProfile() *entities.TasteProfile {
	return &entities.TasteProfile{
		UserID: "test-user",
		GenreMap: map[string]float64{
			"indie rock":  0.8,
			"folk":        0.6,
			"alternative": 0.5,
			"dream pop":   0.3,
		},
		RootGenreMap: map[string]float64{
			"indie": 0.8,
			"folk":  0.6,
		},
		TopArtistNames: []string{"Phoebe Bridgers", "Big Thief", "Waxahatchee"},
		TopArtistIDs:   []string{"id1", "id2", "id3"},
	}
}

func makeEvent(artist string, genres []string) entities.Event {
	return entities.Event{
		EventID:     entities.DeriveEventID(artist, "Austin, TX", "2025-08-15T20:00:00"),
		ArtistNames: []string{artist},
		Genres:      genres,
		VenueName:   "Test Venue",
		VenueCity:   "Austin, TX",
		Date:        "2025-08-15T20:00:00",
		Source:      "jambase",
	}
}

func TestPrefilter_SortsByScore(t *testing.T) {
	svc := NewPrefilterService()
	events := []entities.Event{
		makeEvent("No Match Band", []string{"metal", "death metal"}),
		makeEvent("Indie Darling", []string{"indie rock", "folk"}),
		makeEvent("Dream Artist", []string{"dream pop", "shoegaze"}),
	}

	result := svc.Prefilter(events, testProfile(), 10)
	require.Len(t, result, 3)
	assert.Equal(t, "Indie Darling", result[0].ArtistNames[0])
}

func TestPrefilter_RespectsCandidateCap(t *testing.T) {
	svc := NewPrefilterService()
	events := make([]entities.Event, 0, 200)
	for i := 0; i < 200; i++ {
		events = append(events, makeEvent(fmt.Sprintf("Band %d", i), []string{"rock"}))
	}

	assert.Len(t, svc.Prefilter(events, testProfile(), 75), 75)
	assert.Len(t, svc.Prefilter(events, testProfile(), 10), 10)
}

func TestPrefilter_FewerEventsThanCap(t *testing.T) {
	svc := NewPrefilterService()
	events := make([]entities.Event, 0, 5)
	for i := 0; i < 5; i++ {
		events = append(events, makeEvent(fmt.Sprintf("Band %d", i), []string{"indie rock"}))
	}

	assert.Len(t, svc.Prefilter(events, testProfile(), 75), 5)
}

func TestPrefilter_StableTieOrdering(t *testing.T) {
	svc := NewPrefilterService()
	// 300 identical events: beyond index 250 the position boost bottoms out
	// at zero, so the tail is all exact ties. Input order must survive.
	events := make([]entities.Event, 0, 300)
	for i := 0; i < 300; i++ {
		event := makeEvent("Same Band", []string{"folk"})
		event.EventID = fmt.Sprintf("evt-%03d", i)
		events = append(events, event)
	}

	result := svc.Prefilter(events, testProfile(), 300)
	require.Len(t, result, 300)
	for i, event := range result {
		assert.Equal(t, fmt.Sprintf("evt-%03d", i), event.EventID)
	}
}

func TestGenreScore_DirectHitBeatsMiss(t *testing.T) {
	svc := NewPrefilterService()
	userMap := map[string]float64{"indie rock": 0.8, "folk": 0.5}

	hit := svc.genreScore([]string{"indie rock"}, userMap)
	miss := svc.genreScore([]string{"death metal"}, userMap)
	assert.Greater(t, hit, miss)
	assert.Equal(t, 0.8*exactGenreFactor, hit)
}

func TestGenreScore_PartialMatchScoresLow(t *testing.T) {
	svc := NewPrefilterService()
	userMap := map[string]float64{"indie rock": 0.8}

	partial := svc.genreScore([]string{"indie"}, userMap)
	assert.Greater(t, partial, 0.0)
	assert.Less(t, partial, 0.8*exactGenreFactor)
}

func TestGenreScore_CappedAtFifty(t *testing.T) {
	svc := NewPrefilterService()
	userMap := map[string]float64{"rock": 1.0, "indie rock": 1.0, "folk": 1.0}

	score := svc.genreScore([]string{"rock", "indie rock", "folk"}, userMap)
	assert.Equal(t, prefilterGenreCap, score)
}

func TestArtistScore_KnownArtistBeatsUnknown(t *testing.T) {
	svc := NewPrefilterService()
	known := []string{"phoebe bridgers", "big thief"}

	match := svc.artistScore([]string{"Phoebe Bridgers"}, known)
	noMatch := svc.artistScore([]string{"Totally Unknown"}, known)
	assert.Greater(t, match, noMatch)
	assert.Equal(t, prefilterArtistCap, match)
}

func TestHeadlinerBoost_Decreases(t *testing.T) {
	svc := NewPrefilterService()
	assert.Greater(t, svc.headlinerBoost(0), svc.headlinerBoost(100))
	assert.Equal(t, 0.0, svc.headlinerBoost(1000))
}
