package eventcatalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundcheckhq/concertmatch/backend/internal/adapters/cache"
	"github.com/soundcheckhq/concertmatch/backend/internal/domain/providers"
	"github.com/soundcheckhq/concertmatch/backend/internal/infrastructure/clients/musicbrainz"
)

const tmEventsPayload = `{
	"_embedded": {
		"events": [
			{
				"id": "tm-1",
				"name": "Night Shapes with guests",
				"url": "https://tickets.example/tm-1",
				"_embedded": {
					"attractions": [
						{"name": "Night Shapes", "upcomingEvents": {"_total": 12}}
					],
					"venues": [
						{"name": "Mohawk", "city": {"name": "Austin"}}
					]
				},
				"classifications": [
					{"genre": {"name": "Rock"}, "subGenre": {"name": "Indie Rock"}},
					{"genre": {"name": "Undefined"}, "subGenre": {"name": ""}}
				],
				"dates": {"start": {"dateTime": "2025-09-12T01:00:00Z", "localDate": "2025-09-11", "localTime": "20:00:00"}},
				"images": [
					{"ratio": "3_2", "width": 640, "url": "https://img.example/3_2.jpg"},
					{"ratio": "16_9", "width": 1024, "url": "https://img.example/16_9.jpg"}
				]
			}
		]
	},
	"page": {"totalElements": 1}
}`

func TestTicketmasterSearch_ParsesEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "music", r.URL.Query().Get("classificationName"))
		assert.Equal(t, "Austin", r.URL.Query().Get("city"))
		assert.Equal(t, "TX", r.URL.Query().Get("stateCode"))
		assert.Equal(t, "miles", r.URL.Query().Get("unit"))
		assert.NotEmpty(t, r.URL.Query().Get("startDateTime"))
		w.Write([]byte(tmEventsPayload))
	}))
	defer server.Close()

	adapter := NewTicketmasterAdapterWithOptions("key", nil, server.URL, server.Client())

	events, err := adapter.SearchEvents(context.Background(), providers.EventSearchParams{
		City:        "Austin, TX",
		RadiusMiles: 25,
		Limit:       50,
	})
	require.NoError(t, err)
	require.Len(t, events, 1)

	event := events[0]
	assert.Equal(t, "tm-1", event.EventID)
	assert.Equal(t, []string{"Night Shapes"}, event.ArtistNames)
	assert.Equal(t, []string{"rock", "indie rock"}, event.Genres)
	require.NotNil(t, event.Popularity)
	assert.Equal(t, 15, *event.Popularity)
	assert.Equal(t, "Mohawk", event.VenueName)
	assert.Equal(t, "Austin", event.VenueCity)
	assert.Equal(t, "2025-09-12T01:00:00Z", event.Date)
	assert.Equal(t, "20:00:00", event.Time)
	assert.Equal(t, "https://img.example/16_9.jpg", event.ImageURL)
	assert.Equal(t, "ticketmaster", event.Source)
}

func TestTicketmasterSearch_CachesResults(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(tmEventsPayload))
	}))
	defer server.Close()

	store := cache.NewMemoryAdapter()
	adapter := NewTicketmasterAdapterWithOptions("key", store, server.URL, server.Client())
	params := providers.EventSearchParams{City: "Austin, TX", RadiusMiles: 25, Limit: 50}

	_, err := adapter.SearchEvents(context.Background(), params)
	require.NoError(t, err)
	_, err = adapter.SearchEvents(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
}

func TestTicketmasterSearch_MissingKey(t *testing.T) {
	adapter := NewTicketmasterAdapter("", nil)

	_, err := adapter.SearchEvents(context.Background(), providers.EventSearchParams{City: "Austin"})
	assert.Error(t, err)
}

func TestTicketmasterSearch_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	adapter := NewTicketmasterAdapterWithOptions("key", nil, server.URL, server.Client())

	_, err := adapter.SearchEvents(context.Background(), providers.EventSearchParams{City: "Austin"})
	assert.Error(t, err)
}

func TestSplitCityState(t *testing.T) {
	city, state := splitCityState("Austin, TX")
	assert.Equal(t, "Austin", city)
	assert.Equal(t, "TX", state)

	city, state = splitCityState("Richmond, Virginia")
	assert.Equal(t, "Richmond", city)
	assert.Equal(t, "VA", state)

	city, state = splitCityState("Chicago")
	assert.Equal(t, "Chicago", city)
	assert.Equal(t, "", state)
}

func TestJambaseSearch_ParsesEvents(t *testing.T) {
	payload := `{
		"events": [
			{
				"id": 12345,
				"name": "Copper Wires Album Release",
				"startDate": "2025-09-20T20:00:00",
				"url": "https://jambase.example/e/12345",
				"ticketUrl": "https://tickets.example/12345",
				"performers": [{"name": "Copper Wires"}, {"name": "Night Shapes"}],
				"venue": {"name": "Hotel Vegas", "location": {"city": "Austin"}},
				"image": "https://img.example/cw.jpg"
			},
			{
				"id": "67890",
				"name": "Secret Warehouse Show",
				"date": "2025-09-21",
				"performers": [],
				"venue": {"name": ""},
				"location": {"city": "Austin"}
			}
		]
	}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Austin", r.URL.Query().Get("geoCity"))
		assert.Equal(t, "today", r.URL.Query().Get("eventDateFrom"))
		w.Write([]byte(payload))
	}))
	defer server.Close()

	adapter := NewJambaseAdapterWithOptions("key", nil, server.URL, server.Client())

	events, err := adapter.SearchEvents(context.Background(), providers.EventSearchParams{
		City:        "Austin",
		RadiusMiles: 25,
		Limit:       50,
	})
	require.NoError(t, err)
	require.Len(t, events, 2)

	first := events[0]
	assert.Equal(t, "12345", first.EventID)
	assert.Equal(t, []string{"Copper Wires", "Night Shapes"}, first.ArtistNames)
	assert.Equal(t, "Hotel Vegas", first.VenueName)
	assert.Equal(t, "Austin", first.VenueCity)
	assert.Equal(t, "https://tickets.example/12345", first.TicketURL)
	assert.Equal(t, "https://img.example/cw.jpg", first.ImageURL)
	assert.Empty(t, first.Genres, "jambase listings carry no genre data")
	assert.Equal(t, "jambase", first.Source)

	// No performers: the event name stands in for the artist
	second := events[1]
	assert.Equal(t, []string{"Secret Warehouse Show"}, second.ArtistNames)
	assert.Equal(t, "Unknown Venue", second.VenueName)
}

func TestFallbackCatalog_UsesFallbackOnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	primary := NewTicketmasterAdapterWithOptions("key", nil, server.URL, server.Client())
	finder := &stubFinder{artists: []musicbrainz.TaggedArtist{{Name: "Night Shapes", Tags: []string{"indie"}}}}
	catalog := &FallbackCatalog{primary: primary, fallback: newTestSynthetic(finder, nil)}

	events, err := catalog.SearchEvents(context.Background(), providers.EventSearchParams{
		City:       "Austin",
		Limit:      10,
		SeedGenres: map[string]float64{"indie": 1.0},
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, syntheticSource, events[0].Source)
	assert.Equal(t, "ticketmaster", catalog.Name())
}

func TestFallbackCatalog_PrefersPrimary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(tmEventsPayload))
	}))
	defer server.Close()

	primary := NewTicketmasterAdapterWithOptions("key", nil, server.URL, server.Client())
	catalog := &FallbackCatalog{primary: primary, fallback: newTestSynthetic(&stubFinder{}, nil)}

	events, err := catalog.SearchEvents(context.Background(), providers.EventSearchParams{City: "Austin", Limit: 50})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "ticketmaster", events[0].Source)
}
