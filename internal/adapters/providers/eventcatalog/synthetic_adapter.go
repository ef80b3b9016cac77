package eventcatalog

import (
	"context"
	"math/rand"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/soundcheckhq/concertmatch/backend/internal/domain/entities"
	"github.com/soundcheckhq/concertmatch/backend/internal/domain/providers"
	"github.com/soundcheckhq/concertmatch/backend/internal/infrastructure/clients/musicbrainz"
	"github.com/soundcheckhq/concertmatch/backend/internal/infrastructure/observability"
)

const (
	syntheticSource        = "musicbrainz_discovery"
	discoveryArtistLimit   = 30
	defaultEventWindowDays = 90
	maxSeedTags            = 6
)

// venue inventories per market; unknown cities fall back to the default set
type syntheticVenue struct {
	Name     string
	Capacity int
}

var venueDB = map[string][]syntheticVenue{
	"default": {
		{"The Underground", 200},
		{"Red Room", 150},
		{"The Parish", 300},
		{"Vinyl Lounge", 100},
		{"Warehouse Live", 500},
		{"The Basement", 180},
		{"Songbird Theater", 250},
		{"Electric Owl", 350},
		{"The Hideout", 120},
		{"Main Street Music Hall", 400},
	},
	"austin": {
		{"Mohawk", 600},
		{"Hotel Vegas", 250},
		{"The Parish", 500},
		{"Cheer Up Charlies", 200},
		{"Empire Control Room", 400},
		{"Hole in the Wall", 100},
		{"Stubb's Waller Creek Amphitheater", 2100},
		{"Continental Club", 200},
	},
	"new york": {
		{"Bowery Ballroom", 575},
		{"Mercury Lounge", 250},
		{"Baby's All Right", 300},
		{"Brooklyn Steel", 1800},
		{"Rough Trade NYC", 250},
		{"Le Poisson Rouge", 700},
		{"Elsewhere", 500},
		{"Music Hall of Williamsburg", 550},
	},
	"los angeles": {
		{"The Echo", 350},
		{"The Troubadour", 500},
		{"Zebulon", 200},
		{"Lodge Room", 500},
		{"The Moroccan Lounge", 250},
		{"Teragram Ballroom", 800},
		{"The Regent Theater", 1000},
	},
	"nashville": {
		{"The Basement East", 600},
		{"Exit/In", 500},
		{"The 5 Spot", 150},
		{"Mercy Lounge", 500},
		{"3rd & Lindsley", 400},
		{"The Station Inn", 200},
	},
	"chicago": {
		{"Empty Bottle", 400},
		{"Lincoln Hall", 507},
		{"Schubas Tavern", 165},
		{"Metro", 1100},
		{"Sleeping Village", 250},
		{"Thalia Hall", 900},
	},
	"portland": {
		{"Doug Fir Lounge", 300},
		{"Mississippi Studios", 250},
		{"Wonder Ballroom", 800},
		{"Polaris Hall", 500},
		{"The Aladdin Theater", 620},
	},
	"seattle": {
		{"Neumos", 650},
		{"The Crocodile", 550},
		{"Tractor Tavern", 300},
		{"The Showbox", 1100},
		{"Barboza", 200},
	},
	"denver": {
		{"Globe Hall", 200},
		{"Larimer Lounge", 250},
		{"Bluebird Theater", 550},
		{"Gothic Theatre", 1100},
		{"Lost Lake Lounge", 200},
	},
}

// artistFinder is the slice of the MusicBrainz client the adapter uses
type artistFinder interface {
	FindArtistsByTags(ctx context.Context, tags []string, excludeNames []string, limit int) []musicbrainz.TaggedArtist
}

// SyntheticAdapter implements EventCatalog without a listings API: it
// discovers artists near the user's taste via MusicBrainz tag search and
// fabricates plausible local listings for them. Used as the fallback when
// neither Jambase nor Ticketmaster is configured or reachable.
type SyntheticAdapter struct {
	finder  artistFinder
	catalog providers.ArtistCatalog
	now     func() time.Time
	rng     *rand.Rand
}

// NewSyntheticAdapter creates a new synthetic catalog. catalog may be nil;
// without it events carry only MusicBrainz tags and no popularity.
func NewSyntheticAdapter(finder *musicbrainz.Client, catalog providers.ArtistCatalog) *SyntheticAdapter {
	return newSyntheticAdapter(finder, catalog, time.Now, rand.New(rand.NewSource(time.Now().UnixNano())))
}

func newSyntheticAdapter(finder artistFinder, catalog providers.ArtistCatalog, now func() time.Time, rng *rand.Rand) *SyntheticAdapter {
	return &SyntheticAdapter{
		finder:  finder,
		catalog: catalog,
		now:     now,
		rng:     rng,
	}
}

// Name identifies the source in logs and result attribution
func (a *SyntheticAdapter) Name() string { return syntheticSource }

// SearchEvents discovers artists matching the seed genres and generates
// listings for them in the requested city.
func (a *SyntheticAdapter) SearchEvents(ctx context.Context, params providers.EventSearchParams) ([]entities.Event, error) {
	logger := observability.LoggerFromContext(ctx)

	if len(params.SeedGenres) == 0 {
		return nil, nil
	}

	seedTags := topSeedTags(params.SeedGenres, maxSeedTags)
	discovered := a.finder.FindArtistsByTags(ctx, seedTags, params.ExcludeArtists, discoveryArtistLimit)
	if len(discovered) == 0 {
		return nil, nil
	}

	candidates := rankByTagOverlap(discovered, params.SeedGenres)
	limit := params.Limit
	if limit <= 0 {
		limit = discoveryArtistLimit
	}
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	venues := venuesForCity(params.City)
	dates := a.generateEventDates(len(candidates), params.DateFrom, params.DateTo)

	events := make([]entities.Event, 0, len(candidates))
	for i, artist := range candidates {
		genres := artist.Tags
		var popularity *int
		imageURL := ""
		artistURL := ""

		// Best effort enrichment; a throttled or failing catalog just means
		// the event goes through resolution downstream.
		if a.catalog != nil {
			if records, err := a.catalog.SearchArtists(ctx, artist.Name, 1); err == nil && len(records) > 0 {
				record := records[0]
				popularity = record.Popularity
				imageURL = record.ImageURL
				artistURL = record.CanonicalURL
				genres = mergeGenres(genres, record.Genres)
			}
		}

		venue := venues[i%len(venues)]
		date := dates[i]

		events = append(events, entities.Event{
			EventID:     entities.DeriveEventID(artist.Name, params.City, date),
			ArtistNames: []string{artist.Name},
			Genres:      genres,
			Popularity:  popularity,
			VenueName:   venue.Name,
			VenueCity:   params.City,
			Date:        date,
			TicketURL:   ticketSearchURL(artist.Name),
			EventURL:    artistURL,
			ArtistURL:   artistURL,
			ImageURL:    imageURL,
			Source:      syntheticSource,
		})
	}

	logger.Info().
		Int("discovered", len(discovered)).
		Int("generated", len(events)).
		Str("city", params.City).
		Msg("synthetic event discovery completed")

	return events, nil
}

// topSeedTags returns the heaviest seed genres, ties broken alphabetically
func topSeedTags(seedGenres map[string]float64, n int) []string {
	tags := make([]string, 0, len(seedGenres))
	for tag := range seedGenres {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		wi, wj := seedGenres[tags[i]], seedGenres[tags[j]]
		if wi != wj {
			return wi > wj
		}
		return tags[i] < tags[j]
	})
	if len(tags) > n {
		tags = tags[:n]
	}
	return tags
}

// rankByTagOverlap orders discovered artists by how well their tags cover
// the seed genres. Exact tag hits dominate; substring overlaps count a
// little. Stable, so equally scored artists keep discovery order.
func rankByTagOverlap(artists []musicbrainz.TaggedArtist, seedGenres map[string]float64) []musicbrainz.TaggedArtist {
	scores := make([]float64, len(artists))
	for i, artist := range artists {
		scores[i] = cheapTagScore(artist.Tags, seedGenres)
	}

	ranked := make([]musicbrainz.TaggedArtist, len(artists))
	copy(ranked, artists)
	order := make([]int, len(artists))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})
	for pos, idx := range order {
		ranked[pos] = artists[idx]
	}
	return ranked
}

func cheapTagScore(tags []string, seedGenres map[string]float64) float64 {
	if len(tags) == 0 || len(seedGenres) == 0 {
		return 0.0
	}

	seedOrder := make([]string, 0, len(seedGenres))
	for genre := range seedGenres {
		seedOrder = append(seedOrder, genre)
	}
	sort.Strings(seedOrder)

	score := 0.0
	for _, tag := range tags {
		normalized := strings.ToLower(strings.TrimSpace(tag))
		if weight, ok := seedGenres[normalized]; ok {
			score += weight * 10.0
			continue
		}
		for _, genre := range seedOrder {
			if strings.Contains(genre, normalized) || strings.Contains(normalized, genre) {
				score += seedGenres[genre] * 2.0
				break
			}
		}
	}
	return score
}

// generateEventDates produces count ISO timestamps inside the requested
// window, snapped toward Thursday-Saturday evenings, sorted ascending.
func (a *SyntheticAdapter) generateEventDates(count int, dateFrom, dateTo string) []string {
	now := a.now().UTC()

	start := now.Add(24 * time.Hour)
	if dateFrom != "" {
		if t, err := time.Parse(time.RFC3339, dateFrom); err == nil {
			start = t.UTC()
		}
	}
	end := start.Add(defaultEventWindowDays * 24 * time.Hour)
	if dateTo != "" {
		if t, err := time.Parse(time.RFC3339, dateTo); err == nil {
			end = t.UTC()
		}
	}

	windowDays := int(end.Sub(start).Hours() / 24)
	if windowDays < 1 {
		windowDays = defaultEventWindowDays
	}
	if windowDays < 7 {
		windowDays = 7
	}

	dates := make([]string, 0, count)
	for i := 0; i < count; i++ {
		date := start.AddDate(0, 0, 1+a.rng.Intn(windowDays))

		// Snap Mon-Wed forward to Thursday, Sunday back to Saturday
		switch wd := date.Weekday(); {
		case wd >= time.Monday && wd <= time.Wednesday:
			date = date.AddDate(0, 0, int(time.Thursday-wd))
		case wd == time.Sunday:
			date = date.AddDate(0, 0, -1)
		}

		hour := 19 + a.rng.Intn(3)
		date = time.Date(date.Year(), date.Month(), date.Day(), hour, 0, 0, 0, time.UTC)
		dates = append(dates, date.Format(time.RFC3339))
	}

	sort.Strings(dates)
	return dates
}

func venuesForCity(city string) []syntheticVenue {
	cityLower := strings.ToLower(strings.TrimSpace(city))
	for key, venues := range venueDB {
		if key == "default" {
			continue
		}
		if strings.Contains(cityLower, key) || strings.Contains(key, cityLower) {
			return venues
		}
	}
	return venueDB["default"]
}

func mergeGenres(tags, genres []string) []string {
	seen := make(map[string]struct{}, len(tags)+len(genres))
	merged := make([]string, 0, len(tags)+len(genres))
	for _, g := range append(append([]string{}, tags...), genres...) {
		key := strings.ToLower(strings.TrimSpace(g))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, g)
	}
	return merged
}

func ticketSearchURL(artist string) string {
	return "https://www.google.com/search?q=" + url.QueryEscape(artist+" concert tickets")
}
