package eventcatalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/soundcheckhq/concertmatch/backend/internal/domain/entities"
	"github.com/soundcheckhq/concertmatch/backend/internal/domain/providers"
	"github.com/soundcheckhq/concertmatch/backend/internal/infrastructure/observability"
	apperrors "github.com/soundcheckhq/concertmatch/backend/pkg/errors"
)

const (
	ticketmasterAPIBase = "https://app.ticketmaster.com/discovery/v2"

	ticketmasterHTTPTimeout = 15 * time.Second
	ticketmasterMaxPageSize = 100
)

var stateAbbrevs = map[string]string{
	"ALABAMA": "AL", "ALASKA": "AK", "ARIZONA": "AZ", "ARKANSAS": "AR",
	"CALIFORNIA": "CA", "COLORADO": "CO", "CONNECTICUT": "CT", "DELAWARE": "DE",
	"FLORIDA": "FL", "GEORGIA": "GA", "HAWAII": "HI", "IDAHO": "ID",
	"ILLINOIS": "IL", "INDIANA": "IN", "IOWA": "IA", "KANSAS": "KS",
	"KENTUCKY": "KY", "LOUISIANA": "LA", "MAINE": "ME", "MARYLAND": "MD",
	"MASSACHUSETTS": "MA", "MICHIGAN": "MI", "MINNESOTA": "MN", "MISSISSIPPI": "MS",
	"MISSOURI": "MO", "MONTANA": "MT", "NEBRASKA": "NE", "NEVADA": "NV",
	"NEW HAMPSHIRE": "NH", "NEW JERSEY": "NJ", "NEW MEXICO": "NM", "NEW YORK": "NY",
	"NORTH CAROLINA": "NC", "NORTH DAKOTA": "ND", "OHIO": "OH", "OKLAHOMA": "OK",
	"OREGON": "OR", "PENNSYLVANIA": "PA", "RHODE ISLAND": "RI", "SOUTH CAROLINA": "SC",
	"SOUTH DAKOTA": "SD", "TENNESSEE": "TN", "TEXAS": "TX", "UTAH": "UT",
	"VERMONT": "VT", "VIRGINIA": "VA", "WASHINGTON": "WA", "WEST VIRGINIA": "WV",
	"WISCONSIN": "WI", "WYOMING": "WY", "DISTRICT OF COLUMBIA": "DC",
}

// TicketmasterAdapter implements EventCatalog against the Ticketmaster
// Discovery API. Listings carry genre classifications and an upcoming-event
// count used as a popularity proxy, so most events skip artist resolution.
type TicketmasterAdapter struct {
	apiKey     string
	httpClient *http.Client
	cache      providers.CacheProvider
	baseURL    string
	now        func() time.Time
}

// NewTicketmasterAdapter creates a new Ticketmaster adapter. cache may be nil.
func NewTicketmasterAdapter(apiKey string, cache providers.CacheProvider) *TicketmasterAdapter {
	return NewTicketmasterAdapterWithOptions(apiKey, cache, ticketmasterAPIBase, nil)
}

// NewTicketmasterAdapterWithOptions allows overriding base URL and HTTP client (used for tests).
func NewTicketmasterAdapterWithOptions(apiKey string, cache providers.CacheProvider, baseURL string, httpClient *http.Client) *TicketmasterAdapter {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = ticketmasterAPIBase
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: ticketmasterHTTPTimeout}
	}
	return &TicketmasterAdapter{
		apiKey:     apiKey,
		httpClient: httpClient,
		cache:      cache,
		baseURL:    baseURL,
		now:        time.Now,
	}
}

// Name identifies the source in logs and result attribution
func (a *TicketmasterAdapter) Name() string { return "ticketmaster" }

// SearchEvents returns upcoming music events near the requested city
func (a *TicketmasterAdapter) SearchEvents(ctx context.Context, params providers.EventSearchParams) ([]entities.Event, error) {
	if a.apiKey == "" {
		return nil, apperrors.NewExternalError("ticketmaster api key not configured", nil)
	}

	cacheKey := fmt.Sprintf("events:ticketmaster:%s:%d:%s",
		strings.ToLower(strings.TrimSpace(params.City)), params.RadiusMiles, firstNonEmpty(params.DateFrom, "any"))
	if a.cache != nil {
		if data, err := a.cache.Get(ctx, cacheKey); err == nil && data != nil {
			var cached []entities.Event
			if json.Unmarshal(data, &cached) == nil {
				observability.LoggerFromContext(ctx).Debug().Str("city", params.City).Msg("ticketmaster event cache hit")
				return cached, nil
			}
		}
	}

	cityName, stateCode := splitCityState(params.City)

	size := params.Limit
	if size <= 0 || size > ticketmasterMaxPageSize {
		size = ticketmasterMaxPageSize
	}

	query := url.Values{}
	query.Set("apikey", a.apiKey)
	query.Set("classificationName", "music")
	query.Set("city", cityName)
	query.Set("radius", fmt.Sprintf("%d", params.RadiusMiles))
	query.Set("unit", "miles")
	query.Set("size", fmt.Sprintf("%d", size))
	query.Set("sort", "date,asc")
	if stateCode != "" {
		query.Set("stateCode", stateCode)
	}
	query.Set("startDateTime", a.startDateTime(params.DateFrom))
	if endDateTime := formatAPITime(params.DateTo); endDateTime != "" {
		query.Set("endDateTime", endDateTime)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/events.json?"+query.Encode(), nil)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build ticketmaster request", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewExternalError("ticketmaster request failed", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, apperrors.NewExternalError("invalid ticketmaster api key", nil)
	case http.StatusTooManyRequests:
		return nil, apperrors.NewExternalError("ticketmaster rate limited", nil)
	default:
		return nil, apperrors.NewExternalError(fmt.Sprintf("ticketmaster returned status %d", resp.StatusCode), nil)
	}

	var payload tmResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, apperrors.NewExternalError("failed to decode ticketmaster response", err)
	}

	events := parseTicketmasterEvents(payload)

	if a.cache != nil {
		if data, err := json.Marshal(events); err == nil {
			_ = a.cache.Set(ctx, cacheKey, data, eventCacheTTLSeconds)
		}
	}

	return events, nil
}

func (a *TicketmasterAdapter) startDateTime(dateFrom string) string {
	if formatted := formatAPITime(dateFrom); formatted != "" {
		return formatted
	}
	return a.now().UTC().Format("2006-01-02T15:04:05Z")
}

// formatAPITime reformats an ISO timestamp into the exact second-precision
// UTC form the Discovery API requires. Unparseable input yields "".
func formatAPITime(value string) string {
	if value == "" {
		return ""
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC().Format("2006-01-02T15:04:05Z")
		}
	}
	return ""
}

// splitCityState separates "Austin, TX" style input into city and the
// two-letter state code the API expects. Full state names are abbreviated.
func splitCityState(city string) (string, string) {
	parts := strings.Split(city, ",")
	if len(parts) < 2 {
		return strings.TrimSpace(city), ""
	}

	cityName := strings.TrimSpace(parts[0])
	statePart := strings.ToUpper(strings.TrimSpace(parts[len(parts)-1]))
	if len(statePart) == 2 {
		return cityName, statePart
	}
	if code, ok := stateAbbrevs[statePart]; ok {
		return cityName, code
	}
	return cityName, ""
}

func parseTicketmasterEvents(payload tmResponse) []entities.Event {
	events := make([]entities.Event, 0, len(payload.Embedded.Events))
	for _, raw := range payload.Embedded.Events {
		artistNames := make([]string, 0, len(raw.Embedded.Attractions))
		for _, attraction := range raw.Embedded.Attractions {
			if attraction.Name != "" {
				artistNames = append(artistNames, attraction.Name)
			}
		}
		if len(artistNames) == 0 {
			artistNames = []string{firstNonEmpty(raw.Name, "Unknown")}
		}

		var genres []string
		for _, cls := range raw.Classifications {
			if cls.Genre.Name != "" && cls.Genre.Name != "Undefined" {
				genres = append(genres, strings.ToLower(cls.Genre.Name))
			}
			if cls.SubGenre.Name != "" && cls.SubGenre.Name != "Undefined" {
				genres = append(genres, strings.ToLower(cls.SubGenre.Name))
			}
		}

		venueName := "Unknown Venue"
		venueCity := ""
		if len(raw.Embedded.Venues) > 0 {
			if raw.Embedded.Venues[0].Name != "" {
				venueName = raw.Embedded.Venues[0].Name
			}
			venueCity = raw.Embedded.Venues[0].City.Name
		}

		events = append(events, entities.Event{
			EventID:     raw.ID,
			ArtistNames: artistNames,
			Genres:      genres,
			Popularity:  popularityProxy(raw.Embedded.Attractions),
			VenueName:   venueName,
			VenueCity:   venueCity,
			Date:        firstNonEmpty(raw.Dates.Start.DateTime, raw.Dates.Start.LocalDate),
			Time:        raw.Dates.Start.LocalTime,
			TicketURL:   raw.URL,
			EventURL:    raw.URL,
			ImageURL:    pickImage(raw.Images),
			Source:      "ticketmaster",
		})
	}
	return events
}

// popularityProxy maps an act's upcoming-event count onto the 0-100
// popularity scale. Fewer upcoming shows reads as more indie.
func popularityProxy(attractions []tmAttraction) *int {
	for _, attraction := range attractions {
		total := attraction.UpcomingEvents.Total
		if total == 0 {
			continue
		}
		var popularity int
		switch {
		case total < 20:
			popularity = 15
		case total < 50:
			popularity = 30
		case total < 100:
			popularity = 50
		default:
			popularity = 70
		}
		return &popularity
	}
	return nil
}

func pickImage(images []tmImage) string {
	for _, img := range images {
		if img.Ratio == "16_9" && img.Width >= 300 {
			return img.URL
		}
	}
	if len(images) > 0 {
		return images[0].URL
	}
	return ""
}

type tmResponse struct {
	Embedded struct {
		Events []tmEvent `json:"events"`
	} `json:"_embedded"`
}

type tmEvent struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	Embedded struct {
		Attractions []tmAttraction `json:"attractions"`
		Venues      []tmVenue      `json:"venues"`
	} `json:"_embedded"`
	Classifications []tmClassification `json:"classifications"`
	Dates           struct {
		Start struct {
			DateTime  string `json:"dateTime"`
			LocalDate string `json:"localDate"`
			LocalTime string `json:"localTime"`
		} `json:"start"`
	} `json:"dates"`
	Images []tmImage `json:"images"`
}

type tmAttraction struct {
	Name           string `json:"name"`
	UpcomingEvents struct {
		Total int `json:"_total"`
	} `json:"upcomingEvents"`
}

type tmVenue struct {
	Name string `json:"name"`
	City struct {
		Name string `json:"name"`
	} `json:"city"`
}

type tmClassification struct {
	Genre    tmNamed `json:"genre"`
	SubGenre tmNamed `json:"subGenre"`
}

type tmNamed struct {
	Name string `json:"name"`
}

type tmImage struct {
	Ratio string `json:"ratio"`
	Width int    `json:"width"`
	URL   string `json:"url"`
}
