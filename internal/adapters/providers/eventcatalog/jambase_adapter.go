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
	jambaseAPIBase = "https://apiv3.jambase.com"

	// Listings change slowly; searches are cached per city/radius
	eventCacheTTLSeconds = 1800

	jambaseHTTPTimeout = 20 * time.Second
)

// JambaseAdapter implements EventCatalog against the Jambase events API.
// Jambase listings carry no genre data, so every event goes through artist
// resolution downstream.
type JambaseAdapter struct {
	apiKey     string
	httpClient *http.Client
	cache      providers.CacheProvider
	baseURL    string
}

// NewJambaseAdapter creates a new Jambase adapter. cache may be nil.
func NewJambaseAdapter(apiKey string, cache providers.CacheProvider) *JambaseAdapter {
	return NewJambaseAdapterWithOptions(apiKey, cache, jambaseAPIBase, nil)
}

// NewJambaseAdapterWithOptions allows overriding base URL and HTTP client (used for tests).
func NewJambaseAdapterWithOptions(apiKey string, cache providers.CacheProvider, baseURL string, httpClient *http.Client) *JambaseAdapter {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = jambaseAPIBase
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: jambaseHTTPTimeout}
	}
	return &JambaseAdapter{
		apiKey:     apiKey,
		httpClient: httpClient,
		cache:      cache,
		baseURL:    baseURL,
	}
}

// Name identifies the source in logs and result attribution
func (a *JambaseAdapter) Name() string { return "jambase" }

// SearchEvents returns upcoming events near the requested city
func (a *JambaseAdapter) SearchEvents(ctx context.Context, params providers.EventSearchParams) ([]entities.Event, error) {
	if a.apiKey == "" {
		return nil, apperrors.NewExternalError("jambase api key not configured", nil)
	}

	cacheKey := fmt.Sprintf("events:jambase:%s:%d", strings.ToLower(strings.TrimSpace(params.City)), params.RadiusMiles)
	if a.cache != nil {
		if data, err := a.cache.Get(ctx, cacheKey); err == nil && data != nil {
			var cached []entities.Event
			if json.Unmarshal(data, &cached) == nil {
				observability.LoggerFromContext(ctx).Debug().Str("city", params.City).Msg("jambase event cache hit")
				return cached, nil
			}
		}
	}

	query := url.Values{}
	query.Set("apikey", a.apiKey)
	query.Set("geoCity", params.City)
	query.Set("geoRadius", fmt.Sprintf("%d", params.RadiusMiles))
	query.Set("eventDateFrom", "today")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/events?"+query.Encode(), nil)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build jambase request", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewExternalError("jambase request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, apperrors.NewExternalError("jambase rate limited", nil)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewExternalError(fmt.Sprintf("jambase returned status %d", resp.StatusCode), nil)
	}

	var payload jambaseResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, apperrors.NewExternalError("failed to decode jambase response", err)
	}

	events := a.parseEvents(payload)
	if len(events) > params.Limit && params.Limit > 0 {
		events = events[:params.Limit]
	}

	if a.cache != nil {
		if data, err := json.Marshal(events); err == nil {
			_ = a.cache.Set(ctx, cacheKey, data, eventCacheTTLSeconds)
		}
	}

	return events, nil
}

func (a *JambaseAdapter) parseEvents(payload jambaseResponse) []entities.Event {
	events := make([]entities.Event, 0, len(payload.Events))
	for _, raw := range payload.Events {
		artistNames := make([]string, 0, len(raw.Performers))
		for _, performer := range raw.Performers {
			if performer.Name != "" {
				artistNames = append(artistNames, performer.Name)
			}
		}
		// Some listings name the event after the headliner
		if len(artistNames) == 0 && raw.Name != "" {
			artistNames = []string{raw.Name}
		}

		venueName := raw.Venue.Name
		if venueName == "" {
			venueName = "Unknown Venue"
		}
		venueCity := raw.Location.City
		if venueCity == "" {
			venueCity = raw.Venue.Location.City
		}

		ticketURL := raw.TicketURL
		if ticketURL == "" {
			ticketURL = raw.URL
		}

		events = append(events, entities.Event{
			EventID:     string(raw.ID),
			ArtistNames: artistNames,
			VenueName:   venueName,
			VenueCity:   venueCity,
			Date:        firstNonEmpty(raw.Date, raw.StartDate),
			TicketURL:   ticketURL,
			EventURL:    raw.URL,
			ImageURL:    raw.Image.URL,
			Source:      "jambase",
		})
	}
	return events
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// encoding/json matches field names case-insensitively, which covers both
// the "Name" and "name" casings Jambase responses use.
type jambaseResponse struct {
	Events []jambaseEvent `json:"events"`
}

type jambaseEvent struct {
	ID         flexString         `json:"id"`
	Name       string             `json:"name"`
	Date       string             `json:"date"`
	StartDate  string             `json:"startDate"`
	URL        string             `json:"url"`
	TicketURL  string             `json:"ticketUrl"`
	Performers []jambasePerformer `json:"performers"`
	Venue      jambaseVenue       `json:"venue"`
	Location   jambaseLocation    `json:"location"`
	Image      jambaseImage       `json:"image"`
}

type jambasePerformer struct {
	Name string `json:"name"`
}

type jambaseVenue struct {
	Name     string          `json:"name"`
	Location jambaseLocation `json:"location"`
}

type jambaseLocation struct {
	City string `json:"city"`
}

type jambaseImage struct {
	URL string `json:"url"`
}

// flexString accepts both string and numeric JSON values
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(strings.Trim(string(data), " \n"))
	return nil
}

func (i *jambaseImage) UnmarshalJSON(data []byte) error {
	// Image arrives either as a bare URL string or as an object
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &i.URL)
	}
	type alias jambaseImage
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	i.URL = a.URL
	return nil
}
