package entities

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
)

// Event is a live event as returned by an event catalog, before scoring.
// Genres and Popularity are optional: catalogs that already know the artist
// pre-populate them and the pipeline skips external resolution for the event.
type Event struct {
	EventID       string   `json:"event_id"`
	ArtistNames   []string `json:"artist_names"`
	Genres        []string `json:"genres,omitempty"`
	Popularity    *int     `json:"popularity,omitempty"`
	VenueName     string   `json:"venue_name"`
	VenueCity     string   `json:"venue_city"`
	Date          string   `json:"date"`
	Time          string   `json:"time,omitempty"`
	TicketURL     string   `json:"ticket_url,omitempty"`
	EventURL      string   `json:"event_url,omitempty"`
	ArtistURL     string   `json:"artist_url,omitempty"`
	ImageURL      string   `json:"image_url,omitempty"`
	FeaturedTrack string   `json:"featured_track,omitempty"`
	Source        string   `json:"source"`
}

// PrimaryArtist returns the headline artist, or "" when the listing has none
func (e *Event) PrimaryArtist() string {
	if len(e.ArtistNames) == 0 {
		return ""
	}
	return strings.TrimSpace(e.ArtistNames[0])
}

// DeriveEventID builds a deterministic 12-hex-char event ID so the same
// artist/city/date listing gets the same ID across runs.
func DeriveEventID(artist, city, date string) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s:%s:%s", artist, city, date)))
	return hex.EncodeToString(sum[:])[:12]
}
