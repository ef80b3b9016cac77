package entities

// ConcertMatch is a scored recommendation produced by the ranking pipeline
type ConcertMatch struct {
	EventID          string  `json:"event_id"`
	ArtistName       string  `json:"artist_name"`
	GenreDescription string  `json:"genre_description"`
	MatchScore       float64 `json:"match_score"`
	MatchExplanation string  `json:"match_explanation"`
	VenueName        string  `json:"venue_name"`
	VenueCity        string  `json:"venue_city"`
	Date             string  `json:"date"`
	Time             string  `json:"time,omitempty"`
	TicketURL        string  `json:"ticket_url,omitempty"`
	EventURL         string  `json:"event_url,omitempty"`
	ArtistURL        string  `json:"artist_url,omitempty"`
	Popularity       *int    `json:"popularity,omitempty"`
	ImageURL         string  `json:"image_url,omitempty"`
	FeaturedTrack    string  `json:"featured_track,omitempty"`
	Source           string  `json:"source"`
}
