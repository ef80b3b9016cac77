package entities

import (
	"time"
)

// DiscoverRequest is a request to rank upcoming concerts for a user
type DiscoverRequest struct {
	UserID   string `json:"user_id"`
	City     string `json:"city"`
	Radius   int    `json:"radius"`
	DateFrom string `json:"date_from,omitempty"`
	DateTo   string `json:"date_to,omitempty"`
}

// DiscoverResponse is the ranked result set plus the profile it was scored
// against and the stats of the run that produced it.
type DiscoverResponse struct {
	Concerts           []ConcertMatch `json:"concerts"`
	TasteProfile       *TasteProfile  `json:"taste_profile,omitempty"`
	TotalEventsScanned int            `json:"total_events_scanned"`
	Message            string         `json:"message,omitempty"`
	Source             string         `json:"source"`
}

// RunStats summarizes one ranking run
type RunStats struct {
	EventsScanned   int     `json:"events_scanned"`
	Candidates      int     `json:"candidates"`
	Matched         int     `json:"matched"`
	SkippedNoArtist int     `json:"skipped_no_artist"`
	SkippedKnown    int     `json:"skipped_known"`
	Resolutions     int     `json:"resolutions"`
	ExternalLookups int     `json:"external_lookups"`
	CacheHitRate    float64 `json:"cache_hit_rate"`
	RateLimited     bool    `json:"rate_limited"`
	LatencyMs       int64   `json:"latency_ms"`
}

// DiscoveryEvent is published on the event bus after each completed run
type DiscoveryEvent struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	City      string    `json:"city"`
	Source    string    `json:"source"`
	Stats     RunStats  `json:"stats"`
	CreatedAt time.Time `json:"created_at"`
}

// DiscoveryRun is the analytics row persisted for each completed run
type DiscoveryRun struct {
	ID            string    `json:"id" db:"id"`
	UserID        string    `json:"user_id" db:"user_id"`
	City          string    `json:"city" db:"city"`
	Source        string    `json:"source" db:"source"`
	EventsScanned int       `json:"events_scanned" db:"events_scanned"`
	Matched       int       `json:"matched" db:"matched"`
	CacheHitRate  float64   `json:"cache_hit_rate" db:"cache_hit_rate"`
	RateLimited   bool      `json:"rate_limited" db:"rate_limited"`
	LatencyMs     int64     `json:"latency_ms" db:"latency_ms"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
