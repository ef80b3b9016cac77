package entities

import (
	"strings"
	"time"
)

// ArtistRecord is the catalog view of an artist used for genre matching.
// A zero-value record is the cached form of "catalog has no such artist".
type ArtistRecord struct {
	ID           string   `json:"id,omitempty"`
	Name         string   `json:"name,omitempty"`
	Genres       []string `json:"genres,omitempty"`
	Popularity   *int     `json:"popularity,omitempty"`
	CanonicalURL string   `json:"canonical_url,omitempty"`
	ImageURL     string   `json:"image_url,omitempty"`
}

// IsZero reports whether the record is a negative (artist-not-found) result
func (r ArtistRecord) IsZero() bool {
	return r.Name == "" && len(r.Genres) == 0 && r.Popularity == nil
}

// CachedArtist is the persistent-cache envelope for an ArtistRecord.
// Expiry is decided at read time from CachedAt, not by the store.
type CachedArtist struct {
	CacheKey string       `json:"cache_key"`
	Artist   ArtistRecord `json:"artist_data"`
	CachedAt time.Time    `json:"cached_at"`
}

// Expired reports whether the entry is older than ttl at the given instant
func (c CachedArtist) Expired(ttl time.Duration, now time.Time) bool {
	return now.Sub(c.CachedAt) > ttl
}

// NormalizeArtistKey lowercases and trims an artist name for cache keying
// and memoization. Two names that normalize equally share one resolution.
func NormalizeArtistKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
