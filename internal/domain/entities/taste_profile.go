package entities

import (
	"sort"
	"strings"
	"time"
)

// TasteProfile captures a user's listening fingerprint: weighted genre maps
// and the artists they already follow. Weights are normalized so the heaviest
// genre is 1.0.
type TasteProfile struct {
	ID             string             `json:"id" db:"id"`
	UserID         string             `json:"user_id" db:"user_id"`
	GenreMap       map[string]float64 `json:"genre_map"`
	RootGenreMap   map[string]float64 `json:"root_genre_map"`
	TopArtistIDs   []string           `json:"top_artist_ids"`
	TopArtistNames []string           `json:"top_artist_names"`
	CreatedAt      time.Time          `json:"created_at" db:"created_at"`
}

// KnownArtistSet returns the user's top artists as a lowercase lookup set
func (p *TasteProfile) KnownArtistSet() map[string]struct{} {
	known := make(map[string]struct{}, len(p.TopArtistNames))
	for _, name := range p.TopArtistNames {
		known[strings.ToLower(strings.TrimSpace(name))] = struct{}{}
	}
	return known
}

// TopGenres returns up to n genre labels from the raw genre map, heaviest
// first. Ties break alphabetically so output is deterministic.
func (p *TasteProfile) TopGenres(n int) []string {
	genres := make([]string, 0, len(p.GenreMap))
	for genre := range p.GenreMap {
		genres = append(genres, genre)
	}
	sort.Slice(genres, func(i, j int) bool {
		wi, wj := p.GenreMap[genres[i]], p.GenreMap[genres[j]]
		if wi != wj {
			return wi > wj
		}
		return genres[i] < genres[j]
	})
	if len(genres) > n {
		genres = genres[:n]
	}
	return genres
}

// TopRootGenres returns up to n root genre terms, heaviest first
func (p *TasteProfile) TopRootGenres(n int) []string {
	genres := make([]string, 0, len(p.RootGenreMap))
	for genre := range p.RootGenreMap {
		genres = append(genres, genre)
	}
	sort.Slice(genres, func(i, j int) bool {
		wi, wj := p.RootGenreMap[genres[i]], p.RootGenreMap[genres[j]]
		if wi != wj {
			return wi > wj
		}
		return genres[i] < genres[j]
	})
	if len(genres) > n {
		genres = genres[:n]
	}
	return genres
}
