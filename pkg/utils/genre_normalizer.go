package utils

import (
	"strings"
)

// rootGenres is the fixed vocabulary used to collapse detailed catalog genre
// labels ("australian garage punk") into coarse root terms ("garage", "punk").
// Order matters only for output ordering, not for matching.
var rootGenres = []string{
	"indie", "folk", "electronic", "punk", "soul", "jazz", "metal",
	"hip hop", "rap", "rock", "pop", "r&b", "country", "blues",
	"classical", "ambient", "dance", "house", "techno", "reggae",
	"funk", "gospel", "latin", "ska", "grunge", "emo", "shoegaze",
	"dream pop", "synth", "disco", "garage", "psychedelic", "lo-fi",
	"lofi", "alternative", "experimental", "post-punk", "new wave",
	"math rock", "prog", "singer-songwriter", "americana", "bluegrass",
	"hardcore", "noise", "industrial", "trap", "drill", "grime",
	"afrobeat", "bossa nova", "world",
}

// ExtractRootGenres returns the root genre terms contained in a detailed
// genre label. Labels that match no root term are returned whole, lowercased,
// so niche genres still participate in overlap scoring.
func ExtractRootGenres(genre string) []string {
	genreLower := strings.ToLower(genre)

	var found []string
	for _, root := range rootGenres {
		if strings.Contains(genreLower, root) {
			found = append(found, root)
		}
	}

	if len(found) == 0 {
		found = append(found, strings.TrimSpace(genreLower))
	}
	return found
}

// NormalizeGenre lowercases and trims a genre label for map keying
func NormalizeGenre(genre string) string {
	return strings.TrimSpace(strings.ToLower(genre))
}
