package services

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/soundcheckhq/concertmatch/backend/pkg/utils"
)

const maxMatchScore = 99.0

// MatchScoringService computes the Stage-2 relevance score for a candidate:
// exact genre overlap against the user's weighted genre map, plus a bonus
// for lesser-known artists.
type MatchScoringService struct{}

// NewMatchScoringService creates a new match scoring service
func NewMatchScoringService() *MatchScoringService {
	return &MatchScoringService{}
}

// ScoreGenreOverlap scores an artist's genre tags against the user's genre
// map. Matching is exact only; the loose substring matching belongs to the
// prefilter. Returns the score (0..99, one decimal), the matched tags, and
// a human-readable explanation.
func (s *MatchScoringService) ScoreGenreOverlap(artistGenres []string, userGenreMap map[string]float64) (float64, []string, string) {
	if len(artistGenres) == 0 || len(userGenreMap) == 0 {
		return 0.0, nil, "No genre data available"
	}

	tags := make([]string, 0, len(artistGenres))
	for _, genre := range artistGenres {
		if normalized := utils.NormalizeGenre(genre); normalized != "" {
			tags = append(tags, normalized)
		}
	}
	if len(tags) == 0 {
		return 0.0, nil, "No recognizable genre terms"
	}

	totalWeight := 0.0
	var matched []string
	for _, tag := range tags {
		if weight, ok := userGenreMap[tag]; ok {
			totalWeight += weight
			matched = append(matched, tag)
		}
	}

	if len(matched) == 0 {
		return 0.0, nil, "No genre overlap found"
	}

	maxPossible := topWeightSum(userGenreMap, len(tags))
	if maxPossible == 0 {
		return 0.0, matched, "Minimal overlap"
	}

	rawScore := totalWeight / maxPossible * 100
	overlapRatio := float64(len(matched)) / float64(len(tags))
	score := math.Min(rawScore*(0.7+0.3*overlapRatio), maxMatchScore)

	return round1(score), matched, buildExplanation(userGenreMap, matched)
}

// IndieBonus rewards lesser-known artists: the lower the popularity, the
// bigger the bonus. Unknown popularity gets a small benefit of the doubt.
func (s *MatchScoringService) IndieBonus(popularity *int) float64 {
	if popularity == nil {
		return 5.0
	}
	switch {
	case *popularity < 20:
		return 15.0
	case *popularity < 40:
		return 10.0
	case *popularity < 60:
		return 5.0
	default:
		return 0.0
	}
}

// topWeightSum returns the sum of the n largest weights in the map
func topWeightSum(genreMap map[string]float64, n int) float64 {
	weights := make([]float64, 0, len(genreMap))
	for _, weight := range genreMap {
		weights = append(weights, weight)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(weights)))

	if n > len(weights) {
		n = len(weights)
	}

	sum := 0.0
	for _, weight := range weights[:n] {
		sum += weight
	}
	return sum
}

func buildExplanation(userGenreMap map[string]float64, matched []string) string {
	topGenres := make([]string, 0, len(userGenreMap))
	for genre := range userGenreMap {
		topGenres = append(topGenres, genre)
	}
	sort.Slice(topGenres, func(i, j int) bool {
		wi, wj := userGenreMap[topGenres[i]], userGenreMap[topGenres[j]]
		if wi != wj {
			return wi > wj
		}
		return topGenres[i] < topGenres[j]
	})
	if len(topGenres) > 3 {
		topGenres = topGenres[:3]
	}

	matchedShown := matched
	if len(matchedShown) > 4 {
		matchedShown = matchedShown[:4]
	}

	return fmt.Sprintf("Your top genres include %s. This artist's genres include %s.",
		strings.Join(topGenres, ", "), strings.Join(matchedShown, ", "))
}

func round1(value float64) float64 {
	return math.Round(value*10) / 10
}
