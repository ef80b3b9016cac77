package services

import (
	"sort"
	"strings"

	"github.com/soundcheckhq/concertmatch/backend/internal/domain/entities"
	"github.com/soundcheckhq/concertmatch/backend/pkg/utils"
)

const (
	prefilterGenreCap   = 50.0
	prefilterArtistCap  = 30.0
	exactGenreFactor    = 30.0
	partialGenreFactor  = 5.0
	artistSimilarityFit = 37.5
	headlinerBoostBase  = 5.0
	headlinerBoostDecay = 0.02
)

// PrefilterService is the cheap first stage of the ranking pipeline: it
// scores raw events against a taste profile using only in-memory data and
// keeps the best maxCandidates. No network I/O happens here.
type PrefilterService struct{}

// NewPrefilterService creates a new prefilter service
func NewPrefilterService() *PrefilterService {
	return &PrefilterService{}
}

// Prefilter returns the top maxCandidates events ordered by prefilter score
// descending. Ties keep their original input order.
func (s *PrefilterService) Prefilter(events []entities.Event, profile *entities.TasteProfile, maxCandidates int) []entities.Event {
	if len(events) == 0 || maxCandidates <= 0 {
		return nil
	}

	userGenres := profile.GenreMap
	knownNames := make([]string, 0, len(profile.TopArtistNames))
	for _, name := range profile.TopArtistNames {
		knownNames = append(knownNames, strings.ToLower(strings.TrimSpace(name)))
	}

	type scoredEvent struct {
		event entities.Event
		score float64
	}

	scored := make([]scoredEvent, 0, len(events))
	for i, event := range events {
		score := s.genreScore(event.Genres, userGenres) +
			s.artistScore(event.ArtistNames, knownNames) +
			s.headlinerBoost(i)
		scored = append(scored, scoredEvent{event: event, score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	if len(scored) > maxCandidates {
		scored = scored[:maxCandidates]
	}

	result := make([]entities.Event, 0, len(scored))
	for _, se := range scored {
		result = append(result, se.event)
	}
	return result
}

// genreScore rewards exact genre-map hits heavily and partial (substring in
// either direction) hits lightly. A tag gets at most one partial credit, and
// the component is capped. Substring matching is deliberately loose here;
// Stage 2 applies the strict exact-match scoring.
func (s *PrefilterService) genreScore(tags []string, userGenres map[string]float64) float64 {
	if len(tags) == 0 || len(userGenres) == 0 {
		return 0.0
	}

	keys := make([]string, 0, len(userGenres))
	for key := range userGenres {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	total := 0.0
	for _, tag := range tags {
		tag = utils.NormalizeGenre(tag)
		if tag == "" {
			continue
		}

		if weight, ok := userGenres[tag]; ok {
			total += weight * exactGenreFactor
			continue
		}

		for _, key := range keys {
			if strings.Contains(tag, key) || strings.Contains(key, tag) {
				total += userGenres[key] * partialGenreFactor
				break
			}
		}
	}

	if total > prefilterGenreCap {
		total = prefilterGenreCap
	}
	return total
}

// artistScore scales the best name-similarity ratio between any event artist
// and any of the user's known top artists.
func (s *PrefilterService) artistScore(artistNames []string, knownNamesLower []string) float64 {
	if len(artistNames) == 0 || len(knownNamesLower) == 0 {
		return 0.0
	}

	best := 0.0
	for _, artist := range artistNames {
		for _, known := range knownNamesLower {
			if sim := utils.NameSimilarity(artist, known); sim > best {
				best = sim
			}
		}
	}

	score := best * artistSimilarityFit
	if score > prefilterArtistCap {
		score = prefilterArtistCap
	}
	return score
}

// headlinerBoost favors events listed earlier by the source, a weak proxy
// for upstream relevance ordering.
func (s *PrefilterService) headlinerBoost(index int) float64 {
	boost := headlinerBoostBase - headlinerBoostDecay*float64(index)
	if boost < 0 {
		return 0.0
	}
	return boost
}
