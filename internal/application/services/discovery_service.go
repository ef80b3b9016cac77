package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/soundcheckhq/concertmatch/backend/internal/domain/entities"
	"github.com/soundcheckhq/concertmatch/backend/internal/domain/providers"
	"github.com/soundcheckhq/concertmatch/backend/internal/domain/repositories"
	"github.com/soundcheckhq/concertmatch/backend/internal/infrastructure/observability"
	apperrors "github.com/soundcheckhq/concertmatch/backend/pkg/errors"
)

// DiscoveryService orchestrates the two-stage pipeline: fetch events from a
// catalog, prefilter them in-process, then resolve and score the survivors.
type DiscoveryService struct {
	prefilter   *PrefilterService
	scorer      *MatchScoringService
	resolver    *ArtistResolverService
	eventSource providers.EventCatalog
	profiles    repositories.TasteProfileRepository
	users       repositories.UserRepository
	bus         providers.EventBus
	metrics     *observability.Metrics

	maxResults   int
	prefilterCap int
}

// NewDiscoveryService creates a new discovery service. users, bus and
// metrics may be nil.
func NewDiscoveryService(
	prefilter *PrefilterService,
	scorer *MatchScoringService,
	resolver *ArtistResolverService,
	eventSource providers.EventCatalog,
	profiles repositories.TasteProfileRepository,
	users repositories.UserRepository,
	bus providers.EventBus,
	metrics *observability.Metrics,
	maxResults, prefilterCap int,
) *DiscoveryService {
	if maxResults <= 0 {
		maxResults = 25
	}
	if prefilterCap < maxResults {
		prefilterCap = maxResults * 3
	}
	return &DiscoveryService{
		prefilter:    prefilter,
		scorer:       scorer,
		resolver:     resolver,
		eventSource:  eventSource,
		profiles:     profiles,
		users:        users,
		bus:          bus,
		metrics:      metrics,
		maxResults:   maxResults,
		prefilterCap: prefilterCap,
	}
}

// Discover runs the full pipeline for one user and city
func (s *DiscoveryService) Discover(ctx context.Context, req *entities.DiscoverRequest) (*entities.DiscoverResponse, error) {
	ctx, span := observability.StartSpan(ctx, "DiscoveryService.Discover")
	defer span.End()

	if req == nil || req.UserID == "" || req.City == "" {
		return nil, apperrors.NewValidationError("user_id and city are required")
	}
	if req.Radius <= 0 {
		req.Radius = 25
	}

	profile, err := s.profiles.GetByUserID(ctx, req.UserID)
	if err != nil || profile == nil {
		return nil, apperrors.NewNotFoundError("no taste profile for user, build one first")
	}

	s.rememberSearchLocation(ctx, req)

	start := time.Now()

	events, err := s.eventSource.SearchEvents(ctx, providers.EventSearchParams{
		City:           req.City,
		RadiusMiles:    req.Radius,
		DateFrom:       req.DateFrom,
		DateTo:         req.DateTo,
		Limit:          s.prefilterCap,
		SeedGenres:     profile.RootGenreMap,
		ExcludeArtists: profile.TopArtistNames,
	})
	if err != nil {
		return nil, apperrors.NewExternalError("event catalog search failed", err)
	}

	candidates := s.prefilter.Prefilter(events, profile, s.prefilterCap)
	matches, stats := s.Rank(ctx, candidates, profile, s.maxResults)

	stats.EventsScanned = len(events)
	stats.LatencyMs = time.Since(start).Milliseconds()

	source := s.eventSource.Name()
	if s.metrics != nil {
		observability.RecordDiscoveryRun(ctx, s.metrics, source, stats.RateLimited)
	}
	s.publishRun(ctx, req, source, stats)

	return &entities.DiscoverResponse{
		Concerts:           matches,
		TasteProfile:       profile,
		TotalEventsScanned: stats.EventsScanned,
		Message:            runMessage(matches, stats),
		Source:             source,
	}, nil
}

// Rank resolves and scores prefiltered candidates, returning at most
// maxResults matches ordered by score descending, date ascending.
func (s *DiscoveryService) Rank(ctx context.Context, candidates []entities.Event, profile *entities.TasteProfile, maxResults int) ([]entities.ConcertMatch, entities.RunStats) {
	ctx, span := observability.StartSpan(ctx, "DiscoveryService.Rank")
	defer span.End()

	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	stats := entities.RunStats{Candidates: len(candidates)}
	known := profile.KnownArtistSet()
	session := s.resolver.NewSession()

	results := make([]entities.ConcertMatch, 0, len(candidates))
	for _, event := range candidates {
		primary := event.PrimaryArtist()
		if primary == "" {
			stats.SkippedNoArtist++
			continue
		}
		if _, ok := known[strings.ToLower(primary)]; ok {
			stats.SkippedKnown++
			continue
		}

		genres := event.Genres
		popularity := event.Popularity
		artistURL := event.ArtistURL

		// Events carrying both genres and popularity were already enriched
		// upstream; resolving them again would waste catalog quota.
		if len(genres) == 0 || popularity == nil {
			stats.Resolutions++
			record := session.Resolve(ctx, primary)
			if !record.IsZero() {
				if len(genres) == 0 {
					genres = record.Genres
				}
				if popularity == nil {
					popularity = record.Popularity
				}
				if artistURL == "" {
					artistURL = record.CanonicalURL
				}
			}
		}

		score, _, explanation := s.scorer.ScoreGenreOverlap(genres, profile.GenreMap)
		finalScore := score + s.scorer.IndieBonus(popularity)
		if finalScore > maxMatchScore {
			finalScore = maxMatchScore
		}
		if finalScore < 5.0 {
			continue
		}

		results = append(results, entities.ConcertMatch{
			EventID:          event.EventID,
			ArtistName:       primary,
			GenreDescription: genreDescription(genres),
			MatchScore:       round1(finalScore),
			MatchExplanation: explanation,
			VenueName:        event.VenueName,
			VenueCity:        event.VenueCity,
			Date:             event.Date,
			Time:             event.Time,
			TicketURL:        event.TicketURL,
			EventURL:         event.EventURL,
			ArtistURL:        artistURL,
			Popularity:       popularity,
			ImageURL:         event.ImageURL,
			FeaturedTrack:    event.FeaturedTrack,
			Source:           event.Source,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].MatchScore != results[j].MatchScore {
			return results[i].MatchScore > results[j].MatchScore
		}
		return results[i].Date < results[j].Date
	})
	if len(results) > maxResults {
		results = results[:maxResults]
	}

	sessionStats := session.Stats()
	stats.Matched = len(results)
	stats.ExternalLookups = sessionStats.ExternalLookups
	stats.CacheHitRate = sessionStats.CacheHitRate()
	stats.RateLimited = sessionStats.RateLimited

	return results, stats
}

// rememberSearchLocation stores the requested city/radius on the user
// record so the UI can prefill it next time. Best effort.
func (s *DiscoveryService) rememberSearchLocation(ctx context.Context, req *entities.DiscoverRequest) {
	if s.users == nil {
		return
	}
	user, err := s.users.GetByID(ctx, req.UserID)
	if err != nil || user == nil {
		return
	}
	if user.City == req.City && user.Radius == req.Radius {
		return
	}
	user.City = req.City
	user.Radius = req.Radius
	if err := s.users.Update(ctx, user); err != nil {
		observability.LoggerFromContext(ctx).Debug().Err(err).Msg("failed to remember search location")
	}
}

func (s *DiscoveryService) publishRun(ctx context.Context, req *entities.DiscoverRequest, source string, stats entities.RunStats) {
	if s.bus == nil {
		return
	}
	event := &entities.DiscoveryEvent{
		ID:        uuid.New().String(),
		UserID:    req.UserID,
		City:      req.City,
		Source:    source,
		Stats:     stats,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.bus.Publish(ctx, providers.EventChannelDiscoveryCompleted, event); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("failed to publish discovery event")
	}
}

func genreDescription(genres []string) string {
	if len(genres) == 0 {
		return "Genre unknown"
	}
	if len(genres) > 3 {
		genres = genres[:3]
	}
	return strings.Join(genres, ", ")
}

func runMessage(matches []entities.ConcertMatch, stats entities.RunStats) string {
	if len(matches) == 0 {
		if stats.RateLimited {
			return "Catalog rate limit reached; try again in a few minutes"
		}
		return "No matching concerts found for this search"
	}
	if stats.RateLimited {
		return "Results may be incomplete: catalog rate limit reached during matching"
	}
	return ""
}
