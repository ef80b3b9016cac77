package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/soundcheckhq/concertmatch/backend/internal/domain/providers"
	"github.com/soundcheckhq/concertmatch/backend/internal/domain/repositories"
	"github.com/soundcheckhq/concertmatch/backend/internal/infrastructure/observability"
)

const warmProfileLimit = 200

// WarmSummary reports what a warming pass touched
type WarmSummary struct {
	Cities          int
	EventsScanned   int
	ArtistsResolved int
	RateLimited     bool
}

// CacheWarmService pre-resolves the artists appearing in upcoming events in
// each active user's city, so interactive discovery runs hit the persistent
// cache instead of the catalog.
type CacheWarmService struct {
	profiles    repositories.TasteProfileRepository
	users       repositories.UserRepository
	eventSource providers.EventCatalog
	resolver    *ArtistResolverService
	workerCount int
}

// NewCacheWarmService creates a new cache warm service
func NewCacheWarmService(
	profiles repositories.TasteProfileRepository,
	users repositories.UserRepository,
	eventSource providers.EventCatalog,
	resolver *ArtistResolverService,
	workers int,
) *CacheWarmService {
	if workers <= 0 {
		workers = 1
	}
	return &CacheWarmService{
		profiles:    profiles,
		users:       users,
		eventSource: eventSource,
		resolver:    resolver,
		workerCount: workers,
	}
}

// WarmAll scans events in every city users have searched from and resolves
// the unresolved artists through the shared persistent cache.
func (s *CacheWarmService) WarmAll(ctx context.Context) (*WarmSummary, error) {
	userIDs, err := s.profiles.ListUserIDs(ctx, warmProfileLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiled users: %w", err)
	}

	summary := &WarmSummary{}
	session := s.resolver.NewSession()
	names := make(map[string]struct{})

	for _, city := range s.citiesFor(ctx, userIDs) {
		summary.Cities++

		events, err := s.eventSource.SearchEvents(ctx, providers.EventSearchParams{
			City:        city.name,
			RadiusMiles: city.radius,
			Limit:       100,
			SeedGenres:  city.seedGenres,
		})
		if err != nil {
			observability.LoggerFromContext(ctx).Warn().Err(err).
				Str("city", city.name).
				Msg("event search failed during warmup")
			continue
		}
		summary.EventsScanned += len(events)

		for _, event := range events {
			// Enriched listings never reach the resolver, so they don't
			// need a warm cache entry.
			if len(event.Genres) > 0 && event.Popularity != nil {
				continue
			}
			primary := event.PrimaryArtist()
			if primary == "" {
				continue
			}
			names[strings.ToLower(primary)] = struct{}{}
		}
	}

	summary.ArtistsResolved = s.resolveAll(ctx, session, names)
	summary.RateLimited = session.RateLimited()

	observability.LoggerFromContext(ctx).Info().
		Int("cities", summary.Cities).
		Int("events", summary.EventsScanned).
		Int("artists", summary.ArtistsResolved).
		Bool("rate_limited", summary.RateLimited).
		Msg("cache warm pass completed")

	return summary, nil
}

type warmCity struct {
	name       string
	radius     int
	seedGenres map[string]float64
}

// citiesFor collects the distinct cities of profiled users, keeping one
// representative seed-genre map per city for synthetic discovery.
func (s *CacheWarmService) citiesFor(ctx context.Context, userIDs []string) []warmCity {
	seen := make(map[string]int)
	var cities []warmCity

	for _, userID := range userIDs {
		user, err := s.users.GetByID(ctx, userID)
		if err != nil || user == nil || user.City == "" {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(user.City))
		if idx, ok := seen[key]; ok {
			if user.Radius > cities[idx].radius {
				cities[idx].radius = user.Radius
			}
			continue
		}

		city := warmCity{name: user.City, radius: user.Radius}
		if city.radius <= 0 {
			city.radius = 25
		}
		if profile, err := s.profiles.GetByUserID(ctx, userID); err == nil && profile != nil {
			city.seedGenres = profile.RootGenreMap
		}

		seen[key] = len(cities)
		cities = append(cities, city)
	}

	return cities
}

// resolveAll fans the names out over the worker pool. Every successful
// resolution lands in the persistent cache as a side effect.
func (s *CacheWarmService) resolveAll(ctx context.Context, session *ResolverSession, names map[string]struct{}) int {
	nameChan := make(chan string, len(names))
	for name := range names {
		nameChan <- name
	}
	close(nameChan)

	var resolved int64
	var wg sync.WaitGroup
	for i := 0; i < s.workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range nameChan {
				if ctx.Err() != nil || session.RateLimited() {
					return
				}
				if record := session.Resolve(ctx, name); !record.IsZero() {
					atomic.AddInt64(&resolved, 1)
				}
			}
		}()
	}
	wg.Wait()

	return int(resolved)
}
