package services

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"github.com/graph-gophers/dataloader/v7"

	"github.com/soundcheckhq/concertmatch/backend/internal/domain/entities"
	"github.com/soundcheckhq/concertmatch/backend/internal/domain/providers"
	"github.com/soundcheckhq/concertmatch/backend/internal/infrastructure/observability"
	"github.com/soundcheckhq/concertmatch/backend/pkg/utils"
)

const (
	artistCacheKeyPrefix = "artist:"

	// Search results below this name similarity are not trusted as a match
	minAcceptSimilarity = 0.6

	searchCandidateLimit = 5
)

// tributePatterns extract the original artist from tribute/cover-band names.
// Order matters: the first matching pattern wins.
var tributePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(.+?)\s+tribute\b`),
	regexp.MustCompile(`(?i)\btribute\s+to\s+(.+)$`),
	regexp.MustCompile(`(?i)^a\s+tribute\s+to\s+(.+)$`),
	regexp.MustCompile(`(?i)^(.+?)\s+cover\s+band$`),
	regexp.MustCompile(`(?i)^(.+?)\s+experience$`),
	regexp.MustCompile(`(?i)^(.+?)\s+legacy$`),
	regexp.MustCompile(`(?i)^(.+?)\s+salute$`),
	regexp.MustCompile(`(?i)^the\s+(.+?)\s+show$`),
}

func extractTributeTarget(artistName string) string {
	for _, pattern := range tributePatterns {
		if m := pattern.FindStringSubmatch(artistName); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// ArtistResolverService resolves artist names to catalog records through a
// three-tier lookup: per-run memo, persistent cache, external search with a
// tribute/cover fallback. Resolution never fails; unknown artists resolve
// to a zero record, and that negative result is cached too.
type ArtistResolverService struct {
	catalog providers.ArtistCatalog
	cache   providers.CacheProvider
	metrics *observability.Metrics
	ttl     time.Duration
}

// NewArtistResolverService creates a new resolver. cache and metrics may be
// nil; cacheTTL <= 0 defaults to 30 days.
func NewArtistResolverService(catalog providers.ArtistCatalog, cache providers.CacheProvider, metrics *observability.Metrics, cacheTTL time.Duration) *ArtistResolverService {
	if cacheTTL <= 0 {
		cacheTTL = 30 * 24 * time.Hour
	}
	return &ArtistResolverService{
		catalog: catalog,
		cache:   cache,
		metrics: metrics,
		ttl:     cacheTTL,
	}
}

// SessionStats summarizes the resolution activity of one session
type SessionStats struct {
	Lookups         int
	ExternalLookups int
	CacheHits       int
	RateLimited     bool
}

// CacheHitRate is the fraction of lookups served without an external search
func (s SessionStats) CacheHitRate() float64 {
	if s.Lookups == 0 {
		return 0.0
	}
	misses := s.ExternalLookups
	if misses > s.Lookups {
		misses = s.Lookups
	}
	return float64(s.Lookups-misses) / float64(s.Lookups)
}

// ResolverSession is the per-run view of the resolver. The loader cache is
// the request memo, and its thunk sharing collapses concurrent resolutions
// of the same key into one in-flight lookup. The rate-limit flag also lives
// here, so one throttled run never degrades the next.
type ResolverSession struct {
	svc    *ArtistResolverService
	loader *dataloader.Loader[string, entities.ArtistRecord]

	rateLimited atomic.Bool
	lookups     atomic.Int64
	external    atomic.Int64
	cacheHits   atomic.Int64
}

// NewSession creates a fresh session for one pipeline run
func (s *ArtistResolverService) NewSession() *ResolverSession {
	sess := &ResolverSession{svc: s}
	// Capacity 1 dispatches every key immediately; the loader is used for
	// its memo cache and in-flight dedup, not for batching.
	sess.loader = dataloader.NewBatchedLoader(
		func(ctx context.Context, keys []string) []*dataloader.Result[entities.ArtistRecord] {
			results := make([]*dataloader.Result[entities.ArtistRecord], len(keys))
			for i, key := range keys {
				results[i] = &dataloader.Result[entities.ArtistRecord]{Data: sess.resolveKey(ctx, key)}
			}
			return results
		},
		dataloader.WithBatchCapacity[string, entities.ArtistRecord](1),
	)
	return sess
}

// Resolve resolves an artist name to a catalog record. It never returns an
// error: failures degrade to a zero record.
func (sess *ResolverSession) Resolve(ctx context.Context, artistName string) entities.ArtistRecord {
	key := entities.NormalizeArtistKey(artistName)
	if key == "" {
		return entities.ArtistRecord{}
	}

	sess.lookups.Add(1)
	record, err := sess.loader.Load(ctx, key)()
	if err != nil {
		return entities.ArtistRecord{}
	}
	return record
}

// RateLimited reports whether this session hit the catalog rate limit
func (sess *ResolverSession) RateLimited() bool {
	return sess.rateLimited.Load()
}

// Stats returns the session's resolution counters
func (sess *ResolverSession) Stats() SessionStats {
	return SessionStats{
		Lookups:         int(sess.lookups.Load()),
		ExternalLookups: int(sess.external.Load()),
		CacheHits:       int(sess.cacheHits.Load()),
		RateLimited:     sess.rateLimited.Load(),
	}
}

// resolveKey runs once per unique key per session (the loader memoizes it)
func (sess *ResolverSession) resolveKey(ctx context.Context, key string) entities.ArtistRecord {
	svc := sess.svc

	if record, ok := svc.readCache(ctx, key); ok {
		sess.cacheHits.Add(1)
		if svc.metrics != nil {
			observability.RecordCacheHit(ctx, svc.metrics, "artist")
		}
		return record
	}
	if svc.metrics != nil {
		observability.RecordCacheMiss(ctx, svc.metrics, "artist")
	}

	// Once rate limited, the rest of the run is cache-only
	if sess.rateLimited.Load() {
		return entities.ArtistRecord{}
	}

	record, similarity, rateLimited := sess.search(ctx, key)
	if rateLimited {
		sess.rateLimited.Store(true)
		return entities.ArtistRecord{}
	}

	if !record.IsZero() && similarity >= minAcceptSimilarity {
		svc.writeCache(ctx, key, record)
		return record
	}

	// No acceptable direct match: maybe it's a tribute act
	if target := extractTributeTarget(key); target != "" {
		fallback, _, rateLimited := sess.search(ctx, target)
		if rateLimited {
			// Keep whatever the primary search found, but don't cache a
			// result degraded by throttling.
			sess.rateLimited.Store(true)
			return record
		}
		if !fallback.IsZero() {
			observability.LoggerFromContext(ctx).Info().
				Str("artist", key).
				Str("resolved_as", fallback.Name).
				Msg("tribute fallback resolved artist")
			svc.writeCache(ctx, key, fallback)
			return fallback
		}
	}

	// Cache the low-similarity or empty result to avoid re-searching
	svc.writeCache(ctx, key, record)
	return record
}

// search queries the catalog and picks the candidate whose name is closest
// to the query. The bool result reports a fatal rate limit.
func (sess *ResolverSession) search(ctx context.Context, name string) (entities.ArtistRecord, float64, bool) {
	sess.external.Add(1)

	start := time.Now()
	candidates, err := sess.svc.catalog.SearchArtists(ctx, name, searchCandidateLimit)
	if sess.svc.metrics != nil {
		observability.RecordCatalogCall(ctx, sess.svc.metrics, "spotify", time.Since(start))
	}

	if err != nil {
		var rateErr *providers.RateLimitError
		if errors.As(err, &rateErr) {
			observability.LoggerFromContext(ctx).Warn().
				Str("artist", name).
				Dur("retry_after", rateErr.RetryAfter).
				Msg("catalog rate limited, degrading to cache-only")
			return entities.ArtistRecord{}, 0, true
		}
		observability.LoggerFromContext(ctx).Warn().Err(err).
			Str("artist", name).
			Msg("catalog search failed")
		return entities.ArtistRecord{}, 0, false
	}

	best := entities.ArtistRecord{}
	bestSimilarity := -1.0
	for _, candidate := range candidates {
		if sim := utils.NameSimilarity(candidate.Name, name); sim > bestSimilarity {
			best = candidate
			bestSimilarity = sim
		}
	}
	if bestSimilarity < 0 {
		return entities.ArtistRecord{}, 0, false
	}
	return best, bestSimilarity, false
}

func (s *ArtistResolverService) readCache(ctx context.Context, key string) (entities.ArtistRecord, bool) {
	if s.cache == nil {
		return entities.ArtistRecord{}, false
	}

	data, err := s.cache.Get(ctx, artistCacheKeyPrefix+key)
	if err != nil || data == nil {
		return entities.ArtistRecord{}, false
	}

	var entry entities.CachedArtist
	if json.Unmarshal(data, &entry) != nil {
		return entities.ArtistRecord{}, false
	}
	if entry.Expired(s.ttl, time.Now()) {
		return entities.ArtistRecord{}, false
	}
	return entry.Artist, true
}

func (s *ArtistResolverService) writeCache(ctx context.Context, key string, record entities.ArtistRecord) {
	if s.cache == nil {
		return
	}

	entry := entities.CachedArtist{
		CacheKey: key,
		Artist:   record,
		CachedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	// No store-side expiry: the TTL is enforced at read time so stale
	// entries can still be inspected and overwritten in place.
	_ = s.cache.Set(ctx, artistCacheKeyPrefix+key, data, 0)
}
