package musicbrainz

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/soundcheckhq/concertmatch/backend/internal/infrastructure/observability"
	"github.com/soundcheckhq/concertmatch/backend/pkg/config"
	"github.com/soundcheckhq/concertmatch/backend/pkg/retry"
)

const (
	defaultAPIBase = "https://musicbrainz.org/ws/2"

	// MusicBrainz allows roughly one request per second per client
	requestInterval = 1100 * time.Millisecond

	// Lucene search scores below this are treated as no match
	minMatchScore = 75

	cacheTTLSeconds = 3600
)

// TaggedArtist is a MusicBrainz artist with its community genre tags
type TaggedArtist struct {
	Name  string   `json:"name"`
	MBID  string   `json:"mb_id"`
	Tags  []string `json:"tags"`
	Score int      `json:"score"`
	Type  string   `json:"type"`
}

// CacheStore is the subset of caching the client needs. May be nil.
type CacheStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, expirationSeconds int) error
}

// Client is a MusicBrainz artist/tag lookup client with mandatory pacing
type Client struct {
	apiBase    string
	userAgent  string
	httpClient *http.Client
	cache      CacheStore
	pace       chan struct{}
}

// NewClient creates a new MusicBrainz client. cache may be nil.
func NewClient(cfg *config.MusicBrainzConfig, cache CacheStore) *Client {
	pace := make(chan struct{}, 1)
	pace <- struct{}{}
	go func() {
		ticker := time.NewTicker(requestInterval)
		for range ticker.C {
			select {
			case pace <- struct{}{}:
			default:
			}
		}
	}()

	return &Client{
		apiBase:   defaultAPIBase,
		userAgent: cfg.UserAgent,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		cache: cache,
		pace:  pace,
	}
}

type artistResult struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
	Type  string `json:"type"`
	Tags  []struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	} `json:"tags"`
}

type searchEnvelope struct {
	Artists []artistResult `json:"artists"`
}

// GetArtistTags looks up an artist by name and returns its genre tags.
// Lookups are cached for an hour; failures return an empty list.
func (c *Client) GetArtistTags(ctx context.Context, artistName string) []string {
	cacheKey := "mb:artist:" + strings.ToLower(strings.TrimSpace(artistName))
	if tags, ok := c.cachedTags(ctx, cacheKey); ok {
		return tags
	}

	envelope, err := c.search(ctx, fmt.Sprintf("artist:%q", artistName), 1)
	if err != nil {
		observability.GetLogger().Warn().Err(err).Str("artist", artistName).Msg("musicbrainz artist lookup failed")
		return nil
	}

	var tags []string
	if len(envelope.Artists) > 0 && envelope.Artists[0].Score >= minMatchScore {
		tags = tagNames(envelope.Artists[0], 8)
	}

	c.storeTags(ctx, cacheKey, tags)
	return tags
}

// FindArtistsByTags searches for artists carrying any of the given genre
// tags, skipping excluded names. At most the first six tags are queried.
func (c *Client) FindArtistsByTags(ctx context.Context, tags []string, excludeNames []string, limit int) []TaggedArtist {
	excluded := make(map[string]struct{}, len(excludeNames))
	for _, name := range excludeNames {
		excluded[strings.ToLower(name)] = struct{}{}
	}

	seen := make(map[string]struct{})
	var discovered []TaggedArtist

	queryTags := tags
	if len(queryTags) > 6 {
		queryTags = queryTags[:6]
	}

	for _, tag := range queryTags {
		artists := c.artistsForTag(ctx, tag)

		for _, artist := range artists {
			name := strings.TrimSpace(artist.Name)
			nameLower := strings.ToLower(name)
			if name == "" {
				continue
			}
			if nameLower == "various artists" || nameLower == "[unknown]" || nameLower == "unknown" {
				continue
			}
			if _, ok := excluded[nameLower]; ok {
				continue
			}
			if _, ok := seen[nameLower]; ok {
				continue
			}
			seen[nameLower] = struct{}{}

			discovered = append(discovered, TaggedArtist{
				Name:  name,
				MBID:  artist.ID,
				Tags:  tagNames(artist, 5),
				Score: artist.Score,
				Type:  artist.Type,
			})
		}

		if len(discovered) >= limit {
			break
		}
	}

	if len(discovered) > limit {
		discovered = discovered[:limit]
	}
	return discovered
}

func (c *Client) artistsForTag(ctx context.Context, tag string) []artistResult {
	cacheKey := "mb:tag:" + strings.ToLower(tag)
	if c.cache != nil {
		if data, err := c.cache.Get(ctx, cacheKey); err == nil && data != nil {
			var cached []artistResult
			if json.Unmarshal(data, &cached) == nil {
				return cached
			}
		}
	}

	envelope, err := c.search(ctx, fmt.Sprintf("tag:%q", tag), 25)
	if err != nil {
		observability.GetLogger().Warn().Err(err).Str("tag", tag).Msg("musicbrainz tag search failed")
		return nil
	}

	if c.cache != nil {
		if data, err := json.Marshal(envelope.Artists); err == nil {
			_ = c.cache.Set(ctx, cacheKey, data, cacheTTLSeconds)
		}
	}
	return envelope.Artists
}

// search runs one paced artist query, retrying 503s with backoff
func (c *Client) search(ctx context.Context, query string, limit int) (*searchEnvelope, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.pace:
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", fmt.Sprintf("%d", limit))
	params.Set("fmt", "json")

	var envelope searchEnvelope
	retryCfg := retry.Config{
		MaxAttempts:     3,
		InitialDelay:    2 * time.Second,
		MaxDelay:        5 * time.Second,
		BackoffFactor:   1.5,
		MaxTotalTimeout: 20 * time.Second,
	}

	err := retry.DoWithLog(ctx, retryCfg, "MusicBrainz", func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+"/artist/?"+params.Encode(), nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusServiceUnavailable {
			return fmt.Errorf("musicbrainz unavailable (503)")
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("musicbrainz request failed with status %d", resp.StatusCode)
		}

		return json.NewDecoder(resp.Body).Decode(&envelope)
	}, func(attempt int, err error, nextDelay time.Duration) {
		observability.GetLogger().Debug().Err(err).Int("attempt", attempt).Dur("next_delay", nextDelay).Msg("retrying musicbrainz request")
	})
	if err != nil {
		return nil, err
	}
	return &envelope, nil
}

func (c *Client) cachedTags(ctx context.Context, key string) ([]string, bool) {
	if c.cache == nil {
		return nil, false
	}
	data, err := c.cache.Get(ctx, key)
	if err != nil || data == nil {
		return nil, false
	}
	var tags []string
	if json.Unmarshal(data, &tags) != nil {
		return nil, false
	}
	return tags, true
}

func (c *Client) storeTags(ctx context.Context, key string, tags []string) {
	if c.cache == nil {
		return
	}
	if tags == nil {
		tags = []string{}
	}
	if data, err := json.Marshal(tags); err == nil {
		_ = c.cache.Set(ctx, key, data, cacheTTLSeconds)
	}
}

func tagNames(artist artistResult, max int) []string {
	var names []string
	for _, tag := range artist.Tags {
		if tag.Count >= 0 {
			names = append(names, tag.Name)
		}
	}
	if len(names) > max {
		names = names[:max]
	}
	return names
}
