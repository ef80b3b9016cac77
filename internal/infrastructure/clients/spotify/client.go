package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/soundcheckhq/concertmatch/backend/internal/domain/entities"
	"github.com/soundcheckhq/concertmatch/backend/internal/domain/providers"
	"github.com/soundcheckhq/concertmatch/backend/pkg/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	defaultAPIBase   = "https://api.spotify.com/v1"
	defaultTokenURL  = "https://accounts.spotify.com/api/token"
	maxRetryAttempts = 2
)

// Client implements providers.ArtistCatalog against the Spotify Web API.
// Search uses an app token (client credentials); top-artist reads require
// the caller's user token.
type Client struct {
	clientID     string
	clientSecret string
	apiBase      string
	tokenURL     string
	httpClient   *http.Client
	limiter      *tokenBucket
	maxWait      time.Duration

	mu          sync.Mutex
	appToken    string
	tokenExpiry time.Time
}

// NewClient creates a new Spotify client
func NewClient(cfg *config.SpotifyConfig) (*Client, error) {
	if cfg == nil || cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("spotify client credentials are required")
	}

	maxWait := cfg.RateLimitMaxWait
	if maxWait <= 0 {
		maxWait = 5 * time.Second
	}

	return &Client{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		apiBase:      defaultAPIBase,
		tokenURL:     defaultTokenURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		limiter: newTokenBucket(cfg.RequestsPerMin, 10),
		maxWait: maxWait,
	}, nil
}

type artistItem struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Genres     []string `json:"genres"`
	Popularity *int     `json:"popularity"`
	Images     []struct {
		URL string `json:"url"`
	} `json:"images"`
	ExternalURLs struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
}

type searchEnvelope struct {
	Artists struct {
		Items []artistItem `json:"items"`
	} `json:"artists"`
}

type topArtistsEnvelope struct {
	Items []artistItem `json:"items"`
}

// SearchArtists searches the catalog by artist name using the app token
func (c *Client) SearchArtists(ctx context.Context, query string, limit int) ([]entities.ArtistRecord, error) {
	token, err := c.appAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "artist")
	params.Set("limit", strconv.Itoa(limit))

	var envelope searchEnvelope
	if err := c.get(ctx, token, "/search", params, &envelope); err != nil {
		return nil, err
	}

	return toRecords(envelope.Artists.Items), nil
}

// GetTopArtists returns the user's top artists for a time range
func (c *Client) GetTopArtists(ctx context.Context, accessToken, timeRange string, limit int) ([]entities.ArtistRecord, error) {
	if accessToken == "" {
		return nil, errors.New("spotify user access token is required")
	}

	params := url.Values{}
	params.Set("time_range", timeRange)
	params.Set("limit", strconv.Itoa(limit))

	var envelope topArtistsEnvelope
	if err := c.get(ctx, accessToken, "/me/top/artists", params, &envelope); err != nil {
		return nil, err
	}

	return toRecords(envelope.Items), nil
}

func toRecords(items []artistItem) []entities.ArtistRecord {
	records := make([]entities.ArtistRecord, 0, len(items))
	for _, item := range items {
		record := entities.ArtistRecord{
			ID:           item.ID,
			Name:         item.Name,
			Genres:       item.Genres,
			Popularity:   item.Popularity,
			CanonicalURL: item.ExternalURLs.Spotify,
		}
		if len(item.Images) > 0 {
			record.ImageURL = item.Images[0].URL
		}
		records = append(records, record)
	}
	return records
}

// get performs an authenticated GET with rate-limit handling. A 429 whose
// Retry-After fits under maxWait is waited out and retried; anything longer
// is surfaced as *providers.RateLimitError so the caller can degrade.
func (c *Client) get(ctx context.Context, token, path string, params url.Values, out interface{}) error {
	for attempt := 0; ; attempt++ {
		if c.limiter != nil {
			waitStart := time.Now()
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
			recordSpotifyRateLimitWait(ctx, path, time.Since(waitStart))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+path+"?"+params.Encode(), nil)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			recordSpotifyMetric(ctx, path, 0, time.Since(start), err)
			return err
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
			resp.Body.Close()
			recordSpotifyMetric(ctx, path, resp.StatusCode, time.Since(start), fmt.Errorf("status %d", resp.StatusCode))

			if retryAfter > c.maxWait || attempt >= maxRetryAttempts {
				return &providers.RateLimitError{RetryAfter: retryAfter}
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryAfter):
			}
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			resp.Body.Close()
			recordSpotifyMetric(ctx, path, resp.StatusCode, time.Since(start), fmt.Errorf("status %d", resp.StatusCode))
			return fmt.Errorf("spotify request failed with status %d", resp.StatusCode)
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		recordSpotifyMetric(ctx, path, resp.StatusCode, time.Since(start), err)
		return err
	}
}

func parseRetryAfter(header string) time.Duration {
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds < 1 {
		seconds = 1
	}
	return time.Duration(seconds) * time.Second
}

// appAccessToken returns a cached client-credentials token, refreshing it
// shortly before expiry.
func (c *Client) appAccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.appToken != "" && time.Now().Before(c.tokenExpiry.Add(-30*time.Second)) {
		return c.appToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("spotify token request failed with status %d", resp.StatusCode)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", err
	}
	if tokenResp.AccessToken == "" {
		return "", errors.New("spotify token response missing access_token")
	}

	c.appToken = tokenResp.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
	return c.appToken, nil
}

func newTokenBucket(rpm int, burst int) *tokenBucket {
	if rpm == 0 {
		rpm = 120
	}
	if rpm < 0 {
		return nil
	}
	if burst <= 0 {
		burst = 5
	}

	bucket := &tokenBucket{
		tokens: make(chan struct{}, burst),
	}

	for i := 0; i < burst; i++ {
		bucket.tokens <- struct{}{}
	}

	interval := time.Minute / time.Duration(rpm)
	if interval <= 0 {
		interval = time.Millisecond
	}

	ticker := time.NewTicker(interval)
	go func() {
		for range ticker.C {
			select {
			case bucket.tokens <- struct{}{}:
			default:
			}
		}
	}()

	return bucket
}

type tokenBucket struct {
	tokens chan struct{}
}

func (b *tokenBucket) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.tokens:
		return nil
	}
}

type spotifyMetrics struct {
	requestCount    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestErrors   metric.Int64Counter
	rateLimitWait   metric.Float64Histogram
}

var spotifyMetricsInit = false
var spotifyMetricsSet spotifyMetrics

func ensureSpotifyMetrics() {
	if spotifyMetricsInit {
		return
	}
	meter := otel.Meter("github.com/soundcheckhq/concertmatch/backend/spotify")

	requestCount, err := meter.Int64Counter(
		"catalog.spotify.request.count",
		metric.WithDescription("Number of Spotify requests"),
	)
	if err != nil {
		return
	}
	requestDuration, err := meter.Float64Histogram(
		"catalog.spotify.request.duration",
		metric.WithDescription("Spotify request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return
	}
	requestErrors, err := meter.Int64Counter(
		"catalog.spotify.request.errors",
		metric.WithDescription("Number of Spotify request errors"),
	)
	if err != nil {
		return
	}
	rateLimitWait, err := meter.Float64Histogram(
		"catalog.spotify.rate_limit.wait",
		metric.WithDescription("Time spent waiting for the Spotify rate limiter in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return
	}

	spotifyMetricsSet = spotifyMetrics{
		requestCount:    requestCount,
		requestDuration: requestDuration,
		requestErrors:   requestErrors,
		rateLimitWait:   rateLimitWait,
	}
	spotifyMetricsInit = true
}

func recordSpotifyMetric(ctx context.Context, endpoint string, statusCode int, duration time.Duration, err error) {
	ensureSpotifyMetrics()
	if !spotifyMetricsInit {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("catalog.provider", "spotify"),
		attribute.String("catalog.endpoint", endpoint),
	}
	if statusCode > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", statusCode))
	}

	spotifyMetricsSet.requestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	spotifyMetricsSet.requestDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	if err != nil {
		spotifyMetricsSet.requestErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

func recordSpotifyRateLimitWait(ctx context.Context, endpoint string, wait time.Duration) {
	ensureSpotifyMetrics()
	if !spotifyMetricsInit {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("catalog.provider", "spotify"),
		attribute.String("catalog.endpoint", endpoint),
	}
	spotifyMetricsSet.rateLimitWait.Record(ctx, float64(wait.Milliseconds()), metric.WithAttributes(attrs...))
}
