package spotify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundcheckhq/concertmatch/backend/internal/domain/providers"
)

func newTestClient(apiServer *httptest.Server) *Client {
	return &Client{
		clientID:     "id",
		clientSecret: "secret",
		apiBase:      apiServer.URL,
		tokenURL:     apiServer.URL + "/token",
		httpClient:   apiServer.Client(),
		maxWait:      2 * time.Second,
		appToken:     "app-token",
		tokenExpiry:  time.Now().Add(time.Hour),
	}
}

func TestSearchArtists_ParsesResults(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer app-token", r.Header.Get("Authorization"))
		assert.Equal(t, "japanese breakfast", r.URL.Query().Get("q"))
		w.Write([]byte(`{"artists":{"items":[
			{"id":"a1","name":"Japanese Breakfast","genres":["indie pop"],"popularity":68,
			 "images":[{"url":"http://img"}],"external_urls":{"spotify":"http://sp/a1"}}
		]}}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(server)
	records, err := client.SearchArtists(context.Background(), "japanese breakfast", 5)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Japanese Breakfast", records[0].Name)
	assert.Equal(t, []string{"indie pop"}, records[0].Genres)
	require.NotNil(t, records[0].Popularity)
	assert.Equal(t, 68, *records[0].Popularity)
	assert.Equal(t, "http://img", records[0].ImageURL)
	assert.Equal(t, "http://sp/a1", records[0].CanonicalURL)
}

func TestGet_RetryAfterAboveThresholdReturnsRateLimitError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(server)
	_, err := client.SearchArtists(context.Background(), "anything", 5)
	require.Error(t, err)

	var rateErr *providers.RateLimitError
	require.True(t, errors.As(err, &rateErr))
	assert.Equal(t, 30*time.Second, rateErr.RetryAfter)
}

func TestGet_RetryAfterBelowThresholdRetries(t *testing.T) {
	calls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"artists":{"items":[]}}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(server)
	records, err := client.SearchArtists(context.Background(), "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, 2, calls)
}

func TestGetTopArtists_RequiresToken(t *testing.T) {
	server := httptest.NewServer(http.NewServeMux())
	defer server.Close()

	client := newTestClient(server)
	_, err := client.GetTopArtists(context.Background(), "", "short_term", 50)
	assert.Error(t, err)
}
