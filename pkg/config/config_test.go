package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_DiscoveryConfig(t *testing.T) {
	// Setup environment variables
	os.Setenv("DISCOVERY_MAX_RESULTS", "10")
	os.Setenv("DISCOVERY_PREFILTER_CAP", "40")
	os.Setenv("ARTIST_CACHE_TTL_DAYS", "7")
	defer func() {
		os.Unsetenv("DISCOVERY_MAX_RESULTS")
		os.Unsetenv("DISCOVERY_PREFILTER_CAP")
		os.Unsetenv("ARTIST_CACHE_TTL_DAYS")
	}()

	// Load config
	cfg, err := Load()
	assert.NoError(t, err)

	// Verify discovery config
	assert.Equal(t, 10, cfg.Discovery.MaxResults)
	assert.Equal(t, 40, cfg.Discovery.PrefilterCap)
	assert.Equal(t, 7*24*time.Hour, cfg.Discovery.ArtistCacheTTL())
}

func TestLoad_Defaults(t *testing.T) {
	// Ensure env vars are cleared
	os.Unsetenv("DISCOVERY_MAX_RESULTS")
	os.Unsetenv("DISCOVERY_PREFILTER_CAP")
	os.Unsetenv("SPOTIFY_RATE_LIMIT_MAX_WAIT_SECONDS")

	cfg, err := Load()
	assert.NoError(t, err)

	// Verify defaults
	assert.Equal(t, 25, cfg.Discovery.MaxResults)
	assert.Equal(t, 75, cfg.Discovery.PrefilterCap)
	assert.Equal(t, 30, cfg.Discovery.ArtistCacheTTLDays)
	assert.Equal(t, 5*time.Second, cfg.Spotify.RateLimitMaxWait)
}

func TestLoad_PrefilterCapBelowMaxResults(t *testing.T) {
	os.Setenv("DISCOVERY_MAX_RESULTS", "50")
	os.Setenv("DISCOVERY_PREFILTER_CAP", "25")
	defer func() {
		os.Unsetenv("DISCOVERY_MAX_RESULTS")
		os.Unsetenv("DISCOVERY_PREFILTER_CAP")
	}()

	_, err := Load()
	assert.Error(t, err)
}
