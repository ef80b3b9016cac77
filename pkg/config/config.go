package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Spotify      SpotifyConfig
	Jambase      JambaseConfig
	Ticketmaster TicketmasterConfig
	MusicBrainz  MusicBrainzConfig
	Geolocation  GeolocationConfig
	Discovery    DiscoveryConfig
	OTEL         OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host           string
	Port           int
	Env            string
	AllowedOrigins []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// SpotifyConfig holds Spotify API credentials and rate-limit behavior.
// A 429 whose Retry-After exceeds RateLimitMaxWait is surfaced to the
// caller instead of being waited out.
type SpotifyConfig struct {
	ClientID         string
	ClientSecret     string
	RequestsPerMin   int
	RateLimitMaxWait time.Duration
}

// JambaseConfig holds the Jambase events API key
type JambaseConfig struct {
	APIKey string
}

// TicketmasterConfig holds the Ticketmaster Discovery API key
type TicketmasterConfig struct {
	APIKey string
}

// MusicBrainzConfig holds MusicBrainz client settings.
// MusicBrainz requires a descriptive User-Agent and allows 1 req/s.
type MusicBrainzConfig struct {
	UserAgent string
}

// GeolocationConfig holds geolocation provider configuration
type GeolocationConfig struct {
	Provider  string
	UserAgent string
}

// DiscoveryConfig holds pipeline tunables
type DiscoveryConfig struct {
	MaxResults         int
	PrefilterCap       int
	ArtistCacheTTLDays int
	AllowSynthetic     bool
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Env:            getEnv("APP_ENV", "development"),
			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "concertmatch"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Spotify: SpotifyConfig{
			ClientID:         getEnv("SPOTIFY_CLIENT_ID", ""),
			ClientSecret:     getEnv("SPOTIFY_CLIENT_SECRET", ""),
			RequestsPerMin:   getEnvAsInt("SPOTIFY_REQUESTS_PER_MIN", 120),
			RateLimitMaxWait: time.Duration(getEnvAsInt("SPOTIFY_RATE_LIMIT_MAX_WAIT_SECONDS", 5)) * time.Second,
		},
		Jambase: JambaseConfig{
			APIKey: getEnv("JAMBASE_API_KEY", ""),
		},
		Ticketmaster: TicketmasterConfig{
			APIKey: getEnv("TICKETMASTER_API_KEY", ""),
		},
		MusicBrainz: MusicBrainzConfig{
			UserAgent: getEnv("MUSICBRAINZ_USER_AGENT", "concertmatch/1.0 (ops@soundcheckhq.com)"),
		},
		Geolocation: GeolocationConfig{
			Provider:  getEnv("GEOLOCATION_PROVIDER", "static"),
			UserAgent: getEnv("GEOLOCATION_USER_AGENT", "concertmatch/1.0"),
		},
		Discovery: DiscoveryConfig{
			MaxResults:         getEnvAsInt("DISCOVERY_MAX_RESULTS", 25),
			PrefilterCap:       getEnvAsInt("DISCOVERY_PREFILTER_CAP", 75),
			ArtistCacheTTLDays: getEnvAsInt("ARTIST_CACHE_TTL_DAYS", 30),
			AllowSynthetic:     getEnvAsBool("DISCOVERY_ALLOW_SYNTHETIC", true),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "concertmatch"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}

	if cfg.Discovery.PrefilterCap < cfg.Discovery.MaxResults {
		return nil, fmt.Errorf("DISCOVERY_PREFILTER_CAP (%d) must be >= DISCOVERY_MAX_RESULTS (%d)",
			cfg.Discovery.PrefilterCap, cfg.Discovery.MaxResults)
	}

	return cfg, nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ArtistCacheTTL returns the persistent artist-cache TTL as a duration
func (c *DiscoveryConfig) ArtistCacheTTL() time.Duration {
	return time.Duration(c.ArtistCacheTTLDays) * 24 * time.Hour
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
