package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/soundcheckhq/concertmatch/backend/internal/adapters/cache"
	"github.com/soundcheckhq/concertmatch/backend/internal/adapters/database"
	"github.com/soundcheckhq/concertmatch/backend/internal/adapters/providers/eventcatalog"
	"github.com/soundcheckhq/concertmatch/backend/internal/application/services"
	"github.com/soundcheckhq/concertmatch/backend/internal/infrastructure/clients/musicbrainz"
	"github.com/soundcheckhq/concertmatch/backend/internal/infrastructure/clients/postgres"
	"github.com/soundcheckhq/concertmatch/backend/internal/infrastructure/clients/redis"
	"github.com/soundcheckhq/concertmatch/backend/internal/infrastructure/clients/spotify"
	"github.com/soundcheckhq/concertmatch/backend/internal/infrastructure/observability"
	"github.com/soundcheckhq/concertmatch/backend/pkg/config"
)

// Warms the persistent artist cache for every city users search from.
// Intended to run on a schedule so interactive discovery stays fast.
func main() {
	var workers int
	flag.IntVar(&workers, "workers", 3, "Number of concurrent resolution workers")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger("concertmatch-cachewarm", cfg.Server.Env)
	logger := observability.GetLogger()

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pgClient.Close()

	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("warming requires the shared cache")
	}
	defer redisClient.Close()
	cacheProvider := cache.NewRedisAdapter(redisClient)

	spotifyClient, err := spotify.NewClient(&cfg.Spotify)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize Spotify client")
	}

	mbClient := musicbrainz.NewClient(&cfg.MusicBrainz, cacheProvider)
	eventCatalog := eventcatalog.NewEventCatalog(eventcatalog.EventCatalogConfig{
		TicketmasterAPIKey: cfg.Ticketmaster.APIKey,
		JambaseAPIKey:      cfg.Jambase.APIKey,
		AllowSynthetic:     cfg.Discovery.AllowSynthetic,
	}, cacheProvider, mbClient, spotifyClient)

	resolver := services.NewArtistResolverService(
		spotifyClient,
		cacheProvider,
		nil,
		cfg.Discovery.ArtistCacheTTL(),
	)

	svc := services.NewCacheWarmService(
		database.NewTasteProfileAdapter(pgClient),
		database.NewUserAdapter(pgClient),
		eventCatalog,
		resolver,
		workers,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	start := time.Now()
	summary, err := svc.WarmAll(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("cache warming failed")
	}

	logger.Info().
		Int("cities", summary.Cities).
		Int("events", summary.EventsScanned).
		Int("artists", summary.ArtistsResolved).
		Bool("rate_limited", summary.RateLimited).
		Dur("elapsed", time.Since(start)).
		Msg("cache warming complete")
}
