package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/soundcheckhq/concertmatch/backend/internal/adapters/cache"
	"github.com/soundcheckhq/concertmatch/backend/internal/adapters/database"
	"github.com/soundcheckhq/concertmatch/backend/internal/adapters/events"
	"github.com/soundcheckhq/concertmatch/backend/internal/adapters/providers/eventcatalog"
	"github.com/soundcheckhq/concertmatch/backend/internal/adapters/providers/geolocation"
	"github.com/soundcheckhq/concertmatch/backend/internal/api/handlers"
	"github.com/soundcheckhq/concertmatch/backend/internal/api/middleware"
	"github.com/soundcheckhq/concertmatch/backend/internal/api/routes"
	"github.com/soundcheckhq/concertmatch/backend/internal/application/services"
	"github.com/soundcheckhq/concertmatch/backend/internal/domain/providers"
	"github.com/soundcheckhq/concertmatch/backend/internal/infrastructure/clients/musicbrainz"
	"github.com/soundcheckhq/concertmatch/backend/internal/infrastructure/clients/postgres"
	"github.com/soundcheckhq/concertmatch/backend/internal/infrastructure/clients/redis"
	"github.com/soundcheckhq/concertmatch/backend/internal/infrastructure/clients/spotify"
	"github.com/soundcheckhq/concertmatch/backend/internal/infrastructure/observability"
	"github.com/soundcheckhq/concertmatch/backend/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)
	logger := observability.GetLogger()

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					logger.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			logger.Info().Msg("OpenTelemetry initialized")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	logger.Info().Msg("PostgreSQL client initialized")

	// Initialize Redis client. The service degrades to in-process caching
	// without it.
	var cacheProvider providers.CacheProvider
	var eventBus providers.EventBus
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		logger.Warn().Err(err).Msg("Redis unavailable, using in-memory cache")
		cacheProvider = cache.NewMemoryAdapter()
	} else {
		defer redisClient.Close()
		cacheProvider = cache.NewRedisAdapter(redisClient)
		eventBus = events.NewRedisEventBus(redisClient)
		logger.Info().Msg("Redis client initialized")
	}

	// Initialize repositories
	userAdapter := database.NewUserAdapter(pgClient)
	tasteProfileAdapter := database.NewTasteProfileAdapter(pgClient)
	favoriteAdapter := database.NewFavoriteAdapter(pgClient)
	analyticsAdapter := database.NewDiscoveryAnalyticsAdapter(pgClient)

	// Initialize geolocation. The static table resolves most US cities
	// without any network call.
	var geolocationProvider providers.GeolocationProvider
	switch cfg.Geolocation.Provider {
	case "nominatim":
		fallback := geolocation.NewNominatimProvider(cfg.Geolocation.UserAgent, cacheProvider)
		geolocationProvider = geolocation.NewStaticProvider(fallback)
	default:
		geolocationProvider = geolocation.NewStaticProvider(nil)
	}

	// Initialize the artist catalog
	spotifyClient, err := spotify.NewClient(&cfg.Spotify)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize Spotify client")
	}

	// MusicBrainz backs synthetic event discovery
	mbClient := musicbrainz.NewClient(&cfg.MusicBrainz, cacheProvider)

	eventCatalog := eventcatalog.NewEventCatalog(eventcatalog.EventCatalogConfig{
		TicketmasterAPIKey: cfg.Ticketmaster.APIKey,
		JambaseAPIKey:      cfg.Jambase.APIKey,
		AllowSynthetic:     cfg.Discovery.AllowSynthetic,
	}, cacheProvider, mbClient, spotifyClient)
	logger.Info().Str("source", eventCatalog.Name()).Msg("event catalog initialized")

	// Initialize services
	prefilterService := services.NewPrefilterService()
	scoringService := services.NewMatchScoringService()
	resolverService := services.NewArtistResolverService(
		spotifyClient,
		cacheProvider,
		metrics,
		cfg.Discovery.ArtistCacheTTL(),
	)

	tasteProfileService := services.NewTasteProfileService(spotifyClient, tasteProfileAdapter)

	discoveryService := services.NewDiscoveryService(
		prefilterService,
		scoringService,
		resolverService,
		eventCatalog,
		tasteProfileAdapter,
		userAdapter,
		eventBus,
		metrics,
		cfg.Discovery.MaxResults,
		cfg.Discovery.PrefilterCap,
	)

	// Persist completed runs off the bus
	var runAnalytics *services.RunAnalyticsService
	if eventBus != nil {
		runAnalytics = services.NewRunAnalyticsService(analyticsAdapter, eventBus)
		if err := runAnalytics.Start(); err != nil {
			logger.Warn().Err(err).Msg("failed to start run analytics service")
		}
	}

	// Initialize handlers
	discoveryHandler := handlers.NewDiscoveryHandler(discoveryService, analyticsAdapter)
	tasteProfileHandler := handlers.NewTasteProfileHandler(tasteProfileService)
	userHandler := handlers.NewUserHandler(userAdapter)
	favoriteHandler := handlers.NewFavoriteHandler(favoriteAdapter)
	geolocationHandler := handlers.NewGeolocationHandler(geolocationProvider)

	cacheMiddleware := middleware.NewCacheMiddleware(cacheProvider)

	// Set up router
	router := routes.NewRouter(
		discoveryHandler,
		tasteProfileHandler,
		userHandler,
		favoriteHandler,
		geolocationHandler,
		cacheMiddleware,
		cfg.Server.AllowedOrigins,
		metrics,
	)

	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // discovery runs can take a while on cold caches
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("error during server shutdown")
	}

	if runAnalytics != nil {
		runAnalytics.Stop()
	}

	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			logger.Error().Err(err).Msg("error closing event bus")
		}
	}

	logger.Info().Msg("server stopped")
}
