package routes

import (
	"net/http"

	"github.com/soundcheckhq/concertmatch/backend/internal/api/handlers"
	"github.com/soundcheckhq/concertmatch/backend/internal/api/middleware"
	"github.com/soundcheckhq/concertmatch/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	discoveryHandler    *handlers.DiscoveryHandler
	tasteProfileHandler *handlers.TasteProfileHandler
	userHandler         *handlers.UserHandler
	favoriteHandler     *handlers.FavoriteHandler
	geolocationHandler  *handlers.GeolocationHandler

	cacheMiddleware *middleware.CacheMiddleware
	allowedOrigins  []string
	metrics         *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	discoveryHandler *handlers.DiscoveryHandler,
	tasteProfileHandler *handlers.TasteProfileHandler,
	userHandler *handlers.UserHandler,
	favoriteHandler *handlers.FavoriteHandler,
	geolocationHandler *handlers.GeolocationHandler,
	cacheMiddleware *middleware.CacheMiddleware,
	allowedOrigins []string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux: http.NewServeMux(),

		discoveryHandler:    discoveryHandler,
		tasteProfileHandler: tasteProfileHandler,
		userHandler:         userHandler,
		favoriteHandler:     favoriteHandler,
		geolocationHandler:  geolocationHandler,

		cacheMiddleware: cacheMiddleware,
		allowedOrigins:  allowedOrigins,
		metrics:         metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Discovery endpoints
	r.mux.HandleFunc("POST /api/concerts/discover", r.discoveryHandler.Discover)

	// Taste profile endpoints
	r.mux.HandleFunc("POST /api/taste-profile", r.tasteProfileHandler.BuildProfile)
	r.mux.HandleFunc("GET /api/users/{id}/taste-profile", r.tasteProfileHandler.GetProfile)

	// User endpoints
	r.mux.HandleFunc("POST /api/users", r.userHandler.CreateUser)
	r.mux.HandleFunc("GET /api/users/{id}", r.userHandler.GetUser)
	r.mux.HandleFunc("PATCH /api/users/{id}", r.userHandler.UpdateUser)
	r.mux.HandleFunc("DELETE /api/users/{id}", r.userHandler.DeleteUser)

	// Favorite endpoints
	r.mux.HandleFunc("POST /api/users/{id}/favorites", r.favoriteHandler.SaveFavorite)
	r.mux.HandleFunc("GET /api/users/{id}/favorites", r.favoriteHandler.ListFavorites)
	r.mux.HandleFunc("DELETE /api/favorites/{id}", r.favoriteHandler.DeleteFavorite)

	// Geolocation endpoints
	r.mux.HandleFunc("GET /api/geocode", r.geolocationHandler.Geocode)

	// Analytics endpoints
	r.mux.HandleFunc("GET /api/analytics/discovery-runs", r.discoveryHandler.RecentRuns)

	// Apply middleware in reverse order (last middleware wraps first).
	// CORS must be outermost so cached responses also get CORS headers.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// HTTP performance optimizations (compression, ETag, cache headers)
	handler = middleware.ResponseOptimization(handler)

	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
