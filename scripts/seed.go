package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/soundcheckhq/concertmatch/backend/internal/adapters/database"
	"github.com/soundcheckhq/concertmatch/backend/internal/domain/entities"
	"github.com/soundcheckhq/concertmatch/backend/internal/infrastructure/clients/postgres"
	"github.com/soundcheckhq/concertmatch/backend/pkg/config"
)

// Seeds a demo listener with a hand-built taste profile so discovery can be
// exercised without going through the Spotify OAuth flow first.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	userRepo := database.NewUserAdapter(pgClient)
	profileRepo := database.NewTasteProfileAdapter(pgClient)
	favoriteRepo := database.NewFavoriteAdapter(pgClient)

	ctx := context.Background()

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, truncating tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE
				favorites,
				discovery_runs,
				taste_profiles,
				users
			RESTART IDENTITY CASCADE
		`)
		if err != nil {
			log.Fatalf("Failed to reset tables: %v", err)
		}
	}

	// 1. Seed demo user
	now := time.Now().UTC()
	user := &entities.User{
		ID:               uuid.New().String(),
		Name:             "Demo Listener",
		Email:            "demo@soundcheckhq.com",
		ConcertsPerMonth: 2,
		TicketBudget:     60,
		City:             "Austin, TX",
		Radius:           25,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := userRepo.Create(ctx, user); err != nil {
		log.Fatalf("Failed to create demo user: %v", err)
	}
	log.Printf("Created demo user %s", user.ID)

	// 2. Seed a taste profile leaning indie/folk with a rock base
	profile := &entities.TasteProfile{
		ID:     uuid.New().String(),
		UserID: user.ID,
		GenreMap: map[string]float64{
			"indie rock":  1.0,
			"indie folk":  0.85,
			"folk":        0.7,
			"dream pop":   0.55,
			"garage rock": 0.4,
			"alt-country": 0.3,
		},
		RootGenreMap: map[string]float64{
			"rock":    1.0,
			"indie":   0.9,
			"folk":    0.75,
			"pop":     0.4,
			"country": 0.2,
		},
		TopArtistIDs:   []string{"demo-artist-1", "demo-artist-2", "demo-artist-3"},
		TopArtistNames: []string{"Big Thief", "Fleet Foxes", "Alvvays"},
		CreatedAt:      now,
	}
	if err := profileRepo.Upsert(ctx, profile); err != nil {
		log.Fatalf("Failed to create taste profile: %v", err)
	}
	log.Printf("Created taste profile with %d genres", len(profile.GenreMap))

	// 3. Seed one saved concert so the favorites list isn't empty
	popularity := 22
	favorite := &entities.Favorite{
		UserID: user.ID,
		Concert: entities.ConcertMatch{
			EventID:          "seed-event-1",
			ArtistName:       "Night Shapes",
			GenreDescription: "indie rock, dream pop",
			MatchScore:       91.5,
			MatchExplanation: "Strong match on indie rock",
			VenueName:        "Mohawk",
			VenueCity:        "Austin, TX",
			Date:             now.AddDate(0, 0, 14).Format(time.RFC3339),
			Popularity:       &popularity,
			Source:           "seed",
		},
	}
	if err := favoriteRepo.Create(ctx, favorite); err != nil {
		log.Fatalf("Failed to create favorite: %v", err)
	}

	log.Println("Seeding complete")
	log.Printf("Try: curl -X POST localhost:8080/api/concerts/discover -d '{\"user_id\":\"%s\",\"city\":\"Austin, TX\"}'", user.ID)
}
