package database

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/soundcheckhq/concertmatch/backend/internal/domain/entities"
	"github.com/soundcheckhq/concertmatch/backend/internal/domain/repositories"
	"github.com/soundcheckhq/concertmatch/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/soundcheckhq/concertmatch/backend/pkg/errors"
)

type DiscoveryAnalyticsAdapter struct {
	client *postgres.Client
}

func NewDiscoveryAnalyticsAdapter(client *postgres.Client) repositories.DiscoveryAnalyticsRepository {
	return &DiscoveryAnalyticsAdapter{client: client}
}

func (a *DiscoveryAnalyticsAdapter) LogRun(ctx context.Context, run *entities.DiscoveryRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO discovery_runs
		(id, user_id, city, source, events_scanned, matched, cache_hit_rate, rate_limited, latency_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := a.client.DB().ExecContext(ctx, query,
		run.ID,
		run.UserID,
		run.City,
		run.Source,
		run.EventsScanned,
		run.Matched,
		run.CacheHitRate,
		run.RateLimited,
		run.LatencyMs,
		run.CreatedAt,
	)

	if err != nil {
		return apperrors.NewInternalError("failed to log discovery run", err)
	}

	return nil
}

func (a *DiscoveryAnalyticsAdapter) RecentRuns(ctx context.Context, limit int) ([]*entities.DiscoveryRun, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, user_id, city, source, events_scanned, matched, cache_hit_rate, rate_limited, latency_ms, created_at
		FROM discovery_runs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := a.client.DB().QueryContext(ctx, query, limit)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get recent discovery runs", err)
	}
	defer rows.Close()

	var runs []*entities.DiscoveryRun
	for rows.Next() {
		run := &entities.DiscoveryRun{}
		err := rows.Scan(
			&run.ID,
			&run.UserID,
			&run.City,
			&run.Source,
			&run.EventsScanned,
			&run.Matched,
			&run.CacheHitRate,
			&run.RateLimited,
			&run.LatencyMs,
			&run.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan discovery run", err)
		}
		runs = append(runs, run)
	}

	return runs, nil
}
