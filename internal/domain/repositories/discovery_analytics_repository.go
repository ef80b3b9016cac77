package repositories

import (
	"context"

	"github.com/soundcheckhq/concertmatch/backend/internal/domain/entities"
)

// DiscoveryAnalyticsRepository records completed ranking runs for analysis
type DiscoveryAnalyticsRepository interface {
	// LogRun persists one completed run
	LogRun(ctx context.Context, run *entities.DiscoveryRun) error

	// RecentRuns returns the most recent runs, newest first
	RecentRuns(ctx context.Context, limit int) ([]*entities.DiscoveryRun, error)
}
