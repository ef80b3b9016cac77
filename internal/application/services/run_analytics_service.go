package services

import (
	"context"
	"fmt"
	"time"

	"github.com/soundcheckhq/concertmatch/backend/internal/domain/entities"
	"github.com/soundcheckhq/concertmatch/backend/internal/domain/providers"
	"github.com/soundcheckhq/concertmatch/backend/internal/domain/repositories"
	"github.com/soundcheckhq/concertmatch/backend/internal/infrastructure/observability"
)

// RunAnalyticsService persists completed discovery runs off the event bus,
// keeping analytics writes out of the request path.
type RunAnalyticsService struct {
	analytics repositories.DiscoveryAnalyticsRepository
	eventBus  providers.EventBus
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewRunAnalyticsService creates a new run analytics service
func NewRunAnalyticsService(analytics repositories.DiscoveryAnalyticsRepository, eventBus providers.EventBus) *RunAnalyticsService {
	ctx, cancel := context.WithCancel(context.Background())
	return &RunAnalyticsService{
		analytics: analytics,
		eventBus:  eventBus,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start begins listening for completed runs
func (s *RunAnalyticsService) Start() error {
	eventChan, err := s.eventBus.Subscribe(s.ctx, providers.EventChannelDiscoveryCompleted)
	if err != nil {
		return fmt.Errorf("failed to subscribe to discovery events: %w", err)
	}

	go s.processEvents(eventChan)
	observability.GetLogger().Info().Msg("run analytics service started")
	return nil
}

// Stop stops the run analytics service
func (s *RunAnalyticsService) Stop() {
	s.cancel()
}

func (s *RunAnalyticsService) processEvents(eventChan <-chan *entities.DiscoveryEvent) {
	for {
		select {
		case <-s.ctx.Done():
			return
		case event := <-eventChan:
			if event == nil {
				continue
			}
			s.recordRun(event)
		}
	}
}

func (s *RunAnalyticsService) recordRun(event *entities.DiscoveryEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	run := &entities.DiscoveryRun{
		ID:            event.ID,
		UserID:        event.UserID,
		City:          event.City,
		Source:        event.Source,
		EventsScanned: event.Stats.EventsScanned,
		Matched:       event.Stats.Matched,
		CacheHitRate:  event.Stats.CacheHitRate,
		RateLimited:   event.Stats.RateLimited,
		LatencyMs:     event.Stats.LatencyMs,
		CreatedAt:     event.CreatedAt,
	}

	if err := s.analytics.LogRun(ctx, run); err != nil {
		observability.GetLogger().Warn().Err(err).
			Str("run_id", event.ID).
			Msg("failed to persist discovery run")
	}
}
