package providers

import (
	"context"

	"github.com/soundcheckhq/concertmatch/backend/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to
// discovery lifecycle events.
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.DiscoveryEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.DiscoveryEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannelDiscoveryCompleted carries one event per completed ranking run
const EventChannelDiscoveryCompleted = "discovery:completed"
