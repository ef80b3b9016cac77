package eventcatalog

import (
	"context"

	"github.com/soundcheckhq/concertmatch/backend/internal/domain/entities"
	"github.com/soundcheckhq/concertmatch/backend/internal/domain/providers"
	"github.com/soundcheckhq/concertmatch/backend/internal/infrastructure/clients/musicbrainz"
	"github.com/soundcheckhq/concertmatch/backend/internal/infrastructure/observability"
)

// EventCatalogConfig configures event catalog selection
type EventCatalogConfig struct {
	TicketmasterAPIKey string
	JambaseAPIKey      string
	AllowSynthetic     bool
}

// NewEventCatalog wires the best available listings source: Ticketmaster
// when configured (its listings carry genres), then Jambase, with the
// synthetic MusicBrainz catalog as last resort and runtime fallback.
func NewEventCatalog(
	cfg EventCatalogConfig,
	cache providers.CacheProvider,
	mb *musicbrainz.Client,
	artists providers.ArtistCatalog,
) providers.EventCatalog {
	var synthetic providers.EventCatalog
	if cfg.AllowSynthetic {
		synthetic = NewSyntheticAdapter(mb, artists)
	}

	var primary providers.EventCatalog
	switch {
	case cfg.TicketmasterAPIKey != "":
		primary = NewTicketmasterAdapter(cfg.TicketmasterAPIKey, cache)
	case cfg.JambaseAPIKey != "":
		primary = NewJambaseAdapter(cfg.JambaseAPIKey, cache)
	default:
		if synthetic != nil {
			return synthetic
		}
		// Keys missing and synthetic disabled: surface the config error on
		// first use rather than at startup.
		return NewTicketmasterAdapter("", cache)
	}

	if synthetic == nil {
		return primary
	}
	return &FallbackCatalog{primary: primary, fallback: synthetic}
}

// FallbackCatalog tries the primary source and falls back when it errors or
// comes back empty. Events carry their own Source attribution either way.
type FallbackCatalog struct {
	primary  providers.EventCatalog
	fallback providers.EventCatalog
}

// Name identifies the preferred source
func (c *FallbackCatalog) Name() string { return c.primary.Name() }

// SearchEvents searches the primary catalog, then the fallback
func (c *FallbackCatalog) SearchEvents(ctx context.Context, params providers.EventSearchParams) ([]entities.Event, error) {
	events, err := c.primary.SearchEvents(ctx, params)
	if err == nil && len(events) > 0 {
		return events, nil
	}

	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).
			Str("source", c.primary.Name()).
			Msg("primary event catalog failed, using fallback")
	}

	return c.fallback.SearchEvents(ctx, params)
}
