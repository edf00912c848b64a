package events

import (
	"context"
	"errors"

	"github.com/zatekoja/courtside/internal/domain/entities"
	"github.com/zatekoja/courtside/internal/domain/providers"
)

// PlacePublisher publishes a place event on the place's own channel and on
// the global updates channel.
type PlacePublisher struct {
	bus providers.EventBus
}

// NewPlacePublisher wraps an event bus. A nil bus yields a publisher that
// drops every event.
func NewPlacePublisher(bus providers.EventBus) *PlacePublisher {
	return &PlacePublisher{bus: bus}
}

// PublishPlaceEvent publishes to both channels and joins any failures
func (p *PlacePublisher) PublishPlaceEvent(ctx context.Context, event *entities.PlaceEvent) error {
	if p == nil || p.bus == nil {
		return nil
	}

	return errors.Join(
		p.bus.Publish(ctx, providers.GetPlaceChannel(event.PlaceID), event),
		p.bus.Publish(ctx, providers.EventChannelPlaceUpdates, event),
	)
}
