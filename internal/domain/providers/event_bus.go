package providers

import (
	"context"

	"github.com/zatekoja/courtside/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.PlaceEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.PlaceEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

const (
	// EventChannelPlaceUpdates is the channel for all place updates
	EventChannelPlaceUpdates = "place:updates"

	// EventChannelPlacePrefix is the prefix for place-specific channels
	EventChannelPlacePrefix = "place:"
)

// GetPlaceChannel returns the channel name for a specific place
func GetPlaceChannel(placeID string) string {
	return EventChannelPlacePrefix + placeID
}
