package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/zatekoja/courtside/internal/domain/entities"
	"github.com/zatekoja/courtside/internal/domain/repositories"
	"github.com/zatekoja/courtside/internal/infrastructure/observability"
)

// WeightProvider resolves a user's credibility weight at a place
type WeightProvider interface {
	Weight(ctx context.Context, userID, placeID string) float64
}

// BatchWeightProvider resolves the weights of many users at one place in one read
type BatchWeightProvider interface {
	Weights(ctx context.Context, placeID string, userIDs []string) map[string]float64
}

// PlaceEventPublisher publishes downstream place notifications
type PlaceEventPublisher interface {
	PublishPlaceEvent(ctx context.Context, event *entities.PlaceEvent) error
}

// recordSideEffect appends a ledger entry that accompanies another operation.
// A failure is logged and never fails the operation it accompanies.
func recordSideEffect(ctx context.Context, repo repositories.InteractionRepository, place *entities.Place, userID string, kind entities.InteractionType, at time.Time) {
	if repo == nil || place == nil {
		return
	}

	interaction := &entities.Interaction{
		ID:         uuid.New().String(),
		UserID:     userID,
		PlaceID:    place.ID,
		PlaceKind:  place.Kind,
		Type:       kind,
		OccurredAt: at,
	}
	if err := repo.Append(ctx, interaction); err != nil {
		observability.LoggerFromContext(ctx).Warn().
			Err(err).
			Str("place_id", place.ID).
			Str("interaction_type", string(kind)).
			Msg("failed to append ledger entry")
	}
}

// publish sends a place event; failures are logged only
func publish(ctx context.Context, publisher PlaceEventPublisher, event *entities.PlaceEvent) {
	if publisher == nil {
		return
	}
	if err := publisher.PublishPlaceEvent(ctx, event); err != nil {
		observability.LoggerFromContext(ctx).Warn().
			Err(err).
			Str("place_id", event.PlaceID).
			Str("event_type", string(event.EventType)).
			Msg("failed to publish place event")
	}
}
