package repositories

import (
	"context"
	"time"

	"github.com/zatekoja/courtside/internal/domain/entities"
)

// PlayIntentRepository defines the interface for play intent operations
type PlayIntentRepository interface {
	// Create inserts an intent
	Create(ctx context.Context, intent *entities.PlayIntent) error

	// ListActiveByPlace returns intents of a place with expires_at after now
	ListActiveByPlace(ctx context.Context, placeID string, now time.Time, filter IntentFilter) ([]*entities.PlayIntent, error)

	// ListActiveByUserAndPlace returns one user's intents at a place with expires_at after now
	ListActiveByUserAndPlace(ctx context.Context, userID, placeID string, now time.Time) ([]*entities.PlayIntent, error)
}

// IntentFilter narrows timeline reads
type IntentFilter struct {
	Sport string
}
