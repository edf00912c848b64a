package repositories

import (
	"context"

	"github.com/zatekoja/courtside/internal/domain/entities"
)

// PlaceRepository reads place records owned by the surrounding application
type PlaceRepository interface {
	// GetByID retrieves a place by ID
	GetByID(ctx context.Context, id string) (*entities.Place, error)

	// IsOwner reports whether userID currently owns placeID
	IsOwner(ctx context.Context, userID, placeID string) (bool, error)
}
