package repositories

import (
	"context"

	"github.com/zatekoja/courtside/internal/domain/entities"
)

// ReviewRepository defines the interface for review operations
type ReviewRepository interface {
	// Create inserts a review. A second review for the same (user, place)
	// fails with a conflict error.
	Create(ctx context.Context, review *entities.Review) error

	// Update overwrites rating, comment, images and sport of an existing review
	Update(ctx context.Context, review *entities.Review) error

	// GetByID retrieves a review by ID
	GetByID(ctx context.Context, id string) (*entities.Review, error)

	// GetByUserAndPlace returns the user's review of a place, or nil when none exists
	GetByUserAndPlace(ctx context.Context, userID, placeID string) (*entities.Review, error)

	// ListByPlace lists reviews of a place, newest first
	ListByPlace(ctx context.Context, placeID string) ([]*entities.Review, error)
}
