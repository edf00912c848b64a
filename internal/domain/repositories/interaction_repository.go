package repositories

import (
	"context"

	"github.com/zatekoja/courtside/internal/domain/entities"
)

// InteractionRepository is the append-only interaction ledger
type InteractionRepository interface {
	// Append records a new interaction. Rows are never updated or deleted.
	Append(ctx context.Context, interaction *entities.Interaction) error

	// ListByUserAndPlace returns every interaction of one user at one place
	ListByUserAndPlace(ctx context.Context, userID, placeID string) ([]*entities.Interaction, error)

	// ListByPlaceForUsers returns the interactions of several users at one place
	ListByPlaceForUsers(ctx context.Context, placeID string, userIDs []string) ([]*entities.Interaction, error)
}
