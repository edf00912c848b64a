package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/zatekoja/courtside/internal/domain/entities"
	"github.com/zatekoja/courtside/internal/domain/repositories"
	"github.com/zatekoja/courtside/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/courtside/pkg/errors"
)

var placeColumns = []interface{}{
	"id", goqu.L("COALESCE(owner_id, '')").As("owner_id"), "kind", "name",
	"description", "address", "phone_number", "opening_hours", "website",
	"surface_type", "created_at", "updated_at",
}

// PlaceAdapter reads places and answers ownership lookups
type PlaceAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewPlaceAdapter creates a new place adapter
func NewPlaceAdapter(client *postgres.Client) repositories.PlaceRepository {
	return &PlaceAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetByID retrieves a place by ID
func (a *PlaceAdapter) GetByID(ctx context.Context, id string) (*entities.Place, error) {
	query, args, err := a.db.Select(placeColumns...).
		From("places").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build place query", err)
	}

	place := &entities.Place{}
	err = a.client.DB().GetContext(ctx, place, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("place with id %s not found", id))
	}
	if err != nil {
		return nil, classify("failed to get place", err)
	}
	return place, nil
}

// IsOwner reports whether userID is the current owner of placeID
func (a *PlaceAdapter) IsOwner(ctx context.Context, userID, placeID string) (bool, error) {
	if userID == "" {
		return false, nil
	}

	query, args, err := a.db.Select(goqu.COUNT("*")).
		From("places").
		Where(goqu.Ex{"id": placeID, "owner_id": userID}).
		ToSQL()
	if err != nil {
		return false, apperrors.NewInternalError("failed to build ownership query", err)
	}

	var count int
	if err := a.client.DB().GetContext(ctx, &count, query, args...); err != nil {
		return false, classify("failed to check place ownership", err)
	}
	return count > 0, nil
}
