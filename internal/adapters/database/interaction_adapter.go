package database

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/zatekoja/courtside/internal/domain/entities"
	"github.com/zatekoja/courtside/internal/domain/repositories"
	"github.com/zatekoja/courtside/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/courtside/pkg/errors"
)

var interactionColumns = []interface{}{
	"id", "user_id", "place_id", "place_kind", "type", "occurred_at",
}

// InteractionAdapter implements the append-only ledger in Postgres
type InteractionAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewInteractionAdapter creates a new interaction adapter
func NewInteractionAdapter(client *postgres.Client) repositories.InteractionRepository {
	return &InteractionAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Append inserts an interaction
func (a *InteractionAdapter) Append(ctx context.Context, interaction *entities.Interaction) error {
	record := goqu.Record{
		"id":          interaction.ID,
		"user_id":     interaction.UserID,
		"place_id":    interaction.PlaceID,
		"place_kind":  interaction.PlaceKind,
		"type":        interaction.Type,
		"occurred_at": interaction.OccurredAt,
	}

	query, args, err := a.db.Insert("interactions").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build interaction insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return classify("failed to append interaction", err)
	}
	return nil
}

// ListByUserAndPlace returns one user's ledger slice for a place
func (a *InteractionAdapter) ListByUserAndPlace(ctx context.Context, userID, placeID string) ([]*entities.Interaction, error) {
	query, args, err := a.db.Select(interactionColumns...).
		From("interactions").
		Where(goqu.Ex{"user_id": userID, "place_id": placeID}).
		Order(goqu.I("occurred_at").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build interaction query", err)
	}

	var interactions []*entities.Interaction
	if err := a.client.DB().SelectContext(ctx, &interactions, query, args...); err != nil {
		return nil, classify("failed to list interactions", err)
	}
	return interactions, nil
}

// ListByPlaceForUsers returns the ledger slices of several users at one place
func (a *InteractionAdapter) ListByPlaceForUsers(ctx context.Context, placeID string, userIDs []string) ([]*entities.Interaction, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	query, args, err := a.db.Select(interactionColumns...).
		From("interactions").
		Where(goqu.Ex{"place_id": placeID, "user_id": userIDs}).
		Order(goqu.I("user_id").Asc(), goqu.I("occurred_at").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build interaction query", err)
	}

	var interactions []*entities.Interaction
	if err := a.client.DB().SelectContext(ctx, &interactions, query, args...); err != nil {
		return nil, classify("failed to list interactions", err)
	}
	return interactions, nil
}
