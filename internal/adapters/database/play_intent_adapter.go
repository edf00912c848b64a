package database

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/zatekoja/courtside/internal/domain/entities"
	"github.com/zatekoja/courtside/internal/domain/repositories"
	"github.com/zatekoja/courtside/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/courtside/pkg/errors"
)

var playIntentColumns = []interface{}{
	"id", "place_id", "user_id", "intent_time", "sport", "skill_level", "note",
	"created_at", "expires_at",
}

// PlayIntentAdapter implements play intent persistence in Postgres
type PlayIntentAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewPlayIntentAdapter creates a new play intent adapter
func NewPlayIntentAdapter(client *postgres.Client) repositories.PlayIntentRepository {
	return &PlayIntentAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts an intent
func (a *PlayIntentAdapter) Create(ctx context.Context, intent *entities.PlayIntent) error {
	record := goqu.Record{
		"id":          intent.ID,
		"place_id":    intent.PlaceID,
		"user_id":     intent.UserID,
		"intent_time": intent.IntentTime,
		"sport":       intent.Sport,
		"skill_level": intent.SkillLevel,
		"note":        intent.Note,
		"created_at":  intent.CreatedAt,
		"expires_at":  intent.ExpiresAt,
	}

	query, args, err := a.db.Insert("play_intents").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build intent insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return classify("failed to create play intent", err)
	}
	return nil
}

// ListActiveByPlace returns the unexpired intents of a place ordered by intent time
func (a *PlayIntentAdapter) ListActiveByPlace(ctx context.Context, placeID string, now time.Time, filter repositories.IntentFilter) ([]*entities.PlayIntent, error) {
	ds := a.db.Select(playIntentColumns...).
		From("play_intents").
		Where(
			goqu.Ex{"place_id": placeID},
			goqu.C("expires_at").Gt(now),
		)

	if filter.Sport != "" {
		ds = ds.Where(goqu.Ex{"sport": filter.Sport})
	}

	query, args, err := ds.Order(goqu.I("intent_time").Asc(), goqu.I("id").Asc()).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build intent list query", err)
	}

	var intents []*entities.PlayIntent
	if err := a.client.DB().SelectContext(ctx, &intents, query, args...); err != nil {
		return nil, classify("failed to list play intents", err)
	}
	return intents, nil
}

// ListActiveByUserAndPlace returns one user's unexpired intents at a place
func (a *PlayIntentAdapter) ListActiveByUserAndPlace(ctx context.Context, userID, placeID string, now time.Time) ([]*entities.PlayIntent, error) {
	query, args, err := a.db.Select(playIntentColumns...).
		From("play_intents").
		Where(
			goqu.Ex{"user_id": userID, "place_id": placeID},
			goqu.C("expires_at").Gt(now),
		).
		Order(goqu.I("intent_time").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build intent list query", err)
	}

	var intents []*entities.PlayIntent
	if err := a.client.DB().SelectContext(ctx, &intents, query, args...); err != nil {
		return nil, classify("failed to list play intents", err)
	}
	return intents, nil
}
