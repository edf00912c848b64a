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

var reviewColumns = []interface{}{
	"id", "place_id", "user_id", "rating", "comment", "images", "played_sport",
	"created_at", "updated_at",
}

// ReviewAdapter implements review persistence in Postgres
type ReviewAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewReviewAdapter creates a new review adapter
func NewReviewAdapter(client *postgres.Client) repositories.ReviewRepository {
	return &ReviewAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a review. The (user_id, place_id) unique index turns a
// concurrent duplicate into a conflict.
func (a *ReviewAdapter) Create(ctx context.Context, review *entities.Review) error {
	if review == nil {
		return apperrors.NewInternalError("review is nil", fmt.Errorf("review is nil"))
	}

	record := goqu.Record{
		"id":           review.ID,
		"place_id":     review.PlaceID,
		"user_id":      review.UserID,
		"rating":       review.Rating,
		"comment":      review.Comment,
		"images":       review.Images,
		"played_sport": review.PlayedSport,
		"created_at":   review.CreatedAt,
		"updated_at":   review.UpdatedAt,
	}

	query, args, err := a.db.Insert("reviews").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build review insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return &apperrors.AppError{
				Type:    apperrors.ErrorTypeConflict,
				Message: "user has already reviewed this place",
				Err:     err,
			}
		}
		return classify("failed to create review", err)
	}
	return nil
}

// Update overwrites the editable parts of a review
func (a *ReviewAdapter) Update(ctx context.Context, review *entities.Review) error {
	query, args, err := a.db.Update("reviews").
		Set(goqu.Record{
			"rating":       review.Rating,
			"comment":      review.Comment,
			"images":       review.Images,
			"played_sport": review.PlayedSport,
			"updated_at":   review.UpdatedAt,
		}).
		Where(goqu.Ex{"id": review.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build review update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return classify("failed to update review", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return classify("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("review with id %s not found", review.ID))
	}
	return nil
}

// GetByID retrieves a review by ID
func (a *ReviewAdapter) GetByID(ctx context.Context, id string) (*entities.Review, error) {
	query, args, err := a.db.Select(reviewColumns...).
		From("reviews").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build review query", err)
	}

	review := &entities.Review{}
	err = a.client.DB().GetContext(ctx, review, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("review with id %s not found", id))
	}
	if err != nil {
		return nil, classify("failed to get review", err)
	}
	return review, nil
}

// GetByUserAndPlace returns the user's review of a place, or nil
func (a *ReviewAdapter) GetByUserAndPlace(ctx context.Context, userID, placeID string) (*entities.Review, error) {
	query, args, err := a.db.Select(reviewColumns...).
		From("reviews").
		Where(goqu.Ex{"user_id": userID, "place_id": placeID}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build review query", err)
	}

	review := &entities.Review{}
	err = a.client.DB().GetContext(ctx, review, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("failed to get review", err)
	}
	return review, nil
}

// ListByPlace lists reviews for a place, newest first
func (a *ReviewAdapter) ListByPlace(ctx context.Context, placeID string) ([]*entities.Review, error) {
	query, args, err := a.db.Select(reviewColumns...).
		From("reviews").
		Where(goqu.Ex{"place_id": placeID}).
		Order(goqu.I("created_at").Desc(), goqu.I("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build review list query", err)
	}

	var reviews []*entities.Review
	if err := a.client.DB().SelectContext(ctx, &reviews, query, args...); err != nil {
		return nil, classify("failed to list reviews", err)
	}
	return reviews, nil
}
