package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/zatekoja/courtside/internal/application/loaders"
	"github.com/zatekoja/courtside/internal/domain/entities"
	"github.com/zatekoja/courtside/internal/domain/repositories"
	"github.com/zatekoja/courtside/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/courtside/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

const (
	MinRating = 1
	MaxRating = 5

	MinCommentLength = 10
	// LongCommentLength is the length a comment must exceed to earn the content multiplier
	LongCommentLength     = 100
	LongCommentMultiplier = 1.3
)

// SubmitReviewInput is a new review of a place
type SubmitReviewInput struct {
	PlaceID     string   `json:"place_id"`
	UserID      string   `json:"user_id"`
	Rating      int      `json:"rating"`
	Comment     string   `json:"comment"`
	Images      []string `json:"images,omitempty"`
	PlayedSport *string  `json:"played_sport,omitempty"`
}

// UpdateReviewInput replaces the content of an existing review
type UpdateReviewInput struct {
	ReviewID    string   `json:"review_id"`
	UserID      string   `json:"user_id"`
	Rating      int      `json:"rating"`
	Comment     string   `json:"comment"`
	Images      []string `json:"images,omitempty"`
	PlayedSport *string  `json:"played_sport,omitempty"`
}

// ContentMultiplier rewards comments longer than LongCommentLength characters
func ContentMultiplier(comment string) float64 {
	if utf8.RuneCountInString(comment) > LongCommentLength {
		return LongCommentMultiplier
	}
	return 1.0
}

// RankReviews orders reviews by weight times content multiplier, highest
// first. Equal scores keep their input order. Users missing from weights get
// BaseWeight. Every review is returned.
func RankReviews(reviews []*entities.Review, weights map[string]float64) []*entities.RankedReview {
	ranked := make([]*entities.RankedReview, 0, len(reviews))
	for _, review := range reviews {
		weight, ok := weights[review.UserID]
		if !ok {
			weight = BaseWeight
		}
		multiplier := ContentMultiplier(review.Comment)
		ranked = append(ranked, &entities.RankedReview{
			Review:            review,
			Weight:            weight,
			ContentMultiplier: multiplier,
			Score:             weight * multiplier,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

func validateReview(rating int, comment string) error {
	if rating < MinRating || rating > MaxRating {
		return apperrors.NewValidationError(fmt.Sprintf("rating must be between %d and %d", MinRating, MaxRating))
	}
	if utf8.RuneCountInString(strings.TrimSpace(comment)) < MinCommentLength {
		return apperrors.NewValidationError(fmt.Sprintf("comment must be at least %d characters", MinCommentLength))
	}
	return nil
}

// ReviewService manages reviews and their credibility ranking
type ReviewService struct {
	places       repositories.PlaceRepository
	reviews      repositories.ReviewRepository
	interactions repositories.InteractionRepository
	weights      BatchWeightProvider
	now          func() time.Time
}

// NewReviewService creates a new review service
func NewReviewService(
	places repositories.PlaceRepository,
	reviews repositories.ReviewRepository,
	interactions repositories.InteractionRepository,
	weights BatchWeightProvider,
) *ReviewService {
	return &ReviewService{
		places:       places,
		reviews:      reviews,
		interactions: interactions,
		weights:      weights,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Submit stores a user's first review of a place
func (s *ReviewService) Submit(ctx context.Context, input SubmitReviewInput) (*entities.Review, error) {
	ctx, span := observability.StartSpan(ctx, "ReviewService.Submit")
	defer span.End()

	if input.UserID == "" {
		return nil, apperrors.NewValidationError("user_id is required")
	}
	if err := validateReview(input.Rating, input.Comment); err != nil {
		return nil, err
	}

	place, err := s.places.GetByID(ctx, input.PlaceID)
	if err != nil {
		return nil, err
	}

	existing, err := s.reviews.GetByUserAndPlace(ctx, input.UserID, place.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.NewConflictError("user has already reviewed this place", existing.ID)
	}

	now := s.now()
	review := &entities.Review{
		ID:          uuid.New().String(),
		PlaceID:     place.ID,
		UserID:      input.UserID,
		Rating:      input.Rating,
		Comment:     strings.TrimSpace(input.Comment),
		Images:      pq.StringArray(nonNilImages(input.Images)),
		PlayedSport: input.PlayedSport,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		// a concurrent submit won the unique index; point at its review
		if apperrors.IsType(err, apperrors.ErrorTypeConflict) {
			if winner, lookupErr := s.reviews.GetByUserAndPlace(ctx, input.UserID, place.ID); lookupErr == nil && winner != nil {
				return nil, apperrors.NewConflictError("user has already reviewed this place", winner.ID)
			}
		}
		observability.RecordError(span, err)
		return nil, err
	}

	recordSideEffect(ctx, s.interactions, place, input.UserID, entities.InteractionTypeReviewSubmitted, now)
	return review, nil
}

// Update lets the author replace rating, comment, images and sport
func (s *ReviewService) Update(ctx context.Context, input UpdateReviewInput) (*entities.Review, error) {
	if err := validateReview(input.Rating, input.Comment); err != nil {
		return nil, err
	}

	review, err := s.reviews.GetByID(ctx, input.ReviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID != input.UserID {
		return nil, apperrors.NewForbiddenError("only the author can update a review")
	}

	review.Rating = input.Rating
	review.Comment = strings.TrimSpace(input.Comment)
	review.Images = pq.StringArray(nonNilImages(input.Images))
	review.PlayedSport = input.PlayedSport
	review.UpdatedAt = s.now()

	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

// Rank returns every review of a place ordered by credibility score. Weights
// are read fresh for each call.
func (s *ReviewService) Rank(ctx context.Context, placeID string) ([]*entities.RankedReview, error) {
	ctx, span := observability.StartSpan(ctx, "ReviewService.Rank")
	defer span.End()

	if _, err := s.places.GetByID(ctx, placeID); err != nil {
		return nil, err
	}

	reviews, err := s.reviews.ListByPlace(ctx, placeID)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	seen := make(map[string]struct{}, len(reviews))
	authors := make([]string, 0, len(reviews))
	for _, review := range reviews {
		if _, ok := seen[review.UserID]; ok {
			continue
		}
		seen[review.UserID] = struct{}{}
		authors = append(authors, review.UserID)
	}

	weights := map[string]float64{}
	if len(authors) > 0 {
		weights, err = loaders.NewWeightLoader(placeID, s.weights).LoadAll(ctx, authors)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to load review weights", err)
		}
	}

	observability.SetSpanAttributes(span,
		attribute.String("place_id", placeID),
		attribute.Int("reviews", len(reviews)),
	)
	return RankReviews(reviews, weights), nil
}

func nonNilImages(images []string) []string {
	if images == nil {
		return []string{}
	}
	return images
}
