package handlers

import (
	"context"
	"net/http"

	"github.com/zatekoja/courtside/internal/application/services"
	"github.com/zatekoja/courtside/internal/domain/entities"
)

// ReviewManager submits, updates and ranks reviews
type ReviewManager interface {
	Submit(ctx context.Context, input services.SubmitReviewInput) (*entities.Review, error)
	Update(ctx context.Context, input services.UpdateReviewInput) (*entities.Review, error)
	Rank(ctx context.Context, placeID string) ([]*entities.RankedReview, error)
}

// ReviewHandler serves review endpoints
type ReviewHandler struct {
	reviews ReviewManager
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviews ReviewManager) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

type reviewRequest struct {
	Rating      int      `json:"rating"`
	Comment     string   `json:"comment"`
	Images      []string `json:"images,omitempty"`
	PlayedSport *string  `json:"played_sport,omitempty"`
}

// SubmitReview handles POST /api/places/{id}/reviews
func (h *ReviewHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req reviewRequest
	if err := decodeJSON(r, w, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	review, err := h.reviews.Submit(r.Context(), services.SubmitReviewInput{
		PlaceID:     r.PathValue("id"),
		UserID:      userID,
		Rating:      req.Rating,
		Comment:     req.Comment,
		Images:      req.Images,
		PlayedSport: req.PlayedSport,
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, review)
}

// UpdateReview handles PUT /api/reviews/{id}
func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req reviewRequest
	if err := decodeJSON(r, w, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	review, err := h.reviews.Update(r.Context(), services.UpdateReviewInput{
		ReviewID:    r.PathValue("id"),
		UserID:      userID,
		Rating:      req.Rating,
		Comment:     req.Comment,
		Images:      req.Images,
		PlayedSport: req.PlayedSport,
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, review)
}

// ListReviews handles GET /api/places/{id}/reviews, ranked by credibility
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	ranked, err := h.reviews.Rank(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"reviews": ranked,
		"count":   len(ranked),
	})
}
