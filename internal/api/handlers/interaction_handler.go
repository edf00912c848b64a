package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/zatekoja/courtside/internal/application/services"
	"github.com/zatekoja/courtside/internal/domain/entities"
	apperrors "github.com/zatekoja/courtside/pkg/errors"
)

// InteractionRecorder appends to the interaction ledger
type InteractionRecorder interface {
	Record(ctx context.Context, interaction *entities.Interaction) (*entities.Interaction, error)
	RecordTrusted(ctx context.Context, interaction *entities.Interaction) (*entities.Interaction, error)
}

// WeightReader explains a user's weight at a place
type WeightReader interface {
	Breakdown(ctx context.Context, userID, placeID string) *services.WeightBreakdown
}

// InteractionHandler serves the ledger and weight endpoints
type InteractionHandler struct {
	interactions InteractionRecorder
	weights      WeightReader
}

// NewInteractionHandler creates a new interaction handler
func NewInteractionHandler(interactions InteractionRecorder, weights WeightReader) *InteractionHandler {
	return &InteractionHandler{interactions: interactions, weights: weights}
}

type recordInteractionRequest struct {
	Type       entities.InteractionType `json:"type"`
	PlaceKind  entities.PlaceKind       `json:"place_kind,omitempty"`
	OccurredAt *time.Time               `json:"occurred_at,omitempty"`
}

// RecordInteraction handles POST /api/places/{id}/interactions
func (h *InteractionHandler) RecordInteraction(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req recordInteractionRequest
	if err := decodeJSON(r, w, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	if req.Type.Valid() && !req.Type.SelfReportable() {
		respondWithAppError(w, r, apperrors.NewForbiddenError(
			fmt.Sprintf("interaction type %q can only be recorded by a trusted service", req.Type)))
		return
	}

	interaction := &entities.Interaction{
		UserID:    userID,
		PlaceID:   r.PathValue("id"),
		PlaceKind: req.PlaceKind,
		Type:      req.Type,
	}
	if req.OccurredAt != nil {
		interaction.OccurredAt = req.OccurredAt.UTC()
	}

	recorded, err := h.interactions.Record(r.Context(), interaction)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, recorded)
}

type trustedInteractionRequest struct {
	UserID     string                   `json:"user_id"`
	Type       entities.InteractionType `json:"type"`
	PlaceKind  entities.PlaceKind       `json:"place_kind,omitempty"`
	OccurredAt *time.Time               `json:"occurred_at,omitempty"`
}

// RecordTrustedInteraction handles POST /internal/places/{id}/interactions.
// It is mounted only on the internal listener; the user comes from the body.
func (h *InteractionHandler) RecordTrustedInteraction(w http.ResponseWriter, r *http.Request) {
	var req trustedInteractionRequest
	if err := decodeJSON(r, w, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	interaction := &entities.Interaction{
		UserID:    strings.TrimSpace(req.UserID),
		PlaceID:   r.PathValue("id"),
		PlaceKind: req.PlaceKind,
		Type:      req.Type,
	}
	if req.OccurredAt != nil {
		interaction.OccurredAt = req.OccurredAt.UTC()
	}

	recorded, err := h.interactions.RecordTrusted(r.Context(), interaction)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, recorded)
}

// GetWeight handles GET /api/places/{id}/weight?user_id=
// Without user_id the caller's own weight is returned.
func (h *InteractionHandler) GetWeight(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		var ok bool
		if userID, ok = requireUser(w, r); !ok {
			return
		}
	}

	respondWithJSON(w, http.StatusOK, h.weights.Breakdown(r.Context(), userID, r.PathValue("id")))
}
