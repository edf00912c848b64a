package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/zatekoja/courtside/internal/application/services"
	"github.com/zatekoja/courtside/internal/domain/entities"
	"github.com/zatekoja/courtside/internal/domain/repositories"
)

// IntentPlanner records intents and clusters them into timelines
type IntentPlanner interface {
	Create(ctx context.Context, input services.CreateIntentInput) (*entities.PlayIntent, error)
	Timeline(ctx context.Context, placeID string, filter repositories.IntentFilter) (*services.Timeline, error)
}

// IntentHandler serves play intent endpoints
type IntentHandler struct {
	intents IntentPlanner
}

// NewIntentHandler creates a new intent handler
func NewIntentHandler(intents IntentPlanner) *IntentHandler {
	return &IntentHandler{intents: intents}
}

type createIntentRequest struct {
	IntentTime time.Time `json:"intent_time"`
	Sport      *string   `json:"sport,omitempty"`
	SkillLevel *string   `json:"skill_level,omitempty"`
	Note       *string   `json:"note,omitempty"`
}

// CreateIntent handles POST /api/places/{id}/intents
func (h *IntentHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req createIntentRequest
	if err := decodeJSON(r, w, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	intent, err := h.intents.Create(r.Context(), services.CreateIntentInput{
		PlaceID:    r.PathValue("id"),
		UserID:     userID,
		IntentTime: req.IntentTime,
		Sport:      req.Sport,
		SkillLevel: req.SkillLevel,
		Note:       req.Note,
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, intent)
}

// GetTimeline handles GET /api/places/{id}/timeline?sport=
func (h *IntentHandler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	timeline, err := h.intents.Timeline(r.Context(), r.PathValue("id"), timelineFilter(r))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, timeline)
}

func timelineFilter(r *http.Request) repositories.IntentFilter {
	return repositories.IntentFilter{Sport: r.URL.Query().Get("sport")}
}
