package handlers

import (
	"context"
	"net/http"

	"github.com/zatekoja/courtside/internal/application/services"
	"github.com/zatekoja/courtside/internal/domain/entities"
)

// EditModerator is the moderation gate as seen by HTTP
type EditModerator interface {
	Submit(ctx context.Context, input services.SubmitEditInput) (*entities.EditProposal, error)
	Resolve(ctx context.Context, resolverID, proposalID string, decision entities.EditDecision) (*entities.EditProposal, error)
	ListPending(ctx context.Context, ownerID, placeID string) ([]*entities.EditProposal, error)
}

// ModerationHandler serves place edit endpoints
type ModerationHandler struct {
	moderation EditModerator
}

// NewModerationHandler creates a new moderation handler
func NewModerationHandler(moderation EditModerator) *ModerationHandler {
	return &ModerationHandler{moderation: moderation}
}

type submitEditRequest struct {
	FieldName string `json:"field_name"`
	NewValue  string `json:"new_value"`
}

type resolveEditRequest struct {
	Decision entities.EditDecision `json:"decision"`
}

// SubmitEdit handles POST /api/places/{id}/edits.
// Responds 201 when the edit was applied and 202 when it awaits the owner.
func (h *ModerationHandler) SubmitEdit(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req submitEditRequest
	if err := decodeJSON(r, w, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	proposal, err := h.moderation.Submit(r.Context(), services.SubmitEditInput{
		PlaceID:    r.PathValue("id"),
		FieldName:  req.FieldName,
		NewValue:   req.NewValue,
		ProposerID: userID,
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	status := http.StatusAccepted
	if proposal.Status == entities.EditProposalStatusApplied {
		status = http.StatusCreated
	}
	respondWithJSON(w, status, proposal)
}

// ListPendingEdits handles GET /api/places/{id}/edits/pending
func (h *ModerationHandler) ListPendingEdits(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	proposals, err := h.moderation.ListPending(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if proposals == nil {
		proposals = []*entities.EditProposal{}
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"proposals": proposals,
		"count":     len(proposals),
	})
}

// ResolveEdit handles POST /api/edits/{id}/resolve
func (h *ModerationHandler) ResolveEdit(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req resolveEditRequest
	if err := decodeJSON(r, w, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	proposal, err := h.moderation.Resolve(r.Context(), userID, r.PathValue("id"), req.Decision)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, proposal)
}
