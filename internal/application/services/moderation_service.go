package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zatekoja/courtside/internal/domain/entities"
	"github.com/zatekoja/courtside/internal/domain/repositories"
	"github.com/zatekoja/courtside/internal/infrastructure/observability"
	"github.com/zatekoja/courtside/pkg/config"
	apperrors "github.com/zatekoja/courtside/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

// SubmitEditInput is a proposed change to one place field
type SubmitEditInput struct {
	PlaceID    string `json:"place_id"`
	FieldName  string `json:"field_name"`
	NewValue   string `json:"new_value"`
	ProposerID string `json:"proposer_id"`
}

// ModerationService gates place edits behind ownership and credibility weight
type ModerationService struct {
	places       repositories.PlaceRepository
	proposals    repositories.EditProposalRepository
	interactions repositories.InteractionRepository
	weights      WeightProvider
	publisher    PlaceEventPublisher
	threshold    float64
	metrics      *observability.Metrics
	now          func() time.Time
}

// NewModerationService creates a new moderation service
func NewModerationService(
	places repositories.PlaceRepository,
	proposals repositories.EditProposalRepository,
	interactions repositories.InteractionRepository,
	weights WeightProvider,
	publisher PlaceEventPublisher,
	cfg config.EngineConfig,
	metrics *observability.Metrics,
) *ModerationService {
	return &ModerationService{
		places:       places,
		proposals:    proposals,
		interactions: interactions,
		weights:      weights,
		publisher:    publisher,
		threshold:    cfg.AutoApplyThreshold,
		metrics:      metrics,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Submit records a proposal and applies it at once when the proposer owns the
// place or carries enough weight. Otherwise it waits for the owner.
func (s *ModerationService) Submit(ctx context.Context, input SubmitEditInput) (*entities.EditProposal, error) {
	ctx, span := observability.StartSpan(ctx, "ModerationService.Submit")
	defer span.End()

	if input.ProposerID == "" {
		return nil, apperrors.NewValidationError("proposer_id is required")
	}
	if !entities.IsEditableField(input.FieldName) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("field %q is not editable", input.FieldName))
	}
	newValue := strings.TrimSpace(input.NewValue)
	if newValue == "" {
		return nil, apperrors.NewValidationError("new_value must not be empty")
	}

	place, err := s.places.GetByID(ctx, input.PlaceID)
	if err != nil {
		return nil, err
	}
	oldValue, _ := place.FieldValue(input.FieldName)
	if oldValue == newValue {
		return nil, apperrors.NewValidationError("new_value matches the current value")
	}

	isOwner, err := s.places.IsOwner(ctx, input.ProposerID, place.ID)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	weight := s.weights.Weight(ctx, input.ProposerID, place.ID)

	now := s.now()
	proposal := &entities.EditProposal{
		ID:                 uuid.New().String(),
		PlaceID:            place.ID,
		FieldName:          input.FieldName,
		OldValue:           oldValue,
		NewValue:           newValue,
		ProposerID:         input.ProposerID,
		Status:             entities.EditProposalStatusPending,
		WeightAtSubmission: weight,
		CreatedAt:          now,
	}

	if isOwner || weight >= s.threshold {
		proposal.Status = entities.EditProposalStatusApplied
		proposal.ResolvedAt = &now
		if isOwner {
			proposal.ResolvedBy = &input.ProposerID
		}
		err = s.proposals.CreateApplied(ctx, proposal)
	} else {
		err = s.proposals.CreatePending(ctx, proposal)
	}
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	observability.SetSpanAttributes(span,
		attribute.String("place_id", place.ID),
		attribute.String("status", string(proposal.Status)),
		attribute.Float64("weight", weight),
		attribute.Bool("owner_edit", isOwner),
	)
	observability.RecordModerationDecision(ctx, s.metrics, string(proposal.Status), isOwner)

	recordSideEffect(ctx, s.interactions, place, input.ProposerID, entities.InteractionTypeEditSubmitted, now)
	if proposal.Status == entities.EditProposalStatusApplied {
		publish(ctx, s.publisher, editResolvedEvent(proposal))
	}
	return proposal, nil
}

// Resolve applies or rejects a pending proposal. Ownership is checked against
// the store at the time of the call, not at submission.
func (s *ModerationService) Resolve(ctx context.Context, resolverID, proposalID string, decision entities.EditDecision) (*entities.EditProposal, error) {
	ctx, span := observability.StartSpan(ctx, "ModerationService.Resolve")
	defer span.End()

	if decision != entities.EditDecisionApply && decision != entities.EditDecisionReject {
		return nil, apperrors.NewValidationError(fmt.Sprintf("decision must be %q or %q", entities.EditDecisionApply, entities.EditDecisionReject))
	}

	proposal, err := s.proposals.GetByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}

	// non-owners learn nothing about the proposal's state
	isOwner, err := s.places.IsOwner(ctx, resolverID, proposal.PlaceID)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	if !isOwner {
		return nil, apperrors.NewForbiddenError("only the place owner can resolve edits")
	}

	if proposal.Status.IsTerminal() {
		return nil, apperrors.NewConflictError(fmt.Sprintf("edit proposal is already %s", proposal.Status), proposal.ID)
	}

	now := s.now()
	var resolved *entities.EditProposal
	if decision == entities.EditDecisionApply {
		resolved, err = s.proposals.ResolveApplied(ctx, proposal.ID, resolverID, now)
	} else {
		resolved, err = s.proposals.ResolveRejected(ctx, proposal.ID, resolverID, now)
	}
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	observability.RecordModerationDecision(ctx, s.metrics, string(resolved.Status), false)
	publish(ctx, s.publisher, editResolvedEvent(resolved))
	return resolved, nil
}

// ListPending returns the owner's review queue for a place, oldest first
func (s *ModerationService) ListPending(ctx context.Context, ownerID, placeID string) ([]*entities.EditProposal, error) {
	isOwner, err := s.places.IsOwner(ctx, ownerID, placeID)
	if err != nil {
		return nil, err
	}
	if !isOwner {
		return nil, apperrors.NewForbiddenError("only the place owner can view pending edits")
	}
	return s.proposals.ListByPlace(ctx, placeID, entities.EditProposalStatusPending)
}

func editResolvedEvent(p *entities.EditProposal) *entities.PlaceEvent {
	return entities.NewPlaceEvent(p.PlaceID, entities.PlaceEventTypeEditResolved, map[string]interface{}{
		"proposal_id": p.ID,
		"field_name":  p.FieldName,
		"status":      string(p.Status),
	})
}
