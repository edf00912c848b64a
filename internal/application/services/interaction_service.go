package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zatekoja/courtside/internal/domain/entities"
	"github.com/zatekoja/courtside/internal/domain/repositories"
	apperrors "github.com/zatekoja/courtside/pkg/errors"
)

// InteractionService appends to the interaction ledger
type InteractionService struct {
	places       repositories.PlaceRepository
	interactions repositories.InteractionRepository
}

// NewInteractionService creates a new interaction service
func NewInteractionService(places repositories.PlaceRepository, interactions repositories.InteractionRepository) *InteractionService {
	return &InteractionService{places: places, interactions: interactions}
}

// Record appends an interaction reported by the user it belongs to. Only
// self-reportable types are accepted.
func (s *InteractionService) Record(ctx context.Context, interaction *entities.Interaction) (*entities.Interaction, error) {
	if interaction == nil {
		return nil, apperrors.NewValidationError("interaction is required")
	}
	if !interaction.Type.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown interaction type %q", interaction.Type))
	}
	if !interaction.Type.SelfReportable() {
		return nil, apperrors.NewForbiddenError(fmt.Sprintf("interaction type %q can only be recorded by a trusted service", interaction.Type))
	}
	return s.record(ctx, interaction)
}

// RecordTrusted appends an interaction on behalf of a trusted service, such
// as the booking system confirming a verified booking.
func (s *InteractionService) RecordTrusted(ctx context.Context, interaction *entities.Interaction) (*entities.Interaction, error) {
	if interaction == nil {
		return nil, apperrors.NewValidationError("interaction is required")
	}
	return s.record(ctx, interaction)
}

// record validates and appends one interaction. The place kind is taken from
// the place itself when the caller leaves it empty.
func (s *InteractionService) record(ctx context.Context, interaction *entities.Interaction) (*entities.Interaction, error) {
	if interaction.UserID == "" {
		return nil, apperrors.NewValidationError("user_id is required")
	}
	if !interaction.Type.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown interaction type %q", interaction.Type))
	}

	place, err := s.places.GetByID(ctx, interaction.PlaceID)
	if err != nil {
		return nil, err
	}
	if interaction.PlaceKind == "" {
		interaction.PlaceKind = place.Kind
	}
	if !interaction.PlaceKind.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown place kind %q", interaction.PlaceKind))
	}

	if interaction.ID == "" {
		interaction.ID = uuid.New().String()
	}
	if interaction.OccurredAt.IsZero() {
		interaction.OccurredAt = time.Now().UTC()
	}

	if err := s.interactions.Append(ctx, interaction); err != nil {
		return nil, err
	}
	return interaction, nil
}
