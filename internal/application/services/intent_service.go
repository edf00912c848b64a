package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/zatekoja/courtside/internal/domain/entities"
	"github.com/zatekoja/courtside/internal/domain/repositories"
	"github.com/zatekoja/courtside/internal/infrastructure/observability"
	"github.com/zatekoja/courtside/pkg/config"
	apperrors "github.com/zatekoja/courtside/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

// MaxNoteLength bounds the free-text note on an intent
const MaxNoteLength = 280

// CreateIntentInput is a user's signal that they plan to play at a place
type CreateIntentInput struct {
	PlaceID    string    `json:"place_id"`
	UserID     string    `json:"user_id"`
	IntentTime time.Time `json:"intent_time"`
	Sport      *string   `json:"sport,omitempty"`
	SkillLevel *string   `json:"skill_level,omitempty"`
	Note       *string   `json:"note,omitempty"`
}

// Timeline is the clustered view of a place's active intents
type Timeline struct {
	PlaceID       string                `json:"place_id"`
	GeneratedAt   time.Time             `json:"generated_at"`
	ActiveIntents int                   `json:"active_intents"`
	Blocks        []*entities.TimeBlock `json:"blocks"`
}

// IntentService records play intents and computes place timelines
type IntentService struct {
	places       repositories.PlaceRepository
	intents      repositories.PlayIntentRepository
	interactions repositories.InteractionRepository
	publisher    PlaceEventPublisher
	cfg          config.EngineConfig
	metrics      *observability.Metrics
	now          func() time.Time
}

// NewIntentService creates a new intent service
func NewIntentService(
	places repositories.PlaceRepository,
	intents repositories.PlayIntentRepository,
	interactions repositories.InteractionRepository,
	publisher PlaceEventPublisher,
	cfg config.EngineConfig,
	metrics *observability.Metrics,
) *IntentService {
	return &IntentService{
		places:       places,
		intents:      intents,
		interactions: interactions,
		publisher:    publisher,
		cfg:          cfg,
		metrics:      metrics,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Create stores an intent unless the user already holds an active one at the
// place within the duplicate window of the requested time
func (s *IntentService) Create(ctx context.Context, input CreateIntentInput) (*entities.PlayIntent, error) {
	ctx, span := observability.StartSpan(ctx, "IntentService.Create")
	defer span.End()

	now := s.now()
	if err := s.validate(input, now); err != nil {
		return nil, err
	}

	place, err := s.places.GetByID(ctx, input.PlaceID)
	if err != nil {
		return nil, err
	}

	held, err := s.intents.ListActiveByUserAndPlace(ctx, input.UserID, place.ID, now)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	for _, existing := range held {
		if absDuration(existing.IntentTime.Sub(input.IntentTime)) <= s.cfg.DuplicateIntentWindow {
			return nil, apperrors.NewConflictError(
				fmt.Sprintf("user already has an intent within %s of this time", s.cfg.DuplicateIntentWindow),
				existing.ID,
			)
		}
	}

	intentTime := input.IntentTime.UTC()
	intent := &entities.PlayIntent{
		ID:         uuid.New().String(),
		PlaceID:    place.ID,
		UserID:     input.UserID,
		IntentTime: intentTime,
		Sport:      trimmed(input.Sport),
		SkillLevel: trimmed(input.SkillLevel),
		Note:       trimmed(input.Note),
		CreatedAt:  now,
		ExpiresAt:  intentTime.Add(s.cfg.IntentGrace),
	}
	if err := s.intents.Create(ctx, intent); err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	recordSideEffect(ctx, s.interactions, place, input.UserID, entities.InteractionTypeIntentToPlay, now)
	publish(ctx, s.publisher, entities.NewPlaceEvent(place.ID, entities.PlaceEventTypeIntentCreated, map[string]interface{}{
		"intent_id":   intent.ID,
		"intent_time": intent.IntentTime,
	}))
	return intent, nil
}

// Timeline clusters the place's intents that are still active now
func (s *IntentService) Timeline(ctx context.Context, placeID string, filter repositories.IntentFilter) (*Timeline, error) {
	ctx, span := observability.StartSpan(ctx, "IntentService.Timeline")
	defer span.End()

	if _, err := s.places.GetByID(ctx, placeID); err != nil {
		return nil, err
	}

	now := s.now()
	intents, err := s.intents.ListActiveByPlace(ctx, placeID, now, filter)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	active := FilterActive(intents, now)
	blocks := ClusterIntents(active, s.cfg.ClusterRadius)

	observability.SetSpanAttributes(span,
		attribute.String("place_id", placeID),
		attribute.Int("intents", len(active)),
		attribute.Int("blocks", len(blocks)),
	)
	observability.RecordTimelineBlocks(ctx, s.metrics, len(blocks))

	return &Timeline{
		PlaceID:       placeID,
		GeneratedAt:   now,
		ActiveIntents: len(active),
		Blocks:        blocks,
	}, nil
}

func (s *IntentService) validate(input CreateIntentInput, now time.Time) error {
	if input.UserID == "" {
		return apperrors.NewValidationError("user_id is required")
	}
	if input.IntentTime.IsZero() {
		return apperrors.NewValidationError("intent_time is required")
	}
	if !input.IntentTime.Add(s.cfg.IntentGrace).After(now) {
		return apperrors.NewValidationError("intent_time has already passed")
	}
	if input.IntentTime.After(now.Add(s.cfg.IntentHorizon)) {
		return apperrors.NewValidationError(fmt.Sprintf("intent_time must be within %s", s.cfg.IntentHorizon))
	}
	if level := trimmed(input.SkillLevel); level != nil && !validSkillLevel(*level) {
		return apperrors.NewValidationError(fmt.Sprintf("skill_level must be one of %s", strings.Join(entities.SkillLevels, ", ")))
	}
	if note := trimmed(input.Note); note != nil && utf8.RuneCountInString(*note) > MaxNoteLength {
		return apperrors.NewValidationError(fmt.Sprintf("note must be at most %d characters", MaxNoteLength))
	}
	return nil
}

func validSkillLevel(level string) bool {
	for _, l := range entities.SkillLevels {
		if l == level {
			return true
		}
	}
	return false
}

// trimmed returns nil for absent or blank optional text
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
