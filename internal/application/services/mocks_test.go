package services_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/zatekoja/courtside/internal/domain/entities"
	"github.com/zatekoja/courtside/internal/domain/repositories"
)

type MockInteractionRepository struct {
	mock.Mock
}

func (m *MockInteractionRepository) Append(ctx context.Context, interaction *entities.Interaction) error {
	args := m.Called(ctx, interaction)
	return args.Error(0)
}

func (m *MockInteractionRepository) ListByUserAndPlace(ctx context.Context, userID, placeID string) ([]*entities.Interaction, error) {
	args := m.Called(ctx, userID, placeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Interaction), args.Error(1)
}

func (m *MockInteractionRepository) ListByPlaceForUsers(ctx context.Context, placeID string, userIDs []string) ([]*entities.Interaction, error) {
	args := m.Called(ctx, placeID, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Interaction), args.Error(1)
}

type MockPlaceRepository struct {
	mock.Mock
}

func (m *MockPlaceRepository) GetByID(ctx context.Context, id string) (*entities.Place, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Place), args.Error(1)
}

func (m *MockPlaceRepository) IsOwner(ctx context.Context, userID, placeID string) (bool, error) {
	args := m.Called(ctx, userID, placeID)
	return args.Bool(0), args.Error(1)
}

type MockEditProposalRepository struct {
	mock.Mock
}

func (m *MockEditProposalRepository) CreatePending(ctx context.Context, proposal *entities.EditProposal) error {
	args := m.Called(ctx, proposal)
	return args.Error(0)
}

func (m *MockEditProposalRepository) CreateApplied(ctx context.Context, proposal *entities.EditProposal) error {
	args := m.Called(ctx, proposal)
	return args.Error(0)
}

func (m *MockEditProposalRepository) GetByID(ctx context.Context, id string) (*entities.EditProposal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.EditProposal), args.Error(1)
}

func (m *MockEditProposalRepository) ResolveApplied(ctx context.Context, id, resolverID string, resolvedAt time.Time) (*entities.EditProposal, error) {
	args := m.Called(ctx, id, resolverID, resolvedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.EditProposal), args.Error(1)
}

func (m *MockEditProposalRepository) ResolveRejected(ctx context.Context, id, resolverID string, resolvedAt time.Time) (*entities.EditProposal, error) {
	args := m.Called(ctx, id, resolverID, resolvedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.EditProposal), args.Error(1)
}

func (m *MockEditProposalRepository) ListByPlace(ctx context.Context, placeID string, status entities.EditProposalStatus) ([]*entities.EditProposal, error) {
	args := m.Called(ctx, placeID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.EditProposal), args.Error(1)
}

type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(ctx context.Context, review *entities.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) Update(ctx context.Context, review *entities.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) GetByID(ctx context.Context, id string) (*entities.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Review), args.Error(1)
}

func (m *MockReviewRepository) GetByUserAndPlace(ctx context.Context, userID, placeID string) (*entities.Review, error) {
	args := m.Called(ctx, userID, placeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Review), args.Error(1)
}

func (m *MockReviewRepository) ListByPlace(ctx context.Context, placeID string) ([]*entities.Review, error) {
	args := m.Called(ctx, placeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Review), args.Error(1)
}

type MockPlayIntentRepository struct {
	mock.Mock
}

func (m *MockPlayIntentRepository) Create(ctx context.Context, intent *entities.PlayIntent) error {
	args := m.Called(ctx, intent)
	return args.Error(0)
}

func (m *MockPlayIntentRepository) ListActiveByPlace(ctx context.Context, placeID string, now time.Time, filter repositories.IntentFilter) ([]*entities.PlayIntent, error) {
	args := m.Called(ctx, placeID, now, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.PlayIntent), args.Error(1)
}

func (m *MockPlayIntentRepository) ListActiveByUserAndPlace(ctx context.Context, userID, placeID string, now time.Time) ([]*entities.PlayIntent, error) {
	args := m.Called(ctx, userID, placeID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.PlayIntent), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishPlaceEvent(ctx context.Context, event *entities.PlaceEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// fixedWeights is a WeightProvider/BatchWeightProvider stub
type fixedWeights map[string]float64

func (f fixedWeights) Weight(ctx context.Context, userID, placeID string) float64 {
	if w, ok := f[userID]; ok {
		return w
	}
	return 1.0
}

func (f fixedWeights) Weights(ctx context.Context, placeID string, userIDs []string) map[string]float64 {
	out := make(map[string]float64, len(userIDs))
	for _, id := range userIDs {
		out[id] = f.Weight(ctx, id, placeID)
	}
	return out
}

func interactions(userID string, types ...entities.InteractionType) []*entities.Interaction {
	out := make([]*entities.Interaction, 0, len(types))
	for i, t := range types {
		out = append(out, &entities.Interaction{
			ID:         userID + "-" + string(t) + "-" + time.Duration(i).String(),
			UserID:     userID,
			PlaceID:    "place-p",
			PlaceKind:  entities.PlaceKindCommunity,
			Type:       t,
			OccurredAt: time.Now().UTC(),
		})
	}
	return out
}

func strPtr(s string) *string { return &s }
