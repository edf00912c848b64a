package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/courtside/internal/application/services"
	"github.com/zatekoja/courtside/internal/domain/entities"
	"github.com/zatekoja/courtside/pkg/config"
	apperrors "github.com/zatekoja/courtside/pkg/errors"
)

type moderationFixture struct {
	places       *MockPlaceRepository
	proposals    *MockEditProposalRepository
	interactions *MockInteractionRepository
	publisher    *MockPublisher
}

func newModerationFixture() *moderationFixture {
	return &moderationFixture{
		places:       new(MockPlaceRepository),
		proposals:    new(MockEditProposalRepository),
		interactions: new(MockInteractionRepository),
		publisher:    new(MockPublisher),
	}
}

func (f *moderationFixture) service(weights services.WeightProvider) *services.ModerationService {
	return services.NewModerationService(f.places, f.proposals, f.interactions, weights, f.publisher, config.DefaultEngineConfig(), nil)
}

func courtPlace() *entities.Place {
	return &entities.Place{
		ID:          "place-p",
		OwnerID:     "owner-o",
		Kind:        entities.PlaceKindCommunity,
		Name:        "Riverside Courts",
		Description: "Two courts",
	}
}

func TestModerationService_Submit_ExampleScenario(t *testing.T) {
	f := newModerationFixture()
	ledger := new(MockInteractionRepository)
	ledger.On("ListByUserAndPlace", mock.Anything, "user-a", "place-p").
		Return(interactions("user-a", booking, visit, visit), nil)
	ledger.On("ListByUserAndPlace", mock.Anything, "user-b", "place-p").
		Return(interactions("user-b"), nil)
	svc := f.service(services.NewWeightService(ledger, nil))

	f.places.On("GetByID", mock.Anything, "place-p").Return(courtPlace(), nil)
	f.places.On("IsOwner", mock.Anything, mock.Anything, "place-p").Return(false, nil)
	f.proposals.On("CreateApplied", mock.Anything, mock.AnythingOfType("*entities.EditProposal")).Return(nil)
	f.proposals.On("CreatePending", mock.Anything, mock.AnythingOfType("*entities.EditProposal")).Return(nil)
	f.interactions.On("Append", mock.Anything, mock.Anything).Return(nil)
	f.publisher.On("PublishPlaceEvent", mock.Anything, mock.Anything).Return(nil)

	a, err := svc.Submit(context.Background(), services.SubmitEditInput{
		PlaceID: "place-p", FieldName: "description", NewValue: "Two floodlit courts", ProposerID: "user-a",
	})
	require.NoError(t, err)
	assert.Equal(t, entities.EditProposalStatusApplied, a.Status)
	assert.Equal(t, 3.0, a.WeightAtSubmission)
	assert.Equal(t, "Two courts", a.OldValue)
	assert.NotNil(t, a.ResolvedAt)
	assert.Nil(t, a.ResolvedBy)

	b, err := svc.Submit(context.Background(), services.SubmitEditInput{
		PlaceID: "place-p", FieldName: "description", NewValue: "Closed for resurfacing", ProposerID: "user-b",
	})
	require.NoError(t, err)
	assert.Equal(t, entities.EditProposalStatusPending, b.Status)
	assert.Equal(t, 1.0, b.WeightAtSubmission)
	assert.Nil(t, b.ResolvedAt)

	f.proposals.AssertNumberOfCalls(t, "CreateApplied", 1)
	f.proposals.AssertNumberOfCalls(t, "CreatePending", 1)
	f.publisher.AssertNumberOfCalls(t, "PublishPlaceEvent", 1)
	f.interactions.AssertNumberOfCalls(t, "Append", 2)
}

func TestModerationService_Submit_OwnerAlwaysApplies(t *testing.T) {
	f := newModerationFixture()
	svc := f.service(fixedWeights{})

	f.places.On("GetByID", mock.Anything, "place-p").Return(courtPlace(), nil)
	f.places.On("IsOwner", mock.Anything, "owner-o", "place-p").Return(true, nil)
	f.proposals.On("CreateApplied", mock.Anything, mock.Anything).Return(nil)
	f.interactions.On("Append", mock.Anything, mock.Anything).Return(nil)
	f.publisher.On("PublishPlaceEvent", mock.Anything, mock.Anything).Return(nil)

	p, err := svc.Submit(context.Background(), services.SubmitEditInput{
		PlaceID: "place-p", FieldName: "opening_hours", NewValue: "06:00-22:00", ProposerID: "owner-o",
	})

	require.NoError(t, err)
	assert.Equal(t, entities.EditProposalStatusApplied, p.Status)
	require.NotNil(t, p.ResolvedBy)
	assert.Equal(t, "owner-o", *p.ResolvedBy)
}

func TestModerationService_Submit_ThresholdIsInclusive(t *testing.T) {
	f := newModerationFixture()
	svc := f.service(fixedWeights{"user-c": 2.0})

	f.places.On("GetByID", mock.Anything, "place-p").Return(courtPlace(), nil)
	f.places.On("IsOwner", mock.Anything, "user-c", "place-p").Return(false, nil)
	f.proposals.On("CreateApplied", mock.Anything, mock.Anything).Return(nil)
	f.interactions.On("Append", mock.Anything, mock.Anything).Return(nil)
	f.publisher.On("PublishPlaceEvent", mock.Anything, mock.Anything).Return(nil)

	p, err := svc.Submit(context.Background(), services.SubmitEditInput{
		PlaceID: "place-p", FieldName: "website", NewValue: "https://courts.example", ProposerID: "user-c",
	})

	require.NoError(t, err)
	assert.Equal(t, entities.EditProposalStatusApplied, p.Status)
}

func TestModerationService_Submit_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input services.SubmitEditInput
	}{
		{"field outside allow-list", services.SubmitEditInput{PlaceID: "place-p", FieldName: "owner_id", NewValue: "me", ProposerID: "user-a"}},
		{"blank value", services.SubmitEditInput{PlaceID: "place-p", FieldName: "name", NewValue: "   ", ProposerID: "user-a"}},
		{"missing proposer", services.SubmitEditInput{PlaceID: "place-p", FieldName: "name", NewValue: "New"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newModerationFixture()
			_, err := f.service(fixedWeights{}).Submit(context.Background(), tt.input)
			assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
			f.proposals.AssertNotCalled(t, "CreatePending", mock.Anything, mock.Anything)
		})
	}
}

func TestModerationService_Submit_UnchangedValueRejected(t *testing.T) {
	f := newModerationFixture()
	f.places.On("GetByID", mock.Anything, "place-p").Return(courtPlace(), nil)

	_, err := f.service(fixedWeights{}).Submit(context.Background(), services.SubmitEditInput{
		PlaceID: "place-p", FieldName: "description", NewValue: "Two courts", ProposerID: "user-a",
	})

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestModerationService_Submit_LedgerFailureDoesNotFailEdit(t *testing.T) {
	f := newModerationFixture()
	svc := f.service(fixedWeights{})

	f.places.On("GetByID", mock.Anything, "place-p").Return(courtPlace(), nil)
	f.places.On("IsOwner", mock.Anything, "user-b", "place-p").Return(false, nil)
	f.proposals.On("CreatePending", mock.Anything, mock.Anything).Return(nil)
	f.interactions.On("Append", mock.Anything, mock.Anything).Return(errors.New("ledger down"))

	p, err := svc.Submit(context.Background(), services.SubmitEditInput{
		PlaceID: "place-p", FieldName: "surface_type", NewValue: "clay", ProposerID: "user-b",
	})

	require.NoError(t, err)
	assert.Equal(t, entities.EditProposalStatusPending, p.Status)
	f.publisher.AssertNotCalled(t, "PublishPlaceEvent", mock.Anything, mock.Anything)
}

func TestModerationService_Submit_OwnershipErrorPropagates(t *testing.T) {
	f := newModerationFixture()
	f.places.On("GetByID", mock.Anything, "place-p").Return(courtPlace(), nil)
	f.places.On("IsOwner", mock.Anything, "user-b", "place-p").
		Return(false, apperrors.NewUnavailableError("store down", errors.New("refused")))

	_, err := f.service(fixedWeights{}).Submit(context.Background(), services.SubmitEditInput{
		PlaceID: "place-p", FieldName: "name", NewValue: "Riverside", ProposerID: "user-b",
	})

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnavailable))
}

func pendingProposal() *entities.EditProposal {
	return &entities.EditProposal{
		ID:         "prop-1",
		PlaceID:    "place-p",
		FieldName:  "description",
		NewValue:   "Closed for resurfacing",
		ProposerID: "user-b",
		Status:     entities.EditProposalStatusPending,
	}
}

func TestModerationService_Resolve_Apply(t *testing.T) {
	f := newModerationFixture()
	svc := f.service(fixedWeights{})

	applied := pendingProposal()
	applied.Status = entities.EditProposalStatusApplied

	f.proposals.On("GetByID", mock.Anything, "prop-1").Return(pendingProposal(), nil)
	f.places.On("IsOwner", mock.Anything, "owner-o", "place-p").Return(true, nil)
	f.proposals.On("ResolveApplied", mock.Anything, "prop-1", "owner-o", mock.Anything).Return(applied, nil)
	f.publisher.On("PublishPlaceEvent", mock.Anything, mock.MatchedBy(func(e *entities.PlaceEvent) bool {
		return e.EventType == entities.PlaceEventTypeEditResolved && e.Payload["status"] == "applied"
	})).Return(nil)

	p, err := svc.Resolve(context.Background(), "owner-o", "prop-1", entities.EditDecisionApply)

	require.NoError(t, err)
	assert.Equal(t, entities.EditProposalStatusApplied, p.Status)
	f.proposals.AssertNotCalled(t, "ResolveRejected", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.publisher.AssertExpectations(t)
}

func TestModerationService_Resolve_Reject(t *testing.T) {
	f := newModerationFixture()
	svc := f.service(fixedWeights{})

	rejected := pendingProposal()
	rejected.Status = entities.EditProposalStatusRejected

	f.proposals.On("GetByID", mock.Anything, "prop-1").Return(pendingProposal(), nil)
	f.places.On("IsOwner", mock.Anything, "owner-o", "place-p").Return(true, nil)
	f.proposals.On("ResolveRejected", mock.Anything, "prop-1", "owner-o", mock.Anything).Return(rejected, nil)
	f.publisher.On("PublishPlaceEvent", mock.Anything, mock.Anything).Return(errors.New("bus down"))

	p, err := svc.Resolve(context.Background(), "owner-o", "prop-1", entities.EditDecisionReject)

	require.NoError(t, err)
	assert.Equal(t, entities.EditProposalStatusRejected, p.Status)
}

func TestModerationService_Resolve_NonOwnerForbidden(t *testing.T) {
	f := newModerationFixture()
	f.proposals.On("GetByID", mock.Anything, "prop-1").Return(pendingProposal(), nil)
	f.places.On("IsOwner", mock.Anything, "user-a", "place-p").Return(false, nil)

	_, err := f.service(fixedWeights{"user-a": 6.0}).Resolve(context.Background(), "user-a", "prop-1", entities.EditDecisionApply)

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeForbidden))
	f.proposals.AssertNotCalled(t, "ResolveApplied", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestModerationService_Resolve_TerminalIsConflict(t *testing.T) {
	for _, status := range []entities.EditProposalStatus{entities.EditProposalStatusApplied, entities.EditProposalStatusRejected} {
		t.Run(string(status), func(t *testing.T) {
			f := newModerationFixture()
			done := pendingProposal()
			done.Status = status
			f.proposals.On("GetByID", mock.Anything, "prop-1").Return(done, nil)
			f.places.On("IsOwner", mock.Anything, "owner-o", "place-p").Return(true, nil)

			_, err := f.service(fixedWeights{}).Resolve(context.Background(), "owner-o", "prop-1", entities.EditDecisionApply)

			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apperrors.ErrorTypeConflict, appErr.Type)
			assert.Equal(t, "prop-1", appErr.ExistingID)
			f.proposals.AssertNotCalled(t, "ResolveApplied", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestModerationService_Resolve_NonOwnerOnResolvedProposalIsForbidden(t *testing.T) {
	f := newModerationFixture()
	done := pendingProposal()
	done.Status = entities.EditProposalStatusApplied
	f.proposals.On("GetByID", mock.Anything, "prop-1").Return(done, nil)
	f.places.On("IsOwner", mock.Anything, "user-a", "place-p").Return(false, nil)

	_, err := f.service(fixedWeights{}).Resolve(context.Background(), "user-a", "prop-1", entities.EditDecisionReject)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrorTypeForbidden, appErr.Type)
	assert.Empty(t, appErr.ExistingID)
	f.proposals.AssertNotCalled(t, "ResolveRejected", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestModerationService_Resolve_DoubleResolveLosesRace(t *testing.T) {
	f := newModerationFixture()
	svc := f.service(fixedWeights{})

	applied := pendingProposal()
	applied.Status = entities.EditProposalStatusApplied

	// both callers read the proposal while it is still pending
	f.proposals.On("GetByID", mock.Anything, "prop-1").Return(pendingProposal(), nil)
	f.places.On("IsOwner", mock.Anything, "owner-o", "place-p").Return(true, nil)
	f.proposals.On("ResolveApplied", mock.Anything, "prop-1", "owner-o", mock.Anything).Return(applied, nil).Once()
	f.proposals.On("ResolveApplied", mock.Anything, "prop-1", "owner-o", mock.Anything).
		Return(nil, apperrors.NewConflictError("edit proposal is no longer pending", "prop-1")).Once()
	f.publisher.On("PublishPlaceEvent", mock.Anything, mock.Anything).Return(nil)

	_, first := svc.Resolve(context.Background(), "owner-o", "prop-1", entities.EditDecisionApply)
	_, second := svc.Resolve(context.Background(), "owner-o", "prop-1", entities.EditDecisionApply)

	assert.NoError(t, first)
	assert.True(t, apperrors.IsType(second, apperrors.ErrorTypeConflict))
	f.proposals.AssertNumberOfCalls(t, "ResolveApplied", 2)
	f.publisher.AssertNumberOfCalls(t, "PublishPlaceEvent", 1)
}

func TestModerationService_Resolve_UnknownDecision(t *testing.T) {
	f := newModerationFixture()

	_, err := f.service(fixedWeights{}).Resolve(context.Background(), "owner-o", "prop-1", entities.EditDecision("maybe"))

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestModerationService_ListPending(t *testing.T) {
	f := newModerationFixture()
	svc := f.service(fixedWeights{})

	f.places.On("IsOwner", mock.Anything, "owner-o", "place-p").Return(true, nil)
	f.places.On("IsOwner", mock.Anything, "user-b", "place-p").Return(false, nil)
	f.proposals.On("ListByPlace", mock.Anything, "place-p", entities.EditProposalStatusPending).
		Return([]*entities.EditProposal{pendingProposal()}, nil)

	queue, err := svc.ListPending(context.Background(), "owner-o", "place-p")
	require.NoError(t, err)
	assert.Len(t, queue, 1)

	_, err = svc.ListPending(context.Background(), "user-b", "place-p")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeForbidden))
}
