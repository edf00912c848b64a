package repositories

import (
	"context"
	"time"

	"github.com/zatekoja/courtside/internal/domain/entities"
)

// EditProposalRepository persists edit proposals and applies them to places
type EditProposalRepository interface {
	// CreatePending inserts a proposal awaiting owner review
	CreatePending(ctx context.Context, proposal *entities.EditProposal) error

	// CreateApplied inserts an applied proposal and writes its new value onto
	// the place field as one atomic unit
	CreateApplied(ctx context.Context, proposal *entities.EditProposal) error

	// GetByID retrieves a proposal by ID
	GetByID(ctx context.Context, id string) (*entities.EditProposal, error)

	// ResolveApplied moves a pending proposal to applied and writes the place
	// field atomically. Returns a conflict error if the proposal is no longer pending.
	ResolveApplied(ctx context.Context, id, resolverID string, resolvedAt time.Time) (*entities.EditProposal, error)

	// ResolveRejected moves a pending proposal to rejected without touching the place.
	// Returns a conflict error if the proposal is no longer pending.
	ResolveRejected(ctx context.Context, id, resolverID string, resolvedAt time.Time) (*entities.EditProposal, error)

	// ListByPlace lists proposals for a place, oldest first
	ListByPlace(ctx context.Context, placeID string, status entities.EditProposalStatus) ([]*entities.EditProposal, error)
}
