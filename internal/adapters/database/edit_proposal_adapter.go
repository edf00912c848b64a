package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
	"github.com/zatekoja/courtside/internal/domain/entities"
	"github.com/zatekoja/courtside/internal/domain/repositories"
	"github.com/zatekoja/courtside/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/courtside/pkg/errors"
)

var editProposalColumns = []interface{}{
	"id", "place_id", "field_name", "old_value", "new_value", "proposer_id",
	"status", "weight_at_submission", "created_at", "resolved_at", "resolved_by",
}

// EditProposalAdapter implements proposal persistence and the place field
// writes that go with it
type EditProposalAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewEditProposalAdapter creates a new edit proposal adapter
func NewEditProposalAdapter(client *postgres.Client) repositories.EditProposalRepository {
	return &EditProposalAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

func proposalRecord(p *entities.EditProposal) goqu.Record {
	return goqu.Record{
		"id":                   p.ID,
		"place_id":             p.PlaceID,
		"field_name":           p.FieldName,
		"old_value":            p.OldValue,
		"new_value":            p.NewValue,
		"proposer_id":          p.ProposerID,
		"status":               p.Status,
		"weight_at_submission": p.WeightAtSubmission,
		"created_at":           p.CreatedAt,
		"resolved_at":          p.ResolvedAt,
		"resolved_by":          p.ResolvedBy,
	}
}

// CreatePending inserts a pending proposal
func (a *EditProposalAdapter) CreatePending(ctx context.Context, proposal *entities.EditProposal) error {
	query, args, err := a.db.Insert("edit_proposals").Rows(proposalRecord(proposal)).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build proposal insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return classify("failed to create edit proposal", err)
	}
	return nil
}

// CreateApplied inserts the applied proposal and writes the place field in one transaction
func (a *EditProposalAdapter) CreateApplied(ctx context.Context, proposal *entities.EditProposal) error {
	insert, args, err := a.db.Insert("edit_proposals").Rows(proposalRecord(proposal)).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build proposal insert query", err)
	}

	return a.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, insert, args...); err != nil {
			return classify("failed to create edit proposal", err)
		}
		return a.writeField(ctx, tx, proposal, time.Now().UTC())
	})
}

// GetByID retrieves a proposal by ID
func (a *EditProposalAdapter) GetByID(ctx context.Context, id string) (*entities.EditProposal, error) {
	query, args, err := a.db.Select(editProposalColumns...).
		From("edit_proposals").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build proposal query", err)
	}

	proposal := &entities.EditProposal{}
	err = a.client.DB().GetContext(ctx, proposal, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("edit proposal with id %s not found", id))
	}
	if err != nil {
		return nil, classify("failed to get edit proposal", err)
	}
	return proposal, nil
}

// ResolveApplied flips a pending proposal to applied and writes the field atomically
func (a *EditProposalAdapter) ResolveApplied(ctx context.Context, id, resolverID string, resolvedAt time.Time) (*entities.EditProposal, error) {
	query, args, err := a.resolveQuery(id, resolverID, resolvedAt, entities.EditProposalStatusApplied)
	if err != nil {
		return nil, err
	}

	proposal := &entities.EditProposal{}
	err = a.inTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, proposal, query, args...)
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NewConflictError("edit proposal is no longer pending", id)
		}
		if err != nil {
			return classify("failed to resolve edit proposal", err)
		}
		return a.writeField(ctx, tx, proposal, resolvedAt)
	})
	if err != nil {
		return nil, err
	}
	return proposal, nil
}

// ResolveRejected flips a pending proposal to rejected
func (a *EditProposalAdapter) ResolveRejected(ctx context.Context, id, resolverID string, resolvedAt time.Time) (*entities.EditProposal, error) {
	query, args, err := a.resolveQuery(id, resolverID, resolvedAt, entities.EditProposalStatusRejected)
	if err != nil {
		return nil, err
	}

	proposal := &entities.EditProposal{}
	err = a.client.DB().GetContext(ctx, proposal, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewConflictError("edit proposal is no longer pending", id)
	}
	if err != nil {
		return nil, classify("failed to resolve edit proposal", err)
	}
	return proposal, nil
}

// ListByPlace lists proposals of a place with the given status, oldest first
func (a *EditProposalAdapter) ListByPlace(ctx context.Context, placeID string, status entities.EditProposalStatus) ([]*entities.EditProposal, error) {
	ds := a.db.Select(editProposalColumns...).
		From("edit_proposals").
		Where(goqu.Ex{"place_id": placeID})
	if status != "" {
		ds = ds.Where(goqu.Ex{"status": status})
	}

	query, args, err := ds.Order(goqu.I("created_at").Asc()).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build proposal list query", err)
	}

	var proposals []*entities.EditProposal
	if err := a.client.DB().SelectContext(ctx, &proposals, query, args...); err != nil {
		return nil, classify("failed to list edit proposals", err)
	}
	return proposals, nil
}

// resolveQuery builds the conditional pending -> terminal update
func (a *EditProposalAdapter) resolveQuery(id, resolverID string, resolvedAt time.Time, status entities.EditProposalStatus) (string, []interface{}, error) {
	query, args, err := a.db.Update("edit_proposals").
		Set(goqu.Record{
			"status":      status,
			"resolved_at": resolvedAt,
			"resolved_by": resolverID,
		}).
		Where(goqu.Ex{"id": id, "status": entities.EditProposalStatusPending}).
		Returning(editProposalColumns...).
		ToSQL()
	if err != nil {
		return "", nil, apperrors.NewInternalError("failed to build resolve query", err)
	}
	return query, args, nil
}

// writeField sets the proposal's new value on its place
func (a *EditProposalAdapter) writeField(ctx context.Context, tx *sqlx.Tx, proposal *entities.EditProposal, at time.Time) error {
	if !entities.IsEditableField(proposal.FieldName) {
		return apperrors.NewValidationError(fmt.Sprintf("field %q is not editable", proposal.FieldName))
	}

	query, args, err := a.db.Update("places").
		Set(goqu.Record{
			proposal.FieldName: proposal.NewValue,
			"updated_at":       at,
		}).
		Where(goqu.Ex{"id": proposal.PlaceID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build place update query", err)
	}

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return classify("failed to write place field", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return classify("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("place with id %s not found", proposal.PlaceID))
	}
	return nil
}

// inTx runs fn inside a transaction, rolling back on any error
func (a *EditProposalAdapter) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return classify("failed to begin transaction", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return classify("failed to commit transaction", err)
	}
	return nil
}
