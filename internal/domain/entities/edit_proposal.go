package entities

import "time"

// EditProposalStatus is the lifecycle state of an edit proposal
type EditProposalStatus string

const (
	EditProposalStatusPending  EditProposalStatus = "pending"
	EditProposalStatusApplied  EditProposalStatus = "applied"
	EditProposalStatusRejected EditProposalStatus = "rejected"
)

// IsTerminal reports whether no further resolution is allowed
func (s EditProposalStatus) IsTerminal() bool {
	return s == EditProposalStatusApplied || s == EditProposalStatusRejected
}

// EditDecision is an owner's verdict on a pending proposal
type EditDecision string

const (
	EditDecisionApply  EditDecision = "apply"
	EditDecisionReject EditDecision = "reject"
)

// EditProposal is a change to shared place data submitted by a user.
// WeightAtSubmission is captured once so the gate decision stays auditable.
type EditProposal struct {
	ID                 string             `json:"id" db:"id"`
	PlaceID            string             `json:"place_id" db:"place_id"`
	FieldName          string             `json:"field_name" db:"field_name"`
	OldValue           string             `json:"old_value" db:"old_value"`
	NewValue           string             `json:"new_value" db:"new_value"`
	ProposerID         string             `json:"proposer_id" db:"proposer_id"`
	Status             EditProposalStatus `json:"status" db:"status"`
	WeightAtSubmission float64            `json:"weight_at_submission" db:"weight_at_submission"`
	CreatedAt          time.Time          `json:"created_at" db:"created_at"`
	ResolvedAt         *time.Time         `json:"resolved_at,omitempty" db:"resolved_at"`
	ResolvedBy         *string            `json:"resolved_by,omitempty" db:"resolved_by"`
}
