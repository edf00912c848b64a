package entities

import "time"

// InteractionType is the kind of atomic action a user performed at a place
type InteractionType string

const (
	InteractionTypeVisit           InteractionType = "visit"
	InteractionTypeIntentToPlay    InteractionType = "intent_to_play"
	InteractionTypeImageUpload     InteractionType = "image_upload"
	InteractionTypeEditSubmitted   InteractionType = "edit_submitted"
	InteractionTypeReviewSubmitted InteractionType = "review_submitted"
	InteractionTypeVerifiedBooking InteractionType = "verified_booking"
)

// Valid reports whether t is a known interaction type
func (t InteractionType) Valid() bool {
	switch t {
	case InteractionTypeVisit, InteractionTypeIntentToPlay, InteractionTypeImageUpload,
		InteractionTypeEditSubmitted, InteractionTypeReviewSubmitted, InteractionTypeVerifiedBooking:
		return true
	}
	return false
}

// SelfReportable reports whether a user may record t for themselves. Bookings
// and image uploads raise weight and come from the systems that verified them;
// the remaining types are written by the engine as side effects.
func (t InteractionType) SelfReportable() bool {
	return t == InteractionTypeVisit
}

// PlaceKind distinguishes crowd-maintained places from officially managed ones
type PlaceKind string

const (
	PlaceKindCommunity PlaceKind = "community"
	PlaceKindOfficial  PlaceKind = "official"
)

// Valid reports whether k is a known place kind
func (k PlaceKind) Valid() bool {
	return k == PlaceKindCommunity || k == PlaceKindOfficial
}

// Interaction is an immutable ledger fact tying a user action to a place.
// Rows are only ever appended.
type Interaction struct {
	ID         string          `json:"id" db:"id"`
	UserID     string          `json:"user_id" db:"user_id"`
	PlaceID    string          `json:"place_id" db:"place_id"`
	PlaceKind  PlaceKind       `json:"place_kind" db:"place_kind"`
	Type       InteractionType `json:"type" db:"type"`
	OccurredAt time.Time       `json:"occurred_at" db:"occurred_at"`
}
