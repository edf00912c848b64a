package entities

import (
	"time"

	"github.com/lib/pq"
)

// Review is a user's rating of a place. At most one exists per (user, place).
type Review struct {
	ID          string         `json:"id" db:"id"`
	PlaceID     string         `json:"place_id" db:"place_id"`
	UserID      string         `json:"user_id" db:"user_id"`
	Rating      int            `json:"rating" db:"rating"`
	Comment     string         `json:"comment" db:"comment"`
	Images      pq.StringArray `json:"images" db:"images"`
	PlayedSport *string        `json:"played_sport,omitempty" db:"played_sport"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

// RankedReview is a review with the score it was ordered by
type RankedReview struct {
	Review            *Review `json:"review"`
	Weight            float64 `json:"weight"`
	ContentMultiplier float64 `json:"content_multiplier"`
	Score             float64 `json:"score"`
}
