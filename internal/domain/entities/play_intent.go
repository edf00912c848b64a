package entities

import "time"

// SkillLevels lists the self-reported skill levels an intent may carry
var SkillLevels = []string{"beginner", "intermediate", "advanced", "pro"}

// PlayIntent is a user's signal that they plan to show up at a place
type PlayIntent struct {
	ID         string    `json:"id" db:"id"`
	PlaceID    string    `json:"place_id" db:"place_id"`
	UserID     string    `json:"user_id" db:"user_id"`
	IntentTime time.Time `json:"intent_time" db:"intent_time"`
	Sport      *string   `json:"sport,omitempty" db:"sport"`
	SkillLevel *string   `json:"skill_level,omitempty" db:"skill_level"`
	Note       *string   `json:"note,omitempty" db:"note"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	ExpiresAt  time.Time `json:"expires_at" db:"expires_at"`
}

// ActiveAt reports whether the intent still counts at now
func (p *PlayIntent) ActiveAt(now time.Time) bool {
	return now.Before(p.ExpiresAt)
}

// TimeBlock is a computed grouping of intents around a shared center time.
// It is a view over the current intents and has no identity across reads.
type TimeBlock struct {
	CenterTime       time.Time     `json:"center_time"`
	StartTime        time.Time     `json:"start_time"`
	EndTime          time.Time     `json:"end_time"`
	MemberIntents    []*PlayIntent `json:"member_intents"`
	Participants     []string      `json:"participants"`
	ParticipantCount int           `json:"participant_count"`
}
