package entities

import (
	"time"

	"github.com/google/uuid"
)

// PlaceEventType represents the type of place event
type PlaceEventType string

const (
	PlaceEventTypeIntentCreated PlaceEventType = "intent_created"
	PlaceEventTypeEditResolved  PlaceEventType = "edit_resolved"
)

// PlaceEvent is a downstream notification that something observable changed at a place
type PlaceEvent struct {
	ID        string                 `json:"id"`
	PlaceID   string                 `json:"place_id"`
	EventType PlaceEventType         `json:"event_type"`
	Timestamp time.Time              `json:"timestamp"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}

// NewPlaceEvent creates a new place event
func NewPlaceEvent(placeID string, eventType PlaceEventType, payload map[string]interface{}) *PlaceEvent {
	return &PlaceEvent{
		ID:        uuid.New().String(),
		PlaceID:   placeID,
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}
