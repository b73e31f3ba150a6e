package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	// TypeCelebration announces badges a learner has just unlocked.
	TypeCelebration = "achievement.celebration"
)

// Event is a notification about something that happened to a learner.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type identifies the payload shape
	Type string `json:"type"`

	// LearnerID is the learner the event concerns
	LearnerID uuid.UUID `json:"learner_id"`

	// Payload contains the type-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *Event) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates an Event with the specified type and payload.
func NewEvent(eventType string, learnerID uuid.UUID, payload any) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		LearnerID: learnerID,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// CelebratedBadge is one badge in a celebration.
type CelebratedBadge struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Rarity string `json:"rarity"`
	Points int    `json:"points"`
}

// CelebrationPayload is the payload of a TypeCelebration event.
type CelebrationPayload struct {
	Badges []CelebratedBadge `json:"badges"`
}

// NewCelebrationEvent creates a TypeCelebration event for badges.
func NewCelebrationEvent(learnerID uuid.UUID, badges []CelebratedBadge) (*Event, error) {
	return NewEvent(TypeCelebration, learnerID, CelebrationPayload{Badges: badges})
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *Event) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *Event) error
}
