package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransitionRecord is the immutable audit row appended for every
// committed lifecycle transition.
type TransitionRecord struct {
	ID         uuid.UUID  `json:"id"`
	EntityType EntityType `json:"entity_type"`
	EntityID   uuid.UUID  `json:"entity_id"`
	FromStatus string     `json:"from_status"`
	ToStatus   string     `json:"to_status"`
	ActorID    uuid.UUID  `json:"actor_id"`
	ActorRole  Role       `json:"actor_role"`
	Reason     *string    `json:"reason,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// NewTransitionRecord builds an audit row for a committed transition.
func NewTransitionRecord(entity EntityType, entityID uuid.UUID, from, to string, actorID uuid.UUID, actorRole Role, reason *string) *TransitionRecord {
	return &TransitionRecord{
		ID:         uuid.New(),
		EntityType: entity,
		EntityID:   entityID,
		FromStatus: from,
		ToStatus:   to,
		ActorID:    actorID,
		ActorRole:  actorRole,
		Reason:     reason,
		CreatedAt:  time.Now().UTC(),
	}
}
