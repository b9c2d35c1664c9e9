package model

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog records a lifecycle transition for the fulfillment trail.
type AuditLog struct {
	ID         uuid.UUID `db:"id" json:"id"`
	ActorID    uuid.UUID `db:"actor_id" json:"actor_id"`
	Action     string    `db:"action" json:"action"`
	EntityType string    `db:"entity_type" json:"entity_type"`
	EntityID   uuid.UUID `db:"entity_id" json:"entity_id"`
	Metadata   JSONMap   `db:"-" json:"metadata,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
