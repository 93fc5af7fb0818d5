package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the back-office role record of an authenticated user
type Profile struct {
	ID        uuid.UUID `json:"id" db:"id"`
	FullName  *string   `json:"full_name,omitempty" db:"full_name"`
	Email     *string   `json:"email,omitempty" db:"email"`
	Role      string    `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// AuditLog records a destructive or money-moving action
type AuditLog struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	ActorID    *uuid.UUID `json:"actor_id,omitempty" db:"actor_id"`
	Action     string     `json:"action" db:"action"`
	EntityType string     `json:"entity_type" db:"entity_type"`
	EntityID   *uuid.UUID `json:"entity_id,omitempty" db:"entity_id"`
	IPAddress  *string    `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent  *string    `json:"user_agent,omitempty" db:"user_agent"`
	Device     *string    `json:"device,omitempty" db:"device"`
	Details    JSONMap    `json:"details,omitempty" db:"details"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}
