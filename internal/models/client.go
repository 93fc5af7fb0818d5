package models

import (
	"time"

	"github.com/google/uuid"
)

// Client is a customer record. Phone is stored normalized and is unique.
type Client struct {
	ID        uuid.UUID `json:"id" db:"id"`
	FullName  string    `json:"full_name" db:"full_name"`
	Phone     string    `json:"phone" db:"phone"`
	Email     *string   `json:"email,omitempty" db:"email"`
	Notes     *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
	// Populated from joins
	BookingCount int `json:"booking_count" db:"booking_count"`
}

// ClientRequest creates or updates a client
type ClientRequest struct {
	FullName string  `json:"full_name" binding:"required,max=150"`
	Phone    string  `json:"phone" binding:"required,intl_phone"`
	Email    *string `json:"email,omitempty" binding:"omitempty,email"`
	Notes    *string `json:"notes,omitempty"`
}
