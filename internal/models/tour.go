package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/tourdesk/backoffice-api/internal/pricing"
)

// TourType distinguishes single-day tours from multi-day packages
type TourType string

const (
	TourTypeDaily   TourType = "daily"
	TourTypePackage TourType = "package"
)

// TourStatus represents the lifecycle of a tour
type TourStatus string

const (
	TourStatusDraft   TourStatus = "draft"
	TourStatusActive  TourStatus = "active"
	TourStatusPassive TourStatus = "passive"
)

// Tour is a catalog entry
type Tour struct {
	ID           uuid.UUID     `json:"id" db:"id"`
	Title        string        `json:"title" db:"title"`
	Description  *string       `json:"description,omitempty" db:"description"`
	TourType     TourType      `json:"tour_type" db:"tour_type"`
	PricingModel pricing.Model `json:"pricing_model" db:"pricing_model"`
	Status       TourStatus    `json:"status" db:"status"`
	BabyMaxAge   int           `json:"baby_max_age" db:"baby_max_age"`
	ChildMinAge  int           `json:"child_min_age" db:"child_min_age"`
	ChildMaxAge  int           `json:"child_max_age" db:"child_max_age"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" db:"updated_at"`
}

// ClassifyAge maps a passenger age to a passenger type using the tour's age bands
func (t *Tour) ClassifyAge(age int) PassengerType {
	switch {
	case age <= t.BabyMaxAge:
		return PassengerTypeBaby
	case age >= t.ChildMinAge && age <= t.ChildMaxAge:
		return PassengerTypeChild
	default:
		return PassengerTypeAdult
	}
}

// CreateTourRequest is the request to create a tour
type CreateTourRequest struct {
	Title        string  `json:"title" binding:"required,max=200"`
	Description  *string `json:"description,omitempty"`
	TourType     string  `json:"tour_type" binding:"required,oneof=daily package"`
	PricingModel string  `json:"pricing_model" binding:"required,oneof=per_person room_based"`
	BabyMaxAge   int     `json:"baby_max_age" binding:"min=0,max=5"`
	ChildMinAge  int     `json:"child_min_age" binding:"min=0"`
	ChildMaxAge  int     `json:"child_max_age" binding:"min=0,max=17,gtefield=ChildMinAge"`
}

// UpdateTourRequest updates tour settings; nil fields are left untouched
type UpdateTourRequest struct {
	Title        *string `json:"title,omitempty" binding:"omitempty,max=200"`
	Description  *string `json:"description,omitempty"`
	TourType     *string `json:"tour_type,omitempty" binding:"omitempty,oneof=daily package"`
	PricingModel *string `json:"pricing_model,omitempty" binding:"omitempty,oneof=per_person room_based"`
	BabyMaxAge   *int    `json:"baby_max_age,omitempty" binding:"omitempty,min=0,max=5"`
	ChildMinAge  *int    `json:"child_min_age,omitempty" binding:"omitempty,min=0"`
	ChildMaxAge  *int    `json:"child_max_age,omitempty" binding:"omitempty,min=0,max=17"`
}

// UpdateTourStatusRequest changes a tour's lifecycle status
type UpdateTourStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=draft active passive"`
}
