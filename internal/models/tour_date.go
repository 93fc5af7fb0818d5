package models

import (
	"time"

	"github.com/google/uuid"
)

// TourDateStatus represents the state of a scheduled departure
type TourDateStatus string

const (
	TourDateStatusAvailable TourDateStatus = "available"
	TourDateStatusSoldOut   TourDateStatus = "soldout"
	TourDateStatusCancelled TourDateStatus = "cancelled"
	TourDateStatusCompleted TourDateStatus = "completed"
)

// TourDate is a scheduled departure of a tour with a fixed capacity
type TourDate struct {
	ID                uuid.UUID      `json:"id" db:"id"`
	TourID            uuid.UUID      `json:"tour_id" db:"tour_id"`
	PriceGroupID      uuid.UUID      `json:"price_group_id" db:"price_group_id"`
	StartDate         time.Time      `json:"start_date" db:"start_date"`
	EndDate           time.Time      `json:"end_date" db:"end_date"`
	CapacityTotal     int            `json:"capacity_total" db:"capacity_total"`
	CapacityAvailable int            `json:"capacity_available" db:"capacity_available"`
	Status            TourDateStatus `json:"status" db:"status"`
	CreatedAt         time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at" db:"updated_at"`
	// Populated from joins
	TourTitle      string `json:"tour_title,omitempty" db:"tour_title"`
	PriceGroupName string `json:"price_group_name,omitempty" db:"price_group_name"`
}

// IsBookable reports whether new bookings can be taken on this date
func (d *TourDate) IsBookable() bool {
	return d.Status == TourDateStatusAvailable || d.Status == TourDateStatusSoldOut
}

// CreateTourDateRequest schedules a new departure
type CreateTourDateRequest struct {
	PriceGroupID  string `json:"price_group_id" binding:"required,uuid"`
	StartDate     string `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate       string `json:"end_date" binding:"required,datetime=2006-01-02"`
	CapacityTotal int    `json:"capacity_total" binding:"required,min=1"`
}

// UpdateTourDateStatusRequest changes a tour date's status
type UpdateTourDateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=available soldout cancelled completed"`
}
