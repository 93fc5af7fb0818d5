package models

import (
	"time"

	"github.com/google/uuid"
)

// OperationStatus is the lifecycle of a tour date's operation record
type OperationStatus string

const (
	OperationStatusPlanned   OperationStatus = "planned"
	OperationStatusActive    OperationStatus = "active"
	OperationStatusCompleted OperationStatus = "completed"
	OperationStatusCancelled OperationStatus = "cancelled"
)

// TourOperation holds vehicle and crew details for one tour date
type TourOperation struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	TourDateID   uuid.UUID       `json:"tour_date_id" db:"tour_date_id"`
	VehiclePlate *string         `json:"vehicle_plate,omitempty" db:"vehicle_plate"`
	VehicleInfo  *string         `json:"vehicle_info,omitempty" db:"vehicle_info"`
	GuideName    *string         `json:"guide_name,omitempty" db:"guide_name"`
	GuidePhone   *string         `json:"guide_phone,omitempty" db:"guide_phone"`
	DriverName   *string         `json:"driver_name,omitempty" db:"driver_name"`
	DriverPhone  *string         `json:"driver_phone,omitempty" db:"driver_phone"`
	MeetingPoint *string         `json:"meeting_point,omitempty" db:"meeting_point"`
	Notes        *string         `json:"notes,omitempty" db:"notes"`
	Status       OperationStatus `json:"status" db:"status"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

// UpsertOperationRequest replaces the operation record of a tour date
type UpsertOperationRequest struct {
	VehiclePlate *string `json:"vehicle_plate,omitempty" binding:"omitempty,max=20"`
	VehicleInfo  *string `json:"vehicle_info,omitempty"`
	GuideName    *string `json:"guide_name,omitempty" binding:"omitempty,max=150"`
	GuidePhone   *string `json:"guide_phone,omitempty" binding:"omitempty,intl_phone"`
	DriverName   *string `json:"driver_name,omitempty" binding:"omitempty,max=150"`
	DriverPhone  *string `json:"driver_phone,omitempty" binding:"omitempty,intl_phone"`
	MeetingPoint *string `json:"meeting_point,omitempty"`
	Notes        *string `json:"notes,omitempty"`
	Status       string  `json:"status" binding:"required,oneof=planned active completed cancelled"`
}
