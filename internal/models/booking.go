package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tourdesk/backoffice-api/internal/pricing"
)

// BookingStatus represents the state of a booking
type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// DeriveBookingStatus returns confirmed when the booking is fully paid, pending otherwise.
// A new booking is never created as cancelled.
func DeriveBookingStatus(amountPaid, totalAmount float64) BookingStatus {
	if pricing.Round(amountPaid) >= pricing.Round(totalAmount) {
		return BookingStatusConfirmed
	}
	return BookingStatusPending
}

// PassengerType tags a passenger's price category
type PassengerType string

const (
	PassengerTypeAdult PassengerType = "adult"
	PassengerTypeChild PassengerType = "child"
	PassengerTypeBaby  PassengerType = "baby"
)

// PricingSnapshot captures the prices a booking was made with, so later
// price group edits do not change historical bookings.
type PricingSnapshot struct {
	Adult        float64        `json:"adult"`
	Child        float64        `json:"child"`
	Baby         float64        `json:"baby"`
	Currency     string         `json:"currency"`
	PricingModel pricing.Model  `json:"pricing_model,omitempty"`
	Rooms        []pricing.Room `json:"rooms,omitempty"`
	Quote        *pricing.Quote `json:"quote,omitempty"`
	PriceGroupID *uuid.UUID     `json:"price_group_id,omitempty"`
}

// UnitPrices returns the adult/child/baby price tuple of the snapshot
func (p PricingSnapshot) UnitPrices() pricing.UnitPrices {
	return pricing.UnitPrices{Adult: p.Adult, Child: p.Child, Baby: p.Baby, Currency: p.Currency}
}

func (p PricingSnapshot) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *PricingSnapshot) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*p = PricingSnapshot{}
		return nil
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return errors.New("type assertion to []byte failed for PricingSnapshot")
	}
}

// Booking is a reservation of one client on one tour date
type Booking struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	TourDateID      uuid.UUID       `json:"tour_date_id" db:"tour_date_id"`
	TourID          uuid.UUID       `json:"tour_id" db:"tour_id"`
	ClientID        uuid.UUID       `json:"client_id" db:"client_id"`
	PaxAdult        int             `json:"pax_adult" db:"pax_adult"`
	PaxChild        int             `json:"pax_child" db:"pax_child"`
	PaxBaby         int             `json:"pax_baby" db:"pax_baby"`
	PricingSnapshot PricingSnapshot `json:"pricing_snapshot" db:"pricing_snapshot"`
	TotalAmount     float64         `json:"total_amount" db:"total_amount"`
	AmountPaid      float64         `json:"amount_paid" db:"amount_paid"`
	Currency        string          `json:"currency" db:"currency"`
	Notes           *string         `json:"notes,omitempty" db:"notes"`
	BookingStatus   BookingStatus   `json:"booking_status" db:"booking_status"`
	CreatedBy       *uuid.UUID      `json:"created_by,omitempty" db:"created_by"`
	CancelledAt     *time.Time      `json:"cancelled_at,omitempty" db:"cancelled_at"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`

	// Populated from joins
	ClientName  *string    `json:"client_name,omitempty" db:"client_name"`
	ClientPhone *string    `json:"client_phone,omitempty" db:"client_phone"`
	TourTitle   *string    `json:"tour_title,omitempty" db:"tour_title"`
	StartDate   *time.Time `json:"start_date,omitempty" db:"start_date"`

	Passengers []Passenger `json:"passengers,omitempty" db:"-"`
}

// Pax returns the booking's head count by category
func (b *Booking) Pax() pricing.Counts {
	return pricing.Counts{Adults: b.PaxAdult, Children: b.PaxChild, Babies: b.PaxBaby}
}

// Balance returns the unpaid remainder
func (b *Booking) Balance() float64 {
	return pricing.Round(b.TotalAmount - b.AmountPaid)
}

// Passenger is one traveller on a booking
type Passenger struct {
	ID            uuid.UUID     `json:"id" db:"id"`
	BookingID     uuid.UUID     `json:"booking_id" db:"booking_id"`
	FullName      string        `json:"full_name" db:"full_name"`
	NationalID    *string       `json:"national_id,omitempty" db:"national_id"`
	BirthDate     *time.Time    `json:"birth_date,omitempty" db:"birth_date"`
	PassengerType PassengerType `json:"passenger_type" db:"passenger_type"`
	Phone         *string       `json:"phone,omitempty" db:"phone"`
	PickupPoint   *string       `json:"pickup_point,omitempty" db:"pickup_point"`
	SortOrder     int           `json:"sort_order" db:"sort_order"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
}

// CountPassengers tallies passengers by type
func CountPassengers(passengers []Passenger) pricing.Counts {
	var c pricing.Counts
	for _, p := range passengers {
		switch p.PassengerType {
		case PassengerTypeChild:
			c.Children++
		case PassengerTypeBaby:
			c.Babies++
		default:
			c.Adults++
		}
	}
	return c
}

// ============================================================================
// REQUEST TYPES
// ============================================================================

// PassengerInput is one passenger of a create or update request
type PassengerInput struct {
	FullName      string  `json:"full_name" binding:"required,max=150"`
	NationalID    *string `json:"national_id,omitempty" binding:"omitempty,max=20"`
	BirthDate     *string `json:"birth_date,omitempty" binding:"omitempty,datetime=2006-01-02"`
	PassengerType string  `json:"passenger_type" binding:"required,oneof=adult child baby"`
	Phone         *string `json:"phone,omitempty" binding:"omitempty,intl_phone"`
	PickupPoint   *string `json:"pickup_point,omitempty" binding:"omitempty,max=200"`
}

// ToPassenger converts the input into a passenger row for the given booking
func (in PassengerInput) ToPassenger(bookingID uuid.UUID, order int) (Passenger, error) {
	p := Passenger{
		ID:            uuid.New(),
		BookingID:     bookingID,
		FullName:      in.FullName,
		NationalID:    in.NationalID,
		PassengerType: PassengerType(in.PassengerType),
		Phone:         in.Phone,
		PickupPoint:   in.PickupPoint,
		SortOrder:     order,
	}
	if in.BirthDate != nil && *in.BirthDate != "" {
		d, err := time.Parse("2006-01-02", *in.BirthDate)
		if err != nil {
			return Passenger{}, NewValidationError("birth_date", fmt.Sprintf("invalid date %q", *in.BirthDate))
		}
		p.BirthDate = &d
	}
	return p, nil
}

// NewClientInput carries the fields for resolving a client by phone
type NewClientInput struct {
	FullName string  `json:"full_name" binding:"required,max=150"`
	Phone    string  `json:"phone" binding:"required,intl_phone"`
	Email    *string `json:"email,omitempty" binding:"omitempty,email"`
}

// CreateBookingRequest is the composite booking creation request
type CreateBookingRequest struct {
	TourDateID string              `json:"tour_date_id" binding:"required,uuid"`
	ClientID   *string             `json:"client_id,omitempty" binding:"omitempty,uuid"`
	Client     *NewClientInput     `json:"client,omitempty"`
	Passengers []PassengerInput    `json:"passengers" binding:"required,min=1,dive"`
	Rooms      []pricing.Room      `json:"rooms,omitempty"`
	Pricing    *pricing.UnitPrices `json:"pricing,omitempty"`
	AmountPaid float64             `json:"amount_paid" binding:"min=0"`
	Notes      *string             `json:"notes,omitempty"`
}

// UpdateBookingRequest is a partial booking update. A non-nil Passengers
// list replaces the whole roster.
type UpdateBookingRequest struct {
	BookingStatus *string           `json:"booking_status,omitempty" binding:"omitempty,oneof=confirmed pending cancelled"`
	AmountPaid    *float64          `json:"amount_paid,omitempty" binding:"omitempty,min=0"`
	Notes         *string           `json:"notes,omitempty"`
	Passengers    *[]PassengerInput `json:"passengers,omitempty" binding:"omitempty,min=1,dive"`
}

// CancelBookingRequest cancels a booking. A positive refund amount is
// recorded as an expense line on the tour date.
type CancelBookingRequest struct {
	RefundAmount float64 `json:"refund_amount" binding:"min=0"`
	Reason       *string `json:"reason,omitempty" binding:"omitempty,max=500"`
}

// BookingFilter narrows booking lists
type BookingFilter struct {
	TourDateID *uuid.UUID
	ClientID   *uuid.UUID
	Status     *BookingStatus
	Limit      int
	Offset     int
}

// ManifestEntry is a passenger row of a tour date's manifest
type ManifestEntry struct {
	Passenger
	ClientName    string        `json:"client_name" db:"client_name"`
	ClientPhone   string        `json:"client_phone" db:"client_phone"`
	BookingStatus BookingStatus `json:"booking_status" db:"booking_status"`
}

// QuoteRequest prices a room configuration on a tour date
type QuoteRequest struct {
	TourDateID string         `json:"tour_date_id" binding:"required,uuid"`
	Rooms      []pricing.Room `json:"rooms" binding:"required,min=1"`
}

// QuoteResponse is the live price preview of the booking wizard. Rooms
// come back normalized against the price group's occupancy rules.
type QuoteResponse struct {
	Rooms          []pricing.Room     `json:"rooms"`
	Quote          pricing.Quote      `json:"quote"`
	UnitPrices     pricing.UnitPrices `json:"unit_prices"`
	MaxAdults      int                `json:"max_adults"`
	MaxPax         int                `json:"max_pax,omitempty"`
	FormattedTotal string             `json:"formatted_total"`
}

// WizardPassengersRequest moves the wizard from room selection to the
// passenger roster. Passengers already typed in are carried over.
type WizardPassengersRequest struct {
	TourDateID string           `json:"tour_date_id" binding:"required,uuid"`
	Rooms      []pricing.Room   `json:"rooms" binding:"required,min=1"`
	Passengers []PassengerInput `json:"passengers,omitempty"`
}
