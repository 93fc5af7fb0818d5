package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tourdesk/backoffice-api/internal/models"
	"github.com/tourdesk/backoffice-api/internal/pricing"
)

// WizardStep is a step of the booking wizard
type WizardStep string

const (
	StepRoomSelection     WizardStep = "room_selection"
	StepPassengerDetails  WizardStep = "passenger_details"
	StepPaymentAndConfirm WizardStep = "payment_and_confirm"
)

// ErrWizardFinished is returned when advancing past the last step
var ErrWizardFinished = errors.New("wizard is already on the last step")

// BookingWizard tracks one booking being assembled step by step
type BookingWizard struct {
	Step       WizardStep              `json:"step"`
	Rooms      []pricing.Room          `json:"rooms"`
	Passengers []models.PassengerInput `json:"passengers"`
}

// NewBookingWizard starts a wizard on room selection
func NewBookingWizard() *BookingWizard {
	return &BookingWizard{
		Step:       StepRoomSelection,
		Rooms:      []pricing.Room{},
		Passengers: []models.PassengerInput{},
	}
}

// Next advances one step. Leaving room selection snapshots the rooms into
// the passenger roster.
func (w *BookingWizard) Next() error {
	switch w.Step {
	case StepRoomSelection:
		if pricing.CountRooms(w.Rooms).Total() == 0 {
			return models.NewValidationError("rooms", "select at least one person")
		}
		w.Passengers = FlattenRooms(w.Rooms, w.Passengers)
		w.Step = StepPassengerDetails
	case StepPassengerDetails:
		for i, p := range w.Passengers {
			if strings.TrimSpace(p.FullName) == "" {
				return models.NewValidationError(fmt.Sprintf("passengers[%d].full_name", i), "is required")
			}
		}
		w.Step = StepPaymentAndConfirm
	default:
		return ErrWizardFinished
	}
	return nil
}

// Back returns to the previous step. It is always allowed and keeps
// everything entered so far.
func (w *BookingWizard) Back() {
	switch w.Step {
	case StepPaymentAndConfirm:
		w.Step = StepPassengerDetails
	case StepPassengerDetails:
		w.Step = StepRoomSelection
	}
}

// FlattenRooms turns rooms into passenger slots: per room in room order,
// adults first, then children, then babies. Details from existing slots
// are reused by type in their original order so going back to change a
// room does not wipe names already typed in.
func FlattenRooms(rooms []pricing.Room, existing []models.PassengerInput) []models.PassengerInput {
	pool := map[models.PassengerType][]models.PassengerInput{}
	for _, p := range existing {
		t := models.PassengerType(p.PassengerType)
		pool[t] = append(pool[t], p)
	}

	take := func(t models.PassengerType) models.PassengerInput {
		var slot models.PassengerInput
		if queue := pool[t]; len(queue) > 0 {
			slot, pool[t] = queue[0], queue[1:]
		}
		slot.PassengerType = string(t)
		return slot
	}

	slots := make([]models.PassengerInput, 0, pricing.CountRooms(rooms).Total())
	for _, r := range rooms {
		for i := 0; i < r.Adults; i++ {
			slots = append(slots, take(models.PassengerTypeAdult))
		}
		for i := 0; i < r.Children; i++ {
			slots = append(slots, take(models.PassengerTypeChild))
		}
		for i := 0; i < r.Babies; i++ {
			slots = append(slots, take(models.PassengerTypeBaby))
		}
	}
	return slots
}

// checkRoster reports a roster whose type counts differ from the rooms
func checkRoster(rooms []pricing.Room, passengers []models.Passenger) error {
	want := pricing.CountRooms(rooms)
	got := models.CountPassengers(passengers)
	if want != got {
		return models.NewValidationError("passengers", fmt.Sprintf(
			"roster has %d adult, %d child, %d baby but rooms have %d adult, %d child, %d baby",
			got.Adults, got.Children, got.Babies, want.Adults, want.Children, want.Babies))
	}
	return nil
}
