package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tourdesk/backoffice-api/internal/models"
	"github.com/tourdesk/backoffice-api/internal/pricing"
)

func slotTypes(slots []models.PassengerInput) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.PassengerType
	}
	return out
}

func TestFlattenRooms_Order(t *testing.T) {
	rooms := []pricing.Room{
		{Adults: 1, Children: 1, Babies: 1},
		{Adults: 2, Babies: 1},
	}

	slots := FlattenRooms(rooms, nil)

	assert.Equal(t, []string{"adult", "child", "baby", "adult", "adult", "baby"}, slotTypes(slots))
}

func TestFlattenRooms_CarriesDetailsByType(t *testing.T) {
	existing := []models.PassengerInput{
		{FullName: "Ali", PassengerType: "adult"},
		{FullName: "Zeynep", PassengerType: "child"},
		{FullName: "Veli", PassengerType: "adult"},
	}

	slots := FlattenRooms([]pricing.Room{{Adults: 1, Children: 1}, {Adults: 2}}, existing)

	require.Len(t, slots, 4)
	assert.Equal(t, "Ali", slots[0].FullName)
	assert.Equal(t, "Zeynep", slots[1].FullName)
	assert.Equal(t, "Veli", slots[2].FullName)
	assert.Empty(t, slots[3].FullName)
	assert.Equal(t, "adult", slots[3].PassengerType)
}

func TestBookingWizard_Steps(t *testing.T) {
	w := NewBookingWizard()

	err := w.Next()
	assert.True(t, models.IsValidation(err), "no people selected")
	assert.Equal(t, StepRoomSelection, w.Step)

	w.Rooms = []pricing.Room{{Adults: 2}}
	require.NoError(t, w.Next())
	assert.Equal(t, StepPassengerDetails, w.Step)
	require.Len(t, w.Passengers, 2)

	err = w.Next()
	assert.True(t, models.IsValidation(err), "names are missing")

	w.Passengers[0].FullName = "Ali"
	w.Passengers[1].FullName = "Ayse"
	require.NoError(t, w.Next())
	assert.Equal(t, StepPaymentAndConfirm, w.Step)
	assert.ErrorIs(t, w.Next(), ErrWizardFinished)

	w.Back()
	assert.Equal(t, StepPassengerDetails, w.Step)
	w.Back()
	assert.Equal(t, StepRoomSelection, w.Step)
	w.Back()
	assert.Equal(t, StepRoomSelection, w.Step)

	w.Rooms = []pricing.Room{{Adults: 2, Children: 1}}
	require.NoError(t, w.Next())
	assert.Equal(t, []string{"Ali", "Ayse", ""}, []string{w.Passengers[0].FullName, w.Passengers[1].FullName, w.Passengers[2].FullName})
}
