package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roomGroup() Group {
	return Group{
		Model:    ModelRoomBased,
		SinglePP: 150,
		DoublePP: 100,
		Child1:   40,
		Child2:   20,
		Baby1:    0,
		Baby2:    0,
		MaxPax:   4,
		Currency: "EUR",
	}
}

func TestPerPerson_Total(t *testing.T) {
	g := Group{Model: ModelPerPerson, Adult: 100, Child: 50, Baby: 30, Currency: "TRY"}

	b := PerPerson(g, Room{Adults: 2, Children: 1})

	assert.Equal(t, 250.0, b.Total)
	require.Len(t, b.Lines, 2)
	assert.Equal(t, Line{Label: "Adult", Quantity: 2, UnitPrice: 100, Amount: 200}, b.Lines[0])
	assert.Equal(t, Line{Label: "Child", Quantity: 1, UnitPrice: 50, Amount: 50}, b.Lines[1])
	assert.Equal(t, "TRY", b.Currency)
}

func TestRoomBased_Tiering(t *testing.T) {
	b := RoomBased(roomGroup(), Room{Adults: 2, Children: 2, Babies: 1})

	require.Len(t, b.Lines, 3)
	assert.Equal(t, LabelDouble, b.Lines[0].Label)
	assert.Equal(t, 200.0, b.Lines[0].Amount)
	assert.Equal(t, "1st child", b.Lines[1].Label)
	assert.Equal(t, 40.0, b.Lines[1].Amount)
	assert.Equal(t, "2nd+ (1)", b.Lines[2].Label)
	assert.Equal(t, 20.0, b.Lines[2].Amount)
	assert.Equal(t, 260.0, b.Total)
}

// Tier prices are per person: a double at 200 charges each of the two adults.
func TestRoomBased_TierPriceIsPerPerson(t *testing.T) {
	g := Group{Model: ModelRoomBased, DoublePP: 200, Child1: 40, Child2: 20, Baby1: 0, MaxPax: 4}

	b := RoomBased(g, Room{Adults: 2, Children: 2, Babies: 1})

	require.Len(t, b.Lines, 3)
	assert.Equal(t, Line{Label: LabelDouble, Quantity: 2, UnitPrice: 200, Amount: 400}, b.Lines[0])
	assert.Equal(t, Line{Label: "1st child", Quantity: 1, UnitPrice: 40, Amount: 40}, b.Lines[1])
	assert.Equal(t, Line{Label: "2nd+ (1)", Quantity: 1, UnitPrice: 20, Amount: 20}, b.Lines[2])
	assert.Equal(t, 460.0, b.Total)
}

func TestRoomBased_AdditionalChildrenAggregate(t *testing.T) {
	g := roomGroup()
	g.QuadPP = 70
	g.TriplePP = 80
	g.MaxPax = 8

	b := RoomBased(g, Room{Adults: 1, Children: 4, Babies: 3})

	labels := make([]string, 0, len(b.Lines))
	for _, l := range b.Lines {
		labels = append(labels, l.Label)
	}
	// babies priced at zero contribute nothing
	assert.Equal(t, []string{LabelSingle, "1st child", "2nd+ (3)"}, labels)
	assert.Equal(t, 60.0, b.Lines[2].Amount)
	assert.Equal(t, 150.0+40+60, b.Total)
}

func TestRoomBased_BabyTiers(t *testing.T) {
	g := roomGroup()
	g.Baby1 = 15
	g.Baby2 = 5

	b := RoomBased(g, Room{Adults: 1, Babies: 3})

	require.Len(t, b.Lines, 3)
	assert.Equal(t, "1st baby", b.Lines[1].Label)
	assert.Equal(t, "2nd+ baby (2)", b.Lines[2].Label)
	assert.Equal(t, 10.0, b.Lines[2].Amount)
	assert.Equal(t, 175.0, b.Total)
}

func TestRoomBased_UnconfiguredTierHasNoLine(t *testing.T) {
	b := RoomBased(roomGroup(), Room{Adults: 3})
	assert.Empty(t, b.Lines)
	assert.Equal(t, 0.0, b.Total)
}

func TestMaxAdults(t *testing.T) {
	g := Group{Model: ModelRoomBased, SinglePP: 100}
	assert.Equal(t, 1, MaxAdults(g))

	g.DoublePP = 90
	assert.Equal(t, 2, MaxAdults(g))

	g.QuadPP = 60
	assert.Equal(t, 4, MaxAdults(g), "quad wins even without triple")

	g.TriplePP = 70
	assert.Equal(t, 4, MaxAdults(g))

	assert.Equal(t, Unlimited, MaxAdults(Group{Model: ModelPerPerson}))
}

func TestSetAdults_ClampsToCeiling(t *testing.T) {
	g := Group{Model: ModelRoomBased, SinglePP: 100, DoublePP: 90, MaxPax: 4}

	r := SetAdults(g, Room{Adults: 1}, 3)
	assert.Equal(t, 2, r.Adults)

	r = SetAdults(g, r, 0)
	assert.Equal(t, 1, r.Adults, "a room keeps at least one adult")
}

func TestSetAdults_RebalancesChildrenBeforeBabies(t *testing.T) {
	g := roomGroup()
	g.MaxPax = 4

	r := SetAdults(g, Room{Adults: 1, Children: 3, Babies: 0}, 2)
	assert.Equal(t, Room{Adults: 2, Children: 2, Babies: 0}, r)

	r = SetAdults(g, Room{Adults: 1, Children: 1, Babies: 2}, 2)
	assert.Equal(t, Room{Adults: 2, Children: 1, Babies: 1}, r)
	assert.LessOrEqual(t, r.Pax(), g.MaxPax)
}

func TestSetChildrenAndBabies(t *testing.T) {
	g := roomGroup()

	r := SetChildren(g, Room{Adults: 2, Babies: 2}, 5)
	assert.Equal(t, Room{Adults: 2, Children: 2, Babies: 0}, r)

	r = SetBabies(g, Room{Adults: 2, Children: 1}, 3)
	assert.Equal(t, 1, r.Babies)
}

func TestPerPersonHasNoOccupancyLimit(t *testing.T) {
	g := Group{Model: ModelPerPerson, Adult: 10, MaxPax: 2}
	r := SetAdults(g, Room{Children: 5}, 12)
	assert.Equal(t, Room{Adults: 12, Children: 5}, r)
}

func TestNormalize(t *testing.T) {
	g := roomGroup()
	r := Normalize(g, Room{Adults: 4, Children: 4, Babies: 4})
	assert.Equal(t, Room{Adults: 2, Children: 2, Babies: 0}, r)
}
