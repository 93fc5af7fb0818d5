// Package pricing computes booking price breakdowns for per-person and
// room-based price groups. It performs no I/O.
package pricing

import (
	"fmt"
	"math"
)

// Model is the pricing model of a tour
type Model string

const (
	ModelPerPerson Model = "per_person"
	ModelRoomBased Model = "room_based"
)

// Unlimited is the adult ceiling for per-person groups
const Unlimited = math.MaxInt32

// Occupancy codes used as room-based adult line labels
const (
	LabelSingle = "SNG"
	LabelDouble = "DBL"
	LabelTriple = "TRPL"
	LabelQuad   = "QUAD"
)

// Group is the pricing view of a price group. A zero price means "not configured".
type Group struct {
	Model Model

	// per_person
	Adult float64
	Child float64
	Baby  float64

	// room_based, per-person tier prices
	SinglePP float64
	DoublePP float64
	TriplePP float64
	QuadPP   float64

	// room_based child/baby amounts by ordinal position in the room
	Child1 float64
	Child2 float64
	Baby1  float64
	Baby2  float64

	MaxPax   int
	Currency string
}

// Room is one room (or one people group in per-person mode)
type Room struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
	Babies   int `json:"babies"`
}

// Pax returns the number of people in the room
func (r Room) Pax() int {
	return r.Adults + r.Children + r.Babies
}

// Line is one labeled entry of a breakdown
type Line struct {
	Label     string  `json:"label"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Amount    float64 `json:"amount"`
}

// Breakdown is the priced result for a single room
type Breakdown struct {
	Lines    []Line  `json:"lines"`
	Total    float64 `json:"total"`
	Currency string  `json:"currency"`
}

func (b *Breakdown) add(label string, qty int, unit float64) {
	amount := Round(float64(qty) * unit)
	b.Lines = append(b.Lines, Line{Label: label, Quantity: qty, UnitPrice: unit, Amount: amount})
	b.Total = Round(b.Total + amount)
}

// Round rounds a money amount to cents
func Round(v float64) float64 {
	return math.Round(v*100) / 100
}

// PerPerson prices a room with flat adult/child/baby prices.
// Each nonzero category contributes one line.
func PerPerson(g Group, r Room) Breakdown {
	b := Breakdown{Lines: []Line{}, Currency: g.Currency}
	if r.Adults > 0 {
		b.add("Adult", r.Adults, g.Adult)
	}
	if r.Children > 0 {
		b.add("Child", r.Children, g.Child)
	}
	if r.Babies > 0 {
		b.add("Baby", r.Babies, g.Baby)
	}
	return b
}

// RoomBased prices a room using the occupancy tier for adults and ordinal
// tiering for children and babies. Lines with a zero amount are omitted.
func RoomBased(g Group, r Room) Breakdown {
	b := Breakdown{Lines: []Line{}, Currency: g.Currency}

	if r.Adults > 0 {
		label, price := adultTier(g, r.Adults)
		if price > 0 {
			b.add(label, r.Adults, price)
		}
	}

	if r.Children > 0 && g.Child1 > 0 {
		b.add("1st child", 1, g.Child1)
	}
	if extra := r.Children - 1; extra > 0 && g.Child2 > 0 {
		b.add(fmt.Sprintf("2nd+ (%d)", extra), extra, g.Child2)
	}

	if r.Babies > 0 && g.Baby1 > 0 {
		b.add("1st baby", 1, g.Baby1)
	}
	if extra := r.Babies - 1; extra > 0 && g.Baby2 > 0 {
		b.add(fmt.Sprintf("2nd+ baby (%d)", extra), extra, g.Baby2)
	}

	return b
}

// adultTier selects the per-person tier for an occupancy count
func adultTier(g Group, adults int) (string, float64) {
	switch adults {
	case 1:
		return LabelSingle, g.SinglePP
	case 2:
		return LabelDouble, g.DoublePP
	case 3:
		return LabelTriple, g.TriplePP
	case 4:
		return LabelQuad, g.QuadPP
	default:
		return fmt.Sprintf("%d adults", adults), 0
	}
}

// PriceRoom dispatches on the group's pricing model
func PriceRoom(g Group, r Room) Breakdown {
	if g.Model == ModelRoomBased {
		return RoomBased(g, r)
	}
	return PerPerson(g, r)
}

// MaxAdults derives the adult ceiling from the configured room tiers
func MaxAdults(g Group) int {
	if g.Model != ModelRoomBased {
		return Unlimited
	}
	switch {
	case g.QuadPP > 0:
		return 4
	case g.TriplePP > 0:
		return 3
	case g.DoublePP > 0:
		return 2
	default:
		return 1
	}
}

func minAdults(g Group) int {
	if g.Model == ModelRoomBased {
		return 1
	}
	return 0
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// remaining returns the room capacity left after the given head count,
// or Unlimited when the group has no max_pax.
func remaining(g Group, used int) int {
	if g.Model != ModelRoomBased || g.MaxPax <= 0 {
		return Unlimited
	}
	if left := g.MaxPax - used; left > 0 {
		return left
	}
	return 0
}

// SetAdults changes the adult count and rebalances the room:
// children are clamped to the remaining capacity first, then babies.
func SetAdults(g Group, r Room, adults int) Room {
	r.Adults = clamp(adults, minAdults(g), MaxAdults(g))
	r.Children = clamp(r.Children, 0, remaining(g, r.Adults))
	r.Babies = clamp(r.Babies, 0, remaining(g, r.Adults+r.Children))
	return r
}

// SetChildren changes the child count within the remaining capacity and
// trims babies if the room would overflow.
func SetChildren(g Group, r Room, children int) Room {
	r.Children = clamp(children, 0, remaining(g, r.Adults))
	r.Babies = clamp(r.Babies, 0, remaining(g, r.Adults+r.Children))
	return r
}

// SetBabies changes the baby count within the remaining capacity
func SetBabies(g Group, r Room, babies int) Room {
	r.Babies = clamp(babies, 0, remaining(g, r.Adults+r.Children))
	return r
}

// Normalize applies the occupancy rules to a room as submitted
func Normalize(g Group, r Room) Room {
	return SetBabies(g, SetChildren(g, SetAdults(g, r, r.Adults), r.Children), r.Babies)
}
