package pricing

import "fmt"

// Counts is a people tally by passenger category
type Counts struct {
	Adults   int `json:"adult"`
	Children int `json:"child"`
	Babies   int `json:"baby"`
}

// Total returns the total head count
func (c Counts) Total() int {
	return c.Adults + c.Children + c.Babies
}

// Quote is the priced result for a whole booking
type Quote struct {
	Model    Model       `json:"pricing_model"`
	Rooms    []Breakdown `json:"rooms"`
	Lines    []Line      `json:"lines"` // display lines
	Total    float64     `json:"total"`
	Currency string      `json:"currency"`
}

// Calculate prices every room and aggregates the total. With more than one
// room in room-based mode the display lines collapse to one line per room.
func Calculate(g Group, rooms []Room) Quote {
	q := Quote{Model: g.Model, Rooms: make([]Breakdown, 0, len(rooms)), Lines: []Line{}, Currency: g.Currency}
	if q.Model == "" {
		q.Model = ModelPerPerson
	}

	for _, r := range rooms {
		b := PriceRoom(g, r)
		q.Rooms = append(q.Rooms, b)
		q.Total = Round(q.Total + b.Total)
	}

	switch {
	case g.Model == ModelRoomBased && len(rooms) > 1:
		for i, b := range q.Rooms {
			q.Lines = append(q.Lines, Line{
				Label:     fmt.Sprintf("Room %d", i+1),
				Quantity:  1,
				UnitPrice: b.Total,
				Amount:    b.Total,
			})
		}
	case g.Model == ModelRoomBased:
		for _, b := range q.Rooms {
			q.Lines = append(q.Lines, b.Lines...)
		}
	default:
		q.Lines = mergeByLabel(q.Rooms)
	}

	return q
}

// mergeByLabel sums per-person lines of the same category across rooms,
// keeping first-seen order.
func mergeByLabel(rooms []Breakdown) []Line {
	lines := []Line{}
	index := map[string]int{}
	for _, b := range rooms {
		for _, l := range b.Lines {
			if i, ok := index[l.Label]; ok {
				lines[i].Quantity += l.Quantity
				lines[i].Amount = Round(lines[i].Amount + l.Amount)
				continue
			}
			index[l.Label] = len(lines)
			lines = append(lines, l)
		}
	}
	return lines
}

// CountRooms tallies people across rooms
func CountRooms(rooms []Room) Counts {
	var c Counts
	for _, r := range rooms {
		c.Adults += r.Adults
		c.Children += r.Children
		c.Babies += r.Babies
	}
	return c
}

// UnitPrices is the single adult/child/baby price tuple stored on a booking
type UnitPrices struct {
	Adult    float64 `json:"adult" binding:"min=0"`
	Child    float64 `json:"child" binding:"min=0"`
	Baby     float64 `json:"baby" binding:"min=0"`
	Currency string  `json:"currency" binding:"omitempty,len=3"`
}

// Total returns the dot product of the counts and the unit prices
func (u UnitPrices) Total(c Counts) float64 {
	return Round(float64(c.Adults)*u.Adult + float64(c.Children)*u.Child + float64(c.Babies)*u.Baby)
}

// ToUnitPrices converts a quote into the booking's unit price tuple.
// Room-based quotes become a virtual adult price (total / adults, or total /
// all passengers when there are no adults) with zero child and baby prices.
func ToUnitPrices(g Group, q Quote, c Counts) UnitPrices {
	if g.Model != ModelRoomBased {
		return UnitPrices{Adult: g.Adult, Child: g.Child, Baby: g.Baby, Currency: g.Currency}
	}

	divisor := c.Adults
	if divisor == 0 {
		divisor = c.Total()
	}
	u := UnitPrices{Currency: g.Currency}
	if divisor > 0 {
		u.Adult = Round(q.Total / float64(divisor))
	}
	return u
}
