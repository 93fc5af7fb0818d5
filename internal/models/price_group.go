package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/tourdesk/backoffice-api/internal/pricing"
)

// PriceGroupStatus marks whether a price group can be assigned to new dates
type PriceGroupStatus string

const (
	PriceGroupStatusActive  PriceGroupStatus = "active"
	PriceGroupStatusPassive PriceGroupStatus = "passive"
)

// PriceGroup holds either flat per-person prices or room occupancy tiers
type PriceGroup struct {
	ID       uuid.UUID        `json:"id" db:"id"`
	TourID   uuid.UUID        `json:"tour_id" db:"tour_id"`
	Name     string           `json:"name" db:"name"`
	Currency string           `json:"currency" db:"currency"`
	Status   PriceGroupStatus `json:"status" db:"status"`

	PriceAdult *float64 `json:"price_adult,omitempty" db:"price_adult"`
	PriceChild *float64 `json:"price_child,omitempty" db:"price_child"`
	PriceBaby  *float64 `json:"price_baby,omitempty" db:"price_baby"`

	PriceSinglePP *float64 `json:"price_single_pp,omitempty" db:"price_single_pp"`
	PriceDoublePP *float64 `json:"price_double_pp,omitempty" db:"price_double_pp"`
	PriceTriplePP *float64 `json:"price_triple_pp,omitempty" db:"price_triple_pp"`
	PriceQuadPP   *float64 `json:"price_quad_pp,omitempty" db:"price_quad_pp"`
	PriceChild1   *float64 `json:"price_child_1,omitempty" db:"price_child_1"`
	PriceChild2   *float64 `json:"price_child_2,omitempty" db:"price_child_2"`
	PriceBaby1    *float64 `json:"price_baby_1,omitempty" db:"price_baby_1"`
	PriceBaby2    *float64 `json:"price_baby_2,omitempty" db:"price_baby_2"`
	MaxPax        *int     `json:"max_pax,omitempty" db:"max_pax"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func val(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// PricingGroup converts the stored row into the calculator's view
func (pg *PriceGroup) PricingGroup(model pricing.Model) pricing.Group {
	g := pricing.Group{
		Model:    model,
		Adult:    val(pg.PriceAdult),
		Child:    val(pg.PriceChild),
		Baby:     val(pg.PriceBaby),
		SinglePP: val(pg.PriceSinglePP),
		DoublePP: val(pg.PriceDoublePP),
		TriplePP: val(pg.PriceTriplePP),
		QuadPP:   val(pg.PriceQuadPP),
		Child1:   val(pg.PriceChild1),
		Child2:   val(pg.PriceChild2),
		Baby1:    val(pg.PriceBaby1),
		Baby2:    val(pg.PriceBaby2),
		Currency: pg.Currency,
	}
	if pg.MaxPax != nil {
		g.MaxPax = *pg.MaxPax
	}
	return g
}

// PriceGroupRequest creates or replaces a price group
type PriceGroupRequest struct {
	Name     string  `json:"name" binding:"required,max=100"`
	Currency string  `json:"currency" binding:"required,len=3"`
	Status   *string `json:"status,omitempty" binding:"omitempty,oneof=active passive"`

	PriceAdult *float64 `json:"price_adult,omitempty" binding:"omitempty,min=0"`
	PriceChild *float64 `json:"price_child,omitempty" binding:"omitempty,min=0"`
	PriceBaby  *float64 `json:"price_baby,omitempty" binding:"omitempty,min=0"`

	PriceSinglePP *float64 `json:"price_single_pp,omitempty" binding:"omitempty,min=0"`
	PriceDoublePP *float64 `json:"price_double_pp,omitempty" binding:"omitempty,min=0"`
	PriceTriplePP *float64 `json:"price_triple_pp,omitempty" binding:"omitempty,min=0"`
	PriceQuadPP   *float64 `json:"price_quad_pp,omitempty" binding:"omitempty,min=0"`
	PriceChild1   *float64 `json:"price_child_1,omitempty" binding:"omitempty,min=0"`
	PriceChild2   *float64 `json:"price_child_2,omitempty" binding:"omitempty,min=0"`
	PriceBaby1    *float64 `json:"price_baby_1,omitempty" binding:"omitempty,min=0"`
	PriceBaby2    *float64 `json:"price_baby_2,omitempty" binding:"omitempty,min=0"`
	MaxPax        *int     `json:"max_pax,omitempty" binding:"omitempty,min=1,max=12"`
}

// Validate checks the request against the tour's pricing model
func (r *PriceGroupRequest) Validate(model pricing.Model) error {
	if model == pricing.ModelRoomBased {
		if r.PriceSinglePP == nil || *r.PriceSinglePP <= 0 {
			return NewValidationError("price_single_pp", "required for room based pricing")
		}
		if r.MaxPax == nil {
			return NewValidationError("max_pax", "required for room based pricing")
		}
		return nil
	}
	if r.PriceAdult == nil {
		return NewValidationError("price_adult", "required for per person pricing")
	}
	return nil
}

// Apply copies the request onto a price group
func (r *PriceGroupRequest) Apply(pg *PriceGroup) {
	pg.Name = r.Name
	pg.Currency = r.Currency
	pg.Status = PriceGroupStatusActive
	if r.Status != nil {
		pg.Status = PriceGroupStatus(*r.Status)
	}
	pg.PriceAdult, pg.PriceChild, pg.PriceBaby = r.PriceAdult, r.PriceChild, r.PriceBaby
	pg.PriceSinglePP, pg.PriceDoublePP = r.PriceSinglePP, r.PriceDoublePP
	pg.PriceTriplePP, pg.PriceQuadPP = r.PriceTriplePP, r.PriceQuadPP
	pg.PriceChild1, pg.PriceChild2 = r.PriceChild1, r.PriceChild2
	pg.PriceBaby1, pg.PriceBaby2 = r.PriceBaby1, r.PriceBaby2
	pg.MaxPax = r.MaxPax
}
