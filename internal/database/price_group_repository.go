package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/tourdesk/backoffice-api/internal/models"
)

const priceGroupColumns = `id, tour_id, name, currency, status,
	price_adult, price_child, price_baby,
	price_single_pp, price_double_pp, price_triple_pp, price_quad_pp,
	price_child_1, price_child_2, price_baby_1, price_baby_2, max_pax,
	created_at, updated_at`

// PriceGroupRepository handles database operations for tour price groups
type PriceGroupRepository struct {
	db *sqlx.DB
}

// NewPriceGroupRepository creates a new PriceGroupRepository
func NewPriceGroupRepository(db *sqlx.DB) *PriceGroupRepository {
	return &PriceGroupRepository{db: db}
}

// ListByTour returns the price groups of a tour
func (r *PriceGroupRepository) ListByTour(tourID uuid.UUID) ([]models.PriceGroup, error) {
	groups := []models.PriceGroup{}
	query := `SELECT ` + priceGroupColumns + ` FROM tour_price_groups WHERE tour_id = $1 ORDER BY name`
	if err := r.db.Select(&groups, query, tourID); err != nil {
		return nil, fmt.Errorf("failed to list price groups: %w", err)
	}
	return groups, nil
}

// GetByID returns a price group by id
func (r *PriceGroupRepository) GetByID(id uuid.UUID) (*models.PriceGroup, error) {
	var pg models.PriceGroup
	query := `SELECT ` + priceGroupColumns + ` FROM tour_price_groups WHERE id = $1`
	if err := r.db.Get(&pg, query, id); err != nil {
		return nil, translate(err, models.ErrPriceGroupNotFound, "get price group")
	}
	return &pg, nil
}

// Create inserts a price group
func (r *PriceGroupRepository) Create(pg *models.PriceGroup) error {
	if pg.ID == uuid.Nil {
		pg.ID = uuid.New()
	}
	now := time.Now()
	pg.CreatedAt, pg.UpdatedAt = now, now

	query := `
		INSERT INTO tour_price_groups (id, tour_id, name, currency, status,
			price_adult, price_child, price_baby,
			price_single_pp, price_double_pp, price_triple_pp, price_quad_pp,
			price_child_1, price_child_2, price_baby_1, price_baby_2, max_pax,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`
	_, err := r.db.Exec(query,
		pg.ID, pg.TourID, pg.Name, pg.Currency, string(pg.Status),
		pg.PriceAdult, pg.PriceChild, pg.PriceBaby,
		pg.PriceSinglePP, pg.PriceDoublePP, pg.PriceTriplePP, pg.PriceQuadPP,
		pg.PriceChild1, pg.PriceChild2, pg.PriceBaby1, pg.PriceBaby2, pg.MaxPax,
		pg.CreatedAt, pg.UpdatedAt,
	)
	return translate(err, nil, "create price group")
}

// Update replaces the prices of a price group. Existing bookings keep
// their pricing snapshot.
func (r *PriceGroupRepository) Update(pg *models.PriceGroup) error {
	pg.UpdatedAt = time.Now()
	query := `
		UPDATE tour_price_groups
		SET name = $1, currency = $2, status = $3,
			price_adult = $4, price_child = $5, price_baby = $6,
			price_single_pp = $7, price_double_pp = $8, price_triple_pp = $9, price_quad_pp = $10,
			price_child_1 = $11, price_child_2 = $12, price_baby_1 = $13, price_baby_2 = $14,
			max_pax = $15, updated_at = $16
		WHERE id = $17
	`
	res, err := r.db.Exec(query,
		pg.Name, pg.Currency, string(pg.Status),
		pg.PriceAdult, pg.PriceChild, pg.PriceBaby,
		pg.PriceSinglePP, pg.PriceDoublePP, pg.PriceTriplePP, pg.PriceQuadPP,
		pg.PriceChild1, pg.PriceChild2, pg.PriceBaby1, pg.PriceBaby2,
		pg.MaxPax, pg.UpdatedAt, pg.ID,
	)
	if err != nil {
		return translate(err, nil, "update price group")
	}
	return checkAffected(res, models.ErrPriceGroupNotFound)
}

// Delete removes a price group that no tour date uses
func (r *PriceGroupRepository) Delete(id uuid.UUID) error {
	res, err := r.db.Exec(`DELETE FROM tour_price_groups WHERE id = $1`, id)
	if err != nil {
		return translate(err, nil, "delete price group")
	}
	return checkAffected(res, models.ErrPriceGroupNotFound)
}
