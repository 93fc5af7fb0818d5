package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/tourdesk/backoffice-api/internal/models"
)

const tourColumns = `id, title, description, tour_type, pricing_model, status,
	baby_max_age, child_min_age, child_max_age, created_at, updated_at`

// TourRepository handles database operations for tours
type TourRepository struct {
	db *sqlx.DB
}

// NewTourRepository creates a new TourRepository
func NewTourRepository(db *sqlx.DB) *TourRepository {
	return &TourRepository{db: db}
}

// List returns tours, optionally filtered by status, newest first
func (r *TourRepository) List(status *models.TourStatus) ([]models.Tour, error) {
	tours := []models.Tour{}
	query := `SELECT ` + tourColumns + ` FROM tours`
	args := []interface{}{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, string(*status))
	}
	query += ` ORDER BY created_at DESC`

	if err := r.db.Select(&tours, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list tours: %w", err)
	}
	return tours, nil
}

// GetByID returns a tour by id
func (r *TourRepository) GetByID(id uuid.UUID) (*models.Tour, error) {
	var tour models.Tour
	query := `SELECT ` + tourColumns + ` FROM tours WHERE id = $1`
	if err := r.db.Get(&tour, query, id); err != nil {
		return nil, translate(err, models.ErrTourNotFound, "get tour")
	}
	return &tour, nil
}

// Create inserts a new tour
func (r *TourRepository) Create(tour *models.Tour) error {
	if tour.ID == uuid.Nil {
		tour.ID = uuid.New()
	}
	now := time.Now()
	tour.CreatedAt, tour.UpdatedAt = now, now

	query := `
		INSERT INTO tours (id, title, description, tour_type, pricing_model, status,
			baby_max_age, child_min_age, child_max_age, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.Exec(query,
		tour.ID, tour.Title, tour.Description, string(tour.TourType), string(tour.PricingModel),
		string(tour.Status), tour.BabyMaxAge, tour.ChildMinAge, tour.ChildMaxAge,
		tour.CreatedAt, tour.UpdatedAt,
	)
	return translate(err, nil, "create tour")
}

// Update writes all editable fields of a tour
func (r *TourRepository) Update(tour *models.Tour) error {
	tour.UpdatedAt = time.Now()
	query := `
		UPDATE tours
		SET title = $1, description = $2, tour_type = $3, pricing_model = $4,
			baby_max_age = $5, child_min_age = $6, child_max_age = $7, updated_at = $8
		WHERE id = $9
	`
	res, err := r.db.Exec(query,
		tour.Title, tour.Description, string(tour.TourType), string(tour.PricingModel),
		tour.BabyMaxAge, tour.ChildMinAge, tour.ChildMaxAge, tour.UpdatedAt, tour.ID,
	)
	if err != nil {
		return translate(err, nil, "update tour")
	}
	return checkAffected(res, models.ErrTourNotFound)
}

// UpdateStatus changes a tour's lifecycle status
func (r *TourRepository) UpdateStatus(id uuid.UUID, status models.TourStatus) error {
	res, err := r.db.Exec(`UPDATE tours SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now(), id)
	if err != nil {
		return translate(err, nil, "update tour status")
	}
	return checkAffected(res, models.ErrTourNotFound)
}

// Delete removes a tour. Tours with dates or bookings fail with ErrReferenced.
func (r *TourRepository) Delete(id uuid.UUID) error {
	res, err := r.db.Exec(`DELETE FROM tours WHERE id = $1`, id)
	if err != nil {
		return translate(err, nil, "delete tour")
	}
	return checkAffected(res, models.ErrTourNotFound)
}
