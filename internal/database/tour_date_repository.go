package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/tourdesk/backoffice-api/internal/models"
)

const tourDateSelect = `
	SELECT td.id, td.tour_id, td.price_group_id, td.start_date, td.end_date,
		td.capacity_total, td.capacity_available, td.status, td.created_at, td.updated_at,
		t.title AS tour_title, pg.name AS price_group_name
	FROM tour_dates td
	JOIN tours t ON t.id = td.tour_id
	JOIN tour_price_groups pg ON pg.id = td.price_group_id
`

// TourDateRepository handles database operations for tour dates and owns
// the capacity counter
type TourDateRepository struct {
	db *sqlx.DB
}

// NewTourDateRepository creates a new TourDateRepository
func NewTourDateRepository(db *sqlx.DB) *TourDateRepository {
	return &TourDateRepository{db: db}
}

// ListByTour returns the dates of a tour in start order. from limits the
// list to dates starting on or after it.
func (r *TourDateRepository) ListByTour(tourID uuid.UUID, from *time.Time) ([]models.TourDate, error) {
	dates := []models.TourDate{}
	query := tourDateSelect + ` WHERE td.tour_id = $1`
	args := []interface{}{tourID}
	if from != nil {
		query += ` AND td.start_date >= $2`
		args = append(args, from.Format("2006-01-02"))
	}
	query += ` ORDER BY td.start_date`

	if err := r.db.Select(&dates, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list tour dates: %w", err)
	}
	return dates, nil
}

// GetByID returns a tour date with its tour title and price group name
func (r *TourDateRepository) GetByID(id uuid.UUID) (*models.TourDate, error) {
	var td models.TourDate
	if err := r.db.Get(&td, tourDateSelect+` WHERE td.id = $1`, id); err != nil {
		return nil, translate(err, models.ErrTourDateNotFound, "get tour date")
	}
	return &td, nil
}

// Create schedules a tour date with all of its capacity available
func (r *TourDateRepository) Create(td *models.TourDate) error {
	if td.ID == uuid.Nil {
		td.ID = uuid.New()
	}
	now := time.Now()
	td.CreatedAt, td.UpdatedAt = now, now
	td.CapacityAvailable = td.CapacityTotal
	td.Status = models.TourDateStatusAvailable

	query := `
		INSERT INTO tour_dates (id, tour_id, price_group_id, start_date, end_date,
			capacity_total, capacity_available, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(query,
		td.ID, td.TourID, td.PriceGroupID, td.StartDate, td.EndDate,
		td.CapacityTotal, td.CapacityAvailable, string(td.Status), td.CreatedAt, td.UpdatedAt,
	)
	return translate(err, nil, "create tour date")
}

// UpdateStatus sets the status of a tour date
func (r *TourDateRepository) UpdateStatus(id uuid.UUID, status models.TourDateStatus) error {
	res, err := r.db.Exec(`UPDATE tour_dates SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now(), id)
	if err != nil {
		return translate(err, nil, "update tour date status")
	}
	return checkAffected(res, models.ErrTourDateNotFound)
}

// Delete removes a tour date without bookings
func (r *TourDateRepository) Delete(id uuid.UUID) error {
	res, err := r.db.Exec(`DELETE FROM tour_dates WHERE id = $1`, id)
	if err != nil {
		return translate(err, nil, "delete tour date")
	}
	return checkAffected(res, models.ErrTourDateNotFound)
}

// CompletePast marks every open tour date that ended before today as
// completed and closes its planned or active operation. It returns the ids
// of the dates it completed.
func (r *TourDateRepository) CompletePast(now time.Time) ([]uuid.UUID, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	ids := []uuid.UUID{}
	query := `
		UPDATE tour_dates
		SET status = 'completed', updated_at = $1
		WHERE end_date < $2 AND status IN ('available', 'soldout')
		RETURNING id
	`
	if err := tx.Select(&ids, query, now, now.Format("2006-01-02")); err != nil {
		return nil, fmt.Errorf("failed to complete tour dates: %w", err)
	}

	if len(ids) > 0 {
		arr := make(models.UUIDArray, len(ids))
		for i, id := range ids {
			arr[i] = id.String()
		}
		_, err = tx.Exec(`
			UPDATE tour_operations
			SET status = 'completed', updated_at = $1
			WHERE tour_date_id = ANY($2::uuid[]) AND status IN ('planned', 'active')
		`, now, arr)
		if err != nil {
			return nil, fmt.Errorf("failed to complete tour operations: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return ids, nil
}

// ============================================================================
// CAPACITY
// ============================================================================

// ReserveCapacity takes pax seats from an open tour date in a single
// conditional update. The date flips to soldout when it reaches zero.
// Returns ErrInsufficientCapacity when the seats are not there.
func ReserveCapacity(ex sqlx.Execer, tourDateID uuid.UUID, pax int, now time.Time) error {
	query := `
		UPDATE tour_dates
		SET capacity_available = capacity_available - $1,
			status = CASE WHEN capacity_available - $1 = 0 THEN 'soldout' ELSE status END,
			updated_at = $2
		WHERE id = $3 AND capacity_available >= $1 AND status IN ('available', 'soldout')
	`
	res, err := ex.Exec(query, pax, now, tourDateID)
	if err != nil {
		return fmt.Errorf("failed to reserve capacity: %w", err)
	}
	return checkAffected(res, models.ErrInsufficientCapacity)
}

// ReleaseCapacity gives pax seats back, never exceeding capacity_total.
// A soldout date becomes available again.
func ReleaseCapacity(ex sqlx.Execer, tourDateID uuid.UUID, pax int, now time.Time) error {
	query := `
		UPDATE tour_dates
		SET capacity_available = LEAST(capacity_available + $1, capacity_total),
			status = CASE WHEN status = 'soldout' THEN 'available' ELSE status END,
			updated_at = $2
		WHERE id = $3
	`
	res, err := ex.Exec(query, pax, now, tourDateID)
	if err != nil {
		return fmt.Errorf("failed to release capacity: %w", err)
	}
	return checkAffected(res, models.ErrTourDateNotFound)
}

// AdjustCapacity reserves or releases the difference of a roster change
func AdjustCapacity(ex sqlx.Execer, tourDateID uuid.UUID, delta int, now time.Time) error {
	switch {
	case delta > 0:
		return ReserveCapacity(ex, tourDateID, delta, now)
	case delta < 0:
		return ReleaseCapacity(ex, tourDateID, -delta, now)
	}
	return nil
}
