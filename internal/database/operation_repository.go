package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/tourdesk/backoffice-api/internal/models"
)

const operationColumns = `id, tour_date_id, vehicle_plate, vehicle_info, guide_name, guide_phone,
	driver_name, driver_phone, meeting_point, notes, status, created_at, updated_at`

// OperationRepository handles the one-per-date operation records
type OperationRepository struct {
	db *sqlx.DB
}

// NewOperationRepository creates a new OperationRepository
func NewOperationRepository(db *sqlx.DB) *OperationRepository {
	return &OperationRepository{db: db}
}

// GetByTourDate returns the operation of a tour date
func (r *OperationRepository) GetByTourDate(tourDateID uuid.UUID) (*models.TourOperation, error) {
	var op models.TourOperation
	query := `SELECT ` + operationColumns + ` FROM tour_operations WHERE tour_date_id = $1`
	if err := r.db.Get(&op, query, tourDateID); err != nil {
		return nil, translate(err, models.ErrNotFound, "get tour operation")
	}
	return &op, nil
}

// Upsert writes the whole operation record keyed by tour_date_id
func (r *OperationRepository) Upsert(op *models.TourOperation) error {
	if op.ID == uuid.Nil {
		op.ID = uuid.New()
	}
	query := `
		INSERT INTO tour_operations (id, tour_date_id, vehicle_plate, vehicle_info, guide_name,
			guide_phone, driver_name, driver_phone, meeting_point, notes, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
		ON CONFLICT (tour_date_id) DO UPDATE
		SET vehicle_plate = EXCLUDED.vehicle_plate,
			vehicle_info = EXCLUDED.vehicle_info,
			guide_name = EXCLUDED.guide_name,
			guide_phone = EXCLUDED.guide_phone,
			driver_name = EXCLUDED.driver_name,
			driver_phone = EXCLUDED.driver_phone,
			meeting_point = EXCLUDED.meeting_point,
			notes = EXCLUDED.notes,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + operationColumns
	err := r.db.Get(op, query,
		op.ID, op.TourDateID, op.VehiclePlate, op.VehicleInfo, op.GuideName,
		op.GuidePhone, op.DriverName, op.DriverPhone, op.MeetingPoint, op.Notes,
		string(op.Status), time.Now(),
	)
	return translate(err, nil, "upsert tour operation")
}
