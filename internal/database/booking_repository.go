package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/tourdesk/backoffice-api/internal/models"
)

const bookingSelect = `
	SELECT b.id, b.tour_date_id, b.tour_id, b.client_id, b.pax_adult, b.pax_child, b.pax_baby,
		b.pricing_snapshot, b.total_amount, b.amount_paid, b.currency, b.notes, b.booking_status,
		b.created_by, b.cancelled_at, b.created_at, b.updated_at,
		c.full_name AS client_name, c.phone AS client_phone,
		t.title AS tour_title, td.start_date
	FROM bookings b
	JOIN clients c ON c.id = b.client_id
	JOIN tour_dates td ON td.id = b.tour_date_id
	JOIN tours t ON t.id = b.tour_id
`

const passengerColumns = `id, booking_id, full_name, national_id, birth_date, passenger_type,
	phone, pickup_point, sort_order, created_at`

// BookingRepository handles bookings, their passengers and the side
// effects that must commit with them
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create stores a booking in one transaction: the client upsert (when
// client is non-nil), the booking row, its passengers, the capacity
// reservation and the optional income line. Any failure rolls back all of it.
func (r *BookingRepository) Create(booking *models.Booking, client *models.Client, passengers []models.Passenger, income *models.FinanceRecord) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if client != nil {
		if err := upsertClient(tx, client); err != nil {
			return err
		}
		booking.ClientID = client.ID
	}

	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	now := time.Now()
	booking.CreatedAt, booking.UpdatedAt = now, now

	insertBookingQuery := `
		INSERT INTO bookings (id, tour_date_id, tour_id, client_id, pax_adult, pax_child, pax_baby,
			pricing_snapshot, total_amount, amount_paid, currency, notes, booking_status,
			created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err = tx.Exec(insertBookingQuery,
		booking.ID, booking.TourDateID, booking.TourID, booking.ClientID,
		booking.PaxAdult, booking.PaxChild, booking.PaxBaby,
		booking.PricingSnapshot, booking.TotalAmount, booking.AmountPaid, booking.Currency,
		booking.Notes, string(booking.BookingStatus), booking.CreatedBy,
		booking.CreatedAt, booking.UpdatedAt,
	)
	if err != nil {
		return translate(err, nil, "insert booking")
	}

	if err := insertPassengers(tx, booking.ID, passengers, now); err != nil {
		return err
	}
	booking.Passengers = passengers

	pax := booking.PaxAdult + booking.PaxChild + booking.PaxBaby
	if err := ReserveCapacity(tx, booking.TourDateID, pax, now); err != nil {
		return err
	}

	if income != nil {
		income.TourDateID = booking.TourDateID
		income.ReferenceID = &booking.ID
		if err := insertFinanceRecord(tx, income); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetByID returns a booking with its client, tour and passengers
func (r *BookingRepository) GetByID(id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.Get(&booking, bookingSelect+` WHERE b.id = $1`, id); err != nil {
		return nil, translate(err, models.ErrBookingNotFound, "get booking")
	}

	passengers, err := r.ListPassengers(id)
	if err != nil {
		return nil, err
	}
	booking.Passengers = passengers
	return &booking, nil
}

// List returns bookings matching the filter, newest first
func (r *BookingRepository) List(filter models.BookingFilter) ([]models.Booking, error) {
	bookings := []models.Booking{}
	query := bookingSelect + ` WHERE 1=1`
	args := []interface{}{}
	argNum := 1

	if filter.TourDateID != nil {
		query += fmt.Sprintf(` AND b.tour_date_id = $%d`, argNum)
		args = append(args, *filter.TourDateID)
		argNum++
	}
	if filter.ClientID != nil {
		query += fmt.Sprintf(` AND b.client_id = $%d`, argNum)
		args = append(args, *filter.ClientID)
		argNum++
	}
	if filter.Status != nil {
		query += fmt.Sprintf(` AND b.booking_status = $%d`, argNum)
		args = append(args, string(*filter.Status))
		argNum++
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query += fmt.Sprintf(` ORDER BY b.created_at DESC LIMIT $%d OFFSET $%d`, argNum, argNum+1)
	args = append(args, limit, filter.Offset)

	if err := r.db.Select(&bookings, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// ListPassengers returns a booking's passengers in roster order
func (r *BookingRepository) ListPassengers(bookingID uuid.UUID) ([]models.Passenger, error) {
	passengers := []models.Passenger{}
	query := `SELECT ` + passengerColumns + ` FROM booking_passengers WHERE booking_id = $1 ORDER BY sort_order`
	if err := r.db.Select(&passengers, query, bookingID); err != nil {
		return nil, fmt.Errorf("failed to list passengers: %w", err)
	}
	return passengers, nil
}

// ListManifest returns every passenger of the tour date's active bookings
func (r *BookingRepository) ListManifest(tourDateID uuid.UUID) ([]models.ManifestEntry, error) {
	entries := []models.ManifestEntry{}
	query := `
		SELECT p.id, p.booking_id, p.full_name, p.national_id, p.birth_date, p.passenger_type,
			p.phone, p.pickup_point, p.sort_order, p.created_at,
			c.full_name AS client_name, c.phone AS client_phone, b.booking_status
		FROM booking_passengers p
		JOIN bookings b ON b.id = p.booking_id
		JOIN clients c ON c.id = b.client_id
		WHERE b.tour_date_id = $1 AND b.booking_status <> 'cancelled'
		ORDER BY b.created_at, p.sort_order
	`
	if err := r.db.Select(&entries, query, tourDateID); err != nil {
		return nil, fmt.Errorf("failed to list manifest: %w", err)
	}
	return entries, nil
}

// Update writes a booking's mutable fields. When passengers is non-nil the
// roster is replaced and capacity moves by paxDelta, all in one transaction.
func (r *BookingRepository) Update(booking *models.Booking, passengers []models.Passenger, paxDelta int) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	booking.UpdatedAt = now
	query := `
		UPDATE bookings
		SET pax_adult = $1, pax_child = $2, pax_baby = $3, total_amount = $4, amount_paid = $5,
			notes = $6, booking_status = $7, pricing_snapshot = $8, updated_at = $9
		WHERE id = $10 AND booking_status <> 'cancelled'
	`
	res, err := tx.Exec(query,
		booking.PaxAdult, booking.PaxChild, booking.PaxBaby, booking.TotalAmount, booking.AmountPaid,
		booking.Notes, string(booking.BookingStatus), booking.PricingSnapshot, now, booking.ID,
	)
	if err != nil {
		return translate(err, nil, "update booking")
	}
	if err := checkAffected(res, models.ErrBookingAlreadyCancelled); err != nil {
		return err
	}

	if passengers != nil {
		if _, err := tx.Exec(`DELETE FROM booking_passengers WHERE booking_id = $1`, booking.ID); err != nil {
			return fmt.Errorf("failed to delete passengers: %w", err)
		}
		if err := insertPassengers(tx, booking.ID, passengers, now); err != nil {
			return err
		}
		if err := AdjustCapacity(tx, booking.TourDateID, paxDelta, now); err != nil {
			return err
		}
		booking.Passengers = passengers
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Cancel moves a booking to the terminal cancelled state and gives its
// seats back. Capacity is only released on the first cancellation; a second
// call returns ErrBookingAlreadyCancelled. A non-nil refund is written to the
// ledger in the same transaction.
func (r *BookingRepository) Cancel(id uuid.UUID, refund *models.FinanceRecord) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	var cancelled struct {
		TourDateID uuid.UUID `db:"tour_date_id"`
		Pax        int       `db:"pax"`
	}
	query := `
		UPDATE bookings
		SET booking_status = 'cancelled', cancelled_at = $1, updated_at = $1
		WHERE id = $2 AND booking_status <> 'cancelled'
		RETURNING tour_date_id, pax_adult + pax_child + pax_baby AS pax
	`
	err = tx.Get(&cancelled, query, now, id)
	if errors.Is(err, sql.ErrNoRows) {
		var exists bool
		if err := tx.Get(&exists, `SELECT EXISTS(SELECT 1 FROM bookings WHERE id = $1)`, id); err != nil {
			return fmt.Errorf("failed to check booking: %w", err)
		}
		if exists {
			return models.ErrBookingAlreadyCancelled
		}
		return models.ErrBookingNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to cancel booking: %w", err)
	}

	if err := ReleaseCapacity(tx, cancelled.TourDateID, cancelled.Pax, now); err != nil {
		return err
	}

	if refund != nil {
		refund.TourDateID = cancelled.TourDateID
		refund.ReferenceID = &id
		if err := insertFinanceRecord(tx, refund); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertPassengers(ex sqlx.Execer, bookingID uuid.UUID, passengers []models.Passenger, now time.Time) error {
	query := `
		INSERT INTO booking_passengers (id, booking_id, full_name, national_id, birth_date,
			passenger_type, phone, pickup_point, sort_order, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	for i := range passengers {
		p := &passengers[i]
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		p.BookingID = bookingID
		p.CreatedAt = now
		_, err := ex.Exec(query,
			p.ID, p.BookingID, p.FullName, p.NationalID, p.BirthDate,
			string(p.PassengerType), p.Phone, p.PickupPoint, p.SortOrder, p.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert passenger %d: %w", i+1, err)
		}
	}
	return nil
}
