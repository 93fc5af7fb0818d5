package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/tourdesk/backoffice-api/internal/models"
)

const clientColumns = `id, full_name, phone, email, notes, created_at, updated_at`

// ClientRepository handles database operations for clients
type ClientRepository struct {
	db *sqlx.DB
}

// NewClientRepository creates a new ClientRepository
func NewClientRepository(db *sqlx.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

// List returns clients matching search on name or phone, with their booking count
func (r *ClientRepository) List(search string, limit, offset int) ([]models.Client, error) {
	clients := []models.Client{}
	query := `
		SELECT c.id, c.full_name, c.phone, c.email, c.notes, c.created_at, c.updated_at,
			(SELECT COUNT(*) FROM bookings b WHERE b.client_id = c.id) AS booking_count
		FROM clients c
	`
	args := []interface{}{}
	if search != "" {
		query += ` WHERE c.full_name ILIKE $1 OR c.phone ILIKE $1`
		args = append(args, "%"+search+"%")
	}
	query += fmt.Sprintf(` ORDER BY c.full_name LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	if err := r.db.Select(&clients, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, nil
}

// GetByID returns a client by id
func (r *ClientRepository) GetByID(id uuid.UUID) (*models.Client, error) {
	var c models.Client
	if err := r.db.Get(&c, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id); err != nil {
		return nil, translate(err, models.ErrClientNotFound, "get client")
	}
	return &c, nil
}

// GetByPhone returns a client by normalized phone
func (r *ClientRepository) GetByPhone(phone string) (*models.Client, error) {
	var c models.Client
	if err := r.db.Get(&c, `SELECT `+clientColumns+` FROM clients WHERE phone = $1`, phone); err != nil {
		return nil, translate(err, models.ErrClientNotFound, "get client by phone")
	}
	return &c, nil
}

// Create inserts a client. A taken phone fails with ErrDuplicate.
func (r *ClientRepository) Create(c *models.Client) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now()
	c.CreatedAt, c.UpdatedAt = now, now

	query := `
		INSERT INTO clients (id, full_name, phone, email, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(query, c.ID, c.FullName, c.Phone, c.Email, c.Notes, c.CreatedAt, c.UpdatedAt)
	return translate(err, nil, "create client")
}

// Update writes a client's editable fields
func (r *ClientRepository) Update(c *models.Client) error {
	c.UpdatedAt = time.Now()
	query := `
		UPDATE clients SET full_name = $1, phone = $2, email = $3, notes = $4, updated_at = $5
		WHERE id = $6
	`
	res, err := r.db.Exec(query, c.FullName, c.Phone, c.Email, c.Notes, c.UpdatedAt, c.ID)
	if err != nil {
		return translate(err, nil, "update client")
	}
	return checkAffected(res, models.ErrClientNotFound)
}

// Delete removes a client. Clients with bookings fail with ErrReferenced.
func (r *ClientRepository) Delete(id uuid.UUID) error {
	res, err := r.db.Exec(`DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return translate(err, nil, "delete client")
	}
	return checkAffected(res, models.ErrClientNotFound)
}

// UpsertByPhone inserts the client or, when the phone is already known,
// updates that client's name and email
func (r *ClientRepository) UpsertByPhone(c *models.Client) error {
	return upsertClient(r.db, c)
}

func upsertClient(q sqlx.Queryer, c *models.Client) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	query := `
		INSERT INTO clients (id, full_name, phone, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (phone) DO UPDATE
		SET full_name = EXCLUDED.full_name,
			email = COALESCE(EXCLUDED.email, clients.email),
			updated_at = EXCLUDED.updated_at
		RETURNING ` + clientColumns
	if err := sqlx.Get(q, c, query, c.ID, c.FullName, c.Phone, c.Email, time.Now()); err != nil {
		return translate(err, nil, "upsert client")
	}
	return nil
}
