package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/tourdesk/backoffice-api/internal/models"
)

// ProfileRepository reads staff profiles and writes the audit trail
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository creates a new ProfileRepository
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetByID returns the profile of an authenticated user
func (r *ProfileRepository) GetByID(id uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	query := `SELECT id, full_name, email, role, created_at, updated_at FROM profiles WHERE id = $1`
	if err := r.db.Get(&p, query, id); err != nil {
		return nil, translate(err, models.ErrNotFound, "get profile")
	}
	return &p, nil
}

// CreateAuditLog appends an audit entry
func (r *ProfileRepository) CreateAuditLog(entry *models.AuditLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO audit_logs (id, actor_id, action, entity_type, entity_id,
			ip_address, user_agent, device, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(query,
		entry.ID, entry.ActorID, entry.Action, entry.EntityType, entry.EntityID,
		entry.IPAddress, entry.UserAgent, entry.Device, entry.Details, entry.CreatedAt,
	)
	return translate(err, nil, "create audit log")
}
