package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/tourdesk/backoffice-api/internal/models"
)

const financeColumns = `id, tour_date_id, type, category, amount, currency, description,
	transaction_date, reference_type, reference_id, created_by, created_at`

const financeTotals = `
	SELECT currency,
		COALESCE(SUM(CASE WHEN type = 'income' THEN amount ELSE 0 END), 0) AS income,
		COALESCE(SUM(CASE WHEN type = 'expense' THEN amount ELSE 0 END), 0) AS expense,
		COALESCE(SUM(CASE WHEN type = 'income' THEN amount ELSE -amount END), 0) AS net
	FROM tour_date_finance
`

// FinanceRepository handles the per tour date ledger
type FinanceRepository struct {
	db *sqlx.DB
}

// NewFinanceRepository creates a new FinanceRepository
func NewFinanceRepository(db *sqlx.DB) *FinanceRepository {
	return &FinanceRepository{db: db}
}

// ListByTourDate returns the ledger of a tour date in transaction order
func (r *FinanceRepository) ListByTourDate(tourDateID uuid.UUID) ([]models.FinanceRecord, error) {
	records := []models.FinanceRecord{}
	query := `SELECT ` + financeColumns + ` FROM tour_date_finance
		WHERE tour_date_id = $1 ORDER BY transaction_date, created_at`
	if err := r.db.Select(&records, query, tourDateID); err != nil {
		return nil, fmt.Errorf("failed to list finance records: %w", err)
	}
	return records, nil
}

// ListBetween returns all ledger lines with from <= transaction_date < to
func (r *FinanceRepository) ListBetween(from, to time.Time) ([]models.FinanceRecord, error) {
	records := []models.FinanceRecord{}
	query := `SELECT ` + financeColumns + ` FROM tour_date_finance
		WHERE transaction_date >= $1 AND transaction_date < $2 ORDER BY transaction_date, created_at`
	if err := r.db.Select(&records, query, from, to); err != nil {
		return nil, fmt.Errorf("failed to list finance records: %w", err)
	}
	return records, nil
}

// Create appends a ledger line
func (r *FinanceRepository) Create(rec *models.FinanceRecord) error {
	return insertFinanceRecord(r.db, rec)
}

// Delete removes a ledger line
func (r *FinanceRepository) Delete(id uuid.UUID) error {
	res, err := r.db.Exec(`DELETE FROM tour_date_finance WHERE id = $1`, id)
	if err != nil {
		return translate(err, nil, "delete finance record")
	}
	return checkAffected(res, models.ErrNotFound)
}

// TotalsByTourDate sums a tour date's ledger per currency
func (r *FinanceRepository) TotalsByTourDate(tourDateID uuid.UUID) ([]models.CurrencyTotals, error) {
	totals := []models.CurrencyTotals{}
	query := financeTotals + ` WHERE tour_date_id = $1 GROUP BY currency ORDER BY currency`
	if err := r.db.Select(&totals, query, tourDateID); err != nil {
		return nil, fmt.Errorf("failed to sum finance records: %w", err)
	}
	return totals, nil
}

// TotalsBetween sums all ledger lines in [from, to) per currency
func (r *FinanceRepository) TotalsBetween(from, to time.Time) ([]models.CurrencyTotals, error) {
	totals := []models.CurrencyTotals{}
	query := financeTotals + ` WHERE transaction_date >= $1 AND transaction_date < $2
		GROUP BY currency ORDER BY currency`
	if err := r.db.Select(&totals, query, from, to); err != nil {
		return nil, fmt.Errorf("failed to sum finance records: %w", err)
	}
	return totals, nil
}

func insertFinanceRecord(ex sqlx.Execer, rec *models.FinanceRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	if rec.TransactionDate.IsZero() {
		rec.TransactionDate = rec.CreatedAt
	}

	query := `
		INSERT INTO tour_date_finance (id, tour_date_id, type, category, amount, currency,
			description, transaction_date, reference_type, reference_id, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := ex.Exec(query,
		rec.ID, rec.TourDateID, string(rec.Type), rec.Category, rec.Amount, rec.Currency,
		rec.Description, rec.TransactionDate, rec.ReferenceType, rec.ReferenceID,
		rec.CreatedBy, rec.CreatedAt,
	)
	return translate(err, nil, "create finance record")
}
