package models

import (
	"time"

	"github.com/google/uuid"
)

// FinanceType is the direction of a ledger line
type FinanceType string

const (
	FinanceTypeIncome  FinanceType = "income"
	FinanceTypeExpense FinanceType = "expense"
)

// Ledger categories written by the application itself
const (
	FinanceCategoryReservation = "reservation"
	FinanceCategoryRefund      = "refund"
)

// ReferenceTypeBooking marks ledger lines generated from a booking
const ReferenceTypeBooking = "booking"

// FinanceRecord is one income or expense line of a tour date
type FinanceRecord struct {
	ID              uuid.UUID   `json:"id" db:"id"`
	TourDateID      uuid.UUID   `json:"tour_date_id" db:"tour_date_id"`
	Type            FinanceType `json:"type" db:"type"`
	Category        string      `json:"category" db:"category"`
	Amount          float64     `json:"amount" db:"amount"`
	Currency        string      `json:"currency" db:"currency"`
	Description     *string     `json:"description,omitempty" db:"description"`
	TransactionDate time.Time   `json:"transaction_date" db:"transaction_date"`
	ReferenceType   *string     `json:"reference_type,omitempty" db:"reference_type"`
	ReferenceID     *uuid.UUID  `json:"reference_id,omitempty" db:"reference_id"`
	CreatedBy       *uuid.UUID  `json:"created_by,omitempty" db:"created_by"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
}

// CreateFinanceRequest adds a manual ledger line
type CreateFinanceRequest struct {
	Type            string  `json:"type" binding:"required,oneof=income expense"`
	Category        string  `json:"category" binding:"required,max=50"`
	Amount          float64 `json:"amount" binding:"required,gt=0"`
	Currency        string  `json:"currency" binding:"required,len=3"`
	Description     *string `json:"description,omitempty"`
	TransactionDate *string `json:"transaction_date,omitempty" binding:"omitempty,datetime=2006-01-02"`
}

// CurrencyTotals is the income/expense/net of one currency
type CurrencyTotals struct {
	Currency string  `json:"currency" db:"currency"`
	Income   float64 `json:"income" db:"income"`
	Expense  float64 `json:"expense" db:"expense"`
	Net      float64 `json:"net" db:"net"`
}

// FinanceSummary aggregates a ledger per currency
type FinanceSummary struct {
	TourDateID *uuid.UUID        `json:"tour_date_id,omitempty"`
	From       *time.Time        `json:"from,omitempty"`
	To         *time.Time        `json:"to,omitempty"`
	Totals     []CurrencyTotals  `json:"totals"`
	Formatted  map[string]string `json:"formatted,omitempty"`
}
