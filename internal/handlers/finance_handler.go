package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/tourdesk/backoffice-api/internal/database"
	"github.com/tourdesk/backoffice-api/internal/middleware"
	"github.com/tourdesk/backoffice-api/internal/models"
	"github.com/tourdesk/backoffice-api/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// FinanceHandler handles tour date ledgers and reports
type FinanceHandler struct {
	financeRepo  *database.FinanceRepository
	tourDateRepo *database.TourDateRepository
	reports      *services.ReportService
	audit        *services.AuditService
	logger       *logrus.Logger
}

// NewFinanceHandler creates a new FinanceHandler
func NewFinanceHandler(financeRepo *database.FinanceRepository, tourDateRepo *database.TourDateRepository, reports *services.ReportService, audit *services.AuditService, logger *logrus.Logger) *FinanceHandler {
	return &FinanceHandler{
		financeRepo:  financeRepo,
		tourDateRepo: tourDateRepo,
		reports:      reports,
		audit:        audit,
		logger:       logger,
	}
}

// ListLedger returns every ledger line of a tour date
// GET /api/v1/tour-dates/:id/finance
func (h *FinanceHandler) ListLedger(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	records, err := h.financeRepo.ListByTourDate(id)
	if err != nil {
		respondError(c, h.logger, err, "list finance records")
		return
	}
	c.JSON(http.StatusOK, records)
}

// CreateRecord adds a manual income or expense line
// POST /api/v1/tour-dates/:id/finance
func (h *FinanceHandler) CreateRecord(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req models.CreateFinanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if _, err := h.tourDateRepo.GetByID(id); err != nil {
		respondError(c, h.logger, err, "create finance record")
		return
	}

	day := time.Now().UTC().Truncate(24 * time.Hour)
	if req.TransactionDate != nil {
		day, _ = time.Parse("2006-01-02", *req.TransactionDate)
	}

	rec := &models.FinanceRecord{
		TourDateID:      id,
		Type:            models.FinanceType(req.Type),
		Category:        strings.ToLower(strings.TrimSpace(req.Category)),
		Amount:          req.Amount,
		Currency:        strings.ToUpper(req.Currency),
		Description:     req.Description,
		TransactionDate: day,
		CreatedBy:       middleware.ActorID(c),
	}
	if err := h.financeRepo.Create(rec); err != nil {
		respondError(c, h.logger, err, "create finance record")
		return
	}

	auditEvent(c, h.audit, services.AuditEvent{
		Action:     services.AuditFinanceCreate,
		EntityType: "finance_record",
		EntityID:   &rec.ID,
		Details: map[string]interface{}{
			"tour_date_id": id,
			"type":         rec.Type,
			"amount":       rec.Amount,
			"currency":     rec.Currency,
		},
	})

	c.JSON(http.StatusCreated, rec)
}

// DeleteRecord removes a ledger line
// DELETE /api/v1/finance/:id
func (h *FinanceHandler) DeleteRecord(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.financeRepo.Delete(id); err != nil {
		respondError(c, h.logger, err, "delete finance record")
		return
	}
	auditDelete(c, h.audit, "finance_record", id)
	c.Status(http.StatusNoContent)
}

// GetSummary returns income, expense and net per currency of a tour date
// GET /api/v1/tour-dates/:id/finance/summary
func (h *FinanceHandler) GetSummary(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	summary, err := h.reports.TourDateSummary(id)
	if err != nil {
		respondError(c, h.logger, err, "summarize finance")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ExportLedger downloads a tour date's ledger as a spreadsheet
// GET /api/v1/tour-dates/:id/finance/export
func (h *FinanceHandler) ExportLedger(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	data, filename, err := h.reports.ExportLedger(id)
	if err != nil {
		respondError(c, h.logger, err, "export ledger")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// GetMonthlySummary totals all ledger lines of a calendar month
// GET /api/v1/finance/monthly?month=2026-06
func (h *FinanceHandler) GetMonthlySummary(c *gin.Context) {
	day := time.Now().UTC()
	if raw := c.Query("month"); raw != "" {
		parsed, err := time.Parse("2006-01", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request",
				"message": "month must look like 2006-01",
				"code":    "INVALID_QUERY",
			})
			return
		}
		day = parsed
	}

	summary, err := h.reports.MonthlySummary(day)
	if err != nil {
		respondError(c, h.logger, err, "summarize month")
		return
	}
	c.JSON(http.StatusOK, summary)
}
