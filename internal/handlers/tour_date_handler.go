package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tourdesk/backoffice-api/internal/database"
	"github.com/tourdesk/backoffice-api/internal/models"
	"github.com/tourdesk/backoffice-api/internal/services"
	"github.com/tourdesk/backoffice-api/pkg/validator"
)

// TourDateHandler handles tour dates, their operation record and manifest
type TourDateHandler struct {
	tourRepo       *database.TourRepository
	priceGroupRepo *database.PriceGroupRepository
	tourDateRepo   *database.TourDateRepository
	operationRepo  *database.OperationRepository
	bookingRepo    *database.BookingRepository
	reports        *services.ReportService
	audit          *services.AuditService
	logger         *logrus.Logger
}

// NewTourDateHandler creates a new TourDateHandler
func NewTourDateHandler(
	tourRepo *database.TourRepository,
	priceGroupRepo *database.PriceGroupRepository,
	tourDateRepo *database.TourDateRepository,
	operationRepo *database.OperationRepository,
	bookingRepo *database.BookingRepository,
	reports *services.ReportService,
	audit *services.AuditService,
	logger *logrus.Logger,
) *TourDateHandler {
	return &TourDateHandler{
		tourRepo:       tourRepo,
		priceGroupRepo: priceGroupRepo,
		tourDateRepo:   tourDateRepo,
		operationRepo:  operationRepo,
		bookingRepo:    bookingRepo,
		reports:        reports,
		audit:          audit,
		logger:         logger,
	}
}

// ListTourDates lists the dates of a tour
// GET /api/v1/tours/:id/dates?from=2026-06-01
func (h *TourDateHandler) ListTourDates(c *gin.Context) {
	tourID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var from *time.Time
	if raw := c.Query("from"); raw != "" {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondBindError(c, fmt.Errorf("from must be a date like 2006-01-02"))
			return
		}
		from = &d
	}

	dates, err := h.tourDateRepo.ListByTour(tourID, from)
	if err != nil {
		respondError(c, h.logger, err, "list tour dates")
		return
	}
	c.JSON(http.StatusOK, dates)
}

// CreateTourDate schedules a departure. The price group must belong to the tour.
// POST /api/v1/tours/:id/dates
func (h *TourDateHandler) CreateTourDate(c *gin.Context) {
	tourID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req models.CreateTourDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	start, _ := time.Parse("2006-01-02", req.StartDate)
	end, _ := time.Parse("2006-01-02", req.EndDate)
	if end.Before(start) {
		respondError(c, h.logger, models.NewValidationError("end_date", "must not be before start_date"), "create tour date")
		return
	}

	tour, err := h.tourRepo.GetByID(tourID)
	if err != nil {
		respondError(c, h.logger, err, "create tour date")
		return
	}
	pgID, err := uuid.Parse(req.PriceGroupID)
	if err != nil {
		respondBindError(c, err)
		return
	}
	pg, err := h.priceGroupRepo.GetByID(pgID)
	if err != nil {
		respondError(c, h.logger, err, "create tour date")
		return
	}
	if pg.TourID != tour.ID {
		respondError(c, h.logger, models.NewValidationError("price_group_id", "belongs to another tour"), "create tour date")
		return
	}
	if pg.Status != models.PriceGroupStatusActive {
		respondError(c, h.logger, models.NewValidationError("price_group_id", "price group is passive"), "create tour date")
		return
	}

	td := &models.TourDate{
		TourID:        tour.ID,
		PriceGroupID:  pg.ID,
		StartDate:     start,
		EndDate:       end,
		CapacityTotal: req.CapacityTotal,
	}
	if err := h.tourDateRepo.Create(td); err != nil {
		respondError(c, h.logger, err, "create tour date")
		return
	}
	td.TourTitle, td.PriceGroupName = tour.Title, pg.Name

	c.JSON(http.StatusCreated, td)
}

// GetTourDate returns a tour date with its tour title and price group
// GET /api/v1/tour-dates/:id
func (h *TourDateHandler) GetTourDate(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	td, err := h.tourDateRepo.GetByID(id)
	if err != nil {
		respondError(c, h.logger, err, "get tour date")
		return
	}
	pg, err := h.priceGroupRepo.GetByID(td.PriceGroupID)
	if err != nil {
		respondError(c, h.logger, err, "get tour date")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tour_date":   td,
		"price_group": pg,
	})
}

// UpdateTourDateStatus changes a tour date's status
// PATCH /api/v1/tour-dates/:id/status
func (h *TourDateHandler) UpdateTourDateStatus(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateTourDateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.tourDateRepo.UpdateStatus(id, models.TourDateStatus(req.Status)); err != nil {
		respondError(c, h.logger, err, "update tour date status")
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": req.Status})
}

// DeleteTourDate deletes a tour date without bookings
// DELETE /api/v1/tour-dates/:id
func (h *TourDateHandler) DeleteTourDate(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.tourDateRepo.Delete(id); err != nil {
		respondError(c, h.logger, err, "delete tour date")
		return
	}
	auditDelete(c, h.audit, "tour_date", id)
	c.Status(http.StatusNoContent)
}

// ============================================================================
// OPERATION
// ============================================================================

// GetOperation returns the vehicle and crew of a tour date
// GET /api/v1/tour-dates/:id/operation
func (h *TourDateHandler) GetOperation(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	op, err := h.operationRepo.GetByTourDate(id)
	if err != nil {
		respondError(c, h.logger, err, "get tour operation")
		return
	}
	c.JSON(http.StatusOK, op)
}

// UpsertOperation replaces the operation record of a tour date
// PUT /api/v1/tour-dates/:id/operation
func (h *TourDateHandler) UpsertOperation(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req models.UpsertOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if _, err := h.tourDateRepo.GetByID(id); err != nil {
		respondError(c, h.logger, err, "save tour operation")
		return
	}

	op := &models.TourOperation{
		TourDateID:   id,
		VehiclePlate: req.VehiclePlate,
		VehicleInfo:  req.VehicleInfo,
		GuideName:    req.GuideName,
		GuidePhone:   normalizePhone(req.GuidePhone),
		DriverName:   req.DriverName,
		DriverPhone:  normalizePhone(req.DriverPhone),
		MeetingPoint: req.MeetingPoint,
		Notes:        req.Notes,
		Status:       models.OperationStatus(req.Status),
	}
	if err := h.operationRepo.Upsert(op); err != nil {
		respondError(c, h.logger, err, "save tour operation")
		return
	}
	c.JSON(http.StatusOK, op)
}

// ============================================================================
// MANIFEST
// ============================================================================

// GetManifest lists the passengers of a tour date's active bookings
// GET /api/v1/tour-dates/:id/manifest
func (h *TourDateHandler) GetManifest(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if _, err := h.tourDateRepo.GetByID(id); err != nil {
		respondError(c, h.logger, err, "get manifest")
		return
	}
	entries, err := h.bookingRepo.ListManifest(id)
	if err != nil {
		respondError(c, h.logger, err, "get manifest")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tour_date_id": id,
		"count":        len(entries),
		"passengers":   entries,
	})
}

// GetManifestPDF renders the manifest for printing
// GET /api/v1/tour-dates/:id/manifest.pdf
func (h *TourDateHandler) GetManifestPDF(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	pdfBytes, filename, err := h.reports.ManifestPDF(id)
	if err != nil {
		respondError(c, h.logger, err, "render manifest")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

func normalizePhone(phone *string) *string {
	if phone == nil || *phone == "" {
		return phone
	}
	n := validator.Normalize(*phone)
	return &n
}
