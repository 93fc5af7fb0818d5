package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/tourdesk/backoffice-api/internal/database"
	"github.com/tourdesk/backoffice-api/internal/models"
	"github.com/tourdesk/backoffice-api/internal/pricing"
	"github.com/tourdesk/backoffice-api/internal/services"
)

// TourHandler handles the tour catalog and its price groups
type TourHandler struct {
	tourRepo       *database.TourRepository
	priceGroupRepo *database.PriceGroupRepository
	audit          *services.AuditService
	logger         *logrus.Logger
}

// NewTourHandler creates a new TourHandler
func NewTourHandler(tourRepo *database.TourRepository, priceGroupRepo *database.PriceGroupRepository, audit *services.AuditService, logger *logrus.Logger) *TourHandler {
	return &TourHandler{
		tourRepo:       tourRepo,
		priceGroupRepo: priceGroupRepo,
		audit:          audit,
		logger:         logger,
	}
}

// checkAgeBands rejects overlapping passenger age bands
func checkAgeBands(t *models.Tour) error {
	if t.ChildMinAge <= t.BabyMaxAge {
		return models.NewValidationError("child_min_age", "must be greater than baby_max_age")
	}
	if t.ChildMaxAge < t.ChildMinAge {
		return models.NewValidationError("child_max_age", "must not be less than child_min_age")
	}
	return nil
}

// ListTours lists tours, optionally by status
// GET /api/v1/tours?status=active
func (h *TourHandler) ListTours(c *gin.Context) {
	var status *models.TourStatus
	if s := c.Query("status"); s != "" {
		ts := models.TourStatus(s)
		status = &ts
	}

	tours, err := h.tourRepo.List(status)
	if err != nil {
		respondError(c, h.logger, err, "list tours")
		return
	}
	c.JSON(http.StatusOK, tours)
}

// GetTour returns a tour with its price groups
// GET /api/v1/tours/:id
func (h *TourHandler) GetTour(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	tour, err := h.tourRepo.GetByID(id)
	if err != nil {
		respondError(c, h.logger, err, "get tour")
		return
	}
	groups, err := h.priceGroupRepo.ListByTour(id)
	if err != nil {
		respondError(c, h.logger, err, "get tour")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tour":         tour,
		"price_groups": groups,
	})
}

// CreateTour creates a draft tour
// POST /api/v1/tours
func (h *TourHandler) CreateTour(c *gin.Context) {
	var req models.CreateTourRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	tour := &models.Tour{
		Title:        req.Title,
		Description:  req.Description,
		TourType:     models.TourType(req.TourType),
		PricingModel: pricing.Model(req.PricingModel),
		Status:       models.TourStatusDraft,
		BabyMaxAge:   req.BabyMaxAge,
		ChildMinAge:  req.ChildMinAge,
		ChildMaxAge:  req.ChildMaxAge,
	}
	if err := checkAgeBands(tour); err != nil {
		respondError(c, h.logger, err, "create tour")
		return
	}

	if err := h.tourRepo.Create(tour); err != nil {
		respondError(c, h.logger, err, "create tour")
		return
	}
	c.JSON(http.StatusCreated, tour)
}

// UpdateTour updates tour settings
// PUT /api/v1/tours/:id
func (h *TourHandler) UpdateTour(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateTourRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	tour, err := h.tourRepo.GetByID(id)
	if err != nil {
		respondError(c, h.logger, err, "update tour")
		return
	}

	if req.Title != nil {
		tour.Title = *req.Title
	}
	if req.Description != nil {
		tour.Description = req.Description
	}
	if req.TourType != nil {
		tour.TourType = models.TourType(*req.TourType)
	}
	if req.PricingModel != nil {
		tour.PricingModel = pricing.Model(*req.PricingModel)
	}
	if req.BabyMaxAge != nil {
		tour.BabyMaxAge = *req.BabyMaxAge
	}
	if req.ChildMinAge != nil {
		tour.ChildMinAge = *req.ChildMinAge
	}
	if req.ChildMaxAge != nil {
		tour.ChildMaxAge = *req.ChildMaxAge
	}
	if err := checkAgeBands(tour); err != nil {
		respondError(c, h.logger, err, "update tour")
		return
	}

	if err := h.tourRepo.Update(tour); err != nil {
		respondError(c, h.logger, err, "update tour")
		return
	}
	c.JSON(http.StatusOK, tour)
}

// UpdateTourStatus moves a tour between draft, active and passive
// PATCH /api/v1/tours/:id/status
func (h *TourHandler) UpdateTourStatus(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateTourStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.tourRepo.UpdateStatus(id, models.TourStatus(req.Status)); err != nil {
		respondError(c, h.logger, err, "update tour status")
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": req.Status})
}

// DeleteTour deletes a tour without dates
// DELETE /api/v1/tours/:id
func (h *TourHandler) DeleteTour(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.tourRepo.Delete(id); err != nil {
		respondError(c, h.logger, err, "delete tour")
		return
	}
	auditDelete(c, h.audit, "tour", id)
	c.Status(http.StatusNoContent)
}

// ============================================================================
// PRICE GROUPS
// ============================================================================

// ListPriceGroups lists the price groups of a tour
// GET /api/v1/tours/:id/price-groups
func (h *TourHandler) ListPriceGroups(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	groups, err := h.priceGroupRepo.ListByTour(id)
	if err != nil {
		respondError(c, h.logger, err, "list price groups")
		return
	}
	c.JSON(http.StatusOK, groups)
}

// CreatePriceGroup adds a price group shaped by the tour's pricing model
// POST /api/v1/tours/:id/price-groups
func (h *TourHandler) CreatePriceGroup(c *gin.Context) {
	tourID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req models.PriceGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	tour, err := h.tourRepo.GetByID(tourID)
	if err != nil {
		respondError(c, h.logger, err, "create price group")
		return
	}
	if err := req.Validate(tour.PricingModel); err != nil {
		respondError(c, h.logger, err, "create price group")
		return
	}

	pg := &models.PriceGroup{TourID: tour.ID}
	req.Apply(pg)
	if err := h.priceGroupRepo.Create(pg); err != nil {
		respondError(c, h.logger, err, "create price group")
		return
	}
	c.JSON(http.StatusCreated, pg)
}

// UpdatePriceGroup replaces a price group's prices
// PUT /api/v1/price-groups/:id
func (h *TourHandler) UpdatePriceGroup(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req models.PriceGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	pg, err := h.priceGroupRepo.GetByID(id)
	if err != nil {
		respondError(c, h.logger, err, "update price group")
		return
	}
	tour, err := h.tourRepo.GetByID(pg.TourID)
	if err != nil {
		respondError(c, h.logger, err, "update price group")
		return
	}
	if err := req.Validate(tour.PricingModel); err != nil {
		respondError(c, h.logger, err, "update price group")
		return
	}

	req.Apply(pg)
	if err := h.priceGroupRepo.Update(pg); err != nil {
		respondError(c, h.logger, err, "update price group")
		return
	}
	c.JSON(http.StatusOK, pg)
}

// DeletePriceGroup deletes a price group no tour date uses
// DELETE /api/v1/price-groups/:id
func (h *TourHandler) DeletePriceGroup(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.priceGroupRepo.Delete(id); err != nil {
		respondError(c, h.logger, err, "delete price group")
		return
	}
	auditDelete(c, h.audit, "price_group", id)
	c.Status(http.StatusNoContent)
}
