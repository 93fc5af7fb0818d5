package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/tourdesk/backoffice-api/internal/middleware"
	"github.com/tourdesk/backoffice-api/internal/models"
	"github.com/tourdesk/backoffice-api/internal/services"
	"github.com/tourdesk/backoffice-api/internal/utils"
)

// BookingHandler handles reservations and the booking wizard
type BookingHandler struct {
	bookingService *services.BookingService
	audit          *services.AuditService
	logger         *logrus.Logger
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(bookingService *services.BookingService, audit *services.AuditService, logger *logrus.Logger) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		audit:          audit,
		logger:         logger,
	}
}

// ListBookings lists bookings by tour date, client or status
// GET /api/v1/bookings?tour_date_id=...&client_id=...&status=pending
func (h *BookingHandler) ListBookings(c *gin.Context) {
	tourDateID, ok := optionalUUIDQuery(c, "tour_date_id")
	if !ok {
		return
	}
	clientID, ok := optionalUUIDQuery(c, "client_id")
	if !ok {
		return
	}

	filter := models.BookingFilter{TourDateID: tourDateID, ClientID: clientID}
	if s := c.Query("status"); s != "" {
		status := models.BookingStatus(s)
		switch status {
		case models.BookingStatusConfirmed, models.BookingStatusPending, models.BookingStatusCancelled:
			filter.Status = &status
		default:
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request",
				"message": "status must be one of confirmed, pending, cancelled",
				"code":    "INVALID_QUERY",
			})
			return
		}
	}
	filter.Limit, filter.Offset = pagination(c)

	bookings, err := h.bookingService.List(filter)
	if err != nil {
		respondError(c, h.logger, err, "list bookings")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bookings": bookings,
		"limit":    filter.Limit,
		"offset":   filter.Offset,
	})
}

// GetBooking returns a booking with its passengers
// GET /api/v1/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	booking, err := h.bookingService.Get(id)
	if err != nil {
		respondError(c, h.logger, err, "get booking")
		return
	}
	c.JSON(http.StatusOK, booking)
}

// CreateBooking stores a booking with its passengers
// POST /api/v1/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	actorID := middleware.ActorID(c)
	booking, err := h.bookingService.Create(actorID, &req)
	if err != nil {
		respondError(c, h.logger, err, "create booking")
		return
	}

	if h.audit != nil {
		h.audit.LogBookingCreated(actorID, booking, utils.GetRealIP(c), utils.GetUserAgent(c))
	}

	h.logger.WithFields(logrus.Fields{
		"booking_id":   booking.ID,
		"tour_date_id": booking.TourDateID,
		"total":        booking.TotalAmount,
		"status":       booking.BookingStatus,
	}).Info("Booking created")

	c.JSON(http.StatusCreated, booking)
}

// UpdateBooking applies a partial update to a booking
// PATCH /api/v1/bookings/:id
func (h *BookingHandler) UpdateBooking(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	booking, err := h.bookingService.Update(middleware.ActorID(c), id, &req)
	if err != nil {
		respondError(c, h.logger, err, "update booking")
		return
	}

	details := map[string]interface{}{
		"booking_status": booking.BookingStatus,
		"amount_paid":    booking.AmountPaid,
		"total_amount":   booking.TotalAmount,
	}
	if req.Passengers != nil {
		details["passengers_replaced"] = len(*req.Passengers)
	}
	auditEvent(c, h.audit, services.AuditEvent{
		Action:     services.AuditBookingUpdate,
		EntityType: "booking",
		EntityID:   &booking.ID,
		Details:    details,
	})

	c.JSON(http.StatusOK, booking)
}

// CancelBooking cancels a booking and releases its seats
// POST /api/v1/bookings/:id/cancel
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req models.CancelBookingRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
	}

	actorID := middleware.ActorID(c)
	if err := h.bookingService.Cancel(actorID, id, &req); err != nil {
		respondError(c, h.logger, err, "cancel booking")
		return
	}

	if h.audit != nil {
		h.audit.LogBookingCancelled(actorID, id, &req, utils.GetRealIP(c), utils.GetUserAgent(c))
	}

	c.JSON(http.StatusOK, gin.H{
		"id":             id,
		"booking_status": models.BookingStatusCancelled,
		"refund_amount":  req.RefundAmount,
	})
}

// ============================================================================
// WIZARD
// ============================================================================

// QuoteRooms prices a room configuration for the wizard's live preview
// POST /api/v1/bookings/quote
func (h *BookingHandler) QuoteRooms(c *gin.Context) {
	var req models.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	quote, err := h.bookingService.Quote(&req)
	if err != nil {
		respondError(c, h.logger, err, "quote rooms")
		return
	}
	c.JSON(http.StatusOK, quote)
}

// PlanPassengers turns selected rooms into a passenger roster
// POST /api/v1/bookings/wizard/passengers
func (h *BookingHandler) PlanPassengers(c *gin.Context) {
	var req models.WizardPassengersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	wizard, err := h.bookingService.PlanPassengers(&req)
	if err != nil {
		respondError(c, h.logger, err, "plan passengers")
		return
	}
	c.JSON(http.StatusOK, wizard)
}
