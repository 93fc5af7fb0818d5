package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/tourdesk/backoffice-api/internal/database"
	"github.com/tourdesk/backoffice-api/internal/models"
	"github.com/tourdesk/backoffice-api/internal/services"
	"github.com/tourdesk/backoffice-api/pkg/validator"
)

// ClientHandler handles the client directory
type ClientHandler struct {
	clientRepo  *database.ClientRepository
	bookingRepo *database.BookingRepository
	audit       *services.AuditService
	logger      *logrus.Logger
}

// NewClientHandler creates a new ClientHandler
func NewClientHandler(clientRepo *database.ClientRepository, bookingRepo *database.BookingRepository, audit *services.AuditService, logger *logrus.Logger) *ClientHandler {
	return &ClientHandler{
		clientRepo:  clientRepo,
		bookingRepo: bookingRepo,
		audit:       audit,
		logger:      logger,
	}
}

// ListClients searches clients by name or phone
// GET /api/v1/clients?search=ayse&limit=50&offset=0
func (h *ClientHandler) ListClients(c *gin.Context) {
	limit, offset := pagination(c)
	search := strings.TrimSpace(c.Query("search"))

	clients, err := h.clientRepo.List(search, limit, offset)
	if err != nil {
		respondError(c, h.logger, err, "list clients")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"clients": clients,
		"limit":   limit,
		"offset":  offset,
	})
}

// GetClient returns a client with their booking history
// GET /api/v1/clients/:id
func (h *ClientHandler) GetClient(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	client, err := h.clientRepo.GetByID(id)
	if err != nil {
		respondError(c, h.logger, err, "get client")
		return
	}
	bookings, err := h.bookingRepo.List(models.BookingFilter{ClientID: &id, Limit: 200})
	if err != nil {
		respondError(c, h.logger, err, "get client")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"client":   client,
		"bookings": bookings,
	})
}

// CreateClient adds a client. The phone is stored normalized.
// POST /api/v1/clients
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req models.ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	client := &models.Client{
		FullName: strings.TrimSpace(req.FullName),
		Phone:    validator.Normalize(req.Phone),
		Email:    req.Email,
		Notes:    req.Notes,
	}
	if err := h.clientRepo.Create(client); err != nil {
		respondError(c, h.logger, err, "create client")
		return
	}
	c.JSON(http.StatusCreated, client)
}

// UpdateClient replaces a client's details
// PUT /api/v1/clients/:id
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req models.ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	client, err := h.clientRepo.GetByID(id)
	if err != nil {
		respondError(c, h.logger, err, "update client")
		return
	}
	client.FullName = strings.TrimSpace(req.FullName)
	client.Phone = validator.Normalize(req.Phone)
	client.Email = req.Email
	client.Notes = req.Notes

	if err := h.clientRepo.Update(client); err != nil {
		respondError(c, h.logger, err, "update client")
		return
	}
	c.JSON(http.StatusOK, client)
}

// DeleteClient deletes a client without bookings
// DELETE /api/v1/clients/:id
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.clientRepo.Delete(id); err != nil {
		respondError(c, h.logger, err, "delete client")
		return
	}
	auditDelete(c, h.audit, "client", id)
	c.Status(http.StatusNoContent)
}
