package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tourdesk/backoffice-api/internal/models"
	"github.com/tourdesk/backoffice-api/internal/utils"
)

// Audit actions
const (
	AuditBookingCreate = "booking_create"
	AuditBookingUpdate = "booking_update"
	AuditBookingCancel = "booking_cancel"
	AuditDelete        = "delete"
	AuditFinanceCreate = "finance_create"
)

// AuditStore persists audit entries
type AuditStore interface {
	CreateAuditLog(entry *models.AuditLog) error
}

// AuditService writes the back-office audit trail. Failures are logged and
// never returned to the request that triggered them.
type AuditService struct {
	store   AuditStore
	enabled bool
	logger  *logrus.Logger
}

// NewAuditService creates a new audit service
func NewAuditService(store AuditStore, enabled bool, logger *logrus.Logger) *AuditService {
	return &AuditService{
		store:   store,
		enabled: enabled,
		logger:  logger,
	}
}

// AuditEvent represents an action to be logged
type AuditEvent struct {
	ActorID    *uuid.UUID             // nil for system actions
	Action     string                 // e.g. "booking_cancel", "delete"
	EntityType string                 // e.g. "booking", "client", "tour"
	EntityID   *uuid.UUID             // ID of the affected entity
	IPAddress  string                 // Client IP address
	UserAgent  string                 // Client user agent
	Details    map[string]interface{} // Additional details as JSONB
}

// LogBookingCreated records a new booking and what was paid
func (s *AuditService) LogBookingCreated(actorID *uuid.UUID, b *models.Booking, ipAddress, userAgent string) {
	s.Log(AuditEvent{
		ActorID:    actorID,
		Action:     AuditBookingCreate,
		EntityType: "booking",
		EntityID:   &b.ID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details: map[string]interface{}{
			"tour_date_id": b.TourDateID,
			"client_id":    b.ClientID,
			"pax":          b.Pax().Total(),
			"total_amount": b.TotalAmount,
			"amount_paid":  b.AmountPaid,
			"currency":     b.Currency,
		},
	})
}

// LogBookingCancelled records a cancellation and its refund, if any
func (s *AuditService) LogBookingCancelled(actorID *uuid.UUID, bookingID uuid.UUID, req *models.CancelBookingRequest, ipAddress, userAgent string) {
	details := map[string]interface{}{}
	if req != nil {
		if req.RefundAmount > 0 {
			details["refund_amount"] = req.RefundAmount
		}
		if req.Reason != nil {
			details["reason"] = *req.Reason
		}
	}

	s.Log(AuditEvent{
		ActorID:    actorID,
		Action:     AuditBookingCancel,
		EntityType: "booking",
		EntityID:   &bookingID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details:    details,
	})
}

// LogDelete records a hard delete of a catalog or client record
func (s *AuditService) LogDelete(actorID *uuid.UUID, entityType string, entityID uuid.UUID, ipAddress, userAgent string) {
	s.Log(AuditEvent{
		ActorID:    actorID,
		Action:     AuditDelete,
		EntityType: entityType,
		EntityID:   &entityID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
	})
}

// Log writes an event. The parsed device goes both into its own column
// and into details.
func (s *AuditService) Log(event AuditEvent) {
	if !s.enabled {
		return
	}
	if err := s.logEvent(event); err != nil {
		s.logger.WithFields(logrus.Fields{
			"action":      event.Action,
			"entity_type": event.EntityType,
			"error":       err.Error(),
		}).Warn("Failed to write audit log")
	}
}

func (s *AuditService) logEvent(event AuditEvent) error {
	details := event.Details
	if details == nil {
		details = make(map[string]interface{})
	}

	entry := &models.AuditLog{
		ActorID:    event.ActorID,
		Action:     event.Action,
		EntityType: event.EntityType,
		EntityID:   event.EntityID,
		Details:    models.JSONMap(details),
	}
	if event.IPAddress != "" {
		entry.IPAddress = &event.IPAddress
	}
	if event.UserAgent != "" {
		deviceInfo := utils.ParseUserAgent(event.UserAgent)
		device := deviceInfo.Summary()
		entry.UserAgent = &event.UserAgent
		entry.Device = &device
		details["device_info"] = deviceInfo
	}

	if err := s.store.CreateAuditLog(entry); err != nil {
		return fmt.Errorf("failed to log audit event: %w", err)
	}
	return nil
}
