package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tourdesk/backoffice-api/internal/middleware"
	"github.com/tourdesk/backoffice-api/internal/services"
	"github.com/tourdesk/backoffice-api/internal/utils"
)

// auditDelete records a successful hard delete made by the caller
func auditDelete(c *gin.Context, audit *services.AuditService, entityType string, id uuid.UUID) {
	if audit == nil {
		return
	}
	audit.LogDelete(middleware.ActorID(c), entityType, id, utils.GetRealIP(c), utils.GetUserAgent(c))
}

// auditEvent fills in the actor and request origin of an event and writes it
func auditEvent(c *gin.Context, audit *services.AuditService, event services.AuditEvent) {
	if audit == nil {
		return
	}
	event.ActorID = middleware.ActorID(c)
	event.IPAddress = utils.GetRealIP(c)
	event.UserAgent = utils.GetUserAgent(c)
	audit.Log(event)
}
