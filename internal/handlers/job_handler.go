package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tourdesk/backoffice-api/internal/services"
)

// JobHandler exposes the background jobs to administrators
type JobHandler struct {
	cron *services.CronService
}

// NewJobHandler creates a new JobHandler
func NewJobHandler(cron *services.CronService) *JobHandler {
	return &JobHandler{cron: cron}
}

// GetStatus reports the scheduler state
// GET /api/v1/admin/jobs
func (h *JobHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.cron.GetJobStatus())
}

// CompleteTourDates runs the tour date completion job immediately
// POST /api/v1/admin/jobs/complete-tour-dates
func (h *JobHandler) CompleteTourDates(c *gin.Context) {
	h.cron.RunCompleteTourDatesNow()
	c.JSON(http.StatusAccepted, gin.H{"message": "Tour date completion job ran"})
}
