package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tourdesk/backoffice-api/internal/models"
)

var notFoundErrors = []error{
	models.ErrNotFound,
	models.ErrTourNotFound,
	models.ErrTourDateNotFound,
	models.ErrPriceGroupNotFound,
	models.ErrClientNotFound,
	models.ErrBookingNotFound,
}

var conflictCodes = []struct {
	err  error
	code string
}{
	{models.ErrReferenced, "REFERENCED"},
	{models.ErrDuplicate, "DUPLICATE"},
	{models.ErrInsufficientCapacity, "INSUFFICIENT_CAPACITY"},
	{models.ErrBookingAlreadyCancelled, "BOOKING_ALREADY_CANCELLED"},
	{models.ErrTourDateClosed, "TOUR_DATE_CLOSED"},
}

// respondError maps domain errors onto HTTP responses. Anything it does
// not recognize is logged and hidden behind a generic message.
func respondError(c *gin.Context, logger *logrus.Logger, err error, action string) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation failed",
			"message": verr.Error(),
			"field":   verr.Field,
			"code":    "VALIDATION_ERROR",
		})
		return
	}

	for _, nf := range notFoundErrors {
		if errors.Is(err, nf) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Not found",
				"message": nf.Error(),
				"code":    "NOT_FOUND",
			})
			return
		}
	}

	for _, cc := range conflictCodes {
		if errors.Is(err, cc.err) {
			c.JSON(http.StatusConflict, gin.H{
				"error":   "Conflict",
				"message": cc.err.Error(),
				"code":    cc.code,
			})
			return
		}
	}

	logger.WithFields(logrus.Fields{
		"action": action,
		"path":   c.FullPath(),
		"error":  err.Error(),
	}).Error("Request failed")

	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "Operation failed",
		"message": "Failed to " + action,
		"code":    "INTERNAL_ERROR",
	})
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request",
		"message": err.Error(),
		"code":    "INVALID_REQUEST",
	})
}

// uuidParam reads a uuid path parameter, answering 400 when it is malformed
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"message": name + " must be a valid uuid",
			"code":    "INVALID_ID",
		})
		return uuid.Nil, false
	}
	return id, true
}

// optionalUUIDQuery reads an optional uuid query parameter
func optionalUUIDQuery(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"message": name + " must be a valid uuid",
			"code":    "INVALID_QUERY",
		})
		return nil, false
	}
	return &id, true
}

// pagination reads limit and offset with sane bounds
func pagination(c *gin.Context) (int, int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 || limit > 200 {
		limit = 50
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}
