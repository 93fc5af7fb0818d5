package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tourdesk/backoffice-api/internal/models"
)

// ProfileKey holds the caller's profile once RequireRole has loaded it
const ProfileKey = "profile"

// ProfileGetter loads staff profiles
type ProfileGetter interface {
	GetByID(id uuid.UUID) (*models.Profile, error)
}

// RequireRole lets the request through only when the caller's profile has
// one of the given roles. Must be used after AuthMiddleware.
func RequireRole(profiles ProfileGetter, logger *logrus.Logger, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userCtx, exists := GetUserContext(c)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "User context not found",
				"code":    "MISSING_USER_CONTEXT",
			})
			return
		}

		profile, err := profiles.GetByID(userCtx.UserID)
		if err != nil {
			if !errors.Is(err, models.ErrNotFound) {
				logger.WithError(err).WithField("user_id", userCtx.UserID).Error("Failed to load profile for role check")
			}
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "Staff profile not found",
				"code":    "PROFILE_NOT_FOUND",
			})
			return
		}

		for _, role := range roles {
			if profile.Role == role {
				c.Set(ProfileKey, profile)
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":   "forbidden",
			"message": "You don't have permission to access this resource",
			"code":    "INSUFFICIENT_PERMISSIONS",
		})
	}
}
