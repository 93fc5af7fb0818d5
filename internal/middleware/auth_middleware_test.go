package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tourdesk/backoffice-api/internal/models"
	"github.com/tourdesk/backoffice-api/pkg/jwt"
)

func setupTestJWTService() *jwt.Service {
	return jwt.NewService("test-jwt-secret-key-123456789", "")
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func TestAuthMiddleware_Success(t *testing.T) {
	jwtService := setupTestJWTService()
	router := setupTestRouter()

	userID := uuid.New()
	token, err := jwtService.GenerateAccessToken(userID, "agent@example.com", time.Hour)
	require.NoError(t, err)

	router.GET("/protected", AuthMiddleware(jwtService, testLogger()), func(c *gin.Context) {
		userCtx, exists := GetUserContext(c)
		require.True(t, exists)
		c.JSON(http.StatusOK, gin.H{"user_id": userCtx.UserID, "email": userCtx.Email})
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.String())
	assert.Contains(t, w.Body.String(), "agent@example.com")
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	jwtService := setupTestJWTService()
	userID := uuid.New()

	expired, err := jwtService.GenerateAccessToken(userID, "", -time.Minute)
	require.NoError(t, err)
	foreign, err := jwt.NewService("some-other-secret", "").GenerateAccessToken(userID, "", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"Missing header", "", "MISSING_AUTH_HEADER"},
		{"Not bearer", "Basic abc", "INVALID_AUTH_FORMAT"},
		{"Empty token", "Bearer   ", "INVALID_AUTH_FORMAT"},
		{"Garbage", "Bearer not-a-token", "INVALID_TOKEN"},
		{"Expired", "Bearer " + expired, "TOKEN_EXPIRED"},
		{"Wrong secret", "Bearer " + foreign, "INVALID_TOKEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter()
			router.GET("/protected", AuthMiddleware(jwtService, testLogger()), func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"message": "should not reach here"})
			})

			req := httptest.NewRequest("GET", "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), tt.code)
			assert.NotContains(t, w.Body.String(), "should not reach here")
		})
	}
}

func TestActorID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, ActorID(c))

	id := uuid.New()
	c.Set(UserContextKey, UserContext{UserID: id})
	require.NotNil(t, ActorID(c))
	assert.Equal(t, id, *ActorID(c))
}

type fakeProfiles map[uuid.UUID]*models.Profile

func (f fakeProfiles) GetByID(id uuid.UUID) (*models.Profile, error) {
	if p, ok := f[id]; ok {
		return p, nil
	}
	return nil, models.ErrNotFound
}

func TestRequireRole(t *testing.T) {
	admin := uuid.New()
	agent := uuid.New()
	profiles := fakeProfiles{
		admin: {ID: admin, Role: "admin"},
		agent: {ID: agent, Role: "agent"},
	}

	run := func(userID *uuid.UUID) *httptest.ResponseRecorder {
		router := setupTestRouter()
		router.DELETE("/thing", func(c *gin.Context) {
			if userID != nil {
				c.Set(UserContextKey, UserContext{UserID: *userID})
			}
			c.Next()
		}, RequireRole(profiles, testLogger(), "admin"), func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("DELETE", "/thing", nil))
		return w
	}

	t.Run("Admin allowed", func(t *testing.T) {
		assert.Equal(t, http.StatusNoContent, run(&admin).Code)
	})

	t.Run("Agent forbidden", func(t *testing.T) {
		w := run(&agent)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "INSUFFICIENT_PERMISSIONS")
	})

	t.Run("No profile", func(t *testing.T) {
		stranger := uuid.New()
		w := run(&stranger)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "PROFILE_NOT_FOUND")
	})

	t.Run("No user context", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, run(nil).Code)
	})
}
