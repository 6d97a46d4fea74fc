package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/roadrunner/booking-backend/pkg/jwt"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEmail = "passenger@example.com"

func setupTestJWTService() *jwt.Service {
	return jwt.NewService(
		"test-access-secret-key-123456789",
		"test-refresh-secret-key-123456789",
		time.Hour,
		24*time.Hour,
	)
}

func setupTestLogger() *logrus.Logger {
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
	roles := []string{"passenger"}

	token, err := jwtService.GenerateAccessToken(userID, testEmail, roles)
	require.NoError(t, err)

	router.GET("/protected", AuthMiddleware(jwtService, setupTestLogger()), func(c *gin.Context) {
		userCtx, exists := GetUserContext(c)
		require.True(t, exists)
		c.JSON(http.StatusOK, gin.H{
			"message": "success",
			"user_id": userCtx.UserID,
			"email":   userCtx.Email,
		})
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "success")
	assert.Contains(t, w.Body.String(), testEmail)
	assert.Contains(t, w.Body.String(), userID.String())
}

func TestAuthMiddleware_MissingAuthHeader(t *testing.T) {
	jwtService := setupTestJWTService()
	router := setupTestRouter()

	router.GET("/protected", AuthMiddleware(jwtService, setupTestLogger()), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "should not reach here"})
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Authorization header is required")
	assert.Contains(t, w.Body.String(), "MISSING_AUTH_HEADER")
}

func TestAuthMiddleware_InvalidAuthFormat(t *testing.T) {
	jwtService := setupTestJWTService()
	router := setupTestRouter()

	router.GET("/protected", AuthMiddleware(jwtService, setupTestLogger()), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "should not reach here"})
	})

	tests := []struct {
		name   string
		header string
	}{
		{"Missing Bearer", "some-token"},
		{"Wrong prefix", "Basic some-token"},
		{"Empty Bearer", "Bearer "},
		{"No token", "Bearer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/protected", nil)
			req.Header.Set("Authorization", tt.header)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), "INVALID_AUTH_FORMAT")
		})
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	jwtService := setupTestJWTService()
	router := setupTestRouter()

	router.GET("/protected", AuthMiddleware(jwtService, setupTestLogger()), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "should not reach here"})
	})

	for _, token := range []string{"invalid.token.here", "randomstringnotavalidtoken"} {
		t.Run(token, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/protected", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			// unparseable tokens are reported as expired by IsTokenExpired
			body := w.Body.String()
			hasValidError := strings.Contains(body, "INVALID_TOKEN") || strings.Contains(body, "TOKEN_EXPIRED")
			assert.True(t, hasValidError, "Expected INVALID_TOKEN or TOKEN_EXPIRED error, got: %s", body)
		})
	}
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	jwtService := jwt.NewService(
		"test-access-secret-key-123456789",
		"test-refresh-secret-key-123456789",
		-time.Minute,
		24*time.Hour,
	)
	router := setupTestRouter()

	token, err := jwtService.GenerateAccessToken(uuid.New(), testEmail, []string{"passenger"})
	require.NoError(t, err)

	router.GET("/protected", AuthMiddleware(jwtService, setupTestLogger()), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "should not reach here"})
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_EXPIRED")
}

func TestAuthMiddleware_RefreshTokenRejected(t *testing.T) {
	jwtService := setupTestJWTService()
	router := setupTestRouter()

	token, err := jwtService.GenerateRefreshToken(uuid.New(), testEmail)
	require.NoError(t, err)

	router.GET("/protected", AuthMiddleware(jwtService, setupTestLogger()), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "should not reach here"})
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TOKEN")
}

func TestGetUserContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	t.Run("Context exists", func(t *testing.T) {
		expectedCtx := UserContext{
			UserID: uuid.New(),
			Email:  testEmail,
			Roles:  []string{"passenger"},
		}

		c.Set(UserContextKey, expectedCtx)

		userCtx, exists := GetUserContext(c)
		assert.True(t, exists)
		assert.Equal(t, expectedCtx, userCtx)
	})

	t.Run("Context not found", func(t *testing.T) {
		c2, _ := gin.CreateTestContext(httptest.NewRecorder())
		userCtx, exists := GetUserContext(c2)
		assert.False(t, exists)
		assert.Equal(t, UserContext{}, userCtx)
	})

	t.Run("Context wrong type", func(t *testing.T) {
		c3, _ := gin.CreateTestContext(httptest.NewRecorder())
		c3.Set(UserContextKey, "wrong type")
		userCtx, exists := GetUserContext(c3)
		assert.False(t, exists)
		assert.Equal(t, UserContext{}, userCtx)
	})
}

func TestMustGetUserContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Context exists - no panic", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		expectedCtx := UserContext{UserID: uuid.New(), Email: testEmail}
		c.Set(UserContextKey, expectedCtx)

		assert.NotPanics(t, func() {
			userCtx := MustGetUserContext(c)
			assert.Equal(t, expectedCtx.UserID, userCtx.UserID)
		})
	})

	t.Run("Context not found - panic", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		assert.Panics(t, func() {
			MustGetUserContext(c)
		})
	})
}

func TestRequireRole(t *testing.T) {
	jwtService := setupTestJWTService()
	logger := setupTestLogger()
	userID := uuid.New()

	serve := func(router *gin.Engine, path, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("User has required role", func(t *testing.T) {
		token, err := jwtService.GenerateAccessToken(userID, testEmail, []string{"passenger", "operator"})
		require.NoError(t, err)

		router := setupTestRouter()
		router.GET("/operator-only", AuthMiddleware(jwtService, logger), RequireRole("operator"), func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "success"})
		})

		w := serve(router, "/operator-only", token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "success")
	})

	t.Run("User doesn't have required role", func(t *testing.T) {
		token, err := jwtService.GenerateAccessToken(userID, testEmail, []string{"passenger"})
		require.NoError(t, err)

		router := setupTestRouter()
		router.GET("/admin-only", AuthMiddleware(jwtService, logger), RequireRole("admin"), func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "should not reach here"})
		})

		w := serve(router, "/admin-only", token)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "INSUFFICIENT_PERMISSIONS")
	})

	t.Run("Multiple roles allowed", func(t *testing.T) {
		token, err := jwtService.GenerateAccessToken(userID, testEmail, []string{"operator"})
		require.NoError(t, err)

		router := setupTestRouter()
		router.GET("/back-office", AuthMiddleware(jwtService, logger), RequireRole("admin", "operator"), func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "success"})
		})

		w := serve(router, "/back-office", token)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("No user context", func(t *testing.T) {
		router := setupTestRouter()
		router.GET("/no-auth", RequireRole("admin"), func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "should not reach here"})
		})

		w := serve(router, "/no-auth", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "MISSING_USER_CONTEXT")
	})
}

func TestUserContext_HasRole(t *testing.T) {
	u := UserContext{Roles: []string{"passenger", "operator"}}
	assert.True(t, u.HasRole("operator"))
	assert.True(t, u.HasRole("admin", "passenger"))
	assert.False(t, u.HasRole("admin"))
	assert.False(t, u.HasRole())
}
