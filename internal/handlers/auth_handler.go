package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/roadrunner/booking-backend/internal/models"
	"github.com/roadrunner/booking-backend/internal/services"
	"github.com/roadrunner/booking-backend/internal/utils"
	"github.com/sirupsen/logrus"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService *services.AuthService
	logger      *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Register creates a passenger account
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Login exchanges email and password for tokens
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"ip":     utils.GetRealIP(c),
			"device": utils.ParseUserAgent(utils.GetUserAgent(c)).DeviceType,
		}).Info("login rejected")
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// RefreshToken issues a new access token from a refresh token
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req models.RefreshTokenRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetProfile returns the authenticated user's account
// GET /api/v1/user/profile
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userCtx, ok := currentUser(c)
	if !ok {
		return
	}

	user, err := h.authService.Profile(c.Request.Context(), userCtx.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
