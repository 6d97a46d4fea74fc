package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/roadrunner/booking-backend/internal/models"
	"github.com/roadrunner/booking-backend/internal/services"
	"github.com/sirupsen/logrus"
)

// ParcelHandler handles parcel delivery requests
type ParcelHandler struct {
	parcels *services.ParcelService
	logger  *logrus.Logger
}

// NewParcelHandler creates a new parcel handler
func NewParcelHandler(parcels *services.ParcelService, logger *logrus.Logger) *ParcelHandler {
	return &ParcelHandler{
		parcels: parcels,
		logger:  logger,
	}
}

// QuoteParcel returns the delivery cost for a route and weight
// GET /api/v1/parcels/quote?route_id=&weight_kg=
func (h *ParcelHandler) QuoteParcel(c *gin.Context) {
	weight, err := strconv.ParseFloat(c.Query("weight_kg"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"code":    "INVALID_REQUEST",
			"message": "weight_kg must be a number",
		})
		return
	}

	quote, err := h.parcels.Quote(c.Request.Context(), c.Query("route_id"), weight)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, quote)
}

// CreateParcel submits a parcel for delivery
// POST /api/v1/parcels
func (h *ParcelHandler) CreateParcel(c *gin.Context) {
	userCtx, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.CreateParcelRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.parcels.SubmitParcel(c.Request.Context(), userCtx.UserID.String(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// ListMyParcels returns the user's parcels, newest first
// GET /api/v1/parcels
func (h *ParcelHandler) ListMyParcels(c *gin.Context) {
	userCtx, ok := currentUser(c)
	if !ok {
		return
	}

	parcels, err := h.parcels.ListMyParcels(c.Request.Context(), userCtx.UserID.String())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"parcels": parcels,
		"count":   len(parcels),
	})
}

// CancelParcel cancels one of the user's parcels
// POST /api/v1/parcels/:id/cancel
func (h *ParcelHandler) CancelParcel(c *gin.Context) {
	userCtx, ok := currentUser(c)
	if !ok {
		return
	}
	parcelID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.parcels.CancelParcel(c.Request.Context(), userCtx.UserID.String(), parcelID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Parcel cancelled"})
}

// TrackParcel returns the public status of a parcel
// GET /api/v1/parcels/track/:tracking_number
func (h *ParcelHandler) TrackParcel(c *gin.Context) {
	tracking, err := h.parcels.Track(c.Request.Context(), c.Param("tracking_number"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, tracking)
}
