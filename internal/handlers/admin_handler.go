package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/roadrunner/booking-backend/internal/models"
	"github.com/roadrunner/booking-backend/internal/services"
	"github.com/sirupsen/logrus"
)

// AdminHandler handles back-office status changes on bookings and parcels
type AdminHandler struct {
	bookings *services.BookingService
	parcels  *services.ParcelService
	logger   *logrus.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(bookings *services.BookingService, parcels *services.ParcelService, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{
		bookings: bookings,
		parcels:  parcels,
		logger:   logger,
	}
}

// UpdateBookingStatus moves a booking along its lifecycle
// PUT /api/v1/operator/bookings/:reference/status
func (h *AdminHandler) UpdateBookingStatus(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req models.UpdateBookingStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	booking, err := h.bookings.UpdateBookingStatus(c.Request.Context(), actor, c.Param("reference"), req.Status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"actor_id":          actor.UserID,
		"booking_reference": booking.BookingReference,
		"status":            req.Status,
	}).Info("booking status changed")

	c.JSON(http.StatusOK, booking)
}

// MarkBookingPaid records payment for a pay-later booking
// POST /api/v1/operator/bookings/:reference/mark-paid
func (h *AdminHandler) MarkBookingPaid(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	booking, err := h.bookings.MarkPaid(c.Request.Context(), actor, c.Param("reference"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// UpdateParcelStatus moves a parcel along its lifecycle
// PUT /api/v1/admin/parcels/:id/status
func (h *AdminHandler) UpdateParcelStatus(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	parcelID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateParcelStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	parcel, err := h.parcels.UpdateParcelStatus(c.Request.Context(), actor, parcelID, req.Status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, parcel)
}
