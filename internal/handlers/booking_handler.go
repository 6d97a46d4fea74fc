package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/roadrunner/booking-backend/internal/models"
	"github.com/roadrunner/booking-backend/internal/services"
	"github.com/roadrunner/booking-backend/internal/utils"
	"github.com/sirupsen/logrus"
)

// BookingHandler handles passenger booking requests
type BookingHandler struct {
	bookings *services.BookingService
	logger   *logrus.Logger
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookings *services.BookingService, logger *logrus.Logger) *BookingHandler {
	return &BookingHandler{
		bookings: bookings,
		logger:   logger,
	}
}

// CreateBooking books one seat per passenger in a single submission
// POST /api/v1/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userCtx, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.CreateBookingRequest
	if !bindJSON(c, &req) {
		return
	}

	source := utils.BookingSource(utils.GetUserAgent(c))
	result, err := h.bookings.SubmitBooking(c.Request.Context(), userCtx.UserID.String(), &req, source)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// ListMyBookings returns the user's bookings grouped into trips
// GET /api/v1/bookings
func (h *BookingHandler) ListMyBookings(c *gin.Context) {
	userCtx, ok := currentUser(c)
	if !ok {
		return
	}

	trips, err := h.bookings.ListMyBookings(c.Request.Context(), userCtx.UserID.String())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"trips": trips})
}

// GetBooking returns one of the user's bookings
// GET /api/v1/bookings/:reference
func (h *BookingHandler) GetBooking(c *gin.Context) {
	userCtx, ok := currentUser(c)
	if !ok {
		return
	}

	booking, err := h.bookings.GetBooking(c.Request.Context(), userCtx.UserID.String(), c.Param("reference"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// CancelBooking cancels one booking
// POST /api/v1/bookings/:reference/cancel
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	userCtx, ok := currentUser(c)
	if !ok {
		return
	}

	reference := c.Param("reference")
	if err := h.bookings.CancelBooking(c.Request.Context(), userCtx.UserID.String(), reference); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":           "Booking cancelled",
		"booking_reference": reference,
	})
}

// CancelTrip cancels every booking of a trip, reporting failures per booking
// POST /api/v1/bookings/cancel-trip
func (h *BookingHandler) CancelTrip(c *gin.Context) {
	userCtx, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.CancelTripRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.bookings.CancelTrip(c.Request.Context(), userCtx.UserID.String(), req.BookingReferences)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
