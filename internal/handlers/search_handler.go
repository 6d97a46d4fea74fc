package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/roadrunner/booking-backend/internal/assignment"
	"github.com/roadrunner/booking-backend/internal/models"
	"github.com/roadrunner/booking-backend/internal/services"
	"github.com/sirupsen/logrus"
)

// SearchHandler handles trip search and seat availability
type SearchHandler struct {
	fleet    *services.FleetService
	bookings *services.BookingService
	logger   *logrus.Logger
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(fleet *services.FleetService, bookings *services.BookingService, logger *logrus.Logger) *SearchHandler {
	return &SearchHandler{
		fleet:    fleet,
		bookings: bookings,
		logger:   logger,
	}
}

// SearchTrips lists bookable schedules for a route and date
// GET /api/v1/search?origin=&destination=&travel_date=YYYY-MM-DD
func (h *SearchHandler) SearchTrips(c *gin.Context) {
	origin := c.Query("origin")
	destination := c.Query("destination")
	travelDate := c.Query("travel_date")

	results, err := h.fleet.SearchSchedules(c.Request.Context(), origin, destination, travelDate)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"origin":        origin,
		"destination":   destination,
		"travel_date":   travelDate,
		"results_count": len(results),
	}).Debug("search completed")

	c.JSON(http.StatusOK, gin.H{
		"travel_date": travelDate,
		"count":       len(results),
		"results":     results,
	})
}

// GetSeatMap returns the seats of a schedule for a travel date, marked booked or free
// GET /api/v1/schedules/:id/seats?travel_date=YYYY-MM-DD
func (h *SearchHandler) GetSeatMap(c *gin.Context) {
	scheduleID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	seatMap, err := h.bookings.GetSeatMap(c.Request.Context(), scheduleID, c.Query("travel_date"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, seatMap)
}

// SelectionRequest is a passenger list with the seat each one picked
type SelectionRequest struct {
	TravelDate string `json:"travel_date" binding:"required"`
	Passengers []struct {
		Name   string        `json:"name"`
		Gender models.Gender `json:"gender"`
		Phone  string        `json:"phone"`
		SeatID string        `json:"seat_id"`
	} `json:"passengers" binding:"required"`
}

// PreviewSelection replays a seat selection against the live seat map and
// reports what would block submission
// POST /api/v1/schedules/:id/selection
func (h *SearchHandler) PreviewSelection(c *gin.Context) {
	scheduleID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req SelectionRequest
	if !bindJSON(c, &req) {
		return
	}

	seatMap, err := h.bookings.GetSeatMap(c.Request.Context(), scheduleID, req.TravelDate)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	session := assignment.NewSession(seatMap)
	var problems []FieldError
	for i, p := range req.Passengers {
		localID := session.AddPassenger(p.Name, p.Gender)
		if p.Phone != "" {
			if err := session.UpdatePassenger(localID, p.Name, p.Gender, p.Phone); err != nil {
				problems = append(problems, FieldError{
					Field:   fmt.Sprintf("passengers[%d].phone", i),
					Message: err.Error(),
				})
			}
		}
		if p.SeatID == "" {
			continue
		}
		if err := session.SelectSeat(localID, p.SeatID); err != nil {
			problems = append(problems, FieldError{
				Field:   fmt.Sprintf("passengers[%d].seat_id", i),
				Message: err.Error(),
			})
		}
	}

	hints := make(map[string]assignment.Hint, len(session.Seats))
	for _, seat := range session.Seats {
		hints[seat.ID] = session.SeatHint(seat.ID)
	}

	readiness := session.Readiness()
	body := gin.H{
		"session":         session,
		"readiness":       readiness,
		"seat_hints":      hints,
		"unassigned_hint": session.UnassignedHint(),
		"problems":        problems,
	}
	if readiness == assignment.ReasonReady && len(problems) == 0 {
		submission, err := session.Submission()
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		body["passengers"] = submission
	}

	c.JSON(http.StatusOK, body)
}
