package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/roadrunner/booking-backend/internal/models"
	"github.com/roadrunner/booking-backend/internal/services"
	"github.com/sirupsen/logrus"
)

// FleetHandler handles route, bus and schedule management for operators and admins
type FleetHandler struct {
	fleet  *services.FleetService
	logger *logrus.Logger
}

// NewFleetHandler creates a new fleet handler
func NewFleetHandler(fleet *services.FleetService, logger *logrus.Logger) *FleetHandler {
	return &FleetHandler{
		fleet:  fleet,
		logger: logger,
	}
}

// CreateRoute registers a route
// POST /api/v1/admin/routes
func (h *FleetHandler) CreateRoute(c *gin.Context) {
	var req models.CreateRouteRequest
	if !bindJSON(c, &req) {
		return
	}

	route, err := h.fleet.CreateRoute(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, route)
}

// ListRoutes returns every route
// GET /api/v1/routes
func (h *FleetHandler) ListRoutes(c *gin.Context) {
	routes, err := h.fleet.ListRoutes(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"routes": routes,
		"count":  len(routes),
	})
}

// CreateBus registers a bus and generates its seats
// POST /api/v1/operator/buses
func (h *FleetHandler) CreateBus(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req models.CreateBusRequest
	if !bindJSON(c, &req) {
		return
	}

	bus, err := h.fleet.CreateBus(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, bus)
}

// ListBuses returns the buses the caller manages
// GET /api/v1/operator/buses
func (h *FleetHandler) ListBuses(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	buses, err := h.fleet.ListBuses(c.Request.Context(), actor)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"buses": buses,
		"count": len(buses),
	})
}

// UpdateBusStatus activates or deactivates a bus
// PUT /api/v1/operator/buses/:id/status
func (h *FleetHandler) UpdateBusStatus(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	busID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateBusStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.fleet.SetBusStatus(c.Request.Context(), actor, busID, models.BusStatus(req.Status)); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Bus status updated",
		"status":  req.Status,
	})
}

// CreateSchedule adds a recurring departure for a bus on a route
// POST /api/v1/operator/schedules
func (h *FleetHandler) CreateSchedule(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req models.CreateScheduleRequest
	if !bindJSON(c, &req) {
		return
	}

	schedule, err := h.fleet.CreateSchedule(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, schedule)
}

// GET /api/v1/schedules
func (h *FleetHandler) ListSchedules(c *gin.Context) {
	schedules, err := h.fleet.ListSchedules(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"schedules": schedules,
		"count":     len(schedules),
	})
}
