package models

import "time"

// RouteStatus represents whether a route accepts new schedules
type RouteStatus string

const (
	RouteStatusActive   RouteStatus = "active"
	RouteStatusInactive RouteStatus = "inactive"
)

// Route is an origin/destination pair with its distance
type Route struct {
	ID                string      `json:"id" db:"id"`
	Name              string      `json:"name" db:"name"`
	Origin            string      `json:"origin" db:"origin"`
	Destination       string      `json:"destination" db:"destination"`
	DistanceKm        float64     `json:"distance_km" db:"distance_km"`
	EstimatedDuration string      `json:"estimated_duration" db:"estimated_duration"`
	Status            RouteStatus `json:"status" db:"status"`
	CreatedAt         time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at" db:"updated_at"`
}

// CreateRouteRequest represents the request to add a route
type CreateRouteRequest struct {
	Name              string  `json:"name" binding:"required"`
	Origin            string  `json:"origin" binding:"required"`
	Destination       string  `json:"destination" binding:"required"`
	DistanceKm        float64 `json:"distance_km" binding:"required,gt=0"`
	EstimatedDuration string  `json:"estimated_duration"`
}
