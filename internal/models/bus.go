package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

// BusType represents the type/category of bus
type BusType string

const (
	BusTypeNormal     BusType = "normal"
	BusTypeSemiLuxury BusType = "semi_luxury"
	BusTypeLuxury     BusType = "luxury"
	BusTypeSleeper    BusType = "sleeper"
)

// IsValid reports whether t is a known bus type
func (t BusType) IsValid() bool {
	switch t {
	case BusTypeNormal, BusTypeSemiLuxury, BusTypeLuxury, BusTypeSleeper:
		return true
	}
	return false
}

// BusStatus represents the current operational status of a bus
type BusStatus string

const (
	BusStatusActive   BusStatus = "active"
	BusStatusInactive BusStatus = "inactive"
)

// Bus represents a bus owned by an operator.
// SeatConfiguration is fixed once seats exist.
type Bus struct {
	ID                string         `json:"id" db:"id"`
	OperatorID        string         `json:"operator_id" db:"operator_id"`
	Name              string         `json:"name" db:"name"`
	BusNumber         string         `json:"bus_number" db:"bus_number"`
	BusType           BusType        `json:"bus_type" db:"bus_type"`
	TotalSeats        int            `json:"total_seats" db:"total_seats"`
	SeatConfiguration string         `json:"seat_configuration" db:"seat_configuration"`
	Amenities         pq.StringArray `json:"amenities" db:"amenities"`
	Status            BusStatus      `json:"status" db:"status"`
	CreatedAt         time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at" db:"updated_at"`
}

// CreateBusRequest represents the request to register a new bus
type CreateBusRequest struct {
	Name              string   `json:"name" binding:"required"`
	BusNumber         string   `json:"bus_number" binding:"required"`
	BusType           string   `json:"bus_type" binding:"required"`
	TotalSeats        int      `json:"total_seats" binding:"required,gt=0"`
	SeatConfiguration string   `json:"seat_configuration" binding:"required"`
	Amenities         []string `json:"amenities"`
}

// Validate validates the create bus request
func (r *CreateBusRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(r.BusNumber) == "" {
		return fmt.Errorf("bus_number is required")
	}
	if !BusType(r.BusType).IsValid() {
		return fmt.Errorf("invalid bus_type: %s", r.BusType)
	}
	if r.TotalSeats <= 0 || r.TotalSeats > 120 {
		return fmt.Errorf("total_seats must be between 1 and 120")
	}
	return nil
}

// UpdateBusStatusRequest toggles a bus between active and inactive
type UpdateBusStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active inactive"`
}
