package models

import (
	"fmt"
	"strings"
	"time"
)

// AvailableDays describes on which weekdays a schedule runs
type AvailableDays string

const (
	AvailableDaily    AvailableDays = "Daily"
	AvailableWeekdays AvailableDays = "Weekdays"
	AvailableWeekends AvailableDays = "Weekends"
)

// IsValid reports whether d is a known day pattern
func (d AvailableDays) IsValid() bool {
	switch d {
	case AvailableDaily, AvailableWeekdays, AvailableWeekends:
		return true
	}
	return false
}

// RunsOn reports whether a schedule with this pattern runs on the given date
func (d AvailableDays) RunsOn(date time.Time) bool {
	weekend := date.Weekday() == time.Saturday || date.Weekday() == time.Sunday
	switch d {
	case AvailableDaily:
		return true
	case AvailableWeekdays:
		return !weekend
	case AvailableWeekends:
		return weekend
	}
	return false
}

// ScheduleStatus represents whether a schedule is bookable
type ScheduleStatus string

const (
	ScheduleStatusActive   ScheduleStatus = "active"
	ScheduleStatusInactive ScheduleStatus = "inactive"
)

// Schedule is a recurring bus/route/time template. A concrete trip is
// identified by (schedule, travel date).
type Schedule struct {
	ID            string         `json:"id" db:"id"`
	BusID         string         `json:"bus_id" db:"bus_id"`
	RouteID       string         `json:"route_id" db:"route_id"`
	DepartureTime string         `json:"departure_time" db:"departure_time"` // HH:MM:SS
	ArrivalTime   string         `json:"arrival_time" db:"arrival_time"`     // HH:MM:SS
	BasePrice     float64        `json:"base_price" db:"base_price"`
	AvailableDays AvailableDays  `json:"available_days" db:"available_days"`
	Status        ScheduleStatus `json:"status" db:"status"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" db:"updated_at"`
}

// ScheduleDetail joins a schedule with its bus and route
type ScheduleDetail struct {
	Schedule
	BusName           string    `json:"bus_name" db:"bus_name"`
	BusNumber         string    `json:"bus_number" db:"bus_number"`
	BusType           BusType   `json:"bus_type" db:"bus_type"`
	BusStatus         BusStatus `json:"bus_status" db:"bus_status"`
	SeatConfiguration string    `json:"seat_configuration" db:"seat_configuration"`
	TotalSeats        int       `json:"total_seats" db:"total_seats"`
	OperatorID        string    `json:"operator_id" db:"operator_id"`
	RouteName         string    `json:"route_name" db:"route_name"`
	Origin            string    `json:"origin" db:"origin"`
	Destination       string    `json:"destination" db:"destination"`
	DistanceKm        float64   `json:"distance_km" db:"distance_km"`
}

// IsBookable reports whether the schedule, its bus and the date allow new bookings
func (s *ScheduleDetail) IsBookable(travelDate time.Time) bool {
	return s.Status == ScheduleStatusActive &&
		s.BusStatus == BusStatusActive &&
		s.AvailableDays.RunsOn(travelDate)
}

// SearchResult is a schedule offered for a given travel date
type SearchResult struct {
	ScheduleDetail
	TravelDate     string `json:"travel_date"`
	AvailableSeats int    `json:"available_seats" db:"available_seats"`
}

// CreateScheduleRequest represents the request to add a schedule
type CreateScheduleRequest struct {
	BusID         string  `json:"bus_id" binding:"required,uuid"`
	RouteID       string  `json:"route_id" binding:"required,uuid"`
	DepartureTime string  `json:"departure_time" binding:"required"` // HH:MM
	ArrivalTime   string  `json:"arrival_time" binding:"required"`   // HH:MM
	BasePrice     float64 `json:"base_price" binding:"required,gt=0"`
	AvailableDays string  `json:"available_days" binding:"required"`
}

// Validate validates the create schedule request
func (r *CreateScheduleRequest) Validate() error {
	dep, err := ParseClock(r.DepartureTime)
	if err != nil {
		return fmt.Errorf("invalid departure_time: %w", err)
	}
	arr, err := ParseClock(r.ArrivalTime)
	if err != nil {
		return fmt.Errorf("invalid arrival_time: %w", err)
	}
	if dep == arr {
		return fmt.Errorf("arrival_time must differ from departure_time")
	}
	if r.BasePrice <= 0 {
		return fmt.Errorf("base_price must be greater than 0")
	}
	if !AvailableDays(r.AvailableDays).IsValid() {
		return fmt.Errorf("available_days must be Daily, Weekdays or Weekends")
	}
	return nil
}

// ParseClock parses "HH:MM" or "HH:MM:SS" into an offset from midnight
func ParseClock(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	layout := "15:04:05"
	if strings.Count(s, ":") == 1 {
		layout = "15:04"
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second, nil
}

// DepartureAt combines a travel date with a departure clock time in loc
func DepartureAt(travelDate time.Time, departureTime string, loc *time.Location) (time.Time, error) {
	offset, err := ParseClock(departureTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid departure time %q: %w", departureTime, err)
	}
	y, m, d := travelDate.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc).Add(offset), nil
}

// ParseTravelDate parses a YYYY-MM-DD date in loc
func ParseTravelDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", strings.TrimSpace(s), loc)
}
