package models

import (
	"time"
)

// Gender of a passenger
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// IsValid reports whether g is a supported gender
func (g Gender) IsValid() bool {
	return g == GenderMale || g == GenderFemale
}

// BookingStatus represents the lifecycle state of a booking row
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusRefunded  BookingStatus = "refunded"
)

// IsActive reports whether the status holds the seat for its travel date
func (s BookingStatus) IsActive() bool {
	return s == BookingStatusPending || s == BookingStatusConfirmed
}

// PaymentStatus of a booking or parcel
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// PaymentChoice is selected by the passenger at checkout
type PaymentChoice string

const (
	PayNow   PaymentChoice = "pay_now"
	PayLater PaymentChoice = "pay_later"
)

// IsValid reports whether c is a supported payment choice
func (c PaymentChoice) IsValid() bool {
	return c == PayNow || c == PayLater
}

// Booking is one passenger on one seat for one travel date
type Booking struct {
	ID               string        `json:"id" db:"id"`
	BookingReference string        `json:"booking_reference" db:"booking_reference"`
	PassengerID      string        `json:"passenger_id" db:"passenger_id"`
	ScheduleID       string        `json:"schedule_id" db:"schedule_id"`
	SeatID           string        `json:"seat_id" db:"seat_id"`
	TravelDate       time.Time     `json:"travel_date" db:"travel_date"`
	PassengerName    string        `json:"passenger_name" db:"passenger_name"`
	PassengerGender  Gender        `json:"passenger_gender" db:"passenger_gender"`
	PassengerPhone   *string       `json:"passenger_phone,omitempty" db:"passenger_phone"`
	TotalAmount      float64       `json:"total_amount" db:"total_amount"`
	BookingStatus    BookingStatus `json:"booking_status" db:"booking_status"`
	PaymentStatus    PaymentStatus `json:"payment_status" db:"payment_status"`
	BookingSource    string        `json:"booking_source" db:"booking_source"`
	BookingDate      time.Time     `json:"booking_date" db:"booking_date"`
	UpdatedAt        time.Time     `json:"updated_at" db:"updated_at"`
}

// BookingDetail joins a booking with the schedule, bus and seat it refers to
type BookingDetail struct {
	Booking
	SeatNumber    string  `json:"seat_number" db:"seat_number"`
	BusID         string  `json:"bus_id" db:"bus_id"`
	OperatorID    string  `json:"-" db:"operator_id"`
	BusName       string  `json:"bus_name" db:"bus_name"`
	RouteName     string  `json:"route_name" db:"route_name"`
	Origin        string  `json:"origin" db:"origin"`
	Destination   string  `json:"destination" db:"destination"`
	DepartureTime string  `json:"departure_time" db:"departure_time"`
	ArrivalTime   string  `json:"arrival_time" db:"arrival_time"`
	BasePrice     float64 `json:"-" db:"base_price"`

	// Computed at query time
	EffectiveStatus BookingStatus `json:"effective_status" db:"-"`
	CanCancel       bool          `json:"can_cancel" db:"-"`
}

// PassengerSeat pairs a passenger with the seat chosen for them
type PassengerSeat struct {
	SeatID string  `json:"seat_id" binding:"required,uuid"`
	Name   string  `json:"name" binding:"required"`
	Gender Gender  `json:"gender" binding:"required"`
	Phone  *string `json:"phone,omitempty"`
}

// CardDetails are only format-checked; no real gateway is involved
type CardDetails struct {
	HolderName string `json:"holder_name"`
	Number     string `json:"number"`
	Expiry     string `json:"expiry"` // MM/YY
	CVV        string `json:"cvv"`
}

// CreateBookingRequest is the body of a booking submission
type CreateBookingRequest struct {
	ScheduleID    string          `json:"schedule_id" binding:"required,uuid"`
	TravelDate    string          `json:"travel_date" binding:"required"` // YYYY-MM-DD
	Passengers    []PassengerSeat `json:"passengers" binding:"required,min=1,dive"`
	PaymentChoice PaymentChoice   `json:"payment_choice" binding:"required"`
	Card          *CardDetails    `json:"card,omitempty"`
}

// BookingResult is returned after a successful submission
type BookingResult struct {
	BookingReferences []string      `json:"booking_references"`
	TotalAmount       float64       `json:"total_amount"`
	PaymentStatus     PaymentStatus `json:"payment_status"`
	BookingStatus     BookingStatus `json:"booking_status"`
}

// Trip groups bookings a passenger made together for one schedule and date
type Trip struct {
	ScheduleID  string          `json:"schedule_id"`
	TravelDate  string          `json:"travel_date"`
	RouteName   string          `json:"route_name"`
	BusName     string          `json:"bus_name"`
	BookedAt    time.Time       `json:"booked_at"`
	TotalAmount float64         `json:"total_amount"`
	CanCancel   bool            `json:"can_cancel"`
	Bookings    []BookingDetail `json:"bookings"`
}

// CancelTripRequest cancels a set of bookings by reference
type CancelTripRequest struct {
	BookingReferences []string `json:"booking_references" binding:"required,min=1"`
}

// CancelTripResult reports per-row outcomes of a trip cancellation
type CancelTripResult struct {
	CancelledCount int              `json:"cancelled_count"`
	Errors         []CancelRowError `json:"errors"`
}

// CancelRowError is the failure for one booking within a trip cancellation
type CancelRowError struct {
	BookingReference string `json:"booking_reference"`
	Code             string `json:"code"`
	Message          string `json:"message"`
}

// UpdateBookingStatusRequest is used by operators and admins
type UpdateBookingStatusRequest struct {
	Status BookingStatus `json:"status" binding:"required"`
}
