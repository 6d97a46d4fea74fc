package models

// SeatType classifies a seat by its place in the row
type SeatType string

const (
	SeatTypeWindow   SeatType = "window"
	SeatTypeAisle    SeatType = "aisle"
	SeatTypeStandard SeatType = "standard"
)

// Seat is a physical seat on a bus. One set exists per bus;
// availability per travel date is derived from bookings.
type Seat struct {
	ID         string   `json:"id" db:"id"`
	BusID      string   `json:"bus_id" db:"bus_id"`
	SeatNumber string   `json:"seat_number" db:"seat_number"`
	SeatType   SeatType `json:"seat_type" db:"seat_type"`
}

// SeatMapEntry is one seat of the seat map for a (schedule, travel date) pair
type SeatMapEntry struct {
	SeatID         string   `json:"seat_id" db:"seat_id"`
	SeatNumber     string   `json:"seat_number" db:"seat_number"`
	SeatType       SeatType `json:"seat_type" db:"seat_type"`
	IsBooked       bool     `json:"is_booked" db:"is_booked"`
	OccupantGender *Gender  `json:"occupant_gender,omitempty" db:"occupant_gender"`

	// Layout geometry, filled from the bus seat configuration
	Horizontal int    `json:"horizontal_number" db:"-"`
	Row        int    `json:"row" db:"-"`
	Column     int    `json:"column" db:"-"`
	Side       string `json:"side" db:"-"`
}

// SeatMap is the advisory seat availability view for one trip instance
type SeatMap struct {
	ScheduleID        string         `json:"schedule_id"`
	TravelDate        string         `json:"travel_date"`
	BusID             string         `json:"bus_id"`
	BusName           string         `json:"bus_name"`
	SeatConfiguration string         `json:"seat_configuration"`
	Rows              int            `json:"rows"`
	SeatsPerRow       int            `json:"seats_per_row"`
	AvailableSeats    int            `json:"available_seats"`
	Seats             []SeatMapEntry `json:"seats"`
}
