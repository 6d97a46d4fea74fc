// Package assignment holds the seat-selection state of one booking session:
// an ordered passenger list paired one-to-one with seats from a seat map.
// It is plain data so it can be serialized between requests and tested
// without a browser.
package assignment

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roadrunner/booking-backend/internal/models"
)

var (
	ErrSeatHasPassenger  = errors.New("seat already has a passenger")
	ErrSeatUnavailable   = errors.New("seat unavailable")
	ErrUnknownSeat       = errors.New("seat is not on this bus")
	ErrUnknownPassenger  = errors.New("passenger not found")
	ErrNoPassengerToSeat = errors.New("every passenger already has a seat")
	ErrNotReady          = errors.New("booking is not ready to submit")
)

// Hint is the colour a seat is tinted with on the seat map
type Hint string

const (
	HintMale    Hint = "male"
	HintFemale  Hint = "female"
	HintNeutral Hint = "neutral"
)

// Reason says why a session cannot be submitted yet
type Reason string

const (
	ReasonReady          Reason = "ready"
	ReasonNoPassengers   Reason = "no_passengers"
	ReasonMissingNames   Reason = "missing_names"
	ReasonMissingGenders Reason = "missing_genders"
	ReasonMissingSeats   Reason = "missing_seats"
)

// Passenger is one traveller in the session. SeatID is empty until a seat is chosen.
type Passenger struct {
	LocalID int           `json:"local_id"`
	Name    string        `json:"name"`
	Gender  models.Gender `json:"gender,omitempty"`
	Phone   string        `json:"phone,omitempty"`
	SeatID  string        `json:"seat_id,omitempty"`
}

// Seat is the session's view of one seat from the seat map
type Seat struct {
	ID             string         `json:"id"`
	Number         string         `json:"number"`
	IsBooked       bool           `json:"is_booked"`
	OccupantGender *models.Gender `json:"occupant_gender,omitempty"`
}

// Session pairs passengers with seats for one (schedule, travel date)
type Session struct {
	ScheduleID string      `json:"schedule_id"`
	TravelDate string      `json:"travel_date"`
	Passengers []Passenger `json:"passengers"`
	Seats      []Seat      `json:"seats"`
	NextID     int         `json:"next_id"`
}

// NewSession starts an empty session over a seat map snapshot
func NewSession(seatMap *models.SeatMap) *Session {
	s := &Session{
		ScheduleID: seatMap.ScheduleID,
		TravelDate: seatMap.TravelDate,
		Passengers: []Passenger{},
		NextID:     1,
	}
	s.Seats = seatsFrom(seatMap)
	return s
}

func seatsFrom(seatMap *models.SeatMap) []Seat {
	seats := make([]Seat, len(seatMap.Seats))
	for i, e := range seatMap.Seats {
		seats[i] = Seat{
			ID:             e.SeatID,
			Number:         e.SeatNumber,
			IsBooked:       e.IsBooked,
			OccupantGender: e.OccupantGender,
		}
	}
	return seats
}

// AddPassenger appends a passenger without a seat and returns its local id
func (s *Session) AddPassenger(name string, gender models.Gender) int {
	id := s.NextID
	s.NextID++
	s.Passengers = append(s.Passengers, Passenger{LocalID: id, Name: name, Gender: gender})
	return id
}

// RemovePassenger drops a passenger; their seat becomes free again
func (s *Session) RemovePassenger(localID int) error {
	i := s.passengerIndex(localID)
	if i < 0 {
		return ErrUnknownPassenger
	}
	s.Passengers = append(s.Passengers[:i], s.Passengers[i+1:]...)
	return nil
}

// UpdatePassenger changes a passenger's details
func (s *Session) UpdatePassenger(localID int, name string, gender models.Gender, phone string) error {
	i := s.passengerIndex(localID)
	if i < 0 {
		return ErrUnknownPassenger
	}
	s.Passengers[i].Name = name
	s.Passengers[i].Gender = gender
	s.Passengers[i].Phone = phone
	return nil
}

// SelectSeat assigns seatID to a passenger, replacing any seat they held
func (s *Session) SelectSeat(localID int, seatID string) error {
	i := s.passengerIndex(localID)
	if i < 0 {
		return ErrUnknownPassenger
	}
	seat, ok := s.seat(seatID)
	if !ok {
		return ErrUnknownSeat
	}
	if seat.IsBooked {
		return fmt.Errorf("%w: %s", ErrSeatUnavailable, seat.Number)
	}
	if holder := s.holderOf(seatID); holder >= 0 && holder != i {
		return fmt.Errorf("%w: %s", ErrSeatHasPassenger, seat.Number)
	}
	s.Passengers[i].SeatID = seatID
	return nil
}

// ToggleSeat handles a click on the seat map. Clicking a selected seat frees
// it; clicking a free seat gives it to the first passenger still without one.
// It returns the local id of the passenger whose assignment changed.
func (s *Session) ToggleSeat(seatID string) (int, error) {
	if holder := s.holderOf(seatID); holder >= 0 {
		s.Passengers[holder].SeatID = ""
		return s.Passengers[holder].LocalID, nil
	}
	for _, p := range s.Passengers {
		if p.SeatID == "" {
			if err := s.SelectSeat(p.LocalID, seatID); err != nil {
				return 0, err
			}
			return p.LocalID, nil
		}
	}
	if _, ok := s.seat(seatID); !ok {
		return 0, ErrUnknownSeat
	}
	return 0, ErrNoPassengerToSeat
}

// ClearSeat frees the passenger's seat, if any
func (s *Session) ClearSeat(localID int) error {
	i := s.passengerIndex(localID)
	if i < 0 {
		return ErrUnknownPassenger
	}
	s.Passengers[i].SeatID = ""
	return nil
}

// Refresh replaces the seat snapshot. Passengers whose seat is now booked by
// someone else lose it; their local ids are returned.
func (s *Session) Refresh(seatMap *models.SeatMap) []int {
	s.Seats = seatsFrom(seatMap)
	var freed []int
	for i := range s.Passengers {
		id := s.Passengers[i].SeatID
		if id == "" {
			continue
		}
		if seat, ok := s.seat(id); !ok || seat.IsBooked {
			s.Passengers[i].SeatID = ""
			freed = append(freed, s.Passengers[i].LocalID)
		}
	}
	return freed
}

// UnassignedHint is the tint for seats nobody in this session holds. It is the
// shared gender of every passenger still needing a seat, or neutral when those
// passengers are mixed, undeclared or absent. The hint never blocks a selection.
func (s *Session) UnassignedHint() Hint {
	var shared models.Gender
	needing := 0
	for _, p := range s.Passengers {
		if p.SeatID != "" {
			continue
		}
		needing++
		if !p.Gender.IsValid() {
			return HintNeutral
		}
		if shared == "" {
			shared = p.Gender
		} else if shared != p.Gender {
			return HintNeutral
		}
	}
	if needing == 0 {
		return HintNeutral
	}
	return Hint(shared)
}

// SeatHint is the tint for one seat: the occupant's or holder's gender for
// taken seats, the unassigned hint otherwise
func (s *Session) SeatHint(seatID string) Hint {
	seat, ok := s.seat(seatID)
	if !ok {
		return HintNeutral
	}
	if seat.IsBooked {
		if seat.OccupantGender != nil && seat.OccupantGender.IsValid() {
			return Hint(*seat.OccupantGender)
		}
		return HintNeutral
	}
	if holder := s.holderOf(seatID); holder >= 0 {
		if g := s.Passengers[holder].Gender; g.IsValid() {
			return Hint(g)
		}
		return HintNeutral
	}
	return s.UnassignedHint()
}

// Readiness reports the first unmet submission condition, checked in the
// order passengers, names, genders, seats
func (s *Session) Readiness() Reason {
	if len(s.Passengers) == 0 {
		return ReasonNoPassengers
	}
	for _, p := range s.Passengers {
		if strings.TrimSpace(p.Name) == "" {
			return ReasonMissingNames
		}
	}
	for _, p := range s.Passengers {
		if !p.Gender.IsValid() {
			return ReasonMissingGenders
		}
	}
	for _, p := range s.Passengers {
		if p.SeatID == "" {
			return ReasonMissingSeats
		}
	}
	return ReasonReady
}

// Submission returns the passenger/seat pairing in passenger order
func (s *Session) Submission() ([]models.PassengerSeat, error) {
	if reason := s.Readiness(); reason != ReasonReady {
		return nil, fmt.Errorf("%w: %s", ErrNotReady, reason)
	}
	out := make([]models.PassengerSeat, len(s.Passengers))
	for i, p := range s.Passengers {
		out[i] = models.PassengerSeat{
			SeatID: p.SeatID,
			Name:   strings.TrimSpace(p.Name),
			Gender: p.Gender,
		}
		if p.Phone != "" {
			phone := p.Phone
			out[i].Phone = &phone
		}
	}
	return out, nil
}

func (s *Session) passengerIndex(localID int) int {
	for i, p := range s.Passengers {
		if p.LocalID == localID {
			return i
		}
	}
	return -1
}

func (s *Session) seat(seatID string) (Seat, bool) {
	for _, seat := range s.Seats {
		if seat.ID == seatID {
			return seat, true
		}
	}
	return Seat{}, false
}

// holderOf returns the index of the passenger holding seatID, or -1
func (s *Session) holderOf(seatID string) int {
	if seatID == "" {
		return -1
	}
	for i, p := range s.Passengers {
		if p.SeatID == seatID {
			return i
		}
	}
	return -1
}
