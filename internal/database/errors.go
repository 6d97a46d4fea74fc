package database

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when a query matches no row
	ErrNotFound = errors.New("record not found")
	// ErrSeatTaken is returned when a seat already has an active booking for the travel date
	ErrSeatTaken = errors.New("seat already booked for travel date")
	// ErrDuplicate is returned for any other unique constraint violation
	ErrDuplicate = errors.New("duplicate record")
	// ErrStatusChanged is returned when a conditional status update matched no row
	ErrStatusChanged = errors.New("status changed concurrently")
)

const (
	pqUniqueViolation = "23505"
	activeSeatIndex   = "bookings_active_seat_uidx"
)

// mapError translates driver errors into repository sentinels
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		if pqErr.Constraint == activeSeatIndex {
			return ErrSeatTaken
		}
		return ErrDuplicate
	}
	return err
}
