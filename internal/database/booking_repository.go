package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/roadrunner/booking-backend/internal/models"
)

// BookingTx is the set of booking operations available inside one transaction
type BookingTx interface {
	// LockSeats locks the requested seats of a bus in id order and returns those found
	LockSeats(ctx context.Context, busID string, seatIDs []string) ([]models.Seat, error)
	// ActiveSeatIDs returns which of seatIDs hold a pending or confirmed booking on travelDate
	ActiveSeatIDs(ctx context.Context, seatIDs []string, travelDate time.Time) ([]string, error)
	ReferenceExists(ctx context.Context, reference string) (bool, error)
	Insert(ctx context.Context, booking *models.Booking) error
}

// BookingRepository handles booking database operations
type BookingRepository struct {
	db DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// WithTx runs fn inside a single transaction. Any error rolls back every write made through tx.
func (r *BookingRepository) WithTx(ctx context.Context, fn func(tx BookingTx) error) error {
	return inTx(ctx, r.db, nil, func(tx *sqlx.Tx) error {
		return fn(&bookingTx{tx: tx})
	})
}

type bookingTx struct {
	tx *sqlx.Tx
}

func (t *bookingTx) LockSeats(ctx context.Context, busID string, seatIDs []string) ([]models.Seat, error) {
	seats := []models.Seat{}
	query := `
		SELECT id, bus_id, seat_number, seat_type
		FROM seats
		WHERE bus_id = $1 AND id::text = ANY($2)
		ORDER BY id
		FOR UPDATE
	`
	if err := t.tx.SelectContext(ctx, &seats, query, busID, pq.Array(seatIDs)); err != nil {
		return nil, fmt.Errorf("failed to lock seats: %w", err)
	}
	return seats, nil
}

func (t *bookingTx) ActiveSeatIDs(ctx context.Context, seatIDs []string, travelDate time.Time) ([]string, error) {
	taken := []string{}
	query := `
		SELECT seat_id
		FROM bookings
		WHERE seat_id::text = ANY($1)
		  AND travel_date = $2
		  AND booking_status IN ('pending', 'confirmed')
	`
	if err := t.tx.SelectContext(ctx, &taken, query, pq.Array(seatIDs), dateArg(travelDate)); err != nil {
		return nil, fmt.Errorf("failed to check seat availability: %w", err)
	}
	return taken, nil
}

func (t *bookingTx) ReferenceExists(ctx context.Context, reference string) (bool, error) {
	var exists bool
	err := t.tx.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM bookings WHERE booking_reference = $1)`, reference)
	if err != nil {
		return false, fmt.Errorf("failed to check reference uniqueness: %w", err)
	}
	return exists, nil
}

func (t *bookingTx) Insert(ctx context.Context, b *models.Booking) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}

	query := `
		INSERT INTO bookings (
			id, booking_reference, passenger_id, schedule_id, seat_id, travel_date,
			passenger_name, passenger_gender, passenger_phone, total_amount,
			booking_status, payment_status, booking_source
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING booking_date, updated_at
	`

	err := t.tx.QueryRowxContext(ctx, query,
		b.ID, b.BookingReference, b.PassengerID, b.ScheduleID, b.SeatID, dateArg(b.TravelDate),
		b.PassengerName, b.PassengerGender, b.PassengerPhone, b.TotalAmount,
		b.BookingStatus, b.PaymentStatus, b.BookingSource,
	).Scan(&b.BookingDate, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert booking for seat %s: %w", b.SeatID, mapError(err))
	}
	return nil
}

// SeatMap lists every seat of a bus with its active booking on travelDate, if any
func (r *BookingRepository) SeatMap(ctx context.Context, busID string, travelDate time.Time) ([]models.SeatMapEntry, error) {
	entries := []models.SeatMapEntry{}
	query := `
		SELECT
			s.id AS seat_id, s.seat_number, s.seat_type,
			(b.id IS NOT NULL) AS is_booked,
			b.passenger_gender AS occupant_gender
		FROM seats s
		LEFT JOIN bookings b
			ON b.seat_id = s.id
			AND b.travel_date = $2
			AND b.booking_status IN ('pending', 'confirmed')
		WHERE s.bus_id = $1
	`
	if err := r.db.SelectContext(ctx, &entries, query, busID, dateArg(travelDate)); err != nil {
		return nil, fmt.Errorf("failed to load seat map: %w", err)
	}
	return entries, nil
}

const bookingDetailSelect = `
	SELECT
		bk.id, bk.booking_reference, bk.passenger_id, bk.schedule_id, bk.seat_id, bk.travel_date,
		bk.passenger_name, bk.passenger_gender, bk.passenger_phone, bk.total_amount,
		bk.booking_status, bk.payment_status, bk.booking_source, bk.booking_date, bk.updated_at,
		st.seat_number, b.id AS bus_id, b.operator_id, b.name AS bus_name,
		r.name AS route_name, r.origin, r.destination,
		to_char(s.departure_time, 'HH24:MI:SS') AS departure_time,
		to_char(s.arrival_time, 'HH24:MI:SS') AS arrival_time,
		s.base_price
	FROM bookings bk
	JOIN seats st ON st.id = bk.seat_id
	JOIN schedules s ON s.id = bk.schedule_id
	JOIN buses b ON b.id = s.bus_id
	JOIN routes r ON r.id = s.route_id
`

// GetDetailByReference retrieves one booking with its schedule, bus and seat
func (r *BookingRepository) GetDetailByReference(ctx context.Context, reference string) (*models.BookingDetail, error) {
	detail := &models.BookingDetail{}
	query := bookingDetailSelect + ` WHERE bk.booking_reference = $1`

	if err := r.db.GetContext(ctx, detail, query, reference); err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", mapError(err))
	}
	return detail, nil
}

// ListDetailsByPassenger returns a passenger's bookings, oldest first within each schedule and date
func (r *BookingRepository) ListDetailsByPassenger(ctx context.Context, passengerID string) ([]models.BookingDetail, error) {
	details := []models.BookingDetail{}
	query := bookingDetailSelect + `
		WHERE bk.passenger_id = $1
		ORDER BY bk.travel_date DESC, bk.schedule_id, bk.booking_date
	`

	if err := r.db.SelectContext(ctx, &details, query, passengerID); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return details, nil
}

// UpdateStatus moves a booking to status "to" only if it is currently in one of "from"
func (r *BookingRepository) UpdateStatus(ctx context.Context, id string, from []models.BookingStatus, to models.BookingStatus) error {
	current := make([]string, len(from))
	for i, s := range from {
		current[i] = string(s)
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE bookings
		SET booking_status = $1, updated_at = NOW()
		WHERE id = $2 AND booking_status = ANY($3)
	`, to, id, pq.Array(current))
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", mapError(err))
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrStatusChanged
	}
	return nil
}

// MarkPaid records payment for an active pay-later booking
func (r *BookingRepository) MarkPaid(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE bookings
		SET payment_status = 'paid', updated_at = NOW()
		WHERE id = $1
		  AND payment_status = 'pending'
		  AND booking_status IN ('pending', 'confirmed')
	`, id)
	if err != nil {
		return fmt.Errorf("failed to mark booking paid: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrStatusChanged
	}
	return nil
}

// dateArg formats a travel date for a DATE column without time zone conversion
func dateArg(t time.Time) string {
	return t.Format("2006-01-02")
}
