package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/roadrunner/booking-backend/internal/models"
)

// BusRepository handles database operations for buses and their seats
type BusRepository struct {
	db DB
}

// NewBusRepository creates a new BusRepository
func NewBusRepository(db DB) *BusRepository {
	return &BusRepository{db: db}
}

const busColumns = `id, operator_id, name, bus_number, bus_type, total_seats, seat_configuration,
	amenities, status, created_at, updated_at`

// CreateWithSeats inserts a bus and its full seat set in one transaction.
// Seats are created once per bus; availability per date comes from bookings.
func (r *BusRepository) CreateWithSeats(ctx context.Context, bus *models.Bus, seats []models.Seat) error {
	if bus.ID == "" {
		bus.ID = uuid.NewString()
	}
	if bus.Status == "" {
		bus.Status = models.BusStatusActive
	}

	return inTx(ctx, r.db, nil, func(tx *sqlx.Tx) error {
		busQuery := `
			INSERT INTO buses (
				id, operator_id, name, bus_number, bus_type, total_seats,
				seat_configuration, amenities, status
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING created_at, updated_at
		`

		err := tx.QueryRowxContext(ctx, busQuery,
			bus.ID, bus.OperatorID, bus.Name, bus.BusNumber, bus.BusType, bus.TotalSeats,
			bus.SeatConfiguration, pq.Array(bus.Amenities), bus.Status,
		).Scan(&bus.CreatedAt, &bus.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create bus: %w", mapError(err))
		}

		seatQuery := `INSERT INTO seats (id, bus_id, seat_number, seat_type) VALUES ($1, $2, $3, $4)`
		for i := range seats {
			if seats[i].ID == "" {
				seats[i].ID = uuid.NewString()
			}
			seats[i].BusID = bus.ID
			if _, err := tx.ExecContext(ctx, seatQuery,
				seats[i].ID, seats[i].BusID, seats[i].SeatNumber, seats[i].SeatType,
			); err != nil {
				return fmt.Errorf("failed to create seat %s: %w", seats[i].SeatNumber, mapError(err))
			}
		}
		return nil
	})
}

// GetByID retrieves a bus by ID
func (r *BusRepository) GetByID(ctx context.Context, id string) (*models.Bus, error) {
	bus := &models.Bus{}
	query := `SELECT ` + busColumns + ` FROM buses WHERE id = $1`

	if err := r.db.GetContext(ctx, bus, query, id); err != nil {
		return nil, fmt.Errorf("failed to get bus: %w", mapError(err))
	}
	return bus, nil
}

// ListByOperator retrieves all buses for an operator. An empty operator lists every bus.
func (r *BusRepository) ListByOperator(ctx context.Context, operatorID string) ([]models.Bus, error) {
	buses := []models.Bus{}
	query := `SELECT ` + busColumns + ` FROM buses WHERE ($1 = '' OR operator_id::text = $1) ORDER BY created_at DESC`

	if err := r.db.SelectContext(ctx, &buses, query, operatorID); err != nil {
		return nil, fmt.Errorf("failed to list buses: %w", err)
	}
	return buses, nil
}

// UpdateStatus sets a bus active or inactive
func (r *BusRepository) UpdateStatus(ctx context.Context, id string, status models.BusStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE buses SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update bus status: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListSeats returns the seats of a bus
func (r *BusRepository) ListSeats(ctx context.Context, busID string) ([]models.Seat, error) {
	seats := []models.Seat{}
	query := `SELECT id, bus_id, seat_number, seat_type FROM seats WHERE bus_id = $1`

	if err := r.db.SelectContext(ctx, &seats, query, busID); err != nil {
		return nil, fmt.Errorf("failed to list seats: %w", err)
	}
	return seats, nil
}
