package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/roadrunner/booking-backend/internal/models"
)

// ScheduleRepository handles schedule database operations
type ScheduleRepository struct {
	db DB
}

// NewScheduleRepository creates a new ScheduleRepository
func NewScheduleRepository(db DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

const scheduleDetailSelect = `
	SELECT
		s.id, s.bus_id, s.route_id,
		to_char(s.departure_time, 'HH24:MI:SS') AS departure_time,
		to_char(s.arrival_time, 'HH24:MI:SS') AS arrival_time,
		s.base_price, s.available_days, s.status, s.created_at, s.updated_at,
		b.name AS bus_name, b.bus_number, b.bus_type, b.status AS bus_status,
		b.seat_configuration, b.total_seats, b.operator_id,
		r.name AS route_name, r.origin, r.destination, r.distance_km
	FROM schedules s
	JOIN buses b ON b.id = s.bus_id
	JOIN routes r ON r.id = s.route_id
`

// Create inserts a new schedule
func (r *ScheduleRepository) Create(ctx context.Context, schedule *models.Schedule) error {
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	if schedule.Status == "" {
		schedule.Status = models.ScheduleStatusActive
	}

	query := `
		INSERT INTO schedules (
			id, bus_id, route_id, departure_time, arrival_time, base_price, available_days, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		schedule.ID, schedule.BusID, schedule.RouteID,
		schedule.DepartureTime, schedule.ArrivalTime,
		schedule.BasePrice, schedule.AvailableDays, schedule.Status,
	).Scan(&schedule.CreatedAt, &schedule.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create schedule: %w", mapError(err))
	}
	return nil
}

// GetDetail retrieves a schedule joined with its bus and route
func (r *ScheduleRepository) GetDetail(ctx context.Context, id string) (*models.ScheduleDetail, error) {
	detail := &models.ScheduleDetail{}
	query := scheduleDetailSelect + ` WHERE s.id = $1`

	if err := r.db.GetContext(ctx, detail, query, id); err != nil {
		return nil, fmt.Errorf("failed to get schedule: %w", mapError(err))
	}
	return detail, nil
}

// List returns every schedule with its bus and route
func (r *ScheduleRepository) List(ctx context.Context) ([]models.ScheduleDetail, error) {
	details := []models.ScheduleDetail{}
	query := scheduleDetailSelect + ` ORDER BY r.name, s.departure_time`

	if err := r.db.SelectContext(ctx, &details, query); err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	return details, nil
}

// Search finds active schedules between two places with the number of seats
// still free on travelDate. Day-of-week filtering is left to the caller.
func (r *ScheduleRepository) Search(ctx context.Context, origin, destination string, travelDate time.Time) ([]models.SearchResult, error) {
	results := []models.SearchResult{}
	query := `
		SELECT * FROM (
			SELECT
				s.id, s.bus_id, s.route_id,
				to_char(s.departure_time, 'HH24:MI:SS') AS departure_time,
				to_char(s.arrival_time, 'HH24:MI:SS') AS arrival_time,
				s.base_price, s.available_days, s.status, s.created_at, s.updated_at,
				b.name AS bus_name, b.bus_number, b.bus_type, b.status AS bus_status,
				b.seat_configuration, b.total_seats, b.operator_id,
				r.name AS route_name, r.origin, r.destination, r.distance_km,
				(SELECT COUNT(*) FROM seats st WHERE st.bus_id = b.id) -
				(SELECT COUNT(*) FROM bookings bk
					JOIN seats st ON st.id = bk.seat_id
					WHERE st.bus_id = b.id
					  AND bk.travel_date = $3
					  AND bk.booking_status IN ('pending', 'confirmed')) AS available_seats
			FROM schedules s
			JOIN buses b ON b.id = s.bus_id
			JOIN routes r ON r.id = s.route_id
			WHERE s.status = 'active'
			  AND b.status = 'active'
			  AND r.status = 'active'
			  AND r.origin ILIKE $1
			  AND r.destination ILIKE $2
		) q
		ORDER BY q.departure_time
	`

	if err := r.db.SelectContext(ctx, &results, query,
		"%"+origin+"%", "%"+destination+"%", travelDate.Format("2006-01-02"),
	); err != nil {
		return nil, fmt.Errorf("failed to search schedules: %w", err)
	}
	return results, nil
}
