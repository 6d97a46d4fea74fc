package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/roadrunner/booking-backend/internal/models"
)

// RouteRepository handles route database operations
type RouteRepository struct {
	db DB
}

// NewRouteRepository creates a new RouteRepository
func NewRouteRepository(db DB) *RouteRepository {
	return &RouteRepository{db: db}
}

const routeColumns = `id, name, origin, destination, distance_km, estimated_duration, status, created_at, updated_at`

// Create inserts a new route
func (r *RouteRepository) Create(ctx context.Context, route *models.Route) error {
	if route.ID == "" {
		route.ID = uuid.NewString()
	}
	if route.Status == "" {
		route.Status = models.RouteStatusActive
	}

	query := `
		INSERT INTO routes (id, name, origin, destination, distance_km, estimated_duration, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		route.ID, route.Name, route.Origin, route.Destination,
		route.DistanceKm, route.EstimatedDuration, route.Status,
	).Scan(&route.CreatedAt, &route.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create route: %w", mapError(err))
	}
	return nil
}

// GetByID retrieves a route by ID
func (r *RouteRepository) GetByID(ctx context.Context, id string) (*models.Route, error) {
	route := &models.Route{}
	query := `SELECT ` + routeColumns + ` FROM routes WHERE id = $1`

	if err := r.db.GetContext(ctx, route, query, id); err != nil {
		return nil, fmt.Errorf("failed to get route: %w", mapError(err))
	}
	return route, nil
}

// List returns all routes ordered by name
func (r *RouteRepository) List(ctx context.Context) ([]models.Route, error) {
	routes := []models.Route{}
	query := `SELECT ` + routeColumns + ` FROM routes ORDER BY name`

	if err := r.db.SelectContext(ctx, &routes, query); err != nil {
		return nil, fmt.Errorf("failed to list routes: %w", err)
	}
	return routes, nil
}
