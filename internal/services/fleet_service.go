package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/roadrunner/booking-backend/internal/database"
	"github.com/roadrunner/booking-backend/internal/models"
	"github.com/roadrunner/booking-backend/internal/seatlayout"
	"github.com/sirupsen/logrus"
)

// RouteStore is the route persistence used by FleetService
type RouteStore interface {
	Create(ctx context.Context, route *models.Route) error
	GetByID(ctx context.Context, id string) (*models.Route, error)
	List(ctx context.Context) ([]models.Route, error)
}

// BusStore is the bus persistence used by FleetService
type BusStore interface {
	CreateWithSeats(ctx context.Context, bus *models.Bus, seats []models.Seat) error
	GetByID(ctx context.Context, id string) (*models.Bus, error)
	ListByOperator(ctx context.Context, operatorID string) ([]models.Bus, error)
	UpdateStatus(ctx context.Context, id string, status models.BusStatus) error
}

// ScheduleStore is the schedule persistence used by FleetService
type ScheduleStore interface {
	Create(ctx context.Context, schedule *models.Schedule) error
	GetDetail(ctx context.Context, id string) (*models.ScheduleDetail, error)
	List(ctx context.Context) ([]models.ScheduleDetail, error)
	Search(ctx context.Context, origin, destination string, travelDate time.Time) ([]models.SearchResult, error)
}

// FleetService manages routes, buses and schedules and answers trip searches
type FleetService struct {
	routes    RouteStore
	buses     BusStore
	schedules ScheduleStore
	numbering seatlayout.Scheme
	loc       *time.Location
	logger    *logrus.Logger
	now       func() time.Time
}

// NewFleetService creates a new FleetService
func NewFleetService(
	routes RouteStore,
	buses BusStore,
	schedules ScheduleStore,
	numbering seatlayout.Scheme,
	loc *time.Location,
	logger *logrus.Logger,
) *FleetService {
	if loc == nil {
		loc = time.UTC
	}
	if numbering == "" {
		numbering = seatlayout.SchemeLettered
	}
	return &FleetService{
		routes:    routes,
		buses:     buses,
		schedules: schedules,
		numbering: numbering,
		loc:       loc,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateRoute adds a route
func (s *FleetService) CreateRoute(ctx context.Context, req *models.CreateRouteRequest) (*models.Route, error) {
	var errs ValidationErrors
	if strings.TrimSpace(req.Name) == "" {
		errs.add("name", "is required")
	}
	if strings.TrimSpace(req.Origin) == "" {
		errs.add("origin", "is required")
	}
	if strings.TrimSpace(req.Destination) == "" {
		errs.add("destination", "is required")
	}
	if strings.EqualFold(strings.TrimSpace(req.Origin), strings.TrimSpace(req.Destination)) {
		errs.add("destination", "must differ from origin")
	}
	if req.DistanceKm <= 0 {
		errs.add("distance_km", "must be greater than 0")
	}
	if err := errs.orNil(); err != nil {
		return nil, err
	}

	route := &models.Route{
		Name:              strings.TrimSpace(req.Name),
		Origin:            strings.TrimSpace(req.Origin),
		Destination:       strings.TrimSpace(req.Destination),
		DistanceKm:        req.DistanceKm,
		EstimatedDuration: req.EstimatedDuration,
	}
	if err := s.routes.Create(ctx, route); err != nil {
		return nil, err
	}
	return route, nil
}

// ListRoutes returns every route
func (s *FleetService) ListRoutes(ctx context.Context) ([]models.Route, error) {
	return s.routes.List(ctx)
}

// CreateBus registers a bus for the actor and generates its seats from the
// seat configuration. The configuration cannot change afterwards.
func (s *FleetService) CreateBus(ctx context.Context, actor Actor, req *models.CreateBusRequest) (*models.Bus, error) {
	if err := req.Validate(); err != nil {
		return nil, ValidationError{Msg: err.Error()}
	}
	layout, err := seatlayout.ParseConfiguration(req.SeatConfiguration)
	if err != nil {
		return nil, ValidationError{Field: "seat_configuration", Msg: err.Error()}
	}

	bus := &models.Bus{
		OperatorID:        actor.UserID,
		Name:              strings.TrimSpace(req.Name),
		BusNumber:         strings.ToUpper(strings.TrimSpace(req.BusNumber)),
		BusType:           models.BusType(req.BusType),
		TotalSeats:        req.TotalSeats,
		SeatConfiguration: layout.String(),
		Amenities:         req.Amenities,
	}

	numbers := layout.GenerateSeatNumbers(req.TotalSeats, s.numbering)
	seats := make([]models.Seat, len(numbers))
	for i, n := range numbers {
		seats[i] = models.Seat{
			SeatNumber: n,
			SeatType:   models.SeatType(layout.SeatTypeAt(i)),
		}
	}

	if err := s.buses.CreateWithSeats(ctx, bus, seats); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ValidationError{Field: "bus_number", Msg: "a bus with this number already exists"}
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"bus_id":      bus.ID,
		"operator_id": bus.OperatorID,
		"seats":       len(seats),
	}).Info("bus registered")
	return bus, nil
}

// ListBuses returns the actor's buses, or every bus for an admin
func (s *FleetService) ListBuses(ctx context.Context, actor Actor) ([]models.Bus, error) {
	operatorID := actor.UserID
	if actor.IsAdmin() {
		operatorID = ""
	}
	return s.buses.ListByOperator(ctx, operatorID)
}

// SetBusStatus activates or deactivates a bus
func (s *FleetService) SetBusStatus(ctx context.Context, actor Actor, busID string, status models.BusStatus) error {
	if status != models.BusStatusActive && status != models.BusStatusInactive {
		return ValidationError{Field: "status", Msg: "must be active or inactive"}
	}
	bus, err := s.findBus(ctx, actor, busID)
	if err != nil {
		return err
	}
	if err := s.buses.UpdateStatus(ctx, bus.ID, status); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("bus %w", ErrNotFound)
		}
		return err
	}
	return nil
}

// CreateSchedule adds a recurring schedule for one of the actor's buses
func (s *FleetService) CreateSchedule(ctx context.Context, actor Actor, req *models.CreateScheduleRequest) (*models.Schedule, error) {
	if err := req.Validate(); err != nil {
		return nil, ValidationError{Msg: err.Error()}
	}

	bus, err := s.findBus(ctx, actor, req.BusID)
	if err != nil {
		return nil, err
	}
	if bus.Status != models.BusStatusActive {
		return nil, ValidationError{Field: "bus_id", Msg: "bus is not active"}
	}

	route, err := s.routes.GetByID(ctx, req.RouteID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("route %w", ErrNotFound)
		}
		return nil, err
	}
	if route.Status != models.RouteStatusActive {
		return nil, ValidationError{Field: "route_id", Msg: "route is not active"}
	}

	dep, _ := models.ParseClock(req.DepartureTime)
	arr, _ := models.ParseClock(req.ArrivalTime)
	schedule := &models.Schedule{
		BusID:         bus.ID,
		RouteID:       route.ID,
		DepartureTime: formatClock(dep),
		ArrivalTime:   formatClock(arr),
		BasePrice:     req.BasePrice,
		AvailableDays: models.AvailableDays(req.AvailableDays),
	}
	if err := s.schedules.Create(ctx, schedule); err != nil {
		return nil, err
	}
	return schedule, nil
}

// ListSchedules returns every schedule with its bus and route
func (s *FleetService) ListSchedules(ctx context.Context) ([]models.ScheduleDetail, error) {
	return s.schedules.List(ctx)
}

// SearchSchedules finds bookable schedules between two places on a travel date
func (s *FleetService) SearchSchedules(ctx context.Context, origin, destination, travelDate string) ([]models.SearchResult, error) {
	var errs ValidationErrors
	if strings.TrimSpace(origin) == "" {
		errs.add("origin", "is required")
	}
	if strings.TrimSpace(destination) == "" {
		errs.add("destination", "is required")
	}
	date, err := models.ParseTravelDate(travelDate, s.loc)
	if err != nil {
		errs.add("travel_date", "must be YYYY-MM-DD")
	}
	if err := errs.orNil(); err != nil {
		return nil, err
	}

	found, err := s.schedules.Search(ctx, strings.TrimSpace(origin), strings.TrimSpace(destination), date)
	if err != nil {
		return nil, err
	}

	now := s.now()
	results := make([]models.SearchResult, 0, len(found))
	for _, r := range found {
		if !r.IsBookable(date) {
			continue
		}
		departure, err := models.DepartureAt(date, r.DepartureTime, s.loc)
		if err != nil || !departure.After(now) {
			continue
		}
		r.TravelDate = date.Format("2006-01-02")
		results = append(results, r)
	}
	return results, nil
}

func (s *FleetService) findBus(ctx context.Context, actor Actor, busID string) (*models.Bus, error) {
	bus, err := s.buses.GetByID(ctx, busID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("bus %w", ErrNotFound)
		}
		return nil, err
	}
	if !actor.canManage(bus.OperatorID) {
		return nil, fmt.Errorf("bus %w", ErrNotFound)
	}
	return bus, nil
}

func formatClock(d time.Duration) string {
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	sec := int(d % time.Minute / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", h, m, sec)
}
