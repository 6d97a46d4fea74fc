package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/roadrunner/booking-backend/internal/config"
	"github.com/roadrunner/booking-backend/internal/database"
	"github.com/roadrunner/booking-backend/internal/models"
	"github.com/roadrunner/booking-backend/internal/utils"
	"github.com/roadrunner/booking-backend/pkg/validator"
	"github.com/sirupsen/logrus"
)

// MaxParcelWeightKg is the heaviest parcel accepted on a bus
const MaxParcelWeightKg = 100.0

// ParcelStore is the parcel persistence used by ParcelService
type ParcelStore interface {
	WithTx(ctx context.Context, fn func(tx database.ParcelTx) error) error
	GetByID(ctx context.Context, id string) (*models.Parcel, error)
	GetTracking(ctx context.Context, trackingNumber string) (*models.ParcelTracking, error)
	ListBySender(ctx context.Context, senderID string) ([]models.Parcel, error)
	UpdateStatus(ctx context.Context, id string, from, to models.ParcelStatus) error
}

// RouteReader loads a route
type RouteReader interface {
	GetByID(ctx context.Context, id string) (*models.Route, error)
}

// ParcelService prices, books and tracks parcel deliveries
type ParcelService struct {
	parcels  ParcelStore
	routes   RouteReader
	payments PaymentGateway
	refs     *referenceGenerator
	policy   config.BookingConfig
	loc      *time.Location
	phones   *validator.PhoneValidator
	logger   *logrus.Logger
	now      func() time.Time
}

// NewParcelService creates a new ParcelService
func NewParcelService(
	parcels ParcelStore,
	routes RouteReader,
	payments PaymentGateway,
	policy config.BookingConfig,
	loc *time.Location,
	logger *logrus.Logger,
) *ParcelService {
	if loc == nil {
		loc = time.UTC
	}
	return &ParcelService{
		parcels:  parcels,
		routes:   routes,
		payments: payments,
		refs:     newReferenceGenerator(utils.TrackingNumberPrefix, policy.ReferenceMaxAttempts),
		policy:   policy,
		loc:      loc,
		phones:   validator.NewPhoneValidator(),
		logger:   logger,
		now:      time.Now,
	}
}

// Quote prices a parcel on a route without booking it
func (s *ParcelService) Quote(ctx context.Context, routeID string, weightKg float64) (*models.ParcelQuote, error) {
	if weightKg <= 0 || weightKg > MaxParcelWeightKg {
		return nil, ValidationError{Field: "weight_kg", Msg: fmt.Sprintf("must be greater than 0 and at most %.0f", MaxParcelWeightKg)}
	}
	route, err := s.loadRoute(ctx, routeID)
	if err != nil {
		return nil, err
	}
	return &models.ParcelQuote{
		RouteID:      route.ID,
		DistanceKm:   route.DistanceKm,
		WeightKg:     weightKg,
		DeliveryCost: DeliveryCost(weightKg, route.DistanceKm),
	}, nil
}

// SubmitParcel validates and books a parcel in one transaction
func (s *ParcelService) SubmitParcel(ctx context.Context, userID string, req *models.CreateParcelRequest) (*models.ParcelResult, error) {
	now := s.now()

	if err := s.validate(req, now); err != nil {
		return nil, err
	}
	date, _ := models.ParseTravelDate(req.TravelDate, s.loc)

	route, err := s.loadRoute(ctx, req.RouteID)
	if err != nil {
		return nil, err
	}
	if route.Status != models.RouteStatusActive {
		return nil, ValidationError{Field: "route_id", Msg: "route is not accepting parcels"}
	}

	cost := DeliveryCost(req.WeightKg, route.DistanceKm)
	paymentStatus, err := decidePayment(ctx, s.payments, req.PaymentChoice, req.Card, cost)
	if err != nil {
		return nil, err
	}

	parcel := &models.Parcel{
		SenderID:        userID,
		SenderName:      req.Sender.Name,
		SenderPhone:     req.Sender.Phone,
		ReceiverName:    req.Receiver.Name,
		ReceiverPhone:   req.Receiver.Phone,
		ReceiverAddress: strings.TrimSpace(req.Receiver.Address),
		RouteID:         route.ID,
		WeightKg:        req.WeightKg,
		ParcelType:      req.ParcelType,
		DeliveryCost:    cost,
		TravelDate:      date,
		Status:          models.ParcelStatusPending,
		PaymentStatus:   paymentStatus,
	}

	err = s.parcels.WithTx(ctx, func(tx database.ParcelTx) error {
		tracking, err := s.refs.next(ctx, now, tx.TrackingNumberExists, map[string]bool{})
		if err != nil {
			return err
		}
		parcel.TrackingNumber = tracking
		return tx.Insert(ctx, parcel)
	})
	if err != nil {
		return nil, classifyTxError(s.logger, "submit parcel", err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":         userID,
		"tracking_number": parcel.TrackingNumber,
		"delivery_cost":   cost,
	}).Info("parcel submitted")

	return &models.ParcelResult{
		TrackingNumber: parcel.TrackingNumber,
		DeliveryCost:   cost,
		PaymentStatus:  paymentStatus,
	}, nil
}

func (s *ParcelService) validate(req *models.CreateParcelRequest, now time.Time) error {
	var errs ValidationErrors

	date, err := models.ParseTravelDate(req.TravelDate, s.loc)
	if err != nil {
		errs.add("travel_date", "must be YYYY-MM-DD")
	} else {
		y, m, d := now.In(s.loc).Date()
		if date.Before(time.Date(y, m, d, 0, 0, 0, 0, s.loc)) {
			errs.add("travel_date", "travel date is in the past")
		}
	}

	s.validateContact(&errs, "sender", &req.Sender)
	s.validateContact(&errs, "receiver", &req.Receiver)
	if strings.TrimSpace(req.Receiver.Address) == "" {
		errs.add("receiver.address", "delivery address is required")
	}

	if req.WeightKg <= 0 || req.WeightKg > MaxParcelWeightKg {
		errs.add("weight_kg", "must be greater than 0 and at most %.0f", MaxParcelWeightKg)
	}
	if !req.ParcelType.IsValid() {
		errs.add("parcel_type", "must be document, package, fragile or electronics")
	}
	if !req.PaymentChoice.IsValid() {
		errs.add("payment_choice", "must be pay_now or pay_later")
	}
	return errs.orNil()
}

func (s *ParcelService) validateContact(errs *ValidationErrors, field string, c *models.ContactInfo) {
	name, err := validator.ValidateName(c.Name)
	if err != nil {
		errs.add(field+".name", "%s", err.Error())
	} else {
		c.Name = name
	}
	phone, err := s.phones.Validate(c.Phone)
	if err != nil {
		errs.add(field+".phone", "%s", err.Error())
	} else {
		c.Phone = phone
	}
}

// CancelParcel cancels a pending parcel up to the parcel cancellation window
// before the start of its travel date.
func (s *ParcelService) CancelParcel(ctx context.Context, userID, parcelID string) error {
	parcel, err := s.findParcel(ctx, parcelID)
	if err != nil {
		return err
	}
	if parcel.SenderID != userID {
		return fmt.Errorf("parcel %w", ErrNotFound)
	}
	if parcel.Status != models.ParcelStatusPending {
		return fmt.Errorf("%w: parcel is %s", ErrInvalidTransition, parcel.Status)
	}

	y, m, d := parcel.TravelDate.Date()
	travelStart := time.Date(y, m, d, 0, 0, 0, 0, s.loc)
	if !CanCancelAt(travelStart, s.now(), s.policy.ParcelCancelWindow) {
		return fmt.Errorf("%w: parcel cancellations close %s before the travel date", ErrTooLate, s.policy.ParcelCancelWindow)
	}

	if err := s.parcels.UpdateStatus(ctx, parcel.ID, models.ParcelStatusPending, models.ParcelStatusCancelled); err != nil {
		if errors.Is(err, database.ErrStatusChanged) {
			return fmt.Errorf("%w: parcel was changed concurrently", ErrInvalidTransition)
		}
		return fmt.Errorf("failed to cancel parcel: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"user_id": userID, "parcel_id": parcelID}).Info("parcel cancelled")
	return nil
}

// UpdateParcelStatus moves a parcel along pending, in_transit, delivered.
// Parcels travel on a route rather than a bus, so no operator owns them and
// only admins may change their status.
func (s *ParcelService) UpdateParcelStatus(ctx context.Context, actor Actor, parcelID string, to models.ParcelStatus) (*models.Parcel, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("parcel %w", ErrNotFound)
	}
	parcel, err := s.findParcel(ctx, parcelID)
	if err != nil {
		return nil, err
	}
	if !CanTransitionParcel(parcel.Status, to) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, parcel.Status, to)
	}

	if err := s.parcels.UpdateStatus(ctx, parcel.ID, parcel.Status, to); err != nil {
		if errors.Is(err, database.ErrStatusChanged) {
			return nil, fmt.Errorf("%w: parcel was changed concurrently", ErrInvalidTransition)
		}
		return nil, fmt.Errorf("failed to update parcel status: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"actor_id":  actor.UserID,
		"parcel_id": parcelID,
		"from":      parcel.Status,
		"to":        to,
	}).Info("parcel status updated")

	parcel.Status = to
	return parcel, nil
}

// ListMyParcels returns the parcels the user has sent
func (s *ParcelService) ListMyParcels(ctx context.Context, userID string) ([]models.Parcel, error) {
	parcels, err := s.parcels.ListBySender(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list parcels: %w", err)
	}
	return parcels, nil
}

// Track returns the public status of a parcel by tracking number
func (s *ParcelService) Track(ctx context.Context, trackingNumber string) (*models.ParcelTracking, error) {
	tracking, err := s.parcels.GetTracking(ctx, strings.ToUpper(strings.TrimSpace(trackingNumber)))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("parcel %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to track parcel: %w", err)
	}
	return tracking, nil
}

func (s *ParcelService) findParcel(ctx context.Context, id string) (*models.Parcel, error) {
	parcel, err := s.parcels.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("parcel %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load parcel: %w", err)
	}
	return parcel, nil
}

func (s *ParcelService) loadRoute(ctx context.Context, routeID string) (*models.Route, error) {
	route, err := s.routes.GetByID(ctx, routeID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("route %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load route: %w", err)
	}
	return route, nil
}
