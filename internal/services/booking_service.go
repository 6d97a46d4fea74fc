package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/roadrunner/booking-backend/internal/config"
	"github.com/roadrunner/booking-backend/internal/database"
	"github.com/roadrunner/booking-backend/internal/models"
	"github.com/roadrunner/booking-backend/internal/seatlayout"
	"github.com/roadrunner/booking-backend/internal/utils"
	"github.com/roadrunner/booking-backend/pkg/validator"
	"github.com/sirupsen/logrus"
)

// BookingStore is the booking persistence used by BookingService
type BookingStore interface {
	WithTx(ctx context.Context, fn func(tx database.BookingTx) error) error
	SeatMap(ctx context.Context, busID string, travelDate time.Time) ([]models.SeatMapEntry, error)
	GetDetailByReference(ctx context.Context, reference string) (*models.BookingDetail, error)
	ListDetailsByPassenger(ctx context.Context, passengerID string) ([]models.BookingDetail, error)
	UpdateStatus(ctx context.Context, id string, from []models.BookingStatus, to models.BookingStatus) error
	MarkPaid(ctx context.Context, id string) error
}

// ScheduleReader loads a schedule with its bus and route
type ScheduleReader interface {
	GetDetail(ctx context.Context, id string) (*models.ScheduleDetail, error)
}

// BookingService owns seat availability, booking submission and the booking lifecycle
type BookingService struct {
	bookings  BookingStore
	schedules ScheduleReader
	locker    SeatLocker
	payments  PaymentGateway
	refs      *referenceGenerator
	policy    config.BookingConfig
	loc       *time.Location
	phones    *validator.PhoneValidator
	logger    *logrus.Logger
	now       func() time.Time
}

// NewBookingService creates a new BookingService
func NewBookingService(
	bookings BookingStore,
	schedules ScheduleReader,
	locker SeatLocker,
	payments PaymentGateway,
	policy config.BookingConfig,
	loc *time.Location,
	logger *logrus.Logger,
) *BookingService {
	if locker == nil {
		locker = NoopSeatLocker{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &BookingService{
		bookings:  bookings,
		schedules: schedules,
		locker:    locker,
		payments:  payments,
		refs:      newReferenceGenerator(utils.BookingReferencePrefix, policy.ReferenceMaxAttempts),
		policy:    policy,
		loc:       loc,
		phones:    validator.NewPhoneValidator(),
		logger:    logger,
		now:       time.Now,
	}
}

// GetSeatMap returns every seat of the schedule's bus for travelDate, marked
// booked or free. The result is advisory; SubmitBooking re-checks.
func (s *BookingService) GetSeatMap(ctx context.Context, scheduleID, travelDate string) (*models.SeatMap, error) {
	date, err := models.ParseTravelDate(travelDate, s.loc)
	if err != nil {
		return nil, ValidationError{Field: "travel_date", Msg: "must be YYYY-MM-DD"}
	}

	detail, err := s.loadSchedule(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	entries, err := s.bookings.SeatMap(ctx, detail.BusID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load seat map: %w", err)
	}

	seatMap := &models.SeatMap{
		ScheduleID:        detail.ID,
		TravelDate:        date.Format("2006-01-02"),
		BusID:             detail.BusID,
		BusName:           detail.BusName,
		SeatConfiguration: detail.SeatConfiguration,
		Seats:             entries,
	}

	layout, err := seatlayout.ParseConfiguration(detail.SeatConfiguration)
	if err != nil {
		s.logger.WithError(err).WithField("bus_id", detail.BusID).Warn("bus has an invalid seat configuration")
	} else {
		seatMap.SeatsPerRow = layout.SeatsPerRow()
		seatMap.Rows = layout.RowsNeeded(len(entries))
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return layout.Compare(entries[i].SeatNumber, entries[j].SeatNumber) < 0
	})

	for i := range entries {
		if !entries[i].IsBooked {
			seatMap.AvailableSeats++
		}
		h, ok := layout.Horizontal(seatlayout.ParseSeatCode(entries[i].SeatNumber))
		if !ok {
			continue
		}
		pos := layout.PositionOf(h - 1)
		entries[i].Horizontal = h
		entries[i].Row = pos.Row
		entries[i].Column = pos.Column
		entries[i].Side = string(pos.Side)
	}

	return seatMap, nil
}

// SubmitBooking validates a passenger batch and books every seat in one
// transaction. Either all passengers are booked or none are.
func (s *BookingService) SubmitBooking(ctx context.Context, userID string, req *models.CreateBookingRequest, source string) (*models.BookingResult, error) {
	now := s.now()

	if err := s.validatePassengers(req.Passengers); err != nil {
		return nil, err
	}

	date, err := s.validateTravelDate(req.TravelDate, now)
	if err != nil {
		return nil, err
	}

	detail, err := s.loadSchedule(ctx, req.ScheduleID)
	if err != nil {
		return nil, err
	}
	if !detail.IsBookable(date) {
		return nil, ValidationError{Field: "travel_date", Msg: "this schedule does not run on the selected date"}
	}
	departure, err := models.DepartureAt(date, detail.DepartureTime, s.loc)
	if err != nil {
		return nil, fmt.Errorf("schedule %s: %w", detail.ID, err)
	}
	if !departure.After(now) {
		return nil, ValidationError{Field: "travel_date", Msg: "this departure has already left"}
	}

	total := detail.BasePrice * float64(len(req.Passengers))
	paymentStatus, err := decidePayment(ctx, s.payments, req.PaymentChoice, req.Card, total)
	if err != nil {
		return nil, err
	}

	seatIDs := make([]string, len(req.Passengers))
	for i, p := range req.Passengers {
		seatIDs[i] = p.SeatID
	}

	release, err := s.locker.Acquire(ctx, date.Format("2006-01-02"), seatIDs)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"schedule_id": detail.ID,
			"travel_date": date.Format("2006-01-02"),
		}).WithError(err).Warn("seat lock held by another submission")
		return nil, err
	}
	defer release()

	references := make([]string, len(req.Passengers))
	err = s.bookings.WithTx(ctx, func(tx database.BookingTx) error {
		seats, err := tx.LockSeats(ctx, detail.BusID, seatIDs)
		if err != nil {
			return err
		}
		if len(seats) != len(seatIDs) {
			return ValidationError{Field: "passengers", Msg: "a selected seat does not belong to this bus"}
		}

		taken, err := tx.ActiveSeatIDs(ctx, seatIDs, date)
		if err != nil {
			return err
		}
		if len(taken) > 0 {
			return fmt.Errorf("%w: seat %s", ErrSeatConflict, strings.Join(seatNumbers(seats, taken), ", "))
		}

		used := make(map[string]bool, len(req.Passengers))
		for i, p := range req.Passengers {
			ref, err := s.refs.next(ctx, now, tx.ReferenceExists, used)
			if err != nil {
				return err
			}

			booking := &models.Booking{
				BookingReference: ref,
				PassengerID:      userID,
				ScheduleID:       detail.ID,
				SeatID:           p.SeatID,
				TravelDate:       date,
				PassengerName:    p.Name,
				PassengerGender:  p.Gender,
				PassengerPhone:   p.Phone,
				TotalAmount:      detail.BasePrice,
				BookingStatus:    models.BookingStatusConfirmed,
				PaymentStatus:    paymentStatus,
				BookingSource:    source,
			}
			if err := tx.Insert(ctx, booking); err != nil {
				return err
			}
			references[i] = ref
		}
		return nil
	})
	if err != nil {
		return nil, classifyTxError(s.logger, "submit booking", err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":     userID,
		"schedule_id": detail.ID,
		"travel_date": date.Format("2006-01-02"),
		"passengers":  len(references),
		"payment":     paymentStatus,
	}).Info("booking submitted")

	return &models.BookingResult{
		BookingReferences: references,
		TotalAmount:       total,
		PaymentStatus:     paymentStatus,
		BookingStatus:     models.BookingStatusConfirmed,
	}, nil
}

// validatePassengers checks names, genders, phones and duplicate seats.
// It runs before any transaction is opened.
func (s *BookingService) validatePassengers(passengers []models.PassengerSeat) error {
	var errs ValidationErrors
	if len(passengers) == 0 {
		errs.add("passengers", "at least one passenger is required")
		return errs
	}

	seen := make(map[string]int, len(passengers))
	for i := range passengers {
		p := &passengers[i]
		field := fmt.Sprintf("passengers[%d]", i)

		if strings.TrimSpace(p.SeatID) == "" {
			errs.add(field+".seat_id", "seat is required")
		} else if first, dup := seen[p.SeatID]; dup {
			errs.add(field+".seat_id", "duplicate seat selection (same seat as passenger %d)", first+1)
		} else {
			seen[p.SeatID] = i
		}

		name, err := validator.ValidateName(p.Name)
		if err != nil {
			errs.add(field+".name", "%s", err.Error())
		} else {
			p.Name = name
		}

		if !p.Gender.IsValid() {
			errs.add(field+".gender", "must be male or female")
		}

		if p.Phone != nil && strings.TrimSpace(*p.Phone) != "" {
			phone, err := s.phones.Validate(*p.Phone)
			if err != nil {
				errs.add(field+".phone", "%s", err.Error())
			} else {
				p.Phone = &phone
			}
		} else {
			p.Phone = nil
		}
	}
	return errs.orNil()
}

func (s *BookingService) validateTravelDate(raw string, now time.Time) (time.Time, error) {
	date, err := models.ParseTravelDate(raw, s.loc)
	if err != nil {
		return time.Time{}, ValidationError{Field: "travel_date", Msg: "must be YYYY-MM-DD"}
	}
	y, m, d := now.In(s.loc).Date()
	if date.Before(time.Date(y, m, d, 0, 0, 0, 0, s.loc)) {
		return time.Time{}, ValidationError{Field: "travel_date", Msg: "travel date is in the past"}
	}
	return date, nil
}

func (s *BookingService) loadSchedule(ctx context.Context, scheduleID string) (*models.ScheduleDetail, error) {
	detail, err := s.schedules.GetDetail(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("schedule %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load schedule: %w", err)
	}
	return detail, nil
}

// classifyTxError maps a failed transaction to the caller-facing error taxonomy
func classifyTxError(logger *logrus.Logger, op string, err error) error {
	log := logger.WithField("op", op)
	switch {
	case errors.Is(err, database.ErrSeatTaken):
		log.WithError(err).Warn("seat conflict at commit")
		return fmt.Errorf("%w: a selected seat was just booked", ErrSeatConflict)
	case errors.Is(err, ErrSeatConflict):
		log.WithError(err).Warn("seat conflict")
		return err
	case errors.Is(err, ErrReferenceGenerationExhausted):
		log.WithError(err).Error("reference generation exhausted")
		return err
	case IsValidation(err):
		return err
	}
	log.WithError(err).Error("booking transaction rolled back")
	return &TransactionError{Op: op, Err: err}
}

// seatNumbers returns the seat numbers of the given ids, for messages
func seatNumbers(seats []models.Seat, ids []string) []string {
	byID := make(map[string]string, len(seats))
	for _, seat := range seats {
		byID[seat.ID] = seat.SeatNumber
	}
	numbers := make([]string, 0, len(ids))
	for _, id := range ids {
		if n, ok := byID[id]; ok {
			numbers = append(numbers, n)
		} else {
			numbers = append(numbers, id)
		}
	}
	return numbers
}
