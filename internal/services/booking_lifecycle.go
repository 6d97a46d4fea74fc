package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/roadrunner/booking-backend/internal/database"
	"github.com/roadrunner/booking-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// Per-row codes reported by CancelTrip
const (
	CancelCodeTooLate           = "TOO_LATE"
	CancelCodeNotFound          = "NOT_FOUND"
	CancelCodeInvalidTransition = "INVALID_TRANSITION"
	CancelCodeInternal          = "INTERNAL_ERROR"
)

// Actor is the operator or admin making a back-office change
type Actor struct {
	UserID string
	Roles  []string
}

// IsAdmin reports whether the actor holds the admin role
func (a Actor) IsAdmin() bool {
	for _, r := range a.Roles {
		if r == models.RoleAdmin {
			return true
		}
	}
	return false
}

// canManage reports whether the actor may change records of a bus run by operatorID
func (a Actor) canManage(operatorID string) bool {
	return a.IsAdmin() || (a.UserID != "" && a.UserID == operatorID)
}

// GetBooking returns one of the user's bookings. Other users' bookings are reported as not found.
func (s *BookingService) GetBooking(ctx context.Context, userID, reference string) (*models.BookingDetail, error) {
	detail, err := s.findBooking(ctx, reference)
	if err != nil {
		return nil, err
	}
	if detail.PassengerID != userID {
		return nil, fmt.Errorf("booking %w", ErrNotFound)
	}
	s.decorate(detail)
	return detail, nil
}

// ListMyBookings returns the user's bookings grouped into trips
func (s *BookingService) ListMyBookings(ctx context.Context, userID string) ([]models.Trip, error) {
	details, err := s.bookings.ListDetailsByPassenger(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	for i := range details {
		s.decorate(&details[i])
	}
	trips := GroupTrips(details, s.policy.TripGroupingWindow)
	if trips == nil {
		trips = []models.Trip{}
	}
	return trips, nil
}

// CancelBooking cancels one of the user's active bookings while the
// cancellation window is still open.
func (s *BookingService) CancelBooking(ctx context.Context, userID, reference string) error {
	detail, err := s.findBooking(ctx, reference)
	if err != nil {
		return err
	}
	if detail.PassengerID != userID {
		return fmt.Errorf("booking %w", ErrNotFound)
	}
	if !detail.BookingStatus.IsActive() {
		return fmt.Errorf("%w: booking is %s", ErrInvalidTransition, detail.BookingStatus)
	}

	departure, err := models.DepartureAt(detail.TravelDate, detail.DepartureTime, s.loc)
	if err != nil {
		return fmt.Errorf("booking %s: %w", reference, err)
	}
	if !CanCancelAt(departure, s.now(), s.policy.CancelWindow) {
		return fmt.Errorf("%w: cancellations close %s before departure", ErrTooLate, s.policy.CancelWindow)
	}

	err = s.bookings.UpdateStatus(ctx, detail.ID,
		[]models.BookingStatus{models.BookingStatusPending, models.BookingStatusConfirmed},
		models.BookingStatusCancelled)
	if err != nil {
		if errors.Is(err, database.ErrStatusChanged) {
			return fmt.Errorf("%w: booking was changed concurrently", ErrInvalidTransition)
		}
		return fmt.Errorf("failed to cancel booking: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":           userID,
		"booking_reference": reference,
	}).Info("booking cancelled")
	return nil
}

// CancelTrip cancels each booking of a trip on its own. One ineligible
// booking does not stop the others; its failure is reported per row.
func (s *BookingService) CancelTrip(ctx context.Context, userID string, references []string) (*models.CancelTripResult, error) {
	if len(references) == 0 {
		return nil, ValidationError{Field: "booking_references", Msg: "at least one booking reference is required"}
	}

	result := &models.CancelTripResult{Errors: []models.CancelRowError{}}
	seen := make(map[string]bool, len(references))
	for _, ref := range references {
		if seen[ref] {
			continue
		}
		seen[ref] = true

		if err := s.CancelBooking(ctx, userID, ref); err != nil {
			result.Errors = append(result.Errors, cancelRowError(ref, err))
			continue
		}
		result.CancelledCount++
	}
	return result, nil
}

func cancelRowError(ref string, err error) models.CancelRowError {
	row := models.CancelRowError{BookingReference: ref, Message: err.Error()}
	switch {
	case errors.Is(err, ErrTooLate):
		row.Code = CancelCodeTooLate
	case errors.Is(err, ErrNotFound):
		row.Code = CancelCodeNotFound
	case errors.Is(err, ErrInvalidTransition):
		row.Code = CancelCodeInvalidTransition
	default:
		row.Code = CancelCodeInternal
		row.Message = "could not cancel this booking"
	}
	return row
}

// UpdateBookingStatus applies an operator or admin status change
func (s *BookingService) UpdateBookingStatus(ctx context.Context, actor Actor, reference string, to models.BookingStatus) (*models.BookingDetail, error) {
	detail, err := s.findBooking(ctx, reference)
	if err != nil {
		return nil, err
	}
	if !actor.canManage(detail.OperatorID) {
		return nil, fmt.Errorf("booking %w", ErrNotFound)
	}
	if !CanTransition(detail.BookingStatus, to) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, detail.BookingStatus, to)
	}

	if err := s.bookings.UpdateStatus(ctx, detail.ID, []models.BookingStatus{detail.BookingStatus}, to); err != nil {
		if errors.Is(err, database.ErrStatusChanged) {
			return nil, fmt.Errorf("%w: booking was changed concurrently", ErrInvalidTransition)
		}
		if errors.Is(err, database.ErrSeatTaken) {
			return nil, fmt.Errorf("%w: seat is held by another booking", ErrSeatConflict)
		}
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"actor_id":          actor.UserID,
		"booking_reference": reference,
		"from":              detail.BookingStatus,
		"to":                to,
	}).Info("booking status updated")

	detail.BookingStatus = to
	s.decorate(detail)
	return detail, nil
}

// MarkPaid records payment for an active pay-later booking
func (s *BookingService) MarkPaid(ctx context.Context, actor Actor, reference string) (*models.BookingDetail, error) {
	detail, err := s.findBooking(ctx, reference)
	if err != nil {
		return nil, err
	}
	if !actor.canManage(detail.OperatorID) {
		return nil, fmt.Errorf("booking %w", ErrNotFound)
	}
	if detail.PaymentStatus == models.PaymentStatusPaid {
		return nil, fmt.Errorf("%w: booking is already paid", ErrInvalidTransition)
	}
	if !detail.BookingStatus.IsActive() {
		return nil, fmt.Errorf("%w: booking is %s", ErrInvalidTransition, detail.BookingStatus)
	}

	if err := s.bookings.MarkPaid(ctx, detail.ID); err != nil {
		if errors.Is(err, database.ErrStatusChanged) {
			return nil, fmt.Errorf("%w: booking was changed concurrently", ErrInvalidTransition)
		}
		return nil, fmt.Errorf("failed to mark booking paid: %w", err)
	}

	detail.PaymentStatus = models.PaymentStatusPaid
	s.decorate(detail)
	return detail, nil
}

func (s *BookingService) findBooking(ctx context.Context, reference string) (*models.BookingDetail, error) {
	detail, err := s.bookings.GetDetailByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("booking %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}
	return detail, nil
}

// decorate fills the query-time fields: effective status and cancellability
func (s *BookingService) decorate(detail *models.BookingDetail) {
	departure, err := models.DepartureAt(detail.TravelDate, detail.DepartureTime, s.loc)
	if err != nil {
		detail.EffectiveStatus = detail.BookingStatus
		return
	}
	now := s.now()
	detail.EffectiveStatus = EffectiveStatus(detail.BookingStatus, departure, now)
	detail.CanCancel = detail.BookingStatus.IsActive() && CanCancelAt(departure, now, s.policy.CancelWindow)
}
