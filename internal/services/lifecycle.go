package services

import (
	"sort"
	"time"

	"github.com/roadrunner/booking-backend/internal/models"
)

// Parcel pricing
const (
	ParcelBaseRate  = 500.0
	ParcelRatePerKg = 50.0
	ParcelRatePerKm = 2.0
)

// DeliveryCost is the fixed parcel price: 500 + weight×50 + distance×2
func DeliveryCost(weightKg, distanceKm float64) float64 {
	return ParcelBaseRate + weightKg*ParcelRatePerKg + distanceKm*ParcelRatePerKm
}

// CanCancelAt reports whether something departing at departure may still be
// cancelled at now. The boundary is inclusive: exactly window before departure is allowed.
func CanCancelAt(departure, now time.Time, window time.Duration) bool {
	return departure.Sub(now) >= window
}

// EffectiveStatus derives the displayed status. Active bookings whose
// departure has passed are completed; the stored row is not rewritten.
func EffectiveStatus(stored models.BookingStatus, departure, now time.Time) models.BookingStatus {
	if stored.IsActive() && !departure.After(now) {
		return models.BookingStatusCompleted
	}
	return stored
}

// bookingTransitions lists the stored status changes operators and admins may make
var bookingTransitions = map[models.BookingStatus][]models.BookingStatus{
	models.BookingStatusPending:   {models.BookingStatusConfirmed, models.BookingStatusCancelled},
	models.BookingStatusConfirmed: {models.BookingStatusCancelled, models.BookingStatusCompleted},
	models.BookingStatusCancelled: {models.BookingStatusRefunded},
}

// CanTransition reports whether a booking may move from one status to another
func CanTransition(from, to models.BookingStatus) bool {
	for _, allowed := range bookingTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

var parcelTransitions = map[models.ParcelStatus][]models.ParcelStatus{
	models.ParcelStatusPending:   {models.ParcelStatusInTransit, models.ParcelStatusCancelled},
	models.ParcelStatusInTransit: {models.ParcelStatusDelivered},
}

// CanTransitionParcel reports whether a parcel may move from one status to another
func CanTransitionParcel(from, to models.ParcelStatus) bool {
	for _, allowed := range parcelTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// GroupTrips groups a passenger's bookings into trips. Bookings share a trip
// when they have the same schedule and travel date and each was created
// within window of the previous one in that group. Trips are returned newest first.
func GroupTrips(bookings []models.BookingDetail, window time.Duration) []models.Trip {
	sorted := make([]models.BookingDetail, len(bookings))
	copy(sorted, bookings)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.ScheduleID != b.ScheduleID {
			return a.ScheduleID < b.ScheduleID
		}
		if !a.TravelDate.Equal(b.TravelDate) {
			return a.TravelDate.Before(b.TravelDate)
		}
		return a.BookingDate.Before(b.BookingDate)
	})

	var trips []models.Trip
	var last time.Time
	for _, b := range sorted {
		n := len(trips)
		sameTrip := n > 0 &&
			trips[n-1].ScheduleID == b.ScheduleID &&
			trips[n-1].TravelDate == b.TravelDate.Format("2006-01-02") &&
			b.BookingDate.Sub(last) <= window
		if !sameTrip {
			trips = append(trips, models.Trip{
				ScheduleID: b.ScheduleID,
				TravelDate: b.TravelDate.Format("2006-01-02"),
				RouteName:  b.RouteName,
				BusName:    b.BusName,
				BookedAt:   b.BookingDate,
			})
			n++
		}
		trip := &trips[n-1]
		trip.Bookings = append(trip.Bookings, b)
		if b.BookingStatus.IsActive() {
			trip.TotalAmount += b.TotalAmount
		}
		trip.CanCancel = trip.CanCancel || b.CanCancel
		last = b.BookingDate
	}

	sort.SliceStable(trips, func(i, j int) bool {
		return trips[i].BookedAt.After(trips[j].BookedAt)
	})
	return trips
}
