package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/roadrunner/booking-backend/internal/config"
	"github.com/roadrunner/booking-backend/internal/database"
	"github.com/roadrunner/booking-backend/internal/models"
	"github.com/sirupsen/logrus"
)

var (
	testNow       = time.Date(2025, 10, 18, 8, 0, 0, 0, time.UTC) // Saturday
	testBusID     = "bus-1"
	testOperator  = "operator-1"
	testPassenger = "user-1"
)

func testPolicy() config.BookingConfig {
	return config.BookingConfig{
		CancelWindow:         2 * time.Hour,
		ParcelCancelWindow:   24 * time.Hour,
		TripGroupingWindow:   5 * time.Minute,
		ReferenceMaxAttempts: 10,
		SeatNumbering:        "lettered",
	}
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testSchedule() *models.ScheduleDetail {
	return &models.ScheduleDetail{
		Schedule: models.Schedule{
			ID:            "sched-1",
			BusID:         testBusID,
			RouteID:       "route-1",
			DepartureTime: "10:00:00",
			ArrivalTime:   "14:00:00",
			BasePrice:     1500,
			AvailableDays: models.AvailableDaily,
			Status:        models.ScheduleStatusActive,
		},
		BusName:           "Night Rider",
		BusStatus:         models.BusStatusActive,
		SeatConfiguration: "2x2",
		TotalSeats:        8,
		OperatorID:        testOperator,
		RouteName:         "Colombo - Kandy",
		DistanceKm:        115,
	}
}

// memScheduleReader serves schedules from a map
type memScheduleReader map[string]*models.ScheduleDetail

func (m memScheduleReader) GetDetail(ctx context.Context, id string) (*models.ScheduleDetail, error) {
	if d, ok := m[id]; ok {
		copied := *d
		return &copied, nil
	}
	return nil, database.ErrNotFound
}

// memBookingStore is an in-memory BookingStore. WithTx holds a store-wide
// lock for the whole transaction and only publishes rows on success, which
// mirrors the row locks and atomic commit of the SQL implementation.
type memBookingStore struct {
	mu       sync.Mutex
	seats    []models.Seat
	rows     []models.BookingDetail
	schedule *models.ScheduleDetail
	txCount  int

	failInsertAt int // 1-based insert number that fails; 0 disables
	inserts      int
	txDelay      time.Duration
}

func newMemBookingStore(schedule *models.ScheduleDetail, seatNumbers ...string) *memBookingStore {
	s := &memBookingStore{schedule: schedule}
	for _, n := range seatNumbers {
		s.seats = append(s.seats, models.Seat{
			ID:         "seat-" + n,
			BusID:      schedule.BusID,
			SeatNumber: n,
			SeatType:   models.SeatTypeStandard,
		})
	}
	return s
}

func (s *memBookingStore) WithTx(ctx context.Context, fn func(tx database.BookingTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txCount++

	tx := &memBookingTx{store: s}
	if err := fn(tx); err != nil {
		return err
	}
	if s.txDelay > 0 {
		time.Sleep(s.txDelay)
	}
	s.rows = append(s.rows, tx.pending...)
	return nil
}

func (s *memBookingStore) SeatMap(ctx context.Context, busID string, travelDate time.Time) ([]models.SeatMapEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []models.SeatMapEntry
	for _, seat := range s.seats {
		if seat.BusID != busID {
			continue
		}
		entry := models.SeatMapEntry{SeatID: seat.ID, SeatNumber: seat.SeatNumber, SeatType: seat.SeatType}
		for _, r := range s.rows {
			if r.SeatID == seat.ID && sameDate(r.TravelDate, travelDate) && r.BookingStatus.IsActive() {
				g := r.PassengerGender
				entry.IsBooked = true
				entry.OccupantGender = &g
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *memBookingStore) GetDetailByReference(ctx context.Context, reference string) (*models.BookingDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rows {
		if r.BookingReference == reference {
			copied := r
			return &copied, nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *memBookingStore) ListDetailsByPassenger(ctx context.Context, passengerID string) ([]models.BookingDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.BookingDetail
	for _, r := range s.rows {
		if r.PassengerID == passengerID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memBookingStore) UpdateStatus(ctx context.Context, id string, from []models.BookingStatus, to models.BookingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rows {
		if s.rows[i].ID != id {
			continue
		}
		for _, f := range from {
			if s.rows[i].BookingStatus == f {
				s.rows[i].BookingStatus = to
				return nil
			}
		}
		return database.ErrStatusChanged
	}
	return database.ErrStatusChanged
}

func (s *memBookingStore) MarkPaid(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rows {
		if s.rows[i].ID == id && s.rows[i].PaymentStatus == models.PaymentStatusPending {
			s.rows[i].PaymentStatus = models.PaymentStatusPaid
			return nil
		}
	}
	return database.ErrStatusChanged
}

func (s *memBookingStore) activeRows() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.rows {
		if r.BookingStatus.IsActive() {
			n++
		}
	}
	return n
}

// addRow seeds a committed booking
func (s *memBookingStore) addRow(row models.BookingDetail) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, row)
}

type memBookingTx struct {
	store   *memBookingStore
	pending []models.BookingDetail
}

func (t *memBookingTx) LockSeats(ctx context.Context, busID string, seatIDs []string) ([]models.Seat, error) {
	var out []models.Seat
	for _, seat := range t.store.seats {
		if seat.BusID != busID {
			continue
		}
		for _, id := range seatIDs {
			if seat.ID == id {
				out = append(out, seat)
			}
		}
	}
	return out, nil
}

func (t *memBookingTx) ActiveSeatIDs(ctx context.Context, seatIDs []string, travelDate time.Time) ([]string, error) {
	var taken []string
	all := append(append([]models.BookingDetail(nil), t.store.rows...), t.pending...)
	for _, id := range seatIDs {
		for _, r := range all {
			if r.SeatID == id && sameDate(r.TravelDate, travelDate) && r.BookingStatus.IsActive() {
				taken = append(taken, id)
				break
			}
		}
	}
	return taken, nil
}

func (t *memBookingTx) ReferenceExists(ctx context.Context, reference string) (bool, error) {
	for _, r := range t.store.rows {
		if r.BookingReference == reference {
			return true, nil
		}
	}
	for _, r := range t.pending {
		if r.BookingReference == reference {
			return true, nil
		}
	}
	return false, nil
}

func (t *memBookingTx) Insert(ctx context.Context, b *models.Booking) error {
	t.store.inserts++
	if t.store.failInsertAt > 0 && t.store.inserts == t.store.failInsertAt {
		return errors.New("connection reset by peer")
	}
	b.ID = "booking-" + b.BookingReference
	b.BookingDate = testNow
	b.UpdatedAt = testNow

	detail := models.BookingDetail{Booking: *b, BusID: t.store.schedule.BusID, OperatorID: t.store.schedule.OperatorID}
	detail.DepartureTime = t.store.schedule.DepartureTime
	for _, seat := range t.store.seats {
		if seat.ID == b.SeatID {
			detail.SeatNumber = seat.SeatNumber
		}
	}
	t.pending = append(t.pending, detail)
	return nil
}

func sameDate(a, b time.Time) bool {
	return a.Format("2006-01-02") == b.Format("2006-01-02")
}

// stubGateway records authorizations and can be told to fail
type stubGateway struct {
	err    error
	calls  int
	amount float64
}

func (g *stubGateway) Authorize(ctx context.Context, amount float64, card models.CardDetails) error {
	g.calls++
	g.amount = amount
	return g.err
}

func newTestBookingService(store *memBookingStore, gateway PaymentGateway) *BookingService {
	svc := NewBookingService(
		store,
		memScheduleReader{store.schedule.ID: store.schedule},
		NoopSeatLocker{},
		gateway,
		testPolicy(),
		time.UTC,
		quietLogger(),
	)
	svc.now = func() time.Time { return testNow }
	return svc
}
