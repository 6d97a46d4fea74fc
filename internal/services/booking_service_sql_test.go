package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/roadrunner/booking-backend/internal/database"
	"github.com/roadrunner/booking-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLBookingService(t *testing.T) (*BookingService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := NewBookingService(
		database.NewBookingRepository(database.Wrap(db)),
		memScheduleReader{"sched-1": testSchedule()},
		NoopSeatLocker{},
		NewFormatCheckGateway(),
		testPolicy(),
		time.UTC,
		quietLogger(),
	)
	svc.now = func() time.Time { return testNow }
	return svc, mock
}

func expectSeatLock(mock sqlmock.Sqlmock, seats ...string) {
	rows := sqlmock.NewRows([]string{"id", "bus_id", "seat_number", "seat_type"})
	for _, s := range seats {
		rows.AddRow("seat-"+s, testBusID, s, "window")
	}
	mock.ExpectQuery(`FOR UPDATE`).WithArgs(testBusID, sqlmock.AnyArg()).WillReturnRows(rows)
}

func sqlBookingRequest() *models.CreateBookingRequest {
	return &models.CreateBookingRequest{
		ScheduleID:    "sched-1",
		TravelDate:    travelDate,
		Passengers:    passengers("seat-A1"),
		PaymentChoice: models.PayLater,
	}
}

func TestSubmitBookingSQL_Commits(t *testing.T) {
	svc, mock := newSQLBookingService(t)
	now := time.Now()

	mock.ExpectBegin()
	expectSeatLock(mock, "A1")
	mock.ExpectQuery(`SELECT seat_id\s+FROM bookings`).
		WithArgs(sqlmock.AnyArg(), travelDate).
		WillReturnRows(sqlmock.NewRows([]string{"seat_id"}))
	mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(`INSERT INTO bookings`).
		WillReturnRows(sqlmock.NewRows([]string{"booking_date", "updated_at"}).AddRow(now, now))
	mock.ExpectCommit()

	result, err := svc.SubmitBooking(context.Background(), testPassenger, sqlBookingRequest(), "api")
	require.NoError(t, err)
	assert.Len(t, result.BookingReferences, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitBookingSQL_TakenSeatRollsBack(t *testing.T) {
	svc, mock := newSQLBookingService(t)

	mock.ExpectBegin()
	expectSeatLock(mock, "A1")
	mock.ExpectQuery(`SELECT seat_id\s+FROM bookings`).
		WillReturnRows(sqlmock.NewRows([]string{"seat_id"}).AddRow("seat-A1"))
	mock.ExpectRollback()

	_, err := svc.SubmitBooking(context.Background(), testPassenger, sqlBookingRequest(), "api")
	assert.ErrorIs(t, err, ErrSeatConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitBookingSQL_UniqueIndexIsSeatConflict(t *testing.T) {
	svc, mock := newSQLBookingService(t)

	mock.ExpectBegin()
	expectSeatLock(mock, "A1")
	mock.ExpectQuery(`SELECT seat_id\s+FROM bookings`).
		WillReturnRows(sqlmock.NewRows([]string{"seat_id"}))
	mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(`INSERT INTO bookings`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "bookings_active_seat_uidx"})
	mock.ExpectRollback()

	_, err := svc.SubmitBooking(context.Background(), testPassenger, sqlBookingRequest(), "api")
	assert.ErrorIs(t, err, ErrSeatConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitBookingSQL_BeginFailureIsTransactionError(t *testing.T) {
	svc, mock := newSQLBookingService(t)

	mock.ExpectBegin().WillReturnError(assert.AnError)

	_, err := svc.SubmitBooking(context.Background(), testPassenger, sqlBookingRequest(), "api")
	var txErr *TransactionError
	assert.ErrorAs(t, err, &txErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}
