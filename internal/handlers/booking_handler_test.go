package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/roadrunner/booking-backend/internal/config"
	"github.com/roadrunner/booking-backend/internal/database"
	"github.com/roadrunner/booking-backend/internal/middleware"
	"github.com/roadrunner/booking-backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUserID = uuid.MustParse("6f1c2b9e-3d4a-4c5b-8e7f-9a0b1c2d3e4f")

// withUser stands in for the auth middleware
func withUser(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserContextKey, middleware.UserContext{
			UserID: testUserID,
			Email:  "amal@example.com",
			Roles:  roles,
		})
		c.Next()
	}
}

type bookingFixture struct {
	router *gin.Engine
	mock   sqlmock.Sqlmock
}

func setupBookingRouter(t *testing.T) *bookingFixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := testLogger()
	pg := database.Wrap(db)
	policy := config.BookingConfig{
		CancelWindow:         2 * time.Hour,
		ParcelCancelWindow:   24 * time.Hour,
		TripGroupingWindow:   5 * time.Minute,
		ReferenceMaxAttempts: 10,
		SeatNumbering:        "lettered",
	}
	bookingService := services.NewBookingService(
		database.NewBookingRepository(pg),
		database.NewScheduleRepository(pg),
		services.NoopSeatLocker{},
		services.NewFormatCheckGateway(),
		policy,
		time.UTC,
		logger,
	)
	bookings := NewBookingHandler(bookingService, logger)
	search := NewSearchHandler(nil, bookingService, logger)

	router := gin.New()
	router.GET("/schedules/:id/seats", search.GetSeatMap)
	router.POST("/schedules/:id/selection", search.PreviewSelection)
	authed := router.Group("/", withUser("passenger"))
	authed.POST("/bookings", bookings.CreateBooking)
	authed.GET("/bookings/:reference", bookings.GetBooking)
	authed.POST("/bookings/cancel-trip", bookings.CancelTrip)

	return &bookingFixture{router: router, mock: mock}
}

func TestGetSeatMap_InvalidScheduleID(t *testing.T) {
	f := setupBookingRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/schedules/not-a-uuid/seats?travel_date=2025-10-20", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", decodeBody(t, w)["code"])
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestGetSeatMap_BadTravelDate(t *testing.T) {
	f := setupBookingRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/schedules/"+uuid.NewString()+"/seats?travel_date=20-10-2025", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "VALIDATION_FAILED", body["code"])
	fields := body["fields"].([]interface{})
	assert.Equal(t, "travel_date", fields[0].(map[string]interface{})["field"])
}

func TestGetSeatMap_UnknownSchedule(t *testing.T) {
	f := setupBookingRouter(t)
	scheduleID := uuid.NewString()

	f.mock.ExpectQuery("FROM schedules").
		WithArgs(scheduleID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	req := httptest.NewRequest(http.MethodGet, "/schedules/"+scheduleID+"/seats?travel_date=2025-10-20", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCreateBooking_RejectsMalformedBody(t *testing.T) {
	f := setupBookingRouter(t)

	tests := []struct {
		name    string
		payload gin.H
	}{
		{"no passengers", gin.H{"schedule_id": uuid.NewString(), "travel_date": "2025-10-20", "payment_choice": "pay_later", "passengers": []gin.H{}}},
		{"seat id not a uuid", gin.H{
			"schedule_id":    uuid.NewString(),
			"travel_date":    "2025-10-20",
			"payment_choice": "pay_later",
			"passengers":     []gin.H{{"seat_id": "A1", "name": "Amal", "gender": "male"}},
		}},
		{"schedule id missing", gin.H{"travel_date": "2025-10-20", "payment_choice": "pay_later"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(f.router, "/bookings", tt.payload)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "INVALID_REQUEST", decodeBody(t, w)["code"])
		})
	}
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestGetBooking_NotFound(t *testing.T) {
	f := setupBookingRouter(t)

	f.mock.ExpectQuery("FROM bookings bk").
		WithArgs("RR2510180000").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	req := httptest.NewRequest(http.MethodGet, "/bookings/RR2510180000", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decodeBody(t, w)["code"])
}

func TestCancelTrip_RequiresReferences(t *testing.T) {
	f := setupBookingRouter(t)

	w := postJSON(f.router, "/bookings/cancel-trip", gin.H{"booking_references": []string{}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingRoutes_RequireUser(t *testing.T) {
	handler := NewBookingHandler(nil, testLogger())
	router := gin.New()
	router.GET("/bookings", handler.ListMyBookings)

	req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "MISSING_USER_CONTEXT", decodeBody(t, w)["code"])
}

func TestPreviewSelection(t *testing.T) {
	f := setupBookingRouter(t)
	scheduleID := uuid.NewString()
	busID := uuid.NewString()
	seatA1, seatB1, seatC1 := uuid.NewString(), uuid.NewString(), uuid.NewString()
	now := time.Now()

	f.mock.ExpectQuery("FROM schedules s").
		WithArgs(scheduleID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "bus_id", "route_id", "departure_time", "arrival_time", "base_price", "available_days", "status",
			"created_at", "updated_at", "bus_name", "bus_number", "bus_type", "bus_status", "seat_configuration",
			"total_seats", "operator_id", "route_name", "origin", "destination", "distance_km",
		}).AddRow(
			scheduleID, busID, uuid.NewString(), "08:00:00", "12:00:00", 1500.0, "Daily", "active",
			now, now, "Express 1", "NB-1234", "normal", "active", "2x1",
			3, uuid.NewString(), "Colombo - Kandy", "Colombo", "Kandy", 115.0,
		))
	f.mock.ExpectQuery("FROM seats s").
		WithArgs(busID, "2025-10-20").
		WillReturnRows(sqlmock.NewRows([]string{"seat_id", "seat_number", "seat_type", "is_booked", "occupant_gender"}).
			AddRow(seatA1, "A1", "window", false, nil).
			AddRow(seatB1, "B1", "aisle", true, "female").
			AddRow(seatC1, "C1", "window", false, nil))

	w := postJSON(f.router, "/schedules/"+scheduleID+"/selection", gin.H{
		"travel_date": "2025-10-20",
		"passengers": []gin.H{
			{"name": "Amal", "gender": "male", "seat_id": seatA1},
			{"name": "Nimal", "gender": "male", "seat_id": seatB1},
			{"name": "Kumari", "gender": "female"},
		},
	})

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "missing_seats", body["readiness"])
	assert.Equal(t, "neutral", body["unassigned_hint"])

	hints := body["seat_hints"].(map[string]interface{})
	assert.Equal(t, "male", hints[seatA1])
	assert.Equal(t, "female", hints[seatB1])
	assert.Equal(t, "neutral", hints[seatC1])

	problems := body["problems"].([]interface{})
	require.Len(t, problems, 1)
	assert.Equal(t, "passengers[1].seat_id", problems[0].(map[string]interface{})["field"])
	assert.NotContains(t, body, "passengers")
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPreviewSelection_ReadyReturnsPassengers(t *testing.T) {
	f := setupBookingRouter(t)
	scheduleID := uuid.NewString()
	busID := uuid.NewString()
	seatA1, seatC1 := uuid.NewString(), uuid.NewString()
	now := time.Now()

	f.mock.ExpectQuery("FROM schedules s").
		WithArgs(scheduleID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "bus_id", "route_id", "departure_time", "arrival_time", "base_price", "available_days", "status",
			"created_at", "updated_at", "bus_name", "bus_number", "bus_type", "bus_status", "seat_configuration",
			"total_seats", "operator_id", "route_name", "origin", "destination", "distance_km",
		}).AddRow(
			scheduleID, busID, uuid.NewString(), "08:00:00", "12:00:00", 1500.0, "Daily", "active",
			now, now, "Express 1", "NB-1234", "normal", "active", "2x1",
			2, uuid.NewString(), "Colombo - Kandy", "Colombo", "Kandy", 115.0,
		))
	f.mock.ExpectQuery("FROM seats s").
		WithArgs(busID, "2025-10-20").
		WillReturnRows(sqlmock.NewRows([]string{"seat_id", "seat_number", "seat_type", "is_booked", "occupant_gender"}).
			AddRow(seatA1, "A1", "window", false, nil).
			AddRow(seatC1, "C1", "window", false, nil))

	w := postJSON(f.router, "/schedules/"+scheduleID+"/selection", gin.H{
		"travel_date": "2025-10-20",
		"passengers": []gin.H{
			{"name": "Amal", "gender": "male", "seat_id": seatA1, "phone": "0771234567"},
			{"name": "Kumari", "gender": "female", "seat_id": seatC1},
		},
	})

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "ready", body["readiness"])
	assert.Nil(t, body["problems"])

	passengers := body["passengers"].([]interface{})
	require.Len(t, passengers, 2)
	first := passengers[0].(map[string]interface{})
	assert.Equal(t, seatA1, first["seat_id"])
	assert.Equal(t, "0771234567", first["phone"])
	assert.NotContains(t, passengers[1].(map[string]interface{}), "phone")
	assert.NoError(t, f.mock.ExpectationsWereMet())
}
