package assignment

import (
	"encoding/json"
	"testing"

	"github.com/roadrunner/booking-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSeatMap() *models.SeatMap {
	female := models.GenderFemale
	return &models.SeatMap{
		ScheduleID: "sched-1",
		TravelDate: "2025-11-03",
		Seats: []models.SeatMapEntry{
			{SeatID: "s1", SeatNumber: "A1"},
			{SeatID: "s2", SeatNumber: "B1"},
			{SeatID: "s3", SeatNumber: "C1", IsBooked: true, OccupantGender: &female},
			{SeatID: "s4", SeatNumber: "D1"},
		},
	}
}

func TestSelectSeat(t *testing.T) {
	t.Run("assigns and replaces", func(t *testing.T) {
		s := NewSession(testSeatMap())
		p := s.AddPassenger("Ann", models.GenderFemale)

		require.NoError(t, s.SelectSeat(p, "s1"))
		require.NoError(t, s.SelectSeat(p, "s2"))
		assert.Equal(t, "s2", s.Passengers[0].SeatID)
		assert.Equal(t, -1, s.holderOf("s1"))
	})

	t.Run("seat held by another passenger", func(t *testing.T) {
		s := NewSession(testSeatMap())
		a := s.AddPassenger("Ann", models.GenderFemale)
		b := s.AddPassenger("Bob", models.GenderMale)

		require.NoError(t, s.SelectSeat(a, "s1"))
		err := s.SelectSeat(b, "s1")
		assert.ErrorIs(t, err, ErrSeatHasPassenger)
		assert.Empty(t, s.Passengers[1].SeatID)
	})

	t.Run("booked seat", func(t *testing.T) {
		s := NewSession(testSeatMap())
		a := s.AddPassenger("Ann", models.GenderFemale)
		assert.ErrorIs(t, s.SelectSeat(a, "s3"), ErrSeatUnavailable)
	})

	t.Run("unknown seat and passenger", func(t *testing.T) {
		s := NewSession(testSeatMap())
		a := s.AddPassenger("Ann", models.GenderFemale)
		assert.ErrorIs(t, s.SelectSeat(a, "nope"), ErrUnknownSeat)
		assert.ErrorIs(t, s.SelectSeat(99, "s1"), ErrUnknownPassenger)
	})
}

func TestToggleSeat(t *testing.T) {
	s := NewSession(testSeatMap())
	a := s.AddPassenger("Ann", models.GenderFemale)
	b := s.AddPassenger("Bob", models.GenderMale)

	id, err := s.ToggleSeat("s1")
	require.NoError(t, err)
	assert.Equal(t, a, id)

	id, err = s.ToggleSeat("s2")
	require.NoError(t, err)
	assert.Equal(t, b, id)

	_, err = s.ToggleSeat("s4")
	assert.ErrorIs(t, err, ErrNoPassengerToSeat)

	// clicking a selected seat frees it
	id, err = s.ToggleSeat("s1")
	require.NoError(t, err)
	assert.Equal(t, a, id)
	assert.Empty(t, s.Passengers[0].SeatID)
}

func TestRemovePassengerFreesSeat(t *testing.T) {
	s := NewSession(testSeatMap())
	a := s.AddPassenger("Ann", models.GenderFemale)
	b := s.AddPassenger("Bob", models.GenderMale)
	require.NoError(t, s.SelectSeat(a, "s1"))

	require.NoError(t, s.RemovePassenger(a))
	require.NoError(t, s.SelectSeat(b, "s1"))
	assert.ErrorIs(t, s.RemovePassenger(a), ErrUnknownPassenger)
}

func TestUnassignedHint(t *testing.T) {
	tests := []struct {
		name    string
		genders []models.Gender
		want    Hint
	}{
		{"no passengers", nil, HintNeutral},
		{"all female", []models.Gender{models.GenderFemale, models.GenderFemale}, HintFemale},
		{"all male", []models.Gender{models.GenderMale}, HintMale},
		{"mixed", []models.Gender{models.GenderMale, models.GenderFemale}, HintNeutral},
		{"undeclared", []models.Gender{""}, HintNeutral},
		{"one undeclared", []models.Gender{models.GenderMale, ""}, HintNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(testSeatMap())
			for _, g := range tt.genders {
				s.AddPassenger("X", g)
			}
			assert.Equal(t, tt.want, s.UnassignedHint())
		})
	}
}

func TestHintIgnoresSeatedPassengers(t *testing.T) {
	s := NewSession(testSeatMap())
	a := s.AddPassenger("Ann", models.GenderFemale)
	s.AddPassenger("Bob", models.GenderMale)
	assert.Equal(t, HintNeutral, s.UnassignedHint())

	require.NoError(t, s.SelectSeat(a, "s1"))
	assert.Equal(t, HintMale, s.UnassignedHint())
	assert.Equal(t, HintMale, s.SeatHint("s4"))
	assert.Equal(t, HintFemale, s.SeatHint("s1"))
	assert.Equal(t, HintFemale, s.SeatHint("s3"))

	// the hint is advisory: a female passenger may still take a male-tinted seat
	c := s.AddPassenger("Cara", models.GenderFemale)
	assert.NoError(t, s.SelectSeat(c, "s4"))
}

func TestReadiness(t *testing.T) {
	s := NewSession(testSeatMap())
	assert.Equal(t, ReasonNoPassengers, s.Readiness())

	a := s.AddPassenger("", "")
	assert.Equal(t, ReasonMissingNames, s.Readiness())

	require.NoError(t, s.UpdatePassenger(a, "Ann", "", ""))
	assert.Equal(t, ReasonMissingGenders, s.Readiness())

	require.NoError(t, s.UpdatePassenger(a, "Ann", models.GenderFemale, "+15551234567"))
	assert.Equal(t, ReasonMissingSeats, s.Readiness())
	_, err := s.Submission()
	assert.ErrorIs(t, err, ErrNotReady)

	require.NoError(t, s.SelectSeat(a, "s2"))
	assert.Equal(t, ReasonReady, s.Readiness())

	out, err := s.Submission()
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "s2", out[0].SeatID)
	assert.Equal(t, models.GenderFemale, out[0].Gender)
	require.NotNil(t, out[0].Phone)
	assert.Equal(t, "+15551234567", *out[0].Phone)
}

func TestRefreshFreesNewlyBookedSeats(t *testing.T) {
	s := NewSession(testSeatMap())
	a := s.AddPassenger("Ann", models.GenderFemale)
	require.NoError(t, s.SelectSeat(a, "s1"))

	fresh := testSeatMap()
	fresh.Seats[0].IsBooked = true
	freed := s.Refresh(fresh)

	assert.Equal(t, []int{a}, freed)
	assert.Empty(t, s.Passengers[0].SeatID)
}

func TestSessionSurvivesJSON(t *testing.T) {
	s := NewSession(testSeatMap())
	a := s.AddPassenger("Ann", models.GenderFemale)
	require.NoError(t, s.SelectSeat(a, "s1"))

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var restored Session
	require.NoError(t, json.Unmarshal(data, &restored))
	assert.Equal(t, "s1", restored.Passengers[0].SeatID)
	assert.ErrorIs(t, restored.SelectSeat(restored.AddPassenger("Bob", models.GenderMale), "s1"), ErrSeatHasPassenger)
}
