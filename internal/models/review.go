package models

import "time"

// Review is a passenger's rating of a completed booking
type Review struct {
	ID          string    `json:"id" db:"id"`
	BookingID   string    `json:"booking_id" db:"booking_id"`
	PassengerID string    `json:"passenger_id" db:"passenger_id"`
	BusID       string    `json:"bus_id" db:"bus_id"`
	Rating      int       `json:"rating" db:"rating"`
	ReviewText  string    `json:"review_text" db:"review_text"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// SubmitReviewRequest creates or edits the review for a booking
type SubmitReviewRequest struct {
	BookingReference string `json:"booking_reference" binding:"required"`
	Rating           int    `json:"rating" binding:"required,min=1,max=5"`
	ReviewText       string `json:"review_text"`
}

// BusReviews lists reviews of a bus with the average rating
type BusReviews struct {
	BusID         string   `json:"bus_id"`
	AverageRating float64  `json:"average_rating"`
	Count         int      `json:"count"`
	Reviews       []Review `json:"reviews"`
}
