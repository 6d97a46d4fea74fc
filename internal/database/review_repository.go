package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/roadrunner/booking-backend/internal/models"
)

// ReviewRepository handles review database operations
type ReviewRepository struct {
	db DB
}

// NewReviewRepository creates a new ReviewRepository
func NewReviewRepository(db DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Upsert creates the review for (booking, passenger) or edits it in place
func (r *ReviewRepository) Upsert(ctx context.Context, review *models.Review) error {
	if review.ID == "" {
		review.ID = uuid.NewString()
	}

	query := `
		INSERT INTO reviews (id, booking_id, passenger_id, bus_id, rating, review_text)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (booking_id, passenger_id)
		DO UPDATE SET rating = EXCLUDED.rating, review_text = EXCLUDED.review_text
		RETURNING id, created_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		review.ID, review.BookingID, review.PassengerID, review.BusID, review.Rating, review.ReviewText,
	).Scan(&review.ID, &review.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save review: %w", mapError(err))
	}
	return nil
}

// ListByBus returns the reviews of a bus, newest first
func (r *ReviewRepository) ListByBus(ctx context.Context, busID string) ([]models.Review, error) {
	reviews := []models.Review{}
	query := `
		SELECT id, booking_id, passenger_id, bus_id, rating, review_text, created_at
		FROM reviews
		WHERE bus_id = $1
		ORDER BY created_at DESC
	`

	if err := r.db.SelectContext(ctx, &reviews, query, busID); err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}
