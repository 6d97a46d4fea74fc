package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/roadrunner/booking-backend/internal/models"
)

const maxReviewLength = 1000

// ReviewStore is the review persistence used by ReviewService
type ReviewStore interface {
	Upsert(ctx context.Context, review *models.Review) error
	ListByBus(ctx context.Context, busID string) ([]models.Review, error)
}

// ReviewService lets passengers rate completed trips
type ReviewService struct {
	reviews  ReviewStore
	bookings *BookingService
}

// NewReviewService creates a new ReviewService
func NewReviewService(reviews ReviewStore, bookings *BookingService) *ReviewService {
	return &ReviewService{reviews: reviews, bookings: bookings}
}

// SubmitReview creates or edits the user's review of a completed booking
func (s *ReviewService) SubmitReview(ctx context.Context, userID string, req *models.SubmitReviewRequest) (*models.Review, error) {
	var errs ValidationErrors
	if req.Rating < 1 || req.Rating > 5 {
		errs.add("rating", "must be between 1 and 5")
	}
	text := strings.TrimSpace(req.ReviewText)
	if len(text) > maxReviewLength {
		errs.add("review_text", "must be at most %d characters", maxReviewLength)
	}
	if err := errs.orNil(); err != nil {
		return nil, err
	}

	booking, err := s.bookings.GetBooking(ctx, userID, req.BookingReference)
	if err != nil {
		return nil, err
	}
	if booking.EffectiveStatus != models.BookingStatusCompleted {
		return nil, ValidationError{Field: "booking_reference", Msg: "only completed trips can be reviewed"}
	}

	review := &models.Review{
		BookingID:   booking.ID,
		PassengerID: userID,
		BusID:       booking.BusID,
		Rating:      req.Rating,
		ReviewText:  text,
	}
	if err := s.reviews.Upsert(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

// ListBusReviews returns a bus's reviews with the average rating rounded to one decimal
func (s *ReviewService) ListBusReviews(ctx context.Context, busID string) (*models.BusReviews, error) {
	reviews, err := s.reviews.ListByBus(ctx, busID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	result := &models.BusReviews{BusID: busID, Count: len(reviews), Reviews: reviews}
	if len(reviews) > 0 {
		sum := 0
		for _, r := range reviews {
			sum += r.Rating
		}
		result.AverageRating = math.Round(float64(sum)/float64(len(reviews))*10) / 10
	}
	return result, nil
}
