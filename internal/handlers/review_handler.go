package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/roadrunner/booking-backend/internal/models"
	"github.com/roadrunner/booking-backend/internal/services"
	"github.com/sirupsen/logrus"
)

// ReviewHandler handles trip reviews
type ReviewHandler struct {
	reviews *services.ReviewService
	logger  *logrus.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviews *services.ReviewService, logger *logrus.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviews: reviews,
		logger:  logger,
	}
}

// SubmitReview rates a completed booking, replacing any earlier review of it
// POST /api/v1/reviews
func (h *ReviewHandler) SubmitReview(c *gin.Context) {
	userCtx, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.SubmitReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	review, err := h.reviews.SubmitReview(c.Request.Context(), userCtx.UserID.String(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, review)
}

// GET /api/v1/buses/:id/reviews
func (h *ReviewHandler) ListBusReviews(c *gin.Context) {
	busID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	reviews, err := h.reviews.ListBusReviews(c.Request.Context(), busID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, reviews)
}
