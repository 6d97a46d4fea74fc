package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/roadrunner/booking-backend/internal/middleware"
	"github.com/roadrunner/booking-backend/internal/services"
	"github.com/sirupsen/logrus"
)

// FieldError is one per-field validation problem in an error response
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// errorStatus maps a service error to its HTTP status, error code and public message
func errorStatus(err error) (status int, code, message string) {
	var txErr *services.TransactionError
	switch {
	case services.IsValidation(err):
		return http.StatusBadRequest, "VALIDATION_FAILED", err.Error()
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", err.Error()
	case errors.Is(err, services.ErrSeatConflict):
		return http.StatusConflict, "SEAT_CONFLICT", err.Error() + ". Please choose your seats again."
	case errors.Is(err, services.ErrSeatBusy):
		return http.StatusConflict, "SEAT_BUSY", err.Error() + ". Please try again in a moment."
	case errors.Is(err, services.ErrInvalidTransition):
		return http.StatusConflict, "INVALID_TRANSITION", err.Error()
	case errors.Is(err, services.ErrEmailTaken):
		return http.StatusConflict, "EMAIL_TAKEN", err.Error()
	case errors.Is(err, services.ErrTooLate):
		return http.StatusUnprocessableEntity, "TOO_LATE", err.Error()
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, "INVALID_CREDENTIALS", err.Error()
	case errors.Is(err, services.ErrPaymentDeclined):
		return http.StatusPaymentRequired, "PAYMENT_DECLINED", "Payment was declined"
	case errors.Is(err, services.ErrReferenceGenerationExhausted):
		return http.StatusServiceUnavailable, "REFERENCE_EXHAUSTED", "Could not complete the booking right now. Please try again."
	case errors.As(err, &txErr):
		return http.StatusInternalServerError, "TRANSACTION_FAILED", "Nothing was booked. Please try again."
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong. Please try again later."
}

// respondError writes err as a JSON error body. Server errors are logged; their
// details are never sent to the client.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	status, code, message := errorStatus(err)
	if status >= http.StatusInternalServerError {
		logger.WithError(err).WithFields(logrus.Fields{
			"path": c.Request.URL.Path,
			"code": code,
		}).Error("request failed")
	}

	body := gin.H{
		"error":   http.StatusText(status),
		"code":    code,
		"message": message,
	}
	if fields := services.FieldErrors(err); len(fields) > 0 {
		out := make([]FieldError, len(fields))
		for i, f := range fields {
			out[i] = FieldError{Field: f.Field, Message: f.Msg}
		}
		body["fields"] = out
	}
	c.JSON(status, body)
}

// bindJSON decodes the request body and writes a 400 on failure
func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"code":    "INVALID_REQUEST",
			"message": err.Error(),
		})
		return false
	}
	return true
}

// uuidParam reads a path parameter that must be a UUID and writes a 400 otherwise
func uuidParam(c *gin.Context, name string) (string, bool) {
	raw := c.Param(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"code":    "INVALID_ID",
			"message": name + " must be a valid UUID",
		})
		return "", false
	}
	return id.String(), true
}

// currentUser returns the authenticated user, writing a 401 if there is none
func currentUser(c *gin.Context) (middleware.UserContext, bool) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "code": "MISSING_USER_CONTEXT"})
		return middleware.UserContext{}, false
	}
	return userCtx, true
}

// currentActor returns the authenticated user as a back-office actor
func currentActor(c *gin.Context) (services.Actor, bool) {
	userCtx, ok := currentUser(c)
	if !ok {
		return services.Actor{}, false
	}
	return services.Actor{UserID: userCtx.UserID.String(), Roles: userCtx.Roles}, true
}
