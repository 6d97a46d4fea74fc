package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/roadrunner/booking-backend/internal/models"
	"github.com/roadrunner/booking-backend/pkg/validator"
)

// PaymentGateway authorizes pay-now charges
type PaymentGateway interface {
	Authorize(ctx context.Context, amount float64, card models.CardDetails) error
}

// FormatCheckGateway accepts any charge whose card details are well formed.
// It stands in for a real processor.
type FormatCheckGateway struct {
	now func() time.Time
}

// NewFormatCheckGateway creates a FormatCheckGateway
func NewFormatCheckGateway() *FormatCheckGateway {
	return &FormatCheckGateway{now: time.Now}
}

// Authorize validates the card format; amount is accepted as is
func (g *FormatCheckGateway) Authorize(ctx context.Context, amount float64, card models.CardDetails) error {
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrPaymentDeclined)
	}
	return validator.ValidateCard(card.HolderName, card.Number, card.Expiry, card.CVV, g.now())
}

// decidePayment turns the passenger's payment choice into a payment status.
// Card problems come back as ValidationErrors so the form can highlight the field.
func decidePayment(ctx context.Context, gateway PaymentGateway, choice models.PaymentChoice, card *models.CardDetails, amount float64) (models.PaymentStatus, error) {
	switch choice {
	case models.PayLater:
		return models.PaymentStatusPending, nil
	case models.PayNow:
	default:
		return "", ValidationError{Field: "payment_choice", Msg: "must be pay_now or pay_later"}
	}

	if card == nil {
		return "", ValidationError{Field: "card", Msg: validator.ErrCardRequired.Error()}
	}

	if err := gateway.Authorize(ctx, amount, *card); err != nil {
		var fieldErr *validator.CardFieldError
		if errors.As(err, &fieldErr) {
			return "", ValidationError{Field: "card." + fieldErr.Field, Msg: fieldErr.Err.Error()}
		}
		if errors.Is(err, ErrPaymentDeclined) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrPaymentDeclined, err)
	}
	return models.PaymentStatusPaid, nil
}
